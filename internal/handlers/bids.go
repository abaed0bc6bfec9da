package handlers

import (
	"net/http"

	"github.com/pentapillisuresh/getbid/internal/lifecycle"
	"github.com/pentapillisuresh/getbid/models"
)

// SubmitBidHandler handles POST /api/bids/new.
func (h *Handler) SubmitBidHandler(w http.ResponseWriter, r *http.Request) {
	var in lifecycle.SubmitBidInput
	if !h.decodeJSON(w, r, &in) {
		return
	}
	bid, err := h.svc.SubmitBid(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, bid)
}

// GetBidHandler handles GET /api/bids/{bidId}, returning the bid with both
// evaluation records attached.
func (h *Handler) GetBidHandler(w http.ResponseWriter, r *http.Request) {
	bidID, ok := h.urlUUID(w, r, "bidId")
	if !ok {
		return
	}
	bid, err := h.svc.GetBid(r.Context(), bidID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, bid)
}

type evaluationRequest struct {
	Scores  models.CriterionScores `json:"scores" validate:"required"`
	Notes   string                 `json:"notes" validate:"max=2000"`
	IsDraft bool                   `json:"isDraft"`
}

// RecordTechnicalEvaluationHandler handles PUT /api/bids/{bidId}/evaluation/technical.
func (h *Handler) RecordTechnicalEvaluationHandler(w http.ResponseWriter, r *http.Request) {
	h.recordEvaluation(w, r, models.PhaseTechnical)
}

// RecordFinancialEvaluationHandler handles PUT /api/bids/{bidId}/evaluation/financial.
func (h *Handler) RecordFinancialEvaluationHandler(w http.ResponseWriter, r *http.Request) {
	h.recordEvaluation(w, r, models.PhaseFinancial)
}

func (h *Handler) recordEvaluation(w http.ResponseWriter, r *http.Request, phase models.EvaluationPhase) {
	bidID, ok := h.urlUUID(w, r, "bidId")
	if !ok {
		return
	}
	var req evaluationRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	var (
		bid *models.Bid
		err error
	)
	if phase == models.PhaseTechnical {
		bid, err = h.svc.RecordTechnicalEvaluation(r.Context(), bidID, req.Scores, req.Notes, req.IsDraft)
	} else {
		bid, err = h.svc.RecordFinancialEvaluation(r.Context(), bidID, req.Scores, req.Notes, req.IsDraft)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, bid)
}

type disqualifyRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// DisqualifyBidHandler handles PUT /api/bids/{bidId}/disqualify.
func (h *Handler) DisqualifyBidHandler(w http.ResponseWriter, r *http.Request) {
	bidID, ok := h.urlUUID(w, r, "bidId")
	if !ok {
		return
	}
	var req disqualifyRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	bid, err := h.svc.Disqualify(r.Context(), bidID, req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, bid)
}
