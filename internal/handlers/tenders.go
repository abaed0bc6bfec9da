package handlers

import (
	"net/http"

	"github.com/pentapillisuresh/getbid/internal/lifecycle"
)

// CreateTenderHandler handles POST /api/tenders/new.
func (h *Handler) CreateTenderHandler(w http.ResponseWriter, r *http.Request) {
	var in lifecycle.CreateTenderInput
	if !h.decodeJSON(w, r, &in) {
		return
	}
	tender, err := h.svc.CreateTender(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, tender)
}

// GetTendersHandler handles GET /api/tenders with optional category filter.
func (h *Handler) GetTendersHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)
	category := r.URL.Query().Get("category")

	tenders, err := h.svc.ListTenders(r.Context(), category, params.Limit, params.Offset)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tenders)
}

// GetTenderHandler handles GET /api/tenders/{tenderId}.
func (h *Handler) GetTenderHandler(w http.ResponseWriter, r *http.Request) {
	tenderID, ok := h.urlUUID(w, r, "tenderId")
	if !ok {
		return
	}
	tender, err := h.svc.GetTender(r.Context(), tenderID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tender)
}

// ArchiveTenderHandler handles PUT /api/tenders/{tenderId}/archive. Archived
// tenders disappear from listings but stay readable by id.
func (h *Handler) ArchiveTenderHandler(w http.ResponseWriter, r *http.Request) {
	tenderID, ok := h.urlUUID(w, r, "tenderId")
	if !ok {
		return
	}
	tender, err := h.svc.ArchiveTender(r.Context(), tenderID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tender)
}

// GetTenderStageHandler handles GET /api/tenders/{tenderId}/stage. The stage
// is recomputed from the bid set on every call; inconsistent evidence shows
// up in the diagnostics field rather than failing the request.
func (h *Handler) GetTenderStageHandler(w http.ResponseWriter, r *http.Request) {
	tenderID, ok := h.urlUUID(w, r, "tenderId")
	if !ok {
		return
	}
	report, err := h.svc.TenderStage(r.Context(), tenderID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// RankBidsHandler handles GET /api/tenders/{tenderId}/ranking?mode=price|score.
func (h *Handler) RankBidsHandler(w http.ResponseWriter, r *http.Request) {
	tenderID, ok := h.urlUUID(w, r, "tenderId")
	if !ok {
		return
	}
	mode := lifecycle.RankMode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = lifecycle.RankByPrice
	}
	ranking, err := h.svc.RankBids(r.Context(), tenderID, mode)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"tenderId": tenderID,
		"mode":     mode,
		"ranking":  ranking,
	})
}

type awardRequest struct {
	BidID string `json:"bidId" validate:"required,uuid"`
	Terms string `json:"terms" validate:"max=2000"`
}

// AwardHandler handles POST /api/tenders/{tenderId}/award.
func (h *Handler) AwardHandler(w http.ResponseWriter, r *http.Request) {
	tenderID, ok := h.urlUUID(w, r, "tenderId")
	if !ok {
		return
	}
	var req awardRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	bidID, err := parseUUIDField(req.BidID, "bidId")
	if err != nil {
		h.writeError(w, err)
		return
	}
	result, err := h.svc.Award(r.Context(), tenderID, bidID, req.Terms)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// GetBidsForTenderHandler handles GET /api/tenders/{tenderId}/bids.
func (h *Handler) GetBidsForTenderHandler(w http.ResponseWriter, r *http.Request) {
	tenderID, ok := h.urlUUID(w, r, "tenderId")
	if !ok {
		return
	}
	bids, err := h.svc.ListBids(r.Context(), tenderID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, bids)
}
