package lifecycle

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pentapillisuresh/getbid/internal/scoring"
	"github.com/pentapillisuresh/getbid/models"
)

// SubmitBidInput is a vendor's submission against an open tender.
type SubmitBidInput struct {
	TenderID              uuid.UUID  `json:"tenderId" validate:"required"`
	VendorID              uuid.UUID  `json:"vendorId" validate:"required"`
	Amount                int64      `json:"amount" validate:"required,gt=0"`
	ProposedTimeline      string     `json:"proposedTimeline" validate:"max=200"`
	Summary               string     `json:"summary" validate:"max=2000"`
	QuotationDocumentID   *uuid.UUID `json:"quotationDocumentId"`
	SupportingDocumentIDs []string   `json:"supportingDocumentIds"`
}

// SubmitBid creates a pending bid. The amount-below-estimate rule is a
// submission-time policy of the vendor flow; it is enforced here and nowhere
// else in the state machine.
func (s *Service) SubmitBid(ctx context.Context, in SubmitBidInput) (*models.Bid, error) {
	if in.Amount <= 0 {
		return nil, Errorf(KindValidation, "bid amount must be positive, got %d", in.Amount)
	}
	tender, err := s.store.GetTender(ctx, in.TenderID)
	if err != nil {
		return nil, err
	}
	if s.now().After(tender.BidDeadline) {
		return nil, Errorf(KindValidation, "bid deadline for tender %s has passed", tender.ID)
	}
	if tender.EstimatedValue > 0 && in.Amount >= tender.EstimatedValue {
		return nil, Errorf(KindValidation, "bid amount %d must be below the estimated value %d", in.Amount, tender.EstimatedValue)
	}

	stage, err := s.TenderStage(ctx, in.TenderID)
	if err != nil {
		return nil, err
	}
	if stage.Stage != models.StageOpen {
		return nil, Errorf(KindPhaseLocked, "tender %s is in %s, bidding is closed", tender.ID, stage.Stage)
	}

	now := s.now()
	bid := &models.Bid{
		ID:                    uuid.New(),
		TenderID:              in.TenderID,
		VendorID:              in.VendorID,
		Amount:                in.Amount,
		ProposedTimeline:      in.ProposedTimeline,
		Summary:               in.Summary,
		QuotationDocumentID:   in.QuotationDocumentID,
		SupportingDocumentIDs: in.SupportingDocumentIDs,
		Status:                models.BidPending,
		Version:               1,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.store.CreateBid(ctx, bid); err != nil {
		return nil, err
	}
	s.log.Info("bid submitted",
		zap.String("bid_id", bid.ID.String()),
		zap.String("tender_id", bid.TenderID.String()),
		zap.Int64("amount", bid.Amount))
	return bid, nil
}

// RecordTechnicalEvaluation writes or overwrites a bid's technical record.
// Allowed while the bid is pending or technical; once the bid has progressed
// to the financial phase the technical scores are read-only.
func (s *Service) RecordTechnicalEvaluation(ctx context.Context, bidID uuid.UUID, scores models.CriterionScores, notes string, asDraft bool) (*models.Bid, error) {
	bid, err := s.loadBid(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if bid.Status.Terminal() {
		return nil, Errorf(KindTerminalState, "bid %s is %s and can no longer be evaluated", bid.ID, bid.Status)
	}
	if bid.Status != models.BidPending && bid.Status != models.BidTechnical {
		return nil, Errorf(KindPhaseLocked, "technical scores for bid %s are read-only in status %s", bid.ID, bid.Status)
	}
	if problems := scoring.ValidateAgainst(models.TechnicalRubric, scores); len(problems) > 0 {
		return nil, Errorf(KindValidation, "invalid technical scores: %s", strings.Join(problems, "; "))
	}
	return s.saveEvaluation(ctx, bid, models.PhaseTechnical, scores, notes, asDraft)
}

// RecordFinancialEvaluation writes or overwrites a bid's financial record.
// The technical record must be finalized first.
func (s *Service) RecordFinancialEvaluation(ctx context.Context, bidID uuid.UUID, scores models.CriterionScores, notes string, asDraft bool) (*models.Bid, error) {
	bid, err := s.loadBid(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if bid.Status.Terminal() {
		return nil, Errorf(KindTerminalState, "bid %s is %s and can no longer be evaluated", bid.ID, bid.Status)
	}
	if !bid.TechnicalEvaluation.Finalized() {
		return nil, Errorf(KindPhaseLocked, "bid %s has no finalized technical evaluation", bid.ID)
	}
	if bid.Status != models.BidTechnical && bid.Status != models.BidFinancial {
		return nil, Errorf(KindPhaseLocked, "financial scores for bid %s are read-only in status %s", bid.ID, bid.Status)
	}
	if problems := scoring.ValidateAgainst(models.FinancialRubric, scores); len(problems) > 0 {
		return nil, Errorf(KindValidation, "invalid financial scores: %s", strings.Join(problems, "; "))
	}
	return s.saveEvaluation(ctx, bid, models.PhaseFinancial, scores, notes, asDraft)
}

// saveEvaluation persists the record and the bid's status transition as one
// store transaction. A finalized record never goes back to draft, even when
// a later save asks for asDraft=true.
func (s *Service) saveEvaluation(ctx context.Context, bid *models.Bid, phase models.EvaluationPhase, scores models.CriterionScores, notes string, asDraft bool) (*models.Bid, error) {
	existing := bid.TechnicalEvaluation
	if phase == models.PhaseFinancial {
		existing = bid.FinancialEvaluation
	}

	isDraft := asDraft
	if existing != nil && !existing.IsDraft {
		isDraft = false
	}

	now := s.now()
	rec := &models.EvaluationRecord{
		BidID:     bid.ID,
		Phase:     phase,
		Criteria:  scores,
		Notes:     notes,
		IsDraft:   isDraft,
		UpdatedAt: now,
	}
	if existing != nil {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	} else {
		rec.CreatedAt = now
	}

	switch phase {
	case models.PhaseTechnical:
		if !isDraft && bid.Status == models.BidPending {
			bid.Status = models.BidTechnical
		}
		bid.TechnicalEvaluation = rec
	case models.PhaseFinancial:
		if isDraft {
			bid.Status = models.BidFinancial
		} else {
			bid.Status = models.BidCompleted
		}
		bid.FinancialEvaluation = rec
	}
	bid.UpdatedAt = now

	if err := s.store.SaveEvaluation(ctx, bid, rec); err != nil {
		return nil, err
	}
	totals := scoring.Total(rec.Criteria)
	s.log.Info("evaluation saved",
		zap.String("bid_id", bid.ID.String()),
		zap.String("phase", string(phase)),
		zap.Bool("draft", rec.IsDraft),
		zap.Float64("total", totals.TotalScore),
		zap.String("status", string(bid.Status)))
	return bid, nil
}

// Disqualify excludes a bid from further evaluation, ranking and award.
// The reason is mandatory; the transition is terminal.
func (s *Service) Disqualify(ctx context.Context, bidID uuid.UUID, reason string) (*models.Bid, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, Errorf(KindValidation, "disqualification reason is required")
	}
	bid, err := s.loadBid(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if bid.Status.Terminal() {
		return nil, Errorf(KindTerminalState, "bid %s is already %s", bid.ID, bid.Status)
	}
	bid.Status = models.BidDisqualified
	bid.DisqualifiedReason = reason
	bid.UpdatedAt = s.now()
	if err := s.store.UpdateBid(ctx, bid); err != nil {
		return nil, err
	}
	s.log.Info("bid disqualified",
		zap.String("bid_id", bid.ID.String()),
		zap.String("reason", reason))
	return bid, nil
}
