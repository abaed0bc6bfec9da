package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pentapillisuresh/getbid/models"
)

// CreateTenderInput is the client-facing tender publication payload.
type CreateTenderInput struct {
	Title               string    `json:"title" validate:"required,max=150"`
	Category            string    `json:"category" validate:"required,max=100"`
	EstimatedValue      int64     `json:"estimatedValue" validate:"gte=0"`
	BidDeadline         time.Time `json:"bidDeadline" validate:"required"`
	EligibilityCriteria []string  `json:"eligibilityCriteria"`
	DocumentIDs         []string  `json:"documentIds"`
}

// CreateTender publishes a new tender open for bidding.
func (s *Service) CreateTender(ctx context.Context, in CreateTenderInput) (*models.Tender, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, Errorf(KindValidation, "tender title is required")
	}
	if in.EstimatedValue < 0 {
		return nil, Errorf(KindValidation, "estimated value cannot be negative")
	}
	if !in.BidDeadline.After(s.now()) {
		return nil, Errorf(KindValidation, "bid deadline must be in the future")
	}
	now := s.now()
	tender := &models.Tender{
		ID:                  uuid.New(),
		Title:               strings.TrimSpace(in.Title),
		Category:            in.Category,
		EstimatedValue:      in.EstimatedValue,
		BidDeadline:         in.BidDeadline,
		EligibilityCriteria: in.EligibilityCriteria,
		DocumentIDs:         in.DocumentIDs,
		Version:             1,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.store.CreateTender(ctx, tender); err != nil {
		return nil, err
	}
	s.log.Info("tender created",
		zap.String("tender_id", tender.ID.String()),
		zap.String("title", tender.Title))
	return tender, nil
}

// GetTender returns a tender by id.
func (s *Service) GetTender(ctx context.Context, id uuid.UUID) (*models.Tender, error) {
	return s.store.GetTender(ctx, id)
}

// ListTenders returns tenders, optionally filtered by category.
func (s *Service) ListTenders(ctx context.Context, category string, limit, offset int) ([]models.Tender, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListTenders(ctx, category, limit, offset)
}

// ArchiveTender hides a tender from listings. Bids and evaluations stay
// readable; archiving is a presentation concern, not a state transition.
func (s *Service) ArchiveTender(ctx context.Context, id uuid.UUID) (*models.Tender, error) {
	tender, err := s.store.GetTender(ctx, id)
	if err != nil {
		return nil, err
	}
	if tender.Archived {
		return tender, nil
	}
	tender.Archived = true
	tender.UpdatedAt = s.now()
	if err := s.store.UpdateTender(ctx, tender); err != nil {
		return nil, err
	}
	s.log.Info("tender archived", zap.String("tender_id", id.String()))
	return tender, nil
}

// StageReport is the derived tender stage plus any evidence problems found
// while deriving it. Diagnostics being non-empty means the underlying bid
// rows disagree with each other; the reported stage is then the most
// conservative reading of the evidence.
type StageReport struct {
	TenderID     uuid.UUID          `json:"tenderId"`
	Stage        models.TenderStage `json:"stage"`
	AwardedBidID *uuid.UUID         `json:"awardedBidId,omitempty"`
	Diagnostics  []string           `json:"diagnostics,omitempty"`
}

// TenderStage recomputes the tender's stage from its bid set. The stage is a
// projection: the authoritative state lives on the bids and the award row,
// and the tender row is never overwritten with a stage of its own.
func (s *Service) TenderStage(ctx context.Context, tenderID uuid.UUID) (*StageReport, error) {
	if _, err := s.store.GetTender(ctx, tenderID); err != nil {
		return nil, err
	}
	award, err := s.store.GetAwardForTender(ctx, tenderID)
	if err != nil {
		return nil, err
	}
	bids, err := s.loadBidsForTender(ctx, tenderID)
	if err != nil {
		return nil, err
	}

	report := &StageReport{TenderID: tenderID}
	report.Stage, report.Diagnostics = ProjectStage(bids, award != nil)
	if award != nil {
		report.AwardedBidID = &award.BidID
		if !awardMatchesBids(award, bids) {
			report.Diagnostics = append(report.Diagnostics,
				fmt.Sprintf("award names bid %s but no bid row carries status %s", award.BidID, models.BidAwarded))
		}
	}
	if len(report.Diagnostics) > 0 {
		s.log.Warn("tender stage derived from inconsistent evidence",
			zap.String("tender_id", tenderID.String()),
			zap.Strings("diagnostics", report.Diagnostics))
	}
	return report, nil
}

func awardMatchesBids(award *models.Award, bids []models.Bid) bool {
	for i := range bids {
		if bids[i].ID == award.BidID && bids[i].Status == models.BidAwarded {
			return true
		}
	}
	return false
}

// ProjectStage derives the tender stage from its bids. An award decision
// always means completed. Otherwise the stage is the most advanced phase the
// bid set has verifiably entered: evidence that contradicts itself (a
// financial record finalized without its own technical record being
// finalized, a status ahead of its records) is reported as a diagnostic and
// does not promote the stage.
func ProjectStage(bids []models.Bid, hasAward bool) (models.TenderStage, []string) {
	var diags []string
	if hasAward {
		return models.StageCompleted, diags
	}

	stage := models.StageOpen
	for i := range bids {
		b := &bids[i]
		if b.Status == models.BidDisqualified {
			continue
		}
		if b.Status == models.BidAwarded {
			diags = append(diags, fmt.Sprintf("bid %s is %s but the tender has no award decision", b.ID, b.Status))
			// The award row is the authority for completed; status alone
			// does not promote the tender.
		}

		techFinal := b.TechnicalEvaluation.Finalized()
		finFinal := b.FinancialEvaluation.Finalized()

		if finFinal && !techFinal {
			diags = append(diags, fmt.Sprintf("bid %s has a finalized financial evaluation without a finalized technical evaluation", b.ID))
			finFinal = false
		}
		switch b.Status {
		case models.BidFinancial, models.BidCompleted:
			if !techFinal {
				diags = append(diags, fmt.Sprintf("bid %s is %s but its technical evaluation is not finalized", b.ID, b.Status))
			}
		}

		if finFinal {
			stage = mostAdvanced(stage, models.StageFinancialEvaluation)
		} else if techFinal {
			stage = mostAdvanced(stage, models.StageTechnicalEvaluation)
		}
	}
	return stage, diags
}

var stageOrder = map[models.TenderStage]int{
	models.StageOpen:                0,
	models.StageTechnicalEvaluation: 1,
	models.StageFinancialEvaluation: 2,
	models.StageCompleted:           3,
}

func mostAdvanced(a, b models.TenderStage) models.TenderStage {
	if stageOrder[b] > stageOrder[a] {
		return b
	}
	return a
}
