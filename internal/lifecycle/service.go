// Package lifecycle implements the tender/bid state machine: submission,
// technical and financial evaluation, disqualification, ranking and award.
// All state lives behind the Store; every operation is a single synchronous
// transition guarded optimistically by the bid's version.
package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pentapillisuresh/getbid/models"
)

// Store is the persistence collaborator the lifecycle core runs against.
// Mutating calls that take an entity use its Version field as an optimistic
// precondition and fail with a KindStaleState error when the stored version
// has moved on.
type Store interface {
	CreateTender(ctx context.Context, t *models.Tender) error
	GetTender(ctx context.Context, id uuid.UUID) (*models.Tender, error)
	// ListTenders returns non-archived tenders.
	ListTenders(ctx context.Context, category string, limit, offset int) ([]models.Tender, error)
	// UpdateTender applies a compare-and-set on (id, version) and bumps the
	// version on success.
	UpdateTender(ctx context.Context, t *models.Tender) error

	CreateBid(ctx context.Context, b *models.Bid) error
	GetBid(ctx context.Context, id uuid.UUID) (*models.Bid, error)
	ListBidsForTender(ctx context.Context, tenderID uuid.UUID) ([]models.Bid, error)
	// UpdateBid applies a compare-and-set on (id, version) and bumps the
	// version on success.
	UpdateBid(ctx context.Context, b *models.Bid) error

	// SaveEvaluation persists the bid's status transition and the evaluation
	// record as one transaction, CAS-guarded by the bid version.
	SaveEvaluation(ctx context.Context, b *models.Bid, rec *models.EvaluationRecord) error
	// GetEvaluation returns (nil, nil) when the phase has never been saved.
	GetEvaluation(ctx context.Context, bidID uuid.UUID, phase models.EvaluationPhase) (*models.EvaluationRecord, error)

	// AwardBid marks the bid awarded and records the award row in a single
	// transaction. The store must guarantee the no-other-awarded-sibling
	// check with compare-and-set semantics: a double award can never commit.
	AwardBid(ctx context.Context, tenderID, bidID uuid.UUID, terms string) (*models.Award, error)
	// GetAwardForTender returns (nil, nil) when no award exists.
	GetAwardForTender(ctx context.Context, tenderID uuid.UUID) (*models.Award, error)

	SaveDocument(ctx context.Context, d *models.Document) error
	GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error)
}

// Service exposes the state-transition operations consumed by the UI layer.
type Service struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log, now: time.Now}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// loadBid fetches a bid with both evaluation records attached.
func (s *Service) loadBid(ctx context.Context, bidID uuid.UUID) (*models.Bid, error) {
	bid, err := s.store.GetBid(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if bid.TechnicalEvaluation, err = s.store.GetEvaluation(ctx, bidID, models.PhaseTechnical); err != nil {
		return nil, err
	}
	if bid.FinancialEvaluation, err = s.store.GetEvaluation(ctx, bidID, models.PhaseFinancial); err != nil {
		return nil, err
	}
	return bid, nil
}

// loadBidsForTender fetches a tender's bids with evaluations attached.
func (s *Service) loadBidsForTender(ctx context.Context, tenderID uuid.UUID) ([]models.Bid, error) {
	bids, err := s.store.ListBidsForTender(ctx, tenderID)
	if err != nil {
		return nil, err
	}
	for i := range bids {
		if bids[i].TechnicalEvaluation, err = s.store.GetEvaluation(ctx, bids[i].ID, models.PhaseTechnical); err != nil {
			return nil, err
		}
		if bids[i].FinancialEvaluation, err = s.store.GetEvaluation(ctx, bids[i].ID, models.PhaseFinancial); err != nil {
			return nil, err
		}
	}
	return bids, nil
}

// GetBid returns a bid with its evaluation records.
func (s *Service) GetBid(ctx context.Context, bidID uuid.UUID) (*models.Bid, error) {
	return s.loadBid(ctx, bidID)
}

// ListBids returns a tender's bids with evaluation records attached.
func (s *Service) ListBids(ctx context.Context, tenderID uuid.UUID) ([]models.Bid, error) {
	if _, err := s.store.GetTender(ctx, tenderID); err != nil {
		return nil, err
	}
	return s.loadBidsForTender(ctx, tenderID)
}
