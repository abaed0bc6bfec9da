package lifecycle_test

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pentapillisuresh/getbid/internal/lifecycle"
	"github.com/pentapillisuresh/getbid/internal/lifecycle/lifecycletest"
	"github.com/pentapillisuresh/getbid/models"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newService(store *lifecycletest.Store) *lifecycle.Service {
	svc := lifecycle.NewService(store, zap.NewNop())
	return svc.WithClock(func() time.Time { return baseTime })
}

func seedTender(store *lifecycletest.Store, estimate int64) models.Tender {
	t := models.Tender{
		ID:             uuid.New(),
		Title:          "Office block renovation",
		Category:       "construction",
		EstimatedValue: estimate,
		BidDeadline:    baseTime.Add(72 * time.Hour),
		Version:        1,
		CreatedAt:      baseTime.Add(-24 * time.Hour),
	}
	store.SeedTender(t)
	return t
}

func seedBid(store *lifecycletest.Store, tenderID uuid.UUID, amount int64, status models.BidStatus) models.Bid {
	b := models.Bid{
		ID:        uuid.New(),
		TenderID:  tenderID,
		VendorID:  uuid.New(),
		Amount:    amount,
		Status:    status,
		Version:   1,
		CreatedAt: baseTime.Add(-time.Hour),
	}
	store.SeedBid(b)
	return b
}

func seedFinalizedEvaluation(store *lifecycletest.Store, bidID uuid.UUID, phase models.EvaluationPhase, scores models.CriterionScores) {
	store.SeedEvaluation(models.EvaluationRecord{
		BidID:    bidID,
		Phase:    phase,
		Criteria: scores,
		IsDraft:  false,
	})
}

// technicalScores totals 78/100.
func technicalScores() models.CriterionScores {
	return models.CriterionScores{
		"experience": {Score: 18, MaxScore: 20},
		"expertise":  {Score: 20, MaxScore: 25},
		"resources":  {Score: 15, MaxScore: 20},
		"timeline":   {Score: 10, MaxScore: 15},
		"quality":    {Score: 15, MaxScore: 20},
	}
}

// financialScores totals 80/100.
func financialScores() models.CriterionScores {
	return models.CriterionScores{
		"costEffectiveness": {Score: 25, MaxScore: 30},
		"paymentTerms":      {Score: 15, MaxScore: 20},
		"totalCost":         {Score: 25, MaxScore: 30},
		"valueForMoney":     {Score: 15, MaxScore: 20},
	}
}

// seedCompletedBid installs a bid that has finished both evaluation phases.
func seedCompletedBid(store *lifecycletest.Store, tenderID uuid.UUID, amount int64) models.Bid {
	b := seedBid(store, tenderID, amount, models.BidCompleted)
	seedFinalizedEvaluation(store, b.ID, models.PhaseTechnical, technicalScores())
	seedFinalizedEvaluation(store, b.ID, models.PhaseFinancial, financialScores())
	return b
}
