package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pentapillisuresh/getbid/internal/lifecycle"
	"github.com/pentapillisuresh/getbid/internal/lifecycle/lifecycletest"
	"github.com/pentapillisuresh/getbid/models"
)

func TestRankBidsByPrice(t *testing.T) {
	store := lifecycletest.NewStore()
	svc := newService(store)
	tender := seedTender(store, 850_000)

	low := seedBid(store, tender.ID, 790_000, models.BidPending)
	mid := seedBid(store, tender.ID, 810_000, models.BidPending)
	high := seedBid(store, tender.ID, 845_000, models.BidPending)

	ranking, err := svc.RankBids(context.Background(), tender.ID, lifecycle.RankByPrice)
	require.NoError(t, err)
	require.Len(t, ranking, 3)

	require.Equal(t, low.ID, ranking[0].BidID)
	require.Equal(t, "L1", ranking[0].Label)
	require.Equal(t, 1, ranking[0].Rank)
	require.Equal(t, mid.ID, ranking[1].BidID)
	require.Equal(t, "L2", ranking[1].Label)
	require.Equal(t, high.ID, ranking[2].BidID)
	require.Equal(t, "L3", ranking[2].Label)

	// 790,000 against an 850,000 estimate is 7.06% below it.
	require.NotNil(t, ranking[0].Variance)
	require.Equal(t, "-7.06", ranking[0].Variance.String())
}

func TestRankBidsPriceTieBreaksBySubmissionTime(t *testing.T) {
	store := lifecycletest.NewStore()
	svc := newService(store)
	tender := seedTender(store, 0)

	later := models.Bid{
		ID: uuid.New(), TenderID: tender.ID, VendorID: uuid.New(),
		Amount: 500_000, Status: models.BidPending, Version: 1,
		CreatedAt: baseTime.Add(-time.Hour),
	}
	earlier := models.Bid{
		ID: uuid.New(), TenderID: tender.ID, VendorID: uuid.New(),
		Amount: 500_000, Status: models.BidPending, Version: 1,
		CreatedAt: baseTime.Add(-2 * time.Hour),
	}
	store.SeedBid(later)
	store.SeedBid(earlier)

	ranking, err := svc.RankBids(context.Background(), tender.ID, lifecycle.RankByPrice)
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	require.Equal(t, earlier.ID, ranking[0].BidID)
	require.Equal(t, later.ID, ranking[1].BidID)

	// Estimate undisclosed: no variance column.
	require.Nil(t, ranking[0].Variance)
}

// Disqualifying L1 reshuffles the view on the next call; the ranking is never
// cached.
func TestRankBidsReactsToDisqualification(t *testing.T) {
	store := lifecycletest.NewStore()
	svc := newService(store)
	tender := seedTender(store, 850_000)
	ctx := context.Background()

	low := seedBid(store, tender.ID, 790_000, models.BidPending)
	next := seedBid(store, tender.ID, 810_000, models.BidPending)

	ranking, err := svc.RankBids(ctx, tender.ID, lifecycle.RankByPrice)
	require.NoError(t, err)
	require.Equal(t, low.ID, ranking[0].BidID)

	_, err = svc.Disqualify(ctx, low.ID, "incomplete documentation")
	require.NoError(t, err)

	ranking, err = svc.RankBids(ctx, tender.ID, lifecycle.RankByPrice)
	require.NoError(t, err)
	require.Len(t, ranking, 1)
	require.Equal(t, next.ID, ranking[0].BidID)
	require.Equal(t, "L1", ranking[0].Label)
}

func TestRankBidsByScore(t *testing.T) {
	store := lifecycletest.NewStore()
	svc := newService(store)
	tender := seedTender(store, 0)

	// 78 technical / 80 financial → overall 79.
	strong := seedCompletedBid(store, tender.ID, 820_000)

	weak := seedBid(store, tender.ID, 700_000, models.BidCompleted)
	seedFinalizedEvaluation(store, weak.ID, models.PhaseTechnical, models.CriterionScores{
		"experience": {Score: 10, MaxScore: 20},
		"expertise":  {Score: 12, MaxScore: 25},
		"resources":  {Score: 10, MaxScore: 20},
		"timeline":   {Score: 8, MaxScore: 15},
		"quality":    {Score: 10, MaxScore: 20},
	})
	seedFinalizedEvaluation(store, weak.ID, models.PhaseFinancial, models.CriterionScores{
		"costEffectiveness": {Score: 20, MaxScore: 30},
		"paymentTerms":      {Score: 10, MaxScore: 20},
		"totalCost":         {Score: 20, MaxScore: 30},
		"valueForMoney":     {Score: 10, MaxScore: 20},
	})

	// Technical still in draft: excluded from the score view.
	inFlight := seedBid(store, tender.ID, 600_000, models.BidPending)
	store.SeedEvaluation(models.EvaluationRecord{
		BidID: inFlight.ID, Phase: models.PhaseTechnical,
		Criteria: technicalScores(), IsDraft: true,
	})

	ranking, err := svc.RankBids(context.Background(), tender.ID, lifecycle.RankByScore)
	require.NoError(t, err)
	require.Len(t, ranking, 2)

	require.Equal(t, strong.ID, ranking[0].BidID)
	require.Equal(t, 78.0, ranking[0].TechnicalScore)
	require.Equal(t, 80.0, ranking[0].FinancialScore)
	require.Equal(t, 79.0, ranking[0].OverallScore)
	require.Empty(t, ranking[0].Label)

	require.Equal(t, weak.ID, ranking[1].BidID)
	require.Equal(t, 50.0, ranking[1].TechnicalScore)
	require.Equal(t, 60.0, ranking[1].FinancialScore)
	require.Equal(t, 55.0, ranking[1].OverallScore)
}

func TestRankBidsScoreTieGoesToLowerAmount(t *testing.T) {
	store := lifecycletest.NewStore()
	svc := newService(store)
	tender := seedTender(store, 0)

	pricier := seedCompletedBid(store, tender.ID, 820_000)
	cheaper := seedCompletedBid(store, tender.ID, 780_000)

	ranking, err := svc.RankBids(context.Background(), tender.ID, lifecycle.RankByScore)
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	require.Equal(t, cheaper.ID, ranking[0].BidID)
	require.Equal(t, pricier.ID, ranking[1].BidID)
}

func TestRankBidsIsDeterministic(t *testing.T) {
	store := lifecycletest.NewStore()
	svc := newService(store)
	tender := seedTender(store, 850_000)
	for i := int64(0); i < 5; i++ {
		seedBid(store, tender.ID, 700_000+i*10_000, models.BidPending)
	}
	ctx := context.Background()

	first, err := svc.RankBids(ctx, tender.ID, lifecycle.RankByPrice)
	require.NoError(t, err)
	second, err := svc.RankBids(ctx, tender.ID, lifecycle.RankByPrice)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestRankBidsUnknownMode(t *testing.T) {
	store := lifecycletest.NewStore()
	svc := newService(store)
	tender := seedTender(store, 850_000)

	_, err := svc.RankBids(context.Background(), tender.ID, lifecycle.RankMode("lottery"))
	require.Equal(t, lifecycle.KindValidation, lifecycle.KindOf(err))

	_, err = svc.RankBids(context.Background(), uuid.New(), lifecycle.RankByPrice)
	require.Equal(t, lifecycle.KindNotFound, lifecycle.KindOf(err))
}
