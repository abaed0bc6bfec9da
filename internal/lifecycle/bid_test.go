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

func TestSubmitBid(t *testing.T) {
	store := lifecycletest.NewStore()
	svc := newService(store)
	tender := seedTender(store, 850_000)

	bid, err := svc.SubmitBid(context.Background(), lifecycle.SubmitBidInput{
		TenderID:         tender.ID,
		VendorID:         uuid.New(),
		Amount:           790_000,
		ProposedTimeline: "12 weeks",
		Summary:          "Full renovation, two crews.",
	})
	require.NoError(t, err)
	require.Equal(t, models.BidPending, bid.Status)
	require.Equal(t, 1, bid.Version)
	require.Nil(t, bid.TechnicalEvaluation)
}

func TestSubmitBidValidation(t *testing.T) {
	store := lifecycletest.NewStore()
	svc := newService(store)
	tender := seedTender(store, 850_000)

	tests := []struct {
		name string
		in   lifecycle.SubmitBidInput
		kind lifecycle.ErrorKind
	}{
		{
			name: "zero amount",
			in:   lifecycle.SubmitBidInput{TenderID: tender.ID, VendorID: uuid.New(), Amount: 0},
			kind: lifecycle.KindValidation,
		},
		{
			name: "negative amount",
			in:   lifecycle.SubmitBidInput{TenderID: tender.ID, VendorID: uuid.New(), Amount: -5},
			kind: lifecycle.KindValidation,
		},
		{
			name: "amount equal to estimate",
			in:   lifecycle.SubmitBidInput{TenderID: tender.ID, VendorID: uuid.New(), Amount: 850_000},
			kind: lifecycle.KindValidation,
		},
		{
			name: "amount above estimate",
			in:   lifecycle.SubmitBidInput{TenderID: tender.ID, VendorID: uuid.New(), Amount: 900_000},
			kind: lifecycle.KindValidation,
		},
		{
			name: "unknown tender",
			in:   lifecycle.SubmitBidInput{TenderID: uuid.New(), VendorID: uuid.New(), Amount: 100},
			kind: lifecycle.KindNotFound,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SubmitBid(context.Background(), tc.in)
			require.Error(t, err)
			require.Equal(t, tc.kind, lifecycle.KindOf(err))
		})
	}
}

func TestSubmitBidAfterDeadline(t *testing.T) {
	store := lifecycletest.NewStore()
	tender := seedTender(store, 850_000)
	svc := newService(store).WithClock(func() time.Time {
		return tender.BidDeadline.Add(time.Minute)
	})

	_, err := svc.SubmitBid(context.Background(), lifecycle.SubmitBidInput{
		TenderID: tender.ID, VendorID: uuid.New(), Amount: 100_000,
	})
	require.Equal(t, lifecycle.KindValidation, lifecycle.KindOf(err))
}

func TestSubmitBidClosedForEvaluation(t *testing.T) {
	store := lifecycletest.NewStore()
	svc := newService(store)
	tender := seedTender(store, 850_000)

	// Another vendor's bid already has a finalized technical evaluation,
	// so the tender has left the open stage.
	other := seedBid(store, tender.ID, 700_000, models.BidTechnical)
	seedFinalizedEvaluation(store, other.ID, models.PhaseTechnical, technicalScores())

	_, err := svc.SubmitBid(context.Background(), lifecycle.SubmitBidInput{
		TenderID: tender.ID, VendorID: uuid.New(), Amount: 650_000,
	})
	require.Equal(t, lifecycle.KindPhaseLocked, lifecycle.KindOf(err))
}

func TestRecordTechnicalEvaluationFinalizes(t *testing.T) {
	store := lifecycletest.NewStore()
	svc := newService(store)
	tender := seedTender(store, 850_000)
	bid := seedBid(store, tender.ID, 790_000, models.BidPending)

	updated, err := svc.RecordTechnicalEvaluation(context.Background(), bid.ID, technicalScores(), "solid team", false)
	require.NoError(t, err)
	require.Equal(t, models.BidTechnical, updated.Status)
	require.NotNil(t, updated.TechnicalEvaluation)
	require.False(t, updated.TechnicalEvaluation.IsDraft)
	require.Equal(t, "solid team", updated.TechnicalEvaluation.Notes)
}

// Saving a draft twice keeps only the latest scores and never advances the
// bid status.
func TestTechnicalDraftOverwrite(t *testing.T) {
	store := lifecycletest.NewStore()
	svc := newService(store)
	tender := seedTender(store, 850_000)
	bid := seedBid(store, tender.ID, 790_000, models.BidPending)
	ctx := context.Background()

	first := models.CriterionScores{"experience": {Score: 10, MaxScore: 20}}
	_, err := svc.RecordTechnicalEvaluation(ctx, bid.ID, first, "first pass", true)
	require.NoError(t, err)

	second := models.CriterionScores{"experience": {Score: 17, MaxScore: 20}}
	updated, err := svc.RecordTechnicalEvaluation(ctx, bid.ID, second, "second pass", true)
	require.NoError(t, err)

	require.Equal(t, models.BidPending, updated.Status)
	require.True(t, updated.TechnicalEvaluation.IsDraft)
	require.Equal(t, second, updated.TechnicalEvaluation.Criteria)
	require.Equal(t, "second pass", updated.TechnicalEvaluation.Notes)
}

// A finalized record can still be corrected before the financial phase, but
// it never becomes a draft again.
func TestTechnicalFinalizedStaysFinal(t *testing.T) {
	store := lifecycletest.NewStore()
	svc := newService(store)
	tender := seedTender(store, 850_000)
	bid := seedBid(store, tender.ID, 790_000, models.BidPending)
	ctx := context.Background()

	_, err := svc.RecordTechnicalEvaluation(ctx, bid.ID, technicalScores(), "", false)
	require.NoError(t, err)

	updated, err := svc.RecordTechnicalEvaluation(ctx, bid.ID, technicalScores(), "corrected", true)
	require.NoError(t, err)
	require.False(t, updated.TechnicalEvaluation.IsDraft)
	require.Equal(t, models.BidTechnical, updated.Status)
}

func TestTechnicalRejectsInvalidScores(t *testing.T) {
	store := lifecycletest.NewStore()
	svc := newService(store)
	tender := seedTender(store, 850_000)
	bid := seedBid(store, tender.ID, 790_000, models.BidPending)

	bad := models.CriterionScores{"experience": {Score: 50, MaxScore: 20}}
	_, err := svc.RecordTechnicalEvaluation(context.Background(), bid.ID, bad, "", false)
	require.Equal(t, lifecycle.KindValidation, lifecycle.KindOf(err))
}

func TestTechnicalLockedOnceFinancialStarts(t *testing.T) {
	store := lifecycletest.NewStore()
	svc := newService(store)
	tender := seedTender(store, 850_000)
	bid := seedBid(store, tender.ID, 790_000, models.BidFinancial)
	seedFinalizedEvaluation(store, bid.ID, models.PhaseTechnical, technicalScores())

	_, err := svc.RecordTechnicalEvaluation(context.Background(), bid.ID, technicalScores(), "", false)
	require.Equal(t, lifecycle.KindPhaseLocked, lifecycle.KindOf(err))
}

func TestFinancialRequiresFinalizedTechnical(t *testing.T) {
	store := lifecycletest.NewStore()
	svc := newService(store)
	tender := seedTender(store, 850_000)
	bid := seedBid(store, tender.ID, 790_000, models.BidPending)

	// Draft technical only.
	_, err := svc.RecordTechnicalEvaluation(context.Background(), bid.ID, technicalScores(), "", true)
	require.NoError(t, err)

	_, err = svc.RecordFinancialEvaluation(context.Background(), bid.ID, financialScores(), "", false)
	require.Equal(t, lifecycle.KindPhaseLocked, lifecycle.KindOf(err))
}

func TestFinancialDraftAndCompletion(t *testing.T) {
	store := lifecycletest.NewStore()
	svc := newService(store)
	tender := seedTender(store, 850_000)
	bid := seedBid(store, tender.ID, 790_000, models.BidTechnical)
	seedFinalizedEvaluation(store, bid.ID, models.PhaseTechnical, technicalScores())
	ctx := context.Background()

	updated, err := svc.RecordFinancialEvaluation(ctx, bid.ID, financialScores(), "draft numbers", true)
	require.NoError(t, err)
	require.Equal(t, models.BidFinancial, updated.Status)
	require.True(t, updated.FinancialEvaluation.IsDraft)

	updated, err = svc.RecordFinancialEvaluation(ctx, bid.ID, financialScores(), "final numbers", false)
	require.NoError(t, err)
	require.Equal(t, models.BidCompleted, updated.Status)
	require.False(t, updated.FinancialEvaluation.IsDraft)
}

func TestDisqualifyRequiresReason(t *testing.T) {
	store := lifecycletest.NewStore()
	svc := newService(store)
	tender := seedTender(store, 850_000)
	bid := seedBid(store, tender.ID, 790_000, models.BidPending)

	_, err := svc.Disqualify(context.Background(), bid.ID, "   ")
	require.Equal(t, lifecycle.KindValidation, lifecycle.KindOf(err))
}

// Disqualifying a bid mid-evaluation is terminal: the financial call that
// follows must be rejected and leave the bid untouched.
func TestDisqualifyIsTerminal(t *testing.T) {
	store := lifecycletest.NewStore()
	svc := newService(store)
	tender := seedTender(store, 850_000)
	bid := seedBid(store, tender.ID, 790_000, models.BidTechnical)
	seedFinalizedEvaluation(store, bid.ID, models.PhaseTechnical, technicalScores())
	ctx := context.Background()

	updated, err := svc.Disqualify(ctx, bid.ID, "missing mandatory certification")
	require.NoError(t, err)
	require.Equal(t, models.BidDisqualified, updated.Status)
	require.Equal(t, "missing mandatory certification", updated.DisqualifiedReason)

	_, err = svc.RecordFinancialEvaluation(ctx, bid.ID, financialScores(), "", false)
	require.Equal(t, lifecycle.KindTerminalState, lifecycle.KindOf(err))

	_, err = svc.Disqualify(ctx, bid.ID, "again")
	require.Equal(t, lifecycle.KindTerminalState, lifecycle.KindOf(err))

	after, err := svc.GetBid(ctx, bid.ID)
	require.NoError(t, err)
	require.Equal(t, models.BidDisqualified, after.Status)
}

// A concurrent writer between read and save surfaces as stale state, never
// as a lost update.
func TestConcurrentWriteIsStale(t *testing.T) {
	store := lifecycletest.NewStore()
	svc := newService(store)
	tender := seedTender(store, 850_000)
	bid := seedBid(store, tender.ID, 790_000, models.BidPending)

	store.BeforeBidWrite = func(s *lifecycletest.Store) {
		s.MutateBid(bid.ID, func(b *models.Bid) {
			b.Status = models.BidDisqualified
			b.DisqualifiedReason = "withdrawn by vendor"
		})
	}

	_, err := svc.RecordTechnicalEvaluation(context.Background(), bid.ID, technicalScores(), "", false)
	require.Equal(t, lifecycle.KindStaleState, lifecycle.KindOf(err))
}
