package lifecycle

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pentapillisuresh/getbid/internal/scoring"
	"github.com/pentapillisuresh/getbid/models"
)

// RankMode selects which ranking view to compute.
type RankMode string

const (
	// RankByPrice orders qualifying bids by amount ascending; L1 is the
	// lowest qualifying bid.
	RankByPrice RankMode = "price"
	// RankByScore orders qualifying bids by the average of their technical
	// and financial totals, descending.
	RankByScore RankMode = "score"
)

func ValidRankMode(m RankMode) bool {
	return m == RankByPrice || m == RankByScore
}

// RankedBid is one row of a ranking view. Variance is the signed percentage
// difference between the bid amount and the tender's estimated value,
// present only in the price view and only when the estimate is known.
type RankedBid struct {
	Rank           int              `json:"rank"`
	Label          string           `json:"label,omitempty"`
	BidID          uuid.UUID        `json:"bidId"`
	VendorID       uuid.UUID        `json:"vendorId"`
	Amount         int64            `json:"amount"`
	Variance       *decimal.Decimal `json:"varianceFromEstimate,omitempty"`
	TechnicalScore float64          `json:"technicalScore,omitempty"`
	FinancialScore float64          `json:"financialScore,omitempty"`
	OverallScore   float64          `json:"overallScore,omitempty"`
}

// RankBids computes a ranking view for a tender. Both views are derived on
// every call from the stored bids, never cached, so a disqualification is
// reflected the moment it lands.
func (s *Service) RankBids(ctx context.Context, tenderID uuid.UUID, mode RankMode) ([]RankedBid, error) {
	if !ValidRankMode(mode) {
		return nil, Errorf(KindValidation, "unknown ranking mode %q", mode)
	}
	tender, err := s.store.GetTender(ctx, tenderID)
	if err != nil {
		return nil, err
	}
	bids, err := s.loadBidsForTender(ctx, tenderID)
	if err != nil {
		return nil, err
	}
	if mode == RankByPrice {
		return rankByPrice(tender, bids), nil
	}
	return rankByScore(bids), nil
}

// rankByPrice sorts non-disqualified bids ascending by amount, ties broken
// by earliest submission. Awarded bids stay in the view: the price ranking
// is a report over everything that ever qualified.
func rankByPrice(tender *models.Tender, bids []models.Bid) []RankedBid {
	qualified := make([]*models.Bid, 0, len(bids))
	for i := range bids {
		if bids[i].Status == models.BidDisqualified || bids[i].Amount <= 0 {
			continue
		}
		qualified = append(qualified, &bids[i])
	}
	sort.Slice(qualified, func(i, j int) bool {
		if qualified[i].Amount != qualified[j].Amount {
			return qualified[i].Amount < qualified[j].Amount
		}
		if !qualified[i].CreatedAt.Equal(qualified[j].CreatedAt) {
			return qualified[i].CreatedAt.Before(qualified[j].CreatedAt)
		}
		return qualified[i].ID.String() < qualified[j].ID.String()
	})

	out := make([]RankedBid, len(qualified))
	for i, b := range qualified {
		row := RankedBid{
			Rank:     i + 1,
			Label:    fmt.Sprintf("L%d", i+1),
			BidID:    b.ID,
			VendorID: b.VendorID,
			Amount:   b.Amount,
		}
		if tender.EstimatedValue > 0 {
			v := varianceFromEstimate(b.Amount, tender.EstimatedValue)
			row.Variance = &v
		}
		out[i] = row
	}
	return out
}

// varianceFromEstimate is (amount − estimate) / estimate × 100, signed,
// rounded to two decimal places. Negative means below the estimate.
func varianceFromEstimate(amount, estimate int64) decimal.Decimal {
	return decimal.NewFromInt(amount - estimate).
		Div(decimal.NewFromInt(estimate)).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

// rankByScore sorts non-disqualified bids with finalized evaluations by the
// average of the two phase totals, descending; ties go to the lower amount.
// Both rubrics total 100, so the average is itself on a 0–100 scale.
func rankByScore(bids []models.Bid) []RankedBid {
	qualified := make([]*models.Bid, 0, len(bids))
	for i := range bids {
		b := &bids[i]
		if b.Status == models.BidDisqualified {
			continue
		}
		if !b.TechnicalEvaluation.Finalized() || !b.FinancialEvaluation.Finalized() {
			continue
		}
		qualified = append(qualified, b)
	}

	type scored struct {
		bid  *models.Bid
		tech float64
		fin  float64
	}
	rows := make([]scored, len(qualified))
	for i, b := range qualified {
		rows[i] = scored{
			bid:  b,
			tech: scoring.Total(b.TechnicalEvaluation.Criteria).TotalScore,
			fin:  scoring.Total(b.FinancialEvaluation.Criteria).TotalScore,
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		oi := (rows[i].tech + rows[i].fin) / 2
		oj := (rows[j].tech + rows[j].fin) / 2
		if oi != oj {
			return oi > oj
		}
		if rows[i].bid.Amount != rows[j].bid.Amount {
			return rows[i].bid.Amount < rows[j].bid.Amount
		}
		if !rows[i].bid.CreatedAt.Equal(rows[j].bid.CreatedAt) {
			return rows[i].bid.CreatedAt.Before(rows[j].bid.CreatedAt)
		}
		return rows[i].bid.ID.String() < rows[j].bid.ID.String()
	})

	out := make([]RankedBid, len(rows))
	for i, r := range rows {
		out[i] = RankedBid{
			Rank:           i + 1,
			BidID:          r.bid.ID,
			VendorID:       r.bid.VendorID,
			Amount:         r.bid.Amount,
			TechnicalScore: r.tech,
			FinancialScore: r.fin,
			OverallScore:   (r.tech + r.fin) / 2,
		}
	}
	return out
}
