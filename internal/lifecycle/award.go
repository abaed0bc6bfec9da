package lifecycle

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pentapillisuresh/getbid/models"
)

// AwardResult is the outcome of a finalized award: the winning bid, the
// award row, and the bids left standing as runners-up. Losing bids keep
// their completed status; a tender may legitimately retain a runner-up.
type AwardResult struct {
	Award     *models.Award `json:"award"`
	Bid       *models.Bid   `json:"bid"`
	RunnersUp []uuid.UUID   `json:"runnersUp"`
}

// Award finalizes the tender by naming the winning bid. Preconditions: the
// bid belongs to the tender, its status is completed, and no award exists
// for the tender yet. The effect is applied atomically at the store; a
// failed attempt leaves the tender exactly as it was.
func (s *Service) Award(ctx context.Context, tenderID, bidID uuid.UUID, terms string) (*AwardResult, error) {
	if _, err := s.store.GetTender(ctx, tenderID); err != nil {
		return nil, err
	}
	bid, err := s.store.GetBid(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if bid.TenderID != tenderID {
		return nil, Errorf(KindValidation, "bid %s does not belong to tender %s", bidID, tenderID)
	}
	switch bid.Status {
	case models.BidCompleted:
		// eligible
	case models.BidAwarded, models.BidDisqualified:
		return nil, Errorf(KindTerminalState, "bid %s is already %s", bid.ID, bid.Status)
	default:
		return nil, Errorf(KindPhaseLocked, "bid %s has not completed evaluation (status %s)", bid.ID, bid.Status)
	}
	if existing, err := s.store.GetAwardForTender(ctx, tenderID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, Errorf(KindAwardConflict, "tender %s already awarded to bid %s", tenderID, existing.BidID)
	}

	// The store re-validates both preconditions inside one transaction; the
	// checks above only produce friendlier failures for the common cases.
	award, err := s.store.AwardBid(ctx, tenderID, bidID, terms)
	if err != nil {
		return nil, err
	}

	bid.Status = models.BidAwarded
	result := &AwardResult{Award: award, Bid: bid}
	bids, err := s.store.ListBidsForTender(ctx, tenderID)
	if err != nil {
		// The award is committed; the runner-up listing is informational.
		s.log.Warn("award committed but runner-up listing failed", zap.Error(err))
	}
	for i := range bids {
		if bids[i].ID != bidID && bids[i].Status == models.BidCompleted {
			result.RunnersUp = append(result.RunnersUp, bids[i].ID)
		}
	}
	s.log.Info("tender awarded",
		zap.String("tender_id", tenderID.String()),
		zap.String("bid_id", bidID.String()),
		zap.Int("runners_up", len(result.RunnersUp)))
	return result, nil
}
