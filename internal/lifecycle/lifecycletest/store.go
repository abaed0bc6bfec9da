// Package lifecycletest provides an in-memory Store with the same optimistic
// concurrency semantics as the Postgres implementation, for use in tests.
package lifecycletest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/pentapillisuresh/getbid/internal/lifecycle"
	"github.com/pentapillisuresh/getbid/models"
)

type evalKey struct {
	bidID uuid.UUID
	phase models.EvaluationPhase
}

// Store is an in-memory lifecycle.Store. Writes honor the version
// compare-and-set contract, so stale-state behavior is testable without a
// database.
type Store struct {
	mu          sync.Mutex
	tenders     map[uuid.UUID]models.Tender
	bids        map[uuid.UUID]models.Bid
	evaluations map[evalKey]models.EvaluationRecord
	awards      map[uuid.UUID]models.Award
	documents   map[uuid.UUID]models.Document
	nextEvalID  int64

	// BeforeBidWrite, when set, runs once right before the next bid write.
	// It lets a test play the part of a concurrent writer; MutateBid is
	// safe to call from it.
	BeforeBidWrite func(s *Store)

	// Err, when set, fails every call. Simulates a broken backend.
	Err error
}

func NewStore() *Store {
	return &Store{
		tenders:     make(map[uuid.UUID]models.Tender),
		bids:        make(map[uuid.UUID]models.Bid),
		evaluations: make(map[evalKey]models.EvaluationRecord),
		awards:      make(map[uuid.UUID]models.Award),
		documents:   make(map[uuid.UUID]models.Document),
	}
}

// SeedTender and SeedBid install rows directly, bypassing the service.

func (s *Store) SeedTender(t models.Tender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenders[t.ID] = t
}

func (s *Store) SeedBid(b models.Bid) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bids[b.ID] = b
}

func (s *Store) SeedEvaluation(rec models.EvaluationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == 0 {
		s.nextEvalID++
		rec.ID = s.nextEvalID
	}
	s.evaluations[evalKey{rec.BidID, rec.Phase}] = rec
}

// MutateBid edits a stored bid in place, bumping its version. Used by tests
// to simulate another session's write between a read and a save.
func (s *Store) MutateBid(id uuid.UUID, fn func(b *models.Bid)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.bids[id]
	fn(&b)
	b.Version++
	s.bids[id] = b
}

func (s *Store) CreateTender(ctx context.Context, t *models.Tender) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenders[t.ID] = *t
	return nil
}

func (s *Store) GetTender(ctx context.Context, id uuid.UUID) (*models.Tender, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenders[id]
	if !ok {
		return nil, lifecycle.Errorf(lifecycle.KindNotFound, "tender %s not found", id)
	}
	return &t, nil
}

func (s *Store) ListTenders(ctx context.Context, category string, limit, offset int) ([]models.Tender, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Tender{}
	for _, t := range s.tenders {
		if t.Archived {
			continue
		}
		if category == "" || t.Category == category {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) UpdateTender(ctx context.Context, t *models.Tender) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tenders[t.ID]
	if !ok {
		return lifecycle.Errorf(lifecycle.KindNotFound, "tender %s not found", t.ID)
	}
	if stored.Version != t.Version {
		return lifecycle.Errorf(lifecycle.KindStaleState, "tender %s was modified concurrently (version %d is stale)", t.ID, t.Version)
	}
	t.Version++
	s.tenders[t.ID] = *t
	return nil
}

func (s *Store) CreateBid(ctx context.Context, b *models.Bid) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bids[b.ID] = *b
	return nil
}

func (s *Store) GetBid(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bids[id]
	if !ok {
		return nil, lifecycle.Errorf(lifecycle.KindNotFound, "bid %s not found", id)
	}
	return &b, nil
}

func (s *Store) ListBidsForTender(ctx context.Context, tenderID uuid.UUID) ([]models.Bid, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Bid{}
	for _, b := range s.bids {
		if b.TenderID == tenderID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Store) UpdateBid(ctx context.Context, b *models.Bid) error {
	if s.Err != nil {
		return s.Err
	}
	s.fireBidWriteHook()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.casBidLocked(b)
}

// fireBidWriteHook runs the one-shot concurrent-writer hook outside the
// store lock so it can use MutateBid.
func (s *Store) fireBidWriteHook() {
	s.mu.Lock()
	hook := s.BeforeBidWrite
	s.BeforeBidWrite = nil
	s.mu.Unlock()
	if hook != nil {
		hook(s)
	}
}

func (s *Store) casBidLocked(b *models.Bid) error {
	stored, ok := s.bids[b.ID]
	if !ok {
		return lifecycle.Errorf(lifecycle.KindNotFound, "bid %s not found", b.ID)
	}
	if stored.Version != b.Version {
		return lifecycle.Errorf(lifecycle.KindStaleState, "bid %s was modified concurrently (version %d is stale)", b.ID, b.Version)
	}
	b.Version++
	s.bids[b.ID] = *b
	return nil
}

func (s *Store) SaveEvaluation(ctx context.Context, b *models.Bid, rec *models.EvaluationRecord) error {
	if s.Err != nil {
		return s.Err
	}
	s.fireBidWriteHook()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.casBidLocked(b); err != nil {
		return err
	}
	key := evalKey{rec.BidID, rec.Phase}
	if existing, ok := s.evaluations[key]; ok {
		rec.ID = existing.ID
		// A finalized record never returns to draft.
		rec.IsDraft = existing.IsDraft && rec.IsDraft
	} else {
		s.nextEvalID++
		rec.ID = s.nextEvalID
	}
	s.evaluations[key] = *rec
	return nil
}

func (s *Store) GetEvaluation(ctx context.Context, bidID uuid.UUID, phase models.EvaluationPhase) (*models.EvaluationRecord, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.evaluations[evalKey{bidID, phase}]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *Store) AwardBid(ctx context.Context, tenderID, bidID uuid.UUID, terms string) (*models.Award, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.fireBidWriteHook()
	s.mu.Lock()
	defer s.mu.Unlock()

	bid, ok := s.bids[bidID]
	if !ok || bid.TenderID != tenderID {
		return nil, lifecycle.Errorf(lifecycle.KindNotFound, "bid %s not found on tender %s", bidID, tenderID)
	}
	for _, sibling := range s.bids {
		if sibling.TenderID == tenderID && sibling.Status == models.BidAwarded {
			return nil, lifecycle.Errorf(lifecycle.KindAwardConflict, "tender %s already has an awarded bid", tenderID)
		}
	}
	if _, ok := s.awards[tenderID]; ok {
		return nil, lifecycle.Errorf(lifecycle.KindAwardConflict, "tender %s already has an award", tenderID)
	}
	switch bid.Status {
	case models.BidCompleted:
	case models.BidDisqualified:
		return nil, lifecycle.Errorf(lifecycle.KindTerminalState, "bid %s is disqualified", bidID)
	default:
		return nil, lifecycle.Errorf(lifecycle.KindStaleState, "bid %s is no longer awardable (status %s)", bidID, bid.Status)
	}

	bid.Status = models.BidAwarded
	bid.Version++
	s.bids[bidID] = bid

	award := models.Award{
		ID:       int64(len(s.awards) + 1),
		TenderID: tenderID,
		BidID:    bidID,
		Terms:    terms,
	}
	s.awards[tenderID] = award
	return &award, nil
}

func (s *Store) GetAwardForTender(ctx context.Context, tenderID uuid.UUID) (*models.Award, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.awards[tenderID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *Store) SaveDocument(ctx context.Context, d *models.Document) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[d.ID] = *d
	return nil
}

func (s *Store) GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.documents[id]
	if !ok {
		return nil, lifecycle.Errorf(lifecycle.KindNotFound, "document %s not found", id)
	}
	return &d, nil
}
