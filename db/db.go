// Package db implements the lifecycle Store on Postgres via sqlx.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pentapillisuresh/getbid/internal/lifecycle"
	"github.com/pentapillisuresh/getbid/models"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// Tenders

func (s *Storage) CreateTender(ctx context.Context, t *models.Tender) error {
	query := `
        INSERT INTO tenders
            (id, title, category, estimated_value, bid_deadline, eligibility_criteria, document_ids, archived, version)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING created_at, updated_at`
	return s.db.QueryRowContext(ctx, query,
		t.ID, t.Title, t.Category, t.EstimatedValue, t.BidDeadline,
		t.EligibilityCriteria, t.DocumentIDs, t.Archived, t.Version).
		Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (s *Storage) GetTender(ctx context.Context, id uuid.UUID) (*models.Tender, error) {
	t := &models.Tender{}
	query := `SELECT * FROM tenders WHERE id=$1`
	if err := s.db.GetContext(ctx, t, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, lifecycle.Errorf(lifecycle.KindNotFound, "tender %s not found", id)
		}
		return nil, err
	}
	return t, nil
}

func (s *Storage) ListTenders(ctx context.Context, category string, limit, offset int) ([]models.Tender, error) {
	baseQuery := `SELECT * FROM tenders`
	var args []interface{}
	filters := []string{"NOT archived"}

	if category != "" {
		args = append(args, category)
		filters = append(filters, fmt.Sprintf("category = $%d", len(args)))
	}
	query := baseQuery + " WHERE " + strings.Join(filters, " AND ")
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	tenders := []models.Tender{}
	if err := s.db.SelectContext(ctx, &tenders, query, args...); err != nil {
		return nil, err
	}
	return tenders, nil
}

// UpdateTender is a compare-and-set on (id, version), mirroring UpdateBid.
func (s *Storage) UpdateTender(ctx context.Context, t *models.Tender) error {
	query := `
        UPDATE tenders
        SET title=$1, category=$2, estimated_value=$3, bid_deadline=$4,
            eligibility_criteria=$5, document_ids=$6, archived=$7,
            version=version+1, updated_at=NOW()
        WHERE id=$8 AND version=$9`
	res, err := s.db.ExecContext(ctx, query,
		t.Title, t.Category, t.EstimatedValue, t.BidDeadline,
		t.EligibilityCriteria, t.DocumentIDs, t.Archived, t.ID, t.Version)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var exists bool
		if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM tenders WHERE id=$1)`, t.ID); err != nil {
			return err
		}
		if !exists {
			return lifecycle.Errorf(lifecycle.KindNotFound, "tender %s not found", t.ID)
		}
		return lifecycle.Errorf(lifecycle.KindStaleState, "tender %s was modified concurrently (version %d is stale)", t.ID, t.Version)
	}
	t.Version++
	return nil
}

// Bids

func (s *Storage) CreateBid(ctx context.Context, b *models.Bid) error {
	query := `
        INSERT INTO bids
            (id, tender_id, vendor_id, amount, proposed_timeline, summary,
             quotation_document_id, supporting_document_ids, status, disqualified_reason, version)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING created_at, updated_at`
	return s.db.QueryRowContext(ctx, query,
		b.ID, b.TenderID, b.VendorID, b.Amount, b.ProposedTimeline, b.Summary,
		b.QuotationDocumentID, b.SupportingDocumentIDs, b.Status, b.DisqualifiedReason, b.Version).
		Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (s *Storage) GetBid(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	b := &models.Bid{}
	query := `SELECT * FROM bids WHERE id=$1`
	if err := s.db.GetContext(ctx, b, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, lifecycle.Errorf(lifecycle.KindNotFound, "bid %s not found", id)
		}
		return nil, err
	}
	return b, nil
}

func (s *Storage) ListBidsForTender(ctx context.Context, tenderID uuid.UUID) ([]models.Bid, error) {
	bids := []models.Bid{}
	query := `SELECT * FROM bids WHERE tender_id=$1 ORDER BY created_at ASC`
	if err := s.db.SelectContext(ctx, &bids, query, tenderID); err != nil {
		return nil, err
	}
	return bids, nil
}

// UpdateBid is a compare-and-set on (id, version). On success the version
// is bumped; a concurrent writer makes the precondition fail and the caller
// sees a stale-state error instead of a lost update.
func (s *Storage) UpdateBid(ctx context.Context, b *models.Bid) error {
	if err := s.casBid(ctx, s.db, b); err != nil {
		return err
	}
	b.Version++
	return nil
}

// execer covers both *sqlx.DB and *sqlx.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func (s *Storage) casBid(ctx context.Context, ex execer, b *models.Bid) error {
	query := `
        UPDATE bids
        SET amount=$1, proposed_timeline=$2, summary=$3, quotation_document_id=$4,
            supporting_document_ids=$5, status=$6, disqualified_reason=$7,
            version=version+1, updated_at=NOW()
        WHERE id=$8 AND version=$9`
	res, err := ex.ExecContext(ctx, query,
		b.Amount, b.ProposedTimeline, b.Summary, b.QuotationDocumentID,
		b.SupportingDocumentIDs, b.Status, b.DisqualifiedReason, b.ID, b.Version)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var exists bool
		if err := ex.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM bids WHERE id=$1)`, b.ID); err != nil {
			return err
		}
		if !exists {
			return lifecycle.Errorf(lifecycle.KindNotFound, "bid %s not found", b.ID)
		}
		return lifecycle.Errorf(lifecycle.KindStaleState, "bid %s was modified concurrently (version %d is stale)", b.ID, b.Version)
	}
	return nil
}

// Evaluations

// SaveEvaluation writes the bid transition and the evaluation record in one
// transaction so a partially applied evaluation is never observable.
func (s *Storage) SaveEvaluation(ctx context.Context, b *models.Bid, rec *models.EvaluationRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.casBid(ctx, tx, b); err != nil {
		return err
	}

	query := `
        INSERT INTO bid_evaluations (bid_id, phase, criteria, notes, is_draft)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (bid_id, phase) DO UPDATE
            SET criteria = EXCLUDED.criteria,
                notes = EXCLUDED.notes,
                is_draft = bid_evaluations.is_draft AND EXCLUDED.is_draft,
                updated_at = NOW()
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRowContext(ctx, query,
		rec.BidID, rec.Phase, rec.Criteria, rec.Notes, rec.IsDraft).
		Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	b.Version++
	return nil
}

func (s *Storage) GetEvaluation(ctx context.Context, bidID uuid.UUID, phase models.EvaluationPhase) (*models.EvaluationRecord, error) {
	rec := &models.EvaluationRecord{}
	query := `SELECT * FROM bid_evaluations WHERE bid_id=$1 AND phase=$2`
	if err := s.db.GetContext(ctx, rec, query, bidID, phase); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// Awards

// AwardBid performs the award as a single transaction. The UPDATE carries
// the whole invariant: the bid must still be completed and no sibling may
// already be awarded. The unique index on awards.tender_id backstops the
// insert against a racing transaction.
func (s *Storage) AwardBid(ctx context.Context, tenderID, bidID uuid.UUID, terms string) (*models.Award, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        UPDATE bids
        SET status=$1, version=version+1, updated_at=NOW()
        WHERE id=$2 AND tender_id=$3 AND status=$4
          AND NOT EXISTS (
              SELECT 1 FROM bids sibling
              WHERE sibling.tender_id=$3 AND sibling.status=$1
          )`,
		models.BidAwarded, bidID, tenderID, models.BidCompleted)
	if err != nil {
		return nil, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, s.explainAwardFailure(ctx, tenderID, bidID)
	}

	award := &models.Award{TenderID: tenderID, BidID: bidID, Terms: terms}
	err = tx.QueryRowContext(ctx, `
        INSERT INTO awards (tender_id, bid_id, terms)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`,
		tenderID, bidID, terms).
		Scan(&award.ID, &award.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, lifecycle.Errorf(lifecycle.KindAwardConflict, "tender %s already has an award", tenderID)
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return award, nil
}

// explainAwardFailure turns a zero-row award CAS into the precise typed
// failure, reading outside the aborted transaction.
func (s *Storage) explainAwardFailure(ctx context.Context, tenderID, bidID uuid.UUID) error {
	var status models.BidStatus
	err := s.db.GetContext(ctx, &status, `SELECT status FROM bids WHERE id=$1 AND tender_id=$2`, bidID, tenderID)
	if errors.Is(err, sql.ErrNoRows) {
		return lifecycle.Errorf(lifecycle.KindNotFound, "bid %s not found on tender %s", bidID, tenderID)
	}
	if err != nil {
		return err
	}
	var siblingAwarded bool
	if err := s.db.GetContext(ctx, &siblingAwarded,
		`SELECT EXISTS (SELECT 1 FROM bids WHERE tender_id=$1 AND status=$2)`,
		tenderID, models.BidAwarded); err != nil {
		return err
	}
	switch {
	case siblingAwarded:
		return lifecycle.Errorf(lifecycle.KindAwardConflict, "tender %s already has an awarded bid", tenderID)
	case status == models.BidDisqualified:
		return lifecycle.Errorf(lifecycle.KindTerminalState, "bid %s is disqualified", bidID)
	case status != models.BidCompleted:
		return lifecycle.Errorf(lifecycle.KindStaleState, "bid %s is no longer awardable (status %s)", bidID, status)
	default:
		return lifecycle.Errorf(lifecycle.KindStaleState, "bid %s changed concurrently during award", bidID)
	}
}

func (s *Storage) GetAwardForTender(ctx context.Context, tenderID uuid.UUID) (*models.Award, error) {
	award := &models.Award{}
	query := `SELECT * FROM awards WHERE tender_id=$1`
	if err := s.db.GetContext(ctx, award, query, tenderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return award, nil
}

// Documents

func (s *Storage) SaveDocument(ctx context.Context, d *models.Document) error {
	query := `
        INSERT INTO documents (id, file_name, content_type, size_bytes, data)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at`
	return s.db.QueryRowContext(ctx, query,
		d.ID, d.FileName, d.ContentType, d.SizeBytes, d.Data).
		Scan(&d.CreatedAt)
}

func (s *Storage) GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	d := &models.Document{}
	query := `SELECT * FROM documents WHERE id=$1`
	if err := s.db.GetContext(ctx, d, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, lifecycle.Errorf(lifecycle.KindNotFound, "document %s not found", id)
		}
		return nil, err
	}
	return d, nil
}
