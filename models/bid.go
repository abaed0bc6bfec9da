package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type BidStatus string

const (
	BidPending      BidStatus = "pending"
	BidTechnical    BidStatus = "technical"
	BidFinancial    BidStatus = "financial"
	BidCompleted    BidStatus = "completed"
	BidAwarded      BidStatus = "awarded"
	BidDisqualified BidStatus = "disqualified"
)

func ValidBidStatus(s BidStatus) bool {
	switch s {
	case BidPending, BidTechnical, BidFinancial, BidCompleted, BidAwarded, BidDisqualified:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status admits no further transitions.
func (s BidStatus) Terminal() bool {
	return s == BidAwarded || s == BidDisqualified
}

// Bid is a vendor's priced proposal against a tender. Amount is in currency
// minor units and must be positive. The technical and financial evaluation
// records are loaded alongside the bid; they are nil until the first
// evaluator saves the corresponding phase.
type Bid struct {
	ID                    uuid.UUID      `db:"id" json:"id"`
	TenderID              uuid.UUID      `db:"tender_id" json:"tenderId" validate:"required"`
	VendorID              uuid.UUID      `db:"vendor_id" json:"vendorId" validate:"required"`
	Amount                int64          `db:"amount" json:"amount" validate:"required,gt=0"`
	ProposedTimeline      string         `db:"proposed_timeline" json:"proposedTimeline" validate:"max=200"`
	Summary               string         `db:"summary" json:"summary" validate:"max=2000"`
	QuotationDocumentID   *uuid.UUID     `db:"quotation_document_id" json:"quotationDocumentId,omitempty"`
	SupportingDocumentIDs pq.StringArray `db:"supporting_document_ids" json:"supportingDocumentIds"`
	Status                BidStatus      `db:"status" json:"status"`
	DisqualifiedReason    string         `db:"disqualified_reason" json:"disqualifiedReason,omitempty"`
	Version               int            `db:"version" json:"version"`
	CreatedAt             time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time      `db:"updated_at" json:"-"`

	TechnicalEvaluation *EvaluationRecord `db:"-" json:"technicalEvaluation,omitempty"`
	FinancialEvaluation *EvaluationRecord `db:"-" json:"financialEvaluation,omitempty"`
}

// Award is the terminal decision naming one bid as the winner of a tender.
// At most one row exists per tender.
type Award struct {
	ID        int64     `db:"id" json:"id"`
	TenderID  uuid.UUID `db:"tender_id" json:"tenderId"`
	BidID     uuid.UUID `db:"bid_id" json:"bidId"`
	Terms     string    `db:"terms" json:"terms"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Document is an uploaded file referenced by tenders and bids. Only the id
// leaves this service; callers treat it as an opaque foreign key.
type Document struct {
	ID          uuid.UUID `db:"id" json:"id"`
	FileName    string    `db:"file_name" json:"fileName"`
	ContentType string    `db:"content_type" json:"contentType"`
	SizeBytes   int64     `db:"size_bytes" json:"sizeBytes"`
	Data        []byte    `db:"data" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
