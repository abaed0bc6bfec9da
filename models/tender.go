package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// TenderStage is the derived lifecycle stage of a tender. It is a projection
// over the tender's bid set and is never stored on the tender row itself.
type TenderStage string

const (
	StageOpen                TenderStage = "open"
	StageTechnicalEvaluation TenderStage = "technical-evaluation"
	StageFinancialEvaluation TenderStage = "financial-evaluation"
	StageCompleted           TenderStage = "completed"
)

func ValidTenderStage(s TenderStage) bool {
	switch s {
	case StageOpen, StageTechnicalEvaluation, StageFinancialEvaluation, StageCompleted:
		return true
	default:
		return false
	}
}

// Tender is a procurement opportunity published by a client organization.
// EstimatedValue is in currency minor units; zero means the estimate is not
// disclosed.
type Tender struct {
	ID                  uuid.UUID      `db:"id" json:"id"`
	Title               string         `db:"title" json:"title" validate:"required,max=150"`
	Category            string         `db:"category" json:"category" validate:"required,max=100"`
	EstimatedValue      int64          `db:"estimated_value" json:"estimatedValue" validate:"gte=0"`
	BidDeadline         time.Time      `db:"bid_deadline" json:"bidDeadline" validate:"required"`
	EligibilityCriteria pq.StringArray `db:"eligibility_criteria" json:"eligibilityCriteria"`
	DocumentIDs         pq.StringArray `db:"document_ids" json:"documentIds"`
	Archived            bool           `db:"archived" json:"archived"`
	Version             int            `db:"version" json:"version"`
	CreatedAt           time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time      `db:"updated_at" json:"-"`
}
