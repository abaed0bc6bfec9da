package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EvaluationPhase string

const (
	PhaseTechnical EvaluationPhase = "technical"
	PhaseFinancial EvaluationPhase = "financial"
)

func ValidEvaluationPhase(p EvaluationPhase) bool {
	return p == PhaseTechnical || p == PhaseFinancial
}

// CriterionScore is one evaluator-entered score against a rubric criterion.
type CriterionScore struct {
	Score    float64 `json:"score"`
	MaxScore float64 `json:"maxScore"`
}

// CriterionScores maps criterion key to its entered score. Stored as a jsonb
// column; the rubric, not the map, defines criterion order.
type CriterionScores map[string]CriterionScore

func (c CriterionScores) Value() (driver.Value, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c)
}

func (c *CriterionScores) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	case nil:
		*c = nil
		return nil
	default:
		return fmt.Errorf("cannot scan %T into CriterionScores", src)
	}
}

// EvaluationRecord holds one phase's scoring of a bid. IsDraft flips to false
// exactly once, on completion, and never back. Totals are always derived from
// Criteria at read time, never persisted.
type EvaluationRecord struct {
	ID        int64           `db:"id" json:"id"`
	BidID     uuid.UUID       `db:"bid_id" json:"bidId"`
	Phase     EvaluationPhase `db:"phase" json:"phase"`
	Criteria  CriterionScores `db:"criteria" json:"criteria"`
	Notes     string          `db:"notes" json:"notes"`
	IsDraft   bool            `db:"is_draft" json:"isDraft"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time       `db:"updated_at" json:"-"`
}

// Finalized reports whether the record exists and is no longer a draft.
func (r *EvaluationRecord) Finalized() bool {
	return r != nil && !r.IsDraft
}
