// Package scoring is the single source of truth for evaluation totals.
// No other package may sum criterion scores.
package scoring

import (
	"fmt"
	"math"

	"github.com/pentapillisuresh/getbid/models"
)

// Totals is the summed result of a criterion score set.
type Totals struct {
	TotalScore float64 `json:"totalScore"`
	MaxScore   float64 `json:"maxScore"`
}

// Percent returns TotalScore as a percentage of MaxScore, 0 when MaxScore
// is not positive.
func (t Totals) Percent() float64 {
	return Percent(t.TotalScore, t.MaxScore)
}

// Total sums score and maxScore across all criteria present. It is pure and
// total: a malformed entry (negative, non-finite, or score above its own
// maxScore) contributes 0 to both sums instead of failing, so a partially or
// badly scored bid can still be viewed.
func Total(scores models.CriterionScores) Totals {
	var out Totals
	for _, cs := range scores {
		if !wellFormed(cs) {
			continue
		}
		out.TotalScore += cs.Score
		out.MaxScore += cs.MaxScore
	}
	return out
}

func wellFormed(cs models.CriterionScore) bool {
	if math.IsNaN(cs.Score) || math.IsInf(cs.Score, 0) {
		return false
	}
	if math.IsNaN(cs.MaxScore) || math.IsInf(cs.MaxScore, 0) {
		return false
	}
	if cs.Score < 0 || cs.MaxScore <= 0 {
		return false
	}
	return cs.Score <= cs.MaxScore
}

// Percent computes score/max as a percentage, 0 when max is not positive.
func Percent(score, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return score / max * 100
}

// ValidateAgainst checks an entered score set against a rubric and returns
// one message per violation. An empty result means the scores are acceptable
// to persist. Missing criteria are not violations: drafts may be partial.
func ValidateAgainst(rubric models.Rubric, scores models.CriterionScores) []string {
	var problems []string
	for key, cs := range scores {
		crit, ok := rubric.Lookup(key)
		if !ok {
			problems = append(problems, fmt.Sprintf("unknown criterion %q", key))
			continue
		}
		if math.IsNaN(cs.Score) || math.IsInf(cs.Score, 0) {
			problems = append(problems, fmt.Sprintf("%s: score is not a finite number", key))
			continue
		}
		if cs.Score < 0 {
			problems = append(problems, fmt.Sprintf("%s: score %v is negative", key, cs.Score))
		}
		if cs.MaxScore != crit.MaxScore {
			problems = append(problems, fmt.Sprintf("%s: maxScore %v does not match rubric maximum %v", key, cs.MaxScore, crit.MaxScore))
		}
		if cs.Score > crit.MaxScore {
			problems = append(problems, fmt.Sprintf("%s: score %v exceeds maximum %v", key, cs.Score, crit.MaxScore))
		}
	}
	return problems
}
