package models

// Criterion is one scored dimension of a rubric.
type Criterion struct {
	Key      string
	MaxScore float64
}

// Rubric is the fixed, ordered set of criteria for an evaluation phase.
// The weights are part of the domain contract, not configuration.
type Rubric []Criterion

// TechnicalRubric totals 100 points.
var TechnicalRubric = Rubric{
	{Key: "experience", MaxScore: 20},
	{Key: "expertise", MaxScore: 25},
	{Key: "resources", MaxScore: 20},
	{Key: "timeline", MaxScore: 15},
	{Key: "quality", MaxScore: 20},
}

// FinancialRubric totals 100 points.
var FinancialRubric = Rubric{
	{Key: "costEffectiveness", MaxScore: 30},
	{Key: "paymentTerms", MaxScore: 20},
	{Key: "totalCost", MaxScore: 30},
	{Key: "valueForMoney", MaxScore: 20},
}

// RubricFor returns the rubric for a phase, nil for an unknown phase.
func RubricFor(p EvaluationPhase) Rubric {
	switch p {
	case PhaseTechnical:
		return TechnicalRubric
	case PhaseFinancial:
		return FinancialRubric
	default:
		return nil
	}
}

// Lookup finds a criterion by key.
func (r Rubric) Lookup(key string) (Criterion, bool) {
	for _, c := range r {
		if c.Key == key {
			return c, true
		}
	}
	return Criterion{}, false
}

// MaxTotal is the sum of all criterion maxima.
func (r Rubric) MaxTotal() float64 {
	var total float64
	for _, c := range r {
		total += c.MaxScore
	}
	return total
}
