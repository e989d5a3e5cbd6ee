package core

// BudgetState classifies how much of a budget ceiling is consumed.
type BudgetState string

const (
	BudgetOK      BudgetState = "ok"
	BudgetWarning BudgetState = "warning"
	BudgetOver    BudgetState = "over"
)

// Utilization is the consumption of one category's budget over a period.
type Utilization struct {
	Spent  Money       `json:"spent"`
	Limit  Money       `json:"limit"`
	Ratio  float64     `json:"ratio"`
	Status BudgetState `json:"status"`
}

// BudgetUtilization computes utilization of a configured ceiling. Callers
// must verify a budget entry exists before calling; a zero limit would make
// the ratio meaningless.
//
// Thresholds use strict-greater comparisons: exactly 80% is still ok and
// exactly 100% is still warning. Comparison happens in integer cents so the
// boundary cases are exact.
func BudgetUtilization(spent, limit Money) Utilization {
	u := Utilization{
		Spent:  spent,
		Limit:  limit,
		Status: BudgetOK,
	}
	if limit.Cents > 0 {
		u.Ratio = float64(spent.Cents) / float64(limit.Cents)
	}
	switch {
	case spent.Cents > limit.Cents:
		u.Status = BudgetOver
	case spent.Cents*10 > limit.Cents*8:
		u.Status = BudgetWarning
	}
	return u
}
