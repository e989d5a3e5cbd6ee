package core

import "sort"

// Stats is the derived dashboard aggregate for a filtered transaction set.
// ByCategory covers expense entries only: it answers "where did the money
// go", so income is excluded by design.
type Stats struct {
	Income     Money            `json:"income"`
	Expense    Money            `json:"expense"`
	Balance    Money            `json:"balance"`
	ByCategory map[string]Money `json:"categoryBreakdown"`
}

// ComputeStats derives totals over an already-filtered sequence. An empty
// input yields zero totals and an empty (non-nil) breakdown.
func ComputeStats(txs []Transaction) Stats {
	s := Stats{ByCategory: make(map[string]Money)}
	for _, t := range txs {
		switch t.Type {
		case TypeIncome:
			s.Income.Cents += t.Amount.Cents
		case TypeExpense:
			s.Expense.Cents += t.Amount.Cents
			prev := s.ByCategory[t.Category]
			s.ByCategory[t.Category] = Money{Cents: prev.Cents + t.Amount.Cents}
		}
	}
	s.Balance = Money{Cents: s.Income.Cents - s.Expense.Cents}
	return s
}

// CategoryAmount is one ranked row of the expense breakdown.
type CategoryAmount struct {
	Category string `json:"category"`
	Amount   Money  `json:"amount"`
}

// RankedBreakdown orders the expense breakdown by amount descending. Ties
// keep no particular order.
func (s Stats) RankedBreakdown() []CategoryAmount {
	out := make([]CategoryAmount, 0, len(s.ByCategory))
	for id, amt := range s.ByCategory {
		out = append(out, CategoryAmount{Category: id, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Amount.Cents > out[j].Amount.Cents
	})
	return out
}
