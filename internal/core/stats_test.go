package core

import "testing"

func TestComputeStatsEmpty(t *testing.T) {
	s := ComputeStats(nil)
	if s.Income.Cents != 0 || s.Expense.Cents != 0 || s.Balance.Cents != 0 {
		t.Fatalf("empty stats = %+v, want zeros", s)
	}
	if s.ByCategory == nil || len(s.ByCategory) != 0 {
		t.Fatalf("empty stats breakdown = %v, want empty map", s.ByCategory)
	}
}

func TestComputeStatsBreakdownExcludesIncome(t *testing.T) {
	txs := []Transaction{
		{Type: TypeExpense, Amount: Money{Cents: 12000}, Category: "food"},
		{Type: TypeExpense, Amount: Money{Cents: 3000}, Category: "food"},
		{Type: TypeExpense, Amount: Money{Cents: 5000}, Category: "transport"},
		{Type: TypeIncome, Amount: Money{Cents: 100000}, Category: "salary"},
	}
	s := ComputeStats(txs)
	if s.Income.Cents != 100000 {
		t.Errorf("income = %d, want 100000", s.Income.Cents)
	}
	if s.Expense.Cents != 20000 {
		t.Errorf("expense = %d, want 20000", s.Expense.Cents)
	}
	if s.Balance.Cents != 80000 {
		t.Errorf("balance = %d, want 80000", s.Balance.Cents)
	}
	if len(s.ByCategory) != 2 {
		t.Fatalf("breakdown = %v, want food and transport only", s.ByCategory)
	}
	if s.ByCategory["food"].Cents != 15000 {
		t.Errorf("food breakdown = %d, want 15000", s.ByCategory["food"].Cents)
	}
	if _, ok := s.ByCategory["salary"]; ok {
		t.Error("income category leaked into expense breakdown")
	}
}

func TestComputeStatsNegativeBalance(t *testing.T) {
	txs := []Transaction{
		{Type: TypeExpense, Amount: Money{Cents: 12000}, Category: "food"},
	}
	s := ComputeStats(txs)
	if s.Balance.Cents != -12000 {
		t.Fatalf("balance = %d, want -12000", s.Balance.Cents)
	}
}

func TestRankedBreakdown(t *testing.T) {
	s := Stats{ByCategory: map[string]Money{
		"food":      {Cents: 15000},
		"transport": {Cents: 5000},
		"housing":   {Cents: 90000},
	}}
	ranked := s.RankedBreakdown()
	if len(ranked) != 3 {
		t.Fatalf("ranked length = %d, want 3", len(ranked))
	}
	if ranked[0].Category != "housing" || ranked[1].Category != "food" || ranked[2].Category != "transport" {
		t.Fatalf("ranked order = %v", ranked)
	}
}
