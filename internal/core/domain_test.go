package core

import (
	"errors"
	"testing"
)

func TestTransactionDraftValidate(t *testing.T) {
	good := TransactionDraft{
		Type:          TypeExpense,
		Amount:        Money{Cents: 1200},
		Category:      "food",
		Date:          NewDate(2024, 3, 1),
		PaymentMethod: PayCash,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []TransactionDraft{
		{Type: TypeExpense, Amount: Money{Cents: 0}, Category: "food", Date: NewDate(2024, 3, 1), PaymentMethod: PayCash},
		{Type: TypeExpense, Amount: Money{Cents: -100}, Category: "food", Date: NewDate(2024, 3, 1), PaymentMethod: PayCash},
		{Type: TypeExpense, Amount: Money{Cents: 100}, Category: "", Date: NewDate(2024, 3, 1), PaymentMethod: PayCash},
		{Type: TypeExpense, Amount: Money{Cents: 100}, Category: "   ", Date: NewDate(2024, 3, 1), PaymentMethod: PayCash},
		{Type: "transfer", Amount: Money{Cents: 100}, Category: "food", Date: NewDate(2024, 3, 1), PaymentMethod: PayCash},
		{Type: TypeExpense, Amount: Money{Cents: 100}, Category: "food", Date: Date{}, PaymentMethod: PayCash},
		{Type: TypeExpense, Amount: Money{Cents: 100}, Category: "food", Date: NewDate(2024, 3, 1), PaymentMethod: "check"},
	}
	for i, d := range bads {
		err := d.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: error %v should wrap ErrValidation", i, err)
		}
	}
}

func TestCategoryAccepts(t *testing.T) {
	cases := []struct {
		catType CategoryType
		txType  TransactionType
		want    bool
	}{
		{CategoryExpense, TypeExpense, true},
		{CategoryExpense, TypeIncome, false},
		{CategoryIncome, TypeIncome, true},
		{CategoryIncome, TypeExpense, false},
		{CategoryBoth, TypeExpense, true},
		{CategoryBoth, TypeIncome, true},
	}
	for i, tc := range cases {
		c := Category{Type: tc.catType}
		if got := c.Accepts(tc.txType); got != tc.want {
			t.Errorf("case %d: Accepts(%s) on %s = %v, want %v", i, tc.txType, tc.catType, got, tc.want)
		}
	}
}

func TestCategoryValidate(t *testing.T) {
	if err := (Category{Name: "Groceries", Type: CategoryExpense}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Category{Name: "  ", Type: CategoryExpense}).Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
	if err := (Category{Name: "x", Type: "mystery"}).Validate(); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for bad type, got %v", err)
	}
}

func TestDefaultCategories(t *testing.T) {
	cats := DefaultCategories()
	if len(cats) != 10 {
		t.Fatalf("expected 10 built-in categories, got %d", len(cats))
	}
	seen := map[string]struct{}{}
	var expense, income, both int
	for _, c := range cats {
		if _, dup := seen[c.ID]; dup {
			t.Fatalf("duplicate builtin id %q", c.ID)
		}
		seen[c.ID] = struct{}{}
		switch c.Type {
		case CategoryExpense:
			expense++
		case CategoryIncome:
			income++
		case CategoryBoth:
			both++
		}
	}
	if expense != 7 || income != 2 || both != 1 {
		t.Fatalf("builtin type split = %d/%d/%d, want 7/2/1", expense, income, both)
	}
}
