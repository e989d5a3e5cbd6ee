package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Error taxonomy. Every domain error wraps one of these sentinels so that
// callers can classify failures with errors.Is regardless of the detail text.
var (
	ErrValidation  = errors.New("validation failed")
	ErrConstraint  = errors.New("constraint violated")
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence failed")
)

var (
	ErrInvalidAmount   = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrEmptyCategory   = fmt.Errorf("%w: empty category", ErrValidation)
	ErrEmptyName       = fmt.Errorf("%w: empty name", ErrValidation)
	ErrUnknownCategory = fmt.Errorf("%w: unknown category", ErrValidation)
	ErrUnknownNotebook = fmt.Errorf("%w: unknown notebook", ErrValidation)
	ErrCategoryInUse   = fmt.Errorf("%w: category has transactions", ErrConstraint)
)

const (
	CategoryExpense CategoryType = "expense"
	CategoryIncome  CategoryType = "income"
	CategoryBoth    CategoryType = "both"
)

const (
	TypeExpense TransactionType = "expense"
	TypeIncome  TransactionType = "income"
)

const (
	PayCash     PaymentMethod = "cash"
	PayCard     PaymentMethod = "card"
	PayTransfer PaymentMethod = "transfer"
)

type (
	CategoryType    string
	TransactionType string
	PaymentMethod   string

	// Category labels transactions. Built-ins use fixed lowercase slug ids,
	// user-created ones a generated id. Type constrains which transaction
	// types may reference the category.
	Category struct {
		ID    string       `json:"id"`
		Name  string       `json:"name"`
		Icon  string       `json:"icon"`
		Color string       `json:"color"`
		Type  CategoryType `json:"type"`
	}

	// Transaction is a single ledger entry. ID and Timestamp are assigned at
	// creation and survive edits; Notebook is fixed at creation.
	Transaction struct {
		ID            string          `json:"id"`
		Type          TransactionType `json:"type"`
		Amount        Money           `json:"amount"`
		Category      string          `json:"category"`
		Date          Date            `json:"date"`
		Note          string          `json:"note"`
		PaymentMethod PaymentMethod   `json:"paymentMethod"`
		Photo         string          `json:"photo,omitempty"`
		Notebook      string          `json:"notebook"`
		Timestamp     time.Time       `json:"timestamp"`
	}

	// Budgets maps a category id to its spending ceiling. Absence of an
	// entry means no budget is configured for that category.
	Budgets map[string]Money

	// Notebook is an isolated scope partitioning transactions. Exactly one
	// notebook is active at a time.
	Notebook struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Active bool   `json:"active"`
	}

	// TransactionDraft carries the user-editable fields of a transaction.
	// The engine stamps id, timestamp and notebook.
	TransactionDraft struct {
		Type          TransactionType `json:"type"`
		Amount        Money           `json:"amount"`
		Category      string          `json:"category"`
		Date          Date            `json:"date"`
		Note          string          `json:"note"`
		PaymentMethod PaymentMethod   `json:"paymentMethod"`
		Photo         string          `json:"photo,omitempty"`
	}
)

func (t TransactionType) Valid() bool {
	return t == TypeExpense || t == TypeIncome
}

func (p PaymentMethod) Valid() bool {
	return p == PayCash || p == PayCard || p == PayTransfer
}

func (ct CategoryType) Valid() bool {
	return ct == CategoryExpense || ct == CategoryIncome || ct == CategoryBoth
}

// Accepts reports whether a transaction of type t may reference the category.
func (c Category) Accepts(t TransactionType) bool {
	return c.Type == CategoryBoth || string(c.Type) == string(t)
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Type.Valid() {
		return fmt.Errorf("%w: invalid category type %q", ErrValidation, c.Type)
	}
	return nil
}

func (d TransactionDraft) Validate() error {
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(d.Category) == "" {
		return ErrEmptyCategory
	}
	if !d.Type.Valid() {
		return fmt.Errorf("%w: invalid transaction type %q", ErrValidation, d.Type)
	}
	if !d.PaymentMethod.Valid() {
		return fmt.Errorf("%w: invalid payment method %q", ErrValidation, d.PaymentMethod)
	}
	if err := d.Date.Validate(); err != nil {
		return err
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// DefaultCategories returns the built-in set seeded on first run.
func DefaultCategories() []Category {
	return []Category{
		{ID: "food", Name: "Food", Icon: "🍜", Color: "#ef4444", Type: CategoryExpense},
		{ID: "transport", Name: "Transport", Icon: "🚗", Color: "#3b82f6", Type: CategoryExpense},
		{ID: "entertainment", Name: "Entertainment", Icon: "🎮", Color: "#8b5cf6", Type: CategoryExpense},
		{ID: "shopping", Name: "Shopping", Icon: "🛍️", Color: "#ec4899", Type: CategoryExpense},
		{ID: "medical", Name: "Medical", Icon: "🏥", Color: "#10b981", Type: CategoryExpense},
		{ID: "education", Name: "Education", Icon: "📚", Color: "#f59e0b", Type: CategoryExpense},
		{ID: "housing", Name: "Housing", Icon: "🏠", Color: "#6366f1", Type: CategoryExpense},
		{ID: "salary", Name: "Salary", Icon: "💰", Color: "#10b981", Type: CategoryIncome},
		{ID: "investment", Name: "Investment", Icon: "📈", Color: "#06b6d4", Type: CategoryIncome},
		{ID: "other", Name: "Other", Icon: "📦", Color: "#6b7280", Type: CategoryBoth},
	}
}

// DefaultNotebook is the notebook seeded on first run and the initial scope
// for all reads and writes.
func DefaultNotebook() Notebook {
	return Notebook{ID: "default", Name: "Personal", Active: true}
}
