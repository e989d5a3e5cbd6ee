package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"kakeibo/internal/core"
	"kakeibo/internal/events"
	"kakeibo/internal/kvstore"
)

// AddTransaction validates a draft against the category and notebook
// registries, stamps id, timestamp and the active notebook, and prepends it
// to the ledger. Insertion order is newest-first regardless of date.
func (s *Service) AddTransaction(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	cat, ok := findCategory(s.state.Categories, draft.Category)
	if !ok {
		s.mu.Unlock()
		return core.Transaction{}, fmt.Errorf("%w: %q", core.ErrUnknownCategory, draft.Category)
	}
	if !cat.Accepts(draft.Type) {
		s.mu.Unlock()
		return core.Transaction{}, fmt.Errorf("%w: category %q does not accept %s transactions",
			core.ErrValidation, cat.Name, draft.Type)
	}
	notebook, ok := activeNotebook(s.state.Notebooks)
	if !ok {
		s.mu.Unlock()
		return core.Transaction{}, fmt.Errorf("%w: no active notebook", core.ErrUnknownNotebook)
	}

	tx := core.Transaction{
		ID:            uuid.NewString(),
		Type:          draft.Type,
		Amount:        draft.Amount,
		Category:      draft.Category,
		Date:          draft.Date,
		Note:          draft.Note,
		PaymentMethod: draft.PaymentMethod,
		Photo:         draft.Photo,
		Notebook:      notebook.ID,
		Timestamp:     s.now(),
	}
	s.state.Transactions = append([]core.Transaction{tx}, s.state.Transactions...)
	s.mu.Unlock()

	slog.InfoContext(ctx, "Transaction added",
		"id", tx.ID,
		"type", tx.Type,
		"category", tx.Category,
		"amount_cents", tx.Amount.Cents,
		"notebook", tx.Notebook)

	s.persist(ctx, kvstore.KeyTransactions)
	s.publishMutation(ctx, events.MutationCreated, tx)
	if tx.Type == core.TypeExpense {
		s.checkBudget(ctx, tx.Category)
	}
	return tx, nil
}

// UpdateTransaction replaces all user-editable fields of an existing
// transaction. ID, creation timestamp and owning notebook survive the edit.
func (s *Service) UpdateTransaction(ctx context.Context, id string, draft core.TransactionDraft) (core.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.Lock()
	cat, ok := findCategory(s.state.Categories, draft.Category)
	if !ok {
		s.mu.Unlock()
		return core.Transaction{}, fmt.Errorf("%w: %q", core.ErrUnknownCategory, draft.Category)
	}
	if !cat.Accepts(draft.Type) {
		s.mu.Unlock()
		return core.Transaction{}, fmt.Errorf("%w: category %q does not accept %s transactions",
			core.ErrValidation, cat.Name, draft.Type)
	}

	idx := -1
	for i, tx := range s.state.Transactions {
		if tx.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		s.notify.Notify(ctx, "transaction no longer exists")
		return core.Transaction{}, fmt.Errorf("%w: transaction %q", core.ErrNotFound, id)
	}

	prev := s.state.Transactions[idx]
	tx := core.Transaction{
		ID:            prev.ID,
		Type:          draft.Type,
		Amount:        draft.Amount,
		Category:      draft.Category,
		Date:          draft.Date,
		Note:          draft.Note,
		PaymentMethod: draft.PaymentMethod,
		Photo:         draft.Photo,
		Notebook:      prev.Notebook,
		Timestamp:     prev.Timestamp,
	}
	s.state.Transactions[idx] = tx
	s.mu.Unlock()

	slog.InfoContext(ctx, "Transaction updated", "id", tx.ID, "category", tx.Category)

	s.persist(ctx, kvstore.KeyTransactions)
	s.publishMutation(ctx, events.MutationUpdated, tx)
	if tx.Type == core.TypeExpense {
		s.checkBudget(ctx, tx.Category)
	}
	return tx, nil
}

// DeleteTransaction removes a transaction after user confirmation. A
// declined prompt aborts; a missing id is a silent no-op.
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	if !s.confirm.Confirm(ctx, "delete this transaction?") {
		slog.InfoContext(ctx, "Transaction delete declined", "id", id)
		return nil
	}

	s.mu.Lock()
	removed := false
	var deleted core.Transaction
	kept := s.state.Transactions[:0]
	for _, tx := range s.state.Transactions {
		if tx.ID == id {
			removed = true
			deleted = tx
			continue
		}
		kept = append(kept, tx)
	}
	s.state.Transactions = kept
	s.mu.Unlock()

	if !removed {
		return nil
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	s.persist(ctx, kvstore.KeyTransactions)
	s.publishMutation(ctx, events.MutationDeleted, deleted)
	return nil
}

// Query returns the transactions of one notebook matching a date window and
// search string, newest date first. The result is a fresh slice.
func (s *Service) Query(notebook string, dateFilter core.DateFilter, search string) ([]core.Transaction, error) {
	if !dateFilter.Valid() {
		return nil, fmt.Errorf("%w: invalid date filter %q", core.ErrValidation, dateFilter)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Filter(s.state.Transactions, notebook, dateFilter, search, s.state.Categories, s.now()), nil
}

// Stats filters like Query and aggregates the survivors into dashboard
// statistics.
func (s *Service) Stats(notebook string, dateFilter core.DateFilter, search string) (core.Stats, error) {
	txs, err := s.Query(notebook, dateFilter, search)
	if err != nil {
		return core.Stats{}, err
	}
	return core.ComputeStats(txs), nil
}

// monthSpent sums expense amounts for one category in the current calendar
// month, across all notebooks. Budgets are global, so spending is too.
func (s *Service) monthSpent(category string, now time.Time) core.Money {
	monthStart := core.NewDate(now.Year(), int(now.Month()), 1)

	s.mu.RLock()
	defer s.mu.RUnlock()
	var spent core.Money
	for _, tx := range s.state.Transactions {
		if tx.Type != core.TypeExpense || tx.Category != category {
			continue
		}
		if tx.Date.Before(monthStart.Time) {
			continue
		}
		spent.Cents += tx.Amount.Cents
	}
	return spent
}

func findCategory(categories []core.Category, id string) (core.Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return core.Category{}, false
}
