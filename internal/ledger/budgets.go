package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"kakeibo/internal/core"
	"kakeibo/internal/events"
	"kakeibo/internal/kvstore"
)

// Budgets returns a copy of the ceiling map.
func (s *Service) Budgets() core.Budgets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(core.Budgets, len(s.state.Budgets))
	for id, limit := range s.state.Budgets {
		out[id] = limit
	}
	return out
}

// SetBudget stores or overwrites one category's ceiling. The category id is
// deliberately not checked against the registry; orphaned entries are
// tolerated.
func (s *Service) SetBudget(ctx context.Context, categoryID string, limit core.Money) error {
	if categoryID == "" {
		return core.ErrEmptyCategory
	}
	if err := limit.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.state.Budgets == nil {
		s.state.Budgets = core.Budgets{}
	}
	s.state.Budgets[categoryID] = limit
	s.mu.Unlock()

	slog.InfoContext(ctx, "Budget set", "category", categoryID, "limit_cents", limit.Cents)
	s.persist(ctx, kvstore.KeyBudgets)
	return nil
}

// BudgetReport computes current-month utilization for every configured
// ceiling. Categories without a budget entry do not appear.
func (s *Service) BudgetReport() map[string]core.Utilization {
	now := s.now()
	report := make(map[string]core.Utilization)
	for id, limit := range s.Budgets() {
		report[id] = core.BudgetUtilization(s.monthSpent(id, now), limit)
	}
	return report
}

// checkBudget runs after an expense mutation: when the category's
// current-month spending crosses a threshold, the user is notified and an
// alert is published for background consumers.
func (s *Service) checkBudget(ctx context.Context, categoryID string) {
	s.mu.RLock()
	limit, ok := s.state.Budgets[categoryID]
	s.mu.RUnlock()
	if !ok {
		return
	}

	spent := s.monthSpent(categoryID, s.now())
	u := core.BudgetUtilization(spent, limit)
	if u.Status == core.BudgetOK {
		return
	}

	switch u.Status {
	case core.BudgetOver:
		s.notify.Notify(ctx, fmt.Sprintf("budget exceeded for %s: spent %s of %s",
			categoryID, spent, limit))
	case core.BudgetWarning:
		s.notify.Notify(ctx, fmt.Sprintf("budget warning for %s: spent %s of %s",
			categoryID, spent, limit))
	}

	alert := events.NewBudgetAlert(categoryID, spent.Cents, limit.Cents, string(u.Status))
	if err := s.events.PublishBudgetAlert(ctx, alert); err != nil {
		slog.ErrorContext(ctx, "Failed to publish budget alert",
			"category", categoryID, "status", u.Status, "error", err)
	}
}
