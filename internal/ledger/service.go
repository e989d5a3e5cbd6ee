// Package ledger is the finance engine: it owns the in-memory state for
// transactions, categories, budgets and notebooks, enforces the mutation
// rules between them, and snapshots each collection to the key-value store
// after every change.
package ledger

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"kakeibo/internal/core"
	"kakeibo/internal/events"
	"kakeibo/internal/kvstore"
)

// Notifier surfaces user-facing notices (budget warnings, no-op edits).
// The engine decides when to notify, not how the notice is shown.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// State holds the six persisted collections. RecurringBills and Debts are
// carried as raw snapshots for forward compatibility; no operation writes
// them.
type State struct {
	Transactions   []core.Transaction
	Categories     []core.Category
	Budgets        core.Budgets
	Notebooks      []core.Notebook
	RecurringBills json.RawMessage
	Debts          json.RawMessage
}

// Service orchestrates all ledger mutations and queries. Mutations are
// applied to in-memory state first, then persisted; a failed save is logged
// and tolerated, never rolled back.
type Service struct {
	store   kvstore.Store
	events  *events.Client
	notify  Notifier
	confirm Confirmer
	now     func() time.Time

	mu    sync.RWMutex
	state State
}

type Option func(*Service)

// WithEvents attaches an AMQP client for mutation events and budget alerts.
func WithEvents(client *events.Client) Option {
	return func(s *Service) { s.events = client }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notify = n }
}

func WithConfirmer(c Confirmer) Option {
	return func(s *Service) { s.confirm = c }
}

// WithNow overrides the wall clock used for date filtering and timestamps.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(store kvstore.Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		notify:  logNotifier{},
		confirm: alwaysConfirm{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load restores all collections from the store. A missing or undecodable
// snapshot is treated as first run for that collection; defaults are seeded
// afterwards when categories or notebooks came back empty.
func (s *Service) Load(ctx context.Context) error {
	var (
		txs       []core.Transaction
		cats      []core.Category
		budgets   core.Budgets
		notebooks []core.Notebook
		recurring json.RawMessage
		debts     json.RawMessage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return loadSnapshot(gctx, s.store, kvstore.KeyTransactions, &txs) })
	g.Go(func() error { return loadSnapshot(gctx, s.store, kvstore.KeyCategories, &cats) })
	g.Go(func() error { return loadSnapshot(gctx, s.store, kvstore.KeyBudgets, &budgets) })
	g.Go(func() error { return loadSnapshot(gctx, s.store, kvstore.KeyNotebooks, &notebooks) })
	g.Go(func() error { return loadSnapshot(gctx, s.store, kvstore.KeyRecurringBills, &recurring) })
	g.Go(func() error { return loadSnapshot(gctx, s.store, kvstore.KeyDebts, &debts) })
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = State{
		Transactions:   txs,
		Categories:     cats,
		Budgets:        budgets,
		Notebooks:      notebooks,
		RecurringBills: recurring,
		Debts:          debts,
	}
	if s.state.Budgets == nil {
		s.state.Budgets = core.Budgets{}
	}
	s.mu.Unlock()

	if err := s.SeedDefaults(ctx); err != nil {
		return err
	}

	s.mu.RLock()
	counts := []any{
		"transactions", len(s.state.Transactions),
		"categories", len(s.state.Categories),
		"budgets", len(s.state.Budgets),
		"notebooks", len(s.state.Notebooks),
	}
	s.mu.RUnlock()
	slog.InfoContext(ctx, "Ledger state loaded", counts...)
	return nil
}

// loadSnapshot reads and decodes one collection. Absent keys and corrupt
// snapshots both leave the destination at its zero value; only a context
// failure propagates.
func loadSnapshot[T any](ctx context.Context, store kvstore.Store, key string, dst *T) error {
	raw, ok, err := store.Load(ctx, key)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.WarnContext(ctx, "Snapshot load failed, starting empty", "key", key, "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		slog.WarnContext(ctx, "Snapshot unreadable, starting empty", "key", key, "error", err)
	}
	return nil
}

// SeedDefaults installs the built-in categories and the default notebook
// when their collections are empty. Calling it again is a no-op.
func (s *Service) SeedDefaults(ctx context.Context) error {
	s.mu.Lock()
	seededCats, seededBooks := false, false
	if len(s.state.Categories) == 0 {
		s.state.Categories = core.DefaultCategories()
		seededCats = true
	}
	if len(s.state.Notebooks) == 0 {
		s.state.Notebooks = []core.Notebook{core.DefaultNotebook()}
		seededBooks = true
	}
	s.mu.Unlock()

	if seededCats {
		slog.InfoContext(ctx, "Seeded default categories")
		s.persist(ctx, kvstore.KeyCategories)
	}
	if seededBooks {
		slog.InfoContext(ctx, "Seeded default notebook")
		s.persist(ctx, kvstore.KeyNotebooks)
	}
	return nil
}

// persist snapshots one collection to the store. The in-memory mutation has
// already happened; a failed save is logged and the mutation stands.
func (s *Service) persist(ctx context.Context, key string) {
	s.mu.RLock()
	var value any
	switch key {
	case kvstore.KeyTransactions:
		value = s.state.Transactions
	case kvstore.KeyCategories:
		value = s.state.Categories
	case kvstore.KeyBudgets:
		value = s.state.Budgets
	case kvstore.KeyNotebooks:
		value = s.state.Notebooks
	}
	raw, err := json.Marshal(value)
	s.mu.RUnlock()

	if err != nil {
		slog.ErrorContext(ctx, "Snapshot marshal failed", "key", key, "error", err)
		return
	}
	if err := s.store.Save(ctx, key, string(raw)); err != nil {
		slog.ErrorContext(ctx, "Snapshot save failed, in-memory state kept",
			"key", key, "error", err)
	}
}

func (s *Service) publishMutation(ctx context.Context, kind events.MutationKind, tx core.Transaction) {
	event := events.NewMutationEvent(kind, tx.ID, tx.Notebook)
	if err := s.events.PublishMutation(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish mutation event",
			"kind", kind, "transaction_id", tx.ID, "error", err)
	}
}

type confirmKey struct{}

// WithConfirmation marks a context as carrying the user's answer to a
// destructive-action prompt. Transports that collected the answer up front
// (a confirm flag on the request) pass it through here.
func WithConfirmation(ctx context.Context, confirmed bool) context.Context {
	return context.WithValue(ctx, confirmKey{}, confirmed)
}

// ContextConfirmer answers prompts from the request context. When the
// context carries no answer, Fallback decides.
type ContextConfirmer struct {
	Fallback bool
}

func (c ContextConfirmer) Confirm(ctx context.Context, _ string) bool {
	if v, ok := ctx.Value(confirmKey{}).(bool); ok {
		return v
	}
	return c.Fallback
}

type logNotifier struct{}

func (logNotifier) Notify(ctx context.Context, message string) {
	slog.InfoContext(ctx, "Notice", "message", message)
}

type alwaysConfirm struct{}

func (alwaysConfirm) Confirm(context.Context, string) bool { return true }
