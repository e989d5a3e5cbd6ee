// Package worker consumes ledger mutation events and exports created
// transactions to a spreadsheet.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"kakeibo/internal/cache"
	"kakeibo/internal/core"
	"kakeibo/internal/events"
	"kakeibo/internal/kvstore"
	"kakeibo/internal/sheets"
)

// ExportWorker reads transaction snapshots from the key-value store and
// appends newly created transactions as spreadsheet rows. Delivery is
// at-least-once, so processed events are remembered in an LRU to keep
// redeliveries from producing duplicate rows.
type ExportWorker struct {
	store  kvstore.Store
	sheets sheets.RowAppender
	seen   *cache.LRUCache[struct{}]
}

func NewExportWorker(store kvstore.Store, appender sheets.RowAppender) *ExportWorker {
	return &ExportWorker{
		store:  store,
		sheets: appender,
		seen:   cache.NewLRUCache[struct{}](1024, 24*time.Hour),
	}
}

// Run consumes mutation events until ctx is cancelled. A sweeper keeps the
// dedupe cache from holding day-old keys past their TTL.
func (w *ExportWorker) Run(ctx context.Context, client *events.Client) error {
	sweeper := cache.NewManager()
	sweeper.Register(w.seen)
	sweeper.StartCleanup(time.Hour)
	defer sweeper.Stop()

	return client.ConsumeMutations(ctx, func(event *events.MutationEvent) error {
		return w.HandleMutation(ctx, event)
	})
}

// HandleMutation processes one mutation event. Only creations produce a
// row; the export sheet is append-only, so edits and deletions are logged
// and acknowledged.
func (w *ExportWorker) HandleMutation(ctx context.Context, event *events.MutationEvent) error {
	key := event.DedupeKey()
	if _, dup := w.seen.Get(key); dup {
		slog.InfoContext(ctx, "Skipping redelivered event", "dedupe_key", key)
		return nil
	}

	if event.Kind != events.MutationCreated {
		slog.InfoContext(ctx, "Ignoring non-create mutation",
			"kind", event.Kind, "transaction_id", event.TransactionID)
		w.seen.Set(key, struct{}{})
		return nil
	}

	tx, ok, err := w.lookupTransaction(ctx, event.TransactionID)
	if err != nil {
		return fmt.Errorf("lookup transaction %s: %w", event.TransactionID, err)
	}
	if !ok {
		// Deleted between publish and consumption; nothing to export.
		slog.WarnContext(ctx, "Transaction missing from snapshot, skipping",
			"transaction_id", event.TransactionID)
		w.seen.Set(key, struct{}{})
		return nil
	}

	ref, err := w.sheets.AppendTransaction(ctx, tx, w.categoryName(ctx, tx.Category))
	if err != nil {
		return fmt.Errorf("append transaction %s: %w", tx.ID, err)
	}
	w.seen.Set(key, struct{}{})

	slog.InfoContext(ctx, "Transaction exported",
		"transaction_id", tx.ID,
		"sheets_ref", ref,
		"amount_cents", tx.Amount.Cents)
	return nil
}

func (w *ExportWorker) lookupTransaction(ctx context.Context, id string) (core.Transaction, bool, error) {
	raw, ok, err := w.store.Load(ctx, kvstore.KeyTransactions)
	if err != nil {
		return core.Transaction{}, false, fmt.Errorf("load transactions snapshot: %w", err)
	}
	if !ok {
		return core.Transaction{}, false, nil
	}

	var txs []core.Transaction
	if err := json.Unmarshal([]byte(raw), &txs); err != nil {
		return core.Transaction{}, false, fmt.Errorf("decode transactions snapshot: %w", err)
	}
	for _, tx := range txs {
		if tx.ID == id {
			return tx, true, nil
		}
	}
	return core.Transaction{}, false, nil
}

// categoryName resolves a category id to its display name, falling back to
// the raw id when the registry snapshot is unavailable.
func (w *ExportWorker) categoryName(ctx context.Context, id string) string {
	raw, ok, err := w.store.Load(ctx, kvstore.KeyCategories)
	if err != nil || !ok {
		return id
	}
	var cats []core.Category
	if err := json.Unmarshal([]byte(raw), &cats); err != nil {
		return id
	}
	for _, c := range cats {
		if c.ID == id {
			return c.Name
		}
	}
	return id
}
