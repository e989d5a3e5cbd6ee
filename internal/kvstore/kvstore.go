// Package kvstore defines the persistent key-value store the ledger engine
// writes its snapshots to. Each logical collection is one key holding a
// JSON-encoded snapshot; Save overwrites the whole value (last write wins).
package kvstore

import "context"

// Store keys, one per logical collection. recurringBills and debts are
// loaded for snapshot forward-compatibility but never written by any
// in-scope operation.
const (
	KeyTransactions   = "transactions"
	KeyCategories     = "categories"
	KeyBudgets        = "budgets"
	KeyNotebooks      = "notebooks"
	KeyRecurringBills = "recurringBills"
	KeyDebts          = "debts"
)

// Store is the outbound persistence port.
type Store interface {
	// Load returns the last-saved snapshot for key, or ok=false if the key
	// was never written.
	Load(ctx context.Context, key string) (value string, ok bool, err error)

	// Save atomically overwrites the snapshot for key.
	Save(ctx context.Context, key, value string) error

	Close() error
}
