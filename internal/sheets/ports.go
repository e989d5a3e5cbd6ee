// Package sheets defines the outbound port for exporting ledger
// transactions to a spreadsheet, one row per transaction.
package sheets

import (
	"context"

	"kakeibo/internal/core"
)

// RowAppender writes one transaction as a spreadsheet row. The category
// display name is resolved by the caller so the export stays readable
// without access to the registry.
type RowAppender interface {
	AppendTransaction(ctx context.Context, tx core.Transaction, categoryName string) (rowRef string, err error)
}
