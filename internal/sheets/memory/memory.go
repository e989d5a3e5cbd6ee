// Package memory records appended rows in memory. It backs worker tests
// and local development without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"kakeibo/internal/core"
	ports "kakeibo/internal/sheets"
)

type Row struct {
	Transaction  core.Transaction
	CategoryName string
}

type Recorder struct {
	mu   sync.Mutex
	rows []Row
	// Err, when set, is returned by every append.
	Err error
}

var _ ports.RowAppender = (*Recorder)(nil)

func New() *Recorder {
	return &Recorder{}
}

func (r *Recorder) AppendTransaction(_ context.Context, tx core.Transaction, categoryName string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return "", r.Err
	}
	r.rows = append(r.rows, Row{Transaction: tx, CategoryName: categoryName})
	return fmt.Sprintf("row:%d", len(r.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (r *Recorder) Rows() []Row {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Row, len(r.rows))
	copy(out, r.rows)
	return out
}
