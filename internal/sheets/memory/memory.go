package memory

import (
	"context"
	"fmt"
	"sync"

	"financas/internal/core"
	ports "financas/internal/sheets"
)

// Sheet records exported rows in memory. It stands in for Google Sheets when
// no spreadsheet is configured and in tests.
type Sheet struct {
	mu   sync.Mutex
	rows []core.Transaction
	// FailWith, when set, is returned by AppendTransaction.
	FailWith error
}

var _ ports.Exporter = (*Sheet)(nil)

func New() *Sheet {
	return &Sheet{}
}

func (s *Sheet) AppendTransaction(_ context.Context, tx core.Transaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return "", s.FailWith
	}
	s.rows = append(s.rows, tx)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// ReadTransactions returns the recorded rows whose date falls in year.
func (s *Sheet) ReadTransactions(_ context.Context, year int) ([]core.Transaction, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	skipped := 0
	for _, tx := range s.rows {
		y, _, _, err := core.ParseDate(tx.Date)
		if err != nil {
			skipped++
			continue
		}
		if y == year {
			out = append(out, tx)
		}
	}
	return out, skipped, nil
}

// Rows returns a copy of every recorded row in append order.
func (s *Sheet) Rows() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.rows...)
}
