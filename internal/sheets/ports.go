package sheets

import (
	"context"

	"financas/internal/core"
)

// Ports for the spreadsheet export.
type (
	// TransactionAppender writes one transaction as a new row and returns a
	// reference to it (an A1 range for Google Sheets).
	TransactionAppender interface {
		AppendTransaction(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}

	// TransactionRowReader reads back the exported rows of a year. Rows that
	// cannot be parsed are counted in skipped.
	TransactionRowReader interface {
		ReadTransactions(ctx context.Context, year int) (txs []core.Transaction, skipped int, err error)
	}

	Exporter interface {
		TransactionAppender
		TransactionRowReader
	}
)
