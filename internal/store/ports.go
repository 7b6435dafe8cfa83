// Package store declares the persistence ports the dashboard depends on.
// Implementations live in internal/store/memory and internal/storage.
package store

import (
	"context"
	"errors"

	"financas/internal/core"
)

var (
	// ErrNotConfigured means the backend connection settings are missing.
	// It is a configuration error, not a transient one.
	ErrNotConfigured = errors.New("data store not configured")
	ErrNotFound      = errors.New("record not found")
)

// Ports for outbound adapters.
type (
	// TransactionStore is the remote store contract: List returns every
	// record ordered by date descending and Insert returns the canonical
	// record with its assigned ID and creation time.
	TransactionStore interface {
		List(ctx context.Context) ([]core.Transaction, error)
		Insert(ctx context.Context, in core.NewTransaction) (core.Transaction, error)
	}

	TransactionReader interface {
		Get(ctx context.Context, id string) (core.Transaction, error)
	}

	// SyncTracker records which transactions still need to be exported to
	// the spreadsheet.
	SyncTracker interface {
		PendingSync(ctx context.Context, limit int) ([]core.Transaction, error)
		IsSynced(ctx context.Context, id string) (bool, error)
		MarkSynced(ctx context.Context, id string) error
		MarkSyncError(ctx context.Context, id string) error
	}

	AccountStore interface {
		ListAccounts(ctx context.Context) ([]core.Account, error)
		InsertAccount(ctx context.Context, a core.Account) (core.Account, error)
	}

	GoalStore interface {
		ListGoals(ctx context.Context) ([]core.Goal, error)
		InsertGoal(ctx context.Context, g core.Goal) (core.Goal, error)
	}

	CompanyStore interface {
		ListCompanies(ctx context.Context) ([]core.Company, error)
		InsertCompany(ctx context.Context, c core.Company) (core.Company, error)
	}

	// Store is everything a backend provides.
	Store interface {
		TransactionStore
		TransactionReader
		SyncTracker
		AccountStore
		GoalStore
		CompanyStore
		Close() error
	}
)
