package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"financas/internal/core"
	applog "financas/internal/log"
	"financas/internal/store"
)

// Dialect selects the SQL flavour of a Repository.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) driverName() string {
	return string(d)
}

const (
	syncPending = "pending"
	syncSynced  = "synced"
	syncError   = "error"
)

// Repository implements the store ports on top of database/sql. Queries are
// written with ? placeholders and rebound for Postgres.
type Repository struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
	now     func() time.Time
}

var _ store.Store = (*Repository)(nil)

// NewSQLiteRepository opens (creating if needed) the database file and
// migrates it.
func NewSQLiteRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(DialectSQLite, dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return newRepository(db, DialectSQLite), nil
}

func newRepository(db *sql.DB, d Dialect) *Repository {
	return &Repository{
		db:      db,
		dialect: d,
		logger:  slog.Default().With(applog.FieldComponent, applog.ComponentStorage, "dialect", string(d)),
		now:     time.Now,
	}
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Dialect returns the SQL flavour in use.
func (r *Repository) Dialect() Dialect {
	return r.dialect
}

// Ping checks the connection, as used by readiness probes.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// rebind turns ? placeholders into $n for Postgres.
func (r *Repository) rebind(query string) string {
	if r.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

const transactionColumns = "id, type, category, amount, description, date, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx        core.Transaction
		txType    string
		category  string
		createdAt string
	)
	if err := row.Scan(&tx.ID, &txType, &category, &tx.Amount, &tx.Description, &tx.Date, &createdAt); err != nil {
		return core.Transaction{}, err
	}
	tx.Type = core.TransactionType(txType)
	tx.Category = core.Category(category)
	tx.CreatedAt = parseTimestamp(createdAt)
	return tx, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999Z",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

// parseTimestamp accepts the text forms SQLite and Postgres produce. An
// unparseable value yields the zero time.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// List returns every transaction, most recent date first. Rows sharing a date
// are ordered newest insert first.
func (r *Repository) List(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions ORDER BY date DESC, created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// Insert stores the transaction and returns the row as persisted.
func (r *Repository) Insert(ctx context.Context, in core.NewTransaction) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}

	id := uuid.NewString()
	row := r.db.QueryRowContext(ctx, r.rebind(
		"INSERT INTO transactions (id, type, category, amount, description, date) VALUES (?, ?, ?, ?, ?, ?) RETURNING "+transactionColumns),
		id, string(in.Type), string(in.Category), in.Amount, in.Description, in.Date)

	tx, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	r.logger.DebugContext(ctx, "Transaction saved",
		applog.FieldTransactionID, tx.ID,
		applog.FieldTransactionType, string(tx.Type),
		applog.FieldCategory, string(tx.Category),
		applog.FieldAmount, tx.Amount,
		"date", tx.Date)
	return tx, nil
}

func (r *Repository) Get(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, r.rebind("SELECT "+transactionColumns+" FROM transactions WHERE id = ?"), id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return tx, nil
}

// PendingSync returns the oldest transactions not yet exported, including
// those whose previous export failed.
func (r *Repository) PendingSync(ctx context.Context, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, r.rebind(
		"SELECT "+transactionColumns+" FROM transactions WHERE sync_status IN (?, ?) ORDER BY created_at ASC LIMIT ?"),
		syncPending, syncError, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *Repository) IsSynced(ctx context.Context, id string) (bool, error) {
	var status string
	err := r.db.QueryRowContext(ctx, r.rebind("SELECT sync_status FROM transactions WHERE id = ?"), id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("transaction %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("read sync status %s: %w", id, err)
	}
	return status == syncSynced, nil
}

func (r *Repository) MarkSynced(ctx context.Context, id string) error {
	return r.setSyncStatus(ctx, id, syncSynced)
}

func (r *Repository) MarkSyncError(ctx context.Context, id string) error {
	return r.setSyncStatus(ctx, id, syncError)
}

func (r *Repository) setSyncStatus(ctx context.Context, id, status string) error {
	var syncedAt any
	if status == syncSynced {
		syncedAt = r.now().UTC().Format(time.RFC3339Nano)
	}
	res, err := r.db.ExecContext(ctx, r.rebind(
		"UPDATE transactions SET sync_status = ?, synced_at = ? WHERE id = ?"), status, syncedAt, id)
	if err != nil {
		return fmt.Errorf("set sync status %s for %s: %w", status, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("transaction %s: %w", id, store.ErrNotFound)
	}
	return nil
}
