package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"financas/internal/core"
	applog "financas/internal/log"
	"financas/internal/store"
)

// Status is the load state of a Session.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// ErrorKind separates a missing configuration from a failed fetch.
type ErrorKind string

const (
	ErrorNone          ErrorKind = ""
	ErrorConfiguration ErrorKind = "configuration"
	ErrorFetch         ErrorKind = "fetch"
)

var (
	// ErrLoading rejects inserts while a load is in flight.
	ErrLoading = errors.New("transactions are still loading")
	// ErrSuperseded is returned by a Load replaced by a newer one.
	ErrSuperseded = errors.New("load superseded by a newer request")
)

// Session owns the transaction collection shown by the dashboard. Each Load
// cancels the one in flight and only the newest result is applied. Inserts
// are prepended only after the store confirms them.
type Session struct {
	store  store.TransactionStore
	logger *slog.Logger
	now    func() time.Time

	mu         sync.RWMutex
	status     Status
	txs        []core.Transaction
	err        error
	errKind    ErrorKind
	generation uint64
	cancel     context.CancelFunc
	version    uint64
	// inserts confirmed while a load was in flight
	confirmed []core.Transaction
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the time source used for the reference month.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

func NewSession(st store.TransactionStore, opts ...Option) *Session {
	s := &Session{
		store:  st,
		logger: slog.Default(),
		now:    time.Now,
		status: StatusIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(applog.FieldComponent, applog.ComponentDashboard)
	return s
}

// Load fetches the full collection and replaces the current one. A load that
// is superseded before it finishes returns ErrSuperseded and changes nothing.
func (s *Session) Load(ctx context.Context) error {
	loadCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	s.cancel = cancel
	s.status = StatusLoading
	s.mu.Unlock()

	start := time.Now()
	txs, err := s.store.List(loadCtx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return ErrSuperseded
	}
	s.cancel = nil
	s.version++

	if err != nil {
		s.txs = nil
		s.confirmed = nil
		s.status = StatusError
		s.err = err
		s.errKind = ErrorFetch
		if errors.Is(err, store.ErrNotConfigured) {
			s.errKind = ErrorConfiguration
		}
		s.logger.ErrorContext(ctx, "Failed to load transactions",
			applog.FieldError, err,
			applog.FieldErrorKind, string(s.errKind),
			applog.FieldOperation, applog.OpList)
		return fmt.Errorf("load transactions: %w", err)
	}

	s.txs = mergeConfirmed(txs, s.confirmed)
	s.confirmed = nil
	s.status = StatusReady
	s.err = nil
	s.errKind = ErrorNone
	if n := CountMalformed(txs); n > 0 {
		s.logger.WarnContext(ctx, "Transactions with unknown type or category",
			"count", n, "total", len(txs))
	}
	s.logger.InfoContext(ctx, "Transactions loaded",
		"count", len(txs),
		applog.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

// Add submits a new transaction and, once the store returns the canonical
// record, prepends it to the collection. On failure the collection is left
// exactly as it was.
func (s *Session) Add(ctx context.Context, in core.NewTransaction) (core.Transaction, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}

	s.mu.RLock()
	loading := s.status == StatusLoading
	s.mu.RUnlock()
	if loading {
		return core.Transaction{}, ErrLoading
	}

	tx, err := s.store.Insert(ctx, in)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to insert transaction",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpCreate)
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusLoading {
		s.confirmed = append(s.confirmed, tx)
	}
	// A reload that finished while the insert was in flight may already
	// hold the record.
	if containsID(s.txs, tx.ID) {
		return tx, nil
	}
	next := make([]core.Transaction, 0, len(s.txs)+1)
	next = append(next, tx)
	next = append(next, s.txs...)
	s.txs = next
	s.version++

	s.logger.DebugContext(ctx, "Transaction added to collection",
		applog.FieldTransactionID, tx.ID,
		"count", len(next))
	return tx, nil
}

// mergeConfirmed prepends the inserts confirmed during a load that are
// missing from its result, newest first.
func mergeConfirmed(txs, confirmed []core.Transaction) []core.Transaction {
	var missing []core.Transaction
	for i := len(confirmed) - 1; i >= 0; i-- {
		tx := confirmed[i]
		if containsID(txs, tx.ID) || containsID(missing, tx.ID) {
			continue
		}
		missing = append(missing, tx)
	}
	if len(missing) == 0 {
		return txs
	}
	return append(missing, txs...)
}

func containsID(txs []core.Transaction, id string) bool {
	for _, tx := range txs {
		if tx.ID == id {
			return true
		}
	}
	return false
}

// View is an immutable snapshot of the session for one render.
type View struct {
	Status         Status
	ErrKind        ErrorKind
	Err            error
	Version        uint64
	ReferenceMonth string
	Transactions   []core.Transaction
	Summary        Summary
	Recent         []core.Transaction
}

// Snapshot recomputes every figure from the current collection.
func (s *Session) Snapshot(recentLimit int) View {
	s.mu.RLock()
	txs := s.txs
	v := View{
		Status:  s.status,
		ErrKind: s.errKind,
		Err:     s.err,
		Version: s.version,
	}
	s.mu.RUnlock()

	// s.txs is never mutated in place.
	v.Transactions = txs
	v.ReferenceMonth = core.ReferenceMonth(s.now())
	v.Summary = MonthSummary(txs, v.ReferenceMonth)
	v.Recent = RecentTransactions(txs, recentLimit)
	return v
}

// Transactions returns the current collection.
func (s *Session) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.txs
}

func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Version increases every time the collection changes.
func (s *Session) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Now is the session clock.
func (s *Session) Now() time.Time {
	return s.now()
}
