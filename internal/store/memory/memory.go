package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"financas/internal/core"
	"financas/internal/store"
)

// Store keeps every record in process memory. It is the development backend
// and the fake used by handler tests.
type Store struct {
	mu        sync.Mutex
	now       func() time.Time
	txs       []core.Transaction
	synced    map[string]bool
	accounts  []core.Account
	goals     []core.Goal
	companies []core.Company
}

var _ store.Store = (*Store)(nil)

func New(seed ...core.Transaction) *Store {
	s := &Store{now: time.Now, synced: map[string]bool{}}
	for _, tx := range seed {
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		s.txs = append(s.txs, tx)
	}
	return s
}

// NewFromFile seeds the store with a JSON array of transactions. A missing
// file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed []core.Transaction
	if err := json.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	return New(seed...), nil
}

// SetClock overrides the creation time source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// List returns a copy ordered by date descending; equal dates keep insertion
// order reversed, newest first, like a created_at tiebreak.
func (s *Store) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.txs))
	for i := range s.txs {
		out[len(s.txs)-1-i] = s.txs[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (s *Store) Insert(_ context.Context, in core.NewTransaction) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := core.Transaction{
		ID:          uuid.NewString(),
		Type:        in.Type,
		Category:    in.Category,
		Amount:      in.Amount,
		Description: in.Description,
		Date:        in.Date,
		CreatedAt:   s.now().UTC(),
	}
	s.txs = append(s.txs, tx)
	return tx, nil
}

func (s *Store) Get(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.txs {
		if tx.ID == id {
			return tx, nil
		}
	}
	return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, store.ErrNotFound)
}

func (s *Store) PendingSync(_ context.Context, limit int) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.txs {
		if s.synced[tx.ID] {
			continue
		}
		out = append(out, tx)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) IsSynced(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.has(id) {
		return false, fmt.Errorf("transaction %s: %w", id, store.ErrNotFound)
	}
	return s.synced[id], nil
}

func (s *Store) MarkSynced(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.has(id) {
		return fmt.Errorf("transaction %s: %w", id, store.ErrNotFound)
	}
	s.synced[id] = true
	return nil
}

// MarkSyncError leaves the record pending so the next sweep retries it.
func (s *Store) MarkSyncError(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.has(id) {
		return fmt.Errorf("transaction %s: %w", id, store.ErrNotFound)
	}
	return nil
}

// has must be called with s.mu held.
func (s *Store) has(id string) bool {
	for _, tx := range s.txs {
		if tx.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) ListAccounts(_ context.Context) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Account(nil), s.accounts...), nil
}

func (s *Store) InsertAccount(_ context.Context, a core.Account) (core.Account, error) {
	if a.Currency == "" {
		a.Currency = core.DefaultCurrency
	}
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = uuid.NewString()
	a.CreatedAt = s.now().UTC()
	a.UpdatedAt = a.CreatedAt
	s.accounts = append(s.accounts, a)
	return a, nil
}

func (s *Store) ListGoals(_ context.Context) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Goal(nil), s.goals...), nil
}

func (s *Store) InsertGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	if g.Status == "" {
		g.Status = core.GoalActive
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = uuid.NewString()
	g.CreatedAt = s.now().UTC()
	g.UpdatedAt = g.CreatedAt
	s.goals = append(s.goals, g)
	return g, nil
}

func (s *Store) ListCompanies(_ context.Context) ([]core.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Company(nil), s.companies...), nil
}

func (s *Store) InsertCompany(_ context.Context, c core.Company) (core.Company, error) {
	if err := c.Validate(); err != nil {
		return core.Company{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = uuid.NewString()
	c.CreatedAt = s.now().UTC()
	c.UpdatedAt = c.CreatedAt
	s.companies = append(s.companies, c)
	return c, nil
}

func (s *Store) Close() error { return nil }
