package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"financas/internal/core"
	"financas/internal/store"
)

func TestMemoryStoreInsertAndList(t *testing.T) {
	ctx := context.Background()
	s := New()
	fixed := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return fixed })

	inputs := []core.NewTransaction{
		{Type: core.Income, Category: core.CategorySalary, Amount: 1000, Date: "2024-06-01"},
		{Type: core.Expense, Category: core.CategoryFood, Amount: 400, Date: "2024-06-15"},
		{Type: core.Expense, Category: core.CategoryBills, Amount: 80, Date: "2024-06-01"},
	}
	var ids []string
	for _, in := range inputs {
		tx, err := s.Insert(ctx, in)
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		if tx.ID == "" || !tx.CreatedAt.Equal(fixed) {
			t.Fatalf("expected assigned id and creation time, got %+v", tx)
		}
		ids = append(ids, tx.ID)
	}

	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	// Date descending; the tie on 2024-06-01 puts the newer insert first.
	want := []string{ids[1], ids[2], ids[0]}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], got[i].ID)
		}
	}
}

func TestMemoryStoreRejectsInvalidInput(t *testing.T) {
	s := New()
	_, err := s.Insert(context.Background(), core.NewTransaction{Type: "x", Category: core.CategoryFood, Amount: 1, Date: "2024-01-01"})
	if !errors.Is(err, core.ErrInvalidType) {
		t.Fatalf("expected invalid type, got %v", err)
	}
	if txs, _ := s.List(context.Background()); len(txs) != 0 {
		t.Fatalf("rejected insert must not be stored")
	}
}

func TestMemoryStoreGet(t *testing.T) {
	ctx := context.Background()
	s := New(core.Transaction{ID: "a", Type: core.Income, Category: core.CategorySalary, Amount: 1, Date: "2024-01-01"})
	if tx, err := s.Get(ctx, "a"); err != nil || tx.ID != "a" {
		t.Fatalf("unexpected get: %+v %v", tx, err)
	}
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryStoreSyncTracking(t *testing.T) {
	ctx := context.Background()
	s := New(
		core.Transaction{ID: "a", Date: "2024-01-01"},
		core.Transaction{ID: "b", Date: "2024-01-02"},
	)
	pending, _ := s.PendingSync(ctx, 10)
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	if err := s.MarkSynced(ctx, "a"); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	if ok, _ := s.IsSynced(ctx, "a"); !ok {
		t.Fatal("a should be synced")
	}
	pending, _ = s.PendingSync(ctx, 10)
	if len(pending) != 1 || pending[0].ID != "b" {
		t.Fatalf("unexpected pending: %+v", pending)
	}
	_ = s.MarkSyncError(ctx, "b")
	if pending, _ = s.PendingSync(ctx, 1); len(pending) != 1 {
		t.Fatalf("errored record should stay pending")
	}

	if _, err := s.IsSynced(ctx, "ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("IsSynced(ghost) error = %v, want ErrNotFound", err)
	}
	if err := s.MarkSynced(ctx, "ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("MarkSynced(ghost) error = %v, want ErrNotFound", err)
	}
	if err := s.MarkSyncError(ctx, "ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("MarkSyncError(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFromFile(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("missing file should yield empty store: %v", err)
	}
	if txs, _ := s.List(context.Background()); len(txs) != 0 {
		t.Fatalf("expected empty store")
	}

	path := filepath.Join(dir, "seed.json")
	seed := `[{"type":"income","category":"salary","amount":1000,"date":"2024-06-01"},
	          {"id":"x","type":"expense","category":"food","amount":400,"date":"2024-06-15"}]`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s, err = NewFromFile(path)
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	txs, _ := s.List(context.Background())
	if len(txs) != 2 || txs[0].ID != "x" || txs[1].ID == "" {
		t.Fatalf("unexpected seeded records: %+v", txs)
	}

	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if _, err := NewFromFile(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestAuxiliaryEntities(t *testing.T) {
	ctx := context.Background()
	s := New()

	acc, err := s.InsertAccount(ctx, core.Account{Name: "Nubank", Type: core.AccountChecking, Balance: 10})
	if err != nil || acc.ID == "" || acc.Currency != core.DefaultCurrency {
		t.Fatalf("unexpected account: %+v %v", acc, err)
	}
	goal, err := s.InsertGoal(ctx, core.Goal{Name: "Viagem", TargetAmount: 5000})
	if err != nil || goal.Status != core.GoalActive {
		t.Fatalf("unexpected goal: %+v %v", goal, err)
	}
	if _, err := s.InsertCompany(ctx, core.Company{}); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected empty name error, got %v", err)
	}
	if _, err := s.InsertCompany(ctx, core.Company{Name: "Padaria"}); err != nil {
		t.Fatalf("insert company: %v", err)
	}

	accs, _ := s.ListAccounts(ctx)
	goals, _ := s.ListGoals(ctx)
	comps, _ := s.ListCompanies(ctx)
	if len(accs) != 1 || len(goals) != 1 || len(comps) != 1 {
		t.Fatalf("unexpected counts: %d %d %d", len(accs), len(goals), len(comps))
	}
}
