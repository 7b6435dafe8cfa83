package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"financas/internal/amqp"
	"financas/internal/core"
	sheetmem "financas/internal/sheets/memory"
	"financas/internal/store"
	"financas/internal/store/memory"
)

func seedStore(t *testing.T, n int) (*memory.Store, []core.Transaction) {
	t.Helper()
	st := memory.New()
	var txs []core.Transaction
	for i := 0; i < n; i++ {
		tx, err := st.Insert(context.Background(), core.NewTransaction{
			Type: core.Expense, Category: core.CategoryBills, Amount: float64(10 * (i + 1)), Date: "2024-06-01",
		})
		if err != nil {
			t.Fatal(err)
		}
		txs = append(txs, tx)
	}
	return st, txs
}

func TestHandleSyncMessage(t *testing.T) {
	st, txs := seedStore(t, 1)
	sheet := sheetmem.New()
	w := NewSyncWorker(st, sheet, 10)
	ctx := context.Background()

	msg := amqp.NewTransactionSyncMessage(txs[0].ID, 1)
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}
	if rows := sheet.Rows(); len(rows) != 1 || rows[0].ID != txs[0].ID {
		t.Fatalf("unexpected rows %+v", rows)
	}

	// Redelivery must not duplicate the row.
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatal(err)
	}
	if len(sheet.Rows()) != 1 {
		t.Fatalf("duplicate row appended on redelivery")
	}
}

func TestHandleSyncMessage_UnknownID(t *testing.T) {
	st, _ := seedStore(t, 0)
	sheet := sheetmem.New()
	w := NewSyncWorker(st, sheet, 10)

	if err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage("ghost", 1)); err != nil {
		t.Fatalf("unknown ids should be dropped, got %v", err)
	}
	if len(sheet.Rows()) != 0 {
		t.Fatal("nothing should be appended")
	}
}

// deletedSource reports every record as pending but finds none of them.
type deletedSource struct {
	*memory.Store
}

func (deletedSource) IsSynced(context.Context, string) (bool, error) { return false, nil }

func (deletedSource) Get(_ context.Context, id string) (core.Transaction, error) {
	return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, store.ErrNotFound)
}

func TestHandleSyncMessage_RecordDeletedBeforeGet(t *testing.T) {
	sheet := sheetmem.New()
	w := NewSyncWorker(deletedSource{memory.New()}, sheet, 10)

	if err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage("gone", 1)); err != nil {
		t.Fatalf("missing records should be acknowledged, got %v", err)
	}
	if len(sheet.Rows()) != 0 {
		t.Fatal("nothing should be appended")
	}
}

func TestHandleSyncMessage_AppendFailureRequeues(t *testing.T) {
	st, txs := seedStore(t, 1)
	sheet := &sheetmem.Sheet{FailWith: errors.New("quota")}
	w := NewSyncWorker(st, sheet, 10)

	if err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage(txs[0].ID, 1)); err == nil {
		t.Fatal("expected error so the message is requeued")
	}
	pending, _ := st.PendingSync(context.Background(), 10)
	if len(pending) != 1 {
		t.Fatal("failed export should remain pending")
	}
}

func TestProcessPendingTransactions(t *testing.T) {
	st, _ := seedStore(t, 5)
	sheet := sheetmem.New()
	w := NewSyncWorker(st, sheet, 3)
	ctx := context.Background()

	if err := w.ProcessPendingTransactions(ctx); err != nil {
		t.Fatal(err)
	}
	if len(sheet.Rows()) != 3 {
		t.Fatalf("first sweep should export one batch, got %d", len(sheet.Rows()))
	}
	if err := w.ProcessPendingTransactions(ctx); err != nil {
		t.Fatal(err)
	}
	if len(sheet.Rows()) != 5 {
		t.Fatalf("second sweep should finish the rest, got %d", len(sheet.Rows()))
	}
	if err := w.ProcessPendingTransactions(ctx); err != nil {
		t.Fatal(err)
	}
	if len(sheet.Rows()) != 5 {
		t.Fatal("nothing left to export")
	}
}

func TestStartupSyncCheck(t *testing.T) {
	st, _ := seedStore(t, 4)
	sheet := sheetmem.New()
	w := NewSyncWorker(st, sheet, 1)

	if err := w.StartupSyncCheck(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(sheet.Rows()) != 4 {
		t.Fatalf("startup check uses a larger batch, got %d rows", len(sheet.Rows()))
	}
}
