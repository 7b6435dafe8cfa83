package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"financas/internal/amqp"
	"financas/internal/core"
	applog "financas/internal/log"
	"financas/internal/sheets"
	"financas/internal/store"
)

// Source is what the worker needs from the store.
type Source interface {
	store.TransactionReader
	store.SyncTracker
}

// SyncWorker exports transactions to the spreadsheet, either one at a time
// from sync messages or in batches from the pending sweep.
type SyncWorker struct {
	source    Source
	sheets    sheets.TransactionAppender
	batchSize int
	logger    *slog.Logger

	// Serializes exports so a message and a sweep never append the same row.
	mu sync.Mutex
}

func NewSyncWorker(source Source, appender sheets.TransactionAppender, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 20
	}
	return &SyncWorker{
		source:    source,
		sheets:    appender,
		batchSize: batchSize,
		logger:    slog.Default().With(applog.FieldComponent, applog.ComponentWorker),
	}
}

// HandleSyncMessage exports the transaction named by msg. A record that no
// longer exists is acknowledged without retry.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	w.logger.InfoContext(ctx, "Processing sync message",
		applog.FieldTransactionID, msg.ID,
		"version", msg.Version)

	w.mu.Lock()
	defer w.mu.Unlock()

	synced, err := w.source.IsSynced(ctx, msg.ID)
	if errors.Is(err, store.ErrNotFound) {
		w.logger.WarnContext(ctx, "Sync message for unknown transaction, dropping", applog.FieldTransactionID, msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("check sync status: %w", err)
	}
	if synced {
		w.logger.DebugContext(ctx, "Transaction already synced", applog.FieldTransactionID, msg.ID)
		return nil
	}

	tx, err := w.source.Get(ctx, msg.ID)
	if errors.Is(err, store.ErrNotFound) {
		w.logger.WarnContext(ctx, "Transaction vanished before sync, dropping", applog.FieldTransactionID, msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}
	return w.syncTransaction(ctx, tx)
}

// ProcessPendingTransactions exports up to one batch of pending records.
// This is the backup path for lost messages.
func (w *SyncWorker) ProcessPendingTransactions(ctx context.Context) error {
	_, _, err := w.processPending(ctx, w.batchSize)
	return err
}

// StartupSyncCheck sweeps a larger batch when the worker boots, recovering
// from downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	synced, failed, err := w.processPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	w.logger.InfoContext(ctx, "Startup sync completed", "synced", synced, "errors", failed)
	return nil
}

func (w *SyncWorker) processPending(ctx context.Context, limit int) (synced, failed int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	pending, err := w.source.PendingSync(ctx, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return 0, 0, nil
	}

	w.logger.InfoContext(ctx, "Processing pending transactions", "count", len(pending))
	for _, tx := range pending {
		if ctx.Err() != nil {
			return synced, failed, ctx.Err()
		}
		if err := w.syncTransaction(ctx, tx); err != nil {
			w.logger.ErrorContext(ctx, "Failed to sync transaction",
				applog.FieldTransactionID, tx.ID,
				applog.FieldError, err)
			failed++
			continue
		}
		synced++
	}
	return synced, failed, nil
}

func (w *SyncWorker) syncTransaction(ctx context.Context, tx core.Transaction) error {
	ref, err := w.sheets.AppendTransaction(ctx, tx)
	if err != nil {
		if markErr := w.source.MarkSyncError(ctx, tx.ID); markErr != nil {
			w.logger.ErrorContext(ctx, "Failed to mark sync error", applog.FieldTransactionID, tx.ID, applog.FieldError, markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	// The row exists now; a failed mark only risks a duplicate on the next sweep.
	if err := w.source.MarkSynced(ctx, tx.ID); err != nil {
		w.logger.ErrorContext(ctx, "Failed to mark as synced", applog.FieldTransactionID, tx.ID, applog.FieldError, err)
	}

	w.logger.InfoContext(ctx, "Successfully synced transaction",
		applog.FieldTransactionID, tx.ID,
		applog.FieldSheetsRef, ref,
		applog.FieldAmount, tx.Amount)
	return nil
}
