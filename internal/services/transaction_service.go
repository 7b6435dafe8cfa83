package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"financas/internal/core"
	applog "financas/internal/log"
	"financas/internal/store"
)

// SyncPublisher announces a stored transaction to the export worker.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id string, version int64) error
}

// TransactionService saves transactions and then publishes a sync message.
// It satisfies store.TransactionStore so the dashboard session can use it in
// place of the bare store.
type TransactionService struct {
	store     store.TransactionStore
	publisher SyncPublisher
}

var _ store.TransactionStore = (*TransactionService)(nil)

// NewTransactionService wires st and an optional publisher. A nil publisher
// disables spreadsheet sync.
func NewTransactionService(st store.TransactionStore, publisher SyncPublisher) *TransactionService {
	return &TransactionService{store: st, publisher: publisher}
}

func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	return s.store.List(ctx)
}

// Insert persists first. A failed publish is logged and does not fail the
// request: the record is stored and the worker sweep will pick it up.
func (s *TransactionService) Insert(ctx context.Context, in core.NewTransaction) (core.Transaction, error) {
	tx, err := s.store.Insert(ctx, in)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if err := s.publishSyncMessage(ctx, tx.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			applog.FieldComponent, applog.ComponentAMQP,
			applog.FieldTransactionID, tx.ID,
			applog.FieldError, err)
	}
	return tx, nil
}

func (s *TransactionService) publishSyncMessage(ctx context.Context, id string) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping sync message", applog.FieldTransactionID, id)
		return nil
	}
	return s.publisher.PublishTransactionSync(ctx, id, 1)
}

// Close releases the publisher connection when it has one.
func (s *TransactionService) Close() error {
	if c, ok := s.publisher.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
