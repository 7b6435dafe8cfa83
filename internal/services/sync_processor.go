package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	applog "financas/internal/log"
)

// PendingSyncer exports the transactions that are still waiting for the
// spreadsheet.
type PendingSyncer interface {
	ProcessPendingTransactions(ctx context.Context) error
}

// SyncProcessorConfig holds configuration for the sync processor.
type SyncProcessorConfig struct {
	// Schedule is a cron expression or descriptor such as "@every 1m".
	Schedule string
	// RunOnStart triggers a sweep as soon as the processor starts.
	RunOnStart bool
}

func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		Schedule:   "@every 1m",
		RunOnStart: true,
	}
}

// SyncProcessor runs the pending sweep on a cron schedule. It is the backup
// path for sync messages that were lost or failed.
type SyncProcessor struct {
	syncer PendingSyncer
	config SyncProcessorConfig
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	cron    *cron.Cron
}

func NewSyncProcessor(syncer PendingSyncer, config SyncProcessorConfig) *SyncProcessor {
	return &SyncProcessor{
		syncer: syncer,
		config: config,
		logger: slog.Default().With(applog.FieldComponent, applog.ComponentWorker),
	}
}

// Start schedules the sweep. It returns an error if already running or if
// the schedule does not parse.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return fmt.Errorf("sync processor is already running")
	}

	cl := cronLogger{p.logger}
	c := cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	if _, err := c.AddFunc(p.config.Schedule, func() { p.sweep(ctx) }); err != nil {
		return fmt.Errorf("parse sync schedule %q: %w", p.config.Schedule, err)
	}
	p.cron = c
	p.running = true
	c.Start()

	if p.config.RunOnStart {
		go p.sweep(ctx)
	}

	p.logger.InfoContext(ctx, "Sync processor started", "schedule", p.config.Schedule)
	return nil
}

// Stop waits for a running sweep to finish or ctx to end.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	c := p.cron
	p.running = false
	p.mu.Unlock()

	select {
	case <-c.Stop().Done():
		p.logger.InfoContext(ctx, "Sync processor stopped gracefully")
		return nil
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}
}

func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SyncProcessor) sweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := p.syncer.ProcessPendingTransactions(ctx); err != nil {
		p.logger.ErrorContext(ctx, "Pending sync sweep failed", applog.FieldError, err)
	}
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append([]any{applog.FieldError, err}, keysAndValues...)...)
}
