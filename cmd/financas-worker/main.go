package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"financas/internal/amqp"
	"financas/internal/backend"
	"financas/internal/cli"
	"financas/internal/config"
	applog "financas/internal/log"
	"financas/internal/services"
	"financas/internal/sheets"
	gsheet "financas/internal/sheets/google"
	memsheet "financas/internal/sheets/memory"
	"financas/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(applog.ComponentWorker)
	cfg = cli.LoadAndValidateConfig(logger)

	logger.Info("Starting financas-worker", "backend", cfg.DataBackend, "schedule", cfg.SyncSchedule)

	resolver := backend.NewResolver(
		backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Slog()),
		backend.EnvLoader(),
		logger.WithComponent(applog.ComponentBackend).Slog(),
	)
	defer resolver.Close()

	var exporter sheets.TransactionAppender
	if cfg.SheetsEnabled() {
		client, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		exporter = memsheet.New()
		logger.Warn("Google Sheets not configured, exporting to memory")
	}

	syncWorker := worker.NewSyncWorker(resolver, exporter, cfg.SyncBatchSize)
	processor := services.NewSyncProcessor(syncWorker, services.SyncProcessorConfig{
		Schedule: cfg.SyncSchedule,
	})

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
	} else {
		logger.Info("AMQP not configured, relying on the scheduled sweep")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := processor.Stop(ctx); err != nil {
			logger.Warn("Sync processor did not stop cleanly", applog.FieldError, err)
		}
	})

	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Failed startup sync check", applog.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return processor.Start(gctx)
	})
	if amqpClient != nil {
		g.Go(func() error {
			return amqpClient.ConsumeTransactionSync(gctx, syncWorker.HandleSyncMessage)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	<-ctx.Done()
	<-done
	logger.Info("Worker shutdown complete")
}
