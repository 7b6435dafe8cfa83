package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"financas/internal/amqp"
	"financas/internal/backend"
	"financas/internal/charts"
	"financas/internal/cli"
	"financas/internal/config"
	"financas/internal/dashboard"
	apphttp "financas/internal/http"
	applog "financas/internal/log"
	"financas/internal/services"
	"financas/internal/voice"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel)
	cfg = cli.LoadAndValidateConfig(logger)

	env := config.CheckEnvironment(cfg)
	config.LogEnvironmentStatus(logger.Slog(), env)

	// The resolver connects lazily so the dashboard can start, report a
	// missing configuration and retry later.
	resolver := backend.NewResolver(
		backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Slog()),
		backend.EnvLoader(),
		logger.WithComponent(applog.ComponentBackend).Slog(),
	)

	var publisher services.SyncPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, spreadsheet sync disabled", applog.FieldError, err)
		} else {
			publisher = client
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}
	txService := services.NewTransactionService(resolver, publisher)

	session := dashboard.NewSession(txService, dashboard.WithLogger(logger.Slog()))

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:        ":" + cfg.Port,
		Session:     session,
		Backend:     resolver,
		Sync:        resolver,
		Ready:       resolver.Ready,
		Charts:      charts.NewRenderer(cfg.ChartCacheTTL),
		Voice:       voice.NewParser(),
		Config:      cfg,
		Logger:      logger,
		RecentLimit: cfg.RecentLimit,
	})
	if err != nil {
		logger.Error("Failed to create HTTP server", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if err := txService.Close(); err != nil {
			logger.Error("Failed to close AMQP client", applog.FieldError, err)
		}
		if err := resolver.Close(); err != nil {
			logger.Error("Failed to close backend", applog.FieldError, err)
		}
	})

	go func() {
		if err := session.Load(ctx); err != nil && !errors.Is(err, dashboard.ErrSuperseded) {
			logger.Warn("Initial transaction load failed", applog.FieldError, err)
		}
	}()

	logger.Info("Starting financas server", "port", cfg.Port, "backend", cfg.DataBackend, "env", cfg.AppEnv)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
