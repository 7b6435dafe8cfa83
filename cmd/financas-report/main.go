package main

import (
	"context"
	"flag"
	"os"
	"time"

	"financas/internal/backend"
	"financas/internal/cli"
	"financas/internal/config"
	"financas/internal/core"
	applog "financas/internal/log"
	"financas/internal/report"
	gsheet "financas/internal/sheets/google"
)

var (
	month     = flag.String("month", "", "Month to summarize (YYYY-MM, default current month)")
	recent    = flag.Int("recent", 10, "Number of recent transactions to list")
	months    = flag.Int("months", 6, "Months in the monthly totals table")
	sheetYear = flag.Int("sheet-year", 0, "Compare the stored transactions of this year with the spreadsheet")
	timeout   = flag.Duration("timeout", 30*time.Second, "Timeout for backend and spreadsheet calls")
)

func main() {
	flag.Parse()
	cli.LoadEnvFile()
	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel)
	cfg = cli.LoadAndValidateConfig(logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Slog()).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to open backend", applog.FieldError, err)
		os.Exit(1)
	}
	if res.Cleanup != nil {
		defer res.Cleanup()
	}

	txs, err := res.Store.List(ctx)
	if err != nil {
		logger.Error("Failed to list transactions", applog.FieldError, err)
		os.Exit(1)
	}

	m := *month
	if m == "" {
		m = core.ReferenceMonth(time.Now())
	}
	if err := report.Write(os.Stdout, txs, report.Options{Month: m, Recent: *recent, Months: *months}); err != nil {
		logger.Error("Failed to write report", applog.FieldError, err)
		os.Exit(1)
	}

	if *sheetYear == 0 {
		return
	}
	if !cfg.SheetsEnabled() {
		logger.Error("Spreadsheet comparison needs GOOGLE_SPREADSHEET_ID and service account credentials")
		os.Exit(1)
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}
	exported, skipped, err := client.ReadTransactions(ctx, *sheetYear)
	if err != nil {
		logger.Error("Failed to read spreadsheet", applog.FieldError, err, "year", *sheetYear)
		os.Exit(1)
	}
	report.WriteReconciliation(os.Stdout, report.Reconcile(*sheetYear, txs, exported, skipped))
}
