package http

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"financas/internal/charts"
	"financas/internal/core"
	"financas/internal/dashboard"
	applog "financas/internal/log"
)

type categoryShare struct {
	dashboard.CategoryTotal
	Percent float64
}

type reportsData struct {
	Status     dashboard.Status
	Month      string
	MonthLabel string
	PrevMonth  string
	NextMonth  string
	Summary    dashboard.Summary
	Categories []categoryShare
	Monthly    []dashboard.MonthTotals
}

// handleReportsPage shows the expense breakdown of a month and the income
// and expense of the months before it.
func (s *Server) handleReportsPage(w http.ResponseWriter, r *http.Request) {
	month := ParseMonthParam(r.URL.Query(), s.session.Now())
	txs := s.session.Transactions()

	data := reportsData{
		Status:     s.session.Status(),
		Month:      month,
		MonthLabel: core.FormatMonthYear(month),
		Summary:    dashboard.MonthSummary(txs, month),
		Monthly:    dashboard.MonthlyTotals(txs, month, charts.MonthlyWindow),
	}
	data.PrevMonth, _ = core.ShiftMonth(month, -1)
	data.NextMonth, _ = core.ShiftMonth(month, 1)

	totals := dashboard.ExpensesByCategory(txs, month)
	var sum float64
	for _, t := range totals {
		sum += t.Amount
	}
	for _, t := range totals {
		share := categoryShare{CategoryTotal: t}
		if sum > 0 {
			share.Percent = t.Amount / sum * 100
		}
		data.Categories = append(data.Categories, share)
	}

	s.render(w, r, "reports_page", page{Title: "Relatórios", Active: "relatorios", Data: data})
}

func (s *Server) handleExpensesChart(w http.ResponseWriter, r *http.Request) {
	month := ParseMonthParam(r.URL.Query(), s.session.Now())
	if r.URL.Query().Get("month") == "all" {
		month = ""
	}
	s.writeChart(w, r, "expenses", func() ([]byte, error) {
		return s.charts.ExpensesPie(s.session.Version(), s.session.Transactions(), month)
	})
}

func (s *Server) handleMonthlyChart(w http.ResponseWriter, r *http.Request) {
	month := ParseMonthParam(r.URL.Query(), s.session.Now())
	s.writeChart(w, r, "monthly", func() ([]byte, error) {
		return s.charts.MonthlyBars(s.session.Version(), s.session.Transactions(), month)
	})
}

func (s *Server) writeChart(w http.ResponseWriter, r *http.Request, name string, draw func() ([]byte, error)) {
	png, err := draw()
	switch {
	case errors.Is(err, charts.ErrNoChartData):
		http.Error(w, "sem dados para o gráfico", http.StatusNotFound)
		return
	case err != nil:
		logFailure(r.Context(), "Chart unavailable", applog.OpRender, err, applog.LogFields{"chart": name})
		http.Error(w, "erro ao gerar o gráfico", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=60")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// csvHeader is the first row of the export. The file opens directly in
// spreadsheet programs configured for pt-BR.
var csvHeader = []string{"Data", "Tipo", "Categoria", "Descrição", "Valor"}

// handleExportCSV streams every transaction, newest first. An optional
// month parameter restricts the export to one YYYY-MM month.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if !s.requireReady(w) {
		return
	}
	txs := s.session.Transactions()
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month != "" && !core.ValidMonth(month) {
		writeJSONError(w, http.StatusBadRequest, "Mês inválido")
		return
	}

	filename := "transacoes.csv"
	if month != "" {
		filename = fmt.Sprintf("transacoes-%s.csv", month)
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	// UTF-8 BOM so spreadsheet programs detect the encoding.
	_, _ = w.Write([]byte{0xEF, 0xBB, 0xBF})
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	_ = cw.Write(csvHeader)

	rows := 0
	for _, tx := range dashboard.RecentTransactions(txs, len(txs)) {
		if month != "" && core.MonthKey(tx.Date) != month {
			continue
		}
		_ = cw.Write([]string{
			core.FormatLongDate(tx.Date),
			tx.Type.Label(),
			core.CategoryLabel(tx.Category),
			tx.DisplayDescription(),
			csvAmount(tx.SignedAmount()),
		})
		rows++
	}
	cw.Flush()

	if err := cw.Error(); err != nil {
		logFailure(r.Context(), "CSV export failed", applog.OpExport, err, nil)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Transactions exported",
		applog.FieldOperation, applog.OpExport,
		"format", "csv",
		"rows", rows,
		"month", month)
}

// csvAmount writes a signed amount with a decimal comma and no grouping.
func csvAmount(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', 2, 64), ".", ",", 1)
}
