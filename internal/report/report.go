// Package report prints the dashboard figures as terminal tables.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"financas/internal/core"
	"financas/internal/dashboard"
)

// Options selects what a report covers.
type Options struct {
	Month  string // YYYY-MM
	Recent int
	Months int // window of the monthly table
}

// Write prints the month summary, the expenses by category, the monthly
// totals and the most recent transactions.
func Write(w io.Writer, txs []core.Transaction, opts Options) error {
	if !core.ValidMonth(opts.Month) {
		return fmt.Errorf("%w: month %q", core.ErrInvalidDate, opts.Month)
	}
	if opts.Months <= 0 {
		opts.Months = 6
	}

	sum := dashboard.MonthSummary(txs, opts.Month)
	fmt.Fprintf(w, "Resumo de %s\n", core.FormatMonthYear(opts.Month))
	t := newTable(w, "Receitas", "Despesas", "Saldo")
	t.Append([]string{
		core.FormatCurrencyPlain(sum.TotalIncome),
		core.FormatCurrencyPlain(sum.TotalExpense),
		core.FormatCurrencyPlain(sum.Balance),
	})
	t.Render()

	if totals := dashboard.ExpensesByCategory(txs, opts.Month); len(totals) > 0 {
		fmt.Fprintln(w, "\nDespesas por categoria")
		t = newTable(w, "Categoria", "Valor", "%")
		t.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})
		for _, ct := range totals {
			share := 0.0
			if sum.TotalExpense > 0 {
				share = ct.Amount / sum.TotalExpense * 100
			}
			t.Append([]string{ct.Label, core.FormatCurrencyPlain(ct.Amount), strconv.FormatFloat(share, 'f', 1, 64)})
		}
		t.SetFooter([]string{"Total", core.FormatCurrencyPlain(sum.TotalExpense), ""})
		t.Render()
	}

	fmt.Fprintln(w, "\nÚltimos meses")
	t = newTable(w, "Mês", "Receitas", "Despesas", "Saldo")
	t.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})
	for _, m := range dashboard.MonthlyTotals(txs, opts.Month, opts.Months) {
		t.Append([]string{
			core.FormatMonthShort(m.Month),
			core.FormatCurrencyPlain(m.Income),
			core.FormatCurrencyPlain(m.Expense),
			core.FormatCurrencyPlain(m.Income - m.Expense),
		})
	}
	t.Render()

	recent := dashboard.RecentTransactions(txs, opts.Recent)
	fmt.Fprintln(w, "\nÚltimas transações")
	if len(recent) == 0 {
		fmt.Fprintln(w, "Nenhuma transação registrada.")
		return nil
	}
	t = newTable(w, "Data", "Tipo", "Categoria", "Descrição", "Valor")
	t.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	for _, tx := range recent {
		t.Append([]string{
			core.FormatLongDate(tx.Date),
			tx.Type.Label(),
			core.CategoryLabel(tx.Category),
			tx.DisplayDescription(),
			core.FormatCurrencyPlain(tx.SignedAmount()),
		})
	}
	t.Render()
	return nil
}

// Reconciliation compares the stored transactions of a year with the rows
// exported to the spreadsheet.
type Reconciliation struct {
	Year     int
	Stored   int
	Exported int
	Skipped  int
	Missing  []core.Transaction
}

// Reconcile matches stored and exported transactions by ID.
func Reconcile(year int, stored, exported []core.Transaction, skipped int) Reconciliation {
	rec := Reconciliation{Year: year, Exported: len(exported), Skipped: skipped}
	seen := make(map[string]struct{}, len(exported))
	for _, tx := range exported {
		seen[tx.ID] = struct{}{}
	}
	prefix := strconv.Itoa(year) + "-"
	for _, tx := range stored {
		if len(tx.Date) < len(prefix) || tx.Date[:len(prefix)] != prefix {
			continue
		}
		rec.Stored++
		if _, ok := seen[tx.ID]; !ok {
			rec.Missing = append(rec.Missing, tx)
		}
	}
	return rec
}

// WriteReconciliation prints a Reconciliation.
func WriteReconciliation(w io.Writer, rec Reconciliation) {
	fmt.Fprintf(w, "\nPlanilha %d\n", rec.Year)
	t := newTable(w, "Registradas", "Exportadas", "Ilegíveis", "Pendentes")
	t.Append([]string{
		strconv.Itoa(rec.Stored),
		strconv.Itoa(rec.Exported),
		strconv.Itoa(rec.Skipped),
		strconv.Itoa(len(rec.Missing)),
	})
	t.Render()

	if len(rec.Missing) == 0 {
		return
	}
	t = newTable(w, "ID", "Data", "Descrição", "Valor")
	for _, tx := range rec.Missing {
		t.Append([]string{tx.ID, core.FormatLongDate(tx.Date), tx.DisplayDescription(), core.FormatCurrencyPlain(tx.SignedAmount())})
	}
	t.Render()
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	return t
}
