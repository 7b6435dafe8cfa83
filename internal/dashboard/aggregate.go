// Package dashboard derives the display figures of the finance dashboard from
// a transaction collection and owns the load/insert session around it.
//
// The aggregation functions are pure: they never mutate their input, never
// fail and can be called on every render.
package dashboard

import (
	"sort"
	"strings"

	"financas/internal/core"
)

// DefaultRecentLimit is the number of rows in the recent transactions list.
const DefaultRecentLimit = 5

// Summary holds the month-to-date totals.
type Summary struct {
	TotalIncome  float64 `json:"total_income"`
	TotalExpense float64 `json:"total_expense"`
	Balance      float64 `json:"balance"`
}

// CategoryTotal is the expense total of one category.
type CategoryTotal struct {
	Category core.Category `json:"category"`
	Label    string        `json:"label"`
	Amount   float64       `json:"amount"`
}

// MonthTotals is the income and expense of one YYYY-MM month.
type MonthTotals struct {
	Month   string  `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// MonthSummary sums the records whose date starts with referenceMonth.
// Records of any other type are counted in neither total.
func MonthSummary(txs []core.Transaction, referenceMonth string) Summary {
	var s Summary
	for _, tx := range txs {
		if !strings.HasPrefix(tx.Date, referenceMonth) {
			continue
		}
		switch tx.Type {
		case core.Income:
			s.TotalIncome += tx.Amount
		case core.Expense:
			s.TotalExpense += tx.Amount
		}
	}
	s.Balance = s.TotalIncome - s.TotalExpense
	return s
}

// RecentTransactions returns up to limit records, most recent date first.
// Records sharing a date keep their relative input order; callers should not
// rely on any particular tie order. A non-positive limit means
// DefaultRecentLimit.
func RecentTransactions(txs []core.Transaction, limit int) []core.Transaction {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ExpensesByCategory totals expenses per category for referenceMonth, or for
// every month when referenceMonth is empty. Largest totals come first.
func ExpensesByCategory(txs []core.Transaction, referenceMonth string) []CategoryTotal {
	totals := map[core.Category]float64{}
	for _, tx := range txs {
		if tx.Type != core.Expense || !strings.HasPrefix(tx.Date, referenceMonth) {
			continue
		}
		totals[tx.Category] += tx.Amount
	}

	out := make([]CategoryTotal, 0, len(totals))
	for c, amount := range totals {
		out = append(out, CategoryTotal{Category: c, Label: core.CategoryLabel(c), Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// MonthlyTotals returns one entry per month for the months ending at endMonth,
// oldest first. Months without records are zero.
func MonthlyTotals(txs []core.Transaction, endMonth string, months int) []MonthTotals {
	if months <= 0 || !core.ValidMonth(endMonth) {
		return nil
	}
	out := make([]MonthTotals, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		m, _ := core.ShiftMonth(endMonth, i-months+1)
		out[i].Month = m
		index[m] = i
	}
	for _, tx := range txs {
		i, ok := index[core.MonthKey(tx.Date)]
		if !ok {
			continue
		}
		switch tx.Type {
		case core.Income:
			out[i].Income += tx.Amount
		case core.Expense:
			out[i].Expense += tx.Amount
		}
	}
	return out
}

// CountMalformed reports how many records carry an unknown type or category.
func CountMalformed(txs []core.Transaction) int {
	n := 0
	for _, tx := range txs {
		if !tx.Type.Valid() || !tx.Category.Valid() {
			n++
		}
	}
	return n
}
