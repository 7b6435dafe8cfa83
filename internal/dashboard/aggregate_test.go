package dashboard

import (
	"reflect"
	"testing"

	"financas/internal/core"
)

func june2024() []core.Transaction {
	return []core.Transaction{
		{ID: "1", Type: core.Income, Category: core.CategorySalary, Amount: 1000, Date: "2024-06-01"},
		{ID: "2", Type: core.Expense, Category: core.CategoryFood, Amount: 400, Date: "2024-06-15"},
		{ID: "3", Type: core.Expense, Category: core.CategoryFood, Amount: 50, Date: "2024-05-31"},
	}
}

func TestMonthSummary(t *testing.T) {
	cases := []struct {
		name  string
		txs   []core.Transaction
		month string
		want  Summary
	}{
		{"june scenario", june2024(), "2024-06", Summary{1000, 400, 600}},
		{"previous month", june2024(), "2024-05", Summary{0, 50, -50}},
		{"empty collection", nil, "2024-06", Summary{}},
		{
			"cross-year prefix does not match",
			[]core.Transaction{{Type: core.Income, Amount: 10, Date: "2024-12-01"}},
			"2023-12",
			Summary{},
		},
		{
			"unknown type is excluded",
			[]core.Transaction{
				{Type: core.Income, Amount: 10, Date: "2024-06-01"},
				{Type: "transfer", Amount: 99, Date: "2024-06-02"},
			},
			"2024-06",
			Summary{10, 0, 10},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MonthSummary(tc.txs, tc.month)
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
			if got.Balance != got.TotalIncome-got.TotalExpense {
				t.Fatalf("balance %v != income %v - expense %v", got.Balance, got.TotalIncome, got.TotalExpense)
			}
		})
	}
}

func TestRecentTransactions(t *testing.T) {
	txs := []core.Transaction{
		{ID: "a", Date: "2024-06-01"},
		{ID: "b", Date: "2024-06-20"},
		{ID: "c", Date: "2024-06-10"},
		{ID: "d", Date: "2024-06-10"},
		{ID: "e", Date: "2024-05-01"},
		{ID: "f", Date: "2024-06-30"},
		{ID: "g", Date: "2023-12-31"},
	}
	orig := append([]core.Transaction(nil), txs...)

	got := RecentTransactions(txs, 5)
	ids := make([]string, len(got))
	for i, tx := range got {
		ids[i] = tx.ID
	}
	want := []string{"f", "b", "c", "d", "a"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	if !reflect.DeepEqual(txs, orig) {
		t.Fatalf("input was mutated")
	}
}

func TestRecentTransactionsShortAndEmpty(t *testing.T) {
	if got := RecentTransactions(nil, 5); len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
	two := []core.Transaction{{ID: "a", Date: "2024-01-01"}, {ID: "b", Date: "2024-02-01"}}
	got := RecentTransactions(two, 5)
	if len(got) != 2 || got[0].ID != "b" {
		t.Fatalf("unexpected result %v", got)
	}
	if got := RecentTransactions(make([]core.Transaction, 9), 0); len(got) != DefaultRecentLimit {
		t.Fatalf("non-positive limit should use the default, got %d", len(got))
	}
}

func TestExpensesByCategory(t *testing.T) {
	txs := append(june2024(),
		core.Transaction{Type: core.Expense, Category: core.CategoryTransport, Amount: 400, Date: "2024-06-03"},
		core.Transaction{Type: core.Expense, Category: core.CategoryBills, Amount: 120, Date: "2024-06-04"},
	)
	got := ExpensesByCategory(txs, "2024-06")
	want := []CategoryTotal{
		{core.CategoryFood, "Alimentação", 400},
		{core.CategoryTransport, "Transporte", 400},
		{core.CategoryBills, "Contas", 120},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	all := ExpensesByCategory(txs, "")
	if all[0].Category != core.CategoryFood || all[0].Amount != 450 {
		t.Fatalf("expected food 450 across months, got %+v", all[0])
	}
}

func TestMonthlyTotals(t *testing.T) {
	got := MonthlyTotals(june2024(), "2024-06", 3)
	want := []MonthTotals{
		{Month: "2024-04"},
		{Month: "2024-05", Expense: 50},
		{Month: "2024-06", Income: 1000, Expense: 400},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if MonthlyTotals(nil, "bad", 3) != nil {
		t.Fatalf("invalid end month should yield nil")
	}
}

func TestCountMalformed(t *testing.T) {
	txs := []core.Transaction{
		{Type: core.Income, Category: core.CategorySalary},
		{Type: "x", Category: core.CategorySalary},
		{Type: core.Expense, Category: "pets"},
	}
	if n := CountMalformed(txs); n != 2 {
		t.Fatalf("expected 2, got %d", n)
	}
}
