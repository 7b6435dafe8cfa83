package charts

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"financas/internal/core"
)

var pngMagic = []byte("\x89PNG")

func sample() []core.Transaction {
	return []core.Transaction{
		{ID: "1", Type: core.Income, Category: core.CategorySalary, Amount: 5000, Date: "2024-06-05"},
		{ID: "2", Type: core.Expense, Category: core.CategoryFood, Amount: 800, Date: "2024-06-10"},
		{ID: "3", Type: core.Expense, Category: core.CategoryHousing, Amount: 1500, Date: "2024-06-01"},
		{ID: "4", Type: core.Expense, Category: core.CategoryTransport, Amount: 200, Date: "2024-05-20"},
	}
}

func TestExpensesPie(t *testing.T) {
	r := NewRenderer(time.Minute)

	b, err := r.ExpensesPie(1, sample(), "2024-06")
	if err != nil {
		t.Fatalf("ExpensesPie() error = %v", err)
	}
	if !bytes.HasPrefix(b, pngMagic) {
		t.Fatal("expected PNG output")
	}

	if _, err := r.ExpensesPie(1, sample(), "2024-06"); err != nil {
		t.Fatal(err)
	}
	if st := r.Cache().Stats(); st.Hits != 1 {
		t.Errorf("second render with the same version should hit the cache, stats %+v", st)
	}
}

func TestMonthlyBars(t *testing.T) {
	r := NewRenderer(time.Minute)
	b, err := r.MonthlyBars(1, sample(), "2024-06")
	if err != nil {
		t.Fatalf("MonthlyBars() error = %v", err)
	}
	if !bytes.HasPrefix(b, pngMagic) {
		t.Fatal("expected PNG output")
	}
}

func TestNoChartData(t *testing.T) {
	r := NewRenderer(time.Minute)

	if _, err := r.ExpensesPie(1, nil, "2024-06"); !errors.Is(err, ErrNoChartData) {
		t.Errorf("empty pie: expected ErrNoChartData, got %v", err)
	}
	onlyIncome := []core.Transaction{{ID: "1", Type: core.Income, Category: core.CategorySalary, Amount: 10, Date: "2024-06-01"}}
	if _, err := r.ExpensesPie(2, onlyIncome, "2024-06"); !errors.Is(err, ErrNoChartData) {
		t.Errorf("income only pie: expected ErrNoChartData, got %v", err)
	}
	if _, err := r.MonthlyBars(1, sample(), "2020-01"); !errors.Is(err, ErrNoChartData) {
		t.Errorf("window without data: expected ErrNoChartData, got %v", err)
	}
	if r.Cache().Size() != 0 {
		t.Error("errors must not be cached")
	}
}
