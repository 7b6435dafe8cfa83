package core

import (
	"errors"
	"strings"
	"testing"
)

func TestNewTransactionValidate(t *testing.T) {
	good := NewTransaction{
		Type:        Expense,
		Category:    CategoryFood,
		Amount:      45.9,
		Description: "mercado",
		Date:        "2024-06-10",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*NewTransaction)
		want   error
	}{
		{"unknown type", func(n *NewTransaction) { n.Type = "transfer" }, ErrInvalidType},
		{"unknown category", func(n *NewTransaction) { n.Category = "pets" }, ErrInvalidCategory},
		{"category of the other type", func(n *NewTransaction) { n.Type = Income }, ErrInvalidCategory},
		{"zero amount", func(n *NewTransaction) { n.Amount = 0 }, ErrInvalidAmount},
		{"negative amount", func(n *NewTransaction) { n.Amount = -1 }, ErrInvalidAmount},
		{"bad date", func(n *NewTransaction) { n.Date = "10/06/2024" }, ErrInvalidDate},
		{"impossible date", func(n *NewTransaction) { n.Date = "2024-02-30" }, ErrInvalidDate},
		{"long description", func(n *NewTransaction) { n.Description = strings.Repeat("a", 201) }, ErrDescriptionTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := good
			tc.mutate(&n)
			if err := n.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDescriptionLimitCountsCharacters(t *testing.T) {
	n := NewTransaction{Type: Income, Category: CategorySalary, Amount: 1, Date: "2024-01-01",
		Description: strings.Repeat("ç", MaxDescriptionLength)}
	if err := n.Validate(); err != nil {
		t.Fatalf("200 multi-byte characters should be accepted, got %v", err)
	}
}

func TestDisplayDescription(t *testing.T) {
	tx := Transaction{Category: CategoryFood}
	if got := tx.DisplayDescription(); got != "Alimentação" {
		t.Fatalf("expected category label fallback, got %q", got)
	}
	tx.Description = "  Padaria "
	if got := tx.DisplayDescription(); got != "Padaria" {
		t.Fatalf("expected trimmed description, got %q", got)
	}
}

func TestCategoryLabelFallback(t *testing.T) {
	cases := map[Category]string{
		CategorySalary: "Salário",
		CategoryBills:  "Contas",
		"pets":         "pets",
		"":             UncategorizedLabel,
	}
	for in, want := range cases {
		if got := CategoryLabel(in); got != want {
			t.Errorf("CategoryLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCategoriesFor(t *testing.T) {
	for _, c := range CategoriesFor(Income) {
		if c == CategoryFood {
			t.Fatalf("food should not be offered for income")
		}
	}
	if got := len(CategoriesFor("")); got != len(CategoryLabels) {
		t.Fatalf("expected all %d categories, got %d", len(CategoryLabels), got)
	}
}

func TestSignedAmount(t *testing.T) {
	if v := (Transaction{Type: Income, Amount: 10}).SignedAmount(); v != 10 {
		t.Fatalf("income: got %v", v)
	}
	if v := (Transaction{Type: Expense, Amount: 10}).SignedAmount(); v != -10 {
		t.Fatalf("expense: got %v", v)
	}
	if v := (Transaction{Type: "bogus", Amount: 10}).SignedAmount(); v != 0 {
		t.Fatalf("unknown: got %v", v)
	}
}

func TestGoalProgress(t *testing.T) {
	g := Goal{Name: "Viagem", TargetAmount: 1000, CurrentAmount: 250, Status: GoalActive}
	if p := g.Progress(); p != 25 {
		t.Fatalf("expected 25, got %v", p)
	}
	g.CurrentAmount = 5000
	if p := g.Progress(); p != 100 {
		t.Fatalf("expected cap at 100, got %v", p)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	g.Status = "paused"
	if err := g.Validate(); !errors.Is(err, ErrInvalidGoalStatus) {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestAccountValidate(t *testing.T) {
	if err := (Account{Name: "Nubank", Type: AccountChecking}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Account{Name: " ", Type: AccountChecking}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected empty name, got %v", err)
	}
	if err := (Account{Name: "x", Type: "wallet"}).Validate(); !errors.Is(err, ErrInvalidAccountType) {
		t.Fatalf("expected account type error, got %v", err)
	}
}

func TestCategoryAllowedFor(t *testing.T) {
	cases := []struct {
		c    Category
		t    TransactionType
		want bool
	}{
		{CategorySalary, Income, true},
		{CategorySalary, Expense, false},
		{CategoryFood, Expense, true},
		{CategoryFood, Income, false},
		{CategoryOther, Income, true},
		{CategoryOther, Expense, true},
		{CategoryFood, "transfer", false},
	}
	for _, tc := range cases {
		if got := tc.c.AllowedFor(tc.t); got != tc.want {
			t.Errorf("%q.AllowedFor(%q) = %v, want %v", tc.c, tc.t, got, tc.want)
		}
	}
}
