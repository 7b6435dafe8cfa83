package voice

import (
	"errors"
	"testing"
	"time"

	"financas/internal/core"
)

func fixedParser() *Parser {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	return NewParser().WithClock(func() time.Time { return now })
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want core.NewTransaction
	}{
		{
			name: "expense yesterday",
			text: "gastei 45,90 no mercado ontem",
			want: core.NewTransaction{Type: core.Expense, Category: core.CategoryFood, Amount: 45.9, Description: "Mercado", Date: "2024-06-14"},
		},
		{
			name: "income inferred from category",
			text: "salário 5.000,00",
			want: core.NewTransaction{Type: core.Income, Category: core.CategorySalary, Amount: 5000, Description: "Salário", Date: "2024-06-15"},
		},
		{
			name: "explicit income",
			text: "recebi salário de 5.000,00",
			want: core.NewTransaction{Type: core.Income, Category: core.CategorySalary, Amount: 5000, Description: "Salário", Date: "2024-06-15"},
		},
		{
			name: "currency symbol and short date",
			text: "paguei R$ 1.234,56 de aluguel em 05/06",
			want: core.NewTransaction{Type: core.Expense, Category: core.CategoryHousing, Amount: 1234.56, Description: "Aluguel", Date: "2024-06-05"},
		},
		{
			name: "full date",
			text: "ganhei 300 com freela 10/05/2023",
			want: core.NewTransaction{Type: core.Income, Category: core.CategoryFreelance, Amount: 300, Description: "Freela", Date: "2023-05-10"},
		},
		{
			name: "no type keyword defaults to expense",
			text: "uber 23 reais",
			want: core.NewTransaction{Type: core.Expense, Category: core.CategoryTransport, Amount: 23, Description: "Uber", Date: "2024-06-15"},
		},
		{
			name: "shopping two days ago",
			text: "gastei 10 com presente anteontem",
			want: core.NewTransaction{Type: core.Expense, Category: core.CategoryShopping, Amount: 10, Description: "Presente", Date: "2024-06-13"},
		},
		{
			name: "expense category under income verb",
			text: "recebi 50 do mercado",
			want: core.NewTransaction{Type: core.Income, Category: core.CategoryOther, Amount: 50, Description: "Mercado", Date: "2024-06-15"},
		},
	}
	p := fixedParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"empty", "   ", ErrEmptyUtterance},
		{"no amount", "comprei pão", ErrNoAmount},
		{"impossible date", "gastei 10 em 31/02", core.ErrInvalidDate},
	}
	p := fixedParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := p.Parse(tt.text); !errors.Is(err, tt.want) {
				t.Errorf("Parse(%q) error = %v, want %v", tt.text, err, tt.want)
			}
		})
	}
}

func TestFold(t *testing.T) {
	for in, want := range map[string]string{
		"Salário,": "salario",
		"ÔNIBUS":   "onibus",
		"mercado":  "mercado",
	} {
		if got := fold(in); got != want {
			t.Errorf("fold(%q) = %q, want %q", in, got, want)
		}
	}
}
