package core

import (
	"errors"
	"strings"
	"time"
)

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountInvestment AccountType = "investment"
	AccountCredit     AccountType = "credit"
)

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalCancelled GoalStatus = "cancelled"
)

// DefaultCurrency is assigned to accounts created without one.
const DefaultCurrency = "BRL"

type (
	AccountType string
	GoalStatus  string

	Account struct {
		ID        string      `json:"id"`
		Name      string      `json:"name"`
		Type      AccountType `json:"type"`
		Balance   float64     `json:"balance"`
		Currency  string      `json:"currency"`
		CreatedAt time.Time   `json:"created_at"`
		UpdatedAt time.Time   `json:"updated_at"`
	}

	Goal struct {
		ID            string     `json:"id"`
		Name          string     `json:"name"`
		TargetAmount  float64    `json:"target_amount"`
		CurrentAmount float64    `json:"current_amount"`
		Deadline      string     `json:"deadline,omitempty"`
		Status        GoalStatus `json:"status"`
		CreatedAt     time.Time  `json:"created_at"`
		UpdatedAt     time.Time  `json:"updated_at"`
	}

	Company struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Category  string    `json:"category,omitempty"`
		Contact   string    `json:"contact,omitempty"`
		Notes     string    `json:"notes,omitempty"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}
)

var (
	ErrEmptyName          = errors.New("empty name")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidGoalStatus  = errors.New("invalid goal status")
	ErrInvalidTarget      = errors.New("target amount must be positive")
)

var accountTypeLabels = map[AccountType]string{
	AccountChecking:   "Conta corrente",
	AccountSavings:    "Poupança",
	AccountInvestment: "Investimentos",
	AccountCredit:     "Cartão de crédito",
}

var goalStatusLabels = map[GoalStatus]string{
	GoalActive:    "Ativa",
	GoalCompleted: "Concluída",
	GoalCancelled: "Cancelada",
}

func (t AccountType) Label() string {
	if l, ok := accountTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

func (s GoalStatus) Label() string {
	if l, ok := goalStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if _, ok := accountTypeLabels[a.Type]; !ok {
		return ErrInvalidAccountType
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.TargetAmount <= 0 {
		return ErrInvalidTarget
	}
	if g.CurrentAmount < 0 {
		return ErrInvalidAmount
	}
	if g.Deadline != "" {
		if _, _, _, err := ParseDate(g.Deadline); err != nil {
			return err
		}
	}
	if _, ok := goalStatusLabels[g.Status]; !ok {
		return ErrInvalidGoalStatus
	}
	return nil
}

// Progress is the percentage of the target reached, capped at 100.
func (g Goal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	p := g.CurrentAmount / g.TargetAmount * 100
	if p > 100 {
		return 100
	}
	return p
}

func (c Company) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}
