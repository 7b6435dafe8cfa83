package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// MaxDescriptionLength bounds the free-text description, in characters.
const MaxDescriptionLength = 200

type (
	TransactionType string

	// Transaction is a store-confirmed record. Amount is a non-negative
	// magnitude; the direction lives in Type.
	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Category    Category        `json:"category"`
		Amount      float64         `json:"amount"`
		Description string          `json:"description,omitempty"`
		Date        string          `json:"date"`
		CreatedAt   time.Time       `json:"created_at"`
	}

	// NewTransaction is the client-submitted shape, before the store assigns
	// an ID and a creation time.
	NewTransaction struct {
		Type        TransactionType `json:"type"`
		Category    Category        `json:"category"`
		Amount      float64         `json:"amount"`
		Description string          `json:"description,omitempty"`
		Date        string          `json:"date"`
	}
)

var (
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date")
	ErrDescriptionTooLong = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Label returns the pt-BR display name of the type.
func (t TransactionType) Label() string {
	switch t {
	case Income:
		return "Receita"
	case Expense:
		return "Despesa"
	default:
		return string(t)
	}
}

func (n NewTransaction) Validate() error {
	if !n.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, n.Type)
	}
	if !n.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, n.Category)
	}
	if !n.Category.AllowedFor(n.Type) {
		return fmt.Errorf("%w: %q is not a %s category", ErrInvalidCategory, n.Category, n.Type)
	}
	if n.Amount <= 0 {
		return ErrInvalidAmount
	}
	if _, _, _, err := ParseDate(n.Date); err != nil {
		return err
	}
	if utf8.RuneCountInString(n.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

// Normalize trims free-text fields.
func (n NewTransaction) Normalize() NewTransaction {
	n.Description = strings.TrimSpace(n.Description)
	n.Date = strings.TrimSpace(n.Date)
	return n
}

// DisplayDescription falls back to the category label when the description
// is empty.
func (t Transaction) DisplayDescription() string {
	if d := strings.TrimSpace(t.Description); d != "" {
		return d
	}
	return CategoryLabel(t.Category)
}

// SignedAmount returns the amount with the sign implied by the type. Unknown
// types yield zero.
func (t Transaction) SignedAmount() float64 {
	switch t.Type {
	case Income:
		return t.Amount
	case Expense:
		return -t.Amount
	default:
		return 0
	}
}
