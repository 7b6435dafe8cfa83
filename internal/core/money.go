// Package core provides money parsing and formatting utilities.
//
// Amounts are carried as float64 magnitudes; parsing and rounding go through
// shopspring/decimal so that user input such as "1.234,56" is read exactly.
package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const currencySymbol = "R$"

// nbsp separates the currency symbol from the digits, matching the pt-BR
// output of locale-aware formatters.
const nbsp = "\u00a0"

var hundred = decimal.NewFromInt(100)

// ParseAmount reads a user-entered amount in either pt-BR ("1.234,56") or
// dot-decimal ("1234.56") notation and rounds it half-up to cents.
//
// Examples:
//
//	ParseAmount("12,34")    -> 12.34, nil
//	ParseAmount("1.234,50") -> 1234.5, nil
//	ParseAmount("R$ 10")    -> 10, nil
//	ParseAmount("12.345")   -> 12345, nil (dot followed by three digits is grouping)
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, currencySymbol)
	s = strings.TrimSpace(strings.ReplaceAll(s, nbsp, " "))
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return 0, ErrInvalidAmount
	}

	s = normalizeSeparators(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return 0, ErrInvalidAmount
	}
	f, _ := d.Float64()
	return f, nil
}

// normalizeSeparators rewrites grouping and decimal marks into a plain
// dot-decimal literal.
func normalizeSeparators(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		// Whichever mark comes last is the decimal separator.
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case hasComma:
		return strings.Replace(s, ",", ".", 1)
	case hasDot:
		parts := strings.Split(s, ".")
		if len(parts) > 2 || len(parts[len(parts)-1]) == 3 {
			return strings.Join(parts, "")
		}
	}
	return s
}

// FormatCurrency renders an amount as Brazilian Real: "R$ 1.234,50", with a
// non-breaking space after the symbol and a leading minus for negatives.
func FormatCurrency(amount float64) string {
	cents := decimal.NewFromFloat(amount).Mul(hundred).Round(0).IntPart()
	neg := cents < 0
	if neg {
		cents = -cents
	}

	whole := groupThousands(cents / 100)
	rem := cents % 100
	s := currencySymbol + nbsp + whole + "," + fmt.Sprintf("%02d", rem)
	if neg {
		return "-" + s
	}
	return s
}

// FormatCurrencyPlain is FormatCurrency with an ordinary space, for plain text
// outputs such as CSV exports and terminal tables.
func FormatCurrencyPlain(amount float64) string {
	return strings.ReplaceAll(FormatCurrency(amount), nbsp, " ")
}

func groupThousands(n int64) string {
	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
