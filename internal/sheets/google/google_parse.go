package google

import (
	"fmt"
	"strconv"
	"strings"

	"financas/internal/core"
)

// formatRow renders tx in the column order of Header. The amount is a plain
// number so the spreadsheet can sum it.
func formatRow(tx core.Transaction) []any {
	return []any{
		core.FormatLongDate(tx.Date),
		tx.Type.Label(),
		core.CategoryLabel(tx.Category),
		tx.Description,
		tx.Amount,
		tx.ID,
	}
}

// parseRows turns sheet values back into transactions. The header row and
// rows that do not parse are skipped; the latter are counted.
func parseRows(values [][]any) ([]core.Transaction, int) {
	var (
		out     []core.Transaction
		skipped int
	)
	for i, row := range values {
		cols := toStrings(row)
		if i == 0 && len(cols) > 0 && strings.EqualFold(cols[0], fmt.Sprint(Header[0])) {
			continue
		}
		if len(cols) < 5 || strings.Join(cols, "") == "" {
			if len(cols) > 0 && strings.Join(cols, "") != "" {
				skipped++
			}
			continue
		}
		tx, ok := parseRow(cols)
		if !ok {
			skipped++
			continue
		}
		out = append(out, tx)
	}
	return out, skipped
}

func parseRow(cols []string) (core.Transaction, bool) {
	date, ok := parseSheetDate(cols[0])
	if !ok {
		return core.Transaction{}, false
	}
	txType, ok := typeFromLabel(cols[1])
	if !ok {
		return core.Transaction{}, false
	}
	amount, err := core.ParseAmount(cols[4])
	if err != nil || amount < 0 {
		return core.Transaction{}, false
	}
	tx := core.Transaction{
		Type:        txType,
		Category:    categoryFromLabel(cols[2]),
		Description: cols[3],
		Amount:      amount,
		Date:        date,
	}
	if len(cols) > 5 {
		tx.ID = cols[5]
	}
	return tx, true
}

// parseSheetDate accepts dd/mm/yyyy (as written) and yyyy-mm-dd.
func parseSheetDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if _, _, _, err := core.ParseDate(s); err == nil {
		return s, true
	}
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return "", false
	}
	d, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	y, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}
	iso := fmt.Sprintf("%04d-%02d-%02d", y, m, d)
	if _, _, _, err := core.ParseDate(iso); err != nil {
		return "", false
	}
	return iso, true
}

func typeFromLabel(s string) (core.TransactionType, bool) {
	s = strings.TrimSpace(s)
	for _, t := range []core.TransactionType{core.Income, core.Expense} {
		if strings.EqualFold(s, t.Label()) || strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	return "", false
}

// categoryFromLabel maps a display label back to its key. Unknown labels are
// kept verbatim.
func categoryFromLabel(s string) core.Category {
	s = strings.TrimSpace(s)
	for c, label := range core.CategoryLabels {
		if strings.EqualFold(label, s) || strings.EqualFold(string(c), s) {
			return c
		}
	}
	return core.Category(s)
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
