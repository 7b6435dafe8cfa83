package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the storage format of transaction dates.
const DateLayout = "2006-01-02"

// MonthLayout is the format of reference month keys.
const MonthLayout = "2006-01"

var monthAbbrev = [12]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

var monthNames = [12]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// ParseDate splits a YYYY-MM-DD string into its integer components without
// going through any time zone.
func ParseDate(s string) (year, month, day int, err error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	year, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	day, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	if month < 1 || month > 12 || day < 1 || day > daysIn(year, month) {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return year, month, day, nil
}

// LocalDate builds a calendar date at local midnight from a YYYY-MM-DD string.
func LocalDate(s string) (time.Time, error) {
	y, m, d, err := ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.Local), nil
}

// FormatDate renders a YYYY-MM-DD date as "05 jan". Malformed input is
// returned unchanged.
func FormatDate(s string) string {
	t, err := LocalDate(s)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%02d %s", t.Day(), monthAbbrev[t.Month()-1])
}

// FormatLongDate renders "05/01/2024".
func FormatLongDate(s string) string {
	t, err := LocalDate(s)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%02d/%02d/%04d", t.Day(), int(t.Month()), t.Year())
}

// ReferenceMonth is the YYYY-MM key of now in its own location.
func ReferenceMonth(now time.Time) string {
	return now.Format(MonthLayout)
}

// Today is the YYYY-MM-DD key of now in its own location.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

// MonthKey returns the first seven characters of a date, or the whole string
// when shorter.
func MonthKey(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// FormatMonthYear renders a YYYY-MM key as "junho de 2024".
func FormatMonthYear(month string) string {
	y, m, ok := splitMonth(month)
	if !ok {
		return month
	}
	return fmt.Sprintf("%s de %d", monthNames[m-1], y)
}

// FormatMonthShort renders a YYYY-MM key as "jun/24", for chart axes.
func FormatMonthShort(month string) string {
	y, m, ok := splitMonth(month)
	if !ok {
		return month
	}
	return fmt.Sprintf("%s/%02d", monthAbbrev[m-1], y%100)
}

// ShiftMonth moves a YYYY-MM key by delta months.
func ShiftMonth(month string, delta int) (string, error) {
	y, m, ok := splitMonth(month)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, month)
	}
	t := time.Date(y, time.Month(m)+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	return t.Format(MonthLayout), nil
}

// ValidMonth reports whether s is a well-formed YYYY-MM key.
func ValidMonth(s string) bool {
	_, _, ok := splitMonth(s)
	return ok
}

func splitMonth(s string) (year, month int, ok bool) {
	if len(s) != 7 || s[4] != '-' {
		return 0, 0, false
	}
	y, err := strconv.Atoi(s[:4])
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(s[5:])
	if err != nil || m < 1 || m > 12 {
		return 0, 0, false
	}
	return y, m, true
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
