package core

import (
	"testing"
	"time"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"12,34", 12.34, true},
		{"12.34", 12.34, true},
		{"1.234,50", 1234.5, true},
		{"1,234.50", 1234.5, true},
		{"1.234", 1234, true},
		{"R$ 10", 10, true},
		{"0,005", 0.01, true}, // half-up rounding
		{" 2,50 ", 2.5, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in  float64
		out string
	}{
		{1234.5, "R$\u00a01.234,50"},
		{0, "R$\u00a00,00"},
		{5, "R$\u00a05,00"},
		{999.999, "R$\u00a01.000,00"},
		{1234567.891, "R$\u00a01.234.567,89"},
		{-600, "-R$\u00a0600,00"},
		{0.1 + 0.2, "R$\u00a00,30"},
	}
	for _, tc := range cases {
		if got := FormatCurrency(tc.in); got != tc.out {
			t.Errorf("FormatCurrency(%v) = %q, want %q", tc.in, got, tc.out)
		}
	}
	if got := FormatCurrencyPlain(1234.5); got != "R$ 1.234,50" {
		t.Errorf("FormatCurrencyPlain = %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	cases := map[string]string{
		"2024-01-05": "05 jan",
		"2024-12-31": "31 dez",
		"2023-03-01": "01 mar",
		"not-a-date": "not-a-date",
	}
	for in, want := range cases {
		if got := FormatDate(in); got != want {
			t.Errorf("FormatDate(%q) = %q, want %q", in, got, want)
		}
	}
}

// The rendered day must not move with the process time zone.
func TestFormatDateIgnoresTimeZone(t *testing.T) {
	orig := time.Local
	defer func() { time.Local = orig }()

	for _, zone := range []string{"UTC", "America/Sao_Paulo", "Pacific/Kiritimati", "Pacific/Pago_Pago"} {
		loc, err := time.LoadLocation(zone)
		if err != nil {
			t.Skipf("zone database unavailable: %v", err)
		}
		time.Local = loc
		if got := FormatDate("2024-01-05"); got != "05 jan" {
			t.Fatalf("zone %s: got %q", zone, got)
		}
	}
}

func TestReferenceMonthUsesLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	// 02:00 UTC on July 1st is still June 30th in Brasília.
	now := time.Date(2024, 7, 1, 2, 0, 0, 0, time.UTC).In(loc)
	if got := ReferenceMonth(now); got != "2024-06" {
		t.Fatalf("expected 2024-06, got %s", got)
	}
}

func TestMonthHelpers(t *testing.T) {
	if got := MonthKey("2024-06-15"); got != "2024-06" {
		t.Fatalf("MonthKey: %s", got)
	}
	if got := FormatMonthYear("2024-06"); got != "junho de 2024" {
		t.Fatalf("FormatMonthYear: %s", got)
	}
	if got := FormatMonthShort("2024-03"); got != "mar/24" {
		t.Fatalf("FormatMonthShort: %s", got)
	}
	prev, err := ShiftMonth("2024-01", -1)
	if err != nil || prev != "2023-12" {
		t.Fatalf("ShiftMonth: %s %v", prev, err)
	}
	if ValidMonth("2024-13") || !ValidMonth("2024-12") {
		t.Fatalf("ValidMonth mismatch")
	}
}
