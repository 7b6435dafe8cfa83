package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"financas/internal/core"
)

var parserNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func TestParseMonthParam(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		want  string
	}{
		{name: "valid month", query: url.Values{"month": {"2023-12"}}, want: "2023-12"},
		{name: "missing uses now", query: url.Values{}, want: "2024-06"},
		{name: "malformed uses now", query: url.Values{"month": {"2024-13"}}, want: "2024-06"},
		{name: "garbage uses now", query: url.Values{"month": {"junho"}}, want: "2024-06"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseMonthParam(tt.query, parserNow); got != tt.want {
				t.Errorf("ParseMonthParam() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLimitParam(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		want  int
	}{
		{name: "default", query: url.Values{}, want: 5},
		{name: "explicit", query: url.Values{"limit": {"20"}}, want: 20},
		{name: "capped", query: url.Values{"limit": {"9999"}}, want: 500},
		{name: "zero ignored", query: url.Values{"limit": {"0"}}, want: 5},
		{name: "negative ignored", query: url.Values{"limit": {"-3"}}, want: 5},
		{name: "not a number", query: url.Values{"limit": {"abc"}}, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLimitParam(tt.query, 5, 500); got != tt.want {
				t.Errorf("ParseLimitParam() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"id": "123", "name": "test", "amount": 42.5}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}
	if id := parser.Get("id"); id != "123" {
		t.Errorf("Get('id') = %q, want '123'", id)
	}
	if amount := parser.Get("amount"); amount != "42.5" {
		t.Errorf("Get('amount') = %q, want '42.5'", amount)
	}
	if f, err := parser.Float("amount"); err != nil || f != 42.5 {
		t.Errorf("Float('amount') = %v, %v", f, err)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "id=456&name=form+test&amount=1.234%2C56"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}
	if name := parser.Get("name"); name != "form test" {
		t.Errorf("Get('name') = %q, want 'form test'", name)
	}
	if f, err := parser.Float("amount"); err != nil || f != 1234.56 {
		t.Errorf("Float('amount') = %v, %v", f, err)
	}
}

func TestRequestBodyParser_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"broken"`))
	req.Header.Set("Content-Type", "application/json")

	if err := NewRequestBodyParser(req).Parse(); err == nil {
		t.Fatal("Parse() should fail on malformed JSON")
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(""))

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequestBodyParser_TransactionInput(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    core.NewTransaction
		wantErr error
	}{
		{
			name: "form with date",
			body: "type=expense&category=food&amount=45%2C90&description=Mercado&date=2024-06-10",
			want: core.NewTransaction{Type: core.Expense, Category: core.CategoryFood, Amount: 45.9, Description: "Mercado", Date: "2024-06-10"},
		},
		{
			name: "date defaults to today",
			body: "type=income&category=salary&amount=5000",
			want: core.NewTransaction{Type: core.Income, Category: core.CategorySalary, Amount: 5000, Date: "2024-06-15"},
		},
		{
			name:    "missing amount",
			body:    "type=income&category=salary",
			wantErr: core.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			p := NewRequestBodyParser(req)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			got, err := p.TransactionInput(parserNow)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("TransactionInput() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("TransactionInput() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWantsJSON(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    bool
	}{
		{name: "json content type", headers: map[string]string{"Content-Type": "application/json"}, want: true},
		{name: "json accept", headers: map[string]string{"Accept": "application/json"}, want: true},
		{name: "htmx wins", headers: map[string]string{"HX-Request": "true", "Accept": "application/json"}, want: false},
		{name: "plain form", headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := wantsJSON(req); got != tt.want {
				t.Errorf("wantsJSON() = %v, want %v", got, tt.want)
			}
		})
	}
}
