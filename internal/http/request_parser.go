// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// query parameters, and request bodies that arrive either as JSON or as
// form-encoded HTMX submissions.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"financas/internal/core"
)

// maxBodyBytes caps request bodies read by RequestBodyParser.
const maxBodyBytes = 64 << 10

// ParseMonthParam returns the YYYY-MM month in the "month" query value, or
// the month of now when it is missing or malformed.
func ParseMonthParam(query url.Values, now time.Time) string {
	if v := strings.TrimSpace(query.Get("month")); core.ValidMonth(v) {
		return v
	}
	return core.ReferenceMonth(now)
}

// ParseLimitParam reads the "limit" query value, falling back to def when it
// is missing or not positive and capping it at max.
func ParseLimitParam(query url.Values, def, max int) int {
	limit := def
	if v := strings.TrimSpace(query.Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if max > 0 && limit > max {
		limit = max
	}
	return limit
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once and stores it for parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// Float reads a number that may be a JSON number or a user-typed amount
// such as "1.234,56".
func (p *RequestBodyParser) Float(key string) (float64, error) {
	if p.jsonData != nil {
		if f, ok := p.jsonData[key].(float64); ok {
			return f, nil
		}
	}
	return core.ParseAmount(p.Get(key))
}

// TransactionInput builds a NewTransaction from the parsed body. The date
// defaults to today in now's location. The result is not validated.
func (p *RequestBodyParser) TransactionInput(now time.Time) (core.NewTransaction, error) {
	amount, err := p.Float("amount")
	if err != nil {
		return core.NewTransaction{}, err
	}
	date := p.Get("date")
	if date == "" {
		date = core.Today(now)
	}
	return core.NewTransaction{
		Type:        core.TransactionType(p.Get("type")),
		Category:    core.Category(p.Get("category")),
		Amount:      amount,
		Description: p.Get("description"),
		Date:        date,
	}, nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return false
	}
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}
