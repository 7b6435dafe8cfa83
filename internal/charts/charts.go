// Package charts renders the dashboard charts as PNG images.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"financas/internal/cache"
	"financas/internal/core"
	"financas/internal/dashboard"
	applog "financas/internal/log"
)

// ErrNoChartData is returned when there is nothing to plot.
var ErrNoChartData = errors.New("no data to chart")

const (
	width  = 800
	height = 400

	// MonthlyWindow is the number of months in the monthly bar chart.
	MonthlyWindow = 6
)

var (
	incomeColor  = drawing.Color{R: 34, G: 160, B: 90, A: 255}
	expenseColor = drawing.Color{R: 220, G: 70, B: 70, A: 255}

	palette = []drawing.Color{
		{R: 77, G: 184, B: 255, A: 255},
		{R: 250, G: 134, B: 94, A: 255},
		{R: 165, G: 235, B: 91, A: 255},
		{R: 252, G: 201, B: 100, A: 255},
		{R: 208, G: 134, B: 255, A: 255},
		{R: 120, G: 144, B: 156, A: 255},
	}
)

// Renderer draws charts and caches the PNG bytes by key. Callers include the
// collection version in the key so a changed collection is redrawn.
type Renderer struct {
	cache  *cache.LRUCache[[]byte]
	logger *slog.Logger
}

func NewRenderer(ttl time.Duration) *Renderer {
	return &Renderer{
		cache:  cache.NewLRUCache[[]byte](32, ttl),
		logger: slog.Default().With(applog.FieldComponent, applog.ComponentCharts),
	}
}

// Cache exposes the PNG cache so it can be registered for expiry sweeps.
func (r *Renderer) Cache() *cache.LRUCache[[]byte] {
	return r.cache
}

// ExpensesPie renders the expense share of each category in month ("" for
// all months).
func (r *Renderer) ExpensesPie(version uint64, txs []core.Transaction, month string) ([]byte, error) {
	key := fmt.Sprintf("pie:%d:%s", version, month)
	return r.cache.GetOrLoad(key, func() ([]byte, error) {
		return r.render("expenses_pie", func() ([]byte, error) {
			return renderPie(dashboard.ExpensesByCategory(txs, month), month)
		})
	})
}

// MonthlyBars renders income and expense side by side for the window ending
// at endMonth.
func (r *Renderer) MonthlyBars(version uint64, txs []core.Transaction, endMonth string) ([]byte, error) {
	key := fmt.Sprintf("bars:%d:%s", version, endMonth)
	return r.cache.GetOrLoad(key, func() ([]byte, error) {
		return r.render("monthly_bars", func() ([]byte, error) {
			return renderMonthly(dashboard.MonthlyTotals(txs, endMonth, MonthlyWindow))
		})
	})
}

func (r *Renderer) render(name string, draw func() ([]byte, error)) ([]byte, error) {
	start := time.Now()
	b, err := draw()
	if err != nil {
		if !errors.Is(err, ErrNoChartData) {
			r.logger.Error("Chart render failed", "chart", name, applog.FieldError, err)
		}
		return nil, err
	}
	r.logger.Debug("Chart rendered", "chart", name, "bytes", len(b), applog.FieldDuration, time.Since(start).Milliseconds())
	return b, nil
}

func renderPie(totals []dashboard.CategoryTotal, month string) ([]byte, error) {
	var values []chart.Value
	for i, t := range totals {
		if t.Amount <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %s", t.Label, core.FormatCurrencyPlain(t.Amount)),
			Value: t.Amount,
			Style: chart.Style{FillColor: palette[i%len(palette)]},
		})
	}
	if len(values) == 0 {
		return nil, ErrNoChartData
	}

	title := "Despesas por categoria"
	if month != "" {
		title += " - " + core.FormatMonthYear(month)
	}
	pie := chart.PieChart{
		Title:  title,
		Width:  width,
		Height: height,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render pie chart: %w", err)
	}
	return buf.Bytes(), nil
}

func renderMonthly(months []dashboard.MonthTotals) ([]byte, error) {
	var (
		bars    []chart.Value
		hasData bool
	)
	for _, m := range months {
		if m.Income > 0 || m.Expense > 0 {
			hasData = true
		}
		bars = append(bars,
			chart.Value{
				Label: core.FormatMonthShort(m.Month),
				Value: m.Income,
				Style: chart.Style{FillColor: incomeColor, StrokeColor: incomeColor},
			},
			chart.Value{
				Label: "",
				Value: m.Expense,
				Style: chart.Style{FillColor: expenseColor, StrokeColor: expenseColor},
			})
	}
	if !hasData {
		return nil, ErrNoChartData
	}

	bc := chart.BarChart{
		Title: "Receitas x Despesas",
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Width:    width,
		Height:   height,
		BarWidth: 30,
		Bars:     bars,
	}
	bc.YAxis.ValueFormatter = func(v any) string {
		if vf, ok := v.(float64); ok {
			return core.FormatCurrencyPlain(vf)
		}
		return ""
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render bar chart: %w", err)
	}
	return buf.Bytes(), nil
}
