package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"financas/internal/config"
	"financas/internal/core"
	"financas/internal/dashboard"
	applog "financas/internal/log"
)

// page is the data every full page template receives.
type page struct {
	Title  string
	Active string
	Data   any
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports the dashboard load state and, when available, pings
// the backend.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	view := s.session.Snapshot(0)
	checks := map[string]any{
		"session": string(view.Status),
	}
	status, httpStatus := "ready", http.StatusOK
	if view.Status != dashboard.StatusReady {
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
		if view.ErrKind != dashboard.ErrorNone {
			checks["session_error"] = string(view.ErrKind)
		}
	}

	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			checks["backend"] = fmt.Sprintf("failed: %v", err)
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["backend"] = "ok"
		}
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.tracer.GetMetrics()
	rateMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()
	chartStats := s.charts.Cache().Stats()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	metric := func(name, help, kind string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests)
	metric("http_requests_failed_total", "Requests answered with a 5xx status", "counter", traceMetrics.FailedRequests)
	metric("transactions_loaded", "Transactions in the dashboard session", "gauge", len(s.session.Transactions()))
	metric("session_version", "Dashboard collection version", "counter", s.session.Version())
	metric("chart_cache_hits_total", "Chart cache hits", "counter", chartStats.Hits)
	metric("chart_cache_misses_total", "Chart cache misses", "counter", chartStats.Misses)
	metric("chart_cache_entries", "Chart cache entries", "gauge", s.charts.Cache().Size())
	metric("rate_limit_hits_total", "Requests rejected by the rate limiter", "counter", rateMetrics.TotalHits)
	metric("active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", rateMetrics.ClientCount)
	metric("suspicious_requests_total", "Suspicious requests detected", "counter", securityMetrics.SuspiciousRequests)
	metric("uptime_seconds", "Application uptime in seconds", "gauge", int64(time.Since(s.started).Seconds()))
}

// dashboardData is what the dashboard templates render.
type dashboardData struct {
	View        dashboard.View
	MonthLabel  string
	Missing     []string
	Today       string
	Categories  categoryOptions
	Goals       []core.Goal
	Accounts    int
	Balance     float64
	HasExpenses bool
}

type categoryOptions struct {
	Income  []categoryOption
	Expense []categoryOption
}

type categoryOption struct {
	Value string
	Label string
}

func newCategoryOptions() categoryOptions {
	conv := func(cs []core.Category) []categoryOption {
		out := make([]categoryOption, len(cs))
		for i, c := range cs {
			out[i] = categoryOption{Value: string(c), Label: core.CategoryLabel(c)}
		}
		return out
	}
	return categoryOptions{
		Income:  conv(core.CategoriesFor(core.Income)),
		Expense: conv(core.CategoriesFor(core.Expense)),
	}
}

// dashboardView builds the dashboard data. The auxiliary overview cards are
// fetched in parallel; a failing card is left empty.
func (s *Server) dashboardView(ctx context.Context) dashboardData {
	view := s.session.Snapshot(s.recentLimit)
	data := dashboardData{
		View:       view,
		MonthLabel: core.FormatMonthYear(view.ReferenceMonth),
		Today:      core.Today(s.session.Now()),
		Categories: newCategoryOptions(),
	}
	if view.ErrKind == dashboard.ErrorConfiguration {
		data.Missing = config.CheckEnvironment(config.Load()).MissingNames()
	}
	if view.Status != dashboard.StatusReady {
		return data
	}
	data.HasExpenses = view.Summary.TotalExpense > 0

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var (
		goals    []core.Goal
		accounts []core.Account
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		gs, err := s.backend.ListGoals(gctx)
		if err != nil {
			return fmt.Errorf("list goals: %w", err)
		}
		goals = gs
		return nil
	})
	g.Go(func() error {
		as, err := s.backend.ListAccounts(gctx)
		if err != nil {
			return fmt.Errorf("list accounts: %w", err)
		}
		accounts = as
		return nil
	})
	if err := g.Wait(); err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Dashboard overview cards unavailable", applog.FieldError, err)
		return data
	}

	for _, goal := range goals {
		if goal.Status == core.GoalActive && len(data.Goals) < 3 {
			data.Goals = append(data.Goals, goal)
		}
	}
	data.Accounts = len(accounts)
	for _, a := range accounts {
		data.Balance += a.Balance
	}
	return data
}

// handleDashboard renders the main dashboard page
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "dashboard_page", page{
		Title:  "Dashboard",
		Active: "dashboard",
		Data:   s.dashboardView(r.Context()),
	})
}

// handleDashboardContent returns the dashboard body for HTMX refreshes.
func (s *Server) handleDashboardContent(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "dashboard_content", s.dashboardView(r.Context()))
}

// handleRetry re-checks the configuration and reloads the collection.
func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	err := s.session.Load(r.Context())

	resp := NewHTMXResponse()
	switch {
	case err == nil:
		resp.TriggerSuccessNotification("Transações carregadas")
	case errors.Is(err, dashboard.ErrSuperseded):
		// A newer load owns the state.
	case s.session.Snapshot(0).ErrKind == dashboard.ErrorConfiguration:
		resp.TriggerWarningNotification("Banco de dados ainda não configurado")
	default:
		resp.TriggerErrorNotification("Erro ao carregar transações")
	}

	if wantsJSON(r) {
		view := s.session.Snapshot(0)
		writeJSON(w, http.StatusOK, map[string]any{
			"status":     view.Status,
			"error_kind": view.ErrKind,
			"count":      len(view.Transactions),
		})
		return
	}

	body, rerr := s.renderHTML("dashboard_content", s.dashboardView(r.Context()))
	if rerr != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed", "template", "dashboard_content", applog.FieldError, rerr)
		InternalServerError("Erro ao renderizar o dashboard").Write(w)
		return
	}
	resp.Body(body).Header("Content-Type", "text/html; charset=utf-8").Write(w)
}
