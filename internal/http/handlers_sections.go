package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"financas/internal/config"
	"financas/internal/core"
	"financas/internal/dashboard"
	applog "financas/internal/log"
)

type option struct {
	Value string
	Label string
}

var accountTypeOptions = []option{
	{string(core.AccountChecking), core.AccountChecking.Label()},
	{string(core.AccountSavings), core.AccountSavings.Label()},
	{string(core.AccountInvestment), core.AccountInvestment.Label()},
	{string(core.AccountCredit), core.AccountCredit.Label()},
}

var goalStatusOptions = []option{
	{string(core.GoalActive), core.GoalActive.Label()},
	{string(core.GoalCompleted), core.GoalCompleted.Label()},
	{string(core.GoalCancelled), core.GoalCancelled.Label()},
}

type accountsData struct {
	Accounts []core.Account
	Types    []option
	Total    float64
	Err      string
}

type goalsData struct {
	Goals    []core.Goal
	Statuses []option
	Err      string
}

type companiesData struct {
	Companies []core.Company
	Err       string
}

func (s *Server) accountsData(ctx context.Context) accountsData {
	data := accountsData{Types: accountTypeOptions}
	accounts, err := s.backend.ListAccounts(ctx)
	if err != nil {
		_, data.Err = userMessage(err)
		s.logListError(ctx, "accounts", err)
		return data
	}
	data.Accounts = accounts
	for _, a := range accounts {
		data.Total += a.Balance
	}
	return data
}

func (s *Server) goalsData(ctx context.Context) goalsData {
	data := goalsData{Statuses: goalStatusOptions}
	goals, err := s.backend.ListGoals(ctx)
	if err != nil {
		_, data.Err = userMessage(err)
		s.logListError(ctx, "goals", err)
		return data
	}
	data.Goals = goals
	return data
}

func (s *Server) companiesData(ctx context.Context) companiesData {
	var data companiesData
	companies, err := s.backend.ListCompanies(ctx)
	if err != nil {
		_, data.Err = userMessage(err)
		s.logListError(ctx, "companies", err)
		return data
	}
	data.Companies = companies
	return data
}

func (s *Server) logListError(ctx context.Context, kind string, err error) {
	logFailure(ctx, "Failed to list records", applog.OpList, err, applog.LogFields{"kind": kind})
}

// logFailure reports a handler error through the request logger.
func logFailure(ctx context.Context, msg, op string, err error, fields applog.LogFields) {
	applog.NewStructuredLogger(applog.FromContext(ctx)).
		LogError(ctx, msg, err, applog.ComponentHTTP, op, fields)
}

func (s *Server) handleAccountsPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "accounts_page", page{Title: "Contas", Active: "contas", Data: s.accountsData(r.Context())})
}

func (s *Server) handleGoalsPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "goals_page", page{Title: "Metas", Active: "metas", Data: s.goalsData(r.Context())})
}

func (s *Server) handleCompaniesPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "companies_page", page{Title: "Empresas", Active: "empresas", Data: s.companiesData(r.Context())})
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.backend.ListAccounts(r.Context())
	if err != nil {
		s.logListError(r.Context(), "accounts", err)
		status, msg := userMessage(err)
		writeJSONError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(accounts))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.backend.ListGoals(r.Context())
	if err != nil {
		s.logListError(r.Context(), "goals", err)
		status, msg := userMessage(err)
		writeJSONError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(goals))
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.backend.ListCompanies(r.Context())
	if err != nil {
		s.logListError(r.Context(), "companies", err)
		status, msg := userMessage(err)
		writeJSONError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(companies))
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	balance, err := optionalFloat(p, "balance")
	if err != nil {
		s.respondError(w, r, http.StatusUnprocessableEntity, "Saldo inválido")
		return
	}
	a := core.Account{
		Name:     p.Get("name"),
		Type:     core.AccountType(p.Get("type")),
		Balance:  balance,
		Currency: strings.ToUpper(p.Get("currency")),
	}
	if a.Currency == "" {
		a.Currency = core.DefaultCurrency
	}
	if err := a.Validate(); err != nil {
		status, msg := userMessage(err)
		s.respondError(w, r, status, msg)
		return
	}

	created, err := s.backend.InsertAccount(r.Context(), a)
	if err != nil {
		s.createFailed(w, r, "account", err)
		return
	}
	s.created(w, r, "account", created, "accounts_list", s.accountsData(r.Context()),
		"Conta criada: "+created.Name)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	target, err := p.Float("target_amount")
	if err != nil {
		s.respondError(w, r, http.StatusUnprocessableEntity, "O valor da meta deve ser positivo")
		return
	}
	current, err := optionalFloat(p, "current_amount")
	if err != nil {
		s.respondError(w, r, http.StatusUnprocessableEntity, "Valor atual inválido")
		return
	}
	g := core.Goal{
		Name:          p.Get("name"),
		TargetAmount:  target,
		CurrentAmount: current,
		Deadline:      p.Get("deadline"),
		Status:        core.GoalStatus(p.Get("status")),
	}
	if g.Status == "" {
		g.Status = core.GoalActive
	}
	if err := g.Validate(); err != nil {
		status, msg := userMessage(err)
		s.respondError(w, r, status, msg)
		return
	}

	created, err := s.backend.InsertGoal(r.Context(), g)
	if err != nil {
		s.createFailed(w, r, "goal", err)
		return
	}
	s.created(w, r, "goal", created, "goals_list", s.goalsData(r.Context()),
		"Meta criada: "+created.Name)
}

func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}
	c := core.Company{
		Name:     p.Get("name"),
		Category: p.Get("category"),
		Contact:  p.Get("contact"),
		Notes:    p.Get("notes"),
	}
	if err := c.Validate(); err != nil {
		status, msg := userMessage(err)
		s.respondError(w, r, status, msg)
		return
	}

	created, err := s.backend.InsertCompany(r.Context(), c)
	if err != nil {
		s.createFailed(w, r, "company", err)
		return
	}
	s.created(w, r, "company", created, "companies_list", s.companiesData(r.Context()),
		"Empresa cadastrada: "+created.Name)
}

func (s *Server) parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "Formato de requisição inválido")
		return nil, false
	}
	return p, true
}

func (s *Server) createFailed(w http.ResponseWriter, r *http.Request, kind string, err error) {
	logFailure(r.Context(), "Failed to create record", applog.OpCreate, err, applog.LogFields{"kind": kind})
	status, msg := userMessage(err)
	s.respondError(w, r, status, msg)
}

// created answers a successful insert with the record as JSON, or with the
// refreshed list partial for HTMX.
func (s *Server) created(w http.ResponseWriter, r *http.Request, kind string, record any, partial string, data any, msg string) {
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Record created",
		applog.FieldOperation, applog.OpCreate,
		"kind", kind)

	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, record)
		return
	}
	body, err := s.renderHTML(partial, data)
	if err != nil {
		logFailure(r.Context(), "Template execution failed", applog.OpRender, err, applog.LogFields{"template": partial})
		InternalServerError("Erro ao renderizar a lista").Write(w)
		return
	}
	NewHTMXResponse().
		Status(http.StatusCreated).
		TriggerEntityCreated(kind).
		TriggerSuccessNotification(msg).
		TriggerFormReset().
		Header("Content-Type", "text/html; charset=utf-8").
		Body(body).
		Write(w)
}

// optionalFloat is like Float but treats an absent value as zero.
func optionalFloat(p *RequestBodyParser, key string) (float64, error) {
	if p.Get(key) == "" {
		return 0, nil
	}
	f, err := p.Float(key)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, core.ErrInvalidAmount
	}
	return f, nil
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

type settingsData struct {
	Env          config.EnvStatus
	Environment  string
	Status       dashboard.Status
	ErrKind      dashboard.ErrorKind
	Transactions int
	Version      uint64
	ChartEntries int
	ChartHits    uint64
	ChartMisses  uint64
	SyncSchedule string
	Sheets       bool
}

// handleSettingsPage shows the environment report and the runtime state.
func (s *Server) handleSettingsPage(w http.ResponseWriter, r *http.Request) {
	view := s.session.Snapshot(0)
	stats := s.charts.Cache().Stats()
	s.render(w, r, "settings_page", page{
		Title:  "Configurações",
		Active: "config",
		Data: settingsData{
			Env:          config.CheckEnvironment(config.Load()),
			Environment:  s.cfg.AppEnv,
			Status:       view.Status,
			ErrKind:      view.ErrKind,
			Transactions: len(view.Transactions),
			Version:      view.Version,
			ChartEntries: s.charts.Cache().Size(),
			ChartHits:    stats.Hits,
			ChartMisses:  stats.Misses,
			SyncSchedule: s.cfg.SyncSchedule,
			Sheets:       s.cfg.SheetsEnabled(),
		},
	})
}

// pendingLimit caps the pending count shown on the sheets page.
const pendingLimit = 1000

type sheetsData struct {
	Enabled       bool
	SpreadsheetID string
	SheetName     string
	Queue         bool
	Pending       int
	PendingKnown  bool
	PendingMore   bool
	Schedule      string
	Err           string
}

// handleSheetsPage shows the spreadsheet export state.
func (s *Server) handleSheetsPage(w http.ResponseWriter, r *http.Request) {
	data := sheetsData{
		Enabled:       s.cfg.SheetsEnabled(),
		SpreadsheetID: s.cfg.GoogleSpreadsheetID,
		SheetName:     s.cfg.GoogleSheetName,
		Queue:         s.cfg.AMQPURL != "",
		Schedule:      s.cfg.SyncSchedule,
	}
	if s.sync != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		pending, err := s.sync.PendingSync(ctx, pendingLimit)
		switch {
		case err == nil:
			data.Pending, data.PendingKnown = len(pending), true
			data.PendingMore = len(pending) == pendingLimit
		case errors.Is(err, context.DeadlineExceeded):
			data.Err = "Tempo esgotado ao consultar pendências"
		default:
			_, data.Err = userMessage(err)
			applog.FromContext(ctx).WarnContext(ctx, "Failed to count pending sync records", applog.FieldError, err)
		}
	}
	s.render(w, r, "sheets_page", page{Title: "Planilhas", Active: "planilhas", Data: data})
}
