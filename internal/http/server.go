package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"financas/internal/cache"
	"financas/internal/charts"
	"financas/internal/config"
	"financas/internal/core"
	"financas/internal/dashboard"
	applog "financas/internal/log"
	"financas/internal/middleware/ratelimit"
	"financas/internal/middleware/security"
	"financas/internal/middleware/trace"
	"financas/internal/store"
	"financas/internal/voice"
	appweb "financas/web"
)

// Backend is the part of the store the auxiliary sections use.
type Backend interface {
	store.AccountStore
	store.GoalStore
	store.CompanyStore
}

// Options wires the server to its collaborators. Sync and Ready may be nil.
type Options struct {
	Addr        string
	Session     *dashboard.Session
	Backend     Backend
	Sync        store.SyncTracker
	Ready       func(ctx context.Context) error
	Charts      *charts.Renderer
	Voice       *voice.Parser
	Config      *config.Config
	Logger      *applog.Logger
	RecentLimit int
}

type Server struct {
	http.Server
	templates *template.Template

	session     *dashboard.Session
	backend     Backend
	sync        store.SyncTracker
	ready       func(ctx context.Context) error
	charts      *charts.Renderer
	voice       *voice.Parser
	cfg         *config.Config
	logger      *applog.Logger
	recentLimit int

	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware
	caches      *cache.Manager
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(opts Options) (*Server, error) {
	if opts.Session == nil || opts.Backend == nil {
		return nil, fmt.Errorf("http server: session and backend are required")
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.Config == nil {
		opts.Config = config.Load()
	}
	if opts.Charts == nil {
		opts.Charts = charts.NewRenderer(opts.Config.ChartCacheTTL)
	}
	if opts.Voice == nil {
		opts.Voice = voice.NewParser()
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = dashboard.DefaultRecentLimit
	}

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	logger := opts.Logger.WithComponent(applog.ComponentHTTP)
	s := &Server{
		templates:   t,
		session:     opts.Session,
		backend:     opts.Backend,
		sync:        opts.Sync,
		ready:       opts.Ready,
		charts:      opts.Charts,
		voice:       opts.Voice,
		cfg:         opts.Config,
		logger:      logger,
		recentLimit: opts.RecentLimit,
		rateLimiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:    security.NewDetector(),
		caches:      cache.NewManager(logger.Slog()),
		started:     time.Now(),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)
	s.caches.Register(s.charts.Cache())
	s.caches.StartCleanup(10 * time.Minute)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(
		s.tracer.Middleware,
		s.detector.Middleware,
		security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
		s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited, http.MethodPost),
	)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.PathPrefix("/static/").Handler(security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	// Probes
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	// Pages
	r.HandleFunc("/", s.handleDashboard).Methods(http.MethodGet)
	r.HandleFunc("/dashboard/content", s.handleDashboardContent).Methods(http.MethodGet)
	r.HandleFunc("/dashboard/retry", s.handleRetry).Methods(http.MethodPost)
	r.HandleFunc("/transacoes", s.handleTransactionsPage).Methods(http.MethodGet)
	r.HandleFunc("/relatorios", s.handleReportsPage).Methods(http.MethodGet)
	r.HandleFunc("/planilhas", s.handleSheetsPage).Methods(http.MethodGet)
	r.HandleFunc("/contas", s.handleAccountsPage).Methods(http.MethodGet)
	r.HandleFunc("/empresas", s.handleCompaniesPage).Methods(http.MethodGet)
	r.HandleFunc("/metas", s.handleGoalsPage).Methods(http.MethodGet)
	r.HandleFunc("/config", s.handleSettingsPage).Methods(http.MethodGet)

	// Transactions
	r.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	r.HandleFunc("/transactions/voice", s.handleVoiceTransaction).Methods(http.MethodPost)

	// JSON API
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/summary", s.handleAPISummary).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleAPITransactions).Methods(http.MethodGet)
	api.HandleFunc("/accounts", s.handleListAccounts).Methods(http.MethodGet)
	api.HandleFunc("/accounts", s.handleCreateAccount).Methods(http.MethodPost)
	api.HandleFunc("/goals", s.handleListGoals).Methods(http.MethodGet)
	api.HandleFunc("/goals", s.handleCreateGoal).Methods(http.MethodPost)
	api.HandleFunc("/companies", s.handleListCompanies).Methods(http.MethodGet)
	api.HandleFunc("/companies", s.handleCreateCompany).Methods(http.MethodPost)

	// Charts and export
	r.HandleFunc("/charts/expenses.png", s.handleExpensesChart).Methods(http.MethodGet)
	r.HandleFunc("/charts/monthly.png", s.handleMonthlyChart).Methods(http.MethodGet)
	r.HandleFunc("/export/transactions.csv", s.handleExportCSV).Methods(http.MethodGet)

	return r
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		writeJSONError(w, http.StatusTooManyRequests, "Muitas requisições. Tente novamente em instantes.")
		return
	}
	ErrorResponse(http.StatusTooManyRequests, "Muitas requisições. Tente novamente em instantes.").Write(w)
}

// Shutdown stops the background cleanups and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"currency":      core.FormatCurrency,
		"date":          core.FormatDate,
		"longDate":      core.FormatLongDate,
		"monthYear":     core.FormatMonthYear,
		"categoryLabel": core.CategoryLabel,
		"signed": func(t core.Transaction) string {
			switch t.Type {
			case core.Income:
				return "+" + core.FormatCurrency(t.Amount)
			case core.Expense:
				return "-" + core.FormatCurrency(t.Amount)
			default:
				return core.FormatCurrency(t.Amount)
			}
		},
		"percent": func(v float64) string {
			return fmt.Sprintf("%.0f%%", math.Round(v))
		},
	}
}

// render executes a named template into a buffer so that a failure never
// leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	s.renderStatus(w, r, http.StatusOK, name, data)
}

func (s *Server) renderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	b, err := s.renderHTML(name, data)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			"template", name, applog.FieldError, err)
		http.Error(w, "erro ao renderizar a página", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func (s *Server) renderHTML(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
