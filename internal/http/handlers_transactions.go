package http

import (
	"html/template"
	"net/http"

	"financas/internal/core"
	"financas/internal/dashboard"
	applog "financas/internal/log"
)

const maxAPILimit = 500

type transactionsData struct {
	Status       dashboard.Status
	Transactions []core.Transaction
	Today        string
	Categories   categoryOptions
}

// handleTransactionsPage lists every transaction, newest first.
func (s *Server) handleTransactionsPage(w http.ResponseWriter, r *http.Request) {
	txs := s.session.Transactions()
	s.render(w, r, "transactions_page", page{
		Title:  "Transações",
		Active: "transacoes",
		Data: transactionsData{
			Status:       s.session.Status(),
			Transactions: dashboard.RecentTransactions(txs, len(txs)),
			Today:        core.Today(s.session.Now()),
			Categories:   newCategoryOptions(),
		},
	})
}

// handleCreateTransaction accepts a form post or a JSON body.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "Formato de requisição inválido")
		return
	}

	in, err := parser.TransactionInput(s.session.Now())
	if err != nil {
		status, msg := userMessage(err)
		s.respondError(w, r, status, msg)
		return
	}
	s.addTransaction(w, r, in, "form")
}

// handleVoiceTransaction parses a spoken sentence into a transaction.
func (s *Server) handleVoiceTransaction(w http.ResponseWriter, r *http.Request) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "Formato de requisição inválido")
		return
	}

	text := parser.Get("text")
	in, err := s.voice.WithClock(s.session.Now).Parse(text)
	if err != nil {
		applog.FromContext(r.Context()).InfoContext(r.Context(), "Voice utterance rejected",
			applog.FieldOperation, applog.OpParse,
			applog.FieldError, err,
			"length", len(text))
		status, msg := userMessage(err)
		s.respondError(w, r, status, msg)
		return
	}
	s.addTransaction(w, r, in, "voice")
}

func (s *Server) addTransaction(w http.ResponseWriter, r *http.Request, in core.NewTransaction, source string) {
	ctx := r.Context()
	tx, err := s.session.Add(ctx, in)
	if err != nil {
		status, msg := userMessage(err)
		s.respondError(w, r, status, msg)
		return
	}
	applog.NewStructuredLogger(applog.FromContext(ctx)).
		LogTransactionCreated(ctx, tx.ID, string(tx.Type), string(tx.Category), tx.Amount, source)

	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, tx)
		return
	}

	msg := "Transação registrada: " + tx.DisplayDescription() + " " + core.FormatCurrency(tx.Amount)
	NewHTMXResponse().
		Status(http.StatusCreated).
		TriggerTransactionCreated(core.MonthKey(tx.Date), string(tx.Type)).
		TriggerSuccessNotification(msg).
		TriggerFormReset().
		BodyHTML(`<div class="success">` + template.HTMLEscapeString(msg) + `</div>`).
		Write(w)
}

// respondError answers in JSON or as an HTMX fragment with an error toast.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if wantsJSON(r) {
		writeJSONError(w, status, msg)
		return
	}
	var resp *HTMXResponseBuilder
	switch status {
	case http.StatusBadRequest:
		resp = BadRequestError(msg)
	case http.StatusUnprocessableEntity:
		resp = UnprocessableEntityError(msg)
	case http.StatusServiceUnavailable:
		resp = ServiceUnavailableError(msg)
	case http.StatusInternalServerError:
		resp = InternalServerError(msg)
	default:
		resp = ErrorResponse(status, msg)
	}
	resp.Write(w)
}

type summaryResponse struct {
	Month        string           `json:"month"`
	Status       dashboard.Status `json:"status"`
	TotalIncome  float64          `json:"total_income"`
	TotalExpense float64          `json:"total_expense"`
	Balance      float64          `json:"balance"`
	Formatted    struct {
		TotalIncome  string `json:"total_income"`
		TotalExpense string `json:"total_expense"`
		Balance      string `json:"balance"`
	} `json:"formatted"`
}

// handleAPISummary returns the month summary. The month defaults to the
// current one.
func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	if !s.requireReady(w) {
		return
	}
	month := ParseMonthParam(r.URL.Query(), s.session.Now())
	sum := dashboard.MonthSummary(s.session.Transactions(), month)

	resp := summaryResponse{
		Month:        month,
		Status:       dashboard.StatusReady,
		TotalIncome:  sum.TotalIncome,
		TotalExpense: sum.TotalExpense,
		Balance:      sum.Balance,
	}
	resp.Formatted.TotalIncome = core.FormatCurrency(sum.TotalIncome)
	resp.Formatted.TotalExpense = core.FormatCurrency(sum.TotalExpense)
	resp.Formatted.Balance = core.FormatCurrency(sum.Balance)
	writeJSON(w, http.StatusOK, resp)
}

// handleAPITransactions returns the most recent transactions.
func (s *Server) handleAPITransactions(w http.ResponseWriter, r *http.Request) {
	if !s.requireReady(w) {
		return
	}
	limit := ParseLimitParam(r.URL.Query(), s.recentLimit, maxAPILimit)
	recent := dashboard.RecentTransactions(s.session.Transactions(), limit)
	if recent == nil {
		recent = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, recent)
}

// requireReady answers 503 unless the collection is loaded.
func (s *Server) requireReady(w http.ResponseWriter) bool {
	view := s.session.Snapshot(0)
	if view.Status == dashboard.StatusReady {
		return true
	}
	writeJSON(w, http.StatusServiceUnavailable, map[string]any{
		"status":     view.Status,
		"error_kind": view.ErrKind,
		"error":      "transactions not loaded",
	})
	return false
}
