package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"financas/internal/core"
	"financas/internal/dashboard"
	"financas/internal/store"
	"financas/internal/voice"
)

// sanitizeInput removes control characters (except tab and newlines) and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("JSON encode failed", "error", err)
	}
}

type jsonError struct {
	Error string `json:"error"`
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, jsonError{Error: message})
}

// userMessage maps validation and store errors to the message shown to the
// user, with the HTTP status that goes with it.
func userMessage(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrInvalidType):
		return http.StatusUnprocessableEntity, "Tipo inválido: escolha receita ou despesa"
	case errors.Is(err, core.ErrInvalidCategory):
		return http.StatusUnprocessableEntity, "Categoria inválida"
	case errors.Is(err, core.ErrInvalidAmount):
		return http.StatusUnprocessableEntity, "Valor inválido"
	case errors.Is(err, core.ErrInvalidDate):
		return http.StatusUnprocessableEntity, "Data inválida"
	case errors.Is(err, core.ErrDescriptionTooLong):
		return http.StatusUnprocessableEntity, "Descrição muito longa"
	case errors.Is(err, core.ErrEmptyName):
		return http.StatusUnprocessableEntity, "Informe um nome"
	case errors.Is(err, core.ErrInvalidAccountType):
		return http.StatusUnprocessableEntity, "Tipo de conta inválido"
	case errors.Is(err, core.ErrInvalidGoalStatus):
		return http.StatusUnprocessableEntity, "Status de meta inválido"
	case errors.Is(err, core.ErrInvalidTarget):
		return http.StatusUnprocessableEntity, "O valor da meta deve ser positivo"
	case errors.Is(err, voice.ErrEmptyUtterance):
		return http.StatusUnprocessableEntity, "Não entendi o que foi dito"
	case errors.Is(err, voice.ErrNoAmount):
		return http.StatusUnprocessableEntity, "Não encontrei um valor na frase"
	case errors.Is(err, dashboard.ErrLoading):
		return http.StatusServiceUnavailable, "Aguarde o carregamento das transações"
	case errors.Is(err, store.ErrNotConfigured):
		return http.StatusServiceUnavailable, "Banco de dados não configurado"
	default:
		return http.StatusInternalServerError, "Erro ao salvar. Tente novamente."
	}
}
