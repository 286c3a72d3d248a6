package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/example/charging-hub/internal/application"
	"github.com/example/charging-hub/internal/logging"
)

type errorResponse struct {
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type responder struct {
	logger zerolog.Logger
}

func newResponder(logger *zerolog.Logger) responder {
	if logger == nil {
		nop := zerolog.Nop()
		return responder{logger: nop}
	}
	return responder{logger: *logger}
}

func (r responder) loggerFor(ctx context.Context) *zerolog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return &r.logger
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).Error().Err(err).Msg("failed to encode response")
	}
}

func (r responder) writeMessage(ctx context.Context, w http.ResponseWriter, status int, message string) {
	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) badRequestBody(ctx context.Context, w http.ResponseWriter) {
	r.writeMessage(ctx, w, http.StatusBadRequest, "Formato de requisição inválido.")
}

// handleServiceError maps service errors onto the HTTP error contract:
// 400 with a per-field map for validation, 400 with a message for broken
// business rules, 401/403/404/409 for the sentinel cases, 500 otherwise.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeMessage(ctx, w, http.StatusInternalServerError, "Erro interno do servidor.")
		return
	}

	var (
		vErr     *application.ValidationError
		ruleErr  *application.RuleError
		conflict *application.ConflictError
	)
	switch {
	case errors.As(err, &vErr):
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Errors: vErr.FieldErrors})
	case errors.As(err, &ruleErr):
		r.writeMessage(ctx, w, http.StatusBadRequest, ruleErr.Message)
	case errors.As(err, &conflict):
		r.writeMessage(ctx, w, http.StatusConflict, conflict.Message)
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeMessage(ctx, w, http.StatusUnauthorized, "Credenciais inválidas.")
	case errors.Is(err, application.ErrUnauthorized):
		r.writeMessage(ctx, w, http.StatusForbidden, "Acesso negado.")
	case errors.Is(err, application.ErrNotFound):
		r.writeMessage(ctx, w, http.StatusNotFound, "Recurso não encontrado.")
	default:
		r.loggerFor(ctx).Error().Err(err).Msg("request failed")
		r.writeMessage(ctx, w, http.StatusInternalServerError, "Erro interno do servidor.")
	}
}
