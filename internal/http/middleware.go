package http

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/example/charging-hub/internal/application"
	"github.com/example/charging-hub/internal/logging"
	"github.com/example/charging-hub/internal/token"
)

// RequestLogger attaches a per-request zerolog logger to the context and
// emits one line per request with method, path, status and duration.
func RequestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	var counter atomic.Uint64
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestLogger := logger.With().
				Uint64("request_id", counter.Add(1)).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Logger()

			ctx := logging.WithContext(r.Context(), requestLogger)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			start := time.Now()
			next.ServeHTTP(ww, r.WithContext(ctx))

			requestLogger.Info().
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request handled")
		})
	}
}

// TokenVerifier validates bearer tokens. Implemented by token.Manager.
type TokenVerifier interface {
	Verify(signed string) (token.Claims, error)
}

// Authenticator builds the authentication middleware for both caller kinds.
// Employee tokens are backed by a per-request row re-fetch so position
// changes take effect immediately.
type Authenticator struct {
	verifier  TokenVerifier
	employees *application.EmployeeService
	responder responder
}

// NewAuthenticator wires the token verifier and the employee service used
// for per-request row re-fetches.
func NewAuthenticator(verifier TokenVerifier, employees *application.EmployeeService, logger *zerolog.Logger) *Authenticator {
	return &Authenticator{
		verifier:  verifier,
		employees: employees,
		responder: newResponder(logger),
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// RequireCustomer admits requests carrying a valid customer token.
func (a *Authenticator) RequireCustomer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		signed := bearerToken(r)
		if signed == "" {
			a.responder.writeMessage(ctx, w, http.StatusUnauthorized, "Token não fornecido.")
			return
		}
		claims, err := a.verifier.Verify(signed)
		if err != nil {
			a.responder.writeMessage(ctx, w, http.StatusUnauthorized, "Token inválido ou expirado.")
			return
		}
		if claims.IsEmployee() {
			a.responder.writeMessage(ctx, w, http.StatusForbidden, "Acesso negado. Token inválido para usuário.")
			return
		}

		principal := application.Principal{ID: claims.Subject, Kind: application.KindCustomer}
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(ctx, principal)))
	})
}

// RequireEmployee admits requests carrying a valid employee token backed by
// an existing employee row.
func (a *Authenticator) RequireEmployee(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		signed := bearerToken(r)
		if signed == "" {
			a.responder.writeMessage(ctx, w, http.StatusUnauthorized, "Token não fornecido.")
			return
		}
		claims, err := a.verifier.Verify(signed)
		if err != nil {
			a.responder.writeMessage(ctx, w, http.StatusUnauthorized, "Token inválido ou expirado.")
			return
		}
		if !claims.IsEmployee() {
			a.responder.writeMessage(ctx, w, http.StatusForbidden, "Acesso negado. Token inválido para funcionário.")
			return
		}

		employee, err := a.employees.Profile(ctx, application.Principal{ID: claims.Subject, Kind: application.KindEmployee})
		if err != nil {
			a.responder.writeMessage(ctx, w, http.StatusUnauthorized, "Funcionário não encontrado.")
			return
		}

		principal := application.Principal{
			ID:   employee.ID,
			Kind: application.KindEmployee,
			Role: employee.Position,
		}
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(ctx, principal)))
	})
}

// capabilityDeniedMessages matches the capability to the message shown when
// the acting employee's position does not grant it.
var capabilityDeniedMessages = map[application.Capability]string{
	application.CapManageAccounts: "Acesso negado. Apenas CEO pode realizar esta ação.",
	application.CapViewBalance:    "Acesso negado. Apenas CEO pode realizar esta ação.",
}

const defaultCapabilityDeniedMessage = "Acesso negado. Apenas CEO ou Responsável por Instalação pode realizar esta ação."

// RequireCapability admits employees whose position grants the capability.
// It must run after RequireEmployee.
func (a *Authenticator) RequireCapability(capability application.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			principal, ok := PrincipalFromContext(ctx)
			if !ok || !principal.Can(capability) {
				message, known := capabilityDeniedMessages[capability]
				if !known {
					message = defaultCapabilityDeniedMessage
				}
				a.responder.writeMessage(ctx, w, http.StatusForbidden, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
