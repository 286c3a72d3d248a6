package application

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/example/charging-hub/internal/logging"
)

func defaultLogger(logger *zerolog.Logger) zerolog.Logger {
	if logger != nil {
		return *logger
	}
	return zerolog.Nop()
}

// serviceLogger derives a logger for one service operation, preferring the
// request scoped logger attached to the context.
func serviceLogger(ctx context.Context, base zerolog.Logger, serviceName, operation string) *zerolog.Logger {
	logger := base
	if ctxLogger := logging.FromContext(ctx); ctxLogger != nil {
		logger = *ctxLogger
	}
	derived := logger.With().Str("service", serviceName).Str("operation", operation).Logger()
	return &derived
}

// ErrorKind maps sentinel, rule and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}
	var rErr *RuleError
	if errors.As(err, &rErr) {
		return "business_rule"
	}

	return "unexpected"
}
