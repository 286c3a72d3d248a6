package logging

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds the process logger. The development profile uses the console
// writer; every other profile emits JSON lines.
func New(environment string) zerolog.Logger {
	var out io.Writer = os.Stdout
	if strings.EqualFold(environment, "development") {
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

// WithContext returns a derived context that carries the provided logger.
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	if ctx == nil {
		return ctx
	}
	return logger.WithContext(ctx)
}

// FromContext extracts a logger previously attached to the context, or nil.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return nil
	}
	logger := zerolog.Ctx(ctx)
	if logger == nil || logger.GetLevel() == zerolog.Disabled {
		return nil
	}
	return logger
}
