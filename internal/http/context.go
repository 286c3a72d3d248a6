package http

import (
	"context"

	"github.com/example/charging-hub/internal/application"
)

type contextKey string

const principalContextKey contextKey = "principal"

// ContextWithPrincipal stores the authenticated principal on the context.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}
