package utils

import (
	"context"

	"github.com/SchoolPulse/SP-Gateway/internal/roles"
)

type contextKey string

const ContextRoleKey contextKey = "role"

// WithRole returns a context carrying the role a route guard matched.
func WithRole(ctx context.Context, r roles.Role) context.Context {
	return context.WithValue(ctx, ContextRoleKey, r)
}

// GetRoleFromContext returns the role injected by a route guard, if any.
func GetRoleFromContext(ctx context.Context) (roles.Role, bool) {
	r, ok := ctx.Value(ContextRoleKey).(roles.Role)
	return r, ok
}
