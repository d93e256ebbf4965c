package session

import "context"

type contextKey struct{}

// WithManager stores the per-request manager in the context.
func WithManager(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, contextKey{}, m)
}

// FromContext retrieves the per-request manager, nil if absent.
func FromContext(ctx context.Context) *Manager {
	m, _ := ctx.Value(contextKey{}).(*Manager)
	return m
}
