// Package requestctx carries the per-request correlation ID through
// context so response envelopes and log lines can share it without a
// middleware import cycle.
package requestctx

import "context"

type contextKey struct{}

// WithRequestID returns a child context tagged with the correlation ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// GetRequestID returns the correlation ID, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
