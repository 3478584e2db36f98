package authz

import (
	"context"

	"github.com/google/uuid"
)

type contextKey int

const (
	resultKey contextKey = iota
	requestIDKey
)

// ResultFromContext returns the Result attached by ContextWithResult, or nil.
func ResultFromContext(ctx context.Context) *Result {
	r, _ := ctx.Value(resultKey).(*Result)
	return r
}

// ContextWithResult attaches r so downstream handlers can inspect the
// decision.
func ContextWithResult(ctx context.Context, r *Result) context.Context {
	return context.WithValue(ctx, resultKey, r)
}

// RequestIDFromContext returns the request ID, or "" if none is set.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// ContextWithRequestID attaches a request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// EnsureRequestID returns ctx carrying a request ID, generating one if
// needed, and the ID itself.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if id := RequestIDFromContext(ctx); id != "" {
		return ctx, id
	}
	id := uuid.New().String()
	return ContextWithRequestID(ctx, id), id
}
