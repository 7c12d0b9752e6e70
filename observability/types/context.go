package types

import "context"

type contextKey string

const (
	invocationIDKey contextKey = "invocation_id"
	entrypointKey   contextKey = "entrypoint"
)

// WithInvocationID returns a copy of ctx carrying the invocation identifier.
func WithInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, invocationIDKey, id)
}

// InvocationID returns the invocation identifier stored in ctx, if any.
func InvocationID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(invocationIDKey).(string)
	return id, ok
}

// WithEntrypoint returns a copy of ctx carrying the entrypoint name.
func WithEntrypoint(ctx context.Context, entrypoint string) context.Context {
	return context.WithValue(ctx, entrypointKey, entrypoint)
}

// Entrypoint returns the entrypoint name stored in ctx, if any.
func Entrypoint(ctx context.Context) (string, bool) {
	e, ok := ctx.Value(entrypointKey).(string)
	return e, ok
}
