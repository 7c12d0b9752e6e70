package handler

import (
	"context"

	"e5e/function"
)

// Function is the user code behind an entrypoint. It receives the decoded
// request and the loop's context, which is cancelled on shutdown.
type Function interface {
	Handle(ctx context.Context, req function.Request) (*function.Response, error)
}

// FunctionFunc adapts an ordinary function to the Function interface.
type FunctionFunc func(ctx context.Context, req function.Request) (*function.Response, error)

// Handle calls f(ctx, req).
func (f FunctionFunc) Handle(ctx context.Context, req function.Request) (*function.Response, error) {
	return f(ctx, req)
}
