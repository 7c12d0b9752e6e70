// Package handler wraps user functions with the runtime's cross-cutting
// concerns (panic recovery, logging, metrics, timeouts) and resolves them
// by entrypoint name.
package handler

import (
	"context"

	"e5e/config"
	"e5e/function"
	"e5e/observability"
)

// Handler is a resolved function wrapped in its middleware chain. Platform
// adapters call Handle once per invocation.
type Handler struct {
	entrypoint  string
	fn          Function
	middlewares []Middleware
	config      *config.Config
}

// Middleware defines the interface for handler middleware.
// Middlewares wrap the handler function to add cross-cutting concerns.
type Middleware func(next HandlerFunc) HandlerFunc

// HandlerFunc is the function signature that middlewares wrap.
type HandlerFunc func(ctx context.Context, req function.Request) (*function.Response, error)

// NewHandler creates a handler without any middleware.
// Most callers should use the Factory instead.
func NewHandler(entrypoint string, fn Function, cfg *config.Config) *Handler {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Handler{
		entrypoint:  entrypoint,
		fn:          fn,
		config:      cfg,
		middlewares: []Middleware{},
	}
}

// Use adds middleware to the handler chain.
// Middleware is executed in the order it's added.
func (h *Handler) Use(middleware Middleware) {
	h.middlewares = append(h.middlewares, middleware)
}

// Handle runs req through the middleware chain and the function.
func (h *Handler) Handle(ctx context.Context, req function.Request) (*function.Response, error) {
	handler := h.buildHandlerChain()

	ctx = observability.WithEntrypoint(ctx, h.entrypoint)

	return handler(ctx, req)
}

// buildHandlerChain applies the middleware in reverse order so that the
// first middleware added is the outermost layer.
func (h *Handler) buildHandlerChain() HandlerFunc {
	handler := h.functionHandler

	for i := len(h.middlewares) - 1; i >= 0; i-- {
		handler = h.middlewares[i](handler)
	}

	return handler
}

// functionHandler is the innermost layer of the chain.
func (h *Handler) functionHandler(ctx context.Context, req function.Request) (*function.Response, error) {
	return h.fn.Handle(ctx, req)
}

// Entrypoint returns the name the function was resolved by.
func (h *Handler) Entrypoint() string {
	return h.entrypoint
}

// Config returns the handler configuration.
func (h *Handler) Config() *config.Config {
	return h.config
}
