package handler

import (
	"fmt"

	"e5e/config"
	"e5e/observability"
)

// Factory resolves entrypoints and wraps them in the default middleware
// stack.
type Factory struct {
	resolver Resolver
	provider observability.Provider
	cfg      config.Config
}

// NewFactory creates a factory with the default configuration.
func NewFactory(resolver Resolver, provider observability.Provider) *Factory {
	return &Factory{
		resolver: resolver,
		provider: provider,
		cfg:      *config.Default(),
	}
}

// WithConfig sets a custom configuration.
func (f *Factory) WithConfig(cfg *config.Config) *Factory {
	if cfg != nil {
		f.cfg = *cfg
	}
	return f
}

// Create resolves entrypoint and returns its handler. An unknown
// entrypoint fails with a *MissingEntrypointError.
func (f *Factory) Create(entrypoint string) (*Handler, error) {
	fn, err := f.resolver.Resolve(entrypoint)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve entrypoint: %w", err)
	}

	if f.cfg.Platform == "" || f.cfg.Platform == config.PlatformAuto {
		f.cfg.Platform = DetectPlatform()
	}

	cfg := f.cfg
	handler := NewHandler(entrypoint, fn, &cfg)
	f.applyDefaultMiddleware(handler)

	return handler, nil
}

// applyDefaultMiddleware adds the standard middleware stack.
func (f *Factory) applyDefaultMiddleware(handler *Handler) {
	// outermost, catches everything below
	handler.Use(RecoveryMiddleware(f.provider))

	if f.cfg.HandlerTimeout > 0 {
		handler.Use(TimeoutMiddleware(f.cfg.HandlerTimeout))
	}

	if f.cfg.EnableMetrics {
		handler.Use(MetricsMiddleware(f.provider))
	}

	handler.Use(LoggingMiddleware(f.provider))
}

// DetectPlatform reports "lambda" inside AWS Lambda and "stdio" everywhere
// else.
func DetectPlatform() string {
	if config.IsLambda() {
		return config.PlatformLambda
	}
	return config.PlatformStdio
}
