package observability

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"e5e/observability/logger"
	"e5e/observability/metrics"
	"e5e/observability/types"
)

// Logger provides structured logging with context support.
type Logger = types.Logger

// Metrics provides Prometheus-compatible metrics collection.
type Metrics = types.Metrics

// Fields represents a map of key-value pairs for contextual information.
type Fields = types.Fields

// Config contains settings for service name, environment, log level and
// outputs.
type Config = types.Config

// Provider manages the lifecycle of logging and metrics components.
type Provider = types.Provider

var (
	// WithInvocationID attaches an invocation identifier to a context.
	WithInvocationID = types.WithInvocationID
	// WithEntrypoint attaches the entrypoint name to a context.
	WithEntrypoint = types.WithEntrypoint
)

// DefaultProvider implements the Provider interface.
// Loggers and metrics are created lazily, once per component.
type DefaultProvider struct {
	// config holds the observability configuration
	config *Config
	// registry collects the metrics of every component
	registry *prometheus.Registry
	// loggers stores Logger instances indexed by component name
	loggers map[string]Logger
	// metrics stores Metrics instances indexed by component name
	metrics map[string]Metrics
	// mu provides thread-safe access to the maps
	mu sync.RWMutex
}

// NewProvider creates a new observability provider with the given
// configuration. If LogOutput is not specified it defaults to os.Stderr.
//
// Example:
//
//	provider := NewProvider(&Config{
//		ServiceName: "greeter",
//		Environment: "production",
//		LogLevel:    "info",
//	})
//	defer provider.Close()
//	log := provider.Logger("loop")
func NewProvider(config *Config) *DefaultProvider {
	if config.LogOutput == nil {
		config.LogOutput = os.Stderr
	}

	return &DefaultProvider{
		config:   config,
		registry: prometheus.NewRegistry(),
		loggers:  make(map[string]Logger),
		metrics:  make(map[string]Metrics),
	}
}

// Logger returns the Logger of a component, creating it on first access.
//
// The returned logger includes:
//   - All fields from the provider's config.AdditionalFields
//   - A "component" field set to the provided component name
//   - Service name formatted as "{config.ServiceName}.{component}"
func (p *DefaultProvider) Logger(component string) Logger {
	p.mu.RLock()
	if l, exists := p.loggers[component]; exists {
		p.mu.RUnlock()
		return l
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check
	if l, exists := p.loggers[component]; exists {
		return l
	}

	fields := make(Fields, len(p.config.AdditionalFields)+1)
	for k, v := range p.config.AdditionalFields {
		fields[k] = v
	}
	fields["component"] = component

	l := logger.New(
		fmt.Sprintf("%s.%s", p.config.ServiceName, component),
		p.config.Environment,
		p.config.LogLevel,
		p.config.LogOutput,
		fields,
	)
	p.loggers[component] = l

	return l
}

// Metrics returns the Metrics of a component, creating and registering them
// on first access. Metric names are prefixed with "{service}_{component}".
func (p *DefaultProvider) Metrics(component string) Metrics {
	p.mu.RLock()
	if m, exists := p.metrics[component]; exists {
		p.mu.RUnlock()
		return m
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check
	if m, exists := p.metrics[component]; exists {
		return m
	}

	m := metrics.New(fmt.Sprintf("%s_%s", p.config.ServiceName, component), p.registry)
	p.metrics[component] = m

	return m
}

// Gatherer exposes the registry holding every component's metrics.
func (p *DefaultProvider) Gatherer() prometheus.Gatherer {
	return p.registry
}

// Close writes the collected metrics to config.MetricsTextfile, when set,
// and closes LogOutput if it is a closer other than os.Stdout or os.Stderr.
func (p *DefaultProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.config.MetricsTextfile != "" {
		if err := prometheus.WriteToTextfile(p.config.MetricsTextfile, p.registry); err != nil {
			return fmt.Errorf("failed to write metrics textfile: %w", err)
		}
	}

	if closer, ok := p.config.LogOutput.(io.Closer); ok {
		if closer != os.Stdout && closer != os.Stderr {
			return closer.Close()
		}
	}

	return nil
}
