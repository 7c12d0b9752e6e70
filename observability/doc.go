/*
Package observability provides structured logging and metrics collection
for the e5e runtime.

	Provider (manages instances per component)
	    ├── Logger (JSON lines, written to stderr)
	    └── Metrics (Prometheus, private registry)

# Streams

Stdout carries the engine protocol: response frames and sentinels. Logs
therefore default to stderr, where the engine collects them as function
output. Never point LogOutput at os.Stdout while the communication loop is
running.

# Usage

	provider := observability.NewProvider(&observability.Config{
	    ServiceName:     "greeter",
	    Environment:     "production",
	    LogLevel:        "info",
	    MetricsTextfile: "/var/lib/node_exporter/greeter.prom",
	})
	defer provider.Close()

	log := provider.Logger("loop")
	m := provider.Metrics("loop")

	ctx = observability.WithInvocationID(ctx, id)
	log.Info(ctx, "invocation finished", observability.Fields{"response_type": "text"})
	m.RecordSuccess("text")

# Context Integration

The logger extracts these context values if present:
  - invocation_id: set by the communication loop for every request
  - entrypoint: the resolved function name

# Metrics

  - {service}_{component}_processed_total: Counter [status, type]
  - {service}_{component}_errors_total: Counter [error_type, operation]
  - {service}_{component}_duration_seconds: Histogram [operation]
  - {service}_{component}_payload_size_bytes: Histogram [direction]
  - {service}_{component}_in_progress: Gauge [operation]

The runtime serves no HTTP endpoint. When MetricsTextfile is set, Close
writes the registry in the text exposition format, ready for the node
exporter textfile collector. Gatherer exposes the registry for anything
else.

# Testing

Mocks live in the mocks sub-package:

	mockProvider := new(mocks.MockProvider)
	mockLogger := new(mocks.MockLogger)
	mockProvider.On("Logger", "loop").Return(mockLogger)
	mockLogger.On("Info", mock.Anything, "invocation finished", mock.Anything).Return()
*/
package observability
