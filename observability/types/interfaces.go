// Package types holds the observability contracts shared by the logger,
// metrics and provider packages.
package types

import (
	"context"
	"io"
)

// Logger defines the contract for structured logging.
// Implementations write one JSON object per entry. All methods take a
// context so invocation identifiers can be attached automatically.
type Logger interface {
	// Info logs an informational message.
	Info(ctx context.Context, msg string, fields Fields)

	// Error logs an error message with the associated error.
	//
	// Parameters:
	//   - ctx: Context carrying invocation identifiers
	//   - msg: The log message describing the error context
	//   - err: The error object to be logged
	//   - fields: Additional structured fields for context
	Error(ctx context.Context, msg string, err error, fields Fields)

	// Warn logs a warning message.
	Warn(ctx context.Context, msg string, fields Fields)

	// Debug logs a debug message. Filtered out unless the level is debug.
	Debug(ctx context.Context, msg string, fields Fields)

	// WithFields returns a new Logger that adds fields to every entry.
	WithFields(fields Fields) Logger
}

// Metrics defines the contract for metrics collection.
// Implementations follow the Prometheus naming conventions.
type Metrics interface {
	// RecordSuccess increments the success counter for an invocation whose
	// response had the given type (text, binary, object).
	RecordSuccess(responseType string)

	// RecordError increments the error counter for an operation and error
	// category.
	//
	// Parameters:
	//   - operation: What failed (e.g., "decode", "invoke", "encode")
	//   - errorType: The category of error (e.g., "panic", "timeout")
	RecordError(operation string, errorType string)

	// RecordDuration records the duration of an operation in seconds.
	RecordDuration(operation string, duration float64)

	// RecordPayloadSize records the size of a request line or response
	// frame in bytes. direction is "in" or "out".
	RecordPayloadSize(direction string, bytes int64)

	// StartOperation increments the in-progress gauge for an operation.
	// Must be paired with EndOperation.
	StartOperation(operation string)

	// EndOperation decrements the in-progress gauge for an operation.
	EndOperation(operation string)
}

// Fields represents structured logging fields as key-value pairs.
// Values can be any type that is JSON-serializable.
type Fields map[string]interface{}

// Config holds observability configuration for the provider.
type Config struct {
	// ServiceName identifies the function in logs and prefixes metric names.
	ServiceName string

	// Environment specifies the deployment environment.
	Environment string

	// LogLevel sets the minimum log level to output.
	// Valid values: "debug", "info", "warn", "error".
	LogLevel string

	// LogOutput specifies where logs should be written.
	// If nil, defaults to os.Stderr: stdout belongs to the engine protocol.
	LogOutput io.Writer

	// AdditionalFields are fields included in every log entry.
	AdditionalFields Fields

	// MetricsTextfile, when set, is where Close writes every collected
	// metric in the Prometheus text format.
	MetricsTextfile string
}

// Provider manages the lifecycle of observability components.
// Multiple calls with the same component name return the same instance.
type Provider interface {
	// Logger returns a Logger instance for the specified component.
	Logger(component string) Logger

	// Metrics returns a Metrics instance for the specified component.
	Metrics(component string) Metrics

	// Close flushes collected metrics and releases resources.
	Close() error
}
