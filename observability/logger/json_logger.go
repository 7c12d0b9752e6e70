// Package logger provides a structured JSON-lines logger. Every entry is a
// single line so log shippers (Loki, Fluent Bit, the e5e engine itself) can
// index it without further parsing.
package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"e5e/observability/types"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel converts a string representation to a LogLevel.
// Unrecognized levels default to InfoLevel.
func ParseLevel(level string) LogLevel {
	switch level {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return "unknown"
	}
}

// JSONLogger implements types.Logger. Loggers derived through WithFields
// share the output and its lock, so entries never interleave.
type JSONLogger struct {
	// writeMu serializes writes to output
	writeMu *sync.Mutex
	// output is where log entries are written (os.Stderr by default)
	output io.Writer

	serviceName string
	environment string
	hostname    string
	minLevel    LogLevel

	// persistentFields are included in every log entry from this logger
	persistentFields types.Fields
}

var _ types.Logger = (*JSONLogger)(nil)

// New creates a JSONLogger. The system hostname is detected once and added
// to every entry. A nil output falls back to os.Stderr, leaving stdout to
// the engine protocol.
//
// Example:
//
//	log := New("greeter", "production", "info", os.Stderr, types.Fields{"version": "1.0.0"})
//	log.Info(ctx, "invocation finished", types.Fields{"duration_ms": 12})
func New(serviceName, environment, logLevel string, output io.Writer, additionalFields types.Fields) *JSONLogger {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}

	if output == nil {
		output = os.Stderr
	}

	return &JSONLogger{
		writeMu:          &sync.Mutex{},
		output:           output,
		serviceName:      serviceName,
		environment:      environment,
		hostname:         hostname,
		minLevel:         ParseLevel(logLevel),
		persistentFields: additionalFields,
	}
}

func (l *JSONLogger) Info(ctx context.Context, msg string, fields types.Fields) {
	if l.minLevel > InfoLevel {
		return
	}
	l.log(ctx, InfoLevel, msg, nil, fields)
}

func (l *JSONLogger) Error(ctx context.Context, msg string, err error, fields types.Fields) {
	if l.minLevel > ErrorLevel {
		return
	}
	l.log(ctx, ErrorLevel, msg, err, fields)
}

func (l *JSONLogger) Warn(ctx context.Context, msg string, fields types.Fields) {
	if l.minLevel > WarnLevel {
		return
	}
	l.log(ctx, WarnLevel, msg, nil, fields)
}

func (l *JSONLogger) Debug(ctx context.Context, msg string, fields types.Fields) {
	if l.minLevel > DebugLevel {
		return
	}
	l.log(ctx, DebugLevel, msg, nil, fields)
}

// WithFields returns a new logger with additional persistent fields. The
// parent logger is left untouched.
func (l *JSONLogger) WithFields(fields types.Fields) types.Logger {
	newFields := make(types.Fields, len(l.persistentFields)+len(fields))
	for k, v := range l.persistentFields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &JSONLogger{
		writeMu:          l.writeMu,
		output:           l.output,
		serviceName:      l.serviceName,
		environment:      l.environment,
		hostname:         l.hostname,
		minLevel:         l.minLevel,
		persistentFields: newFields,
	}
}

// log builds the entry and writes it as a single line.
//
// Standard fields: timestamp, level, service, env, hostname, message.
// Context fields (if present): invocation_id, entrypoint.
// Persistent fields and call-specific fields are merged last, in that order.
func (l *JSONLogger) log(ctx context.Context, level LogLevel, msg string, err error, fields types.Fields) {
	entry := make(types.Fields, 8+len(l.persistentFields)+len(fields))

	entry["timestamp"] = time.Now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level.String()
	entry["service"] = l.serviceName
	entry["env"] = l.environment
	entry["hostname"] = l.hostname
	entry["message"] = msg

	if ctx != nil {
		if id, ok := types.InvocationID(ctx); ok {
			entry["invocation_id"] = id
		}
		if entrypoint, ok := types.Entrypoint(ctx); ok {
			entry["entrypoint"] = entrypoint
		}
	}

	if err != nil {
		entry["error"] = err.Error()
		entry["error_type"] = fmt.Sprintf("%T", err)
	}

	for k, v := range l.persistentFields {
		entry[k] = v
	}
	for k, v := range fields {
		entry[k] = v
	}

	line, mErr := json.Marshal(entry)
	if mErr != nil {
		// a field that cannot be marshalled must not swallow the message
		line, _ = json.Marshal(types.Fields{
			"timestamp":   entry["timestamp"],
			"level":       entry["level"],
			"service":     l.serviceName,
			"message":     msg,
			"field_error": mErr.Error(),
		})
	}
	line = append(line, '\n')

	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	_, _ = l.output.Write(line)
}
