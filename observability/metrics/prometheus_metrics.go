// Package metrics provides Prometheus-compatible metrics collection for the
// runtime. Metrics are registered on a caller-supplied registry rather than
// the global one, so several components (and tests) never collide.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"e5e/observability/types"
)

// PrometheusMetrics implements types.Metrics using the Prometheus client
// library. All metric names share the namespace given to New.
type PrometheusMetrics struct {
	namespace string

	// processedTotal counts invocations by status (success/error) and type
	processedTotal *prometheus.CounterVec
	// errorsTotal counts failures by error type and operation
	errorsTotal *prometheus.CounterVec
	// durationSeconds tracks operation latency
	durationSeconds *prometheus.HistogramVec
	// payloadSizeBytes tracks request and response sizes
	payloadSizeBytes *prometheus.HistogramVec
	// inProgress tracks operations currently running
	inProgress *prometheus.GaugeVec
}

var _ types.Metrics = (*PrometheusMetrics)(nil)

// New creates the metrics and registers them on reg.
//
// Pre-configured metrics:
//   - {namespace}_processed_total: Counter with labels [status, type]
//   - {namespace}_errors_total: Counter with labels [error_type, operation]
//   - {namespace}_duration_seconds: Histogram with label [operation]
//   - {namespace}_payload_size_bytes: Histogram with label [direction]
//   - {namespace}_in_progress: Gauge with label [operation]
//
// The namespace is sanitized into a valid metric name prefix. New panics if
// the metrics are already registered on reg.
func New(namespace string, reg prometheus.Registerer) *PrometheusMetrics {
	namespace = SanitizeName(namespace)
	m := &PrometheusMetrics{namespace: namespace}

	m.processedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "processed_total",
			Help:      "Total invocations by status and response type",
		},
		[]string{"status", "type"},
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total errors by type and operation",
		},
		[]string{"error_type", "operation"},
	)

	// Default buckets: 0.005 .. 10 seconds
	m.durationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "duration_seconds",
			Help:      "Operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// 64B .. 16MB
	m.payloadSizeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payload_size_bytes",
			Help:      "Size of request lines and response frames in bytes",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
		},
		[]string{"direction"},
	)

	m.inProgress = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "in_progress",
			Help:      "Operations in progress",
		},
		[]string{"operation"},
	)

	reg.MustRegister(
		m.processedTotal,
		m.errorsTotal,
		m.durationSeconds,
		m.payloadSizeBytes,
		m.inProgress,
	)

	return m
}

// Namespace returns the sanitized metric name prefix.
func (m *PrometheusMetrics) Namespace() string {
	return m.namespace
}

func (m *PrometheusMetrics) RecordSuccess(responseType string) {
	m.processedTotal.WithLabelValues("success", responseType).Inc()
}

// RecordError increments both the processed counter (status="error") and
// the detailed error counter.
func (m *PrometheusMetrics) RecordError(operation string, errorType string) {
	m.processedTotal.WithLabelValues("error", operation).Inc()
	m.errorsTotal.WithLabelValues(errorType, operation).Inc()
}

func (m *PrometheusMetrics) RecordDuration(operation string, duration float64) {
	m.durationSeconds.WithLabelValues(operation).Observe(duration)
}

func (m *PrometheusMetrics) RecordPayloadSize(direction string, bytes int64) {
	m.payloadSizeBytes.WithLabelValues(direction).Observe(float64(bytes))
}

func (m *PrometheusMetrics) StartOperation(operation string) {
	m.inProgress.WithLabelValues(operation).Inc()
}

func (m *PrometheusMetrics) EndOperation(operation string) {
	m.inProgress.WithLabelValues(operation).Dec()
}

// SanitizeName turns s into a valid Prometheus name: every character other
// than [a-zA-Z0-9_] becomes an underscore, and a leading digit is prefixed.
func SanitizeName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
	if s != "" && s[0] >= '0' && s[0] <= '9' {
		s = "_" + s
	}
	return s
}
