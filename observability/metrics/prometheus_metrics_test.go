package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	reg := prometheus.NewRegistry()

	metrics := New("e5e-function.loop", reg)

	assert.NotNil(t, metrics)
	assert.Equal(t, "e5e_function_loop", metrics.Namespace())

	metrics.RecordSuccess("text")
	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
	assert.Equal(t, "e5e_function_loop_processed_total", families[0].GetName())
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New("test", reg)

	assert.Panics(t, func() { New("test", reg) })
}

func TestPrometheusMetrics_RecordSuccess(t *testing.T) {
	metrics := New("test", prometheus.NewRegistry())

	metrics.RecordSuccess("text")
	metrics.RecordSuccess("text")
	metrics.RecordSuccess("binary")

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.processedTotal.WithLabelValues("success", "text")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.processedTotal.WithLabelValues("success", "binary")))
}

func TestPrometheusMetrics_RecordError(t *testing.T) {
	metrics := New("test", prometheus.NewRegistry())

	metrics.RecordError("decode", "invalid_json")
	metrics.RecordError("decode", "invalid_json")
	metrics.RecordError("invoke", "panic")

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.processedTotal.WithLabelValues("error", "decode")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.processedTotal.WithLabelValues("error", "invoke")))

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.errorsTotal.WithLabelValues("invalid_json", "decode")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.errorsTotal.WithLabelValues("panic", "invoke")))
}

func TestPrometheusMetrics_Operations(t *testing.T) {
	metrics := New("test", prometheus.NewRegistry())

	metrics.StartOperation("invoke")
	metrics.StartOperation("invoke")
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.inProgress.WithLabelValues("invoke")))

	metrics.EndOperation("invoke")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.inProgress.WithLabelValues("invoke")))
}

func TestPrometheusMetrics_Histograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := New("test", reg)

	metrics.RecordDuration("invoke", 0.2)
	metrics.RecordPayloadSize("in", 120)
	metrics.RecordPayloadSize("out", 4096)

	assert.Equal(t, 1, testutil.CollectAndCount(metrics.durationSeconds))
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.payloadSizeBytes))
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "my_service_loop", SanitizeName("my-service.loop"))
	assert.Equal(t, "_9lives", SanitizeName("9lives"))
	assert.Equal(t, "ok_name", SanitizeName("ok_name"))
}
