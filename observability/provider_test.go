package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	config := &Config{
		ServiceName: "test-service",
		Environment: "test",
		LogLevel:    "info",
	}

	provider := NewProvider(config)

	assert.NotNil(t, provider)
	assert.Implements(t, (*Provider)(nil), provider)
	assert.Equal(t, os.Stderr, config.LogOutput, "logs default to stderr")
}

func TestDefaultProvider_Logger(t *testing.T) {
	var buf bytes.Buffer
	provider := NewProvider(&Config{
		ServiceName:      "test",
		Environment:      "test",
		LogLevel:         "info",
		LogOutput:        &buf,
		AdditionalFields: Fields{"version": "1.0.0"},
	})
	defer provider.Close()

	logger1 := provider.Logger("loop")
	logger2 := provider.Logger("loop")
	assert.Same(t, logger1, logger2)

	logger3 := provider.Logger("host")
	assert.NotSame(t, logger1, logger3)

	logger1.Info(WithInvocationID(context.Background(), "abc"), "hello", nil)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "test.loop", entry["service"])
	assert.Equal(t, "loop", entry["component"])
	assert.Equal(t, "1.0.0", entry["version"])
	assert.Equal(t, "abc", entry["invocation_id"])
}

func TestDefaultProvider_Metrics(t *testing.T) {
	provider := NewProvider(&Config{ServiceName: "test"})
	defer provider.Close()

	metrics1 := provider.Metrics("loop")
	metrics2 := provider.Metrics("loop")
	assert.Same(t, metrics1, metrics2, "second call must not register again")

	metrics3 := provider.Metrics("handler")
	assert.NotSame(t, metrics1, metrics3)

	metrics1.RecordSuccess("text")
	families, err := provider.Gatherer().Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "test_loop_processed_total", families[0].GetName())
}

func TestDefaultProvider_Close(t *testing.T) {
	t.Run("close with stderr", func(t *testing.T) {
		provider := NewProvider(&Config{ServiceName: "test"})
		assert.NoError(t, provider.Close())
	})

	t.Run("writes metrics textfile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "e5e.prom")
		provider := NewProvider(&Config{
			ServiceName:     "test",
			LogOutput:       &bytes.Buffer{},
			MetricsTextfile: path,
		})
		provider.Metrics("loop").RecordSuccess("object")

		require.NoError(t, provider.Close())

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), `test_loop_processed_total{status="success",type="object"} 1`)
	})

	t.Run("textfile in missing directory fails", func(t *testing.T) {
		provider := NewProvider(&Config{
			ServiceName:     "test",
			MetricsTextfile: filepath.Join(t.TempDir(), "missing", "e5e.prom"),
		})
		assert.Error(t, provider.Close())
	})
}
