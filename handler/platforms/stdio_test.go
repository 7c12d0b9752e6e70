package platforms

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"e5e/config"
	"e5e/console"
	"e5e/function"
	"e5e/handler"
	"e5e/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloRequest = `{"event":{"type":"text","data":"hello"},"context":{"type":"generic","date":"2024-01-01T00:00:00Z"}}`

func keepAliveOptions() config.RuntimeOptions {
	return config.RuntimeOptions{
		Entrypoint:           "Hello",
		StdoutSentinel:       "+++",
		ExecutionEndSentinel: "---",
		KeepAlive:            true,
	}
}

func singleShotOptions() config.RuntimeOptions {
	opts := keepAliveOptions()
	opts.KeepAlive = false
	return opts
}

func testProvider(logs *bytes.Buffer) *observability.DefaultProvider {
	return observability.NewProvider(&observability.Config{
		ServiceName: "test",
		Environment: "test",
		LogLevel:    "debug",
		LogOutput:   logs,
	})
}

func newAdapter(t *testing.T, fn handler.FunctionFunc, c console.Console, opts config.RuntimeOptions) (*StdioAdapter, *bytes.Buffer) {
	t.Helper()
	logs := &bytes.Buffer{}
	provider := testProvider(logs)
	h := handler.NewHandler(opts.Entrypoint, fn, nil)
	h.Use(handler.RecoveryMiddleware(provider))
	return NewStdioAdapter(h, c, opts, provider), logs
}

func hello(ctx context.Context, req function.Request) (*function.Response, error) {
	return function.Text("test"), nil
}

func TestStdioAdapter_KeepAliveFraming(t *testing.T) {
	mem := console.NewMemory()
	mem.WriteToStdin(helloRequest)
	mem.CloseStdin()

	adapter, _ := newAdapter(t, hello, mem, keepAliveOptions())

	require.NoError(t, adapter.Run(context.Background()))

	assert.Equal(t, `+++{"data":"test","type":"text"}---`, mem.Stdout())
	assert.Equal(t, "---", mem.Stderr())
	assert.Equal(t, StateStopped, adapter.State())
}

func TestStdioAdapter_Ping(t *testing.T) {
	mem := console.NewMemory()
	mem.WriteToStdin("ping")
	mem.CloseStdin()

	called := false
	adapter, _ := newAdapter(t, func(ctx context.Context, req function.Request) (*function.Response, error) {
		called = true
		return nil, nil
	}, mem, keepAliveOptions())

	require.NoError(t, adapter.Run(context.Background()))

	assert.Equal(t, "pong---", mem.Stdout())
	assert.Equal(t, "---", mem.Stderr())
	assert.False(t, called, "ping never reaches the function")
}

func TestStdioAdapter_SingleShot(t *testing.T) {
	mem := console.NewMemory()
	mem.WriteToStdin(helloRequest, helloRequest)

	adapter, _ := newAdapter(t, hello, mem, singleShotOptions())

	require.NoError(t, adapter.Run(context.Background()))

	assert.Equal(t, `+++{"result":{"data":"test","type":"text"}}`, mem.Stdout())
	assert.Empty(t, mem.Stderr())
	assert.True(t, mem.WaitClosed(time.Second), "console is closed on return")
}

func TestStdioAdapter_SingleShotPingIsNotSpecial(t *testing.T) {
	mem := console.NewMemory()
	mem.WriteToStdin("ping")

	adapter, logs := newAdapter(t, hello, mem, singleShotOptions())

	require.NoError(t, adapter.Run(context.Background()))

	assert.Empty(t, mem.Stdout())
	assert.Empty(t, mem.Stderr())
	assert.Contains(t, logs.String(), "Failed to decode request")
}

func TestStdioAdapter_SkipsBlankLinesAndTrims(t *testing.T) {
	mem := console.NewMemory()
	mem.WriteToStdin("", "   ", "ping \t", helloRequest+"\r")
	mem.CloseStdin()

	adapter, _ := newAdapter(t, hello, mem, keepAliveOptions())

	require.NoError(t, adapter.Run(context.Background()))

	assert.Equal(t, `pong---+++{"data":"test","type":"text"}---`, mem.Stdout())
	assert.Equal(t, "------", mem.Stderr())
}

func TestStdioAdapter_InvalidInputIsAbsorbed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"not json", "{not json"},
		{"missing event", `{"context":{"type":"generic"}}`},
		{"unknown data type", `{"event":{"type":"TEXT","data":"x"}}`},
		{"missing data type", `{"event":{"data":"x"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := console.NewMemory()
			mem.WriteToStdin(tt.line, helloRequest)
			mem.CloseStdin()

			adapter, logs := newAdapter(t, hello, mem, keepAliveOptions())

			require.NoError(t, adapter.Run(context.Background()))

			assert.Equal(t, `---+++{"data":"test","type":"text"}---`, mem.Stdout())
			assert.Equal(t, "------", mem.Stderr())
			assert.Contains(t, logs.String(), "Failed to decode request")
		})
	}
}

func TestStdioAdapter_RepeatedRequestsAreIndependent(t *testing.T) {
	mem := console.NewMemory()
	mem.WriteToStdin(helloRequest, helloRequest)
	mem.CloseStdin()

	var seen []string
	adapter, _ := newAdapter(t, func(ctx context.Context, req function.Request) (*function.Response, error) {
		text, err := req.Event.AsText()
		if err != nil {
			return nil, err
		}
		seen = append(seen, text)
		return function.Text("test"), nil
	}, mem, keepAliveOptions())

	require.NoError(t, adapter.Run(context.Background()))

	frame := `+++{"data":"test","type":"text"}---`
	assert.Equal(t, frame+frame, mem.Stdout())
	assert.Equal(t, "------", mem.Stderr())
	assert.Equal(t, []string{"hello", "hello"}, seen)
}

func TestStdioAdapter_FunctionFailuresStillEndTheCycle(t *testing.T) {
	tests := []struct {
		name string
		fn   handler.FunctionFunc
	}{
		{"error", func(ctx context.Context, req function.Request) (*function.Response, error) {
			return nil, errors.New("boom")
		}},
		{"panic", func(ctx context.Context, req function.Request) (*function.Response, error) {
			panic("boom")
		}},
		{"nil response", func(ctx context.Context, req function.Request) (*function.Response, error) {
			return nil, nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := console.NewMemory()
			mem.WriteToStdin(helloRequest, "ping")
			mem.CloseStdin()

			adapter, _ := newAdapter(t, tt.fn, mem, keepAliveOptions())

			require.NoError(t, adapter.Run(context.Background()))

			assert.Equal(t, "---pong---", mem.Stdout())
			assert.Equal(t, "------", mem.Stderr())
		})
	}
}

func TestStdioAdapter_PanicWithoutRecoveryMiddleware(t *testing.T) {
	mem := console.NewMemory()
	mem.WriteToStdin(helloRequest)
	mem.CloseStdin()

	provider := testProvider(&bytes.Buffer{})
	h := handler.NewHandler("Hello", handler.FunctionFunc(func(ctx context.Context, req function.Request) (*function.Response, error) {
		panic("unguarded")
	}), nil)
	adapter := NewStdioAdapter(h, mem, keepAliveOptions(), provider)

	require.NoError(t, adapter.Run(context.Background()))

	assert.Equal(t, "---", mem.Stdout())
}

func TestStdioAdapter_StopsWhenConsoleCloses(t *testing.T) {
	mem := console.NewMemory()
	adapter, _ := newAdapter(t, hello, mem, keepAliveOptions())

	done := adapter.Start(context.Background())

	require.Eventually(t, func() bool {
		return adapter.State() == StateListening
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, mem.Close())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after the console was closed")
	}
	assert.Equal(t, StateStopped, adapter.State())
}

func TestStdioAdapter_StopsOnCancel(t *testing.T) {
	mem := console.NewMemory()
	adapter, _ := newAdapter(t, hello, mem, keepAliveOptions())

	ctx, cancel := context.WithCancel(context.Background())
	done := adapter.Start(ctx)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop after cancellation")
	}
}

func TestStdioAdapter_RunTwice(t *testing.T) {
	mem := console.NewMemory()
	mem.CloseStdin()
	adapter, _ := newAdapter(t, hello, mem, keepAliveOptions())

	require.NoError(t, adapter.Run(context.Background()))

	err := adapter.Run(context.Background())
	require.Error(t, err)
	assert.True(t, IsRuntimeError(err))
}

type failingConsole struct {
	*console.Memory
	failOut bool
	failErr bool
}

func (c *failingConsole) WriteOut(s string) error {
	if c.failOut {
		return errors.New("broken pipe")
	}
	return c.Memory.WriteOut(s)
}

func (c *failingConsole) WriteErr(s string) error {
	if c.failErr {
		return errors.New("broken pipe")
	}
	return c.Memory.WriteErr(s)
}

func TestStdioAdapter_WriteFailureIsFatal(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		failOut bool
		failErr bool
	}{
		{"response", helloRequest, true, false},
		{"pong", "ping", true, false},
		{"end sentinel on stderr", helloRequest, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := console.NewMemory()
			mem.WriteToStdin(tt.line, helloRequest)
			mem.CloseStdin()
			c := &failingConsole{Memory: mem, failOut: tt.failOut, failErr: tt.failErr}

			adapter, _ := newAdapter(t, hello, c, keepAliveOptions())

			err := adapter.Run(context.Background())

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrRuntime))
			assert.True(t, strings.Contains(err.Error(), "broken pipe"))
			assert.Equal(t, StateStopped, adapter.State())
		})
	}
}

func TestFunctionExecutionError(t *testing.T) {
	cause := errors.New("boom")
	err := error(&FunctionExecutionError{Err: cause})

	assert.True(t, errors.Is(err, ErrFunctionExecution))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "function execution failed: boom", err.Error())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "processing", StateProcessing.String())
	assert.Equal(t, "State(42)", State(42).String())
}

func TestStdioAdapter_ConsoleClosedDuringCycle(t *testing.T) {
	mem := console.NewMemory()
	mem.WriteToStdin(helloRequest, helloRequest)

	calls := 0
	adapter, logs := newAdapter(t, func(ctx context.Context, req function.Request) (*function.Response, error) {
		calls++
		require.NoError(t, mem.Close())
		return function.Text("late"), nil
	}, mem, keepAliveOptions())

	require.NoError(t, adapter.Run(context.Background()))

	assert.Equal(t, 1, calls)
	assert.Empty(t, mem.Stdout())
	assert.Contains(t, logs.String(), "Shutdown during cycle")
	assert.Equal(t, StateStopped, adapter.State())
}

func TestStdioAdapter_CancelledDuringCycle(t *testing.T) {
	mem := console.NewMemory()
	mem.WriteToStdin(helloRequest)
	c := &failingConsole{Memory: mem, failOut: true}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	adapter, _ := newAdapter(t, func(ctx context.Context, req function.Request) (*function.Response, error) {
		cancel()
		return nil, ctx.Err()
	}, c, keepAliveOptions())

	assert.NoError(t, adapter.Run(ctx))
}
