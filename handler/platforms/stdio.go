package platforms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	"e5e/codec"
	"e5e/config"
	"e5e/console"
	"e5e/function"
	"e5e/handler"
	"e5e/observability"

	"github.com/google/uuid"
)

// errInterrupted stops the loop without reporting a failure.
var errInterrupted = errors.New("loop interrupted by shutdown")

const (
	pingMessage = "ping"
	pongMessage = "pong"

	loopComponent = "loop"
)

// State is the position of the communication loop in its lifecycle.
type State int32

const (
	StateIdle State = iota
	StateListening
	StateProcessing
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// StdioAdapter serves a handler to the e5e engine over the console. It
// reads one request per line and answers with framed JSON, either for a
// single invocation or, in keep-alive mode, until the input ends or the
// context is cancelled.
//
// Per-invocation failures (undecodable lines, function errors, responses
// that cannot be encoded) are logged and the loop goes on. Console I/O
// failures end the loop with an error matching ErrRuntime.
type StdioAdapter struct {
	handler *handler.Handler
	console console.Console
	options config.RuntimeOptions
	logger  observability.Logger
	metrics observability.Metrics
	started atomic.Bool
	state   atomic.Int32
}

// NewStdioAdapter creates an adapter. The console must not be opened yet;
// Run opens it and closes it on return.
func NewStdioAdapter(h *handler.Handler, c console.Console, opts config.RuntimeOptions, provider observability.Provider) *StdioAdapter {
	return &StdioAdapter{
		handler: h,
		console: c,
		options: opts,
		logger: provider.Logger(loopComponent).WithFields(observability.Fields{
			"keep_alive": opts.KeepAlive,
		}),
		metrics: provider.Metrics(loopComponent),
	}
}

// State returns the current state of the loop.
func (a *StdioAdapter) State() State {
	return State(a.state.Load())
}

func (a *StdioAdapter) setState(s State) {
	a.state.Store(int32(s))
}

// Start runs the loop on its own goroutine. The channel receives the result
// of Run and is closed afterwards.
func (a *StdioAdapter) Start(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- a.Run(ctx)
	}()
	return done
}

// Run serves requests until the input is exhausted, the console is closed,
// ctx is cancelled, or (outside keep-alive mode) one line was processed. A
// nil error means a regular shutdown.
func (a *StdioAdapter) Run(ctx context.Context) (err error) {
	if !a.started.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: loop already started", ErrRuntime)
	}
	defer a.setState(StateStopped)

	if err := a.console.Open(); err != nil {
		return fmt.Errorf("%w: failed to open console: %w", ErrRuntime, err)
	}
	a.setState(StateListening)
	defer func() {
		a.setState(StateDraining)
		if cerr := a.console.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: failed to close console: %w", ErrRuntime, cerr)
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: communication loop panicked: %v", ErrRuntime, r)
		}
	}()

	a.logger.Debug(ctx, "Listening for requests", observability.Fields{
		"entrypoint": a.handler.Entrypoint(),
	})

	for {
		a.setState(StateListening)

		line, ok, err := a.console.ReadLine(ctx)
		if err != nil {
			return fmt.Errorf("%w: failed to read input: %w", ErrRuntime, err)
		}
		if !ok {
			a.logger.Debug(ctx, "Input closed, stopping", nil)
			return nil
		}

		line = strings.TrimRightFunc(line, unicode.IsSpace)
		if line == "" {
			continue
		}

		a.setState(StateProcessing)
		if err := a.cycle(ctx, line); err != nil {
			if errors.Is(err, errInterrupted) {
				return nil
			}
			return err
		}

		if !a.options.KeepAlive {
			return nil
		}
	}
}

// cycle handles one non-empty line. Only loop failures are returned.
func (a *StdioAdapter) cycle(ctx context.Context, line string) error {
	ctx = observability.WithInvocationID(ctx, uuid.NewString())
	start := time.Now()
	defer func() {
		a.metrics.RecordDuration("cycle", time.Since(start).Seconds())
	}()

	if a.options.KeepAlive && line == pingMessage {
		if err := a.console.WriteOut(pongMessage); err != nil {
			return a.writeFailed(ctx, "pong", err)
		}
		a.metrics.RecordSuccess(pongMessage)
		return a.endCycle(ctx)
	}

	if err := a.process(ctx, line); err != nil {
		return err
	}

	if a.options.KeepAlive {
		return a.endCycle(ctx)
	}
	return nil
}

// process decodes, invokes and writes the response of one request.
func (a *StdioAdapter) process(ctx context.Context, line string) error {
	a.metrics.RecordPayloadSize("in", int64(len(line)))

	req, err := codec.DecodeRequest(line)
	if err != nil {
		a.logger.Error(ctx, "Failed to decode request", err, observability.Fields{
			"line": line,
		})
		a.metrics.RecordError("decode", "decode_failure")
		return nil
	}
	if req.Event == nil {
		return fmt.Errorf("%w: decoded request has no event", ErrRuntime)
	}

	resp, err := a.invoke(ctx, req)
	if err != nil {
		execErr := &FunctionExecutionError{Request: req, Err: err}
		a.logger.Error(ctx, "Function execution failed", execErr, observability.Fields{
			"event_type": string(req.Event.Type),
		})
		a.metrics.RecordError("invoke", "function_execution")
		return nil
	}

	var payload string
	if a.options.KeepAlive {
		payload, err = codec.EncodeResponse(resp)
	} else {
		payload, err = codec.EncodeResult(resp)
	}
	if err != nil {
		a.logger.Error(ctx, "Failed to encode response", err, nil)
		a.metrics.RecordError("encode", "encode_failure")
		return nil
	}

	if err := a.console.WriteOut(a.options.StdoutSentinel); err != nil {
		return a.writeFailed(ctx, "stdout sentinel", err)
	}
	if err := a.console.WriteOut(payload); err != nil {
		return a.writeFailed(ctx, "response", err)
	}
	a.metrics.RecordPayloadSize("out", int64(len(payload)))

	return nil
}

// invoke calls the handler, converting a panic that escaped the middleware
// into an error.
func (a *StdioAdapter) invoke(ctx context.Context, req function.Request) (resp *function.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, &handler.PanicError{Value: r}
		}
	}()
	return a.handler.Handle(ctx, req)
}

// endCycle tells the engine the invocation is over: the end sentinel goes
// to stdout first, then to stderr.
func (a *StdioAdapter) endCycle(ctx context.Context) error {
	end := a.options.ExecutionEndSentinel
	if err := a.console.WriteOut(end); err != nil {
		return a.writeFailed(ctx, "execution end sentinel", err)
	}
	if err := a.console.WriteErr(end); err != nil {
		return a.writeFailed(ctx, "execution end sentinel", err)
	}
	return nil
}

// writeFailed classifies a failed write. A write that lost the race against
// a shutdown (console closed or ctx cancelled) ends the loop quietly; any
// other failure is fatal.
func (a *StdioAdapter) writeFailed(ctx context.Context, what string, err error) error {
	if ctx.Err() != nil || errors.Is(err, console.ErrClosed) {
		a.logger.Info(ctx, "Shutdown during cycle, output dropped", observability.Fields{
			"output": what,
		})
		return errInterrupted
	}
	return fmt.Errorf("%w: failed to write %s: %w", ErrRuntime, what, err)
}

// IsRuntimeError reports whether err ended the loop abnormally.
func IsRuntimeError(err error) bool {
	return errors.Is(err, ErrRuntime)
}
