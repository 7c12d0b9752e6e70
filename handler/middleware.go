package handler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"e5e/function"
	"e5e/observability"
)

const component = "handler"

// RecoveryMiddleware turns a panic raised by the function into a
// *PanicError. It should be the outermost layer.
func RecoveryMiddleware(provider observability.Provider) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req function.Request) (resp *function.Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					perr := &PanicError{Value: r, Stack: debug.Stack()}

					provider.Logger(component).Error(ctx, "Panic recovered", perr, observability.Fields{
						"stack": string(perr.Stack),
					})
					provider.Metrics(component).RecordError("invoke", "panic")

					resp, err = nil, perr
				}
			}()

			return next(ctx, req)
		}
	}
}

// LoggingMiddleware logs the start and outcome of every invocation.
func LoggingMiddleware(provider observability.Provider) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req function.Request) (*function.Response, error) {
			requestLogger := provider.Logger(component).WithFields(requestFields(req))

			requestLogger.Debug(ctx, "Invoking function", observability.Fields{
				"payload_size": payloadSize(req),
			})

			start := time.Now()
			resp, err := next(ctx, req)
			duration := time.Since(start)

			switch {
			case err != nil:
				requestLogger.Error(ctx, "Function failed", err, observability.Fields{
					"duration_ms": duration.Milliseconds(),
				})
			case resp == nil:
				requestLogger.Warn(ctx, "Function returned no response", observability.Fields{
					"duration_ms": duration.Milliseconds(),
				})
			default:
				requestLogger.Info(ctx, "Function completed", observability.Fields{
					"duration_ms":   duration.Milliseconds(),
					"response_type": string(resp.Type),
				})
			}

			return resp, err
		}
	}
}

// MetricsMiddleware records duration, concurrency and outcome of every
// invocation.
func MetricsMiddleware(provider observability.Provider) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req function.Request) (*function.Response, error) {
			metrics := provider.Metrics(component)

			metrics.StartOperation("invoke")
			defer metrics.EndOperation("invoke")

			start := time.Now()
			resp, err := next(ctx, req)
			metrics.RecordDuration("invoke", time.Since(start).Seconds())

			switch {
			case err != nil:
				metrics.RecordError("invoke", errorType(err))
			case resp == nil:
				metrics.RecordError("invoke", "nil_response")
			default:
				metrics.RecordSuccess(string(resp.Type))
			}

			return resp, err
		}
	}
}

// TimeoutMiddleware bounds an invocation. The function keeps its own
// goroutine and is expected to observe ctx; its late result is discarded.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req function.Request) (*function.Response, error) {
			timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			type result struct {
				resp *function.Response
				err  error
			}
			resultChan := make(chan result, 1)

			go func() {
				// the outer recovery cannot see panics raised on this goroutine
				defer func() {
					if r := recover(); r != nil {
						resultChan <- result{err: &PanicError{Value: r, Stack: debug.Stack()}}
					}
				}()
				resp, err := next(timeoutCtx, req)
				resultChan <- result{resp, err}
			}()

			select {
			case res := <-resultChan:
				if res.err != nil && errors.Is(res.err, context.DeadlineExceeded) &&
					timeoutCtx.Err() != nil && ctx.Err() == nil {
					return nil, fmt.Errorf("%w: exceeded %v", ErrTimeout, timeout)
				}
				return res.resp, res.err

			case <-timeoutCtx.Done():
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				return nil, fmt.Errorf("%w: exceeded %v", ErrTimeout, timeout)
			}
		}
	}
}

// errorType classifies err for the errors_total metric.
func errorType(err error) string {
	var perr *PanicError
	switch {
	case errors.As(err, &perr):
		return "panic"
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "function_error"
	}
}

func requestFields(req function.Request) observability.Fields {
	fields := observability.Fields{
		"context_type": req.Context.Type,
		"async":        req.Context.Async,
	}
	if req.Event != nil {
		fields["event_type"] = string(req.Event.Type)
	}
	return fields
}

func payloadSize(req function.Request) int {
	if req.Event == nil {
		return 0
	}
	return len(req.Event.Data)
}
