package platforms

import (
	"errors"
	"fmt"

	"e5e/function"
)

var (
	// ErrRuntime marks a failure of the communication loop itself, as opposed
	// to a failure of a single invocation. It terminates the loop.
	ErrRuntime = errors.New("runtime error")

	// ErrFunctionExecution is matched by every *FunctionExecutionError.
	ErrFunctionExecution = errors.New("function execution failed")
)

// FunctionExecutionError wraps an error returned (or a panic raised) by the
// user function, together with the request that caused it.
type FunctionExecutionError struct {
	Request function.Request
	Err     error
}

func (e *FunctionExecutionError) Error() string {
	return fmt.Sprintf("%s: %v", ErrFunctionExecution, e.Err)
}

func (e *FunctionExecutionError) Unwrap() error { return e.Err }

func (e *FunctionExecutionError) Is(target error) bool {
	return target == ErrFunctionExecution
}
