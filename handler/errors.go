package handler

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingEntrypoint is matched by every *MissingEntrypointError.
	ErrMissingEntrypoint = errors.New("missing entrypoint")

	// ErrTimeout is returned when a function exceeds the handler timeout.
	ErrTimeout = errors.New("function timed out")
)

// MissingEntrypointError is returned when no function is registered under
// the requested entrypoint.
type MissingEntrypointError struct {
	Entrypoint string
	Available  []string
}

func (e *MissingEntrypointError) Error() string {
	return fmt.Sprintf("no function registered for entrypoint %q (available: %v)", e.Entrypoint, e.Available)
}

func (e *MissingEntrypointError) Is(target error) bool {
	return target == ErrMissingEntrypoint
}

// EntrypointAlreadyRegisteredError is returned when an entrypoint is
// registered twice.
type EntrypointAlreadyRegisteredError struct {
	Entrypoint string
}

func (e *EntrypointAlreadyRegisteredError) Error() string {
	return fmt.Sprintf("entrypoint %q is already registered", e.Entrypoint)
}

// PanicError is returned in place of a panic raised by a function.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic recovered: %v", e.Value)
}

// Unwrap exposes the panic value when it was an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}
