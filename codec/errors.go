package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrDecodeFailure is matched by every *DecodeError.
	ErrDecodeFailure = errors.New("failed to decode request")

	// ErrEncodeFailure is matched by every *EncodeError.
	ErrEncodeFailure = errors.New("failed to encode response")
)

// DecodeError carries the raw line that could not be turned into a request.
type DecodeError struct {
	Line string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %v (line: %q)", ErrDecodeFailure, e.Err, e.Line)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecodeFailure
}

// EncodeError is returned when a response cannot be serialized.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("%s: %v", ErrEncodeFailure, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

func (e *EncodeError) Is(target error) bool {
	return target == ErrEncodeFailure
}
