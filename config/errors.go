package config

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingArguments is matched by every *MissingArgumentsError.
	ErrMissingArguments = errors.New("missing arguments")

	// ErrInvalidConfig is returned when the environment configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// MissingArgumentsError reports a startup argument vector of the wrong shape.
type MissingArgumentsError struct {
	Count int
}

func (e *MissingArgumentsError) Error() string {
	return fmt.Sprintf(
		"missing arguments: expected %q or 4 arguments (entrypoint, stdout sentinel, keep-alive flag, execution end sentinel), got %d",
		MetadataArgument, e.Count,
	)
}

func (e *MissingArgumentsError) Is(target error) bool {
	return target == ErrMissingArguments
}
