package config

import "strings"

// MetadataArgument is the single startup argument that asks the runtime to
// print its metadata document and exit.
const MetadataArgument = "metadata"

// runtimeArgumentCount is the number of positional arguments the engine
// passes in regular (non-metadata) mode.
const runtimeArgumentCount = 4

// nulEscape is how the engine spells a NUL byte inside a sentinel argument.
const nulEscape = `\0`

// RuntimeOptions holds the startup parameters passed by the e5e engine.
// It is created once from the process arguments and never mutated.
type RuntimeOptions struct {
	// Entrypoint is the name the handler registry is searched for.
	Entrypoint string

	// StdoutSentinel is written right before every response payload so the
	// engine can tell it apart from log output on the same stream.
	StdoutSentinel string

	// ExecutionEndSentinel is written to stdout and stderr after every
	// keep-alive cycle.
	ExecutionEndSentinel string

	// KeepAlive keeps the process resident for many invocations.
	KeepAlive bool

	// WriteMetadataOnStartup short-circuits startup: the runtime metadata is
	// written to stdout and the process exits.
	WriteMetadataOnStartup bool
}

// ParseArgs converts the process arguments (without the program name) into
// RuntimeOptions.
//
// Accepted forms:
//
//	metadata
//	<entrypoint> <stdout-sentinel> <keepalive:0|1> <end-sentinel>
//
// Any other shape fails with a *MissingArgumentsError.
func ParseArgs(args []string) (RuntimeOptions, error) {
	if len(args) == 0 {
		return RuntimeOptions{}, &MissingArgumentsError{Count: 0}
	}

	if args[0] == MetadataArgument {
		return RuntimeOptions{WriteMetadataOnStartup: true}, nil
	}

	if len(args) != runtimeArgumentCount {
		return RuntimeOptions{}, &MissingArgumentsError{Count: len(args)}
	}

	return RuntimeOptions{
		Entrypoint:           args[0],
		StdoutSentinel:       UnescapeSentinel(args[1]),
		KeepAlive:            args[2] == "1",
		ExecutionEndSentinel: UnescapeSentinel(args[3]),
	}, nil
}

// UnescapeSentinel replaces every `\0` sequence with a NUL byte.
func UnescapeSentinel(s string) string {
	return strings.ReplaceAll(s, nulEscape, "\x00")
}

// EscapeSentinel is the inverse of UnescapeSentinel.
func EscapeSentinel(s string) string {
	return strings.ReplaceAll(s, "\x00", nulEscape)
}

// Args renders the options back into the argument vector the engine would
// have passed. Useful for spawning a runtime from tests.
func (o RuntimeOptions) Args() []string {
	if o.WriteMetadataOnStartup {
		return []string{MetadataArgument}
	}

	keepAlive := "0"
	if o.KeepAlive {
		keepAlive = "1"
	}

	return []string{
		o.Entrypoint,
		EscapeSentinel(o.StdoutSentinel),
		keepAlive,
		EscapeSentinel(o.ExecutionEndSentinel),
	}
}
