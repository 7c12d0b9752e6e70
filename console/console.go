// Package console provides the three text channels the e5e engine talks to
// the runtime through: line-based input, and unframed output and error.
package console

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrAlreadyOpen is returned by a second call to Open.
	ErrAlreadyOpen = errors.New("console: already open")

	// ErrNotOpen is returned by any operation issued before Open.
	ErrNotOpen = errors.New("console: not open")

	// ErrClosed is returned by any operation issued after Close.
	ErrClosed = errors.New("console: closed")
)

// Console abstracts the process streams so the engine can be simulated.
//
// ReadLine blocks until a line is available, ctx is cancelled, the console
// is closed or the input is exhausted. Only the first case reports ok=true;
// the others return ok=false and a nil error. WriteOut and WriteErr write
// the text as-is (no newline) and flush it. Close is terminal and may be
// called more than once, from any goroutine, including while a ReadLine is
// pending.
type Console interface {
	Open() error
	ReadLine(ctx context.Context) (line string, ok bool, err error)
	WriteOut(s string) error
	WriteErr(s string) error
	Close() error
}

type state int

const (
	stateNew state = iota
	stateOpen
	stateClosed
)

// lifecycle tracks the open/close state shared by every implementation.
type lifecycle struct {
	mu     sync.Mutex
	state  state
	closed chan struct{}
}

func (l *lifecycle) open() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case stateOpen:
		return ErrAlreadyOpen
	case stateClosed:
		return ErrClosed
	}
	l.state = stateOpen
	return nil
}

// usable reports whether reads and writes are allowed right now.
func (l *lifecycle) usable() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case stateNew:
		return ErrNotOpen
	case stateClosed:
		return ErrClosed
	}
	return nil
}

// close moves to the terminal state. It reports false if the console was
// already closed.
func (l *lifecycle) close() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == stateClosed {
		return false
	}
	l.state = stateClosed
	close(l.closed)
	return true
}

// trimNewline drops a single trailing "\n" or "\r\n".
func trimNewline(s string) string {
	n := len(s)
	if n > 0 && s[n-1] == '\n' {
		n--
		if n > 0 && s[n-1] == '\r' {
			n--
		}
	}
	return s[:n]
}
