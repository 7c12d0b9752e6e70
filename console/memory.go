package console

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// Memory is an in-memory Console. Tests and local simulations feed input
// with WriteToStdin and inspect what the runtime wrote through Stdout and
// Stderr.
type Memory struct {
	lifecycle

	inMu    sync.Mutex
	stdin   []string
	inEOF   bool
	pending chan struct{}

	outMu  sync.Mutex
	stdout strings.Builder

	errMu  sync.Mutex
	stderr strings.Builder
}

var _ Console = (*Memory)(nil)

// NewMemory returns an empty in-memory console.
func NewMemory() *Memory {
	return &Memory{
		lifecycle: lifecycle{closed: make(chan struct{})},
		pending:   make(chan struct{}, 1),
	}
}

// WriteToStdin queues lines for ReadLine. It may be called before Open.
func (m *Memory) WriteToStdin(lines ...string) {
	m.inMu.Lock()
	m.stdin = append(m.stdin, lines...)
	m.inMu.Unlock()
	m.signal()
}

// CloseStdin marks the end of the input. Pending and future reads report
// ok=false once the queue is drained.
func (m *Memory) CloseStdin() {
	m.inMu.Lock()
	m.inEOF = true
	m.inMu.Unlock()
	m.signal()
}

func (m *Memory) signal() {
	select {
	case m.pending <- struct{}{}:
	default:
	}
}

func (m *Memory) Open() error {
	return m.open()
}

func (m *Memory) ReadLine(ctx context.Context) (string, bool, error) {
	if err := m.usable(); err != nil {
		if errors.Is(err, ErrClosed) {
			return "", false, nil
		}
		return "", false, err
	}

	for {
		m.inMu.Lock()
		if len(m.stdin) > 0 {
			line := m.stdin[0]
			m.stdin = m.stdin[1:]
			m.inMu.Unlock()
			return line, true, nil
		}
		eof := m.inEOF
		m.inMu.Unlock()

		if eof {
			return "", false, nil
		}

		select {
		case <-ctx.Done():
			return "", false, nil
		case <-m.closed:
			return "", false, nil
		case <-m.pending:
		}
	}
}

func (m *Memory) WriteOut(s string) error {
	if err := m.usable(); err != nil {
		return err
	}
	m.outMu.Lock()
	defer m.outMu.Unlock()
	m.stdout.WriteString(s)
	return nil
}

func (m *Memory) WriteErr(s string) error {
	if err := m.usable(); err != nil {
		return err
	}
	m.errMu.Lock()
	defer m.errMu.Unlock()
	m.stderr.WriteString(s)
	return nil
}

func (m *Memory) Close() error {
	m.close()
	return nil
}

// Stdout returns everything written to the output stream so far.
func (m *Memory) Stdout() string {
	m.outMu.Lock()
	defer m.outMu.Unlock()
	return m.stdout.String()
}

// Stderr returns everything written to the error stream so far.
func (m *Memory) Stderr() string {
	m.errMu.Lock()
	defer m.errMu.Unlock()
	return m.stderr.String()
}

// Done is closed once the console is closed.
func (m *Memory) Done() <-chan struct{} {
	return m.closed
}

// WaitClosed blocks until the console is closed or timeout elapses. It
// reports whether the console was closed.
func (m *Memory) WaitClosed(timeout time.Duration) bool {
	select {
	case <-m.closed:
		return true
	case <-time.After(timeout):
		return false
	}
}
