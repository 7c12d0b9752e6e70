package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// Std is a Console backed by an input reader and two writers, normally the
// process's standard streams.
type Std struct {
	lifecycle

	in    io.Reader
	lines chan string

	outMu sync.Mutex
	out   *bufio.Writer

	errMu sync.Mutex
	errw  *bufio.Writer

	readErrMu sync.Mutex
	readErr   error
}

var _ Console = (*Std)(nil)

// Stdio returns a Console over os.Stdin, os.Stdout and os.Stderr.
func Stdio() *Std {
	return New(os.Stdin, os.Stdout, os.Stderr)
}

// New returns a Console reading lines from in and writing to out and errw.
func New(in io.Reader, out, errw io.Writer) *Std {
	return &Std{
		lifecycle: lifecycle{closed: make(chan struct{})},
		in:        in,
		lines:     make(chan string),
		out:       bufio.NewWriter(out),
		errw:      bufio.NewWriter(errw),
	}
}

// Open starts reading the input in the background.
func (s *Std) Open() error {
	if err := s.open(); err != nil {
		return err
	}
	go s.readLoop()
	return nil
}

// readLoop feeds s.lines until the input is exhausted or the console closes.
func (s *Std) readLoop() {
	defer close(s.lines)

	reader := bufio.NewReader(s.in)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			select {
			case s.lines <- trimNewline(line):
			case <-s.closed:
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.readErrMu.Lock()
				s.readErr = err
				s.readErrMu.Unlock()
			}
			return
		}
	}
}

// ReadLine returns the next input line without its line terminator.
func (s *Std) ReadLine(ctx context.Context) (string, bool, error) {
	if err := s.usable(); err != nil {
		if errors.Is(err, ErrClosed) {
			return "", false, nil
		}
		return "", false, err
	}

	select {
	case <-ctx.Done():
		return "", false, nil
	case <-s.closed:
		return "", false, nil
	case line, ok := <-s.lines:
		if !ok {
			s.readErrMu.Lock()
			defer s.readErrMu.Unlock()
			if s.readErr != nil {
				return "", false, fmt.Errorf("console: read input: %w", s.readErr)
			}
			return "", false, nil
		}
		return line, true, nil
	}
}

// WriteOut writes str to the output stream and flushes it.
func (s *Std) WriteOut(str string) error {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	return s.write(s.out, str)
}

// WriteErr writes str to the error stream and flushes it.
func (s *Std) WriteErr(str string) error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.write(s.errw, str)
}

func (s *Std) write(w *bufio.Writer, str string) error {
	if err := s.usable(); err != nil {
		return err
	}
	if _, err := w.WriteString(str); err != nil {
		return err
	}
	return w.Flush()
}

// Close stops the background reader and flushes both writers. The
// underlying streams are left open; they belong to the caller.
func (s *Std) Close() error {
	if !s.close() {
		return nil
	}

	s.outMu.Lock()
	outErr := s.out.Flush()
	s.outMu.Unlock()

	s.errMu.Lock()
	errErr := s.errw.Flush()
	s.errMu.Unlock()

	return errors.Join(outErr, errErr)
}
