package util

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Writer buffers emitted text (IR listings, AST dumps, token dumps) in a
// strings.Builder before it is flushed to the destination file or stdout.
// vslc's Writer served the same role for a pool of concurrent
// codegen workers; since the core compiler is single-threaded end-to-end,
// there is exactly one Writer per compilation and no channel hand-off is
// needed to serialize concurrent writes.
type Writer struct {
	sb strings.Builder
	f  *os.File // nil means stdout.
}

// ---------------------
// ----- Functions -----
// ---------------------

// Write writes a format string to the Writer's buffer.
func (w *Writer) Write(format string, args ...interface{}) {
	w.sb.WriteString(fmt.Sprintf(format, args...))
}

// WriteString writes a plain string to the Writer's buffer.
func (w *Writer) WriteString(s string) {
	w.sb.WriteString(s)
}

// Flush writes the Writer's buffer to its destination and empties it.
func (w *Writer) Flush() error {
	out := os.Stdout
	if w.f != nil {
		out = w.f
	}
	bw := bufio.NewWriter(out)
	if _, err := bw.WriteString(w.sb.String()); err != nil {
		return err
	}
	w.sb = strings.Builder{}
	return bw.Flush()
}

// Close flushes the Writer's buffer and closes its destination file, if any.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	if w.f != nil {
		return w.f.Close()
	}
	return nil
}

// NewWriter returns a Writer that writes to stdout.
func NewWriter() Writer {
	return Writer{}
}

// NewFileWriter returns a Writer that writes to the file at path, creating
// or truncating it.
func NewFileWriter(path string) (Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return Writer{}, err
	}
	return Writer{f: f}, nil
}

// ReadSource reads source code from file or stdin.
// If the Options structure holds a string for source the file will be opened and read.
// Else the function waits for a short period for input on stdin. If no input on stdin is
// provided the function returns an error.
func ReadSource(opt Options) (string, error) {
	if len(opt.Src) > 0 {
		b, err := os.ReadFile(opt.Src)
		return string(b), err
	}

	// Read stdin.
	c := make(chan string)
	cerr := make(chan error)

	// Concurrently wait for input on stdin.
	go func(c chan string, cerr chan error) {
		defer close(c)
		defer close(cerr)
		reader := bufio.NewReader(os.Stdin)
		text, err := reader.ReadString(0)
		// Piped input normally ends in EOF rather than a NUL byte.
		if err == nil || len(text) > 0 {
			c <- text
		} else {
			cerr <- err
		}
	}(c, cerr)

	// Select between input from stdin or timer expiry.
	select {
	case <-time.After(500 * time.Millisecond):
		return "", errors.New("expected input from stdin, got none")
	case s := <-c:
		return s, nil
	}
}
