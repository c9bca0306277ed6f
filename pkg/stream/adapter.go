package stream

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// WriterHandler copies the raw stream to an io.Writer. It backs the
// auxiliary trace log: chunks are written verbatim, a failure is written
// as an explicit error line and the trace always ends with a line break.
type WriterHandler struct {
	writer io.Writer
	open   bool // last chunk did not end a line
	mu     sync.Mutex
}

// NewWriterHandler creates a new handler that writes to an io.Writer
func NewWriterHandler(w io.Writer) *WriterHandler {
	return &WriterHandler{
		writer: w,
	}
}

// OnChunk writes the chunk to the underlying writer
func (w *WriterHandler) OnChunk(chunk string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if chunk == "" {
		return nil
	}
	if _, err := io.WriteString(w.writer, chunk); err != nil {
		return err
	}
	w.open = !strings.HasSuffix(chunk, "\n")
	return nil
}

// OnComplete ends a trace whose last line had no terminator. finalContent
// is the answer, not stream text, so it is not written.
func (w *WriterHandler) OnComplete(string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return nil
	}
	w.open = false
	_, err := io.WriteString(w.writer, "\n")
	return err
}

// OnError writes the error text on its own line
func (w *WriterHandler) OnError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.open {
		io.WriteString(w.writer, "\n")
		w.open = false
	}
	fmt.Fprintf(w.writer, "[error] %v\n", err)
}

// MultiHandler broadcasts callbacks to multiple handlers.
// Similar to io.MultiWriter but for our Handler interface.
type MultiHandler struct {
	handlers []Handler
}

// NewMultiHandler creates a handler that forwards to multiple handlers
func NewMultiHandler(handlers ...Handler) *MultiHandler {
	return &MultiHandler{
		handlers: handlers,
	}
}

// OnChunk forwards the chunk to all handlers, stopping at the first error
func (m *MultiHandler) OnChunk(chunk string) error {
	for _, h := range m.handlers {
		if err := h.OnChunk(chunk); err != nil {
			return err
		}
	}
	return nil
}

// OnComplete forwards completion to all handlers
func (m *MultiHandler) OnComplete(finalContent string) error {
	for _, h := range m.handlers {
		if err := h.OnComplete(finalContent); err != nil {
			return err
		}
	}
	return nil
}

// OnError forwards errors to all handlers
func (m *MultiHandler) OnError(err error) {
	for _, h := range m.handlers {
		h.OnError(err)
	}
}

// Ensure implementations satisfy the interface
var (
	_ Handler = (*WriterHandler)(nil)
	_ Handler = (*MultiHandler)(nil)
)
