package headless

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/logger"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/process"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/render"
)

// Output handles console output for headless mode. The answer goes to out
// as it streams; status and errors go to errOut.
type Output struct {
	out    io.Writer
	errOut io.Writer
	opts   render.Options

	mu      sync.Mutex
	printed string
}

// NewOutput creates a new output handler
func NewOutput(out, errOut io.Writer, opts render.Options) *Output {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	return &Output{out: out, errOut: errOut, opts: opts}
}

// Preview writes the part of the answer not yet on screen. A preview that
// does not extend the previous one starts a fresh line; an empty one only
// closes the withdrawn line.
func (o *Output) Preview(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch {
	case strings.HasPrefix(text, o.printed):
		io.WriteString(o.out, text[len(o.printed):])
	case text == "":
		io.WriteString(o.out, "\n")
	default:
		fmt.Fprintf(o.out, "\n%s", text)
	}
	o.printed = text
}

// Reset forgets the previous answer
func (o *Output) Reset() {
	o.mu.Lock()
	o.printed = ""
	o.mu.Unlock()
}

// EndAnswer terminates the answer line, if one was started
func (o *Output) EndAnswer() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.printed != "" {
		io.WriteString(o.out, "\n")
	}
}

// Progress prints a status line for the streaming session
func (o *Output) Progress(text string) {
	fmt.Fprintln(o.errOut, render.Status(process.StateStreaming, text, o.opts))
}

// Print writes text to the main output
func (o *Output) Print(text string) {
	io.WriteString(o.out, text)
}

// Error prints an error message and logs it
func (o *Output) Error(msg string) {
	fmt.Fprintln(o.errOut, msg)
	logger.Warn("headless: %s", msg)
}
