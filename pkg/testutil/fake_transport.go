package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/chat"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/stream"
)

// FakeTransport replays canned chunks to a stream.Handler for testing
type FakeTransport struct {
	mu           sync.Mutex
	chunks       []string
	chunkDelay   time.Duration // Delay between chunks
	failAfter    int           // Fail after N chunks (0 = no failure)
	errorMessage string        // Custom error message
	noEnd        bool          // Return without OnComplete or OnError
	pauseAfter   int           // Block after N chunks until Resume (0 = never)
	paused       chan struct{}
	resume       chan struct{}
	requests     []chat.Request
}

// NewFakeTransport creates a fake that delivers chunks verbatim
func NewFakeTransport(chunks ...string) *FakeTransport {
	return &FakeTransport{
		chunks: chunks,
		paused: make(chan struct{}),
		resume: make(chan struct{}),
	}
}

// NewFakeTransportFromText splits text into chunks of chunkSize bytes. Byte
// sized chunks can cut multi-byte characters, which is the point.
func NewFakeTransportFromText(text string, chunkSize int) *FakeTransport {
	return NewFakeTransport(SplitBytes(text, chunkSize)...)
}

// SplitBytes cuts s into pieces of at most size bytes
func SplitBytes(s string, size int) []string {
	if size <= 0 {
		size = 1
	}
	var out []string
	for i := 0; i < len(s); i += size {
		end := i + size
		if end > len(s) {
			end = len(s)
		}
		out = append(out, s[i:end])
	}
	return out
}

// Stream implements transport.Transport
func (f *FakeTransport) Stream(ctx context.Context, req chat.Request, h stream.Handler) error {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	for i, chunk := range f.chunks {
		if f.failAfter > 0 && i >= f.failAfter {
			return f.fail(h)
		}
		if f.pauseAfter > 0 && i == f.pauseAfter {
			close(f.paused)
			<-f.resume
		}

		if f.chunkDelay > 0 {
			select {
			case <-time.After(f.chunkDelay):
			case <-ctx.Done():
				h.OnError(ctx.Err())
				return ctx.Err()
			}
		}

		if err := h.OnChunk(chunk); err != nil {
			h.OnError(err)
			return err
		}
	}

	if f.failAfter > 0 && f.failAfter >= len(f.chunks) {
		return f.fail(h)
	}
	if f.noEnd {
		return nil
	}
	return h.OnComplete("")
}

func (f *FakeTransport) fail(h stream.Handler) error {
	errMsg := f.errorMessage
	if errMsg == "" {
		errMsg = "simulated streaming error"
	}
	err := fmt.Errorf("%s", errMsg)
	h.OnError(err)
	return err
}

// Requests returns every request the fake received
func (f *FakeTransport) Requests() []chat.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]chat.Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// SetChunkDelay sets the delay before each chunk
func (f *FakeTransport) SetChunkDelay(delay time.Duration) {
	f.chunkDelay = delay
}

// SetFailAfter makes the fake report an error after N chunks
func (f *FakeTransport) SetFailAfter(chunks int, errorMessage string) {
	f.failAfter = chunks
	f.errorMessage = errorMessage
}

// SetNoEnd makes the fake return without ending the stream
func (f *FakeTransport) SetNoEnd(noEnd bool) {
	f.noEnd = noEnd
}

// PauseAfter blocks the stream after N chunks. The returned channel is
// closed once the fake is blocked; call Resume to continue.
func (f *FakeTransport) PauseAfter(chunks int) <-chan struct{} {
	f.pauseAfter = chunks
	return f.paused
}

// Resume releases a stream blocked by PauseAfter
func (f *FakeTransport) Resume() {
	close(f.resume)
}
