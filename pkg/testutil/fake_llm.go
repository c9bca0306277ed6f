package testutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// FakeLLM is a langchaingo model that streams canned answers piece by piece
// through the streaming callback, the way a chat model does
type FakeLLM struct {
	mu           sync.Mutex
	responses    []string
	currentIndex int
	callCount    int
	pieceSize    int
	lastMessages []llms.MessageContent
	errorOnCall  int // If > 0, return error on this call number
	errorMessage string
}

// NewFakeLLM creates a fake streaming model with predefined answers. Each
// answer is streamed in pieces of four bytes unless SetPieceSize says
// otherwise.
func NewFakeLLM(responses ...string) *FakeLLM {
	return &FakeLLM{
		responses: responses,
		pieceSize: 4,
	}
}

// Call implements llms.Model
func (f *FakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

// GenerateContent implements llms.Model. The answer is split by byte count,
// so a piece can end inside a multi-byte character.
func (f *FakeLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	response, pieceSize, err := f.next(messages)
	if err != nil {
		return nil, err
	}

	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}

	if opts.StreamingFunc != nil {
		for _, piece := range SplitBytes(response, pieceSize) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := opts.StreamingFunc(ctx, []byte(piece)); err != nil {
				return nil, err
			}
		}
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{
				Content:    response,
				StopReason: "stop",
			},
		},
	}, nil
}

func (f *FakeLLM) next(messages []llms.MessageContent) (string, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.callCount++
	f.lastMessages = messages

	if f.errorOnCall > 0 && f.callCount == f.errorOnCall {
		if f.errorMessage != "" {
			return "", 0, errors.New(f.errorMessage)
		}
		return "", 0, fmt.Errorf("fake error on call %d", f.callCount)
	}

	if len(f.responses) == 0 {
		return "", 0, errors.New("no responses configured")
	}

	response := f.responses[f.currentIndex]
	f.currentIndex = (f.currentIndex + 1) % len(f.responses)
	return response, f.pieceSize, nil
}

// SetPieceSize sets how many bytes each streamed piece carries
func (f *FakeLLM) SetPieceSize(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pieceSize = n
}

// SetErrorOnCall configures the model to fail on a specific call
func (f *FakeLLM) SetErrorOnCall(callNumber int, errorMessage string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errorOnCall = callNumber
	f.errorMessage = errorMessage
}

// GetCallCount returns the number of generations requested
func (f *FakeLLM) GetCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callCount
}

// GetLastMessages returns the messages of the last generation
func (f *FakeLLM) GetLastMessages() []llms.MessageContent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastMessages
}

// GetLastPrompt returns the text of the last generation, one line per message
func (f *FakeLLM) GetLastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var parts []string
	for _, msg := range f.lastMessages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				parts = append(parts, text.Text)
			}
		}
	}
	return strings.Join(parts, "\n")
}

var _ llms.Model = (*FakeLLM)(nil)
