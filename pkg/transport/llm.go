package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/chat"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/logger"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/stream"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/stream/protocol"
)

// progressGenerating is shown on the model node while it answers
const progressGenerating = "답변 생성 중"

// LLMTransport answers from a langchaingo model and speaks the agent line
// protocol: a run start, a node start for the model node, one final_result
// line per streamed piece and a done marker on the model node.
type LLMTransport struct {
	model    llms.Model
	nodeName string
	log      *logger.ComponentLogger
}

// NewLLMTransport wraps model. nodeName is the graph node the model's
// activity is reported on.
func NewLLMTransport(model llms.Model, nodeName string) *LLMTransport {
	if nodeName == "" {
		nodeName = "llm"
	}
	return &LLMTransport{
		model:    model,
		nodeName: nodeName,
		log:      logger.WithComponent("llm_transport"),
	}
}

// NewOllamaTransport creates an LLMTransport backed by an Ollama server
func NewOllamaTransport(baseURL, model, nodeName string) (*LLMTransport, error) {
	var opts []ollama.Option

	if baseURL != "" {
		opts = append(opts, ollama.WithServerURL(baseURL))
	}

	if model != "" {
		opts = append(opts, ollama.WithModel(model))
	}

	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}
	return NewLLMTransport(llm, nodeName), nil
}

// Stream implements Transport
func (t *LLMTransport) Stream(ctx context.Context, req chat.Request, h stream.Handler) error {
	var handlerErr error
	emit := func(eventType string, payload map[string]any) error {
		if handlerErr != nil {
			return handlerErr
		}
		line, err := encodeLine(eventType, payload)
		if err != nil {
			return err
		}
		if err := h.OnChunk(line); err != nil {
			handlerErr = err
			return err
		}
		return nil
	}
	fail := func(err error) error {
		t.log.Warn("Generation failed", "node", t.nodeName, "error", err)
		h.OnError(err)
		return err
	}

	runID := uuid.NewString()
	if err := emit("msg", map[string]any{"run_id": runID}); err != nil {
		return fail(err)
	}
	if err := emit(protocol.EventNodeStart, map[string]any{"node": t.nodeName, "progress": progressGenerating}); err != nil {
		return fail(err)
	}

	streamed := false
	var held []byte
	resp, err := t.model.GenerateContent(ctx, toMessageContent(req),
		llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			if len(chunk) == 0 {
				return nil
			}
			streamed = true
			held = append(held, chunk...)
			n := completeRunes(held)
			if n == 0 {
				return nil
			}
			piece := string(held[:n])
			held = append(held[:0], held[n:]...)
			return emit("", map[string]any{"final_result": piece})
		}))
	if handlerErr != nil {
		return fail(handlerErr)
	}
	if err != nil {
		return fail(stream.WrapTransportError(err, "generate "+t.nodeName))
	}
	if len(held) > 0 {
		if err := emit("", map[string]any{"final_result": string(held)}); err != nil {
			return fail(err)
		}
	}

	content := ""
	if resp != nil && len(resp.Choices) > 0 {
		content = resp.Choices[0].Content
	}
	if !streamed && content != "" {
		if err := emit("", map[string]any{"final_result": content}); err != nil {
			return fail(err)
		}
	}
	if err := emit("", map[string]any{"node": t.nodeName, "message": protocol.DoneMessage}); err != nil {
		return fail(err)
	}

	t.log.Debug("Generation finished", "run", runID, "streamed", streamed, "length", len(content))
	return h.OnComplete(content)
}

// completeRunes returns the length of the prefix of b that does not end in
// a cut multi-byte character
func completeRunes(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if utf8.FullRune(b[i:]) {
			return len(b)
		}
		return i
	}
	return len(b)
}

func toMessageContent(req chat.Request) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messageType := llms.ChatMessageTypeHuman
		if msg.Role == chat.RoleAI {
			messageType = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(messageType, msg.Content))
	}
	return messages
}

// encodeLine renders one protocol event, with an event label when given
func encodeLine(eventType string, payload map[string]any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode event: %w", err)
	}

	var b strings.Builder
	if eventType != "" {
		b.WriteString("event: ")
		b.WriteString(eventType)
		b.WriteByte('\n')
	}
	b.WriteString("data: ")
	b.Write(data)
	b.WriteByte('\n')
	return b.String(), nil
}
