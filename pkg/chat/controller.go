package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/logger"
)

// FailurePrefix starts the answer recorded when an exchange fails
const FailurePrefix = "오류: "

// NoRegenerateTarget is the regenerate target in normal mode
const NoRegenerateTarget = -1

// ErrInvalidRegenerateTarget is returned when a regenerate target does not
// name an AI message in the transcript
var ErrInvalidRegenerateTarget = errors.New("regenerate target must be an AI message")

// RequestMessage is one turn as sent to the agent
type RequestMessage struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

// Request is the payload of one exchange
type Request struct {
	Messages []RequestMessage `json:"messages"`
}

func toRequestMessage(m Message) RequestMessage {
	return RequestMessage{Content: m.Content, Role: m.Role}
}

// Controller decides what each exchange sends and whether its answer is
// appended to the transcript or replaces an earlier answer.
type Controller struct {
	store  *Store
	target int
	log    *logger.ComponentLogger
}

func NewController(store *Store) *Controller {
	if store == nil {
		store = NewStore()
	}
	return &Controller{
		store:  store,
		target: NoRegenerateTarget,
		log:    logger.WithComponent("conversation"),
	}
}

// Store returns the transcript store the controller writes to
func (c *Controller) Store() *Store {
	return c.store
}

// RegenerateTarget returns the transcript index being regenerated, or
// NoRegenerateTarget in normal mode
func (c *Controller) RegenerateTarget() int {
	return c.target
}

// Regenerating reports whether the next answer replaces an existing one
func (c *Controller) Regenerating() bool {
	return c.target != NoRegenerateTarget
}

// Submit appends a question to the transcript
func (c *Controller) Submit(content string) Message {
	msg := NewHumanMessage(content)
	c.store.Update(func(conv Conversation) Conversation {
		return AddMessage(conv, msg)
	})
	c.log.Debug("Question submitted", "id", msg.ID, "length", len(msg.Content))
	return msg
}

// Regenerate switches to regenerate mode for the AI message at index. The
// message is flagged and will be replaced by the next finalized answer.
func (c *Controller) Regenerate(index int) error {
	conv := c.store.Load()
	msg, ok := GetMessage(conv, index)
	if !ok || !msg.IsAI() {
		return fmt.Errorf("%w: index %d", ErrInvalidRegenerateTarget, index)
	}

	msg.Regen = true
	next, err := ReplaceMessage(ClearRegen(conv), index, msg)
	if err != nil {
		return err
	}
	c.store.Store(next)
	c.target = index

	c.log.Debug("Regenerate requested", "index", index, "id", msg.ID)
	return nil
}

// CancelRegenerate returns to normal mode without recording an answer. The
// regen flag stays on the target, so the next normal request still starts
// from the question that was being regenerated.
func (c *Controller) CancelRegenerate() {
	if c.target == NoRegenerateTarget {
		return
	}
	c.log.Debug("Regenerate cancelled", "index", c.target)
	c.target = NoRegenerateTarget
}

// BuildRequest assembles the messages for the next exchange.
//
// In regenerate mode the request is the single nearest Human message at or
// before the target. In normal mode it is the whole transcript, except that
// a message flagged regen drops everything collected before it and restarts
// from the Human message preceding it. The flagged message itself is never
// sent, and when several are flagged the last one decides.
func (c *Controller) BuildRequest() Request {
	conv := c.store.Load()

	if c.Regenerating() {
		req := Request{Messages: []RequestMessage{}}
		if h, ok := NearestHumanMessage(conv, c.target); ok {
			req.Messages = append(req.Messages, toRequestMessage(h))
		}
		return req
	}

	messages := make([]RequestMessage, 0, len(conv.Messages))
	for i, m := range conv.Messages {
		if m.Regen {
			messages = messages[:0]
			if h, ok := NearestHumanMessage(conv, i-1); ok {
				messages = append(messages, toRequestMessage(h))
			}
			continue
		}
		messages = append(messages, toRequestMessage(m))
	}
	return Request{Messages: messages}
}

// Finalize records a successful answer built from the streamed fragments
func (c *Controller) Finalize(fragments []string, elapsed time.Duration) Message {
	msg := NewAIMessageWithElapsed(strings.Join(fragments, ""), elapsed)
	c.commit(msg)
	return msg
}

// Fail records a failed exchange as an AI message carrying the reason
func (c *Controller) Fail(reason string) Message {
	msg := NewAIMessage(FailurePrefix + reason)
	c.commit(msg)
	return msg
}

// commit replaces the regenerate target or appends. A target that no longer
// exists falls back to appending so the answer is never lost.
func (c *Controller) commit(msg Message) {
	if !c.Regenerating() {
		c.store.Update(func(conv Conversation) Conversation {
			return AddMessage(conv, msg)
		})
		return
	}

	target := c.target
	c.target = NoRegenerateTarget
	c.store.Update(func(conv Conversation) Conversation {
		next, err := ReplaceMessage(conv, target, msg)
		if err != nil {
			c.log.Warn("Regenerate target vanished, appending answer", "index", target, "error", err)
			next = AddMessage(conv, msg)
		}
		return ClearRegen(next)
	})
}
