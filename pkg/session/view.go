package session

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/chat"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/logger"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/nodes"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/stream"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/stream/protocol"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/transport"
)

var (
	// ErrSessionInFlight is returned when a question is submitted while an
	// earlier exchange is still streaming
	ErrSessionInFlight = errors.New("a chat session is already in flight")
	// ErrEmptyQuestion is returned for blank input
	ErrEmptyQuestion = errors.New("question is empty")
)

// Result is the outcome of one exchange. Transport failures do not make
// Submit fail; they are recorded in the transcript and in Err.
type Result struct {
	Answer    chat.Message
	Stats     Stats
	Persisted []protocol.Event
	Err       error
}

// ChatView owns the state behind one chat test screen: the transcript, the
// node graph and the exchange in flight.
type ChatView struct {
	controller *chat.Controller
	projector  *nodes.Projector
	transport  transport.Transport
	observer   Observer
	trace      stream.Handler
	active     atomic.Pointer[Session]
	log        *logger.ComponentLogger
}

// NewChatView creates a view with an empty transcript
func NewChatView(t transport.Transport, projector *nodes.Projector, observer Observer) *ChatView {
	if projector == nil {
		projector = nodes.NewProjector(nil)
	}
	if observer == nil {
		observer = ObserverFuncs{}
	}
	return &ChatView{
		controller: chat.NewController(chat.NewStore()),
		projector:  projector,
		transport:  t,
		observer:   observer,
		log:        logger.WithComponent("chat_view"),
	}
}

// SetTrace makes trace receive every transport callback of later
// exchanges, alongside the session. Pass nil to stop tracing.
func (v *ChatView) SetTrace(trace stream.Handler) {
	v.trace = trace
}

// Submit asks a question and streams the answer into the transcript
func (v *ChatView) Submit(ctx context.Context, question string) (Result, error) {
	if strings.TrimSpace(question) == "" {
		return Result{}, ErrEmptyQuestion
	}

	s, err := v.acquire()
	if err != nil {
		return Result{}, err
	}
	defer v.release(s)

	v.controller.Submit(question)
	v.observer.OnTranscript(v.controller.Store().Load())
	return v.run(ctx, s), nil
}

// Regenerate asks again for the answer at index and replaces it in place
func (v *ChatView) Regenerate(ctx context.Context, index int) (Result, error) {
	s, err := v.acquire()
	if err != nil {
		return Result{}, err
	}
	defer v.release(s)

	if err := v.controller.Regenerate(index); err != nil {
		return Result{}, err
	}
	v.observer.OnTranscript(v.controller.Store().Load())
	return v.run(ctx, s), nil
}

// Close detaches the exchange in flight, if any, and resets every node to
// baseline. Late transport callbacks are ignored afterwards.
func (v *ChatView) Close() {
	if s := v.active.Load(); s != nil {
		s.Detach()
	}
	v.projector.Reset()
	v.observer.OnNodes(v.projector.Snapshot())
	v.log.Debug("Chat view closed")
}

// Active reports whether an exchange is in flight
func (v *ChatView) Active() bool {
	return v.active.Load() != nil
}

// Transcript returns the current transcript
func (v *ChatView) Transcript() chat.Conversation {
	return v.controller.Store().Load()
}

// Nodes returns the current node states
func (v *ChatView) Nodes() nodes.Snapshot {
	return v.projector.Snapshot()
}

func (v *ChatView) acquire() (*Session, error) {
	s := New(v.controller, v.projector, v.observer)
	if !v.active.CompareAndSwap(nil, s) {
		return nil, ErrSessionInFlight
	}
	return s, nil
}

// release ends an exchange. A session detached before it finalized leaves
// regenerate mode pending, so it is cancelled here, and node state is
// reset again in case a late update slipped in after Close.
func (v *ChatView) release(s *Session) {
	if s.Detached() && !s.Finalized() {
		v.controller.CancelRegenerate()
		v.projector.Reset()
	}
	v.active.CompareAndSwap(s, nil)
}

func (v *ChatView) run(ctx context.Context, s *Session) Result {
	var err error
	if v.trace != nil {
		err = s.Run(ctx, v.transport, v.trace)
	} else {
		err = s.Run(ctx, v.transport)
	}
	if err != nil {
		v.log.Warn("Exchange failed", "session", s.Stats().ID, "error", err)
	}

	answer, _ := s.Answer()
	return Result{
		Answer:    answer,
		Stats:     s.Stats(),
		Persisted: s.Persisted(),
		Err:       err,
	}
}
