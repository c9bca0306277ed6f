package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/chat"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/logger"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/nodes"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/process"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/stream"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/stream/protocol"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/transport"
)

var (
	// ErrPipelinePanic wraps a panic recovered while processing the stream
	ErrPipelinePanic = errors.New("stream pipeline panicked")
	// ErrIncompleteStream is recorded when a transport returns without ending the stream
	ErrIncompleteStream = errors.New("stream ended without completion")
)

// Stats describes one exchange
type Stats struct {
	ID        string
	RunID     string
	Chunks    int
	Bytes     int
	Lines     int
	Events    map[protocol.Kind]int
	Persisted int
	StartTime time.Time
	EndTime   time.Time
	Err       error
}

// Duration is the time between Begin and finalization
func (s Stats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// Session runs one question/answer exchange. It is the stream.Handler the
// transport calls: chunks are reassembled into lines, classified, projected
// onto the node graph and collected into the answer, and the end of the
// stream finalizes the transcript exactly once.
//
// Callbacks must come from one goroutine at a time. Detach may be called
// from any goroutine.
type Session struct {
	controller *chat.Controller
	projector  *nodes.Projector
	observer   Observer
	log        *logger.ComponentLogger
	id         string

	reassembler *stream.LineReassembler
	parser      *protocol.Parser
	fragments   []string
	lastPreview string
	persisted   []protocol.Event
	startTime   time.Time
	answer      chat.Message
	stats       Stats

	state     atomic.Value
	live      atomic.Bool
	finalized atomic.Bool
}

// New creates a session writing to controller and projector
func New(controller *chat.Controller, projector *nodes.Projector, observer Observer) *Session {
	if observer == nil {
		observer = ObserverFuncs{}
	}
	s := &Session{
		controller:  controller,
		projector:   projector,
		observer:    observer,
		log:         logger.WithComponent("stream_session"),
		id:          uuid.NewString(),
		reassembler: stream.NewLineReassembler(),
		parser:      protocol.NewParser(),
	}
	s.state.Store(process.StateIdle)
	return s
}

// Begin starts the exchange and returns the request to send
func (s *Session) Begin() chat.Request {
	s.reassembler.Reset()
	s.parser.Reset()
	s.fragments = nil
	s.lastPreview = ""
	s.persisted = nil
	s.answer = chat.Message{}
	s.startTime = time.Now()
	s.stats = Stats{
		ID:        s.id,
		Events:    make(map[protocol.Kind]int),
		StartTime: s.startTime,
	}
	s.finalized.Store(false)
	s.live.Store(true)
	s.transition(process.StateSending)

	req := s.controller.BuildRequest()
	s.log.Debug("Session started",
		"session", s.id,
		"messages", len(req.Messages),
		"regenerate", s.controller.RegenerateTarget())
	return req
}

// Run drives one exchange over t. Each tap receives the same callbacks as
// the session, after it, such as a trace writer copying the raw stream. The
// transcript is finalized even if t returns without ending the stream,
// unless the session was detached. The returned error is the transport's;
// it is already recorded in the transcript.
func (s *Session) Run(ctx context.Context, t transport.Transport, taps ...stream.Handler) error {
	req := s.Begin()

	var h stream.Handler = s
	if len(taps) > 0 {
		h = stream.NewMultiHandler(append([]stream.Handler{s}, taps...)...)
	}
	err := t.Stream(ctx, req, h)

	if s.live.Load() && !s.finalized.Load() {
		if err == nil {
			err = ErrIncompleteStream
		}
		h.OnError(err)
	}
	return err
}

// Detach turns every later callback into a no-op. The chat view calls it
// when it closes while a stream is still open.
func (s *Session) Detach() {
	if s.live.Swap(false) {
		s.log.Debug("Session detached", "session", s.id, "finalized", s.finalized.Load())
	}
}

// ID identifies the session in logs and Stats. It is fixed at creation.
func (s *Session) ID() string {
	return s.id
}

// Detached reports whether Detach was called
func (s *Session) Detached() bool {
	return !s.live.Load()
}

// Finalized reports whether the transcript was updated for this exchange
func (s *Session) Finalized() bool {
	return s.finalized.Load()
}

// State returns the lifecycle stage
func (s *Session) State() process.State {
	return s.state.Load().(process.State)
}

// Stats returns counters for the exchange. Read it from the goroutine
// driving the session or after Run returns.
func (s *Session) Stats() Stats {
	out := s.stats
	out.Events = make(map[protocol.Kind]int, len(s.stats.Events))
	for k, v := range s.stats.Events {
		out.Events[k] = v
	}
	return out
}

// Persisted returns the persisted events in arrival order
func (s *Session) Persisted() []protocol.Event {
	out := make([]protocol.Event, len(s.persisted))
	copy(out, s.persisted)
	return out
}

// Answer returns the AI message written at finalization
func (s *Session) Answer() (chat.Message, bool) {
	return s.answer, s.finalized.Load()
}

// Preview returns the answer text collected so far
func (s *Session) Preview() string {
	return strings.Join(s.fragments, "")
}

// OnChunk implements stream.Handler
func (s *Session) OnChunk(chunk string) error {
	if !s.accepting() {
		return nil
	}
	if s.State() == process.StateSending {
		s.transition(process.StateStreaming)
	}

	return s.guard("chunk", func() {
		s.stats.Chunks++
		s.stats.Bytes += len(chunk)
		s.observer.OnTrace(chunk)

		for _, line := range s.reassembler.Consume(chunk) {
			s.processLine(line)
		}
		s.previewPending()
	})
}

// OnComplete implements stream.Handler. A trailing line without a line
// break is processed before the answer is recorded.
func (s *Session) OnComplete(finalContent string) error {
	if !s.accepting() {
		return nil
	}

	err := s.guard("complete", func() {
		if line, ok := s.reassembler.Flush(); ok {
			s.processLine(line)
		}
	})
	if err != nil {
		return err
	}

	s.log.Debug("Session completed",
		"session", s.id,
		"chunks", s.stats.Chunks,
		"fragments", len(s.fragments),
		"final_content", len(finalContent))
	s.finish(func() chat.Message {
		return s.controller.Finalize(s.fragments, time.Since(s.startTime))
	})
	return nil
}

// OnError implements stream.Handler
func (s *Session) OnError(err error) {
	if !s.accepting() {
		return
	}
	s.fail(err)
}

func (s *Session) accepting() bool {
	return s.live.Load() && !s.finalized.Load()
}

// processLine sends one line through classification, projection and the
// answer accumulator
func (s *Session) processLine(line string) {
	s.stats.Lines++

	ev, ok := s.parser.Feed(line)
	if !ok {
		return
	}
	s.stats.Events[ev.Kind]++

	if ev.Kind == protocol.KindRunStarted {
		s.stats.RunID = ev.Payload.Get("run_id").String()
	}
	if ev.HasProgress {
		s.observer.OnProgress(ev.Progress)
	}

	if ev.Persisted() {
		s.persisted = append(s.persisted, ev)
		s.stats.Persisted++
		if s.projector != nil && s.projector.Apply(ev) {
			s.observer.OnNodes(s.projector.Snapshot())
		}
	}

	if ev.Kind == protocol.KindFinalResult {
		s.fragments = append(s.fragments, ev.Fragment)
	}
	// A partial final_result shown early is withdrawn if its line turned
	// out to be something else.
	s.preview(s.Preview())

	if ev.Kind == protocol.KindUnclassified && !ev.Payload.JSON {
		s.log.Debug("Non-JSON data line ignored", "session", s.id, "data", ev.Payload.Raw)
	}
}

// previewPending shows the part of a final_result line that has arrived so
// far. The fragment itself is only recorded once its line is complete.
func (s *Session) previewPending() {
	pending := strings.TrimSuffix(s.reassembler.Pending(), "\r")
	if pending == "" {
		return
	}
	l, ok := protocol.ParseLine(pending)
	if !ok || l.Field != protocol.FieldData {
		return
	}
	if partial, ok := protocol.PartialFragment(l.Value); ok && partial != "" {
		s.preview(s.Preview() + partial)
	}
}

func (s *Session) preview(text string) {
	if text == s.lastPreview {
		return
	}
	s.lastPreview = text
	s.observer.OnPreview(text)
}

// guard runs fn and turns a panic into failure finalization
func (s *Session) guard(step string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %w: %v", step, ErrPipelinePanic, r)
			s.log.Error("Stream pipeline panicked", "session", s.id, "step", step, "panic", r)
			s.fail(err)
		}
	}()
	fn()
	return nil
}

func (s *Session) fail(err error) {
	s.stats.Err = err
	s.observer.OnTraceError(err.Error())
	s.finish(func() chat.Message {
		return s.controller.Fail(err.Error())
	})
	s.log.Warn("Session failed", "session", s.id, "error", err)
}

// finish records the answer once and returns the session to idle
func (s *Session) finish(record func() chat.Message) {
	if s.finalized.Swap(true) {
		return
	}
	s.transition(process.StateFinalizing)

	s.answer = record()
	s.stats.EndTime = time.Now()
	s.fragments = nil
	s.reassembler.Reset()
	s.parser.Reset()

	s.observer.OnTranscript(s.controller.Store().Load())
	s.transition(process.StateIdle)
}

func (s *Session) transition(next process.State) {
	current := s.State()
	if _, err := current.Transition(next); err != nil {
		s.log.Warn("Unexpected session transition", "session", s.id, "error", err)
	}
	s.state.Store(next)
	s.observer.OnState(next)
}

var _ stream.Handler = (*Session)(nil)
