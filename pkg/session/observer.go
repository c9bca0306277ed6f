package session

import (
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/chat"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/nodes"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/process"
)

// Observer receives everything a chat view displays. Calls come from the
// goroutine driving the session and must not block for long.
type Observer interface {
	// OnState reports session lifecycle changes
	OnState(state process.State)
	// OnProgress reports the transient status line
	OnProgress(text string)
	// OnPreview reports the answer streamed so far
	OnPreview(text string)
	// OnNodes reports a new node snapshot
	OnNodes(snapshot nodes.Snapshot)
	// OnTranscript reports a new transcript
	OnTranscript(conv chat.Conversation)
	// OnTrace receives every raw chunk for the auxiliary trace log
	OnTrace(chunk string)
	// OnTraceError receives the text of a stream failure
	OnTraceError(message string)
}

// ObserverFuncs adapts optional functions to the Observer interface. Nil
// fields are skipped.
type ObserverFuncs struct {
	State      func(process.State)
	Progress   func(string)
	Preview    func(string)
	Nodes      func(nodes.Snapshot)
	Transcript func(chat.Conversation)
	Trace      func(string)
	TraceError func(string)
}

func (o ObserverFuncs) OnState(state process.State) {
	if o.State != nil {
		o.State(state)
	}
}

func (o ObserverFuncs) OnProgress(text string) {
	if o.Progress != nil {
		o.Progress(text)
	}
}

func (o ObserverFuncs) OnPreview(text string) {
	if o.Preview != nil {
		o.Preview(text)
	}
}

func (o ObserverFuncs) OnNodes(snapshot nodes.Snapshot) {
	if o.Nodes != nil {
		o.Nodes(snapshot)
	}
}

func (o ObserverFuncs) OnTranscript(conv chat.Conversation) {
	if o.Transcript != nil {
		o.Transcript(conv)
	}
}

func (o ObserverFuncs) OnTrace(chunk string) {
	if o.Trace != nil {
		o.Trace(chunk)
	}
}

func (o ObserverFuncs) OnTraceError(message string) {
	if o.TraceError != nil {
		o.TraceError(message)
	}
}

var _ Observer = ObserverFuncs{}
