package session_test

import (
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/chat"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/nodes"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/process"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/session"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/testutil/fixtures"
)

// recording collects everything a session reports
type recording struct {
	states      []process.State
	progress    []string
	previews    []string
	snapshots   []nodes.Snapshot
	transcripts []chat.Conversation
	trace       []string
	traceErrors []string
}

func (r *recording) observer() session.ObserverFuncs {
	return session.ObserverFuncs{
		State:      func(s process.State) { r.states = append(r.states, s) },
		Progress:   func(text string) { r.progress = append(r.progress, text) },
		Preview:    func(text string) { r.previews = append(r.previews, text) },
		Nodes:      func(s nodes.Snapshot) { r.snapshots = append(r.snapshots, s) },
		Transcript: func(c chat.Conversation) { r.transcripts = append(r.transcripts, c) },
		Trace:      func(chunk string) { r.trace = append(r.trace, chunk) },
		TraceError: func(msg string) { r.traceErrors = append(r.traceErrors, msg) },
	}
}

func graph() *nodes.Graph {
	var ns []nodes.Node
	for _, n := range fixtures.GraphNodes {
		ns = append(ns, nodes.Node{ID: n.ID, Name: n.Name})
	}
	g, err := nodes.NewGraph(ns...)
	if err != nil {
		panic(err)
	}
	return g
}

func lastMessage(store *chat.Store) chat.Message {
	msg, ok := chat.GetLastMessage(store.Load())
	if !ok {
		panic("empty transcript")
	}
	return msg
}
