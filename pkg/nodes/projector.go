package nodes

import (
	"slices"
	"sync/atomic"

	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/logger"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/stream/protocol"
)

// State is the runtime status of one node as shown in the graph view.
type State struct {
	ID        string   `json:"nodeId"`
	Name      string   `json:"name"`
	IsRunning bool     `json:"isRunning"`
	IsDone    bool     `json:"isDone"`
	IsError   bool     `json:"isError"`
	Log       []string `json:"log"`
}

// Snapshot is an immutable view of every node's state. A new Snapshot is
// built for each update; existing ones are never modified.
type Snapshot struct {
	order  []string
	states map[string]State
}

// Baseline returns the all-idle snapshot for a graph
func Baseline(g *Graph) Snapshot {
	s := Snapshot{
		order:  make([]string, 0, g.Len()),
		states: make(map[string]State, g.Len()),
	}
	for _, n := range g.nodes {
		s.order = append(s.order, n.ID)
		s.states[n.ID] = State{ID: n.ID, Name: n.Name}
	}
	return s
}

// Nodes returns node states in graph order
func (s Snapshot) Nodes() []State {
	out := make([]State, 0, len(s.order))
	for _, id := range s.order {
		st := s.states[id]
		st.Log = slices.Clone(st.Log)
		out = append(out, st)
	}
	return out
}

// Node returns the state of one node
func (s Snapshot) Node(id string) (State, bool) {
	st, ok := s.states[id]
	if ok {
		st.Log = slices.Clone(st.Log)
	}
	return st, ok
}

// Len returns the number of nodes in the snapshot
func (s Snapshot) Len() int {
	return len(s.order)
}

// with returns the snapshot that results from applying ev to node id.
// The target becomes running or errored according to the event type and
// gets the payload appended to its log; every other node that was running
// is marked done.
func (s Snapshot) with(id, name string, ev protocol.Event) Snapshot {
	next := Snapshot{
		order:  s.order,
		states: make(map[string]State, len(s.states)+1),
	}
	for k, st := range s.states {
		if k != id && st.IsRunning {
			st.IsRunning = false
			st.IsDone = true
		}
		next.states[k] = st
	}

	target, known := s.states[id]
	if !known {
		next.order = append(slices.Clone(s.order), id)
		target = State{ID: id, Name: name}
	}
	target.IsRunning = ev.EventType == protocol.EventNodeStart
	target.IsDone = false
	target.IsError = ev.EventType == protocol.EventNodeError
	target.Log = append(slices.Clone(target.Log), ev.Payload.String())
	next.states[id] = target

	return next
}

// Fold applies events to initial in order, resolving node names against g.
// Events naming an unknown node leave the snapshot unchanged.
func Fold(g *Graph, initial Snapshot, events ...protocol.Event) Snapshot {
	s := initial
	for _, ev := range events {
		if id, ok := g.Lookup(ev.NodeName); ok {
			s = s.with(id, ev.NodeName, ev)
		}
	}
	return s
}

// Option configures a Projector
type Option func(*Projector)

// WithAutoRegister makes the projector add nodes it has not seen before
// instead of ignoring their events.
func WithAutoRegister() Option {
	return func(p *Projector) {
		p.autoRegister = true
	}
}

// Projector folds persisted stream events into per-node state. The current
// snapshot is swapped atomically, so readers on other goroutines always see
// a complete update.
type Projector struct {
	graph        *Graph
	autoRegister bool
	current      atomic.Pointer[Snapshot]
}

// NewProjector creates a projector over g with every node at baseline
func NewProjector(g *Graph, opts ...Option) *Projector {
	if g == nil {
		g, _ = NewGraph()
	}
	p := &Projector{graph: g}
	for _, opt := range opts {
		opt(p)
	}
	p.Reset()
	return p
}

// Apply projects one event. It returns false, leaving state untouched, when
// the event has no node name or names a node the graph does not know.
func (p *Projector) Apply(ev protocol.Event) bool {
	log := logger.WithComponent("node_projector")

	id, ok := p.graph.Lookup(ev.NodeName)
	if !ok {
		if !p.autoRegister || ev.NodeName == "" {
			log.Debug("Event for unknown node ignored", "node", ev.NodeName, "kind", ev.Kind.String())
			return false
		}
		id = p.graph.register(ev.NodeName)
		log.Debug("Registered node", "node", ev.NodeName, "id", id)
	}

	next := p.current.Load().with(id, ev.NodeName, ev)
	p.current.Store(&next)
	return true
}

// Snapshot returns the current node states
func (p *Projector) Snapshot() Snapshot {
	return *p.current.Load()
}

// Reset puts every node back to idle with an empty log
func (p *Projector) Reset() {
	base := Baseline(p.graph)
	p.current.Store(&base)
}

// Graph returns the graph the projector resolves names against
func (p *Projector) Graph() *Graph {
	return p.graph
}
