package nodes

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateNode is returned when a node ID or name is registered twice
	ErrDuplicateNode = errors.New("duplicate node")
	// ErrInvalidNode is returned for a node without an ID or name
	ErrInvalidNode = errors.New("node needs an id and a name")
)

// Node is one unit of execution in an agent graph. ID is the stable key;
// Name is what the agent reports in its event stream.
type Node struct {
	ID   string `mapstructure:"id" yaml:"id"`
	Name string `mapstructure:"name" yaml:"name"`
}

// Graph is the set of nodes a chat view tracks, in registration order.
type Graph struct {
	nodes  []Node
	byName map[string]string
	byID   map[string]bool
}

// NewGraph creates a graph from nodes, rejecting duplicates
func NewGraph(nodes ...Node) (*Graph, error) {
	g := &Graph{
		byName: make(map[string]string),
		byID:   make(map[string]bool),
	}
	for _, n := range nodes {
		if err := g.Add(n); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Add registers a node
func (g *Graph) Add(n Node) error {
	if n.ID == "" || n.Name == "" {
		return fmt.Errorf("%w: %+v", ErrInvalidNode, n)
	}
	if g.byID[n.ID] {
		return fmt.Errorf("%w: id %q", ErrDuplicateNode, n.ID)
	}
	if _, exists := g.byName[n.Name]; exists {
		return fmt.Errorf("%w: name %q", ErrDuplicateNode, n.Name)
	}

	g.nodes = append(g.nodes, n)
	g.byName[n.Name] = n.ID
	g.byID[n.ID] = true
	return nil
}

// Lookup resolves a reported node name to its stable ID. Name lookup only
// exists for the wire protocol; everything past it works with IDs.
func (g *Graph) Lookup(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	id, ok := g.byName[name]
	return id, ok
}

// register adds a node for a name seen on the wire and returns its ID
func (g *Graph) register(name string) string {
	id := fmt.Sprintf("auto-%d", len(g.nodes)+1)
	for g.byID[id] {
		id += "_"
	}
	g.nodes = append(g.nodes, Node{ID: id, Name: name})
	g.byName[name] = id
	g.byID[id] = true
	return id
}

// Nodes returns the registered nodes in order
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Len returns the number of registered nodes
func (g *Graph) Len() int {
	return len(g.nodes)
}
