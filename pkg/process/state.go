package process

import "fmt"

// State is the lifecycle stage of one stream session
type State string

const (
	// StateIdle indicates no exchange is in flight
	StateIdle State = ""

	// StateSending indicates the request is built and the stream is opening
	StateSending State = "sending"

	// StateStreaming indicates chunks are arriving
	StateStreaming State = "streaming"

	// StateFinalizing indicates the stream ended and the transcript is being updated
	StateFinalizing State = "finalizing"
)

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// GetIcon returns the appropriate icon for a given process state
func (s State) GetIcon() string {
	switch s {
	case StateSending:
		return "↑"
	case StateStreaming:
		return "↓"
	case StateFinalizing:
		return "✓"
	default:
		return ""
	}
}

// GetDisplayName returns a human-readable name for the state
func (s State) GetDisplayName() string {
	switch s {
	case StateSending:
		return "Sending"
	case StateStreaming:
		return "Streaming"
	case StateFinalizing:
		return "Finalizing"
	case StateIdle:
		return "Idle"
	default:
		return ""
	}
}

// IsActive reports whether an exchange is in flight
func (s State) IsActive() bool {
	return s != StateIdle
}

// transitions lists the legal next states. A stream may end or fail before
// its first chunk, so Sending can go straight to Finalizing.
var transitions = map[State][]State{
	StateIdle:       {StateSending},
	StateSending:    {StateStreaming, StateFinalizing},
	StateStreaming:  {StateStreaming, StateFinalizing},
	StateFinalizing: {StateIdle},
}

// CanTransition reports whether moving from s to next is legal
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition returns next if the move is legal, otherwise an error
func (s State) Transition(next State) (State, error) {
	if !s.CanTransition(next) {
		return s, fmt.Errorf("invalid session transition %s -> %s", s.GetDisplayName(), next.GetDisplayName())
	}
	return next, nil
}
