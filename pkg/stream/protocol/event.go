package protocol

import "github.com/tidwall/gjson"

// Kind is the semantic class of a stream event.
type Kind int

const (
	KindUnclassified Kind = iota
	KindRunStarted
	KindNodeUpdate
	KindNodeError
	KindStreamDone
	KindLlmActivity
	KindToolActivity
	KindFinalResult
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindRunStarted:
		return "run_started"
	case KindNodeUpdate:
		return "node_update"
	case KindNodeError:
		return "node_error"
	case KindStreamDone:
		return "stream_done"
	case KindLlmActivity:
		return "llm_activity"
	case KindToolActivity:
		return "tool_activity"
	case KindFinalResult:
		return "final_result"
	default:
		return "unclassified"
	}
}

// Normalized event types forced by classification.
const (
	EventNodeStart = "on_node_start"
	EventNodeError = "on_node_error"
)

// Payload is the body of a data line. JSON payloads keep their raw text;
// anything that is not valid JSON is carried verbatim with JSON unset.
type Payload struct {
	Raw  string
	JSON bool
}

// Get looks up a gjson path in a JSON payload
func (p Payload) Get(path string) gjson.Result {
	if !p.JSON {
		return gjson.Result{}
	}
	return gjson.Get(p.Raw, path)
}

// String returns the payload text as it appears in a node log
func (p Payload) String() string {
	return p.Raw
}

// Event is one classified data line.
type Event struct {
	Kind      Kind
	NodeName  string
	EventType string
	Payload   Payload

	// Progress is the transient status text this event sets, if any.
	Progress    string
	HasProgress bool

	// Fragment is the answer text carried by a FinalResult event.
	Fragment string
}

// Persisted reports whether the event is forwarded to the node projection
// and appended to a node log. LLM activity and unclassified events only
// ever touch transient progress text.
func (e Event) Persisted() bool {
	switch e.Kind {
	case KindRunStarted, KindNodeUpdate, KindNodeError, KindStreamDone, KindToolActivity:
		return true
	default:
		return false
	}
}
