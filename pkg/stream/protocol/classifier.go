package protocol

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// Progress texts shown while a run is in flight.
const (
	ProgressRunning = "처리중..."
	ProgressUpdates = "업데이트 처리중..."
	ProgressError   = "에러"
	ProgressLLM     = "LLM 처리중..."
	ProgressTool    = "툴 처리중: "
)

// DoneMessage marks the end of the agent's output.
const DoneMessage = "[DONE]"

const toolPreviewRunes = 15

// rule is one row of the classification table. The table is checked top to
// bottom and the first matching row wins, even when a payload has several
// of the probed keys.
type rule struct {
	kind  Kind
	match func(Payload) bool
	apply func(*Event)
}

var rules = []rule{
	{KindRunStarted, has("run_id"), func(e *Event) {
		e.setProgress(ProgressRunning)
	}},
	{KindNodeUpdate, has("updates"), func(e *Event) {
		e.EventType = EventNodeStart
		e.setProgress(ProgressUpdates)
	}},
	{KindNodeUpdate, has("progress"), func(e *Event) {
		e.EventType = EventNodeStart
		e.setProgress(e.Payload.Get("progress").String())
	}},
	{KindNodeError, has("error"), func(e *Event) {
		e.EventType = EventNodeError
		e.setProgress(ProgressError)
	}},
	{KindNodeError, has("status_code"), func(e *Event) {
		e.EventType = EventNodeError
		e.setProgress(ProgressError)
	}},
	{KindStreamDone, isDone, nil},
	{KindLlmActivity, has("llm"), func(e *Event) {
		e.setProgress(ProgressLLM)
	}},
	{KindToolActivity, has("tool"), func(e *Event) {
		e.setProgress(ProgressTool + truncateRunes(toolContent(e.Payload.Get("tool")), toolPreviewRunes))
	}},
	{KindFinalResult, has("final_result"), func(e *Event) {
		e.Fragment = stringify(e.Payload.Get("final_result"))
	}},
}

func has(key string) func(Payload) bool {
	return func(p Payload) bool {
		return p.Get(key).Exists()
	}
}

func isDone(p Payload) bool {
	msg := p.Get("message")
	return msg.Type == gjson.String && msg.Str == DoneMessage
}

func (e *Event) setProgress(text string) {
	e.Progress = text
	e.HasProgress = true
}

// Classify turns one data payload into an Event. It is pure: the same
// eventType and data always give the same result. Data that is not valid
// JSON is kept as a raw string and ends up unclassified.
func Classify(eventType, data string) Event {
	ev := Event{
		Kind:      KindUnclassified,
		EventType: eventType,
		Payload:   Payload{Raw: data, JSON: gjson.Valid(data)},
	}
	if !ev.Payload.JSON {
		return ev
	}

	ev.NodeName = resolveNodeName(ev.Payload)
	for _, r := range rules {
		if !r.match(ev.Payload) {
			continue
		}
		ev.Kind = r.kind
		if r.apply != nil {
			r.apply(&ev)
		}
		break
	}
	return ev
}

// resolveNodeName finds the graph node an event belongs to. Agents report it
// under different keys depending on the event source.
func resolveNodeName(p Payload) string {
	for _, path := range []string{"node", "node_name", "metadata.langgraph_node"} {
		if r := p.Get(path); r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}

	var name string
	if updates := p.Get("updates"); updates.IsObject() {
		updates.ForEach(func(key, _ gjson.Result) bool {
			name = key.String()
			return false
		})
	}
	return name
}

func toolContent(tool gjson.Result) string {
	if tool.Type == gjson.String {
		return tool.Str
	}
	if content := tool.Get("content"); content.Type == gjson.String {
		return content.Str
	}
	return tool.Raw
}

// stringify renders a JSON value as answer text: strings verbatim, anything
// else as its JSON source.
func stringify(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.Str
	}
	return v.Raw
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// PartialFragment reads the answer text out of a final_result payload whose
// line has not fully arrived yet, such as `{"final_result":"He`. It only
// looks at payloads that are not yet valid JSON and returns false when the
// payload does not start a final_result string.
func PartialFragment(data string) (string, bool) {
	if gjson.Valid(data) {
		return "", false
	}

	i := valueOffset(data, "final_result")
	if i < 0 {
		return "", false
	}
	rest := strings.TrimLeft(data[i:], " \t")
	if !strings.HasPrefix(rest, `"`) {
		return "", false
	}
	rest = rest[1:]

	var b strings.Builder
	for j := 0; j < len(rest); j++ {
		c := rest[j]
		if c == '"' {
			break
		}
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if j+1 >= len(rest) {
			break
		}
		j++
		switch rest[j] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'u':
			r, n, ok := unicodeEscape(rest[j-1:])
			if !ok {
				return trimPartialRune(b.String()), true
			}
			b.WriteRune(r)
			j += n - 2
		default:
			b.WriteByte(rest[j])
		}
	}
	return trimPartialRune(b.String()), true
}

// valueOffset returns the offset just past the colon that follows key in
// the outermost object of a possibly truncated JSON text, or -1. Text
// inside string values and nested objects is never taken for the key.
func valueOffset(data, key string) int {
	depth := 0
	wantKey := false
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '{':
			depth++
			wantKey = depth == 1
		case '[':
			depth++
			wantKey = false
		case '}', ']':
			depth--
			wantKey = false
		case ',':
			wantKey = depth == 1
		case '"':
			end := stringEnd(data, i)
			if end < 0 {
				return -1
			}
			if wantKey && data[i+1:end] == key {
				rest := strings.TrimLeft(data[end+1:], " \t")
				if !strings.HasPrefix(rest, ":") {
					return -1
				}
				return len(data) - len(rest) + 1
			}
			wantKey = false
			i = end
		}
	}
	return -1
}

// stringEnd returns the index of the quote closing the string that opens at
// start, or -1 if the string is cut off.
func stringEnd(data string, start int) int {
	for j := start + 1; j < len(data); j++ {
		switch data[j] {
		case '\\':
			j++
		case '"':
			return j
		}
	}
	return -1
}

// unicodeEscape decodes the \uXXXX escape at the start of s, joining a
// surrogate pair into one rune. It reports the bytes consumed, and false
// when the escape, or the second half of a pair, has not fully arrived.
func unicodeEscape(s string) (rune, int, bool) {
	if len(s) < 6 {
		return 0, 0, false
	}
	v, err := strconv.ParseUint(s[2:6], 16, 32)
	if err != nil {
		return utf8.RuneError, 6, true
	}
	r := rune(v)
	if !utf16.IsSurrogate(r) {
		return r, 6, true
	}
	if r >= 0xDC00 {
		return utf8.RuneError, 6, true
	}
	if len(s) < 12 {
		return 0, 0, false
	}
	if s[6] != '\\' || s[7] != 'u' {
		return utf8.RuneError, 6, true
	}
	low, err := strconv.ParseUint(s[8:12], 16, 32)
	if err != nil {
		return utf8.RuneError, 6, true
	}
	if pair := utf16.DecodeRune(r, rune(low)); pair != utf8.RuneError {
		return pair, 12, true
	}
	return utf8.RuneError, 6, true
}

// trimPartialRune drops a multi-byte character cut off at the end of s
func trimPartialRune(s string) string {
	for n := 0; n < utf8.UTFMax && len(s) > 0 && !utf8.ValidString(s); n++ {
		s = s[:len(s)-1]
	}
	return s
}

// Field identifies the kind of protocol line.
type Field int

const (
	FieldEvent Field = iota
	FieldData
)

// Line is a parsed protocol line.
type Line struct {
	Field Field
	Value string
}

// ParseLine recognizes "event:" and "data:" lines. One space after the
// colon is part of the framing and is removed. Blank lines, ":" comments
// and any other field are not protocol lines.
func ParseLine(line string) (Line, bool) {
	switch {
	case strings.HasPrefix(line, "event:"):
		return Line{Field: FieldEvent, Value: strings.TrimSpace(line[len("event:"):])}, true
	case strings.HasPrefix(line, "data:"):
		return Line{Field: FieldData, Value: strings.TrimPrefix(line[len("data:"):], " ")}, true
	default:
		return Line{}, false
	}
}

// Parser classifies a sequence of lines. An "event:" line sets the label
// for the next "data:" line only.
type Parser struct {
	pending string
}

// NewParser creates a parser with no pending label
func NewParser() *Parser {
	return &Parser{}
}

// Feed consumes one line and returns the event it completes, if any.
func (p *Parser) Feed(line string) (Event, bool) {
	l, ok := ParseLine(line)
	if !ok {
		return Event{}, false
	}

	if l.Field == FieldEvent {
		p.pending = l.Value
		return Event{}, false
	}

	eventType := p.pending
	p.pending = ""
	return Classify(eventType, l.Value), true
}

// Reset clears the pending label
func (p *Parser) Reset() {
	p.pending = ""
}
