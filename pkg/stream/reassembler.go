package stream

import "strings"

// LineReassembler turns arbitrarily chunked text back into protocol lines.
//
// Lines end with "\n" or "\r\n"; terminators are not part of the returned
// line. Anything after the last terminator of a chunk is kept and prepended
// to the next chunk, so at most one partial line is buffered at any time.
// Splitting happens only at the ASCII '\n' byte, which never occurs inside a
// multi-byte UTF-8 sequence, so a character split across two chunks is
// rejoined intact.
type LineReassembler struct {
	pending string
}

// NewLineReassembler creates an empty reassembler
func NewLineReassembler() *LineReassembler {
	return &LineReassembler{}
}

// Consume appends chunk to the buffered remainder and returns every line
// completed by it, in order.
func (r *LineReassembler) Consume(chunk string) []string {
	if chunk == "" {
		return nil
	}

	data := r.pending + chunk
	var lines []string
	for {
		idx := strings.IndexByte(data, '\n')
		if idx < 0 {
			break
		}
		lines = append(lines, strings.TrimSuffix(data[:idx], "\r"))
		data = data[idx+1:]
	}
	r.pending = data
	return lines
}

// Flush returns the buffered remainder as a final line, if there is one.
// A lone trailing '\r' is the first half of a "\r\n" that never arrived and
// is dropped.
func (r *LineReassembler) Flush() (string, bool) {
	line := strings.TrimSuffix(r.pending, "\r")
	r.pending = ""
	if line == "" {
		return "", false
	}
	return line, true
}

// Pending returns the buffered partial line
func (r *LineReassembler) Pending() string {
	return r.pending
}

// Reset discards any buffered partial line
func (r *LineReassembler) Reset() {
	r.pending = ""
}
