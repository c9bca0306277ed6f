package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/chat"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/process"
)

// Transcript renders the conversation, one numbered block per message. The
// numbers are the transcript indexes accepted by regenerate.
func Transcript(conv chat.Conversation, opts Options) string {
	s := opts.styles()

	var b strings.Builder
	for i, msg := range conv.Messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(Message(i, msg, s))
	}
	return b.String()
}

// Message renders a single transcript entry
func Message(index int, msg chat.Message, s *Styles) string {
	role := s.AI.Render(msg.Role)
	content := msg.Content
	if msg.IsHuman() {
		role = s.Human.Render(msg.Role)
	} else if strings.HasPrefix(content, chat.FailurePrefix) {
		content = s.Failure.Render(content)
	}

	header := fmt.Sprintf("[%d] %s", index, role)
	if elapsed, ok := msg.Elapsed(); ok {
		header += " " + s.Meta.Render(formatElapsed(elapsed))
	}
	if msg.Regen {
		header += " " + s.Regen.Render("(regenerating)")
	}
	return header + "\n" + content + "\n"
}

// formatElapsed prints a duration in seconds with one decimal
func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// Status renders the session state with its icon and the latest progress
// text, e.g. "↓ Streaming · 문서 검색 중"
func Status(state process.State, progress string, opts Options) string {
	s := opts.styles()

	label := state.GetDisplayName()
	if icon := state.GetIcon(); icon != "" {
		label = icon + " " + label
	}
	line := s.Status.Render(label)
	if progress != "" {
		line += " · " + s.StatusValue.Render(progress)
	}
	return line
}
