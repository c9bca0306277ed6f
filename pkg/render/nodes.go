package render

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/logger"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/nodes"
)

const defaultLogWidth = 60

// Status labels shown in the node table
const (
	LabelIdle    = "idle"
	LabelRunning = "running"
	LabelDone    = "done"
	LabelError   = "error"
)

// Label names the status of a node. Error wins over running and done.
func Label(st nodes.State) string {
	switch {
	case st.IsError:
		return LabelError
	case st.IsRunning:
		return LabelRunning
	case st.IsDone:
		return LabelDone
	default:
		return LabelIdle
	}
}

func badge(st nodes.State, s *Styles) string {
	label := Label(st)
	switch label {
	case LabelError:
		return s.Error.Render(label)
	case LabelRunning:
		return s.Running.Render(label)
	case LabelDone:
		return s.Done.Render(label)
	default:
		return s.Idle.Render(label)
	}
}

// Nodes renders a snapshot as a table: one row per node in graph order with
// its status, how many payloads it logged and the most recent one.
func Nodes(snap nodes.Snapshot, opts Options) string {
	s := opts.styles()
	width := opts.LogWidth
	if width <= 0 {
		width = defaultLogWidth
	}

	rows := make([][]string, 0, snap.Len())
	for _, st := range snap.Nodes() {
		last := ""
		if n := len(st.Log); n > 0 {
			last = truncate(st.Log[n-1], width)
			if opts.Color {
				last = highlightJSON(last)
			}
		}
		rows = append(rows, []string{
			st.Name,
			badge(st, s),
			strconv.Itoa(len(st.Log)),
			last,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(s.Border).
		Headers("NODE", "STATUS", "LOGS", "LAST").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.Header
			}
			return s.Cell
		})
	return t.String()
}

// highlightJSON colors a JSON payload for the terminal. Text chroma cannot
// tokenise is returned unchanged.
func highlightJSON(source string) string {
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	formatter := formatters.Get("terminal16m")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		logger.WithComponent("render").Debug("Failed to tokenize payload", "error", err)
		return source
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, chromastyles.Get("monokai"), iterator); err != nil {
		logger.WithComponent("render").Debug("Failed to format payload", "error", err)
		return source
	}
	return buf.String()
}

// truncate shortens s to n runes, marking the cut with an ellipsis
func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}
