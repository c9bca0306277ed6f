package render

import (
	"github.com/charmbracelet/lipgloss"
)

// Warm palette shared by every view
var (
	ColorMuted   = lipgloss.Color("#5c5044")
	ColorText    = lipgloss.Color("#ab937b")
	ColorBright  = lipgloss.Color("#f5d7b9")
	ColorError   = lipgloss.Color("#d95f5f")
	ColorRunning = lipgloss.Color("#eb8755")
	ColorDone    = lipgloss.Color("#93b56b")
	ColorInfo    = lipgloss.Color("#61afaf")
	ColorHuman   = lipgloss.Color("#6b93b5")
	ColorRegen   = lipgloss.Color("#976bb5")
)

// Styles holds the lipgloss styles used by the text views
type Styles struct {
	Header      lipgloss.Style
	Cell        lipgloss.Style
	Border      lipgloss.Style
	Idle        lipgloss.Style
	Running     lipgloss.Style
	Done        lipgloss.Style
	Error       lipgloss.Style
	Human       lipgloss.Style
	AI          lipgloss.Style
	Failure     lipgloss.Style
	Regen       lipgloss.Style
	Meta        lipgloss.Style
	Status      lipgloss.Style
	StatusValue lipgloss.Style
}

// DefaultStyles returns the colored styles
func DefaultStyles() *Styles {
	return &Styles{
		Header:      lipgloss.NewStyle().Bold(true).Foreground(ColorBright).Padding(0, 1),
		Cell:        lipgloss.NewStyle().Foreground(ColorText).Padding(0, 1),
		Border:      lipgloss.NewStyle().Foreground(ColorMuted),
		Idle:        lipgloss.NewStyle().Foreground(ColorMuted),
		Running:     lipgloss.NewStyle().Foreground(ColorRunning).Bold(true),
		Done:        lipgloss.NewStyle().Foreground(ColorDone),
		Error:       lipgloss.NewStyle().Foreground(ColorError).Bold(true),
		Human:       lipgloss.NewStyle().Foreground(ColorHuman).Bold(true),
		AI:          lipgloss.NewStyle().Foreground(ColorBright).Bold(true),
		Failure:     lipgloss.NewStyle().Foreground(ColorError),
		Regen:       lipgloss.NewStyle().Foreground(ColorRegen).Italic(true),
		Meta:        lipgloss.NewStyle().Foreground(ColorMuted).Italic(true),
		Status:      lipgloss.NewStyle().Foreground(ColorInfo),
		StatusValue: lipgloss.NewStyle().Foreground(ColorText),
	}
}

// PlainStyles returns styles without color or emphasis, keeping padding so
// tables line up the same way
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Header:      plain.Padding(0, 1),
		Cell:        plain.Padding(0, 1),
		Border:      plain,
		Idle:        plain,
		Running:     plain,
		Done:        plain,
		Error:       plain,
		Human:       plain,
		AI:          plain,
		Failure:     plain,
		Regen:       plain,
		Meta:        plain,
		Status:      plain,
		StatusValue: plain,
	}
}

// Options controls how views are rendered
type Options struct {
	// Color enables ANSI styling and JSON highlighting
	Color bool
	// LogWidth caps the last-log column, in runes. Zero means the default.
	LogWidth int
}

func (o Options) styles() *Styles {
	if o.Color {
		return DefaultStyles()
	}
	return PlainStyles()
}
