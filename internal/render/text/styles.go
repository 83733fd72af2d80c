package text

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles are the lipgloss styles used by the text renderer.
type Styles struct {
	renderer *lipgloss.Renderer

	Panel   lipgloss.Style
	Key     lipgloss.Style
	Muted   lipgloss.Style
	Control lipgloss.Style
	Focus   lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles builds styles for w. Without styling every style renders plain text.
func NewStyles(w io.Writer, styled bool) Styles {
	r := lipgloss.NewRenderer(w)
	if styled {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return Styles{
		renderer: r,
		Panel:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("170")),
		Key:      r.NewStyle().Foreground(lipgloss.Color("75")),
		Muted:    r.NewStyle().Foreground(lipgloss.Color("241")),
		Control:  r.NewStyle().Foreground(lipgloss.Color("214")),
		Focus:    r.NewStyle().Reverse(true),
		Error:    r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}

// Color returns a style with the given hex foreground.
func (s Styles) Color(hex string) lipgloss.Style {
	return s.renderer.NewStyle().Foreground(lipgloss.Color(hex))
}
