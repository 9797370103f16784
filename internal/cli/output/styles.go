package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds the lipgloss styles used by commands.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Path    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	// Status icons, rendered with String().
	StatusSuccess lipgloss.Style
	StatusChanged lipgloss.Style
	StatusFailed  lipgloss.Style
}

// newStyles builds styles bound to w. Without colour every style renders
// its text unchanged.
func newStyles(w io.Writer, color bool) *Styles {
	re := lipgloss.NewRenderer(w)
	if color {
		re.SetColorProfile(termenv.NewOutput(w).EnvColorProfile())
	} else {
		re.SetColorProfile(termenv.Ascii)
	}
	s := re.NewStyle
	return &Styles{
		Header1: s().Bold(true).Foreground(lipgloss.Color("12")),
		Header2: s().Bold(true),
		Bold:    s().Bold(true),
		Muted:   s().Foreground(lipgloss.Color("8")),
		Path:    s().Foreground(lipgloss.Color("14")),
		Success: s().Foreground(lipgloss.Color("10")),
		Warning: s().Foreground(lipgloss.Color("11")),
		Error:   s().Foreground(lipgloss.Color("9")),

		StatusSuccess: s().Foreground(lipgloss.Color("10")).SetString("✓"),
		StatusChanged: s().Foreground(lipgloss.Color("11")).SetString("~"),
		StatusFailed:  s().Foreground(lipgloss.Color("9")).SetString("✗"),
	}
}
