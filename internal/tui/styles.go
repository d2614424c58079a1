package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme colors used throughout the UI
const (
	ColorAccent    = "86"  // Cyan/green - titles
	ColorHighlight = "205" // Magenta - selection, focused borders
	ColorDanger    = "196" // Red - delete controls
	ColorPrimary   = "33"  // Blue - submit control
	ColorMuted     = "241" // Gray - hints, borders
	ColorText      = "252" // Light gray - normal text
	ColorWarning   = "208" // Orange - validation feedback
	ColorOnColor   = "231" // White - text on colored backgrounds
)

// classSheet maps the markup's stylesheet class names onto terminal styles.
// Classes without an entry render unstyled.
var classSheet = map[string]lipgloss.Style{
	"card": lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorMuted)).
		Padding(0, 1),
	"card-title": lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccent)),
	"alert": lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		Padding(0, 1),
	"alert-warning": lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorWarning)),
	"btn": lipgloss.NewStyle().
		Padding(0, 1),
	"btn-primary": lipgloss.NewStyle().
		Background(lipgloss.Color(ColorPrimary)).
		Foreground(lipgloss.Color(ColorOnColor)),
	"btn-danger": lipgloss.NewStyle().
		Background(lipgloss.Color(ColorDanger)).
		Foreground(lipgloss.Color(ColorOnColor)),
	"text-light": lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorText)),
	// Cards have no background in the terminal, so dark text keeps the
	// normal foreground.
	"text-dark": lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorText)),
	"mt-3": lipgloss.NewStyle().
		MarginTop(1),
	"mb-4": lipgloss.NewStyle().
		MarginBottom(1),
}

// tagSheet styles elements by tag; class styles wrap the result.
var tagSheet = map[string]lipgloss.Style{
	"h1": lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccent)).
		MarginBottom(1),
	"h5": lipgloss.NewStyle().
		Bold(true),
}

// Styles holds the host's own styles, outside the class contract.
var Styles = struct {
	Selected lipgloss.Style
	Row      lipgloss.Style
	Input    lipgloss.Style
	Focused  lipgloss.Style
	Hint     lipgloss.Style
}{
	Selected: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHighlight)).
		Bold(true),
	Row: lipgloss.NewStyle(),
	Input: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorMuted)).
		Padding(0, 1),
	Focused: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorHighlight)).
		Padding(0, 1),
	Hint: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
}
