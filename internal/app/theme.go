package app

import (
	"image/color"

	"charm.land/lipgloss/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	historyPanePaddingHorizontal = 1
	historyPaneBorderRows        = 2
)

var (
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	pausedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("179")).Bold(true)
	comboStyle       = lipgloss.NewStyle().Bold(true).Padding(1, 2)
	historyPaneStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("238")).
				Padding(0, historyPanePaddingHorizontal)
	historyEntryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

// Fading blends toward this background; terminals do not report theirs
// reliably.
var fadeBackground = colorful.Color{R: 0, G: 0, B: 0}

// fadeColor returns base blended toward the background as opacity drops.
// Colors that cannot be parsed are returned unchanged.
func fadeColor(base string, opacity float64) color.Color {
	c := lipgloss.Color(base)
	if opacity >= 1 {
		return c
	}
	start, ok := colorful.MakeColor(c)
	if !ok {
		return c
	}
	opacity = max(opacity, 0)
	return start.BlendRgb(fadeBackground, 1-opacity).Clamped()
}
