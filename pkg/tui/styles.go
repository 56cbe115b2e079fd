package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/chazu/stlslice/pkg/mesh"
)

// Styles
var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	borderCol = lipgloss.Color("#243141")

	appStyle    = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(baseDimFg)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C"))
	activeStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true).Underline(true)

	// Canvas layers, bottom to top.
	meshStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4B5563"))
	wireStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
	fillStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E67E22"))
	cutStyles = [3]lipgloss.Style{
		mesh.AxisX: lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C")),
		mesh.AxisY: lipgloss.NewStyle().Foreground(lipgloss.Color("#2ECC71")),
		mesh.AxisZ: lipgloss.NewStyle().Foreground(lipgloss.Color("#3498DB")),
	}
)
