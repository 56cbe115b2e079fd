package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chazu/stlslice/pkg/mesh"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	headerHeight := 1
	footerHeight := 2
	contentHeight := max(4, m.height-headerHeight-footerHeight)
	contentWidth := max(10, m.width)

	if m.showSidebar {
		m.l.SetSize(sidebarWidth-2, contentHeight-2)
	}

	title := " stlslice ─ terminal cross-section viewer "
	if md := m.session.Model(); md != nil {
		title += "─ " + md.Name + " "
	}
	header := lipgloss.NewStyle().Width(contentWidth).Render(titleStyle.Render(title))

	canvasWidth := contentWidth - panelWidth - 1
	if m.showSidebar {
		canvasWidth -= sidebarWidth + 1
	}
	canvasWidth = max(8, canvasWidth)

	var canvas string
	switch {
	case m.presetMode:
		m.ta.SetWidth(canvasWidth)
		m.ta.SetHeight(min(contentHeight, 12))
		canvas = m.ta.View()
	case m.session.Model() == nil:
		canvas = lipgloss.Place(canvasWidth, contentHeight, lipgloss.Center, lipgloss.Center,
			dimStyle.Render("no model loaded (tab opens the model list)"))
	default:
		canvas = renderCanvas(m.frame, m.look, m.session.ModelBounds(), canvasWidth, contentHeight)
	}
	canvas = lipgloss.NewStyle().Width(canvasWidth).Height(contentHeight).Render(canvas)

	cols := []string{canvas, " ", m.renderPanel(contentHeight)}
	if m.showSidebar {
		sidebar := lipgloss.NewStyle().Width(sidebarWidth).Render(m.l.View())
		cols = append([]string{sidebar, " "}, cols...)
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	status := dimStyle.Render(" " + m.status + " ")
	if strings.Contains(m.status, "error") {
		status = errStyle.Render(" " + m.status + " ")
	}
	footer := lipgloss.NewStyle().Width(contentWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, status, m.renderHelp()))

	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return appStyle.Width(contentWidth).Height(m.height).Render(ui)
}

// renderPanel shows the clip bounds, the view toggles, and the last
// recompute's counts.
func (m Model) renderPanel(height int) string {
	f := m.frame
	var lines []string
	lines = append(lines, titleStyle.Render("bounds"))
	for a := mesh.AxisX; a <= mesh.AxisZ; a++ {
		lo, hi := f.Bounds.Range(a)
		los, his := fmt.Sprintf("%9.4g", lo), fmt.Sprintf("%9.4g", hi)
		if a == m.axis {
			if m.isMin {
				los = activeStyle.Render(los)
			} else {
				his = activeStyle.Render(his)
			}
		}
		lines = append(lines, cutStyles[a].Render(a.String())+" "+los+" "+his)
	}
	lines = append(lines, "",
		titleStyle.Render("view"),
		"look    "+m.look.String(),
		"slicing "+onOff(f.SlicingActive),
		"fill    "+onOff(f.FillCrossSections),
		"wire    "+onOff(f.ShowWireframe),
		fmt.Sprintf("step    %.2f%%", m.step*100),
		"",
		titleStyle.Render("result"),
		fmt.Sprintf("kept    %d", f.Stats.Kept),
		fmt.Sprintf("clipped %d", f.Stats.Clipped),
		fmt.Sprintf("dropped %d", f.Stats.Discarded),
		fmt.Sprintf("cuts    %d", f.CutEdgeCount()),
		fmt.Sprintf("loops   %d", len(f.Contours)),
		fmt.Sprintf("fill    %d", len(f.Fill)),
	)
	if f.ShowWireframe && !f.WireframeClipped && f.SlicingActive {
		lines = append(lines, dimStyle.Render("wireframe pending"))
	}
	return boxStyle.Width(panelWidth - 2).MaxHeight(height).Render(strings.Join(lines, "\n"))
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return dimStyle.Render("off")
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"x/y/z axis",
		"m min/max",
		"←→ move",
		"[ ] step",
		"v look",
		"s slice",
		"f fill",
		"w wire",
		"r reset",
		"p preset",
		"e export",
		"Tab models",
		"h help",
		"q quit",
	}
	if m.presetMode {
		keys = []string{"ctrl+s apply", "esc cancel"}
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
