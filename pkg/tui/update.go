package tui

import (
	"fmt"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chazu/stlslice/pkg/mesh"
	"github.com/chazu/stlslice/pkg/viewer"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.showSidebar {
			m.l.SetSize(sidebarWidth-2, m.height-1-2)
		}
	case frameMsg:
		// Frames can be offered out of order by concurrent publishers.
		if f := viewer.Frame(msg); f.Seq >= m.frame.Seq {
			m.frame = f
		}
		return m, waitFrame(m.frames)
	case tea.KeyMsg:
		// If list is visible and filtering, send keys to list and ignore global commands
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.presetMode {
			switch msg.String() {
			case "esc":
				m.presetMode = false
				m.ta.Blur()
				m.status = "preset canceled"
				return m, nil
			case "ctrl+s":
				m.applyPreset(m.ta.Value())
				return m, nil
			}
			var cmd tea.Cmd
			m.ta, cmd = m.ta.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "x":
			m.axis = mesh.AxisX
		case "y":
			m.axis = mesh.AxisY
		case "z":
			m.axis = mesh.AxisZ
		case "m":
			m.isMin = !m.isMin
		case "left", "down":
			m.nudge(-1)
		case "right", "up":
			m.nudge(1)
		case "shift+left", "shift+down":
			m.nudge(-coarseSteps)
		case "shift+right", "shift+up":
			m.nudge(coarseSteps)
		case "[":
			if m.step > 0.001 {
				m.step /= 2
			}
			m.status = fmt.Sprintf("step: %.2f%%", m.step*100)
		case "]":
			if m.step < 0.25 {
				m.step *= 2
			}
			m.status = fmt.Sprintf("step: %.2f%%", m.step*100)
		case "v":
			m.look = (m.look + 1) % 3
			m.status = "looking along " + m.look.String()
		case "s":
			on := !m.frame.SlicingActive
			m.session.SetSlicing(on)
			m.status = fmt.Sprintf("slicing: %v", on)
		case "f":
			on := !m.frame.FillCrossSections
			m.session.SetFill(on)
			m.status = fmt.Sprintf("fill: %v", on)
		case "w":
			on := !m.frame.ShowWireframe
			m.session.SetWireframe(on)
			m.status = fmt.Sprintf("wireframe: %v", on)
		case "r":
			m.session.ResetBounds()
			m.status = "bounds reset"
		case "e":
			path := m.exportPath()
			if err := m.session.ExportSTL(path); err != nil {
				m.status = "export error: " + err.Error()
			} else {
				m.status = "exported " + path
			}
		case "p":
			m.presetMode = true
			m.status = "preset mode"
			cmd := m.ta.Focus()
			return m, cmd
		case "tab":
			m.showSidebar = !m.showSidebar
			if m.showSidebar {
				m.refreshDir()
				m.l.SetSize(sidebarWidth-2, m.height-1-2)
			}
		case "h":
			m.helpVisible = !m.helpVisible
		case "enter":
			if m.showSidebar {
				if it, ok := m.l.SelectedItem().(fileItem); ok {
					m.loadSource(it.source)
				}
			}
		}
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

// nudge moves the selected bound by steps increments of the model extent.
func (m *Model) nudge(steps int) {
	if m.session.Model() == nil {
		m.status = "no model loaded"
		return
	}
	box := m.session.ModelBounds()
	extent := mesh.Component(box.Max, m.axis) - mesh.Component(box.Min, m.axis)
	lo, hi := m.session.Bounds().Range(m.axis)
	cur := hi
	if m.isMin {
		cur = lo
	}
	m.session.BoundsChanged(m.axis, m.isMin, cur+float64(steps)*m.step*extent)

	lo, hi = m.session.Bounds().Range(m.axis)
	m.status = fmt.Sprintf("%s: [%.4g, %.4g]", m.axis, lo, hi)
}

// applyPreset evaluates a preset script and applies it to the session.
// The editor stays open when the script has errors.
func (m *Model) applyPreset(source string) {
	res, err := m.engine.Evaluate(source)
	if err != nil {
		m.status = "preset error: " + err.Error()
		return
	}
	if len(res.Errors) > 0 {
		msgs := make([]string, len(res.Errors))
		for i, e := range res.Errors {
			msgs[i] = e.Error()
		}
		m.status = "preset error: " + strings.Join(msgs, "; ")
		return
	}
	if err := m.session.ApplyPreset(res.Preset); err != nil {
		m.status = "preset error: " + err.Error()
		return
	}
	if md := m.session.Model(); md != nil {
		m.source = md.Name
	}
	m.presetMode = false
	m.ta.Blur()
	m.status = "preset applied"
	if n := len(res.Warnings); n > 0 {
		m.status += fmt.Sprintf(" (%d warnings: %s)", n, res.Warnings[0].Message)
	}
}
