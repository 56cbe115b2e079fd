// Package tui is a terminal front end for a viewer.Session. It draws the
// sliced model as braille line art projected along one axis, with cut
// edges coloured per axis and filled cross-sections.
package tui

import (
	"os"

	list "github.com/charmbracelet/bubbles/list"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chazu/stlslice/pkg/engine"
	"github.com/chazu/stlslice/pkg/mesh"
	"github.com/chazu/stlslice/pkg/viewer"
)

const (
	sidebarWidth = 28
	panelWidth   = 26

	defaultStep = 0.02
	coarseSteps = 5
)

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool

	status string

	session *viewer.Session
	engine  *engine.Engine
	frames  chan viewer.Frame
	frame   viewer.Frame
	source  string

	// look is the axis the canvas is projected along.
	look mesh.Axis
	// axis and isMin select the bound the arrow keys move.
	axis  mesh.Axis
	isMin bool
	// step is the fraction of the model extent moved per key press.
	step float64

	// File explorer
	cwd string
	l   list.Model

	// preset editor
	presetMode bool
	ta         textarea.Model
}

// frameMsg carries a frame published by the session.
type frameMsg viewer.Frame

// New creates a model driving s. Frames the session publishes from any
// goroutine are delivered to Update as messages.
func New(s *viewer.Session, eng *engine.Engine) Model {
	m := Model{
		helpVisible: true,
		status:      "stlslice ready",
		session:     s,
		engine:      eng,
		frames:      make(chan viewer.Frame, 1),
		frame:       s.Frame(),
		look:        mesh.AxisZ,
		axis:        mesh.AxisX,
		isMin:       false,
		step:        defaultStep,
	}
	s.OnFrame(func(f viewer.Frame) { offer(m.frames, f) })

	m.cwd, _ = os.Getwd()
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Models"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)

	m.ta = textarea.New()
	m.ta.Placeholder = "(clip-frac :x 0 0.5) (slicing :on) ; ctrl+s applies, esc cancels"
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(8)
	m.refreshDir()
	return m
}

// NewWithSource loads source at launch.
func NewWithSource(s *viewer.Session, eng *engine.Engine, source string) Model {
	m := New(s, eng)
	m.loadSource(source)
	return m
}

func (m Model) Init() tea.Cmd {
	return waitFrame(m.frames)
}

// waitFrame blocks until the session publishes a frame.
func waitFrame(ch <-chan viewer.Frame) tea.Cmd {
	return func() tea.Msg {
		return frameMsg(<-ch)
	}
}

// offer puts f in ch, replacing a frame that has not been picked up yet.
func offer(ch chan viewer.Frame, f viewer.Frame) {
	for {
		select {
		case ch <- f:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
