package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/chazu/stlslice/pkg/engine"
	"github.com/chazu/stlslice/pkg/mesh"
	"github.com/chazu/stlslice/pkg/meshio"
	"github.com/chazu/stlslice/pkg/slice"
	"github.com/chazu/stlslice/pkg/viewer"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Events emitted to the frontend.
const (
	EventLayer = "layer"
	EventFrame = "frame"
)

// layerColors are the default colours per render layer. Cut edges are
// coloured by axis.
var layerColors = map[viewer.Layer]string{
	viewer.LayerMesh:            "#B0B8C4",
	viewer.LayerFill:            "#E67E22",
	viewer.LayerWireframe:       "#2C3E50",
	viewer.CutLayer(mesh.AxisX): "#E74C3C",
	viewer.CutLayer(mesh.AxisY): "#2ECC71",
	viewer.CutLayer(mesh.AxisZ): "#3498DB",
}

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx     context.Context
	engine  *engine.Engine
	session *viewer.Session
	emit    func(event string, data ...interface{})
}

// BoundsData is a clip box in model units.
type BoundsData struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

// FrameData summarises the frame currently on screen.
type FrameData struct {
	Seq              uint64     `json:"seq"`
	Bounds           BoundsData `json:"bounds"`
	Slicing          bool       `json:"slicing"`
	Fill             bool       `json:"fill"`
	Wireframe        bool       `json:"wireframe"`
	Kept             int        `json:"kept"`
	Discarded        int        `json:"discarded"`
	Clipped          int        `json:"clipped"`
	Triangles        int        `json:"triangles"`
	CutEdges         int        `json:"cutEdges"`
	Contours         int        `json:"contours"`
	FillTriangles    int        `json:"fillTriangles"`
	WireframeClipped bool       `json:"wireframeClipped"`
}

// ModelData describes a loaded model.
type ModelData struct {
	Name      string     `json:"name"`
	Triangles int        `json:"triangles"`
	Bounds    BoundsData `json:"bounds"`
	Error     string     `json:"error,omitempty"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// PresetResult is returned by ApplyPreset.
type PresetResult struct {
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
	Frame    FrameData       `json:"frame"`
}

// LayerData is the payload of a layer event: a replacement buffer for one
// render layer.
type LayerData struct {
	Handle string           `json:"handle"`
	Layer  string           `json:"layer"`
	Color  string           `json:"color"`
	Mesh   *mesh.Buffer     `json:"mesh,omitempty"`
	Lines  *mesh.LineBuffer `json:"lines,omitempty"`
}

// NewApp creates a new App with the default viewer configuration.
func NewApp() *App {
	return newApp(viewer.DefaultConfig(), nil)
}

// newApp creates an App. A nil emit sends events through the Wails
// runtime once startup has run.
func newApp(cfg viewer.Config, emit func(string, ...interface{})) *App {
	a := &App{engine: engine.NewEngine(), emit: emit}
	up := &eventUploader{emit: a.emitEvent}
	a.session = viewer.NewSession(cfg, up, up)
	a.session.OnFrame(func(f viewer.Frame) {
		a.emitEvent(EventFrame, frameData(f))
	})
	return a
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	if a.emit == nil {
		a.emit = func(event string, data ...interface{}) {
			runtime.EventsEmit(ctx, event, data...)
		}
	}
}

// shutdown is called by Wails when the window closes.
func (a *App) shutdown(context.Context) {
	a.session.Close()
}

func (a *App) emitEvent(event string, data ...interface{}) {
	if a.emit != nil {
		a.emit(event, data...)
	}
}

// Samples lists the built-in models LoadModel accepts by name.
func (a *App) Samples() []string {
	return meshio.SampleNames()
}

// LoadModel loads an STL or 3MF file, or a built-in sample by name.
func (a *App) LoadModel(source string) ModelData {
	if err := a.session.LoadSource(source); err != nil {
		log.Printf("LoadModel %q: %v", source, err)
		return ModelData{Error: err.Error()}
	}
	m := a.session.Model()
	return ModelData{
		Name:      m.Name,
		Triangles: m.TriangleCount(),
		Bounds:    boundsData(slice.BoundsFromBox(a.session.ModelBounds())),
	}
}

// OpenModel asks the user for a model file and loads it.
func (a *App) OpenModel() ModelData {
	path, err := runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Open model",
		Filters: []runtime.FileFilter{
			{DisplayName: "Meshes (*.stl, *.3mf)", Pattern: "*.stl;*.3mf"},
		},
	})
	if err != nil {
		return ModelData{Error: err.Error()}
	}
	if path == "" {
		return ModelData{}
	}
	return a.LoadModel(path)
}

// SetBound moves one side of the clip box. axis is "x", "y" or "z" and
// side is "min" or "max". Calls are throttled, so the returned frame may
// lag the value; the frame event follows once it is computed.
func (a *App) SetBound(axis, side string, value float64) (FrameData, error) {
	ax, err := parseAxis(axis)
	if err != nil {
		return FrameData{}, err
	}
	var isMin bool
	switch strings.ToLower(side) {
	case "min":
		isMin = true
	case "max":
	default:
		return FrameData{}, fmt.Errorf("side must be min or max, got %q", side)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return FrameData{}, fmt.Errorf("bound must be finite, got %g", value)
	}
	a.session.BoundsChanged(ax, isMin, value)
	return a.Frame(), nil
}

// ResetBounds restores the clip box to the model's bounding box.
func (a *App) ResetBounds() FrameData {
	a.session.ResetBounds()
	return a.Frame()
}

// SetSlicing turns slicing on or off.
func (a *App) SetSlicing(on bool) FrameData {
	a.session.SetSlicing(on)
	return a.Frame()
}

// SetFill turns cross-section caps on or off.
func (a *App) SetFill(on bool) FrameData {
	a.session.SetFill(on)
	return a.Frame()
}

// SetWireframe shows or hides the wireframe overlay.
func (a *App) SetWireframe(on bool) FrameData {
	a.session.SetWireframe(on)
	return a.Frame()
}

// Frame returns the frame currently on screen.
func (a *App) Frame() FrameData {
	return frameData(a.session.Frame())
}

// ApplyPreset evaluates a preset script and applies it to the session.
func (a *App) ApplyPreset(source string) PresetResult {
	result := PresetResult{
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	res, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("ApplyPreset fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Line: w.Line, Col: w.Col, Message: w.Message})
	}
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}

	if err := a.session.ApplyPreset(res.Preset); err != nil {
		log.Printf("ApplyPreset: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	result.Frame = a.Frame()
	return result
}

// Export writes the sliced mesh with cross-section caps to an STL file.
func (a *App) Export(path string) error {
	return a.session.ExportSTL(path)
}

// ExportDialog asks the user for a destination and exports to it. It
// returns the chosen path, or "" if the dialog was cancelled.
func (a *App) ExportDialog() (string, error) {
	path, err := runtime.SaveFileDialog(a.ctx, runtime.SaveDialogOptions{
		Title:           "Export sliced mesh",
		DefaultFilename: "sliced.stl",
		Filters: []runtime.FileFilter{
			{DisplayName: "STL (*.stl)", Pattern: "*.stl"},
		},
	})
	if err != nil || path == "" {
		return "", err
	}
	return path, a.Export(path)
}

func parseAxis(s string) (mesh.Axis, error) {
	switch strings.ToLower(s) {
	case "x":
		return mesh.AxisX, nil
	case "y":
		return mesh.AxisY, nil
	case "z":
		return mesh.AxisZ, nil
	}
	return 0, fmt.Errorf("axis must be x, y or z, got %q", s)
}

func boundsData(b slice.ClipBounds) BoundsData {
	return BoundsData{
		Min: [3]float64{b.Min.X, b.Min.Y, b.Min.Z},
		Max: [3]float64{b.Max.X, b.Max.Y, b.Max.Z},
	}
}

func frameData(f viewer.Frame) FrameData {
	return FrameData{
		Seq:              f.Seq,
		Bounds:           boundsData(f.Bounds),
		Slicing:          f.SlicingActive,
		Fill:             f.FillCrossSections,
		Wireframe:        f.ShowWireframe,
		Kept:             f.Stats.Kept,
		Discarded:        f.Stats.Discarded,
		Clipped:          f.Stats.Clipped,
		Triangles:        len(f.Triangles),
		CutEdges:         f.CutEdgeCount(),
		Contours:         len(f.Contours),
		FillTriangles:    len(f.Fill),
		WireframeClipped: f.WireframeClipped,
	}
}
