package viewer

import (
	"time"

	"github.com/chazu/stlslice/pkg/schedule"
)

// Config tunes a Session.
type Config struct {
	// ThrottleInterval is the minimum time between foreground recomputes.
	ThrottleInterval time.Duration
	// WireframeDebounce is the quiet period before the wireframe is
	// re-clipped in the background.
	WireframeDebounce time.Duration

	EdgeThickness      float32
	WireframeThickness float32

	// LargeMeshTriangles is the size above which wireframe edges are
	// extracted on the background worker instead of during Load.
	LargeMeshTriangles int

	// SampleCells is the tessellation used when a preset loads a sample.
	SampleCells int

	// LogStats logs triangle routing counts after every recompute.
	LogStats bool

	// Clock drives the throttle; nil means the real clock.
	Clock schedule.Clock
}

// DefaultConfig returns the interactive defaults.
func DefaultConfig() Config {
	return Config{
		ThrottleInterval:   schedule.DefaultInterval,
		WireframeDebounce:  schedule.DefaultDebounce,
		EdgeThickness:      2,
		WireframeThickness: 1,
		LargeMeshTriangles: 200_000,
		SampleCells:        64,
	}
}
