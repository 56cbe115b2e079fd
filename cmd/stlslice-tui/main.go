package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chazu/stlslice/pkg/engine"
	"github.com/chazu/stlslice/pkg/tui"
	"github.com/chazu/stlslice/pkg/viewer"
)

func main() {
	cfg := viewer.DefaultConfig()
	flag.DurationVar(&cfg.ThrottleInterval, "throttle", cfg.ThrottleInterval, "minimum time between recomputes while dragging")
	flag.DurationVar(&cfg.WireframeDebounce, "debounce", cfg.WireframeDebounce, "quiet period before the wireframe is re-clipped")
	flag.IntVar(&cfg.LargeMeshTriangles, "large", cfg.LargeMeshTriangles, "triangle count above which wireframe extraction runs in the background")
	flag.IntVar(&cfg.SampleCells, "cells", cfg.SampleCells, "tessellation cells for built-in samples")
	flag.BoolVar(&cfg.LogStats, "stats", false, "log triangle counts after every recompute")
	logPath := flag.String("log", "", "write logs to this file (default: discard)")
	presetPath := flag.String("preset", "", "apply a preset script after loading")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [model.stl | model.3mf | sample:name]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// The alt screen owns the terminal.
	if *logPath != "" {
		f, err := tea.LogToFile(*logPath, "stlslice")
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	s := viewer.NewSession(cfg, nil, nil)
	defer s.Close()
	eng := engine.NewEngine()

	var m tui.Model
	if flag.NArg() > 0 {
		m = tui.NewWithSource(s, eng, flag.Arg(0))
	} else {
		m = tui.New(s, eng)
	}

	if *presetPath != "" {
		if err := applyPreset(s, eng, *presetPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func applyPreset(s *viewer.Session, eng *engine.Engine, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("preset: %w", err)
	}
	res, err := eng.Evaluate(string(src))
	if err != nil {
		return fmt.Errorf("preset %s: %w", path, err)
	}
	if len(res.Errors) > 0 {
		return fmt.Errorf("preset %s: %w", path, res.Errors[0])
	}
	return s.ApplyPreset(res.Preset)
}
