package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	list "github.com/charmbracelet/bubbles/list"

	"github.com/chazu/stlslice/pkg/meshio"
)

type fileItem struct {
	title, desc string
	source      string
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

// refreshDir lists the mesh files in the working directory followed by
// the built-in samples.
func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.status = "read dir error: " + err.Error()
	}
	var items []list.Item
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext == ".stl" || ext == ".3mf" {
			items = append(items, fileItem{title: name, desc: ext, source: filepath.Join(m.cwd, name)})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].(fileItem).Title() < items[j].(fileItem).Title() })
	for _, name := range meshio.SampleNames() {
		items = append(items, fileItem{title: meshio.SamplePrefix + name, desc: "sample", source: meshio.SamplePrefix + name})
	}
	m.l.SetItems(items)
}

// loadSource loads a mesh file or sample into the session.
func (m *Model) loadSource(source string) {
	if err := m.session.LoadSource(source); err != nil {
		m.status = "load error: " + err.Error()
		return
	}
	m.source = source
	if md := m.session.Model(); md != nil {
		m.status = fmt.Sprintf("loaded: %s  triangles=%d", md.Name, md.TriangleCount())
	}
}

// exportPath names the STL written by export, next to the working
// directory: "<model>-sliced.stl".
func (m *Model) exportPath() string {
	name := "model"
	if md := m.session.Model(); md != nil && md.Name != "" {
		name = md.Name
	}
	name = strings.TrimPrefix(name, meshio.SamplePrefix)
	name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return filepath.Join(m.cwd, name+"-sliced.stl")
}
