package dashboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"painel/internal/chart"
)

// Surface holds mounted chart instances and legends. Mounting onto a key
// that already holds an instance releases the prior instance first.
// Legends are always replaced whole.
type Surface interface {
	Mount(key string, r chart.Rendered) error
	Release(key string) error
	ReplaceLegend(key string, legend chart.Legend) error
}

// Instance is a chart mounted on a Board.
type Instance struct {
	Rendered chart.Rendered
	released bool
}

// Released reports whether the instance was released by a later mount or an explicit Release.
func (i *Instance) Released() bool { return i.released }

// Board is an in-memory surface.
type Board struct {
	mu       sync.Mutex
	charts   map[string]*Instance
	legends  map[string]chart.Legend
	releases map[string]int
}

var _ Surface = (*Board)(nil)

func NewBoard() *Board {
	return &Board{
		charts:   make(map[string]*Instance),
		legends:  make(map[string]chart.Legend),
		releases: make(map[string]int),
	}
}

func (b *Board) Mount(key string, r chart.Rendered) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releaseLocked(key)
	b.charts[key] = &Instance{Rendered: r}
	return nil
}

func (b *Board) Release(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releaseLocked(key)
	return nil
}

func (b *Board) releaseLocked(key string) {
	if prior, ok := b.charts[key]; ok {
		prior.released = true
		b.releases[key]++
		delete(b.charts, key)
	}
}

func (b *Board) ReplaceLegend(key string, legend chart.Legend) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(legend) == 0 {
		delete(b.legends, key)
		return nil
	}
	b.legends[key] = append(chart.Legend(nil), legend...)
	return nil
}

// Chart returns the live instance mounted under key.
func (b *Board) Chart(key string) (*Instance, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.charts[key]
	return i, ok
}

func (b *Board) Legend(key string) chart.Legend {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.legends[key]
}

// Releases counts the instances released under key.
func (b *Board) Releases(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.releases[key]
}

// Len returns the number of live chart instances.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.charts)
}

// FileSurface writes each chart spec to <dir>/<key>.json and each legend to
// <dir>/<legend key>.html.
type FileSurface struct {
	dir string
}

var _ Surface = (*FileSurface)(nil)

// NewFileSurface creates dir if needed.
func NewFileSurface(dir string) (*FileSurface, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileSurface{dir: dir}, nil
}

func (f *FileSurface) Dir() string { return f.dir }

func (f *FileSurface) Mount(key string, r chart.Rendered) error {
	if err := f.Release(key); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode chart %s: %w", key, err)
	}
	return writeFile(f.path(key, ".json"), data)
}

func (f *FileSurface) Release(key string) error {
	if err := os.Remove(f.path(key, ".json")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("release chart %s: %w", key, err)
	}
	return nil
}

func (f *FileSurface) ReplaceLegend(key string, legend chart.Legend) error {
	path := f.path(key, ".html")
	if len(legend) == 0 {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("clear legend %s: %w", key, err)
		}
		return nil
	}
	var sb strings.Builder
	sb.WriteString("<ul class=\"legend\">\n")
	for _, row := range legend {
		fmt.Fprintf(&sb, "  <li><span class=\"swatch\" style=\"background:%s\"></span>%s</li>\n",
			html.EscapeString(row.Color), row.Text)
	}
	sb.WriteString("</ul>\n")
	return writeFile(path, []byte(sb.String()))
}

func (f *FileSurface) path(key, ext string) string {
	return filepath.Join(f.dir, filepath.Base(key)+ext)
}

// writeFile replaces path atomically.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
