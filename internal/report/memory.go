package report

import (
	"context"
	"sync"
)

// MemoryWriter keeps written sheets in memory. Used for dry runs and tests.
type MemoryWriter struct {
	mu     sync.Mutex
	sheets map[string][][]any
	order  []string
}

var _ Writer = (*MemoryWriter)(nil)

func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{sheets: make(map[string][][]any)}
}

func (m *MemoryWriter) WriteSheet(_ context.Context, title string, rows [][]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sheets[title]; !ok {
		m.order = append(m.order, title)
	}
	m.sheets[title] = rows
	return nil
}

// Sheet returns the rows last written to title.
func (m *MemoryWriter) Sheet(title string) ([][]any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.sheets[title]
	return rows, ok
}

// Titles lists sheets in first-write order.
func (m *MemoryWriter) Titles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}
