package index

import (
	"context"
	"sync"

	"github.com/mohammad-safakhou/hrdesk/internal/rag/chunker"
)

// Manager holds the current index behind an atomically-swapped reference.
// Searching against a manager that was never built returns no chunks: callers
// treat that as "no evidence available", not as an error.
type Manager struct {
	mu  sync.RWMutex
	idx *Index
}

func NewManager() *Manager { return &Manager{} }

// Swap replaces the served index with a fully built one. Readers either see
// the old index or the new one, never a partial build.
func (m *Manager) Swap(ix *Index) {
	m.mu.Lock()
	m.idx = ix
	m.mu.Unlock()
}

// Search retrieves the top-k chunks for the query, or nothing when no index
// has been built.
func (m *Manager) Search(ctx context.Context, query string, k int) ([]chunker.Chunk, error) {
	m.mu.RLock()
	ix := m.idx
	m.mu.RUnlock()
	if ix == nil {
		return nil, nil
	}
	return ix.Search(ctx, query, k)
}

// Size reports the chunk count of the served index, zero when unbuilt.
func (m *Manager) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.idx == nil {
		return 0
	}
	return m.idx.Size()
}
