package storage

import (
	"sort"
	"sync"

	"github.com/josefjadrny/go-idb/pkg/domain"
)

var _ domain.CachingAdapter = (*MemoryAdapter)(nil)

// MemoryAdapter keeps artifacts in process memory. Collections bound to it
// run in cached mode and hand it their live data map on every commit, so the
// adapter stores references rather than copies. Reads return a fresh map:
// records are never mutated in place, so sharing them is safe, but the
// id-to-record map belongs to the collection that committed it and must not
// grow behind that collection's indexes.
type MemoryAdapter struct {
	mu   sync.RWMutex
	data map[string]map[string]domain.Record
	meta map[string]*domain.Meta
}

// NewMemoryAdapter creates an empty memory adapter.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		data: make(map[string]map[string]domain.Record),
		meta: make(map[string]*domain.Meta),
	}
}

// Cached reports true: collections keep their state in memory.
func (m *MemoryAdapter) Cached() bool { return true }

func (m *MemoryAdapter) ReadData(name string) (map[string]domain.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.data[name]
	if !ok {
		return nil, domain.ErrArtifactNotFound
	}
	out := make(map[string]domain.Record, len(data))
	for id, rec := range data {
		out[id] = rec
	}
	return out, nil
}

func (m *MemoryAdapter) WriteData(name string, data map[string]domain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[name] = data
	return nil
}

func (m *MemoryAdapter) ReadMeta(name string) (*domain.Meta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	meta, ok := m.meta[name]
	if !ok {
		return nil, domain.ErrArtifactNotFound
	}
	return meta, nil
}

func (m *MemoryAdapter) WriteMeta(name string, meta *domain.Meta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meta[name] = meta
	return nil
}

// Names returns the names of the collections with a data artifact, sorted.
func (m *MemoryAdapter) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.data))
	for name := range m.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
