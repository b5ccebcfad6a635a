package api

import (
	"fmt"
	"sort"
	"sync"

	"github.com/josefjadrny/go-idb/pkg/collection"
	"github.com/josefjadrny/go-idb/pkg/database"
	"github.com/josefjadrny/go-idb/pkg/domain"
	"github.com/josefjadrny/go-idb/pkg/storage"
)

var _ database.Store = (*MockStore)(nil)

// MockStore provides an in-memory database.Store for testing. Collections are
// real, backed by a memory adapter, and lookups are counted.
type MockStore struct {
	mu              sync.RWMutex
	collections     map[string]*collection.Collection
	collectionCalls int
}

// NewMockStore creates a mock store with one memory collection per schema
func NewMockStore(schemas map[string]domain.Schema) (*MockStore, error) {
	m := &MockStore{collections: make(map[string]*collection.Collection)}
	adapter := storage.NewMemoryAdapter()
	for name, schema := range schemas {
		if err := m.AddCollection(name, schema, adapter); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// AddCollection binds a collection on adapter under name
func (m *MockStore) AddCollection(name string, schema domain.Schema, adapter domain.StorageAdapter) error {
	c, err := collection.New(name, schema, adapter)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[name] = c
	return nil
}

func (m *MockStore) Collection(name string) (*collection.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collectionCalls++

	c, ok := m.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCollection, name)
	}
	return c, nil
}

func (m *MockStore) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetCollectionCalls returns how many times a collection was looked up
func (m *MockStore) GetCollectionCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collectionCalls
}

// GetCollectionCount returns the number of documents in a collection
func (m *MockStore) GetCollectionCount(name string) int {
	m.mu.RLock()
	c, ok := m.collections[name]
	m.mu.RUnlock()
	if !ok {
		return 0
	}
	n, _ := c.Count()
	return n
}
