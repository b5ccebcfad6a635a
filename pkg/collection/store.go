package collection

import (
	"errors"
	"fmt"

	"github.com/josefjadrny/go-idb/pkg/domain"
	"github.com/josefjadrny/go-idb/pkg/indexing"
	"github.com/josefjadrny/go-idb/pkg/logging"
)

// snapshot is the working state of a collection: its records and indexes.
type snapshot struct {
	data    map[string]domain.Record
	indexes *indexing.IndexEngine
}

// store is a persistence discipline. load returns the state an operation works
// on and commit makes the mutated state durable.
type store interface {
	load() (*snapshot, error)
	commit(s *snapshot) error
}

// newStore picks the discipline matching the adapter.
func newStore(name string, schema domain.Schema, adapter domain.StorageAdapter, logger logging.Logger) (store, error) {
	if domain.IsCached(adapter) {
		return newCachedStore(name, schema, adapter, logger)
	}
	return &syncStore{name: name, schema: schema, adapter: adapter, logger: logger}, nil
}

// cachedStore keeps the snapshot in process for the life of the collection.
type cachedStore struct {
	name    string
	schema  domain.Schema
	adapter domain.StorageAdapter
	state   *snapshot
}

func newCachedStore(name string, schema domain.Schema, adapter domain.StorageAdapter, logger logging.Logger) (*cachedStore, error) {
	data, err := readData(adapter, name)
	if err != nil {
		return nil, err
	}

	indexes := indexing.NewIndexEngine(schema)
	for _, field := range indexes.Fields() {
		if err := indexes.BuildIndex(field, data); err != nil {
			return nil, err
		}
	}
	logger.Infof("loaded collection '%s' with %d documents", name, len(data))

	return &cachedStore{
		name:    name,
		schema:  schema,
		adapter: adapter,
		state:   &snapshot{data: data, indexes: indexes},
	}, nil
}

func (s *cachedStore) load() (*snapshot, error) {
	return s.state, nil
}

// commit hands the live record map to the adapter. Indexes stay in process.
func (s *cachedStore) commit(st *snapshot) error {
	if err := s.adapter.WriteData(s.name, st.data); err != nil {
		return fmt.Errorf("failed to write data of collection %s: %w", s.name, err)
	}
	if err := s.adapter.WriteMeta(s.name, &domain.Meta{Schema: s.schema.Signature()}); err != nil {
		return fmt.Errorf("failed to write meta of collection %s: %w", s.name, err)
	}
	return nil
}

// syncStore reads both artifacts on every load and rewrites both on every
// commit. Nothing is kept between calls.
type syncStore struct {
	name    string
	schema  domain.Schema
	adapter domain.StorageAdapter
	logger  logging.Logger
}

func (s *syncStore) load() (*snapshot, error) {
	data, err := readData(s.adapter, s.name)
	if err != nil {
		return nil, err
	}

	var snapshots map[string]domain.IndexSnapshot
	meta, err := s.adapter.ReadMeta(s.name)
	switch {
	case err == nil:
		snapshots = meta.Indexes
	case !errors.Is(err, domain.ErrArtifactNotFound):
		return nil, fmt.Errorf("failed to read meta of collection %s: %w", s.name, err)
	}

	indexes, missing := indexing.ImportIndexes(s.schema, snapshots)
	for _, field := range missing {
		s.logger.Debugf("rebuilding index on field '%s' of collection '%s' from %d documents", field, s.name, len(data))
		if err := indexes.BuildIndex(field, data); err != nil {
			return nil, err
		}
	}

	return &snapshot{data: data, indexes: indexes}, nil
}

// commit writes the data first, then the meta with every index serialized.
func (s *syncStore) commit(st *snapshot) error {
	if err := s.adapter.WriteData(s.name, st.data); err != nil {
		return fmt.Errorf("failed to write data of collection %s: %w", s.name, err)
	}
	meta := &domain.Meta{
		Schema:  s.schema.Signature(),
		Indexes: st.indexes.ExportIndexes(),
	}
	if err := s.adapter.WriteMeta(s.name, meta); err != nil {
		return fmt.Errorf("failed to write meta of collection %s: %w", s.name, err)
	}
	return nil
}

func readData(adapter domain.StorageAdapter, name string) (map[string]domain.Record, error) {
	data, err := adapter.ReadData(name)
	if err != nil {
		if errors.Is(err, domain.ErrArtifactNotFound) {
			return make(map[string]domain.Record), nil
		}
		return nil, fmt.Errorf("failed to read data of collection %s: %w", name, err)
	}
	if data == nil {
		data = make(map[string]domain.Record)
	}
	return data, nil
}
