// Package database opens a storage backend and the collections configured on
// top of it.
package database

import (
	"fmt"
	"io"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"github.com/josefjadrny/go-idb/pkg/collection"
	"github.com/josefjadrny/go-idb/pkg/domain"
	"github.com/josefjadrny/go-idb/pkg/logging"
	"github.com/josefjadrny/go-idb/pkg/storage"
)

// Store is what the HTTP layer needs from a database.
type Store interface {
	Collection(name string) (*collection.Collection, error)
	Names() []string
}

var _ Store = (*DB)(nil)

// DB holds the collections of one configuration. Collections are created when
// the database is opened and never added or removed afterwards.
type DB struct {
	adapter     domain.StorageAdapter
	collections map[string]*collection.Collection
	metrics     *collection.Metrics
	logger      logging.Logger
	fs          afero.Fs
	closer      io.Closer
}

type Option func(*DB)

func WithLogger(l logging.Logger) Option {
	return func(db *DB) {
		db.logger = l
	}
}

// WithFs sets the filesystem used by the file storage type.
func WithFs(fs afero.Fs) Option {
	return func(db *DB) {
		db.fs = fs
	}
}

// Open validates cfg, opens its storage and creates every collection.
func Open(cfg Config, opts ...Option) (*DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db := &DB{
		collections: make(map[string]*collection.Collection, len(cfg.Collections)),
		metrics:     collection.NewMetrics(),
		fs:          afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(db)
	}
	if db.logger == nil {
		db.logger = logging.Discard()
	}

	if err := db.openStorage(cfg.Storage); err != nil {
		return nil, err
	}

	for _, name := range cfg.Names() {
		c, err := collection.New(name, cfg.Collections[name], db.adapter,
			collection.WithLogger(db.logger),
			collection.WithMetrics(db.metrics),
		)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("collection %q: %w", name, err)
		}
		db.collections[name] = c
	}

	db.logger.Infof("opened %s storage with %d collections", storageType(cfg.Storage), len(db.collections))
	return db, nil
}

func (db *DB) openStorage(cfg StorageConfig) error {
	compression, err := storage.ParseCompression(cfg.Compression)
	if err != nil {
		return err
	}
	codec, err := storage.CodecByName(cfg.Codec, compression)
	if err != nil {
		return err
	}

	switch storageType(cfg) {
	case StorageMemory:
		db.adapter = storage.NewMemoryAdapter()
	case StorageFile:
		db.adapter = storage.NewFileAdapter(cfg.Dir,
			storage.WithFs(db.fs),
			storage.WithCodec(codec),
			storage.WithLogger(db.logger),
		)
	case StorageLevelDB:
		a, err := storage.OpenLevelDB(cfg.Dir, codec)
		if err != nil {
			return err
		}
		db.adapter = a
		db.closer = a
	}
	return nil
}

// Collection returns the collection configured under name.
func (db *DB) Collection(name string) (*collection.Collection, error) {
	c, ok := db.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownCollection, name)
	}
	return c, nil
}

// Names returns the collection names, sorted.
func (db *DB) Names() []string {
	return sortedKeys(db.collections)
}

// Metrics returns the collectors of every collection.
func (db *DB) Metrics() []prometheus.Collector {
	return db.metrics.Metrics()
}

// Close releases the storage backend.
func (db *DB) Close() error {
	var result *multierror.Error
	if db.closer != nil {
		if err := db.closer.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close storage: %w", err))
		}
	}
	return result.ErrorOrNil()
}

func storageType(cfg StorageConfig) string {
	if cfg.Type == "" {
		return StorageMemory
	}
	return cfg.Type
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
