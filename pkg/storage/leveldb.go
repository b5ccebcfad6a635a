package storage

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/josefjadrny/go-idb/pkg/domain"
	"github.com/syndtr/goleveldb/leveldb"
	ldberr "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
	ldbstorage "github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var _ domain.StorageAdapter = (*LevelDBAdapter)(nil)

const (
	dataKeyPrefix = "data/"
	metaKeyPrefix = "meta/"
)

// LevelDBAdapter stores both artifacts of every collection in one LevelDB
// database, under the keys data/<name> and meta/<name>. Collections bound to
// it run in read-through/write-through mode.
type LevelDBAdapter struct {
	db    *leveldb.DB
	codec Codec
}

// OpenLevelDB opens the database at path. An empty path opens an in-memory
// database. A corrupted database is recovered before use.
func OpenLevelDB(path string, codec Codec) (*LevelDBAdapter, error) {
	if codec == nil {
		codec = JSONCodec{}
	}

	var (
		db  *leveldb.DB
		err error
	)
	if path == "" {
		db, err = leveldb.Open(ldbstorage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, &opt.Options{})
		if ldberr.IsCorrupted(err) {
			db, err = leveldb.RecoverFile(path, nil)
			if err != nil {
				return nil, fmt.Errorf("leveldb recovery: %w", err)
			}
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb %q: %w", path, err)
	}

	return &LevelDBAdapter{db: db, codec: codec}, nil
}

// Cached reports false: every collection call reloads from the database.
func (a *LevelDBAdapter) Cached() bool { return false }

func (a *LevelDBAdapter) ReadData(name string) (map[string]domain.Record, error) {
	data := make(map[string]domain.Record)
	if err := a.get(dataKeyPrefix+name, &data); err != nil {
		return nil, err
	}
	if data == nil {
		data = make(map[string]domain.Record)
	}
	return data, nil
}

func (a *LevelDBAdapter) WriteData(name string, data map[string]domain.Record) error {
	if data == nil {
		data = map[string]domain.Record{}
	}
	return a.put(dataKeyPrefix+name, data)
}

func (a *LevelDBAdapter) ReadMeta(name string) (*domain.Meta, error) {
	var meta domain.Meta
	if err := a.get(metaKeyPrefix+name, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (a *LevelDBAdapter) WriteMeta(name string, meta *domain.Meta) error {
	return a.put(metaKeyPrefix+name, meta)
}

// Names lists the collections with a data artifact, sorted.
func (a *LevelDBAdapter) Names() ([]string, error) {
	iter := a.db.NewIterator(util.BytesPrefix([]byte(dataKeyPrefix)), nil)
	defer iter.Release()

	var names []string
	for iter.Next() {
		names = append(names, strings.TrimPrefix(string(iter.Key()), dataKeyPrefix))
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Close releases the database.
func (a *LevelDBAdapter) Close() error {
	return a.db.Close()
}

func (a *LevelDBAdapter) get(key string, v interface{}) error {
	raw, err := a.db.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return domain.ErrArtifactNotFound
		}
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := a.codec.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (a *LevelDBAdapter) put(key string, v interface{}) error {
	raw, err := a.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := a.db.Put([]byte(key), raw, &opt.WriteOptions{Sync: true}); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
