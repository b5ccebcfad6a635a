package database

import (
	"bytes"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/josefjadrny/go-idb/pkg/domain"
	"github.com/josefjadrny/go-idb/pkg/storage"
	"github.com/josefjadrny/go-idb/pkg/validation"
)

const (
	StorageMemory  = "memory"
	StorageFile    = "file"
	StorageLevelDB = "leveldb"
)

// StorageConfig selects and tunes the storage adapter shared by all
// collections of a database.
type StorageConfig struct {
	Type        string `yaml:"type" json:"type"`
	Dir         string `yaml:"dir" json:"dir"`
	Codec       string `yaml:"codec" json:"codec"`
	Compression string `yaml:"compression" json:"compression"`
}

// Config describes a database: where it stores data and which collections it
// holds, keyed by name.
type Config struct {
	Storage     StorageConfig            `yaml:"storage" json:"storage"`
	Collections map[string]domain.Schema `yaml:"collections" json:"collections"`
}

// LoadConfig reads the storage and collections sections of a YAML (or JSON)
// config file. Other keys are ignored. Field names keep their case.
func LoadConfig(fs afero.Fs, path string) (Config, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.NewDecoder(bytes.NewReader(raw)).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the storage settings and every collection schema. All
// problems are reported together.
func (c Config) Validate() error {
	var result *multierror.Error

	switch c.Storage.Type {
	case "", StorageMemory:
	case StorageFile:
		if c.Storage.Dir == "" {
			result = multierror.Append(result, fmt.Errorf("storage: dir is required for type %q", c.Storage.Type))
		}
	case StorageLevelDB:
	default:
		result = multierror.Append(result, fmt.Errorf("storage: unknown type %q", c.Storage.Type))
	}

	compression, err := storage.ParseCompression(c.Storage.Compression)
	if err != nil {
		result = multierror.Append(result, fmt.Errorf("storage: %w", err))
	}
	if _, err := storage.CodecByName(c.Storage.Codec, compression); err != nil {
		result = multierror.Append(result, fmt.Errorf("storage: %w", err))
	}

	if len(c.Collections) == 0 {
		result = multierror.Append(result, fmt.Errorf("no collections configured"))
	}
	for _, name := range c.Names() {
		if name == "" {
			result = multierror.Append(result, fmt.Errorf("collection with empty name"))
			continue
		}
		if err := validation.ValidateSchema(c.Collections[name]); err != nil {
			result = multierror.Append(result, fmt.Errorf("collection %q: %w", name, err))
		}
	}

	return result.ErrorOrNil()
}

// Names returns the configured collection names, sorted.
func (c Config) Names() []string {
	return sortedKeys(c.Collections)
}
