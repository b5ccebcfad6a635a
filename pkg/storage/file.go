package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/josefjadrny/go-idb/pkg/domain"
	"github.com/josefjadrny/go-idb/pkg/logging"
	"github.com/spf13/afero"
)

var _ domain.StorageAdapter = (*FileAdapter)(nil)

// FileAdapter persists each collection as two flat files under a directory:
// <name>.data<ext> and <name>.meta<ext>. Collections bound to it run in
// read-through/write-through mode.
type FileAdapter struct {
	dir      string
	fs       afero.Fs
	codec    Codec
	fileMode os.FileMode
	logger   logging.Logger
}

// NewFileAdapter creates an adapter rooted at dir. The directory is created on
// first write.
func NewFileAdapter(dir string, options ...FileOption) *FileAdapter {
	a := &FileAdapter{
		dir:      dir,
		fs:       afero.NewOsFs(),
		codec:    JSONCodec{},
		fileMode: 0644,
	}

	for _, option := range options {
		option(a)
	}
	if a.logger == nil {
		a.logger = logging.Discard()
	}

	return a
}

// Cached reports false: every collection call reloads from disk.
func (a *FileAdapter) Cached() bool { return false }

// Dir returns the directory holding the artifacts.
func (a *FileAdapter) Dir() string { return a.dir }

// Codec returns the artifact codec.
func (a *FileAdapter) Codec() Codec { return a.codec }

func (a *FileAdapter) ReadData(name string) (map[string]domain.Record, error) {
	data := make(map[string]domain.Record)
	if err := a.read(a.dataPath(name), &data); err != nil {
		return nil, err
	}
	if data == nil {
		data = make(map[string]domain.Record)
	}
	return data, nil
}

func (a *FileAdapter) WriteData(name string, data map[string]domain.Record) error {
	if data == nil {
		data = map[string]domain.Record{}
	}
	return a.write(a.dataPath(name), data)
}

func (a *FileAdapter) ReadMeta(name string) (*domain.Meta, error) {
	var meta domain.Meta
	if err := a.read(a.metaPath(name), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (a *FileAdapter) WriteMeta(name string, meta *domain.Meta) error {
	return a.write(a.metaPath(name), meta)
}

// Names lists the collections with a data artifact in the directory, sorted.
func (a *FileAdapter) Names() ([]string, error) {
	infos, err := afero.ReadDir(a.fs, a.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", a.dir, err)
	}

	suffix := ".data" + a.codec.Ext()
	var names []string
	for _, info := range infos {
		if !info.IsDir() && strings.HasSuffix(info.Name(), suffix) {
			names = append(names, strings.TrimSuffix(info.Name(), suffix))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (a *FileAdapter) dataPath(name string) string {
	return filepath.Join(a.dir, name+".data"+a.codec.Ext())
}

func (a *FileAdapter) metaPath(name string) string {
	return filepath.Join(a.dir, name+".meta"+a.codec.Ext())
}

func (a *FileAdapter) read(path string, v interface{}) error {
	raw, err := afero.ReadFile(a.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.ErrArtifactNotFound
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	// An empty file was truncated by an interrupted write; treat it as absent.
	if len(raw) == 0 {
		return domain.ErrArtifactNotFound
	}

	if err := a.codec.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// write replaces path by writing a temporary file and renaming it over the
// target.
func (a *FileAdapter) write(path string, v interface{}) error {
	raw, err := a.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	if err := a.fs.MkdirAll(a.dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", a.dir, err)
	}

	tempFile := path + ".tmp"
	if err := afero.WriteFile(a.fs, tempFile, raw, a.fileMode); err != nil {
		return fmt.Errorf("failed to write %s: %w", tempFile, err)
	}

	if err := a.fs.Rename(tempFile, path); err != nil {
		_ = a.fs.Remove(tempFile)
		return fmt.Errorf("failed to rename %s: %w", tempFile, err)
	}

	a.logger.Debugf("saved %s (%d bytes)", path, len(raw))
	return nil
}
