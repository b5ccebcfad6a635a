package database

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josefjadrny/go-idb/pkg/domain"
)

const sampleConfig = `
api-addr: ":8080"
storage:
  type: file
  dir: /data
  codec: godb
  compression: zstd
collections:
  users:
    firstName:
      type: string
      index: true
      indexSetting:
        caseInsensitive: true
    age:
      type: number
      index: true
    active:
      type: boolean
      default: true
    prefs:
      type: object
      default:
        theme: dark
`

func TestLoadConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/idb.yaml", []byte(sampleConfig), 0644))

	cfg, err := LoadConfig(fs, "/idb.yaml")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, StorageConfig{Type: "file", Dir: "/data", Codec: "godb", Compression: "zstd"}, cfg.Storage)
	require.Contains(t, cfg.Collections, "users")
	users := cfg.Collections["users"]
	require.Contains(t, users, "firstName")
	assert.True(t, users["firstName"].CaseInsensitive())
	assert.Equal(t, true, users["active"].Default)
	assert.Equal(t, map[string]interface{}{"theme": "dark"}, users["prefs"].Default)

	_, err = LoadConfig(fs, "/missing.yaml")
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	schema := domain.Schema{"name": {Type: domain.FieldTypeString, Index: true}}

	tests := []struct {
		name     string
		cfg      Config
		contains []string
	}{
		{
			name: "valid memory",
			cfg:  Config{Collections: map[string]domain.Schema{"users": schema}},
		},
		{
			name:     "file without dir",
			cfg:      Config{Storage: StorageConfig{Type: "file"}, Collections: map[string]domain.Schema{"users": schema}},
			contains: []string{"dir is required"},
		},
		{
			name:     "unknown storage and codec",
			cfg:      Config{Storage: StorageConfig{Type: "s3", Codec: "xml"}, Collections: map[string]domain.Schema{"users": schema}},
			contains: []string{`unknown type "s3"`, `unknown codec "xml"`},
		},
		{
			name:     "no collections",
			cfg:      Config{},
			contains: []string{"no collections"},
		},
		{
			name: "bad schema",
			cfg: Config{Collections: map[string]domain.Schema{
				"users": {"meta": {Type: domain.FieldTypeObject, Index: true}},
			}},
			contains: []string{`collection "users"`, "cannot be indexed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if len(tt.contains) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

func TestOpen_Memory(t *testing.T) {
	db, err := Open(Config{Collections: map[string]domain.Schema{
		"users":  {"name": {Type: domain.FieldTypeString, Index: true}},
		"orders": {"total": {Type: domain.FieldTypeNumber, Index: true}},
	}})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, []string{"orders", "users"}, db.Names())

	users, err := db.Collection("users")
	require.NoError(t, err)
	_, err = users.Add(domain.Record{"name": "Ann"})
	require.NoError(t, err)

	_, err = db.Collection("nope")
	assert.True(t, errors.Is(err, domain.ErrUnknownCollection))

	assert.NotEmpty(t, db.Metrics())
}

func TestOpen_FileReopen(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := Config{
		Storage:     StorageConfig{Type: StorageFile, Dir: "/data", Codec: "godb", Compression: "lz4"},
		Collections: map[string]domain.Schema{"users": {"name": {Type: domain.FieldTypeString, Index: true}}},
	}

	db, err := Open(cfg, WithFs(fs))
	require.NoError(t, err)
	users, err := db.Collection("users")
	require.NoError(t, err)
	_, err = users.Add(domain.Record{"name": "Ann"})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	exists, err := afero.Exists(fs, "/data/users.data.godb")
	require.NoError(t, err)
	assert.True(t, exists)

	db, err = Open(cfg, WithFs(fs))
	require.NoError(t, err)
	users, err = db.Collection("users")
	require.NoError(t, err)
	docs, err := users.Find(map[string]string{"name": "Ann"}, nil)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestOpen_LevelDB(t *testing.T) {
	cfg := Config{
		Storage:     StorageConfig{Type: StorageLevelDB, Dir: filepath.Join(t.TempDir(), "ldb")},
		Collections: map[string]domain.Schema{"users": {"name": {Type: domain.FieldTypeString, Index: true}}},
	}

	db, err := Open(cfg)
	require.NoError(t, err)
	users, err := db.Collection("users")
	require.NoError(t, err)
	_, err = users.Add(domain.Record{"name": "Ann"})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(cfg)
	require.NoError(t, err)
	defer db.Close()
	users, err = db.Collection("users")
	require.NoError(t, err)
	n, err := users.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpen_InvalidConfig(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}
