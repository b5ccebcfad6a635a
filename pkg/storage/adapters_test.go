package storage

import (
	"path/filepath"
	"testing"

	"github.com/josefjadrny/go-idb/pkg/domain"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// adapterContract runs the behaviour every StorageAdapter shares.
func adapterContract(t *testing.T, a domain.StorageAdapter) {
	t.Helper()

	_, err := a.ReadData("users")
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
	_, err = a.ReadMeta("users")
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)

	require.NoError(t, a.WriteData("users", sampleData()))
	require.NoError(t, a.WriteMeta("users", sampleMeta()))

	data, err := a.ReadData("users")
	require.NoError(t, err)
	require.Len(t, data, 2)
	assert.Equal(t, "Josefina", data["b2"]["name"])
	assert.EqualValues(t, 30, data["a1"]["age"])

	meta, err := a.ReadMeta("users")
	require.NoError(t, err)
	assert.Equal(t, sampleMeta().Schema, meta.Schema)
	require.Contains(t, meta.Indexes, "age")
	assert.Len(t, meta.Indexes["age"].Entries, 2)

	// Overwrite with an empty map.
	require.NoError(t, a.WriteData("users", map[string]domain.Record{}))
	data, err = a.ReadData("users")
	require.NoError(t, err)
	assert.Empty(t, data)

	// Other names are independent.
	_, err = a.ReadData("orders")
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}

func TestMemoryAdapter(t *testing.T) {
	a := NewMemoryAdapter()
	assert.True(t, domain.IsCached(a))
	adapterContract(t, a)
	assert.Equal(t, []string{"users"}, a.Names())
}

func TestMemoryAdapter_KeepsReference(t *testing.T) {
	a := NewMemoryAdapter()
	data := map[string]domain.Record{}
	require.NoError(t, a.WriteData("users", data))

	data["x"] = domain.Record{"name": "late"}
	got, err := a.ReadData("users")
	require.NoError(t, err)
	assert.Contains(t, got, "x")
}

func TestMemoryAdapter_ReadReturnsFreshMap(t *testing.T) {
	a := NewMemoryAdapter()
	require.NoError(t, a.WriteData("users", map[string]domain.Record{"a": {"name": "Josef"}}))

	got, err := a.ReadData("users")
	require.NoError(t, err)
	got["b"] = domain.Record{"name": "stray"}
	delete(got, "a")

	again, err := a.ReadData("users")
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Record{"a": {"name": "Josef"}}, again)
}

func TestFileAdapter(t *testing.T) {
	for _, codec := range []Codec{JSONCodec{}, NewBinaryCodec(CompressionLZ4), NewBinaryCodec(CompressionZstd)} {
		t.Run(codec.Name()+codec.Ext(), func(t *testing.T) {
			fs := afero.NewMemMapFs()
			a := NewFileAdapter("/db", WithFs(fs), WithCodec(codec))
			assert.False(t, domain.IsCached(a))
			adapterContract(t, a)

			exists, err := afero.Exists(fs, filepath.Join("/db", "users.data"+codec.Ext()))
			require.NoError(t, err)
			assert.True(t, exists)
			exists, err = afero.Exists(fs, filepath.Join("/db", "users.meta"+codec.Ext()))
			require.NoError(t, err)
			assert.True(t, exists)
			exists, err = afero.Exists(fs, filepath.Join("/db", "users.data"+codec.Ext()+".tmp"))
			require.NoError(t, err)
			assert.False(t, exists)

			names, err := a.Names()
			require.NoError(t, err)
			assert.Equal(t, []string{"users"}, names)
		})
	}
}

func TestFileAdapter_JSONLayout(t *testing.T) {
	fs := afero.NewMemMapFs()
	a := NewFileAdapter("/db", WithFs(fs))
	require.NoError(t, a.WriteData("users", map[string]domain.Record{"id1": {"name": "Ann"}}))

	raw, err := afero.ReadFile(fs, "/db/users.data.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id1":{"name":"Ann"}}`, string(raw))
}

func TestFileAdapter_EmptyAndCorruptFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	a := NewFileAdapter("/db", WithFs(fs))

	require.NoError(t, afero.WriteFile(fs, "/db/users.data.json", nil, 0644))
	_, err := a.ReadData("users")
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)

	require.NoError(t, afero.WriteFile(fs, "/db/users.meta.json", []byte("{not json"), 0644))
	_, err = a.ReadMeta("users")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrArtifactNotFound)
}

func TestFileAdapter_NamesWithoutDir(t *testing.T) {
	a := NewFileAdapter("/missing", WithFs(afero.NewMemMapFs()))
	names, err := a.Names()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLevelDBAdapter_InMemory(t *testing.T) {
	a, err := OpenLevelDB("", nil)
	require.NoError(t, err)
	defer a.Close()

	assert.False(t, domain.IsCached(a))
	adapterContract(t, a)

	names, err := a.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"users"}, names)
}

func TestLevelDBAdapter_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idb")

	a, err := OpenLevelDB(path, NewBinaryCodec(CompressionLZ4))
	require.NoError(t, err)
	require.NoError(t, a.WriteData("users", sampleData()))
	require.NoError(t, a.Close())

	b, err := OpenLevelDB(path, NewBinaryCodec(CompressionLZ4))
	require.NoError(t, err)
	defer b.Close()

	data, err := b.ReadData("users")
	require.NoError(t, err)
	assert.Equal(t, 30.0, data["a1"]["age"])
}
