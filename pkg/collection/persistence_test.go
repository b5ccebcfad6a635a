package collection

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josefjadrny/go-idb/pkg/domain"
	"github.com/josefjadrny/go-idb/pkg/logging"
	"github.com/josefjadrny/go-idb/pkg/storage"
)

// countingAdapter counts writes passed through to the wrapped adapter.
type countingAdapter struct {
	domain.StorageAdapter
	dataWrites int
	metaWrites int
}

func (a *countingAdapter) WriteData(name string, data map[string]domain.Record) error {
	a.dataWrites++
	return a.StorageAdapter.WriteData(name, data)
}

func (a *countingAdapter) WriteMeta(name string, meta *domain.Meta) error {
	a.metaWrites++
	return a.StorageAdapter.WriteMeta(name, meta)
}

func TestDiskRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()

	first, err := New("people", peopleSchema(), storage.NewFileAdapter("/db", storage.WithFs(fs)))
	require.NoError(t, err)
	josef, err := first.Add(domain.Record{"name": "Josef", "age": 30})
	require.NoError(t, err)
	_, err = first.Add(domain.Record{"name": "Josefina", "age": 25})
	require.NoError(t, err)

	second, err := New("people", peopleSchema(), storage.NewFileAdapter("/db", storage.WithFs(fs)))
	require.NoError(t, err)

	got, found, err := second.Get(josef.ID())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Josef", got["name"])

	all, err := second.All(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	docs, err := second.Find(map[string]string{"name": "JOSEF%", "age": "<=30"}, nil)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	// Writes through one instance are visible to the other on its next call.
	_, err = second.Add(domain.Record{"name": "Karel", "age": 50})
	require.NoError(t, err)
	n, err := first.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestLevelDBRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idb")

	a, err := storage.OpenLevelDB(path, storage.NewBinaryCodec(storage.CompressionLZ4))
	require.NoError(t, err)
	c, err := New("people", peopleSchema(), a)
	require.NoError(t, err)
	doc, err := c.Add(domain.Record{"name": "Ann", "age": 20})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := storage.OpenLevelDB(path, storage.NewBinaryCodec(storage.CompressionLZ4))
	require.NoError(t, err)
	defer b.Close()
	c, err = New("people", peopleSchema(), b)
	require.NoError(t, err)

	docs, err := c.Find(map[string]string{"age": "20"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{doc.ID()}, ids(docs))
}

func TestSchemaDrift(t *testing.T) {
	changes := map[string]func(domain.Schema){
		"type changed": func(s domain.Schema) {
			s["age"] = domain.FieldDefinition{Type: domain.FieldTypeString, Index: true}
		},
		"index dropped": func(s domain.Schema) {
			s["age"] = domain.FieldDefinition{Type: domain.FieldTypeNumber}
		},
		"case folding dropped": func(s domain.Schema) {
			s["name"] = domain.FieldDefinition{Type: domain.FieldTypeString, Index: true}
		},
		"field added": func(s domain.Schema) {
			s["city"] = domain.FieldDefinition{Type: domain.FieldTypeString}
		},
	}

	for name, change := range changes {
		t.Run(name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			first, err := New("people", peopleSchema(), storage.NewFileAdapter("/db", storage.WithFs(fs)))
			require.NoError(t, err)
			_, err = first.Add(domain.Record{"name": "Josef", "age": 30})
			require.NoError(t, err)

			var logs bytes.Buffer
			schema := peopleSchema()
			change(schema)
			ms := NewMetrics()
			second, err := New("people", schema, storage.NewFileAdapter("/db", storage.WithFs(fs)),
				WithLogger(logging.New(&logs, logrus.WarnLevel)), WithMetrics(ms))
			require.NoError(t, err)

			n, err := second.Count()
			require.NoError(t, err)
			assert.Zero(t, n)
			assert.Contains(t, logs.String(), "schema changed")
		})
	}
}

func TestSchemaUnchangedKeepsData(t *testing.T) {
	fs := afero.NewMemMapFs()
	first, err := New("people", peopleSchema(), storage.NewFileAdapter("/db", storage.WithFs(fs)))
	require.NoError(t, err)
	_, err = first.Add(domain.Record{"name": "Josef", "age": 30})
	require.NoError(t, err)

	// Defaults are not part of the signature.
	schema := peopleSchema()
	def := schema["age"]
	def.Default = 18
	schema["age"] = def

	second, err := New("people", schema, storage.NewFileAdapter("/db", storage.WithFs(fs)))
	require.NoError(t, err)
	n, err := second.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMissingMetaResetsData(t *testing.T) {
	fs := afero.NewMemMapFs()
	a := storage.NewFileAdapter("/db", storage.WithFs(fs))
	require.NoError(t, a.WriteData("people", map[string]domain.Record{"x": {"name": "Orphan", "age": 1}}))

	c, err := New("people", peopleSchema(), a)
	require.NoError(t, err)
	n, err := c.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAddManyCommitsOnce(t *testing.T) {
	for _, ac := range adapterCases() {
		t.Run(ac.name, func(t *testing.T) {
			counting := &countingAdapter{StorageAdapter: ac.new(t)}
			c, err := New("people", peopleSchema(), counting)
			require.NoError(t, err)

			// Construction writes the initial empty artifacts.
			counting.dataWrites, counting.metaWrites = 0, 0

			_, err = c.AddMany([]domain.Record{
				{"name": "Ann", "age": 1},
				{"name": "Bob", "age": 2},
				{"name": "Cid", "age": 3},
			})
			require.NoError(t, err)
			assert.Equal(t, 1, counting.dataWrites)
			assert.Equal(t, 1, counting.metaWrites)

			_, err = c.AddMany([]domain.Record{{"name": "Dan"}})
			require.Error(t, err)
			assert.Equal(t, 1, counting.dataWrites)
		})
	}
}

func TestWriteThroughPersistsIndexes(t *testing.T) {
	a := storage.NewFileAdapter("/db", storage.WithFs(afero.NewMemMapFs()))
	c, err := New("people", peopleSchema(), a, WithIDGenerator(sequentialIDs()))
	require.NoError(t, err)
	_, err = c.AddMany([]domain.Record{
		{"name": "Bob", "age": 30},
		{"name": "ann", "age": 20},
	})
	require.NoError(t, err)

	meta, err := a.ReadMeta("people")
	require.NoError(t, err)
	require.Contains(t, meta.Indexes, "name")
	assert.Equal(t, []domain.IndexEntry{{Value: "ann", ID: "id-002"}, {Value: "bob", ID: "id-001"}}, meta.Indexes["name"].Entries)
	assert.Equal(t, peopleSchema().Signature(), meta.Schema)

	// A snapshot lost from the meta artifact is rebuilt from the data.
	delete(meta.Indexes, "age")
	require.NoError(t, a.WriteMeta("people", meta))

	docs, err := c.Find(map[string]string{"age": "<25"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"id-002"}, ids(docs))
}

func TestCachedModeKeepsIndexesOutOfMeta(t *testing.T) {
	a := storage.NewMemoryAdapter()
	c, err := New("people", peopleSchema(), a)
	require.NoError(t, err)
	_, err = c.Add(domain.Record{"name": "Ann", "age": 20})
	require.NoError(t, err)

	meta, err := a.ReadMeta("people")
	require.NoError(t, err)
	assert.Empty(t, meta.Indexes)

	// A second collection on the same adapter builds its indexes from the data.
	again, err := New("people", peopleSchema(), a)
	require.NoError(t, err)
	docs, err := again.Find(map[string]string{"name": "ANN"}, nil)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestCachedInstancesOnSharedAdapterStayConsistent(t *testing.T) {
	a := storage.NewMemoryAdapter()
	first, err := New("people", peopleSchema(), a, WithIDGenerator(sequentialIDs()))
	require.NoError(t, err)
	second, err := New("people", peopleSchema(), a, WithIDGenerator(sequentialIDs()))
	require.NoError(t, err)

	_, err = first.Add(domain.Record{"name": "Josef", "age": 30})
	require.NoError(t, err)

	// Each instance answers exact queries from the same records it counts.
	for _, c := range []*Collection{first, second} {
		count, err := c.Count()
		require.NoError(t, err)
		all, err := c.All(nil)
		require.NoError(t, err)
		found, err := c.Find(map[string]string{"name": "josef"}, nil)
		require.NoError(t, err)
		assert.Len(t, all, count)
		assert.Len(t, found, count)
	}

	found, err := first.Find(map[string]string{"name": "josef"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"id-001"}, ids(found))
}
