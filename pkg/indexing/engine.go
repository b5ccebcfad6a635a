package indexing

import (
	"fmt"

	"github.com/josefjadrny/go-idb/pkg/domain"
)

// IndexEngine holds the indexes of one collection, one per indexed field.
type IndexEngine struct {
	indexes map[string]*Index // field name -> index
}

// NewIndexEngine creates empty indexes for every indexed field of schema.
func NewIndexEngine(schema domain.Schema) *IndexEngine {
	ie := &IndexEngine{indexes: make(map[string]*Index)}
	for _, field := range schema.IndexedFields() {
		def := schema[field]
		ie.indexes[field] = New(field, def.Type, def.CaseInsensitive())
	}
	return ie
}

// ImportIndexes rebuilds indexes from their snapshots. Indexed fields without a
// usable snapshot are reported back so the caller can rebuild them from data.
func ImportIndexes(schema domain.Schema, snapshots map[string]domain.IndexSnapshot) (*IndexEngine, []string) {
	ie := NewIndexEngine(schema)
	var missing []string
	for _, field := range schema.IndexedFields() {
		snap, ok := snapshots[field]
		current := ie.indexes[field]
		if !ok || snap.Type != current.Type() || snap.CaseInsensitive != current.CaseInsensitive() {
			missing = append(missing, field)
			continue
		}
		snap.Field = field
		ie.indexes[field] = FromSnapshot(snap)
	}
	return ie, missing
}

// GetIndex returns the index on a field.
func (ie *IndexEngine) GetIndex(field string) (*Index, bool) {
	idx, ok := ie.indexes[field]
	return idx, ok
}

// Fields returns the indexed field names.
func (ie *IndexEngine) Fields() []string {
	fields := make([]string, 0, len(ie.indexes))
	for field := range ie.indexes {
		fields = append(fields, field)
	}
	return fields
}

// IndexDocument adds every indexed, non-nil field of rec under id.
func (ie *IndexEngine) IndexDocument(id string, rec domain.Record) {
	for field, idx := range ie.indexes {
		if v, ok := rec[field]; ok && v != nil {
			idx.Add(id, v)
		}
	}
}

// UnindexDocument removes every indexed, non-nil field of rec under id. It
// returns the fields whose entry was not found.
func (ie *IndexEngine) UnindexDocument(id string, rec domain.Record) []string {
	var missed []string
	for field, idx := range ie.indexes {
		if v, ok := rec[field]; ok && v != nil {
			if !idx.Remove(id, v) {
				missed = append(missed, field)
			}
		}
	}
	return missed
}

// UpdateDocument moves id from its old value to its new one for every indexed
// field present in changes. It returns the fields whose old entry was not found.
func (ie *IndexEngine) UpdateDocument(id string, old, changes domain.Record) []string {
	var missed []string
	for field, newVal := range changes {
		idx, ok := ie.indexes[field]
		if !ok {
			continue
		}
		if oldVal, ok := old[field]; ok && oldVal != nil {
			if !idx.Remove(id, oldVal) {
				missed = append(missed, field)
			}
		}
		if newVal != nil {
			idx.Add(id, newVal)
		}
	}
	return missed
}

// BuildIndex rebuilds the index on field from the full data set.
func (ie *IndexEngine) BuildIndex(field string, data map[string]domain.Record) error {
	idx, ok := ie.indexes[field]
	if !ok {
		return fmt.Errorf("index on field %s does not exist", field)
	}
	idx.Clear()
	for _, id := range sortedIDs(data) {
		if v, ok := data[id][field]; ok && v != nil {
			idx.Add(id, v)
		}
	}
	return nil
}

// Clear empties every index.
func (ie *IndexEngine) Clear() {
	for _, idx := range ie.indexes {
		idx.Clear()
	}
}

// ExportIndexes returns the snapshot of every index, keyed by field.
func (ie *IndexEngine) ExportIndexes() map[string]domain.IndexSnapshot {
	out := make(map[string]domain.IndexSnapshot, len(ie.indexes))
	for field, idx := range ie.indexes {
		out[field] = idx.Snapshot()
	}
	return out
}
