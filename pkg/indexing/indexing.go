package indexing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/josefjadrny/go-idb/pkg/domain"
)

// Index keeps (value, id) entries of one field in ascending value order.
// Equal values keep insertion order.
type Index struct {
	field           string
	fieldType       domain.FieldType
	caseInsensitive bool
	entries         []domain.IndexEntry
}

// New creates an empty index on a field.
func New(field string, fieldType domain.FieldType, caseInsensitive bool) *Index {
	return &Index{
		field:           field,
		fieldType:       fieldType,
		caseInsensitive: caseInsensitive,
	}
}

// Field returns the indexed field name.
func (idx *Index) Field() string { return idx.field }

// Type returns the declared type of the indexed field.
func (idx *Index) Type() domain.FieldType { return idx.fieldType }

// CaseInsensitive reports whether string values are folded before comparison.
func (idx *Index) CaseInsensitive() bool { return idx.caseInsensitive }

// Len returns the number of entries.
func (idx *Index) Len() int { return len(idx.entries) }

// Normalize applies the index's value normalization: numbers become float64
// and, with case folding enabled, strings are lower-cased.
func (idx *Index) Normalize(value interface{}) interface{} {
	if n, ok := domain.ToFloat64(value); ok {
		return n
	}
	if s, ok := value.(string); ok && idx.caseInsensitive {
		return strings.ToLower(s)
	}
	return value
}

// Add inserts id under value, after any entries that already hold the same value.
func (idx *Index) Add(id string, value interface{}) {
	v := idx.Normalize(value)
	pos := idx.upperBound(v)

	idx.entries = append(idx.entries, domain.IndexEntry{})
	copy(idx.entries[pos+1:], idx.entries[pos:])
	idx.entries[pos] = domain.IndexEntry{Value: v, ID: id}
}

// Remove deletes the first entry holding exactly (id, value). It reports
// whether an entry was removed; a missing pair is not an error.
func (idx *Index) Remove(id string, value interface{}) bool {
	v := idx.Normalize(value)
	for i := idx.lowerBound(v); i < len(idx.entries) && Compare(idx.entries[i].Value, v) == 0; i++ {
		if idx.entries[i].ID == id {
			idx.entries = append(idx.entries[:i], idx.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops all entries.
func (idx *Index) Clear() {
	idx.entries = nil
}

// Find returns the ids of the entries matching q, in index order.
func (idx *Index) Find(q Query) []string {
	switch q.Kind {
	case QueryExact, QueryBool:
		return idx.ids(idx.lowerBound(q.Value), idx.upperBound(q.Value))

	case QueryPrefix:
		prefix, _ := q.Value.(string)
		var ids []string
		for i := idx.lowerBound(prefix); i < len(idx.entries); i++ {
			s, ok := idx.entries[i].Value.(string)
			if !ok || !strings.HasPrefix(s, prefix) {
				break
			}
			ids = append(ids, idx.entries[i].ID)
		}
		return ids

	case QuerySuffix:
		suffix, _ := q.Value.(string)
		return idx.scan(func(v interface{}) bool {
			s, ok := v.(string)
			return ok && strings.HasSuffix(s, suffix)
		})

	case QueryContains:
		term, _ := q.Value.(string)
		return idx.scan(func(v interface{}) bool {
			return strings.Contains(fmt.Sprint(v), term)
		})

	case QueryRange:
		switch q.Op {
		case OpGreater:
			return idx.ids(idx.upperBound(q.Value), len(idx.entries))
		case OpGreaterEqual:
			return idx.ids(idx.lowerBound(q.Value), len(idx.entries))
		case OpLess:
			return idx.ids(0, idx.lowerBound(q.Value))
		case OpLessEqual:
			return idx.ids(0, idx.upperBound(q.Value))
		}
	}
	return nil
}

// Snapshot exports the entry sequence verbatim.
func (idx *Index) Snapshot() domain.IndexSnapshot {
	entries := make([]domain.IndexEntry, len(idx.entries))
	copy(entries, idx.entries)
	return domain.IndexSnapshot{
		Field:           idx.field,
		Type:            idx.fieldType,
		CaseInsensitive: idx.caseInsensitive,
		Entries:         entries,
	}
}

// FromSnapshot rebuilds an index from an exported entry sequence. Values are
// normalized again so numbers decoded as other numeric kinds compare correctly.
func FromSnapshot(s domain.IndexSnapshot) *Index {
	idx := New(s.Field, s.Type, s.CaseInsensitive)
	idx.entries = make([]domain.IndexEntry, len(s.Entries))
	for i, e := range s.Entries {
		idx.entries[i] = domain.IndexEntry{Value: idx.Normalize(e.Value), ID: e.ID}
	}
	return idx
}

// lowerBound returns the first position whose value is not less than v.
func (idx *Index) lowerBound(v interface{}) int {
	return sort.Search(len(idx.entries), func(i int) bool {
		return Compare(idx.entries[i].Value, v) >= 0
	})
}

// upperBound returns the first position whose value is greater than v.
func (idx *Index) upperBound(v interface{}) int {
	return sort.Search(len(idx.entries), func(i int) bool {
		return Compare(idx.entries[i].Value, v) > 0
	})
}

func (idx *Index) ids(from, to int) []string {
	if from >= to {
		return nil
	}
	ids := make([]string, 0, to-from)
	for _, e := range idx.entries[from:to] {
		ids = append(ids, e.ID)
	}
	return ids
}

func (idx *Index) scan(match func(interface{}) bool) []string {
	var ids []string
	for _, e := range idx.entries {
		if match(e.Value) {
			ids = append(ids, e.ID)
		}
	}
	return ids
}
