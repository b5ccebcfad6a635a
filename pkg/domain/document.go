package domain

// IDField is the key under which a Document exposes its identifier.
const IDField = "_id"

// Record is a flat mapping from declared field names to values. Values are
// strings, numbers, booleans or flat objects. The identifier is never part of
// a stored Record; it is the key of the data map.
type Record map[string]interface{}

// Document is the externally visible read shape: a Record plus its "_id".
type Document map[string]interface{}

// ID returns the document identifier, or "" if it is missing.
func (d Document) ID() string {
	id, _ := d[IDField].(string)
	return id
}

// NewDocument builds the read view of a stored record. The record is copied so
// callers cannot reach back into stored state.
func NewDocument(id string, rec Record) Document {
	doc := make(Document, len(rec)+1)
	for k, v := range rec {
		doc[k] = CopyValue(v)
	}
	doc[IDField] = id
	return doc
}

// Copy returns a copy of the record. Object values are copied one level deep,
// which is all a flat object needs.
func (r Record) Copy() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = CopyValue(v)
	}
	return out
}

// CopyValue copies map values so that stored objects do not alias caller maps.
func CopyValue(v interface{}) interface{} {
	switch obj := v.(type) {
	case map[string]interface{}:
		cp := make(map[string]interface{}, len(obj))
		for k, inner := range obj {
			cp[k] = CopyValue(inner)
		}
		return cp
	case Record:
		return map[string]interface{}(obj.Copy())
	default:
		return v
	}
}
