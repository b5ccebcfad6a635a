package domain

// IndexEntry is one (normalizedValue, id) pair of a field index.
type IndexEntry struct {
	Value interface{} `json:"value" msgpack:"value"`
	ID    string      `json:"id" msgpack:"id"`
}

// IndexSnapshot is the serialized form of a field index: enough to rebuild it
// verbatim without rescanning the data.
type IndexSnapshot struct {
	Field           string       `json:"field" msgpack:"field"`
	Type            FieldType    `json:"type" msgpack:"type"`
	CaseInsensitive bool         `json:"caseInsensitive,omitempty" msgpack:"caseInsensitive,omitempty"`
	Entries         []IndexEntry `json:"entries" msgpack:"entries"`
}

// Meta is the meta artifact of a collection.
type Meta struct {
	Schema  map[string]FieldSignature `json:"schema" msgpack:"schema"`
	Indexes map[string]IndexSnapshot  `json:"indexes,omitempty" msgpack:"indexes,omitempty"`
}
