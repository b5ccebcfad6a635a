package domain

import (
	"fmt"
	"sort"
)

// FieldType is the declared type of a schema field.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeObject  FieldType = "object"
)

// Valid reports whether t is one of the supported field types.
func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeString, FieldTypeNumber, FieldTypeBoolean, FieldTypeObject:
		return true
	}
	return false
}

// IndexSetting tunes how a string index compares values.
type IndexSetting struct {
	CaseInsensitive bool `json:"caseInsensitive" yaml:"caseInsensitive" mapstructure:"caseInsensitive" msgpack:"caseInsensitive"`
}

// FieldDefinition declares one field of a schema.
type FieldDefinition struct {
	Type         FieldType     `json:"type" yaml:"type" mapstructure:"type" msgpack:"type"`
	Index        bool          `json:"index,omitempty" yaml:"index,omitempty" mapstructure:"index" msgpack:"index,omitempty"`
	IndexSetting *IndexSetting `json:"indexSetting,omitempty" yaml:"indexSetting,omitempty" mapstructure:"indexSetting" msgpack:"indexSetting,omitempty"`
	Default      interface{}   `json:"default,omitempty" yaml:"default,omitempty" mapstructure:"default" msgpack:"default,omitempty"`
}

// CaseInsensitive reports whether string comparisons on this field fold case.
func (f FieldDefinition) CaseInsensitive() bool {
	return f.IndexSetting != nil && f.IndexSetting.CaseInsensitive
}

// HasDefault reports whether the field declares a default value.
func (f FieldDefinition) HasDefault() bool {
	return f.Default != nil
}

// Schema maps field names to their definitions.
type Schema map[string]FieldDefinition

// Fields returns the field names in sorted order.
func (s Schema) Fields() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IndexedFields returns the names of fields with index enabled, sorted.
func (s Schema) IndexedFields() []string {
	var names []string
	for _, name := range s.Fields() {
		if s[name].Index {
			names = append(names, name)
		}
	}
	return names
}

// Copy returns a deep copy so a collection can hold the schema immutably.
func (s Schema) Copy() Schema {
	out := make(Schema, len(s))
	for name, def := range s {
		if def.IndexSetting != nil {
			setting := *def.IndexSetting
			def.IndexSetting = &setting
		}
		def.Default = CopyValue(def.Default)
		out[name] = def
	}
	return out
}

// FieldSignature is the part of a field definition that is persisted in the
// meta artifact and compared when a collection is reopened.
type FieldSignature struct {
	Type         FieldType     `json:"type" msgpack:"type"`
	Index        bool          `json:"index" msgpack:"index"`
	IndexSetting *IndexSetting `json:"indexSetting,omitempty" msgpack:"indexSetting,omitempty"`
}

// Signature projects the schema onto the persisted signature form.
func (s Schema) Signature() map[string]FieldSignature {
	sig := make(map[string]FieldSignature, len(s))
	for name, def := range s {
		fs := FieldSignature{Type: def.Type, Index: def.Index}
		if def.CaseInsensitive() {
			fs.IndexSetting = &IndexSetting{CaseInsensitive: true}
		}
		sig[name] = fs
	}
	return sig
}

func (f FieldSignature) String() string {
	return fmt.Sprintf("%s(index=%t, caseInsensitive=%t)", f.Type, f.Index,
		f.IndexSetting != nil && f.IndexSetting.CaseInsensitive)
}
