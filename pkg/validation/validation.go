// Package validation checks schemas and records against the closed set of
// field types a collection supports.
package validation

import (
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"

	"github.com/josefjadrny/go-idb/pkg/domain"
)

// ValidateSchema checks the structural invariants of a schema definition. Every
// offending field is reported; the returned error unwraps to domain.ErrSchema.
func ValidateSchema(schema domain.Schema) error {
	var result *multierror.Error

	for _, name := range schema.Fields() {
		def := schema[name]

		if name == "" {
			result = multierror.Append(result, domain.NewSchemaError(name, "has an empty name"))
			continue
		}
		if name == domain.IDField {
			result = multierror.Append(result, domain.NewSchemaError(name, "is reserved for the identifier"))
			continue
		}
		if !def.Type.Valid() {
			result = multierror.Append(result, domain.NewSchemaError(name, "has unknown type %q", def.Type))
			continue
		}
		if def.Index && def.Type == domain.FieldTypeObject {
			result = multierror.Append(result, domain.NewSchemaError(name, "of type object cannot be indexed"))
		}
		if def.IndexSetting != nil && (!def.Index || def.Type != domain.FieldTypeString) {
			result = multierror.Append(result, domain.NewSchemaError(name, "indexSetting requires an indexed string field"))
		}
		if def.HasDefault() {
			if err := checkValue(def.Type, def.Default); err != "" {
				result = multierror.Append(result, domain.NewSchemaError(name, "default %s", err))
			}
		}
	}

	return result.ErrorOrNil()
}

// ValidateRecord checks rec against schema. A complete record (partial ==
// false) must carry every declared field; a partial record is only checked for
// the fields it carries. Unknown fields are rejected either way. The returned
// error unwraps to domain.ErrValidation.
func ValidateRecord(rec domain.Record, schema domain.Schema, partial bool) error {
	var result *multierror.Error

	for _, name := range sortedKeys(rec) {
		def, ok := schema[name]
		if !ok {
			result = multierror.Append(result, domain.NewValidationError(name, "is not declared in the schema"))
			continue
		}
		if err := checkValue(def.Type, rec[name]); err != "" {
			result = multierror.Append(result, domain.NewValidationError(name, "%s", err))
		}
	}

	if !partial {
		for _, name := range schema.Fields() {
			if _, ok := rec[name]; !ok {
				result = multierror.Append(result, domain.NewValidationError(name, "is required"))
			}
		}
	}

	return result.ErrorOrNil()
}

// checkValue returns a reason string when v does not fit the declared type.
func checkValue(t domain.FieldType, v interface{}) string {
	if v == nil {
		return fmt.Sprintf("must be a %s, got null", t)
	}
	switch t {
	case domain.FieldTypeString:
		if _, ok := v.(string); !ok {
			return fmt.Sprintf("must be a string, got %T", v)
		}
	case domain.FieldTypeNumber:
		n, ok := domain.ToFloat64(v)
		if !ok {
			return fmt.Sprintf("must be a number, got %T", v)
		}
		if math.IsNaN(n) {
			return "must be a number, got NaN"
		}
	case domain.FieldTypeBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Sprintf("must be a boolean, got %T", v)
		}
	case domain.FieldTypeObject:
		obj, ok := domain.AsObject(v)
		if !ok {
			return fmt.Sprintf("must be an object, got %T", v)
		}
		for key, inner := range obj {
			if _, nested := domain.AsObject(inner); nested {
				return fmt.Sprintf("must not contain nested objects (key %q)", key)
			}
		}
	default:
		return fmt.Sprintf("has unknown type %q", t)
	}
	return ""
}
