package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSchema marks an invalid schema definition.
	ErrSchema = errors.New("invalid schema")
	// ErrValidation marks a record that does not conform to its schema.
	ErrValidation = errors.New("invalid record")
	// ErrNotFound is returned by update and remove for unknown identifiers.
	ErrNotFound = errors.New("document not found")
	// ErrQuerySyntax marks a query pattern that cannot be parsed for its field.
	ErrQuerySyntax = errors.New("invalid query")
	// ErrFieldNotIndexed is returned when a query names a field without an index.
	ErrFieldNotIndexed = fmt.Errorf("%w: field not indexed", ErrQuerySyntax)
	// ErrArtifactNotFound is returned by adapters when an artifact was never written.
	ErrArtifactNotFound = errors.New("artifact not found")
	// ErrUnknownCollection is returned when a collection name is not configured.
	ErrUnknownCollection = errors.New("unknown collection")
)

// FieldError describes a problem with a single field, either in a schema
// definition or in a record.
type FieldError struct {
	Field  string
	Reason string
	kind   error
}

// NewSchemaError returns a FieldError that unwraps to ErrSchema.
func NewSchemaError(field, format string, args ...interface{}) *FieldError {
	return &FieldError{Field: field, Reason: fmt.Sprintf(format, args...), kind: ErrSchema}
}

// NewValidationError returns a FieldError that unwraps to ErrValidation.
func NewValidationError(field, format string, args ...interface{}) *FieldError {
	return &FieldError{Field: field, Reason: fmt.Sprintf(format, args...), kind: ErrValidation}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: field %q %s", e.kind, e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return e.kind }
