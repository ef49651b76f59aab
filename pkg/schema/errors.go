package schema

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidSchema marks documents whose shape breaks a tree invariant.
	ErrInvalidSchema = errors.New("schema: invalid schema")
	// ErrUnsupportedVersion is returned for documents tagged with a version
	// this package cannot read without risking silent changes.
	ErrUnsupportedVersion = errors.New("schema: unsupported version")
	// ErrUnknownAttribute is returned when a patch names an attribute the
	// node type does not define.
	ErrUnknownAttribute = errors.New("schema: unknown attribute")
	// ErrProtectedAttribute is returned when a patch tries to change ids,
	// types or child collections.
	ErrProtectedAttribute = errors.New("schema: protected attribute")
	// ErrInvalidAttribute is returned when a patch value does not fit the
	// attribute's type.
	ErrInvalidAttribute = errors.New("schema: invalid attribute value")
)

// ValidationError lists every problem found while validating a document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Problems) == 0 {
		return ErrInvalidSchema.Error()
	}
	return ErrInvalidSchema.Error() + ": " + strings.Join(e.Problems, "; ")
}

// Unwrap lets errors.Is match ErrInvalidSchema.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidSchema
}
