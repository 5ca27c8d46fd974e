package respond

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports one or more field-level failures. Fields maps a
// field path (dot-notation for nested fields) to a human-readable message.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError from a field error map.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Message: "validation failed", Fields: fields}
}

// MissingFieldsError reports absent required fields with the exact list in
// the message, sorted for deterministic output.
func MissingFieldsError(fields []string) *ValidationError {
	sorted := append([]string(nil), fields...)
	sort.Strings(sorted)
	fieldMap := make(map[string]string, len(sorted))
	for _, f := range sorted {
		fieldMap[f] = "is required"
	}
	return &ValidationError{
		Message: fmt.Sprintf("missing required fields: %s", strings.Join(sorted, ", ")),
		Fields:  fieldMap,
	}
}

// ConflictError reports a uniqueness violation on a single field.
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("a record with %s %q already exists", e.Field, e.Value)
}

func NewConflictError(field, value string) *ConflictError {
	return &ConflictError{Field: field, Value: value}
}

// NotFoundError reports a missing record by kind and identifier.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// UnauthorizedError means no authenticated caller could be resolved.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

// ForbiddenError means the caller's role is not in the allow-list.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	_, ok := err.(*ConflictError)
	return ok
}
