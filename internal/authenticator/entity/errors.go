package entity

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	// ErrValidation marks manual-entry, update or bundle fields that are out
	// of bounds. Match with errors.Is; the details live in *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrSchemaVersion is returned for a bundle whose version is not BundleVersion.
	ErrSchemaVersion = errors.New("unsupported bundle version")

	// ErrStorageRead marks a persisted snapshot that exists but cannot be read
	// or decoded.
	ErrStorageRead = errors.New("snapshot unreadable")
)

// ValidationError carries per-field messages keyed by wire field path, for
// example "accounts[1].digits".
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns a ValidationError for fields.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}

	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
