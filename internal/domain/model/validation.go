package model

import (
	"sort"
	"strings"

	"cadi-backend/internal/domain"
)

// ValidationError carries per-field message keys. The keys are resolved to
// user-facing text by the transport layer.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, key string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: key}}
}

func (e *ValidationError) Add(field, key string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = key
}

func (e *ValidationError) Empty() bool { return e == nil || len(e.Fields) == 0 }

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return domain.ErrValidation.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return domain.ErrValidation }

// orNil keeps callers from returning a typed nil inside an error interface.
func (e *ValidationError) orNil() error {
	if e.Empty() {
		return nil
	}
	return e
}
