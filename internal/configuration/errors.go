package configuration

import (
	"errors"
	"strings"
)

// ErrMissingField is matched by errors.Is for every *MissingFieldError.
var ErrMissingField = errors.New("missing configuration field")

// ErrEmptyFilename is returned by Builder.Build for ConfiguredFilename("").
var ErrEmptyFilename = errors.New("configured filename must not be empty")

// MissingFieldError is returned by Builder.Build when one or more required
// fields were never set.
type MissingFieldError struct {
	Fields []Field
}

func (e *MissingFieldError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.String()
	}
	return ErrMissingField.Error() + ": " + strings.Join(names, ", ")
}

// Is reports whether target is ErrMissingField.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// Has reports whether f is among the missing fields.
func (e *MissingFieldError) Has(f Field) bool {
	for _, missing := range e.Fields {
		if missing == f {
			return true
		}
	}
	return false
}
