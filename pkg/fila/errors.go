package fila

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkg/errors"
)

var (
	// ErrValidation matches every *ValidationError. Nothing is mutated when
	// it is returned.
	ErrValidation = errors.New("validation error")
	// ErrNotFound is returned when a position does not address a pending entry.
	ErrNotFound = errors.New("entry not found")
)

const (
	FieldName         = "name"
	FieldServiceClass = "service_class"
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ValidateName checks the length limit, counting characters rather than bytes.
func ValidateName(name string) error {
	if n := utf8.RuneCountInString(name); n > MaxNameLength {
		return &ValidationError{Field: FieldName, Reason: fmt.Sprintf("%d characters, maximum is %d", n, MaxNameLength)}
	}
	return nil
}
