// Package errors holds the domain error kinds shared by the store, the
// orchestrators and the transport layer.
package errors

import (
	"fmt"
)

var (
	ErrNotFound           = fmt.Errorf("not found")
	ErrInvalidInput       = fmt.Errorf("invalid input")
	ErrPreconditionFailed = fmt.Errorf("precondition failed")
	ErrExternalService    = fmt.Errorf("external service failure")

	// ErrNoStandardsSelected is returned when documents are requested for a
	// company without any standard selection.
	ErrNoStandardsSelected = fmt.Errorf("%w: select standards before generating documents", ErrPreconditionFailed)
)

// ValidationError reports a malformed or missing input field.
type ValidationError struct {
	Field   string
	Message string
}

func (v *ValidationError) Error() string {
	if v.Field == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidInput, v.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput, v.Field, v.Message)
}

func (v *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Invalid builds a ValidationError for field.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
