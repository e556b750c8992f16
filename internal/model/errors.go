package model

import "errors"

var (
	// ErrValidation is matched by every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when an operation needs an existing record.
	ErrNotFound = errors.New("not found")
)

// ValidationError is the only domain error class: a required text field
// was blank or otherwise unusable. Message is meant for the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError for field.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
