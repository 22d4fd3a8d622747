package models

import "fmt"

// FieldError is returned by model validation; callers surface it as a client error.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func fieldError(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
