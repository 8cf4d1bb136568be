package store

import "fmt"

// ValidationError reports a dispatch whose payload violates an action
// contract. The store commits no snapshot when one is returned; the
// previous state remains current.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
