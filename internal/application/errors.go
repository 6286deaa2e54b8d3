package application

import "errors"

var (
	// ErrNotFound is returned when a referenced class, term, schedule or
	// shift does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrClassPublished is returned when an operation requires an
	// unpublished class: republishing, or structurally editing schedules
	// after publish. It is an illegal-state failure, distinct from
	// validation.
	ErrClassPublished = errors.New("application: class already published")
)

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
