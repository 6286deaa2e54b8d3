package application

import (
	"errors"

	"github.com/example/volunteer-scheduler/internal/persistence"
	"github.com/example/volunteer-scheduler/internal/recurrence"
)

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrClassPublished):
		return "class_published"
	case errors.Is(err, recurrence.ErrMalformedRule):
		return "corrupt_rule"
	case errors.Is(err, persistence.ErrDuplicate):
		return "duplicate"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
