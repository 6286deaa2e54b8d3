package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/example/volunteer-scheduler/internal/persistence"
	"github.com/example/volunteer-scheduler/internal/recurrence"
)

func TestValidationError(t *testing.T) {
	t.Run("collects field level messages", func(t *testing.T) {
		vErr := &ValidationError{}
		if vErr.HasErrors() {
			t.Fatalf("expected a fresh error to be empty")
		}

		vErr.add("name", "name is required")
		vErr.add("dates", "start and end dates are required")

		if !vErr.HasErrors() {
			t.Fatalf("expected recorded errors")
		}
		if len(vErr.FieldErrors) != 2 {
			t.Fatalf("expected two field errors, got %d", len(vErr.FieldErrors))
		}
		if vErr.Error() == "" {
			t.Fatalf("expected a non-empty error message")
		}
	})

	t.Run("is matchable through wrapping", func(t *testing.T) {
		vErr := &ValidationError{}
		vErr.add("rule", "bad rule")
		wrapped := fmt.Errorf("schedule x: %w", vErr)

		var target *ValidationError
		if !errors.As(wrapped, &target) {
			t.Fatalf("expected errors.As to find the ValidationError")
		}
		if target.FieldErrors["rule"] != "bad rule" {
			t.Fatalf("unexpected field errors: %v", target.FieldErrors)
		}
	})
}

func TestErrorKind(t *testing.T) {
	vErr := &ValidationError{}
	vErr.add("name", "name is required")

	tests := map[string]struct {
		err      error
		expected string
	}{
		"nil":                {err: nil, expected: ""},
		"not found":          {err: ErrNotFound, expected: "not_found"},
		"wrapped not found":  {err: fmt.Errorf("class x: %w", ErrNotFound), expected: "not_found"},
		"class published":    {err: ErrClassPublished, expected: "class_published"},
		"corrupt rule":       {err: fmt.Errorf("schedule y: %w", recurrence.ErrMalformedRule), expected: "corrupt_rule"},
		"duplicate":          {err: persistence.ErrDuplicate, expected: "duplicate"},
		"validation":         {err: vErr, expected: "validation"},
		"wrapped validation": {err: fmt.Errorf("input: %w", vErr), expected: "validation"},
		"anything else":      {err: errors.New("boom"), expected: "unexpected"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if got := ErrorKind(tc.err); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
