package scheduler

import (
	"errors"
	"time"

	"github.com/example/volunteer-scheduler/internal/recurrence"
)

// Term carries the date bounds and blackout ranges a term imposes on its
// schedules.
type Term struct {
	StartDate time.Time
	EndDate   time.Time
	Blackouts []recurrence.DateRange
}

// ScheduleWindow carries a schedule's optional per-schedule date overrides.
type ScheduleWindow struct {
	EffectiveStart *time.Time
	EffectiveEnd   *time.Time
}

// ErrMissingBounds indicates neither the schedule nor its term supplies a
// usable date range, so occurrence expansion cannot be seeded.
var ErrMissingBounds = errors.New("scheduler: term dates are required before publishing")

// ResolveBounds returns the effective expansion window for a schedule. When
// the schedule carries its own override dates they win; otherwise the term's
// dates apply. Overrides are applied per end, so a schedule may override only
// its start or only its end.
func ResolveBounds(window ScheduleWindow, term Term) (time.Time, time.Time, error) {
	start := term.StartDate
	if window.EffectiveStart != nil {
		start = *window.EffectiveStart
	}
	end := term.EndDate
	if window.EffectiveEnd != nil {
		end = *window.EffectiveEnd
	}
	if start.IsZero() || end.IsZero() {
		return time.Time{}, time.Time{}, ErrMissingBounds
	}
	return start, end, nil
}

// ResolveExclusions returns the term's blackout ranges verbatim. Callers add
// no additional range.
func ResolveExclusions(term Term) []recurrence.DateRange {
	if len(term.Blackouts) == 0 {
		return nil
	}
	out := make([]recurrence.DateRange, len(term.Blackouts))
	copy(out, term.Blackouts)
	return out
}
