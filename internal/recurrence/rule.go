package recurrence

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Kind identifies the shape of a recurrence rule.
type Kind int

const (
	// KindUnspecified indicates the rule kind is not set.
	KindUnspecified Kind = iota
	// KindWeekly fires every Interval weeks on Weekday.
	KindWeekly
	// KindMonthly fires on the Nth occurrence of Weekday within each month.
	KindMonthly
	// KindSingle fires only on the explicit dates listed in ExtraDates.
	KindSingle
)

// String returns a stable label for the kind.
func (k Kind) String() string {
	switch k {
	case KindWeekly:
		return "weekly"
	case KindMonthly:
		return "monthly"
	case KindSingle:
		return "single"
	default:
		return "unspecified"
	}
}

// TimeOfDay is a wall-clock time without a date. Seconds are always zero;
// rules fire on minute boundaries.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Rule describes when a schedule occurs. It is a closed union over Kind:
// weekly rules use Weekday and Interval, monthly rules use Weekday and Nth,
// single rules use ExtraDates. StartTime and Timezone apply to every kind.
type Rule struct {
	Kind     Kind
	Weekday  time.Weekday
	Interval int
	// Nth selects the occurrence of Weekday within the month: 1 through 5,
	// or -1 for the last occurrence.
	Nth int
	// ExtraDates holds date-only values; the time and zone portions are
	// supplied by StartTime and Timezone.
	ExtraDates []time.Time
	StartTime  TimeOfDay
	Timezone   string
}

// ErrInvalidRule indicates the rule violates a structural invariant.
var ErrInvalidRule = errors.New("recurrence: invalid rule")

// Validate reports the first structural problem with the rule, if any.
func (r Rule) Validate() error {
	if r.Timezone == "" {
		return fmt.Errorf("%w: timezone is required", ErrInvalidRule)
	}
	if _, err := time.LoadLocation(r.Timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidRule, r.Timezone)
	}
	if r.StartTime.Hour < 0 || r.StartTime.Hour > 23 || r.StartTime.Minute < 0 || r.StartTime.Minute > 59 {
		return fmt.Errorf("%w: start time %02d:%02d out of range", ErrInvalidRule, r.StartTime.Hour, r.StartTime.Minute)
	}

	switch r.Kind {
	case KindWeekly:
		if r.Interval < 1 {
			return fmt.Errorf("%w: weekly interval must be at least 1, got %d", ErrInvalidRule, r.Interval)
		}
	case KindMonthly:
		if r.Nth != -1 && (r.Nth < 1 || r.Nth > 5) {
			return fmt.Errorf("%w: monthly ordinal must be 1..5 or -1, got %d", ErrInvalidRule, r.Nth)
		}
	case KindSingle:
		if len(r.ExtraDates) == 0 {
			return fmt.Errorf("%w: single rule requires at least one date", ErrInvalidRule)
		}
	default:
		return fmt.Errorf("%w: unspecified kind", ErrInvalidRule)
	}

	return nil
}

// Location resolves the rule's timezone. Validate must have succeeded.
func (r Rule) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidRule, r.Timezone)
	}
	return loc, nil
}

// normalizedDates returns ExtraDates reduced to unique calendar dates in
// ascending order. The returned values are date-only (midnight UTC).
func (r Rule) normalizedDates() []time.Time {
	seen := make(map[string]time.Time, len(r.ExtraDates))
	for _, d := range r.ExtraDates {
		y, m, day := d.Date()
		normalized := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
		seen[normalized.Format("20060102")] = normalized
	}
	dates := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// Equal reports whether two rules describe the same recurrence. ExtraDates
// are compared as calendar-date sets.
func (r Rule) Equal(other Rule) bool {
	if r.Kind != other.Kind || r.StartTime != other.StartTime || r.Timezone != other.Timezone {
		return false
	}
	switch r.Kind {
	case KindWeekly:
		return r.Weekday == other.Weekday && r.Interval == other.Interval
	case KindMonthly:
		return r.Weekday == other.Weekday && r.Nth == other.Nth
	case KindSingle:
		a, b := r.normalizedDates(), other.normalizedDates()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
