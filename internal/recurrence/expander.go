package recurrence

import (
	"time"

	"github.com/teambition/rrule-go"
)

// DateRange is a closed calendar-date interval. Both ends are inclusive and
// only the date components are significant.
type DateRange struct {
	StartsOn time.Time
	EndsOn   time.Time
}

// Contains reports whether the calendar date of t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	key := dateKey(t)
	return key >= dateKey(r.StartsOn) && key <= dateKey(r.EndsOn)
}

// Expand produces the ordered sequence of zone-resolved instants at which the
// rule occurs between startBound and endBound (both inclusive), with every
// date covered by the excluded ranges removed.
//
// Weekly and monthly rules respect the bounds strictly. Single rules emit
// exactly their explicit date set: the bounds are informative for that kind,
// since a single-date schedule is authored intentionally. Expansion is a pure
// function of its arguments; identical inputs yield identical output.
func Expand(rule Rule, startBound, endBound time.Time, excluded []DateRange) ([]time.Time, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	loc, err := rule.Location()
	if err != nil {
		return nil, err
	}

	var candidates []time.Time

	switch rule.Kind {
	case KindWeekly:
		anchor := nextWeekday(startBound, rule.Weekday)
		generated, err := generate(rrule.ROption{
			Freq:     rrule.WEEKLY,
			Interval: rule.Interval,
			Dtstart:  atTime(anchor, rule.StartTime, loc),
			Until:    endOfDay(endBound, loc),
		})
		if err != nil {
			return nil, err
		}
		candidates = generated
	case KindMonthly:
		generated, err := generate(rrule.ROption{
			Freq:      rrule.MONTHLY,
			Byweekday: []rrule.Weekday{nthWeekday(rule.Weekday, rule.Nth)},
			Dtstart:   atTime(startBound, rule.StartTime, loc),
			Until:     endOfDay(endBound, loc),
		})
		if err != nil {
			return nil, err
		}
		candidates = generated
	case KindSingle:
		for _, d := range rule.normalizedDates() {
			candidates = append(candidates, atTime(d, rule.StartTime, loc))
		}
	}

	occurrences := make([]time.Time, 0, len(candidates))
	for _, candidate := range candidates {
		if isExcluded(candidate, excluded) {
			continue
		}
		occurrences = append(occurrences, candidate)
	}
	return occurrences, nil
}

func generate(option rrule.ROption) ([]time.Time, error) {
	r, err := rrule.NewRRule(option)
	if err != nil {
		return nil, err
	}
	return r.All(), nil
}

func isExcluded(t time.Time, excluded []DateRange) bool {
	for _, r := range excluded {
		if r.Contains(t) {
			return true
		}
	}
	return false
}

// nextWeekday returns the first calendar date on or after t that falls on wd.
func nextWeekday(t time.Time, wd time.Weekday) time.Time {
	ahead := (int(wd) - int(t.Weekday()) + 7) % 7
	return t.AddDate(0, 0, ahead)
}

// atTime combines the calendar date of d with the wall-clock time in loc. The
// timezone, not fixed-offset arithmetic, resolves daylight-saving shifts.
func atTime(d time.Time, at TimeOfDay, loc *time.Location) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, at.Hour, at.Minute, 0, 0, loc)
}

// endOfDay returns the last representable second of the calendar date of d in
// loc, making the end bound inclusive of same-day occurrences.
func endOfDay(d time.Time, loc *time.Location) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 23, 59, 59, 0, loc)
}

func dateKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}
