package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/volunteer-scheduler/internal/persistence"
	"github.com/example/volunteer-scheduler/internal/recurrence"
)

var (
	termCounter     uint64
	classCounter    uint64
	scheduleCounter uint64
)

var referenceTime = time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
// It is a Monday.
func ReferenceTime() time.Time {
	return referenceTime
}

// Date is shorthand for a date-only value at midnight UTC.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DatePtr returns a pointer to a date-only value.
func DatePtr(year int, month time.Month, day int) *time.Time {
	d := Date(year, month, day)
	return &d
}

// TermOption configures a generated term fixture.
type TermOption func(*persistence.Term)

// NewTermFixture returns a deterministic spring-term fixture covering twelve
// weeks from the reference Monday, with optional overrides.
func NewTermFixture(opts ...TermOption) persistence.Term {
	idx := atomic.AddUint64(&termCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	term := persistence.Term{
		ID:        fmt.Sprintf("term-%03d", idx),
		Name:      fmt.Sprintf("Term %03d", idx),
		StartDate: Date(2026, time.January, 5),
		EndDate:   Date(2026, time.March, 29),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&term)
	}
	return term
}

// WithTermDates overrides the term's date range.
func WithTermDates(start, end time.Time) TermOption {
	return func(term *persistence.Term) {
		term.StartDate = start
		term.EndDate = end
	}
}

// WithBlackouts overrides the term's blackout ranges.
func WithBlackouts(blackouts ...persistence.BlackoutRange) TermOption {
	return func(term *persistence.Term) {
		term.Blackouts = blackouts
	}
}

// ClassOption configures a generated class fixture.
type ClassOption func(*persistence.Class)

// NewClassFixture returns a deterministic unpublished class fixture bound to
// the supplied term.
func NewClassFixture(termID string, opts ...ClassOption) persistence.Class {
	idx := atomic.AddUint64(&classCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	class := persistence.Class{
		ID:        fmt.Sprintf("class-%03d", idx),
		Name:      fmt.Sprintf("Class %03d", idx),
		TermID:    termID,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&class)
	}
	return class
}

// Published marks the class fixture as already published.
func Published() ClassOption {
	return func(class *persistence.Class) {
		class.Published = true
	}
}

// ScheduleOption configures a generated schedule fixture.
type ScheduleOption func(*persistence.Schedule)

// NewScheduleFixture returns a deterministic schedule fixture for the given
// class carrying an encoded weekly Monday 15:00 New York rule.
func NewScheduleFixture(classID string, opts ...ScheduleOption) persistence.Schedule {
	idx := atomic.AddUint64(&scheduleCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	schedule := persistence.Schedule{
		ID:              fmt.Sprintf("schedule-%03d", idx),
		ClassID:         classID,
		Rule:            MustEncodeRule(WeeklyRule(time.Monday, 1)),
		DurationMinutes: 60,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	for _, opt := range opts {
		opt(&schedule)
	}
	return schedule
}

// WithRule overrides the schedule fixture's stored rule string.
func WithRule(encoded string) ScheduleOption {
	return func(schedule *persistence.Schedule) {
		schedule.Rule = encoded
	}
}

// WithDuration overrides the schedule fixture's duration.
func WithDuration(minutes int) ScheduleOption {
	return func(schedule *persistence.Schedule) {
		schedule.DurationMinutes = minutes
	}
}

// WithEffectiveDates sets the schedule fixture's override window.
func WithEffectiveDates(start, end *time.Time) ScheduleOption {
	return func(schedule *persistence.Schedule) {
		schedule.EffectiveStart = start
		schedule.EffectiveEnd = end
	}
}

// WeeklyRule builds a weekly rule at 15:00 America/New_York.
func WeeklyRule(weekday time.Weekday, interval int) recurrence.Rule {
	return recurrence.Rule{
		Kind:      recurrence.KindWeekly,
		Weekday:   weekday,
		Interval:  interval,
		StartTime: recurrence.TimeOfDay{Hour: 15},
		Timezone:  "America/New_York",
	}
}

// MonthlyRule builds a monthly rule at 15:00 America/New_York.
func MonthlyRule(weekday time.Weekday, nth int) recurrence.Rule {
	return recurrence.Rule{
		Kind:      recurrence.KindMonthly,
		Weekday:   weekday,
		Nth:       nth,
		StartTime: recurrence.TimeOfDay{Hour: 15},
		Timezone:  "America/New_York",
	}
}

// SingleRule builds a single-dates rule at 15:00 America/New_York.
func SingleRule(dates ...time.Time) recurrence.Rule {
	return recurrence.Rule{
		Kind:       recurrence.KindSingle,
		ExtraDates: dates,
		StartTime:  recurrence.TimeOfDay{Hour: 15},
		Timezone:   "America/New_York",
	}
}

// MustEncodeRule encodes a rule and panics on failure. Fixtures only.
func MustEncodeRule(rule recurrence.Rule) string {
	encoded, err := recurrence.Encode(rule)
	if err != nil {
		panic(fmt.Sprintf("testfixtures: encode rule: %v", err))
	}
	return encoded
}
