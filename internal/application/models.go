package application

import (
	"context"
	"time"

	"github.com/example/volunteer-scheduler/internal/persistence"
	"github.com/example/volunteer-scheduler/internal/recurrence"
)

// TermStore exposes the term reads and writes the services need.
type TermStore interface {
	CreateTerm(ctx context.Context, term persistence.Term) error
	UpdateTerm(ctx context.Context, term persistence.Term) error
	GetTerm(ctx context.Context, id string) (persistence.Term, error)
	ListTerms(ctx context.Context) ([]persistence.Term, error)
	DeleteTerm(ctx context.Context, id string) error
}

// ClassStore exposes class reads and creation.
type ClassStore interface {
	CreateClass(ctx context.Context, class persistence.Class) error
	GetClass(ctx context.Context, id string) (persistence.Class, error)
	ListClasses(ctx context.Context) ([]persistence.Class, error)
	ListUnpublishedClasses(ctx context.Context) ([]persistence.Class, error)
}

// ScheduleStore exposes schedule reads and writes.
type ScheduleStore interface {
	CreateSchedule(ctx context.Context, schedule persistence.Schedule) error
	UpdateSchedule(ctx context.Context, schedule persistence.Schedule) error
	GetSchedule(ctx context.Context, id string) (persistence.Schedule, error)
	ListSchedulesForClass(ctx context.Context, classID string) ([]persistence.Schedule, error)
	DeleteSchedule(ctx context.Context, id string) error
}

// ShiftStore reads back materialized shifts.
type ShiftStore interface {
	ListShifts(ctx context.Context, filter persistence.ShiftFilter) ([]persistence.Shift, error)
}

// Publisher applies the publish write set atomically.
type Publisher interface {
	PublishAtomically(ctx context.Context, classID string, shifts []persistence.Shift) error
}

// ScheduleInput captures caller provided schedule fields. The rule arrives as
// structured fields from the editing UI and is serialized exactly once, at
// the storage boundary.
type ScheduleInput struct {
	ClassID         string
	Rule            recurrence.Rule
	DurationMinutes int
	EffectiveStart  *time.Time
	EffectiveEnd    *time.Time
	InstructorIDs   []string
	VolunteerIDs    []string
}

// ScheduleDetails pairs a stored schedule with its decoded rule for the
// editing UI.
type ScheduleDetails struct {
	Schedule persistence.Schedule
	Rule     recurrence.Rule
}

// TermInput captures caller provided term fields.
type TermInput struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Blackouts []persistence.BlackoutRange
}

// ClassInput captures caller provided class fields.
type ClassInput struct {
	Name   string
	TermID string
}

// PublishOutcome records the result of publishing one class during a sweep.
type PublishOutcome struct {
	ClassID    string
	ShiftCount int
	Err        error
}
