package persistence

import "context"

// TermRepository exposes CRUD operations for terms and their blackout ranges.
type TermRepository interface {
	CreateTerm(ctx context.Context, term Term) error
	UpdateTerm(ctx context.Context, term Term) error
	GetTerm(ctx context.Context, id string) (Term, error)
	ListTerms(ctx context.Context) ([]Term, error)
	DeleteTerm(ctx context.Context, id string) error
}

// ClassRepository exposes read and lifecycle operations for classes.
type ClassRepository interface {
	CreateClass(ctx context.Context, class Class) error
	GetClass(ctx context.Context, id string) (Class, error)
	ListClasses(ctx context.Context) ([]Class, error)
	ListUnpublishedClasses(ctx context.Context) ([]Class, error)
}

// ScheduleRepository stores schedules and their instructor/volunteer rosters.
type ScheduleRepository interface {
	CreateSchedule(ctx context.Context, schedule Schedule) error
	UpdateSchedule(ctx context.Context, schedule Schedule) error
	GetSchedule(ctx context.Context, id string) (Schedule, error)
	ListSchedulesForClass(ctx context.Context, classID string) ([]Schedule, error)
	DeleteSchedule(ctx context.Context, id string) error
}

// ShiftFilter narrows shift queries.
type ShiftFilter struct {
	ScheduleID string
	ClassID    string
}

// ShiftRepository reads back materialized shifts and records cancellations.
// Shift creation happens only through the publish unit of work.
type ShiftRepository interface {
	ListShifts(ctx context.Context, filter ShiftFilter) ([]Shift, error)
	MarkShiftCanceled(ctx context.Context, id string, reason *string) error
}

// PublishUnitOfWork applies the write half of publishing atomically: all
// shift rows are inserted and the class's published flag flips in one
// transaction, or nothing is observably committed.
type PublishUnitOfWork interface {
	PublishAtomically(ctx context.Context, classID string, shifts []Shift) error
}
