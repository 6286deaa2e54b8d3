package persistence

import "time"

// Term represents a named date range bounding when a class's schedules may
// run, together with its blackout ranges.
type Term struct {
	ID        string
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Blackouts []BlackoutRange
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BlackoutRange is a closed inclusive date interval during which no
// occurrence is generated for any schedule in the term.
type BlackoutRange struct {
	StartsOn time.Time
	EndsOn   time.Time
}

// Class owns schedules and carries the one-way published flag.
type Class struct {
	ID        string
	Name      string
	TermID    string
	Published bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Schedule represents one recurring slot of a class. The recurrence is stored
// as a single canonical serialized rule string rather than structured
// columns, so it round-trips losslessly through the editing UI.
type Schedule struct {
	ID              string
	ClassID         string
	Rule            string
	DurationMinutes int
	// EffectiveStart and EffectiveEnd, when present, override the owning
	// term's date bounds for this schedule only.
	EffectiveStart *time.Time
	EffectiveEnd   *time.Time
	InstructorIDs  []string
	VolunteerIDs   []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Shift is one materialized, bookable occurrence of a schedule. Rows are
// created only by publishing and are immutable afterwards except for the
// cancellation fields, which the coverage workflow sets.
type Shift struct {
	ID           string
	ScheduleID   string
	ClassID      string
	Date         time.Time
	StartAt      time.Time
	EndAt        time.Time
	Canceled     bool
	CancelReason *string
	CreatedAt    time.Time
}
