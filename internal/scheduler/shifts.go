package scheduler

import (
	"errors"
	"time"
)

// Shift is the materialized form of one occurrence before it is assigned an
// identifier and persisted.
type Shift struct {
	ScheduleID string
	ClassID    string
	// Date is the occurrence's zoned calendar date, denormalized for fast
	// day-based querying.
	Date    time.Time
	StartAt time.Time
	EndAt   time.Time
}

// ErrInvalidDuration indicates the schedule duration is not positive.
var ErrInvalidDuration = errors.New("scheduler: duration must be positive")

// BuildShifts converts ordered occurrence instants into shift values. Each
// shift ends exactly durationMinutes after it starts, and start/end are
// normalized to UTC instants. The input order is preserved.
func BuildShifts(scheduleID, classID string, occurrences []time.Time, durationMinutes int) ([]Shift, error) {
	if durationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}

	duration := time.Duration(durationMinutes) * time.Minute
	shifts := make([]Shift, 0, len(occurrences))
	for _, start := range occurrences {
		y, m, d := start.Date()
		shifts = append(shifts, Shift{
			ScheduleID: scheduleID,
			ClassID:    classID,
			Date:       time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
			StartAt:    start.UTC(),
			EndAt:      start.Add(duration).UTC(),
		})
	}
	return shifts, nil
}
