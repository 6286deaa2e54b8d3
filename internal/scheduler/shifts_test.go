package scheduler

import (
	"errors"
	"testing"
	"time"
)

func TestBuildShifts(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	t.Run("derives end times from the duration", func(t *testing.T) {
		occurrences := []time.Time{
			time.Date(2026, time.January, 5, 15, 0, 0, 0, newYork),
			time.Date(2026, time.January, 12, 15, 0, 0, 0, newYork),
		}

		shifts, err := BuildShifts("schedule-1", "class-1", occurrences, 90)
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if len(shifts) != 2 {
			t.Fatalf("expected two shifts, got %d", len(shifts))
		}
		for i, shift := range shifts {
			if shift.ScheduleID != "schedule-1" || shift.ClassID != "class-1" {
				t.Fatalf("shift %d: unexpected ownership %q/%q", i, shift.ScheduleID, shift.ClassID)
			}
			if got := shift.EndAt.Sub(shift.StartAt); got != 90*time.Minute {
				t.Fatalf("shift %d: expected 90 minute duration, got %v", i, got)
			}
		}

		// 15:00 EST is 20:00 UTC.
		if want := time.Date(2026, time.January, 5, 20, 0, 0, 0, time.UTC); !shifts[0].StartAt.Equal(want) {
			t.Fatalf("expected UTC start %v, got %v", want, shifts[0].StartAt)
		}
		if loc := shifts[0].StartAt.Location(); loc != time.UTC {
			t.Fatalf("expected start to be normalized to UTC, got %v", loc)
		}
	})

	t.Run("takes the shift date from the zoned calendar day", func(t *testing.T) {
		// 23:30 EST on the 5th is already the 6th in UTC; the shift date must
		// stay on the occurrence's local day.
		occurrences := []time.Time{time.Date(2026, time.January, 5, 23, 30, 0, 0, newYork)}

		shifts, err := BuildShifts("schedule-1", "class-1", occurrences, 60)
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if want := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC); !shifts[0].Date.Equal(want) {
			t.Fatalf("expected local calendar date %v, got %v", want, shifts[0].Date)
		}
		if shifts[0].StartAt.Day() != 6 {
			t.Fatalf("expected UTC start to roll into the 6th, got %v", shifts[0].StartAt)
		}
	})

	t.Run("preserves occurrence order", func(t *testing.T) {
		occurrences := []time.Time{
			time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC),
			time.Date(2026, time.February, 2, 9, 0, 0, 0, time.UTC),
		}

		shifts, err := BuildShifts("schedule-1", "class-1", occurrences, 45)
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if !shifts[0].StartAt.After(shifts[1].StartAt) {
			t.Fatalf("expected input order to be preserved, got %v then %v", shifts[0].StartAt, shifts[1].StartAt)
		}
	})

	t.Run("returns an empty slice for no occurrences", func(t *testing.T) {
		shifts, err := BuildShifts("schedule-1", "class-1", nil, 60)
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(shifts) != 0 {
			t.Fatalf("expected no shifts, got %d", len(shifts))
		}
	})

	t.Run("rejects non positive durations", func(t *testing.T) {
		for _, minutes := range []int{0, -30} {
			_, err := BuildShifts("schedule-1", "class-1", nil, minutes)
			if !errors.Is(err, ErrInvalidDuration) {
				t.Fatalf("duration %d: expected ErrInvalidDuration, got %v", minutes, err)
			}
		}
	})
}
