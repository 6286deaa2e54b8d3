package testfixtures

import (
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	t.Run("starts at the supplied instant", func(t *testing.T) {
		start := time.Date(2026, time.February, 1, 12, 0, 0, 0, time.UTC)
		clock := NewClock(start)

		if !clock.Now().Equal(start) {
			t.Fatalf("expected %v, got %v", start, clock.Now())
		}
	})

	t.Run("falls back to the reference time", func(t *testing.T) {
		clock := NewClock(time.Time{})
		if !clock.Now().Equal(ReferenceTime()) {
			t.Fatalf("expected reference time, got %v", clock.Now())
		}
	})

	t.Run("advance moves the clock forward", func(t *testing.T) {
		clock := NewClock(ReferenceTime())
		updated := clock.Advance(90 * time.Minute)

		if want := ReferenceTime().Add(90 * time.Minute); !updated.Equal(want) {
			t.Fatalf("expected %v, got %v", want, updated)
		}
		if !clock.Now().Equal(updated) {
			t.Fatalf("expected Now to track the advanced time")
		}
	})

	t.Run("NowFunc on a nil clock uses the real time source", func(t *testing.T) {
		var clock *Clock
		now := clock.NowFunc()
		if now == nil {
			t.Fatalf("expected a usable function")
		}
		if now().IsZero() {
			t.Fatalf("expected a real timestamp")
		}
	})
}
