package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/volunteer-scheduler/internal/application"
	"github.com/example/volunteer-scheduler/internal/persistence"
	"github.com/example/volunteer-scheduler/internal/recurrence"
	"github.com/example/volunteer-scheduler/internal/testfixtures"
)

func newPublishService(store *testfixtures.MemoryStore) *application.PublishService {
	factory := testfixtures.NewServiceFactory(
		testfixtures.WithFactoryIDGenerator(testfixtures.NewIDGenerator("shift")),
	)
	return factory.NewPublishService(testfixtures.PublishServiceDeps{
		Classes:   store,
		Terms:     store,
		Schedules: store,
		Publisher: store,
	})
}

func TestPublishService_PublishClass(t *testing.T) {
	t.Run("materializes shifts and flips the published flag", func(t *testing.T) {
		store := testfixtures.NewMemoryStore()
		term := testfixtures.NewTermFixture(testfixtures.WithTermDates(
			testfixtures.Date(2026, time.January, 5),
			testfixtures.Date(2026, time.February, 1),
		))
		class := testfixtures.NewClassFixture(term.ID)
		schedule := testfixtures.NewScheduleFixture(class.ID)
		store.SeedTerm(term)
		store.SeedClass(class)
		store.SeedSchedule(schedule)

		svc := newPublishService(store)
		if err := svc.PublishClass(context.Background(), class.ID); err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		published, err := store.GetClass(context.Background(), class.ID)
		if err != nil {
			t.Fatalf("failed to reload class: %v", err)
		}
		if !published.Published {
			t.Fatalf("expected class to be marked published")
		}

		shifts, err := store.ListShifts(context.Background(), persistence.ShiftFilter{ClassID: class.ID})
		if err != nil {
			t.Fatalf("failed to list shifts: %v", err)
		}
		// Mondays between Jan 5 and Feb 1 2026: the 5th, 12th, 19th and 26th.
		if len(shifts) != 4 {
			t.Fatalf("expected four shifts, got %d: %v", len(shifts), shifts)
		}
		for i, shift := range shifts {
			if shift.ScheduleID != schedule.ID || shift.ClassID != class.ID {
				t.Fatalf("shift %d: unexpected ownership %q/%q", i, shift.ScheduleID, shift.ClassID)
			}
			if got := shift.EndAt.Sub(shift.StartAt); got != 60*time.Minute {
				t.Fatalf("shift %d: expected 60 minute duration, got %v", i, got)
			}
			if shift.ID == "" {
				t.Fatalf("shift %d: expected a generated identifier", i)
			}
		}
		// 15:00 America/New_York in January is 20:00 UTC.
		if want := time.Date(2026, time.January, 5, 20, 0, 0, 0, time.UTC); !shifts[0].StartAt.Equal(want) {
			t.Fatalf("expected first shift at %v, got %v", want, shifts[0].StartAt)
		}
	})

	t.Run("removes blacked out dates from the expansion", func(t *testing.T) {
		store := testfixtures.NewMemoryStore()
		term := testfixtures.NewTermFixture(
			testfixtures.WithTermDates(
				testfixtures.Date(2026, time.January, 5),
				testfixtures.Date(2026, time.February, 1),
			),
			testfixtures.WithBlackouts(persistence.BlackoutRange{
				StartsOn: testfixtures.Date(2026, time.January, 12),
				EndsOn:   testfixtures.Date(2026, time.January, 16),
			}),
		)
		class := testfixtures.NewClassFixture(term.ID)
		store.SeedTerm(term)
		store.SeedClass(class)
		store.SeedSchedule(testfixtures.NewScheduleFixture(class.ID))

		svc := newPublishService(store)
		if err := svc.PublishClass(context.Background(), class.ID); err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		shifts, err := store.ListShifts(context.Background(), persistence.ShiftFilter{ClassID: class.ID})
		if err != nil {
			t.Fatalf("failed to list shifts: %v", err)
		}
		if len(shifts) != 3 {
			t.Fatalf("expected the January 12 shift to be excluded, got %d shifts", len(shifts))
		}
		for _, shift := range shifts {
			if shift.Date.Equal(testfixtures.Date(2026, time.January, 12)) {
				t.Fatalf("expected no shift on the blacked-out date, got %v", shift)
			}
		}
	})

	t.Run("honors schedule effective date overrides", func(t *testing.T) {
		store := testfixtures.NewMemoryStore()
		term := testfixtures.NewTermFixture(testfixtures.WithTermDates(
			testfixtures.Date(2026, time.January, 5),
			testfixtures.Date(2026, time.March, 29),
		))
		class := testfixtures.NewClassFixture(term.ID)
		schedule := testfixtures.NewScheduleFixture(class.ID, testfixtures.WithEffectiveDates(
			testfixtures.DatePtr(2026, time.February, 2),
			testfixtures.DatePtr(2026, time.February, 15),
		))
		store.SeedTerm(term)
		store.SeedClass(class)
		store.SeedSchedule(schedule)

		svc := newPublishService(store)
		if err := svc.PublishClass(context.Background(), class.ID); err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		shifts, err := store.ListShifts(context.Background(), persistence.ShiftFilter{ScheduleID: schedule.ID})
		if err != nil {
			t.Fatalf("failed to list shifts: %v", err)
		}
		// Mondays inside the override window: Feb 2 and Feb 9 only.
		if len(shifts) != 2 {
			t.Fatalf("expected two shifts inside the override window, got %d: %v", len(shifts), shifts)
		}
	})

	t.Run("rejects republishing with an illegal state error", func(t *testing.T) {
		store := testfixtures.NewMemoryStore()
		term := testfixtures.NewTermFixture(testfixtures.WithTermDates(
			testfixtures.Date(2026, time.January, 5),
			testfixtures.Date(2026, time.February, 1),
		))
		class := testfixtures.NewClassFixture(term.ID)
		store.SeedTerm(term)
		store.SeedClass(class)
		store.SeedSchedule(testfixtures.NewScheduleFixture(class.ID))

		svc := newPublishService(store)
		if err := svc.PublishClass(context.Background(), class.ID); err != nil {
			t.Fatalf("first publish failed: %v", err)
		}
		before, err := store.ListShifts(context.Background(), persistence.ShiftFilter{ClassID: class.ID})
		if err != nil {
			t.Fatalf("failed to list shifts: %v", err)
		}

		if err := svc.PublishClass(context.Background(), class.ID); !errors.Is(err, application.ErrClassPublished) {
			t.Fatalf("expected ErrClassPublished, got %v", err)
		}

		after, err := store.ListShifts(context.Background(), persistence.ShiftFilter{ClassID: class.ID})
		if err != nil {
			t.Fatalf("failed to list shifts: %v", err)
		}
		if len(after) != len(before) {
			t.Fatalf("expected shift rows to be untouched, had %d now %d", len(before), len(after))
		}
	})

	t.Run("commits nothing when the atomic write fails", func(t *testing.T) {
		store := testfixtures.NewMemoryStore()
		term := testfixtures.NewTermFixture(testfixtures.WithTermDates(
			testfixtures.Date(2026, time.January, 5),
			testfixtures.Date(2026, time.February, 1),
		))
		class := testfixtures.NewClassFixture(term.ID)
		store.SeedTerm(term)
		store.SeedClass(class)
		store.SeedSchedule(testfixtures.NewScheduleFixture(class.ID))
		store.PublishErr[class.ID] = errors.New("disk full")

		svc := newPublishService(store)
		if err := svc.PublishClass(context.Background(), class.ID); err == nil {
			t.Fatalf("expected the publish to fail")
		}

		reloaded, err := store.GetClass(context.Background(), class.ID)
		if err != nil {
			t.Fatalf("failed to reload class: %v", err)
		}
		if reloaded.Published {
			t.Fatalf("expected class to stay unpublished after a failed write")
		}
		shifts, err := store.ListShifts(context.Background(), persistence.ShiftFilter{ClassID: class.ID})
		if err != nil {
			t.Fatalf("failed to list shifts: %v", err)
		}
		if len(shifts) != 0 {
			t.Fatalf("expected no shifts after a failed write, got %d", len(shifts))
		}
	})

	t.Run("propagates ErrNotFound for unknown classes", func(t *testing.T) {
		svc := newPublishService(testfixtures.NewMemoryStore())

		if err := svc.PublishClass(context.Background(), "missing"); !errors.Is(err, application.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("propagates ErrNotFound when the term is missing", func(t *testing.T) {
		store := testfixtures.NewMemoryStore()
		class := testfixtures.NewClassFixture("missing-term")
		store.SeedClass(class)

		svc := newPublishService(store)
		if err := svc.PublishClass(context.Background(), class.ID); !errors.Is(err, application.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("requires term dates before publishing", func(t *testing.T) {
		store := testfixtures.NewMemoryStore()
		term := testfixtures.NewTermFixture(testfixtures.WithTermDates(time.Time{}, time.Time{}))
		class := testfixtures.NewClassFixture(term.ID)
		store.SeedTerm(term)
		store.SeedClass(class)
		store.SeedSchedule(testfixtures.NewScheduleFixture(class.ID))

		svc := newPublishService(store)
		err := svc.PublishClass(context.Background(), class.ID)

		var vErr *application.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["term"]; !ok {
			t.Fatalf("expected term field error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("surfaces corrupted stored rules", func(t *testing.T) {
		store := testfixtures.NewMemoryStore()
		term := testfixtures.NewTermFixture(testfixtures.WithTermDates(
			testfixtures.Date(2026, time.January, 5),
			testfixtures.Date(2026, time.February, 1),
		))
		class := testfixtures.NewClassFixture(term.ID)
		store.SeedTerm(term)
		store.SeedClass(class)
		store.SeedSchedule(testfixtures.NewScheduleFixture(class.ID, testfixtures.WithRule("not a rule")))

		svc := newPublishService(store)
		err := svc.PublishClass(context.Background(), class.ID)
		if !errors.Is(err, recurrence.ErrMalformedRule) {
			t.Fatalf("expected ErrMalformedRule, got %v", err)
		}

		reloaded, getErr := store.GetClass(context.Background(), class.ID)
		if getErr != nil {
			t.Fatalf("failed to reload class: %v", getErr)
		}
		if reloaded.Published {
			t.Fatalf("expected class to stay unpublished when a rule is corrupt")
		}
	})

	t.Run("publishes a class without schedules as an empty shift set", func(t *testing.T) {
		store := testfixtures.NewMemoryStore()
		term := testfixtures.NewTermFixture(testfixtures.WithTermDates(
			testfixtures.Date(2026, time.January, 5),
			testfixtures.Date(2026, time.February, 1),
		))
		class := testfixtures.NewClassFixture(term.ID)
		store.SeedTerm(term)
		store.SeedClass(class)

		svc := newPublishService(store)
		if err := svc.PublishClass(context.Background(), class.ID); err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		reloaded, err := store.GetClass(context.Background(), class.ID)
		if err != nil {
			t.Fatalf("failed to reload class: %v", err)
		}
		if !reloaded.Published {
			t.Fatalf("expected the empty class to be published")
		}
	})
}

func TestPublishService_PublishAllUnpublished(t *testing.T) {
	t.Run("isolates per class failures", func(t *testing.T) {
		store := testfixtures.NewMemoryStore()
		term := testfixtures.NewTermFixture(testfixtures.WithTermDates(
			testfixtures.Date(2026, time.January, 5),
			testfixtures.Date(2026, time.February, 1),
		))
		store.SeedTerm(term)

		healthy := testfixtures.NewClassFixture(term.ID)
		broken := testfixtures.NewClassFixture(term.ID)
		store.SeedClass(healthy)
		store.SeedClass(broken)
		store.SeedSchedule(testfixtures.NewScheduleFixture(healthy.ID))
		store.SeedSchedule(testfixtures.NewScheduleFixture(broken.ID, testfixtures.WithRule("corrupt")))

		svc := newPublishService(store)
		outcomes, err := svc.PublishAllUnpublished(context.Background())
		if err != nil {
			t.Fatalf("expected the sweep itself to succeed, got %v", err)
		}
		if len(outcomes) != 2 {
			t.Fatalf("expected two outcomes, got %d", len(outcomes))
		}

		byClass := make(map[string]application.PublishOutcome, len(outcomes))
		for _, outcome := range outcomes {
			byClass[outcome.ClassID] = outcome
		}

		if outcome := byClass[healthy.ID]; outcome.Err != nil || outcome.ShiftCount != 4 {
			t.Fatalf("expected the healthy class to publish four shifts, got %+v", outcome)
		}
		if outcome := byClass[broken.ID]; !errors.Is(outcome.Err, recurrence.ErrMalformedRule) {
			t.Fatalf("expected the broken class to fail with ErrMalformedRule, got %+v", outcome)
		}

		reloaded, err := store.GetClass(context.Background(), healthy.ID)
		if err != nil {
			t.Fatalf("failed to reload class: %v", err)
		}
		if !reloaded.Published {
			t.Fatalf("expected the healthy class to be published despite the broken sibling")
		}
	})

	t.Run("skips already published classes", func(t *testing.T) {
		store := testfixtures.NewMemoryStore()
		term := testfixtures.NewTermFixture(testfixtures.WithTermDates(
			testfixtures.Date(2026, time.January, 5),
			testfixtures.Date(2026, time.February, 1),
		))
		store.SeedTerm(term)
		store.SeedClass(testfixtures.NewClassFixture(term.ID, testfixtures.Published()))
		pending := testfixtures.NewClassFixture(term.ID)
		store.SeedClass(pending)

		svc := newPublishService(store)
		outcomes, err := svc.PublishAllUnpublished(context.Background())
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(outcomes) != 1 || outcomes[0].ClassID != pending.ID {
			t.Fatalf("expected only the pending class in the sweep, got %+v", outcomes)
		}
	})

	t.Run("returns no outcomes when everything is published", func(t *testing.T) {
		store := testfixtures.NewMemoryStore()
		store.SeedClass(testfixtures.NewClassFixture("term-x", testfixtures.Published()))

		svc := newPublishService(store)
		outcomes, err := svc.PublishAllUnpublished(context.Background())
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(outcomes) != 0 {
			t.Fatalf("expected no outcomes, got %+v", outcomes)
		}
	})
}
