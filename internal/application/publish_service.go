package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/volunteer-scheduler/internal/logging"
	"github.com/example/volunteer-scheduler/internal/persistence"
	"github.com/example/volunteer-scheduler/internal/recurrence"
	"github.com/example/volunteer-scheduler/internal/scheduler"
)

// PublishService expands every schedule of a class into shift rows and flips
// the class to published, atomically.
type PublishService struct {
	classes     ClassStore
	terms       TermStore
	schedules   ScheduleStore
	publisher   Publisher
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewPublishService wires dependencies for publishing operations.
func NewPublishService(classes ClassStore, terms TermStore, schedules ScheduleStore, publisher Publisher, idGenerator func() string, now func() time.Time) *PublishService {
	return NewPublishServiceWithLogger(classes, terms, schedules, publisher, idGenerator, now, nil)
}

// NewPublishServiceWithLogger wires dependencies and a base logger.
func NewPublishServiceWithLogger(classes ClassStore, terms TermStore, schedules ScheduleStore, publisher Publisher, idGenerator func() string, now func() time.Time, logger *slog.Logger) *PublishService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &PublishService{
		classes:     classes,
		terms:       terms,
		schedules:   schedules,
		publisher:   publisher,
		idGenerator: idGenerator,
		now:         now,
		logger:      logger,
	}
}

// PublishClass materializes shifts for every schedule of an unpublished class
// and marks the class published. Either all schedules' shifts are committed
// together with the flag flip, or nothing is. Publishing an already published
// class is rejected with ErrClassPublished rather than ignored, because
// schedules are immutable post-publish and re-expansion would duplicate or
// orphan shifts.
func (s *PublishService) PublishClass(ctx context.Context, classID string) error {
	_, err := s.publishClass(ctx, classID)
	return err
}

func (s *PublishService) publishClass(ctx context.Context, classID string) (int, error) {
	logger := logging.Operation(ctx, s.logger, "publish", "publish_class", "class_id", classID)

	class, err := s.classes.GetClass(ctx, classID)
	if err != nil {
		return 0, mapStoreError(err, "class %s", classID)
	}
	if class.Published {
		return 0, ErrClassPublished
	}

	// No term means no bounds, which means expansion cannot be seeded.
	term, err := s.terms.GetTerm(ctx, class.TermID)
	if err != nil {
		return 0, mapStoreError(err, "term %s for class %s", class.TermID, classID)
	}

	schedules, err := s.schedules.ListSchedulesForClass(ctx, classID)
	if err != nil {
		return 0, err
	}

	var shifts []persistence.Shift
	for _, schedule := range schedules {
		built, err := s.expandSchedule(schedule, class, term)
		if err != nil {
			// A failing schedule fails the whole publish; skipping it
			// silently would leave the class published with holes.
			return 0, fmt.Errorf("schedule %s: %w", schedule.ID, err)
		}
		shifts = append(shifts, built...)
	}

	if err := s.publisher.PublishAtomically(ctx, classID, shifts); err != nil {
		if errors.Is(err, persistence.ErrAlreadyPublished) {
			return 0, ErrClassPublished
		}
		return 0, mapStoreError(err, "class %s", classID)
	}

	logger.Info("class published", "schedules", len(schedules), "shifts", len(shifts))
	return len(shifts), nil
}

// PublishAllUnpublished publishes every unpublished class, isolating
// failures: one class's failure is recorded in its outcome and never aborts
// the sweep. Failed classes are not retried automatically.
func (s *PublishService) PublishAllUnpublished(ctx context.Context) ([]PublishOutcome, error) {
	logger := logging.Operation(ctx, s.logger, "publish", "publish_all")

	classes, err := s.classes.ListUnpublishedClasses(ctx)
	if err != nil {
		return nil, err
	}

	outcomes := make([]PublishOutcome, 0, len(classes))
	for _, class := range classes {
		count, err := s.publishClass(ctx, class.ID)
		if err != nil {
			logger.Warn("class publish failed", "class_id", class.ID, "error", err, "kind", ErrorKind(err))
		}
		outcomes = append(outcomes, PublishOutcome{ClassID: class.ID, ShiftCount: count, Err: err})
	}

	logger.Info("publish sweep finished", "classes", len(classes))
	return outcomes, nil
}

// expandSchedule resolves bounds and exclusions, decodes the stored rule and
// produces the schedule's shift rows in ascending chronological order.
func (s *PublishService) expandSchedule(schedule persistence.Schedule, class persistence.Class, term persistence.Term) ([]persistence.Shift, error) {
	window := scheduler.ScheduleWindow{
		EffectiveStart: schedule.EffectiveStart,
		EffectiveEnd:   schedule.EffectiveEnd,
	}
	resolverTerm := toSchedulerTerm(term)

	start, end, err := scheduler.ResolveBounds(window, resolverTerm)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("term", "term dates are required before publishing")
		return nil, vErr
	}

	rule, err := recurrence.Decode(schedule.Rule)
	if err != nil {
		// Corrupted stored rule: surface, never substitute a default.
		return nil, err
	}

	occurrences, err := recurrence.Expand(rule, start, end, scheduler.ResolveExclusions(resolverTerm))
	if err != nil {
		return nil, err
	}

	built, err := scheduler.BuildShifts(schedule.ID, class.ID, occurrences, schedule.DurationMinutes)
	if err != nil {
		if errors.Is(err, scheduler.ErrInvalidDuration) {
			vErr := &ValidationError{}
			vErr.add("duration_minutes", "duration must be positive")
			return nil, vErr
		}
		return nil, err
	}

	created := s.now().UTC()
	shifts := make([]persistence.Shift, 0, len(built))
	for _, shift := range built {
		shifts = append(shifts, persistence.Shift{
			ID:         s.idGenerator(),
			ScheduleID: shift.ScheduleID,
			ClassID:    shift.ClassID,
			Date:       shift.Date,
			StartAt:    shift.StartAt,
			EndAt:      shift.EndAt,
			CreatedAt:  created,
		})
	}
	return shifts, nil
}

func toSchedulerTerm(term persistence.Term) scheduler.Term {
	blackouts := make([]recurrence.DateRange, 0, len(term.Blackouts))
	for _, b := range term.Blackouts {
		blackouts = append(blackouts, recurrence.DateRange{StartsOn: b.StartsOn, EndsOn: b.EndsOn})
	}
	return scheduler.Term{
		StartDate: term.StartDate,
		EndDate:   term.EndDate,
		Blackouts: blackouts,
	}
}

// mapStoreError converts persistence sentinels into application failures,
// annotating not-found errors with what was being looked up.
func mapStoreError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}
