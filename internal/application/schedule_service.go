package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/volunteer-scheduler/internal/logging"
	"github.com/example/volunteer-scheduler/internal/persistence"
	"github.com/example/volunteer-scheduler/internal/recurrence"
	"github.com/example/volunteer-scheduler/internal/scheduler"
)

// ScheduleService manages schedules while their owning class is unpublished,
// and serves the structured rule view the editing UI consumes. All writes
// serialize the recurrence rule to its canonical stored string exactly once.
type ScheduleService struct {
	schedules   ScheduleStore
	classes     ClassStore
	terms       TermStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
	previews    *previewCache
}

// NewScheduleService wires dependencies for schedule operations.
func NewScheduleService(schedules ScheduleStore, classes ClassStore, terms TermStore, idGenerator func() string, now func() time.Time) *ScheduleService {
	return NewScheduleServiceWithLogger(schedules, classes, terms, idGenerator, now, nil)
}

// NewScheduleServiceWithLogger wires dependencies and a base logger.
func NewScheduleServiceWithLogger(schedules ScheduleStore, classes ClassStore, terms TermStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ScheduleService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ScheduleService{
		schedules:   schedules,
		classes:     classes,
		terms:       terms,
		idGenerator: idGenerator,
		now:         now,
		logger:      logger,
		previews:    newPreviewCache(30*time.Second, 128, now),
	}
}

// CreateSchedule validates and persists a new schedule for an unpublished
// class.
func (s *ScheduleService) CreateSchedule(ctx context.Context, input ScheduleInput) (persistence.Schedule, error) {
	logger := logging.Operation(ctx, s.logger, "schedule", "create", "class_id", input.ClassID)

	class, err := s.classes.GetClass(ctx, input.ClassID)
	if err != nil {
		return persistence.Schedule{}, mapStoreError(err, "class %s", input.ClassID)
	}
	if class.Published {
		return persistence.Schedule{}, ErrClassPublished
	}

	if err := validateScheduleInput(input); err != nil {
		return persistence.Schedule{}, err
	}

	encoded, err := recurrence.Encode(input.Rule)
	if err != nil {
		return persistence.Schedule{}, err
	}

	schedule := persistence.Schedule{
		ID:              s.idGenerator(),
		ClassID:         input.ClassID,
		Rule:            encoded,
		DurationMinutes: input.DurationMinutes,
		EffectiveStart:  input.EffectiveStart,
		EffectiveEnd:    input.EffectiveEnd,
		InstructorIDs:   input.InstructorIDs,
		VolunteerIDs:    input.VolunteerIDs,
	}

	if err := s.schedules.CreateSchedule(ctx, schedule); err != nil {
		return persistence.Schedule{}, mapStoreError(err, "schedule for class %s", input.ClassID)
	}

	s.previews.Invalidate()
	logger.Info("schedule created", "schedule_id", schedule.ID, "rule_kind", input.Rule.Kind.String())
	return schedule, nil
}

// UpdateSchedule applies changes to a schedule of a still-unpublished class.
func (s *ScheduleService) UpdateSchedule(ctx context.Context, scheduleID string, input ScheduleInput) (persistence.Schedule, error) {
	logger := logging.Operation(ctx, s.logger, "schedule", "update", "schedule_id", scheduleID)

	existing, err := s.schedules.GetSchedule(ctx, scheduleID)
	if err != nil {
		return persistence.Schedule{}, mapStoreError(err, "schedule %s", scheduleID)
	}

	class, err := s.classes.GetClass(ctx, existing.ClassID)
	if err != nil {
		return persistence.Schedule{}, mapStoreError(err, "class %s", existing.ClassID)
	}
	if class.Published {
		return persistence.Schedule{}, ErrClassPublished
	}

	// The owning class cannot move; the stored association wins.
	input.ClassID = existing.ClassID
	if err := validateScheduleInput(input); err != nil {
		return persistence.Schedule{}, err
	}

	encoded, err := recurrence.Encode(input.Rule)
	if err != nil {
		return persistence.Schedule{}, err
	}

	updated := existing
	updated.Rule = encoded
	updated.DurationMinutes = input.DurationMinutes
	updated.EffectiveStart = input.EffectiveStart
	updated.EffectiveEnd = input.EffectiveEnd
	updated.InstructorIDs = input.InstructorIDs
	updated.VolunteerIDs = input.VolunteerIDs

	if err := s.schedules.UpdateSchedule(ctx, updated); err != nil {
		return persistence.Schedule{}, mapStoreError(err, "schedule %s", scheduleID)
	}

	s.previews.Invalidate()
	logger.Info("schedule updated", "rule_kind", input.Rule.Kind.String())
	return updated, nil
}

// GetSchedule returns a schedule with its decoded rule so the editor can
// present structured fields.
func (s *ScheduleService) GetSchedule(ctx context.Context, scheduleID string) (ScheduleDetails, error) {
	schedule, err := s.schedules.GetSchedule(ctx, scheduleID)
	if err != nil {
		return ScheduleDetails{}, mapStoreError(err, "schedule %s", scheduleID)
	}
	rule, err := recurrence.Decode(schedule.Rule)
	if err != nil {
		return ScheduleDetails{}, err
	}
	return ScheduleDetails{Schedule: schedule, Rule: rule}, nil
}

// ListSchedules returns a class's schedules with decoded rules.
func (s *ScheduleService) ListSchedules(ctx context.Context, classID string) ([]ScheduleDetails, error) {
	schedules, err := s.schedules.ListSchedulesForClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	details := make([]ScheduleDetails, 0, len(schedules))
	for _, schedule := range schedules {
		rule, err := recurrence.Decode(schedule.Rule)
		if err != nil {
			return nil, fmt.Errorf("schedule %s: %w", schedule.ID, err)
		}
		details = append(details, ScheduleDetails{Schedule: schedule, Rule: rule})
	}
	return details, nil
}

// DeleteSchedule removes a schedule from a still-unpublished class.
func (s *ScheduleService) DeleteSchedule(ctx context.Context, scheduleID string) error {
	existing, err := s.schedules.GetSchedule(ctx, scheduleID)
	if err != nil {
		return mapStoreError(err, "schedule %s", scheduleID)
	}

	class, err := s.classes.GetClass(ctx, existing.ClassID)
	if err != nil {
		return mapStoreError(err, "class %s", existing.ClassID)
	}
	if class.Published {
		return ErrClassPublished
	}

	if err := s.schedules.DeleteSchedule(ctx, scheduleID); err != nil {
		return mapStoreError(err, "schedule %s", scheduleID)
	}
	s.previews.Invalidate()
	return nil
}

// PreviewOccurrences expands a schedule's rule against its effective bounds
// without persisting anything, for the editor's preview pane. Results are
// cached briefly, keyed on the schedule and term versions.
func (s *ScheduleService) PreviewOccurrences(ctx context.Context, scheduleID string) ([]time.Time, error) {
	schedule, err := s.schedules.GetSchedule(ctx, scheduleID)
	if err != nil {
		return nil, mapStoreError(err, "schedule %s", scheduleID)
	}
	class, err := s.classes.GetClass(ctx, schedule.ClassID)
	if err != nil {
		return nil, mapStoreError(err, "class %s", schedule.ClassID)
	}
	term, err := s.terms.GetTerm(ctx, class.TermID)
	if err != nil {
		return nil, mapStoreError(err, "term %s", class.TermID)
	}

	key := previewCacheKey(scheduleID, schedule.UpdatedAt, term.UpdatedAt)
	if cached, ok := s.previews.Get(key); ok {
		return cached, nil
	}

	window := scheduler.ScheduleWindow{
		EffectiveStart: schedule.EffectiveStart,
		EffectiveEnd:   schedule.EffectiveEnd,
	}
	resolverTerm := toSchedulerTerm(term)
	start, end, err := scheduler.ResolveBounds(window, resolverTerm)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("term", "term dates are required before previewing")
		return nil, vErr
	}

	rule, err := recurrence.Decode(schedule.Rule)
	if err != nil {
		return nil, err
	}

	occurrences, err := recurrence.Expand(rule, start, end, scheduler.ResolveExclusions(resolverTerm))
	if err != nil {
		return nil, err
	}

	s.previews.Store(key, occurrences)
	return occurrences, nil
}

func validateScheduleInput(input ScheduleInput) error {
	vErr := &ValidationError{}

	if input.ClassID == "" {
		vErr.add("class_id", "class is required")
	}
	if input.DurationMinutes <= 0 {
		vErr.add("duration_minutes", "duration must be positive")
	}
	if err := input.Rule.Validate(); err != nil {
		vErr.add("rule", err.Error())
	}
	if input.EffectiveStart != nil && input.EffectiveEnd != nil && input.EffectiveEnd.Before(*input.EffectiveStart) {
		vErr.add("effective_dates", "effective end must not precede effective start")
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
