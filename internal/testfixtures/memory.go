package testfixtures

import (
	"context"
	"sort"
	"sync"

	"github.com/example/volunteer-scheduler/internal/persistence"
)

// MemoryStore is a map-backed implementation of the application store
// interfaces for service tests. Writes are guarded by a mutex and reads
// return copies, so tests exercising the sweep concurrently stay safe.
type MemoryStore struct {
	mu        sync.RWMutex
	terms     map[string]persistence.Term
	classes   map[string]persistence.Class
	schedules map[string]persistence.Schedule
	shifts    map[string]persistence.Shift

	// PublishErr, when set, makes PublishAtomically fail for the named
	// class without applying any of its writes.
	PublishErr map[string]error
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		terms:      make(map[string]persistence.Term),
		classes:    make(map[string]persistence.Class),
		schedules:  make(map[string]persistence.Schedule),
		shifts:     make(map[string]persistence.Shift),
		PublishErr: make(map[string]error),
	}
}

// SeedTerm inserts a term directly, bypassing validation.
func (s *MemoryStore) SeedTerm(term persistence.Term) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terms[term.ID] = cloneTerm(term)
}

// SeedClass inserts a class directly, bypassing validation.
func (s *MemoryStore) SeedClass(class persistence.Class) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classes[class.ID] = class
}

// SeedSchedule inserts a schedule directly, bypassing validation.
func (s *MemoryStore) SeedSchedule(schedule persistence.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[schedule.ID] = cloneSchedule(schedule)
}

// CreateTerm implements application.TermStore.
func (s *MemoryStore) CreateTerm(_ context.Context, term persistence.Term) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.terms[term.ID]; exists {
		return persistence.ErrDuplicate
	}
	s.terms[term.ID] = cloneTerm(term)
	return nil
}

// UpdateTerm implements application.TermStore.
func (s *MemoryStore) UpdateTerm(_ context.Context, term persistence.Term) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.terms[term.ID]; !exists {
		return persistence.ErrNotFound
	}
	s.terms[term.ID] = cloneTerm(term)
	return nil
}

// GetTerm implements application.TermStore.
func (s *MemoryStore) GetTerm(_ context.Context, id string) (persistence.Term, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	term, ok := s.terms[id]
	if !ok {
		return persistence.Term{}, persistence.ErrNotFound
	}
	return cloneTerm(term), nil
}

// ListTerms implements application.TermStore.
func (s *MemoryStore) ListTerms(_ context.Context) ([]persistence.Term, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	terms := make([]persistence.Term, 0, len(s.terms))
	for _, term := range s.terms {
		terms = append(terms, cloneTerm(term))
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].ID < terms[j].ID })
	return terms, nil
}

// DeleteTerm implements application.TermStore.
func (s *MemoryStore) DeleteTerm(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.terms[id]; !exists {
		return persistence.ErrNotFound
	}
	delete(s.terms, id)
	return nil
}

// CreateClass implements application.ClassStore.
func (s *MemoryStore) CreateClass(_ context.Context, class persistence.Class) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.classes[class.ID]; exists {
		return persistence.ErrDuplicate
	}
	s.classes[class.ID] = class
	return nil
}

// GetClass implements application.ClassStore.
func (s *MemoryStore) GetClass(_ context.Context, id string) (persistence.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	class, ok := s.classes[id]
	if !ok {
		return persistence.Class{}, persistence.ErrNotFound
	}
	return class, nil
}

// ListClasses implements application.ClassStore.
func (s *MemoryStore) ListClasses(_ context.Context) ([]persistence.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	classes := make([]persistence.Class, 0, len(s.classes))
	for _, class := range s.classes {
		classes = append(classes, class)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes, nil
}

// ListUnpublishedClasses implements application.ClassStore.
func (s *MemoryStore) ListUnpublishedClasses(_ context.Context) ([]persistence.Class, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	classes := make([]persistence.Class, 0, len(s.classes))
	for _, class := range s.classes {
		if !class.Published {
			classes = append(classes, class)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes, nil
}

// CreateSchedule implements application.ScheduleStore.
func (s *MemoryStore) CreateSchedule(_ context.Context, schedule persistence.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.schedules[schedule.ID]; exists {
		return persistence.ErrDuplicate
	}
	s.schedules[schedule.ID] = cloneSchedule(schedule)
	return nil
}

// UpdateSchedule implements application.ScheduleStore.
func (s *MemoryStore) UpdateSchedule(_ context.Context, schedule persistence.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.schedules[schedule.ID]; !exists {
		return persistence.ErrNotFound
	}
	s.schedules[schedule.ID] = cloneSchedule(schedule)
	return nil
}

// GetSchedule implements application.ScheduleStore.
func (s *MemoryStore) GetSchedule(_ context.Context, id string) (persistence.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schedule, ok := s.schedules[id]
	if !ok {
		return persistence.Schedule{}, persistence.ErrNotFound
	}
	return cloneSchedule(schedule), nil
}

// ListSchedulesForClass implements application.ScheduleStore.
func (s *MemoryStore) ListSchedulesForClass(_ context.Context, classID string) ([]persistence.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schedules := make([]persistence.Schedule, 0)
	for _, schedule := range s.schedules {
		if schedule.ClassID == classID {
			schedules = append(schedules, cloneSchedule(schedule))
		}
	}
	sort.Slice(schedules, func(i, j int) bool { return schedules[i].ID < schedules[j].ID })
	return schedules, nil
}

// DeleteSchedule implements application.ScheduleStore.
func (s *MemoryStore) DeleteSchedule(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.schedules[id]; !exists {
		return persistence.ErrNotFound
	}
	delete(s.schedules, id)
	return nil
}

// ListShifts implements application.ShiftStore.
func (s *MemoryStore) ListShifts(_ context.Context, filter persistence.ShiftFilter) ([]persistence.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	shifts := make([]persistence.Shift, 0)
	for _, shift := range s.shifts {
		if filter.ScheduleID != "" && shift.ScheduleID != filter.ScheduleID {
			continue
		}
		if filter.ClassID != "" && shift.ClassID != filter.ClassID {
			continue
		}
		shifts = append(shifts, shift)
	}
	sort.Slice(shifts, func(i, j int) bool {
		if !shifts[i].StartAt.Equal(shifts[j].StartAt) {
			return shifts[i].StartAt.Before(shifts[j].StartAt)
		}
		return shifts[i].ID < shifts[j].ID
	})
	return shifts, nil
}

// PublishAtomically implements application.Publisher. When an injected error
// is configured for the class, no shift is stored and the flag stays unset.
func (s *MemoryStore) PublishAtomically(_ context.Context, classID string, shifts []persistence.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.PublishErr[classID]; err != nil {
		return err
	}
	class, ok := s.classes[classID]
	if !ok {
		return persistence.ErrNotFound
	}
	if class.Published {
		return persistence.ErrAlreadyPublished
	}
	for _, shift := range shifts {
		s.shifts[shift.ID] = shift
	}
	class.Published = true
	s.classes[classID] = class
	return nil
}

func cloneTerm(term persistence.Term) persistence.Term {
	cloned := term
	cloned.Blackouts = append([]persistence.BlackoutRange(nil), term.Blackouts...)
	return cloned
}

func cloneSchedule(schedule persistence.Schedule) persistence.Schedule {
	cloned := schedule
	cloned.InstructorIDs = append([]string(nil), schedule.InstructorIDs...)
	cloned.VolunteerIDs = append([]string(nil), schedule.VolunteerIDs...)
	if schedule.EffectiveStart != nil {
		start := *schedule.EffectiveStart
		cloned.EffectiveStart = &start
	}
	if schedule.EffectiveEnd != nil {
		end := *schedule.EffectiveEnd
		cloned.EffectiveEnd = &end
	}
	return cloned
}
