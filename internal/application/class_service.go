package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/example/volunteer-scheduler/internal/logging"
	"github.com/example/volunteer-scheduler/internal/persistence"
)

// ClassService manages class records. Publishing itself lives in
// PublishService; this service only covers the unpublished lifecycle.
type ClassService struct {
	classes     ClassStore
	terms       TermStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewClassService wires dependencies for class operations.
func NewClassService(classes ClassStore, terms TermStore, idGenerator func() string, now func() time.Time) *ClassService {
	return NewClassServiceWithLogger(classes, terms, idGenerator, now, nil)
}

// NewClassServiceWithLogger wires dependencies and a base logger.
func NewClassServiceWithLogger(classes ClassStore, terms TermStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ClassService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ClassService{classes: classes, terms: terms, idGenerator: idGenerator, now: now, logger: logger}
}

// CreateClass validates and persists a new unpublished class.
func (s *ClassService) CreateClass(ctx context.Context, input ClassInput) (persistence.Class, error) {
	logger := logging.Operation(ctx, s.logger, "class", "create")

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.TermID == "" {
		vErr.add("term_id", "term is required")
	}
	if vErr.HasErrors() {
		return persistence.Class{}, vErr
	}

	if _, err := s.terms.GetTerm(ctx, input.TermID); err != nil {
		return persistence.Class{}, mapStoreError(err, "term %s", input.TermID)
	}

	class := persistence.Class{
		ID:     s.idGenerator(),
		Name:   strings.TrimSpace(input.Name),
		TermID: input.TermID,
	}
	if err := s.classes.CreateClass(ctx, class); err != nil {
		return persistence.Class{}, mapStoreError(err, "class %s", class.ID)
	}

	logger.Info("class created", "class_id", class.ID, "term_id", class.TermID)
	return class, nil
}

// GetClass retrieves one class.
func (s *ClassService) GetClass(ctx context.Context, classID string) (persistence.Class, error) {
	class, err := s.classes.GetClass(ctx, classID)
	if err != nil {
		return persistence.Class{}, mapStoreError(err, "class %s", classID)
	}
	return class, nil
}

// ListClasses enumerates all classes with their published state.
func (s *ClassService) ListClasses(ctx context.Context) ([]persistence.Class, error) {
	return s.classes.ListClasses(ctx)
}
