package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/example/volunteer-scheduler/internal/logging"
	"github.com/example/volunteer-scheduler/internal/persistence"
)

// TermService manages terms and their blackout ranges.
type TermService struct {
	terms       TermStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewTermService wires dependencies for term operations.
func NewTermService(terms TermStore, idGenerator func() string, now func() time.Time) *TermService {
	return NewTermServiceWithLogger(terms, idGenerator, now, nil)
}

// NewTermServiceWithLogger wires dependencies and a base logger.
func NewTermServiceWithLogger(terms TermStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *TermService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &TermService{terms: terms, idGenerator: idGenerator, now: now, logger: logger}
}

// CreateTerm validates and persists a new term.
func (s *TermService) CreateTerm(ctx context.Context, input TermInput) (persistence.Term, error) {
	logger := logging.Operation(ctx, s.logger, "term", "create")

	if err := validateTermInput(input); err != nil {
		return persistence.Term{}, err
	}

	term := persistence.Term{
		ID:        s.idGenerator(),
		Name:      strings.TrimSpace(input.Name),
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Blackouts: input.Blackouts,
	}
	if err := s.terms.CreateTerm(ctx, term); err != nil {
		return persistence.Term{}, mapStoreError(err, "term %s", term.ID)
	}

	logger.Info("term created", "term_id", term.ID, "blackouts", len(term.Blackouts))
	return term, nil
}

// UpdateTerm replaces a term's fields and blackout ranges.
func (s *TermService) UpdateTerm(ctx context.Context, termID string, input TermInput) (persistence.Term, error) {
	if err := validateTermInput(input); err != nil {
		return persistence.Term{}, err
	}

	term := persistence.Term{
		ID:        termID,
		Name:      strings.TrimSpace(input.Name),
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Blackouts: input.Blackouts,
	}
	if err := s.terms.UpdateTerm(ctx, term); err != nil {
		return persistence.Term{}, mapStoreError(err, "term %s", termID)
	}
	return term, nil
}

// GetTerm retrieves one term.
func (s *TermService) GetTerm(ctx context.Context, termID string) (persistence.Term, error) {
	term, err := s.terms.GetTerm(ctx, termID)
	if err != nil {
		return persistence.Term{}, mapStoreError(err, "term %s", termID)
	}
	return term, nil
}

// ListTerms enumerates all terms.
func (s *TermService) ListTerms(ctx context.Context) ([]persistence.Term, error) {
	return s.terms.ListTerms(ctx)
}

// DeleteTerm removes a term.
func (s *TermService) DeleteTerm(ctx context.Context, termID string) error {
	return mapStoreError(s.terms.DeleteTerm(ctx, termID), "term %s", termID)
}

func validateTermInput(input TermInput) error {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		vErr.add("dates", "start and end dates are required")
	} else if input.EndDate.Before(input.StartDate) {
		vErr.add("dates", "end date must not precede start date")
	}
	for _, blackout := range input.Blackouts {
		if blackout.EndsOn.Before(blackout.StartsOn) {
			vErr.add("blackouts", "blackout end must not precede its start")
			break
		}
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
