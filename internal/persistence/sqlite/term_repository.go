package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/volunteer-scheduler/internal/persistence"
)

// TermRepository implements persistence.TermRepository using SQLite.
type TermRepository struct {
	db *DB
}

// NewTermRepository constructs a TermRepository.
func NewTermRepository(db *DB) *TermRepository {
	return &TermRepository{db: db}
}

// CreateTerm inserts a term and its blackout ranges.
func (r *TermRepository) CreateTerm(ctx context.Context, term persistence.Term) error {
	if term.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if err := validateTerm(term); err != nil {
		return err
	}

	now := time.Now().UTC()
	term.CreatedAt = now
	term.UpdatedAt = now

	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO terms (id, name, start_date, end_date, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			term.ID, term.Name, fmtDate(term.StartDate), fmtDate(term.EndDate),
			fmtInstant(term.CreatedAt), fmtInstant(term.UpdatedAt),
		)
		if err != nil {
			return mapError(err)
		}
		return insertBlackouts(ctx, tx, term.ID, term.Blackouts)
	})
}

// UpdateTerm replaces a term's fields and blackout ranges.
func (r *TermRepository) UpdateTerm(ctx context.Context, term persistence.Term) error {
	if err := validateTerm(term); err != nil {
		return err
	}

	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE terms SET name = ?, start_date = ?, end_date = ?, updated_at = ? WHERE id = ?`,
			term.Name, fmtDate(term.StartDate), fmtDate(term.EndDate),
			fmtInstant(time.Now().UTC()), term.ID,
		)
		if err != nil {
			return mapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM term_blackouts WHERE term_id = ?`, term.ID); err != nil {
			return mapError(err)
		}
		return insertBlackouts(ctx, tx, term.ID, term.Blackouts)
	})
}

// GetTerm retrieves one term with its blackout ranges.
func (r *TermRepository) GetTerm(ctx context.Context, id string) (persistence.Term, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT id, name, start_date, end_date, created_at, updated_at FROM terms WHERE id = ?`, id)

	term, err := scanTerm(row)
	if err != nil {
		return persistence.Term{}, mapError(err)
	}

	blackouts, err := r.loadBlackouts(ctx, term.ID)
	if err != nil {
		return persistence.Term{}, err
	}
	term.Blackouts = blackouts
	return term, nil
}

// ListTerms returns all terms ordered by start date.
func (r *TermRepository) ListTerms(ctx context.Context) ([]persistence.Term, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, name, start_date, end_date, created_at, updated_at FROM terms ORDER BY start_date ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var terms []persistence.Term
	for rows.Next() {
		term, err := scanTerm(rows)
		if err != nil {
			return nil, mapError(err)
		}
		terms = append(terms, term)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	for i := range terms {
		blackouts, err := r.loadBlackouts(ctx, terms[i].ID)
		if err != nil {
			return nil, err
		}
		terms[i].Blackouts = blackouts
	}
	return terms, nil
}

// DeleteTerm removes a term. Blackouts cascade.
func (r *TermRepository) DeleteTerm(ctx context.Context, id string) error {
	result, err := r.db.conn.ExecContext(ctx, `DELETE FROM terms WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (r *TermRepository) loadBlackouts(ctx context.Context, termID string) ([]persistence.BlackoutRange, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT starts_on, ends_on FROM term_blackouts WHERE term_id = ? ORDER BY starts_on ASC, ends_on ASC`, termID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var blackouts []persistence.BlackoutRange
	for rows.Next() {
		var startsOn, endsOn string
		if err := rows.Scan(&startsOn, &endsOn); err != nil {
			return nil, mapError(err)
		}
		var blackout persistence.BlackoutRange
		if blackout.StartsOn, err = parseDate(startsOn); err != nil {
			return nil, err
		}
		if blackout.EndsOn, err = parseDate(endsOn); err != nil {
			return nil, err
		}
		blackouts = append(blackouts, blackout)
	}
	return blackouts, rows.Err()
}

func insertBlackouts(ctx context.Context, tx *sql.Tx, termID string, blackouts []persistence.BlackoutRange) error {
	for _, blackout := range blackouts {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO term_blackouts (term_id, starts_on, ends_on) VALUES (?, ?, ?)`,
			termID, fmtDate(blackout.StartsOn), fmtDate(blackout.EndsOn))
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

func validateTerm(term persistence.Term) error {
	if term.EndDate.Before(term.StartDate) {
		return persistence.ErrConstraintViolation
	}
	for _, blackout := range term.Blackouts {
		if blackout.EndsOn.Before(blackout.StartsOn) {
			return persistence.ErrConstraintViolation
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTerm(row rowScanner) (persistence.Term, error) {
	var term persistence.Term
	var startDate, endDate, createdAt, updatedAt string
	if err := row.Scan(&term.ID, &term.Name, &startDate, &endDate, &createdAt, &updatedAt); err != nil {
		return persistence.Term{}, err
	}
	var err error
	if term.StartDate, err = parseDate(startDate); err != nil {
		return persistence.Term{}, err
	}
	if term.EndDate, err = parseDate(endDate); err != nil {
		return persistence.Term{}, err
	}
	if term.CreatedAt, err = parseInstant(createdAt); err != nil {
		return persistence.Term{}, err
	}
	if term.UpdatedAt, err = parseInstant(updatedAt); err != nil {
		return persistence.Term{}, err
	}
	return term, nil
}
