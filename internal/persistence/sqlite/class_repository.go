package sqlite

import (
	"context"
	"time"

	"github.com/example/volunteer-scheduler/internal/persistence"
)

// ClassRepository implements persistence.ClassRepository using SQLite.
type ClassRepository struct {
	db *DB
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(db *DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// CreateClass inserts an unpublished class.
func (r *ClassRepository) CreateClass(ctx context.Context, class persistence.Class) error {
	if class.ID == "" || class.TermID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO classes (id, name, term_id, published, created_at, updated_at)
		 VALUES (?, ?, ?, 0, ?, ?)`,
		class.ID, class.Name, class.TermID, fmtInstant(now), fmtInstant(now))
	return mapError(err)
}

// GetClass retrieves one class.
func (r *ClassRepository) GetClass(ctx context.Context, id string) (persistence.Class, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT id, name, term_id, published, created_at, updated_at FROM classes WHERE id = ?`, id)
	class, err := scanClass(row)
	if err != nil {
		return persistence.Class{}, mapError(err)
	}
	return class, nil
}

// ListClasses returns every class ordered by creation time.
func (r *ClassRepository) ListClasses(ctx context.Context) ([]persistence.Class, error) {
	return r.list(ctx,
		`SELECT id, name, term_id, published, created_at, updated_at FROM classes ORDER BY created_at ASC, id ASC`)
}

// ListUnpublishedClasses returns classes awaiting publication, oldest first.
func (r *ClassRepository) ListUnpublishedClasses(ctx context.Context) ([]persistence.Class, error) {
	return r.list(ctx,
		`SELECT id, name, term_id, published, created_at, updated_at FROM classes WHERE published = 0 ORDER BY created_at ASC, id ASC`)
}

func (r *ClassRepository) list(ctx context.Context, query string) ([]persistence.Class, error) {
	rows, err := r.db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var classes []persistence.Class
	for rows.Next() {
		class, err := scanClass(rows)
		if err != nil {
			return nil, mapError(err)
		}
		classes = append(classes, class)
	}
	return classes, rows.Err()
}

func scanClass(row rowScanner) (persistence.Class, error) {
	var class persistence.Class
	var published int
	var createdAt, updatedAt string
	if err := row.Scan(&class.ID, &class.Name, &class.TermID, &published, &createdAt, &updatedAt); err != nil {
		return persistence.Class{}, err
	}
	class.Published = published != 0
	var err error
	if class.CreatedAt, err = parseInstant(createdAt); err != nil {
		return persistence.Class{}, err
	}
	if class.UpdatedAt, err = parseInstant(updatedAt); err != nil {
		return persistence.Class{}, err
	}
	return class, nil
}
