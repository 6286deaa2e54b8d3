package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/volunteer-scheduler/internal/persistence"
)

// ShiftRepository implements persistence.ShiftRepository using SQLite. Shift
// rows are inserted only by the publish unit of work; this repository covers
// read-back and cancellation.
type ShiftRepository struct {
	db *DB
}

// NewShiftRepository constructs a ShiftRepository.
func NewShiftRepository(db *DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// ListShifts returns shifts matching the filter in ascending start order.
func (r *ShiftRepository) ListShifts(ctx context.Context, filter persistence.ShiftFilter) ([]persistence.Shift, error) {
	query := `SELECT id, schedule_id, class_id, date, start_at, end_at, canceled, cancel_reason, created_at FROM shifts`
	var (
		clauses []string
		args    []any
	)
	if filter.ScheduleID != "" {
		clauses = append(clauses, "schedule_id = ?")
		args = append(args, filter.ScheduleID)
	}
	if filter.ClassID != "" {
		clauses = append(clauses, "class_id = ?")
		args = append(args, filter.ClassID)
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY start_at ASC, id ASC"

	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var shifts []persistence.Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, mapError(err)
		}
		shifts = append(shifts, shift)
	}
	return shifts, rows.Err()
}

// MarkShiftCanceled records a cancellation for a published shift. This is the
// only mutation shifts accept after publishing.
func (r *ShiftRepository) MarkShiftCanceled(ctx context.Context, id string, reason *string) error {
	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE shifts SET canceled = 1, cancel_reason = ? WHERE id = ?`,
		nullString(reason), id)
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

func scanShift(row rowScanner) (persistence.Shift, error) {
	var shift persistence.Shift
	var date, startAt, endAt, createdAt string
	var canceled int
	var cancelReason sql.NullString
	if err := row.Scan(&shift.ID, &shift.ScheduleID, &shift.ClassID, &date,
		&startAt, &endAt, &canceled, &cancelReason, &createdAt); err != nil {
		return persistence.Shift{}, err
	}
	shift.Canceled = canceled != 0
	shift.CancelReason = fromNullString(cancelReason)
	var err error
	if shift.Date, err = parseDate(date); err != nil {
		return persistence.Shift{}, err
	}
	if shift.StartAt, err = parseInstant(startAt); err != nil {
		return persistence.Shift{}, err
	}
	if shift.EndAt, err = parseInstant(endAt); err != nil {
		return persistence.Shift{}, err
	}
	if shift.CreatedAt, err = parseInstant(createdAt); err != nil {
		return persistence.Shift{}, err
	}
	return shift, nil
}
