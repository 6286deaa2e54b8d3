package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/volunteer-scheduler/internal/persistence"
)

// PublishAtomically inserts every shift row and flips the class's published
// flag inside one transaction. Concurrent readers never observe a published
// class without its shifts, nor shifts for a class still flagged unpublished.
//
// The published check inside the transaction backstops the service-level
// guard against a concurrent publish of the same class.
func (db *DB) PublishAtomically(ctx context.Context, classID string, shifts []persistence.Shift) error {
	now := time.Now().UTC()

	return db.WithTransaction(ctx, func(tx *sql.Tx) error {
		var published int
		err := tx.QueryRowContext(ctx, `SELECT published FROM classes WHERE id = ?`, classID).Scan(&published)
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.ErrNotFound
		}
		if err != nil {
			return mapError(err)
		}
		if published != 0 {
			return persistence.ErrAlreadyPublished
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO shifts (id, schedule_id, class_id, date, start_at, end_at, canceled, cancel_reason, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, 0, NULL, ?)`)
		if err != nil {
			return mapError(err)
		}
		defer stmt.Close()

		for _, shift := range shifts {
			if _, err := stmt.ExecContext(ctx,
				shift.ID, shift.ScheduleID, shift.ClassID,
				fmtDate(shift.Date), fmtInstant(shift.StartAt), fmtInstant(shift.EndAt),
				fmtInstant(shift.CreatedAt)); err != nil {
				return mapError(err)
			}
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE classes SET published = 1, updated_at = ? WHERE id = ?`,
			fmtInstant(now), classID)
		return mapError(err)
	})
}
