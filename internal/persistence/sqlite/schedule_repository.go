package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/volunteer-scheduler/internal/persistence"
)

// ScheduleRepository implements persistence.ScheduleRepository using SQLite.
type ScheduleRepository struct {
	db *DB
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(db *DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// CreateSchedule inserts a schedule together with its roster associations.
func (r *ScheduleRepository) CreateSchedule(ctx context.Context, schedule persistence.Schedule) error {
	if schedule.ID == "" || schedule.ClassID == "" || schedule.Rule == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now

	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO schedules (id, class_id, rule, duration_minutes, effective_start, effective_end, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			schedule.ID, schedule.ClassID, schedule.Rule, schedule.DurationMinutes,
			nullDate(schedule.EffectiveStart), nullDate(schedule.EffectiveEnd),
			fmtInstant(schedule.CreatedAt), fmtInstant(schedule.UpdatedAt),
		)
		if err != nil {
			return mapError(err)
		}
		return insertRosters(ctx, tx, schedule)
	})
}

// UpdateSchedule replaces a schedule's fields and rosters.
func (r *ScheduleRepository) UpdateSchedule(ctx context.Context, schedule persistence.Schedule) error {
	if schedule.Rule == "" {
		return persistence.ErrConstraintViolation
	}

	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE schedules SET rule = ?, duration_minutes = ?, effective_start = ?, effective_end = ?, updated_at = ?
			 WHERE id = ?`,
			schedule.Rule, schedule.DurationMinutes,
			nullDate(schedule.EffectiveStart), nullDate(schedule.EffectiveEnd),
			fmtInstant(time.Now().UTC()), schedule.ID,
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

		if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_instructors WHERE schedule_id = ?`, schedule.ID); err != nil {
			return mapError(err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_volunteers WHERE schedule_id = ?`, schedule.ID); err != nil {
			return mapError(err)
		}
		return insertRosters(ctx, tx, schedule)
	})
}

// GetSchedule retrieves one schedule with its rosters.
func (r *ScheduleRepository) GetSchedule(ctx context.Context, id string) (persistence.Schedule, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT id, class_id, rule, duration_minutes, effective_start, effective_end, created_at, updated_at
		 FROM schedules WHERE id = ?`, id)
	schedule, err := scanSchedule(row)
	if err != nil {
		return persistence.Schedule{}, mapError(err)
	}
	if err := r.loadRosters(ctx, &schedule); err != nil {
		return persistence.Schedule{}, err
	}
	return schedule, nil
}

// ListSchedulesForClass returns a class's schedules ordered by creation time.
func (r *ScheduleRepository) ListSchedulesForClass(ctx context.Context, classID string) ([]persistence.Schedule, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, class_id, rule, duration_minutes, effective_start, effective_end, created_at, updated_at
		 FROM schedules WHERE class_id = ? ORDER BY created_at ASC, id ASC`, classID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var schedules []persistence.Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, mapError(err)
		}
		schedules = append(schedules, schedule)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	for i := range schedules {
		if err := r.loadRosters(ctx, &schedules[i]); err != nil {
			return nil, err
		}
	}
	return schedules, nil
}

// DeleteSchedule removes a schedule. Rosters cascade.
func (r *ScheduleRepository) DeleteSchedule(ctx context.Context, id string) error {
	result, err := r.db.conn.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id)
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

func (r *ScheduleRepository) loadRosters(ctx context.Context, schedule *persistence.Schedule) error {
	instructors, err := r.loadRoster(ctx, `SELECT instructor_id FROM schedule_instructors WHERE schedule_id = ? ORDER BY instructor_id`, schedule.ID)
	if err != nil {
		return err
	}
	volunteers, err := r.loadRoster(ctx, `SELECT volunteer_id FROM schedule_volunteers WHERE schedule_id = ? ORDER BY volunteer_id`, schedule.ID)
	if err != nil {
		return err
	}
	schedule.InstructorIDs = instructors
	schedule.VolunteerIDs = volunteers
	return nil
}

func (r *ScheduleRepository) loadRoster(ctx context.Context, query, scheduleID string) ([]string, error) {
	rows, err := r.db.conn.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, mapError(err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func insertRosters(ctx context.Context, tx *sql.Tx, schedule persistence.Schedule) error {
	for _, id := range schedule.InstructorIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schedule_instructors (schedule_id, instructor_id) VALUES (?, ?)`, schedule.ID, id); err != nil {
			return mapError(err)
		}
	}
	for _, id := range schedule.VolunteerIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schedule_volunteers (schedule_id, volunteer_id) VALUES (?, ?)`, schedule.ID, id); err != nil {
			return mapError(err)
		}
	}
	return nil
}

func scanSchedule(row rowScanner) (persistence.Schedule, error) {
	var schedule persistence.Schedule
	var effectiveStart, effectiveEnd sql.NullString
	var createdAt, updatedAt string
	if err := row.Scan(&schedule.ID, &schedule.ClassID, &schedule.Rule, &schedule.DurationMinutes,
		&effectiveStart, &effectiveEnd, &createdAt, &updatedAt); err != nil {
		return persistence.Schedule{}, err
	}
	var err error
	if schedule.EffectiveStart, err = parseNullDate(effectiveStart); err != nil {
		return persistence.Schedule{}, err
	}
	if schedule.EffectiveEnd, err = parseNullDate(effectiveEnd); err != nil {
		return persistence.Schedule{}, err
	}
	if schedule.CreatedAt, err = parseInstant(createdAt); err != nil {
		return persistence.Schedule{}, err
	}
	if schedule.UpdatedAt, err = parseInstant(updatedAt); err != nil {
		return persistence.Schedule{}, err
	}
	return schedule, nil
}
