package sqlite

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS terms (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date   TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS term_blackouts (
		term_id   TEXT NOT NULL REFERENCES terms(id) ON DELETE CASCADE,
		starts_on TEXT NOT NULL,
		ends_on   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS classes (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		term_id    TEXT NOT NULL REFERENCES terms(id),
		published  INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS schedules (
		id               TEXT PRIMARY KEY,
		class_id         TEXT NOT NULL REFERENCES classes(id) ON DELETE CASCADE,
		rule             TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL CHECK (duration_minutes > 0),
		effective_start  TEXT,
		effective_end    TEXT,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS schedule_instructors (
		schedule_id   TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
		instructor_id TEXT NOT NULL,
		PRIMARY KEY (schedule_id, instructor_id)
	)`,
	`CREATE TABLE IF NOT EXISTS schedule_volunteers (
		schedule_id  TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
		volunteer_id TEXT NOT NULL,
		PRIMARY KEY (schedule_id, volunteer_id)
	)`,
	`CREATE TABLE IF NOT EXISTS shifts (
		id            TEXT PRIMARY KEY,
		schedule_id   TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
		class_id      TEXT NOT NULL REFERENCES classes(id),
		date          TEXT NOT NULL,
		start_at      TEXT NOT NULL,
		end_at        TEXT NOT NULL,
		canceled      INTEGER NOT NULL DEFAULT 0,
		cancel_reason TEXT,
		created_at    TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_shifts_schedule ON shifts(schedule_id, start_at)`,
	`CREATE INDEX IF NOT EXISTS idx_shifts_date ON shifts(date)`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_class ON schedules(class_id)`,
}

// Migrate applies the schema. Statements are idempotent, so Migrate is safe
// to run on every start.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: apply schema: %w", err)
		}
	}
	return nil
}
