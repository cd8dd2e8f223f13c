package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	ddl     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "create_users",
		ddl: `CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			is_admin INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	},
	{
		version: 2,
		name:    "create_faculties",
		ddl: `CREATE TABLE faculties (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			code TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	},
	{
		version: 3,
		name:    "create_rooms",
		ddl: `CREATE TABLE rooms (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			code TEXT NOT NULL UNIQUE,
			building TEXT NOT NULL DEFAULT '',
			capacity INTEGER NOT NULL DEFAULT 0,
			room_type TEXT NOT NULL DEFAULT 'classroom',
			features TEXT NOT NULL DEFAULT '[]',
			faculty_id TEXT REFERENCES faculties(id),
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	},
	{
		version: 4,
		name:    "create_professors",
		ddl: `CREATE TABLE professors (
			id TEXT PRIMARY KEY,
			full_name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			faculty_id TEXT REFERENCES faculties(id),
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	},
	{
		version: 5,
		name:    "create_courses",
		ddl: `CREATE TABLE courses (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			code TEXT NOT NULL UNIQUE,
			professor_id TEXT REFERENCES professors(id),
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	},
	{
		version: 6,
		name:    "create_academic_periods",
		ddl: `CREATE TABLE academic_periods (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			period_type TEXT NOT NULL DEFAULT 'semester',
			starts_on TEXT NOT NULL,
			ends_on TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	},
	{
		version: 7,
		name:    "create_reservations",
		ddl: `CREATE TABLE reservations (
			id TEXT PRIMARY KEY,
			room_id TEXT NOT NULL REFERENCES rooms(id),
			course_id TEXT REFERENCES courses(id),
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			start_datetime TEXT NOT NULL,
			end_datetime TEXT NOT NULL,
			event_type TEXT NOT NULL CHECK (event_type IN ('class','lab','seminar','exam','meeting','event')),
			status TEXT NOT NULL CHECK (status IN ('pending','confirmed','cancelled','completed')),
			attendee_count INTEGER NOT NULL DEFAULT 0,
			equipment_needed TEXT NOT NULL DEFAULT '[]',
			recurring_template_id TEXT,
			created_by TEXT NOT NULL REFERENCES users(id),
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			CHECK (start_datetime < end_datetime)
		)`,
	},
	{
		version: 8,
		name:    "index_reservations_overlap",
		ddl:     `CREATE INDEX idx_reservations_room_window ON reservations (room_id, status, start_datetime, end_datetime)`,
	},
	{
		version: 9,
		name:    "index_reservations_group",
		ddl:     `CREATE INDEX idx_reservations_group ON reservations (recurring_template_id)`,
	},
	{
		version: 10,
		name:    "create_cleaning_reports",
		ddl: `CREATE TABLE cleaning_reports (
			id TEXT PRIMARY KEY,
			room_id TEXT NOT NULL REFERENCES rooms(id),
			report_date TEXT NOT NULL,
			is_cleaned INTEGER NOT NULL DEFAULT 0,
			cleaned_by TEXT NOT NULL DEFAULT '',
			cleaned_at TEXT,
			observations TEXT NOT NULL DEFAULT '[]',
			notes TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			UNIQUE (room_id, report_date)
		)`,
	},
}

// Migrate applies any pending schema migrations in order.
func (db *DB) Migrate(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("sqlite: create schema_migrations: %w", err)
	}

	var current int
	row := db.conn.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`)
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("sqlite: read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		err := db.WithTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.ddl); err != nil {
				return fmt.Errorf("apply %s: %w", m.name, err)
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, datetime('now'))`,
				m.version, m.name)
			return err
		})
		if err != nil {
			return fmt.Errorf("sqlite: migration %d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}
