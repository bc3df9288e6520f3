package database

import (
	"context"
	"database/sql"
	"fmt"

	"hearing_reminder_bot/internal/domain/hearing"
)

var schemaStatements = map[Dialect][]string{
	DialectSQLite: {
		`CREATE TABLE IF NOT EXISTS cases (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			client_name TEXT NOT NULL,
			phone TEXT NOT NULL,
			case_id TEXT NOT NULL,
			hearing_date TEXT NOT NULL,
			hearing_time TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cases_hearing_date_trim ON cases((TRIM(hearing_date)))`,
		`CREATE INDEX IF NOT EXISTS idx_cases_case_id ON cases(case_id)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS contacts (
			chat_id INTEGER PRIMARY KEY,
			phone TEXT NOT NULL,
			canonical_phone TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_canonical_phone ON contacts(canonical_phone)`,
	},
	DialectPostgres: {
		`CREATE TABLE IF NOT EXISTS cases (
			id BIGSERIAL PRIMARY KEY,
			client_name TEXT NOT NULL,
			phone TEXT NOT NULL,
			case_id TEXT NOT NULL,
			hearing_date TEXT NOT NULL,
			hearing_time TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cases_hearing_date_trim ON cases((TRIM(hearing_date)))`,
		`CREATE INDEX IF NOT EXISTS idx_cases_case_id ON cases(case_id)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS contacts (
			chat_id BIGINT PRIMARY KEY,
			phone TEXT NOT NULL,
			canonical_phone TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contacts_canonical_phone ON contacts(canonical_phone)`,
	},
}

// EnsureSchema creates missing tables and seeds audio_enabled=true if unset.
func EnsureSchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	stmts, ok := schemaStatements[dialect]
	if !ok {
		return fmt.Errorf("unsupported database driver %q", dialect)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error applying schema: %w", err)
		}
	}

	seed := rebind(dialect, `INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT (key) DO NOTHING`)
	if _, err := db.ExecContext(ctx, seed, hearing.SettingAudioEnabled, "true"); err != nil {
		return fmt.Errorf("error seeding settings: %w", err)
	}
	return nil
}
