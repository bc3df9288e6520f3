package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hearing_reminder_bot/internal/domain/hearing"
)

// Custom errors
var ErrSettingNotFound = errors.New("setting not found")

const selectCaseColumns = `SELECT id, client_name, phone, case_id, hearing_date, hearing_time FROM cases`

// HearingRepository implements hearing.AdminRepository over the cases and settings tables.
type HearingRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewHearingRepository(db *sql.DB, dialect Dialect) *HearingRepository {
	return &HearingRepository{db: db, dialect: dialect}
}

func (r *HearingRepository) Create(ctx context.Context, rec *hearing.Record) error {
	query := `INSERT INTO cases (client_name, phone, case_id, hearing_date, hearing_time)
               VALUES (?, ?, ?, ?, ?)
               RETURNING id`

	err := r.db.QueryRowContext(ctx, rebind(r.dialect, query),
		rec.ClientName, rec.Phone, rec.CaseID, rec.HearingDate, rec.HearingTime).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("error creating hearing: %w", err)
	}
	return nil
}

func (r *HearingRepository) ListAll(ctx context.Context) ([]*hearing.Record, error) {
	return r.list(ctx, "all hearings", selectCaseColumns+` ORDER BY id`)
}

func (r *HearingRepository) ListByPhone(ctx context.Context, phone string) ([]*hearing.Record, error) {
	return r.list(ctx, "hearings by phone", selectCaseColumns+` WHERE phone = ? ORDER BY id`, phone)
}

func (r *HearingRepository) ListByCase(ctx context.Context, caseID string) ([]*hearing.Record, error) {
	return r.list(ctx, "hearings by case", selectCaseColumns+` WHERE case_id = ? ORDER BY id`, caseID)
}

// ListByDate matches hearing_date ignoring surrounding whitespace, as Record.Date does.
func (r *HearingRepository) ListByDate(ctx context.Context, date time.Time) ([]*hearing.Record, error) {
	return r.list(ctx, "hearings by date", selectCaseColumns+` WHERE TRIM(hearing_date) = ? ORDER BY id`, hearing.FormatDate(date))
}

func (r *HearingRepository) ListPhones(ctx context.Context) ([]string, error) {
	query := `SELECT phone FROM cases GROUP BY phone ORDER BY MIN(id)`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing phones: %w", err)
	}
	defer rows.Close()

	phones := make([]string, 0)
	for rows.Next() {
		var phone string
		if err := rows.Scan(&phone); err != nil {
			return nil, fmt.Errorf("error scanning phone: %w", err)
		}
		phones = append(phones, phone)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating phones: %w", err)
	}
	return phones, nil
}

func (r *HearingRepository) GetSetting(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM settings WHERE key = ?`

	var value sql.NullString
	err := r.db.QueryRowContext(ctx, rebind(r.dialect, query), key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrSettingNotFound
		}
		return "", fmt.Errorf("error getting setting %s: %w", key, err)
	}
	if !value.Valid {
		return "", ErrSettingNotFound
	}
	return value.String, nil
}

func (r *HearingRepository) SetSetting(ctx context.Context, key, value string) error {
	query := `INSERT INTO settings (key, value) VALUES (?, ?)
               ON CONFLICT (key) DO UPDATE SET value = excluded.value`

	if _, err := r.db.ExecContext(ctx, rebind(r.dialect, query), key, value); err != nil {
		return fmt.Errorf("error setting %s: %w", key, err)
	}
	return nil
}

func (r *HearingRepository) list(ctx context.Context, what, query string, args ...any) ([]*hearing.Record, error) {
	rows, err := r.db.QueryContext(ctx, rebind(r.dialect, query), args...)
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %w", what, err)
	}
	defer rows.Close()

	records := make([]*hearing.Record, 0)
	for rows.Next() {
		rec := &hearing.Record{}
		if err := rows.Scan(&rec.ID, &rec.ClientName, &rec.Phone, &rec.CaseID, &rec.HearingDate, &rec.HearingTime); err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", what, err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", what, err)
	}
	return records, nil
}
