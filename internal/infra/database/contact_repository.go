package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hearing_reminder_bot/internal/domain/hearing"
)

var ErrContactNotFound = errors.New("contact not found")

// ContactRepository implements hearing.ContactRepository over the contacts table.
type ContactRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewContactRepository(db *sql.DB, dialect Dialect) *ContactRepository {
	return &ContactRepository{db: db, dialect: dialect}
}

// SaveContact inserts or replaces the phone linked to c.ChatID.
func (r *ContactRepository) SaveContact(ctx context.Context, c *hearing.Contact) error {
	query := `INSERT INTO contacts (chat_id, phone, canonical_phone) VALUES (?, ?, ?)
               ON CONFLICT (chat_id) DO UPDATE
               SET phone = excluded.phone, canonical_phone = excluded.canonical_phone, updated_at = CURRENT_TIMESTAMP`

	if _, err := r.db.ExecContext(ctx, rebind(r.dialect, query), c.ChatID, c.Phone, c.CanonicalPhone); err != nil {
		return fmt.Errorf("error saving contact: %w", err)
	}
	return nil
}

func (r *ContactRepository) GetContactByChatID(ctx context.Context, chatID int64) (*hearing.Contact, error) {
	query := `SELECT chat_id, phone, canonical_phone FROM contacts WHERE chat_id = ?`
	return r.get(ctx, query, chatID)
}

// GetContactByCanonicalPhone returns the most recently linked chat for a phone.
func (r *ContactRepository) GetContactByCanonicalPhone(ctx context.Context, canonical string) (*hearing.Contact, error) {
	query := `SELECT chat_id, phone, canonical_phone FROM contacts
               WHERE canonical_phone = ? ORDER BY updated_at DESC, chat_id DESC LIMIT 1`
	return r.get(ctx, query, canonical)
}

func (r *ContactRepository) get(ctx context.Context, query string, arg any) (*hearing.Contact, error) {
	c := &hearing.Contact{}
	err := r.db.QueryRowContext(ctx, rebind(r.dialect, query), arg).Scan(&c.ChatID, &c.Phone, &c.CanonicalPhone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("error getting contact: %w", err)
	}
	return c, nil
}
