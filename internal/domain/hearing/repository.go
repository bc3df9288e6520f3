package hearing

import (
	"context"
	"errors"
	"time"
)

// SettingAudioEnabled is the settings key toggling spoken replies.
const SettingAudioEnabled = "audio_enabled"

var (
	// ErrUnregistered means the sender phone has no canonical match in the store.
	ErrUnregistered = errors.New("phone is not registered")
	// ErrCaseNotFound means no record carries the requested case id.
	ErrCaseNotFound = errors.New("case not found")
)

// Repository is the read side of the record store used by the engine.
// Every list returns rows in storage order.
type Repository interface {
	ListAll(ctx context.Context) ([]*Record, error)
	ListByPhone(ctx context.Context, phone string) ([]*Record, error)
	ListByCase(ctx context.Context, caseID string) ([]*Record, error)
	ListByDate(ctx context.Context, date time.Time) ([]*Record, error)
	// ListPhones returns each distinct stored phone once, first-seen order.
	ListPhones(ctx context.Context) ([]string, error)
	GetSetting(ctx context.Context, key string) (string, error)
}

// AdminRepository is the write side, used only by the administrative path.
type AdminRepository interface {
	Repository
	Create(ctx context.Context, r *Record) error
	SetSetting(ctx context.Context, key, value string) error
}

// Contact links a messaging-channel chat to a phone number.
type Contact struct {
	ChatID         int64
	Phone          string
	CanonicalPhone string
}

// ContactRepository stores which chat belongs to which phone.
type ContactRepository interface {
	SaveContact(ctx context.Context, c *Contact) error
	GetContactByChatID(ctx context.Context, chatID int64) (*Contact, error)
	GetContactByCanonicalPhone(ctx context.Context, canonical string) (*Contact, error)
}
