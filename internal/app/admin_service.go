package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hearing_reminder_bot/internal/domain/hearing"
)

// AdminService is the administrative path: the only writer of hearings and settings.
type AdminService struct {
	repo            hearing.AdminRepository
	settings        *SettingsService
	reminders       *ReminderService
	adminTelegramID int64
}

func NewAdminService(repo hearing.AdminRepository, settings *SettingsService, reminders *ReminderService, adminID int64) *AdminService {
	return &AdminService{
		repo:            repo,
		settings:        settings,
		reminders:       reminders,
		adminTelegramID: adminID,
	}
}

// NewHearing is the admin input for AddHearing.
type NewHearing struct {
	ClientName  string
	Phone       string
	CaseID      string
	HearingDate string // YYYY-MM-DD
	HearingTime string
}

// AddHearing validates and stores a new hearing record.
func (s *AdminService) AddHearing(ctx context.Context, performingAdminID int64, in NewHearing) (*hearing.Record, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}

	rec := &hearing.Record{
		ClientName:  strings.TrimSpace(in.ClientName),
		Phone:       strings.TrimSpace(in.Phone),
		CaseID:      strings.TrimSpace(in.CaseID),
		HearingDate: strings.TrimSpace(in.HearingDate),
		HearingTime: strings.TrimSpace(in.HearingTime),
	}
	if rec.ClientName == "" {
		return nil, fmt.Errorf("%w: client name is empty", ErrInvalidHearing)
	}
	if _, ok := hearing.CanonicalPhone(rec.Phone); !ok {
		return nil, fmt.Errorf("%w: phone %q has fewer than %d digits", ErrInvalidHearing, rec.Phone, hearing.CanonicalPhoneLength)
	}
	if rec.CaseID == "" || strings.ContainsAny(rec.CaseID, " \t\n") {
		return nil, fmt.Errorf("%w: case id %q", ErrInvalidHearing, rec.CaseID)
	}
	if _, err := rec.Date(); err != nil {
		return nil, fmt.Errorf("%w: hearing date %q is not YYYY-MM-DD", ErrInvalidHearing, rec.HearingDate)
	}
	if rec.HearingTime == "" {
		return nil, fmt.Errorf("%w: hearing time is empty", ErrInvalidHearing)
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create hearing: %w", err)
	}
	return rec, nil
}

// SetAudioEnabled writes the audio flag.
func (s *AdminService) SetAudioEnabled(ctx context.Context, performingAdminID int64, enabled bool) error {
	if performingAdminID != s.adminTelegramID {
		return ErrAdminNotAuthorized
	}
	value := "false"
	if enabled {
		value = "true"
	}
	if err := s.repo.SetSetting(ctx, hearing.SettingAudioEnabled, value); err != nil {
		return fmt.Errorf("failed to update audio setting: %w", err)
	}
	return nil
}

// AudioEnabled reports the effective audio flag, fail-open policy included.
func (s *AdminService) AudioEnabled(ctx context.Context, performingAdminID int64) (bool, error) {
	if performingAdminID != s.adminTelegramID {
		return false, ErrAdminNotAuthorized
	}
	return s.settings.AudioEnabled(ctx), nil
}

// ListHearingsOn returns the hearings stored for one date.
func (s *AdminService) ListHearingsOn(ctx context.Context, performingAdminID int64, date time.Time) ([]*hearing.Record, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	records, err := s.repo.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list hearings: %w", err)
	}
	return records, nil
}

// RunRemindersNow runs one reminder tick outside the schedule.
func (s *AdminService) RunRemindersNow(ctx context.Context, performingAdminID int64) (*TickReport, error) {
	if performingAdminID != s.adminTelegramID {
		return nil, ErrAdminNotAuthorized
	}
	return s.reminders.RunTick(ctx)
}
