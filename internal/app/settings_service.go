package app

import (
	"context"
	"strings"

	"hearing_reminder_bot/internal/domain/hearing"

	"github.com/sirupsen/logrus"
)

// SettingsService reads the key/value settings table.
type SettingsService struct {
	repo   hearing.Repository
	logger *logrus.Entry
}

func NewSettingsService(repo hearing.Repository, logger *logrus.Entry) *SettingsService {
	return &SettingsService{repo: repo, logger: logger.WithField("component", "settings")}
}

// AudioEnabled reports the audio flag. The policy is fail-open: a missing
// row, a store error or an unrecognized value all mean enabled. Only a
// case-insensitive "false" disables audio.
func (s *SettingsService) AudioEnabled(ctx context.Context) bool {
	value, err := s.repo.GetSetting(ctx, hearing.SettingAudioEnabled)
	if err != nil {
		s.logger.WithError(err).Debug("Audio setting unreadable, defaulting to enabled")
		return true
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "false":
		return false
	case "true":
		return true
	default:
		s.logger.WithField("value", value).Warn("Unrecognized audio setting, defaulting to enabled")
		return true
	}
}
