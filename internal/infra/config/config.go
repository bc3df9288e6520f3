package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken          string
	AdminTelegramID        int64
	DatabaseDriver         string // sqlite or postgres
	DatabaseURL            string
	LogLevel               string
	Environment            string
	Location               *time.Location
	ReminderDays           []int
	CronSpecReminderCheck  string
	CronSpecSentCachePrune string
	DispatchTimeout        time.Duration
	SentCachePath          string // Empty keeps reminder dedup in memory only
	KeywordsFile           string
	AudioOnlyForKeywords   bool
	TTSURL                 string
	TTSLang                string
}

// Load reads configuration from environment variables and the given .env
// files (or ./.env when none are given). Existing variables are never
// overridden by a .env file.
func Load(envFiles ...string) (*AppConfig, error) {
	// Errors are ignored if the file doesn't exist.
	_ = godotenv.Load(envFiles...)

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
	if adminIDStr == "" {
		return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
	}
	cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
	}

	cfg.DatabaseDriver = strings.ToLower(getenv("DATABASE_DRIVER", "sqlite"))
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	switch cfg.DatabaseDriver {
	case "sqlite":
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = "cases.db"
		}
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
	default:
		return nil, fmt.Errorf("invalid DATABASE_DRIVER %q: want sqlite or postgres", cfg.DatabaseDriver)
	}

	cfg.LogLevel = strings.ToLower(getenv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getenv("ENVIRONMENT", "development"))

	cfg.Location, err = time.LoadLocation(getenv("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	cfg.ReminderDays, err = ParseReminderDays(getenv("REMINDER_DAYS", "2,1,0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_DAYS: %w", err)
	}

	cfg.CronSpecReminderCheck = getenv("CRON_SPEC_REMINDER_CHECK", "@every 30s")
	cfg.CronSpecSentCachePrune = getenv("CRON_SPEC_SENT_CACHE_PRUNE", "0 3 * * *")

	cfg.DispatchTimeout, err = time.ParseDuration(getenv("DISPATCH_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid DISPATCH_TIMEOUT: %w", err)
	}

	cfg.SentCachePath = os.Getenv("SENT_CACHE_PATH")
	cfg.KeywordsFile = os.Getenv("KEYWORDS_FILE")

	cfg.AudioOnlyForKeywords, err = strconv.ParseBool(getenv("AUDIO_ONLY_FOR_KEYWORDS", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUDIO_ONLY_FOR_KEYWORDS: %w", err)
	}

	cfg.TTSURL = getenv("TTS_URL", "https://translate.google.com/translate_tts")
	cfg.TTSLang = getenv("TTS_LANG", "te")

	return cfg, nil
}

// ParseReminderDays parses a comma-separated list of non-negative day
// offsets. Order is kept and repeats are dropped.
func ParseReminderDays(s string) ([]int, error) {
	var days []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("day offset %q: %w", part, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("day offset %d is negative", d)
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("no day offsets in %q", s)
	}
	return days, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
