package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hearing_reminder_bot/internal/app"
	"hearing_reminder_bot/internal/domain/reminder"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReminderRunner is the part of app.ReminderService the scheduler drives.
type ReminderRunner interface {
	RunTick(ctx context.Context) (*app.TickReport, error)
}

type ReminderScheduler struct {
	cronEngine            *cron.Cron
	reminders             ReminderRunner
	pruner                reminder.Pruner // nil when the cache cannot prune
	now                   app.Clock
	logger                *logrus.Entry
	cronSpecReminderCheck string
	cronSpecPrune         string
	tickTimeout           time.Duration
}

func NewReminderScheduler(
	reminders ReminderRunner,
	pruner reminder.Pruner,
	now app.Clock,
	location *time.Location,
	logger *logrus.Entry,
	cronSpecReminderCheck string, // e.g. "@every 30s"
	cronSpecPrune string, // e.g. "0 3 * * *"
	tickTimeout time.Duration,
) *ReminderScheduler {
	cronLogger := cron.PrintfLogger(logger)
	return &ReminderScheduler{
		cronEngine: cron.New(
			cron.WithLocation(location),
			cron.WithLogger(cronLogger),
			// A slow tick must not overlap the next one.
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		reminders:             reminders,
		pruner:                pruner,
		now:                   now,
		logger:                logger,
		cronSpecReminderCheck: cronSpecReminderCheck,
		cronSpecPrune:         cronSpecPrune,
		tickTimeout:           tickTimeout,
	}
}

// Start registers the jobs and starts the cron engine.
func (s *ReminderScheduler) Start() error {
	s.logger.Info("Starting reminder scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpecReminderCheck, s.runReminderTick); err != nil {
		return fmt.Errorf("could not add reminder check cron job: %w", err)
	}

	if s.pruner != nil {
		if _, err := s.cronEngine.AddFunc(s.cronSpecPrune, s.runPrune); err != nil {
			return fmt.Errorf("could not add sent cache prune cron job: %w", err)
		}
	}

	s.cronEngine.Start()
	s.logger.WithField("jobs", len(s.cronEngine.Entries())).Info("Reminder scheduler started with jobs.")
	return nil
}

func (s *ReminderScheduler) runReminderTick() {
	ctx := context.Background()
	if s.tickTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.tickTimeout)
		defer cancel()
	}

	report, err := s.reminders.RunTick(ctx)
	if err != nil {
		entry := s.logger.WithError(err)
		if report != nil {
			entry = entry.WithField("tick_id", report.TickID)
		}
		if errors.Is(err, app.ErrStoreUnavailable) {
			entry.Error("Reminder tick failed: record store unavailable, will retry on next tick")
			return
		}
		entry.Error("Reminder tick failed")
	}
}

func (s *ReminderScheduler) runPrune() {
	removed, err := s.pruner.Prune(s.now())
	if err != nil {
		s.logger.WithError(err).Error("Failed to prune sent reminder cache")
		return
	}
	s.logger.WithField("removed", removed).Info("Pruned sent reminder cache")
}

// Stop stops the scheduler and waits for a running tick to finish.
func (s *ReminderScheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Reminder scheduler gracefully stopped.")
}
