package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"hearing_reminder_bot/internal/domain/dispatch"
	"hearing_reminder_bot/internal/domain/hearing"
	"hearing_reminder_bot/internal/domain/reminder"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TickReport summarizes one reminder scan.
type TickReport struct {
	TickID      string
	Today       time.Time
	Sent        int
	Skipped     int // Already sent, or being sent by a concurrent tick
	Failed      int
	AudioFailed int
}

// ReminderService scans the record store for hearings at fixed day offsets
// from today and dispatches one reminder per (phone, case, date, offset).
type ReminderService struct {
	repo     hearing.Repository
	gateway  dispatch.Gateway
	speaker  dispatch.Speaker // nil disables the audio leg
	settings *SettingsService
	sent     reminder.SentCache
	offsets  []int
	timeout  time.Duration
	now      Clock
	logger   *logrus.Entry

	mu       sync.Mutex
	inFlight map[string]struct{}
}

type ReminderServiceConfig struct {
	Offsets         []int         // e.g. 2, 1, 0
	DispatchTimeout time.Duration // zero means no timeout
}

func NewReminderService(
	repo hearing.Repository,
	gateway dispatch.Gateway,
	speaker dispatch.Speaker,
	settings *SettingsService,
	sent reminder.SentCache,
	cfg ReminderServiceConfig,
	now Clock,
	logger *logrus.Entry,
) *ReminderService {
	return &ReminderService{
		repo:     repo,
		gateway:  gateway,
		speaker:  speaker,
		settings: settings,
		sent:     sent,
		offsets:  append([]int(nil), cfg.Offsets...),
		timeout:  cfg.DispatchTimeout,
		now:      now,
		logger:   logger.WithField("component", "reminder_service"),
		inFlight: make(map[string]struct{}),
	}
}

// RunTick performs one Scanning → Composing → Dispatching pass. A store
// failure aborts the tick and is returned wrapped in ErrStoreUnavailable;
// dispatch failures are only counted, and those reminders stay eligible for
// the next tick.
func (s *ReminderService) RunTick(ctx context.Context) (*TickReport, error) {
	report := &TickReport{
		TickID: uuid.NewString(),
		Today:  hearing.Today(s.now()),
	}
	tickLogger := s.logger.WithField("tick_id", report.TickID)
	tickLogger.WithField("today", hearing.FormatDate(report.Today)).Debug("Reminder tick started")

	audioEnabled := s.speaker != nil && s.settings.AudioEnabled(ctx)

	for _, offset := range s.offsets {
		if err := s.remindForOffset(ctx, report, offset, audioEnabled, tickLogger); err != nil {
			tickLogger.WithError(err).WithField("offset", offset).Error("Reminder tick aborted")
			return report, err
		}
	}

	tickLogger.WithFields(logrus.Fields{
		"sent":         report.Sent,
		"skipped":      report.Skipped,
		"failed":       report.Failed,
		"audio_failed": report.AudioFailed,
	}).Info("Reminder tick finished")
	return report, nil
}

// remindForOffset is the single offset-agnostic selection procedure.
func (s *ReminderService) remindForOffset(ctx context.Context, report *TickReport, offset int, audioEnabled bool, logger *logrus.Entry) error {
	targetDate := report.Today.AddDate(0, 0, offset)
	records, err := s.repo.ListByDate(ctx, targetDate)
	if err != nil {
		return fmt.Errorf("%w: list hearings for %s: %w", ErrStoreUnavailable, hearing.FormatDate(targetDate), err)
	}

	for _, rec := range records {
		key := reminder.Key{
			Phone:      strings.TrimSpace(rec.Phone),
			CaseID:     strings.TrimSpace(rec.CaseID),
			TargetDate: hearing.FormatDate(targetDate),
			Offset:     offset,
		}.String()
		recLogger := logger.WithFields(logrus.Fields{"phone": rec.Phone, "case_id": rec.CaseID, "offset": offset})

		if !s.claim(key) {
			report.Skipped++
			continue
		}

		text := ComposeReminder(rec, targetDate, offset)
		if err := s.send(ctx, func(ctx context.Context) error {
			return s.gateway.SendText(ctx, rec.Phone, text)
		}); err != nil {
			s.finish(key, false, recLogger)
			report.Failed++
			recLogger.WithError(err).Error("Failed to send reminder, will retry next tick")
			continue
		}
		s.finish(key, true, recLogger)
		report.Sent++
		recLogger.Info("Reminder sent")

		if audioEnabled {
			if err := s.sendAudio(ctx, rec.Phone, text); err != nil {
				report.AudioFailed++
				recLogger.WithError(err).Warn("Reminder audio not delivered")
			}
		}
	}
	return nil
}

func (s *ReminderService) sendAudio(ctx context.Context, recipient, text string) error {
	audio, err := s.speaker.Speak(ctx, text)
	if err != nil {
		return fmt.Errorf("synthesize reminder audio: %w", err)
	}
	return s.send(ctx, func(ctx context.Context) error {
		return s.gateway.SendAudio(ctx, recipient, audio)
	})
}

// send runs one gateway call under the dispatch timeout.
func (s *ReminderService) send(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if err := fn(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}
	return nil
}

// claim reserves key for one dispatch attempt. It fails when the key was
// already sent or another attempt holds it.
func (s *ReminderService) claim(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return false
	}
	if s.sent.Contains(key) {
		return false
	}
	s.inFlight[key] = struct{}{}
	return true
}

// finish releases a claim; delivered keys are marked sent first.
func (s *ReminderService) finish(key string, delivered bool, logger *logrus.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if delivered {
		if err := s.sent.Mark(key); err != nil {
			logger.WithError(err).Warn("Reminder marked in memory only")
		}
	}
	delete(s.inFlight, key)
}

// ComposeReminder builds the reminder text for a hearing offset days away.
func ComposeReminder(rec *hearing.Record, targetDate time.Time, offset int) string {
	caseID := clean(rec.CaseID)
	date := hearing.FormatDate(targetDate)
	at := clean(rec.HearingTime)

	var phrase string
	switch offset {
	case 0:
		phrase = fmt.Sprintf("Reminder: Your hearing for Case %s is today, %s at %s.", caseID, date, at)
	case 1:
		phrase = fmt.Sprintf("Reminder: Your hearing for Case %s is tomorrow, %s at %s.", caseID, date, at)
	default:
		phrase = fmt.Sprintf("Reminder: Your hearing for Case %s is in %d days, on %s at %s.", caseID, offset, date, at)
	}
	return fmt.Sprintf("Dear %s,\n%s\n- Advocate Office", clean(rec.ClientName), phrase)
}
