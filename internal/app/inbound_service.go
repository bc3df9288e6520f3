package app

import (
	"context"
	"errors"
	"sync"

	"hearing_reminder_bot/internal/domain/dispatch"
	"hearing_reminder_bot/internal/domain/hearing"
	"hearing_reminder_bot/internal/domain/reminder"

	"github.com/sirupsen/logrus"
)

// InboundMessage is one chat message received from a client.
type InboundMessage struct {
	ID     string // Transport message id; empty disables deduplication
	Sender string // Raw sender identity, usually a phone number
	Text   string
}

// Reply is what the transport should send back.
type Reply struct {
	Text      string
	Audio     []byte // Optional MP3 of the localized reply
	Duplicate bool   // Message was already handled; send nothing
}

// InboundService answers client queries: reconcile phone, resolve intent,
// execute, and optionally speak the reply.
type InboundService struct {
	reconciler           *PhoneReconciler
	resolver             *IntentResolver
	query                *QueryService
	settings             *SettingsService
	speaker              dispatch.Speaker
	seen                 reminder.SentCache
	audioOnlyForKeywords bool
	logger               *logrus.Entry

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewInboundService(
	reconciler *PhoneReconciler,
	resolver *IntentResolver,
	query *QueryService,
	settings *SettingsService,
	speaker dispatch.Speaker,
	seen reminder.SentCache,
	audioOnlyForKeywords bool,
	logger *logrus.Entry,
) *InboundService {
	return &InboundService{
		reconciler:           reconciler,
		resolver:             resolver,
		query:                query,
		settings:             settings,
		speaker:              speaker,
		seen:                 seen,
		audioOnlyForKeywords: audioOnlyForKeywords,
		logger:               logger.WithField("component", "inbound_service"),
		inFlight:             make(map[string]struct{}),
	}
}

// HandleMessage computes the reply for msg. An unregistered sender gets the
// fixed guidance text before any intent is looked at. The only error is a
// store failure wrapping ErrStoreUnavailable.
func (s *InboundService) HandleMessage(ctx context.Context, msg InboundMessage) (*Reply, error) {
	logger := s.logger.WithField("message_id", msg.ID)
	if msg.ID != "" {
		if !s.claim(msg.ID) {
			logger.Debug("Message already handled or in progress")
			return &Reply{Duplicate: true}, nil
		}
		defer s.release(msg.ID)
	}

	text, err := s.answer(ctx, msg, logger)
	if err != nil {
		return nil, err
	}

	if msg.ID != "" {
		if err := s.seen.Mark(msg.ID); err != nil {
			logger.WithError(err).Warn("Could not record handled message")
		}
	}

	reply := &Reply{Text: text}
	if s.shouldSpeak(ctx, msg.Text) {
		audio, err := s.speaker.Speak(ctx, text)
		if err != nil {
			logger.WithError(err).Warn("Audio reply not produced")
		} else {
			reply.Audio = audio
		}
	}
	return reply, nil
}

// claim reserves a message id. It fails when the id was handled before or is
// being handled now.
func (s *InboundService) claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[id]; busy {
		return false
	}
	if s.seen.Contains(id) {
		return false
	}
	s.inFlight[id] = struct{}{}
	return true
}

func (s *InboundService) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)
}

func (s *InboundService) answer(ctx context.Context, msg InboundMessage, logger *logrus.Entry) (string, error) {
	phone, err := s.reconciler.Reconcile(ctx, msg.Sender)
	if errors.Is(err, hearing.ErrUnregistered) {
		return ReplyUnregistered, nil
	}
	if err != nil {
		return "", err
	}

	in := s.resolver.Resolve(msg.Text)
	logger.WithFields(logrus.Fields{"phone": phone, "intent": in.Kind, "case_id": in.CaseID}).Info("Resolved query")
	return s.query.Execute(ctx, in, phone)
}

func (s *InboundService) shouldSpeak(ctx context.Context, query string) bool {
	if s.speaker == nil {
		return false
	}
	if s.audioOnlyForKeywords && !s.resolver.WantsAudio(query) {
		return false
	}
	return s.settings.AudioEnabled(ctx)
}
