package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"hearing_reminder_bot/internal/domain/hearing"

	"github.com/sirupsen/logrus"
)

var errStoreDown = errors.New("connection refused")

// fakeRepo is an in-memory hearing.AdminRepository. Lists return fresh
// slices in insertion order, like the SQL repository.
type fakeRepo struct {
	mu       sync.Mutex
	records  []*hearing.Record
	settings map[string]string
	err      error // returned by every read when set
	nextID   int64

	// When gate is set, ListPhones signals entered and waits for gate.
	gate    chan struct{}
	entered chan struct{}
}

func newFakeRepo(records ...*hearing.Record) *fakeRepo {
	r := &fakeRepo{settings: make(map[string]string)}
	for _, rec := range records {
		_ = r.Create(context.Background(), rec)
	}
	return r
}

func (r *fakeRepo) filter(keep func(*hearing.Record) bool) ([]*hearing.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*hearing.Record, 0)
	for _, rec := range r.records {
		if keep(rec) {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListAll(context.Context) ([]*hearing.Record, error) {
	return r.filter(func(*hearing.Record) bool { return true })
}

func (r *fakeRepo) ListByPhone(_ context.Context, phone string) ([]*hearing.Record, error) {
	return r.filter(func(rec *hearing.Record) bool { return rec.Phone == phone })
}

func (r *fakeRepo) ListByCase(_ context.Context, caseID string) ([]*hearing.Record, error) {
	return r.filter(func(rec *hearing.Record) bool { return rec.CaseID == caseID })
}

func (r *fakeRepo) ListByDate(_ context.Context, date time.Time) ([]*hearing.Record, error) {
	want := hearing.FormatDate(date)
	return r.filter(func(rec *hearing.Record) bool { return strings.TrimSpace(rec.HearingDate) == want })
}

func (r *fakeRepo) ListPhones(context.Context) ([]string, error) {
	if r.gate != nil {
		r.entered <- struct{}{}
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	seen := make(map[string]bool)
	var phones []string
	for _, rec := range r.records {
		if !seen[rec.Phone] {
			seen[rec.Phone] = true
			phones = append(phones, rec.Phone)
		}
	}
	return phones, nil
}

func (r *fakeRepo) GetSetting(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	v, ok := r.settings[key]
	if !ok {
		return "", errors.New("setting not found")
	}
	return v, nil
}

func (r *fakeRepo) Create(_ context.Context, rec *hearing.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	rec.ID = r.nextID
	cp := *rec
	r.records = append(r.records, &cp)
	return nil
}

func (r *fakeRepo) SetSetting(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[key] = value
	return nil
}

func (r *fakeRepo) setErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

type sentMessage struct {
	Recipient string
	Text      string
	Audio     []byte
}

// recordingGateway records sends. failures makes the next n text sends fail.
type recordingGateway struct {
	mu            sync.Mutex
	texts         []sentMessage
	audios        []sentMessage
	failures      int
	audioErr      error
	textAttempts  int
	block         chan struct{} // when set, SendText waits for it or ctx
	blockedNotify chan struct{}
}

func (g *recordingGateway) SendText(ctx context.Context, recipient, text string) error {
	g.mu.Lock()
	g.textAttempts++
	block := g.block
	notify := g.blockedNotify
	g.mu.Unlock()

	if block != nil {
		if notify != nil {
			notify <- struct{}{}
		}
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failures > 0 {
		g.failures--
		return errors.New("chat window not found")
	}
	g.texts = append(g.texts, sentMessage{Recipient: recipient, Text: text})
	return nil
}

func (g *recordingGateway) SendAudio(_ context.Context, recipient string, audio []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.audioErr != nil {
		return g.audioErr
	}
	g.audios = append(g.audios, sentMessage{Recipient: recipient, Audio: audio})
	return nil
}

func (g *recordingGateway) sentTexts() []sentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]sentMessage(nil), g.texts...)
}

type fakeSpeaker struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (s *fakeSpeaker) Speak(_ context.Context, text string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, text)
	if s.err != nil {
		return nil, s.err
	}
	return []byte("mp3:" + text), nil
}

// memoryCache is a minimal reminder.SentCache for app tests.
type memoryCache struct {
	mu      sync.Mutex
	keys    map[string]bool
	markErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{keys: make(map[string]bool)}
}

func (c *memoryCache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keys[key]
}

func (c *memoryCache) Mark(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys[key] = true
	return c.markErr
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// testToday is a fixed "today" for every app test.
var testToday = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

func day(offset int) string {
	return hearing.FormatDate(testToday.AddDate(0, 0, offset))
}
