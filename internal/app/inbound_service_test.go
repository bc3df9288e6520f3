package app

import (
	"context"
	"errors"
	"testing"

	"hearing_reminder_bot/internal/domain/dispatch"
	"hearing_reminder_bot/internal/domain/hearing"
	"hearing_reminder_bot/internal/domain/intent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInbound(repo *fakeRepo, speaker *fakeSpeaker, audioOnlyForKeywords bool) *InboundService {
	logger := testLogger()
	// A typed nil would look like a configured speaker.
	var sp dispatch.Speaker
	if speaker != nil {
		sp = speaker
	}
	return NewInboundService(
		NewPhoneReconciler(repo, logger),
		NewIntentResolver(intent.DefaultKeywords()),
		NewQueryService(repo, fixedClock(testToday), logger),
		NewSettingsService(repo, logger),
		sp,
		newMemoryCache(),
		audioOnlyForKeywords,
		logger,
	)
}

func TestInboundService_UnregisteredTakesPrecedence(t *testing.T) {
	repo := newFakeRepo(rec("12345", day(1), "10:00"))
	s := newInbound(repo, nil, false)

	for _, text := range []string{"next hearing", "case 12345", "history", "hello"} {
		reply, err := s.HandleMessage(context.Background(), InboundMessage{Sender: "+91 11111 22222", Text: text})
		require.NoError(t, err)
		assert.Equal(t, ReplyUnregistered, reply.Text, text)
		assert.Nil(t, reply.Audio)
	}
}

func TestInboundService_AnswersRegisteredSender(t *testing.T) {
	repo := newFakeRepo(rec("100", day(1), "10:30 AM"))
	s := newInbound(repo, nil, false)

	reply, err := s.HandleMessage(context.Background(), InboundMessage{ID: "m1", Sender: "9640733498", Text: "When is my next hearing?"})
	require.NoError(t, err)
	assert.Equal(t, "Your next hearing:\nCase 100\nDate: "+day(1)+" at 10:30 AM", reply.Text)
	assert.False(t, reply.Duplicate)
}

func TestInboundService_DeduplicatesByMessageID(t *testing.T) {
	repo := newFakeRepo(rec("100", day(1), "10:30 AM"))
	s := newInbound(repo, nil, false)
	msg := InboundMessage{ID: "chat:42", Sender: ravi, Text: "history"}

	first, err := s.HandleMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.False(t, first.Duplicate)

	second, err := s.HandleMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Empty(t, second.Text)

	// Without an id every delivery is answered.
	msg.ID = ""
	for i := 0; i < 2; i++ {
		reply, err := s.HandleMessage(context.Background(), msg)
		require.NoError(t, err)
		assert.False(t, reply.Duplicate)
	}
}

func TestInboundService_StoreFailureIsNotMarkedSeen(t *testing.T) {
	repo := newFakeRepo(rec("100", day(1), "10:30 AM"))
	s := newInbound(repo, nil, false)
	msg := InboundMessage{ID: "chat:7", Sender: ravi, Text: "history"}

	repo.setErr(errStoreDown)
	_, err := s.HandleMessage(context.Background(), msg)
	require.ErrorIs(t, err, ErrStoreUnavailable)

	repo.setErr(nil)
	reply, err := s.HandleMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.False(t, reply.Duplicate)
	assert.Equal(t, "Your Case Hearing History:\nCase 100: "+day(1)+" at 10:30 AM", reply.Text)
}

func TestInboundService_Audio(t *testing.T) {
	t.Run("spoken when enabled", func(t *testing.T) {
		speaker := &fakeSpeaker{}
		s := newInbound(newFakeRepo(rec("100", day(1), "10:00")), speaker, false)

		reply, err := s.HandleMessage(context.Background(), InboundMessage{Sender: ravi, Text: "hello"})
		require.NoError(t, err)
		assert.Equal(t, []byte("mp3:"+ReplyUnknown), reply.Audio)
	})

	t.Run("disabled by setting", func(t *testing.T) {
		speaker := &fakeSpeaker{}
		repo := newFakeRepo(rec("100", day(1), "10:00"))
		require.NoError(t, repo.SetSetting(context.Background(), hearing.SettingAudioEnabled, "false"))
		s := newInbound(repo, speaker, false)

		reply, err := s.HandleMessage(context.Background(), InboundMessage{Sender: ravi, Text: "next hearing"})
		require.NoError(t, err)
		assert.Nil(t, reply.Audio)
		assert.Empty(t, speaker.calls)
	})

	t.Run("only for voice keywords", func(t *testing.T) {
		speaker := &fakeSpeaker{}
		s := newInbound(newFakeRepo(rec("100", day(1), "10:00")), speaker, true)

		reply, err := s.HandleMessage(context.Background(), InboundMessage{Sender: ravi, Text: "100"})
		require.NoError(t, err)
		assert.Nil(t, reply.Audio)

		reply, err = s.HandleMessage(context.Background(), InboundMessage{Sender: ravi, Text: "case 100"})
		require.NoError(t, err)
		assert.NotNil(t, reply.Audio)
	})

	t.Run("speaker failure keeps text", func(t *testing.T) {
		speaker := &fakeSpeaker{err: errors.New("tts unreachable")}
		s := newInbound(newFakeRepo(rec("100", day(1), "10:00")), speaker, false)

		reply, err := s.HandleMessage(context.Background(), InboundMessage{Sender: ravi, Text: "case 100"})
		require.NoError(t, err)
		assert.Equal(t, "Case 100 Hearings:\nClient: Ravi Kumar\n- "+day(1)+" at 10:00", reply.Text)
		assert.Nil(t, reply.Audio)
	})
}

func TestInboundService_ConcurrentDeliveryAnsweredOnce(t *testing.T) {
	repo := newFakeRepo(rec("100", day(1), "10:30 AM"))
	repo.gate = make(chan struct{})
	repo.entered = make(chan struct{}, 2)
	s := newInbound(repo, nil, false)
	msg := InboundMessage{ID: "chat:9", Sender: ravi, Text: "history"}

	first := make(chan *Reply, 1)
	go func() {
		reply, err := s.HandleMessage(context.Background(), msg)
		assert.NoError(t, err)
		first <- reply
	}()
	<-repo.entered // first delivery is mid-answer

	second, err := s.HandleMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)

	close(repo.gate)
	reply := <-first
	assert.False(t, reply.Duplicate)
	assert.Equal(t, "Your Case Hearing History:\nCase 100: "+day(1)+" at 10:30 AM", reply.Text)

	third, err := s.HandleMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.True(t, third.Duplicate)
}
