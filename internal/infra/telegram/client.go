// internal/infra/telegram/client.go
package telegram

import (
	"bytes"
	"context"
	"fmt"

	"hearing_reminder_bot/internal/domain/hearing"

	"gopkg.in/telebot.v3"
)

// Sender is the slice of *telebot.Bot the gateway needs.
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// Gateway implements dispatch.Gateway on top of telebot. Recipients are
// phone numbers; they are routed to the chat that shared that phone.
//
// Every outgoing message of the process, reminders and replies alike, goes
// through one Gateway, which keeps at most one Telegram request in flight.
type Gateway struct {
	bot      Sender
	contacts hearing.ContactRepository
	slot     chan struct{} // held until bot.Send returns, even after the caller gave up
}

func NewGateway(b Sender, contacts hearing.ContactRepository) *Gateway {
	return &Gateway{bot: b, contacts: contacts, slot: make(chan struct{}, 1)}
}

// SendText sends a text message to the chat linked to recipient.
func (g *Gateway) SendText(ctx context.Context, recipient string, text string) error {
	chat, err := g.resolve(ctx, recipient)
	if err != nil {
		return err
	}
	return g.send(ctx, chat, text)
}

// SendAudio sends an MP3 attachment to the chat linked to recipient.
func (g *Gateway) SendAudio(ctx context.Context, recipient string, audio []byte) error {
	chat, err := g.resolve(ctx, recipient)
	if err != nil {
		return err
	}
	return g.send(ctx, chat, audioAttachment(audio))
}

// SendToChat sends what to a chat id directly.
func (g *Gateway) SendToChat(ctx context.Context, chatID int64, what interface{}, opts ...interface{}) error {
	return g.send(ctx, telebot.ChatID(chatID), what, opts...)
}

// Reply answers the chat of c. Handlers use it instead of c.Send.
func (g *Gateway) Reply(ctx context.Context, c telebot.Context, what interface{}, opts ...interface{}) error {
	return g.SendToChat(ctx, c.Chat().ID, what, opts...)
}

func (g *Gateway) resolve(ctx context.Context, recipient string) (telebot.Recipient, error) {
	canonical, ok := hearing.CanonicalPhone(recipient)
	if !ok {
		return nil, fmt.Errorf("recipient %q is not a routable phone", recipient)
	}
	contact, err := g.contacts.GetContactByCanonicalPhone(ctx, canonical)
	if err != nil {
		return nil, fmt.Errorf("no chat linked to phone %s: %w", recipient, err)
	}
	return telebot.ChatID(contact.ChatID), nil
}

// send waits for the slot, then gives up when ctx ends. An abandoned request
// keeps the slot until Telegram answers it, so the next send cannot overlap
// it. It may still be delivered; the caller treats it as failed.
func (g *Gateway) send(ctx context.Context, to telebot.Recipient, what interface{}, opts ...interface{}) error {
	select {
	case g.slot <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("send to %s not started: %w", to.Recipient(), ctx.Err())
	}

	done := make(chan error, 1)
	go func() {
		defer func() { <-g.slot }()
		_, err := g.bot.Send(to, what, opts...)
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("send to %s abandoned: %w", to.Recipient(), ctx.Err())
	}
}

func audioAttachment(audio []byte) *telebot.Audio {
	return &telebot.Audio{
		File:     telebot.FromReader(bytes.NewReader(audio)),
		FileName: "hearing.mp3",
		MIME:     "audio/mpeg",
	}
}
