// internal/infra/telegram/client_handlers.go
package telegram

import (
	"context"
	"errors"
	"fmt"

	"hearing_reminder_bot/internal/app"
	"hearing_reminder_bot/internal/domain/hearing"
	idb "hearing_reminder_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const (
	msgTryLater      = "Sorry, something went wrong. Please try again later."
	msgShareOwnPhone = "Please share your own phone number using the button below."
	msgPhoneTooShort = "That phone number looks incomplete. Please share it again using the button below."
	msgPhoneLinked   = "Thank you! Your phone number is linked. Ask me 'next hearing', 'case history', or 'case 12345'."
)

// RegisterClientHandlers wires the client-facing conversation: phone linking
// and hearing queries.
func RegisterClientHandlers(
	ctx context.Context,
	b *telebot.Bot,
	gateway *Gateway,
	inbound *app.InboundService,
	contacts hearing.ContactRepository,
	baseLogger *logrus.Entry,
) {
	b.Handle(telebot.OnContact, func(c telebot.Context) error {
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "contact", "sender_id": c.Sender().ID})

		shared := c.Message().Contact
		if shared == nil || shared.UserID != c.Sender().ID {
			logCtx.Warn("Rejected contact that does not belong to the sender")
			return gateway.Reply(ctx, c, msgShareOwnPhone, sharePhoneKeyboard())
		}

		canonical, ok := hearing.CanonicalPhone(shared.PhoneNumber)
		if !ok {
			logCtx.WithField("phone", shared.PhoneNumber).Warn("Shared phone has fewer than 10 digits")
			return gateway.Reply(ctx, c, msgPhoneTooShort, sharePhoneKeyboard())
		}

		err := contacts.SaveContact(ctx, &hearing.Contact{
			ChatID:         c.Chat().ID,
			Phone:          shared.PhoneNumber,
			CanonicalPhone: canonical,
		})
		if err != nil {
			logCtx.WithError(err).Error("Failed to save contact")
			return gateway.Reply(ctx, c, msgTryLater)
		}

		logCtx.WithField("canonical_phone", canonical).Info("Phone linked to chat")
		return gateway.Reply(ctx, c, msgPhoneLinked, &telebot.ReplyMarkup{RemoveKeyboard: true})
	})

	b.Handle(telebot.OnText, func(c telebot.Context) error {
		chatID := c.Chat().ID
		logCtx := baseLogger.WithFields(logrus.Fields{"handler": "text", "chat_id": chatID})

		sender := ""
		contact, err := contacts.GetContactByChatID(ctx, chatID)
		switch {
		case err == nil:
			sender = contact.Phone
		case errors.Is(err, idb.ErrContactNotFound):
			// Unlinked chats fall through as unregistered.
		default:
			logCtx.WithError(err).Error("Failed to look up contact")
			return gateway.Reply(ctx, c, msgTryLater)
		}

		reply, err := inbound.HandleMessage(ctx, app.InboundMessage{
			ID:     fmt.Sprintf("%d:%d", chatID, c.Message().ID),
			Sender: sender,
			Text:   c.Text(),
		})
		if err != nil {
			logCtx.WithError(err).Error("Failed to answer message")
			return gateway.Reply(ctx, c, msgTryLater)
		}
		if reply.Duplicate {
			return nil
		}

		if err := gateway.Reply(ctx, c, reply.Text); err != nil {
			return fmt.Errorf("send reply to chat %d: %w", chatID, err)
		}
		if len(reply.Audio) > 0 {
			if err := gateway.Reply(ctx, c, audioAttachment(reply.Audio)); err != nil {
				logCtx.WithError(err).Warn("Audio reply not delivered")
			}
		}
		return nil
	})
}

func sharePhoneKeyboard() *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	menu.Reply(menu.Row(menu.Contact("Share phone number")))
	return menu
}
