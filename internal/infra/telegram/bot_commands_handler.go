// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"errors"
	"strings"

	"hearing_reminder_bot/internal/domain/hearing"
	idb "hearing_reminder_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	gateway *Gateway,
	adminTelegramID int64,
	contacts hearing.ContactRepository,
	baseLogger *logrus.Entry,
) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", senderID)
		logCtx.Info("Processing /start command")

		if senderID == adminTelegramID {
			logCtx.Info("User identified as Admin")
			return gateway.Reply(ctx, c, "Hello, "+c.Sender().FirstName+"! The hearing bot is running. Use /help for the admin commands.")
		}

		_, err := contacts.GetContactByChatID(ctx, c.Chat().ID)
		if err == nil {
			logCtx.Info("Chat already linked to a phone")
			return gateway.Reply(ctx, c, "Welcome back! Ask me 'next hearing', 'case history', or 'case 12345'.")
		}
		if !errors.Is(err, idb.ErrContactNotFound) {
			logCtx.WithError(err).Error("Error checking contact for /start command")
			return gateway.Reply(ctx, c, msgTryLater)
		}

		logCtx.Info("Chat is not linked yet")
		return gateway.Reply(ctx, c, "Hello! I answer questions about your court hearings and remind you before each one. "+
			"Please share the phone number registered with the advocate office to begin.", sharePhoneKeyboard())
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")

		if senderID == adminTelegramID {
			var helpText strings.Builder
			helpText.WriteString("Admin commands:\n\n")
			helpText.WriteString("/audio on|off|status\n - Turn spoken replies on or off.\n\n")
			helpText.WriteString("/add_hearing <phone> | <case id> | <YYYY-MM-DD> | <time> | <client name>\n - Add a hearing.\n\n")
			helpText.WriteString("/hearings [YYYY-MM-DD]\n - List hearings for a date (default today).\n\n")
			helpText.WriteString("/remind_now\n - Send due reminders now.\n\n")
			helpText.WriteString("/help\n - Show this message.")
			return gateway.Reply(ctx, c, helpText.String())
		}

		return gateway.Reply(ctx, c, "Send me one of:\n"+
			"- next hearing\n"+
			"- case history\n"+
			"- case 12345\n\n"+
			"I also remind you 2 days before, the day before and on the day of each hearing.")
	})
}
