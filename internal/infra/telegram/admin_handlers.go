package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hearing_reminder_bot/internal/app"
	"hearing_reminder_bot/internal/domain/hearing"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const msgUnauthorized = "Error: you are not allowed to run this command."

// RegisterAdminHandlers registers handlers for admin commands.
// Replies go through gateway so they queue behind reminder sends.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, gateway *Gateway, adminService *app.AdminService, adminTelegramID int64, now app.Clock, baseLogger *logrus.Entry) {
	b.Handle("/audio", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/audio",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return gateway.Reply(ctx, c, msgUnauthorized)
		}

		args := c.Args()
		mode := "status"
		if len(args) > 0 {
			mode = strings.ToLower(args[0])
		}

		switch mode {
		case "on", "off":
			if err := adminService.SetAudioEnabled(ctx, c.Sender().ID, mode == "on"); err != nil {
				handlerLogger.WithError(err).Error("Failed to update audio setting")
				return gateway.Reply(ctx, c, fmt.Sprintf("Could not update the audio setting: %s", err.Error()))
			}
			handlerLogger.WithField("audio", mode).Info("Audio setting updated")
			return gateway.Reply(ctx, c, "Audio replies are now "+mode+".")
		case "status":
			enabled, err := adminService.AudioEnabled(ctx, c.Sender().ID)
			if err != nil {
				return gateway.Reply(ctx, c, msgUnauthorized)
			}
			if enabled {
				return gateway.Reply(ctx, c, "Audio replies are on.")
			}
			return gateway.Reply(ctx, c, "Audio replies are off.")
		default:
			return gateway.Reply(ctx, c, "Usage: /audio on|off|status")
		}
	})

	b.Handle("/add_hearing", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/add_hearing",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return gateway.Reply(ctx, c, msgUnauthorized)
		}

		// Expected format: /add_hearing <phone> | <case id> | <date> | <time> | <client name>
		parts := strings.Split(c.Message().Payload, "|")
		if len(parts) != 5 {
			handlerLogger.WithField("parts", len(parts)).Warn("Invalid command format")
			return gateway.Reply(ctx, c, "Invalid format. Use: /add_hearing <phone> | <case id> | <YYYY-MM-DD> | <time> | <client name>")
		}

		rec, err := adminService.AddHearing(ctx, c.Sender().ID, app.NewHearing{
			Phone:       parts[0],
			CaseID:      parts[1],
			HearingDate: parts[2],
			HearingTime: parts[3],
			ClientName:  parts[4],
		})
		if err != nil {
			logWithError := handlerLogger.WithError(err)
			switch {
			case errors.Is(err, app.ErrAdminNotAuthorized):
				logWithError.Warn("Admin not authorized (service level)")
				return gateway.Reply(ctx, c, msgUnauthorized)
			case errors.Is(err, app.ErrInvalidHearing):
				logWithError.Warn("Invalid hearing")
				return gateway.Reply(ctx, c, fmt.Sprintf("Error: %s", err.Error()))
			default:
				logWithError.Error("Failed to add hearing")
				return gateway.Reply(ctx, c, fmt.Sprintf("An error occurred while adding the hearing: %s", err.Error()))
			}
		}

		handlerLogger.WithFields(logrus.Fields{"record_id": rec.ID, "case_id": rec.CaseID}).Info("Hearing added successfully")
		return gateway.Reply(ctx, c, fmt.Sprintf("Hearing added: Case %s for %s on %s at %s.", rec.CaseID, rec.ClientName, rec.HearingDate, rec.HearingTime))
	})

	b.Handle("/hearings", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/hearings",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return gateway.Reply(ctx, c, msgUnauthorized)
		}

		date := hearing.Today(now())
		if args := c.Args(); len(args) > 0 {
			parsed, err := time.ParseInLocation(hearing.DateLayout, args[0], date.Location())
			if err != nil {
				return gateway.Reply(ctx, c, "Invalid date. Use: /hearings [YYYY-MM-DD]")
			}
			date = parsed
		}
		handlerLogger = handlerLogger.WithField("date", hearing.FormatDate(date))

		records, err := adminService.ListHearingsOn(ctx, c.Sender().ID, date)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to list hearings")
			return gateway.Reply(ctx, c, fmt.Sprintf("An error occurred while listing hearings: %s", err.Error()))
		}
		if len(records) == 0 {
			return gateway.Reply(ctx, c, fmt.Sprintf("No hearings on %s.", hearing.FormatDate(date)))
		}

		var response strings.Builder
		response.WriteString(fmt.Sprintf("Hearings on %s:\n", hearing.FormatDate(date)))
		for _, r := range records {
			response.WriteString(fmt.Sprintf("Case %s, %s, %s, at %s\n", r.CaseID, r.ClientName, r.Phone, r.HearingTime))
		}
		handlerLogger.WithField("count", len(records)).Info("Listed hearings")
		return gateway.Reply(ctx, c, response.String())
	})

	b.Handle("/remind_now", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/remind_now",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return gateway.Reply(ctx, c, msgUnauthorized)
		}

		report, err := adminService.RunRemindersNow(ctx, c.Sender().ID)
		if err != nil {
			handlerLogger.WithError(err).Error("Manual reminder tick failed")
			return gateway.Reply(ctx, c, fmt.Sprintf("Reminder run failed: %s", err.Error()))
		}
		return gateway.Reply(ctx, c, fmt.Sprintf("Reminders: %d sent, %d already sent, %d failed, %d audio failed.",
			report.Sent, report.Skipped, report.Failed, report.AudioFailed))
	})
}
