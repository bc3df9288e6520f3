package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hearing_reminder_bot/internal/app"
	"hearing_reminder_bot/internal/domain/reminder"
	"hearing_reminder_bot/internal/infra/cache"
	"hearing_reminder_bot/internal/infra/config"
	idb "hearing_reminder_bot/internal/infra/database"
	"hearing_reminder_bot/internal/infra/logger"
	"hearing_reminder_bot/internal/infra/scheduler"
	"hearing_reminder_bot/internal/infra/speech"
	"hearing_reminder_bot/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"gopkg.in/telebot.v3"
)

func main() {
	envFile := pflag.String("env-file", "", "load environment from this file instead of ./.env")
	once := pflag.Bool("once", false, "run a single reminder tick and exit")
	pflag.Parse()

	fmt.Println("Hearing Reminder Bot starting...")

	var envFiles []string
	if *envFile != "" {
		envFiles = append(envFiles, *envFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment":   cfg.Environment,
		"driver":        cfg.DatabaseDriver,
		"reminder_days": cfg.ReminderDays,
		"timezone":      cfg.Location.String(),
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	now := func() time.Time { return time.Now().In(cfg.Location) }

	// Initialize Database Connection
	dialect := idb.Dialect(cfg.DatabaseDriver)
	db, err := idb.Open(dialect, cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	if err := idb.EnsureSchema(ctx, db, dialect); err != nil {
		mainLogger.WithError(err).Fatal("Could not prepare database schema")
	}
	mainLogger.Info("Database connection established successfully.")

	// Initialize Repositories
	hearingRepo := idb.NewHearingRepository(db, dialect)
	contactRepo := idb.NewContactRepository(db, dialect)

	keywords, err := config.LoadKeywords(cfg.KeywordsFile)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not load keywords")
	}

	sentCache, pruner, err := openSentCache(cfg, now())
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not open sent reminder cache")
	}

	// Initialize Telegram Bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := logger.Component("telebot").WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
			}
			entry.Error("Telegram handler error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create Telegram bot")
	}

	// Initialize services
	baseLogger := logger.Component("app")
	// One gateway carries every outgoing message, reminders and replies.
	gateway := telegram.NewGateway(bot, contactRepo)
	speaker := speech.NewSynthesizer(speech.NewTTSClient(cfg.TTSURL, cfg.TTSLang, cfg.DispatchTimeout))
	settings := app.NewSettingsService(hearingRepo, baseLogger)
	reminders := app.NewReminderService(
		hearingRepo,
		gateway,
		speaker,
		settings,
		sentCache,
		app.ReminderServiceConfig{Offsets: cfg.ReminderDays, DispatchTimeout: cfg.DispatchTimeout},
		now,
		baseLogger,
	)

	if *once {
		report, err := reminders.RunTick(ctx)
		if err != nil {
			mainLogger.WithError(err).Fatal("Reminder tick failed")
		}
		mainLogger.WithFields(logrus.Fields{"sent": report.Sent, "failed": report.Failed}).Info("Single reminder tick done")
		return
	}

	inbound := app.NewInboundService(
		app.NewPhoneReconciler(hearingRepo, baseLogger),
		app.NewIntentResolver(keywords),
		app.NewQueryService(hearingRepo, now, baseLogger),
		settings,
		speaker,
		cache.NewMemoryCache(),
		cfg.AudioOnlyForKeywords,
		baseLogger,
	)
	adminService := app.NewAdminService(hearingRepo, settings, reminders, cfg.AdminTelegramID)

	// Register Handlers
	telegramLogger := logger.Component("telegram")
	telegram.RegisterBotCommands(ctx, bot, gateway, cfg.AdminTelegramID, contactRepo, telegramLogger)
	telegram.RegisterAdminHandlers(ctx, bot, gateway, adminService, cfg.AdminTelegramID, now, telegramLogger)
	telegram.RegisterClientHandlers(ctx, bot, gateway, inbound, contactRepo, telegramLogger)
	mainLogger.Info("Telegram handlers registered.")

	reminderScheduler := scheduler.NewReminderScheduler(
		reminders,
		pruner,
		now,
		cfg.Location,
		logger.Component("scheduler"),
		cfg.CronSpecReminderCheck,
		cfg.CronSpecSentCachePrune,
		5*time.Minute,
	)
	if err := reminderScheduler.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start reminder scheduler")
	}

	mainLogger.Info("Application setup complete. Bot and Scheduler are starting...")

	go bot.Start()

	<-ctx.Done()

	mainLogger.Info("Shutting down application...")
	bot.Stop()
	reminderScheduler.Stop()
	mainLogger.Info("Application shut down gracefully.")
}

func openSentCache(cfg *config.AppConfig, today time.Time) (reminder.SentCache, reminder.Pruner, error) {
	if cfg.SentCachePath == "" {
		c := cache.NewMemoryCache()
		return c, c, nil
	}
	c, err := cache.OpenFileCache(cfg.SentCachePath, today)
	if err != nil {
		return nil, nil, err
	}
	return c, c, nil
}
