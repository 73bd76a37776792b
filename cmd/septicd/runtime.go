package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"septic_reminder_service/internal/app"
	"septic_reminder_service/internal/domain/customer"
	"septic_reminder_service/internal/domain/notification"
	"septic_reminder_service/internal/infra/config"
	idb "septic_reminder_service/internal/infra/database"
	"septic_reminder_service/internal/infra/email"
	"septic_reminder_service/internal/infra/geocode"
	"septic_reminder_service/internal/infra/logger"
	"septic_reminder_service/internal/infra/memory"
	"septic_reminder_service/internal/infra/sink"
	"septic_reminder_service/internal/infra/telegram"

	"gopkg.in/telebot.v3"
)

// runtime holds the wired services shared by the commands.
type runtime struct {
	customerRepo customer.Repository
	historyRepo  notification.HistoryRepository
	settingsRepo notification.SettingsRepository

	customers     *app.CustomerService
	settings      *app.SettingsService
	notifications *app.NotificationServiceImpl

	bot *telebot.Bot // nil unless Telegram is configured
	db  *sql.DB
}

func newRuntime(ctx context.Context, cfg *config.AppConfig) (*runtime, error) {
	rt := &runtime{}
	log := logger.Component("main")

	if cfg.DatabaseURL != "" {
		db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("could not connect to database: %w", err)
		}
		rt.db = db
		if err := idb.Migrate(ctx, db); err != nil {
			rt.Close()
			return nil, err
		}
		notificationRepo := idb.NewPostgresNotificationRepository(db)
		if err := notificationRepo.EnsureSettings(ctx); err != nil {
			rt.Close()
			return nil, fmt.Errorf("could not seed notification settings: %w", err)
		}
		rt.customerRepo = idb.NewPostgresCustomerRepository(db)
		rt.historyRepo = notificationRepo
		rt.settingsRepo = notificationRepo
		log.Info("Using PostgreSQL repositories.")
	} else {
		rt.customerRepo = memory.NewCustomerRepository()
		rt.historyRepo = memory.NewHistoryRepository()
		rt.settingsRepo = memory.NewSettingsRepository(nil)
		log.Warn("DATABASE_URL is not set, using in-memory repositories. Data is lost on exit.")
	}

	router := sink.NewRouter(logger.Component("sink"), sink.NewLogSink(logger.Component("log_sink")))
	allKinds := []notification.Kind{notification.KindCustomerReminder, notification.KindBusinessAlert, notification.KindWeeklyDigest}
	if cfg.SMTP.Enabled() {
		router.Route(email.NewClient(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From), allKinds...)
		log.WithField("smtp_host", cfg.SMTP.Host).Info("Email delivery enabled.")
	}
	if cfg.Telegram.Enabled() {
		bot, err := telebot.NewBot(telebot.Settings{
			Token:  cfg.Telegram.Token,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) { // Global error handler
				entry := logger.Component("telegram").WithError(err)
				if c != nil && c.Chat() != nil {
					entry = entry.WithField("chat_id", c.Chat().ID)
				}
				entry.Error("Telegram handler error")
			},
		})
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("could not create Telegram bot: %w", err)
		}
		rt.bot = bot
		router.Route(telegram.NewSink(telegram.NewTelebotAdapter(bot), cfg.Telegram.ChatID), notification.KindBusinessAlert, notification.KindWeeklyDigest)
		log.WithField("chat_id", cfg.Telegram.ChatID).Info("Telegram delivery enabled.")
	}

	var geocoder customer.Geocoder
	if cfg.Geocoder.URL != "" {
		geocoder = geocode.NewClient(cfg.Geocoder.URL, cfg.Geocoder.UserAgent)
	}

	rt.customers = app.NewCustomerService(rt.customerRepo, geocoder, logger.Component("customers"))
	rt.settings = app.NewSettingsService(rt.settingsRepo, logger.Component("settings"))
	rt.notifications = app.NewNotificationServiceImpl(rt.customerRepo, rt.historyRepo, rt.settingsRepo, router, logger.Component("notifications"))
	return rt, nil
}

func (rt *runtime) Close() {
	if rt.db != nil {
		rt.db.Close()
	}
}
