package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"septic_reminder_service/internal/domain/notification"
	"septic_reminder_service/internal/infra/httpapi"
	"septic_reminder_service/internal/infra/logger"
	"septic_reminder_service/internal/infra/scheduler"
	"septic_reminder_service/internal/infra/telegram"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the reminder scheduler and the Telegram bot",
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	mainLogger := logger.Component("main")

	rt, err := newRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	settings, err := rt.settings.Get(ctx)
	if err != nil {
		return err
	}

	sched := scheduler.NewNotificationScheduler(rt.notifications, logger.Component("scheduler"), cfg.Location, cfg.CronSpecPass)
	if err := sched.Start(settings); err != nil {
		return err
	}
	defer sched.Stop()

	rt.settings.OnChange(func(_ context.Context, s *notification.Settings) {
		if err := sched.Reschedule(s); err != nil {
			mainLogger.WithError(err).Error("Failed to reschedule weekly digest job")
		}
	})
	if cfg.ReactivePasses {
		rt.customers.OnChange(func(_ context.Context, reason string) { sched.Trigger(reason) })
		rt.settings.OnChange(func(context.Context, *notification.Settings) { sched.Trigger("settings_updated") })
		// Customers loaded from storage count as a change too.
		sched.Trigger("startup")
	}

	if rt.bot != nil {
		telegram.RegisterBotCommands(ctx, rt.bot, cfg.Telegram.ChatID, rt.notifications, now, logger.Component("telegram"))
		go rt.bot.Start()
		defer rt.bot.Stop()
		mainLogger.Info("Telegram bot started.")
	}

	handler := httpapi.NewHandler(rt.customers, rt.settings, rt.notifications, validator.New(), logger.Component("http"), now)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(handler, logger.Component("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		mainLogger.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening.")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	mainLogger.Info("Shutting down application...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		mainLogger.WithError(err).Error("HTTP server shutdown failed")
	}
	mainLogger.Info("Application stopped.")
	return nil
}
