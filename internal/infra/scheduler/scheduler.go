package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"septic_reminder_service/internal/app" // For NotificationService interface
	"septic_reminder_service/internal/domain/notification"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const passTimeout = 5 * time.Minute

// NotificationScheduler runs the reminder pass on a fixed cron spec and once
// more at the configured weekly digest time.
type NotificationScheduler struct {
	cronEngine   *cron.Cron
	notifService app.NotificationService
	logger       *logrus.Entry
	location     *time.Location
	cronSpecPass string

	mu          sync.Mutex
	digestEntry cron.EntryID // zero when no digest job is scheduled
	wg          sync.WaitGroup
}

func NewNotificationScheduler(
	notifService app.NotificationService,
	logger *logrus.Entry,
	location *time.Location, // zone the calendar day is taken in
	cronSpecPass string, // e.g., "*/15 * * * *" (every 15 minutes)
) *NotificationScheduler {
	if location == nil {
		location = time.Local
	}
	return &NotificationScheduler{
		cronEngine:   cron.New(cron.WithLocation(location)),
		notifService: notifService,
		logger:       logger,
		location:     location,
		cronSpecPass: cronSpecPass,
	}
}

// Start registers the jobs and starts the cron engine.
func (s *NotificationScheduler) Start(settings *notification.Settings) error {
	s.logger.Info("Starting notification scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpecPass, func() {
		s.logger.Debug("Cron job triggered for reminder pass.")
		s.runPass("cron")
	}); err != nil {
		return fmt.Errorf("could not add reminder pass cron job %q: %w", s.cronSpecPass, err)
	}

	if err := s.Reschedule(settings); err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpecPass).Info("Notification scheduler started with jobs.")
	return nil
}

// Reschedule replaces the digest-time job after a settings change.
func (s *NotificationScheduler) Reschedule(settings *notification.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.digestEntry != 0 {
		s.cronEngine.Remove(s.digestEntry)
		s.digestEntry = 0
	}

	spec, ok, err := DigestSpec(settings)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Info("Weekly digest job disabled")
		return nil
	}

	id, err := s.cronEngine.AddFunc(spec, func() {
		s.logger.Info("Cron job triggered for weekly digest time.")
		s.runPass("digest_time")
	})
	if err != nil {
		return fmt.Errorf("could not add weekly digest cron job %q: %w", spec, err)
	}
	s.digestEntry = id
	s.logger.WithField("cron_spec", spec).Info("Weekly digest job scheduled")
	return nil
}

// Trigger runs a pass in the background, e.g. after customers or settings changed.
func (s *NotificationScheduler) Trigger(reason string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runPass(reason)
	}()
}

func (s *NotificationScheduler) runPass(reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), passTimeout)
	defer cancel()

	logCtx := s.logger.WithField("reason", reason)
	result, err := s.notifService.RunPass(ctx, time.Now().In(s.location))
	if err != nil {
		logCtx.WithError(err).Error("Error during reminder pass")
		return
	}
	logCtx.WithFields(logrus.Fields{
		"sent":    len(result.Sent),
		"failed":  len(result.Failed),
		"skipped": len(result.Skipped),
	}).Debug("Reminder pass finished")
}

// DigestSpec returns the cron spec for the weekly digest time, or false when
// the digest is switched off.
func DigestSpec(settings *notification.Settings) (string, bool, error) {
	b := settings.Business
	if !b.Enabled || !b.WeeklyDigest || b.DigestDay == "" || b.DigestTime == "" {
		return "", false, nil
	}
	day, ok := notification.ParseWeekday(b.DigestDay)
	if !ok {
		return "", false, fmt.Errorf("unknown digest_day %q", b.DigestDay)
	}
	hour, minute, err := notification.ParseDigestTime(b.DigestTime)
	if err != nil {
		return "", false, err
	}
	return fmt.Sprintf("%d %d * * %d", minute, hour, int(day)), true, nil
}

func (s *NotificationScheduler) Stop() {
	s.logger.Info("Stopping notification scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.wg.Wait()
	s.logger.Info("Notification scheduler gracefully stopped.")
}
