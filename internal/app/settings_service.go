package app

import (
	"context"
	"errors"
	"fmt"

	"septic_reminder_service/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

var ErrInvalidSettings = errors.New("invalid notification settings")

// SettingsService reads and replaces the notification settings.
type SettingsService struct {
	settingsRepo notification.SettingsRepository
	logger       *logrus.Entry
	onChange     []func(ctx context.Context, s *notification.Settings)
}

func NewSettingsService(sr notification.SettingsRepository, logger *logrus.Entry) *SettingsService {
	return &SettingsService{settingsRepo: sr, logger: logger}
}

// OnChange registers a hook that runs after settings were saved.
func (s *SettingsService) OnChange(fn func(ctx context.Context, settings *notification.Settings)) {
	s.onChange = append(s.onChange, fn)
}

func (s *SettingsService) Get(ctx context.Context) (*notification.Settings, error) {
	settings, err := s.settingsRepo.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// Update normalises, validates and stores new settings.
func (s *SettingsService) Update(ctx context.Context, settings *notification.Settings) (*notification.Settings, error) {
	settings.Normalize()
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if err := s.settingsRepo.SaveSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"enabled":          settings.Enabled,
		"reminder_days":    settings.ReminderDays,
		"business_enabled": settings.Business.Enabled,
		"notify_days":      settings.Business.NotifyDays,
		"overdue_mode":     settings.Business.OverdueMode,
	}).Info("Notification settings updated")

	for _, fn := range s.onChange {
		fn(ctx, settings)
	}
	return settings, nil
}
