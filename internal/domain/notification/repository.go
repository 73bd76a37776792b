// internal/domain/notification/repository.go
package notification

import (
	"context"
	"errors"
)

var ErrSettingsNotFound = errors.New("notification settings not found")

// HistoryRepository is the append-only log of delivered notifications.
type HistoryRepository interface {
	ListEvents(ctx context.Context) ([]Event, error) // oldest first
	AppendEvents(ctx context.Context, events []Event) error
}

// SettingsRepository stores the single NotificationSettings object.
type SettingsRepository interface {
	GetSettings(ctx context.Context) (*Settings, error)
	SaveSettings(ctx context.Context, s *Settings) error
}
