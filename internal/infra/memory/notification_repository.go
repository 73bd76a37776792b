package memory

import (
	"context"
	"sync"

	"septic_reminder_service/internal/domain/notification"
)

type HistoryRepository struct {
	mu     sync.RWMutex
	events []notification.Event
}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{}
}

func (r *HistoryRepository) ListEvents(_ context.Context) ([]notification.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]notification.Event(nil), r.events...), nil
}

func (r *HistoryRepository) AppendEvents(_ context.Context, events []notification.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

type SettingsRepository struct {
	mu       sync.RWMutex
	settings *notification.Settings
}

// NewSettingsRepository starts from initial, or from the default settings when nil.
func NewSettingsRepository(initial *notification.Settings) *SettingsRepository {
	if initial == nil {
		initial = notification.DefaultSettings()
	}
	return &SettingsRepository{settings: initial.Clone()}
}

func (r *SettingsRepository) GetSettings(_ context.Context) (*notification.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings.Clone(), nil
}

func (r *SettingsRepository) SaveSettings(_ context.Context, s *notification.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = s.Clone()
	return nil
}
