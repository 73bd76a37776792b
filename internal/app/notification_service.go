// internal/app/notification_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"septic_reminder_service/internal/domain/customer"
	"septic_reminder_service/internal/domain/notification"
	"septic_reminder_service/internal/domain/schedule"

	"github.com/sirupsen/logrus"
)

var ErrNoEmail = errors.New("customer has no email address")

// NotificationService runs reminder passes and exposes their building blocks.
type NotificationService interface {
	// RunPass evaluates all customers against the current settings and history,
	// delivers what is due and appends the delivered events to the history.
	RunPass(ctx context.Context, now time.Time) (*PassResult, error)
	SendManualReminder(ctx context.Context, customerID int64, now time.Time) error
	Digest(ctx context.Context, now time.Time) (*Digest, error)
	History(ctx context.Context) ([]notification.Event, error)
}

// PassResult summarises one reminder pass.
type PassResult struct {
	Date    string               `json:"date"`
	Sent    []notification.Event `json:"sent"`
	Failed  []notification.Event `json:"failed"`
	Skipped []SkippedCustomer    `json:"skipped"`
}

// NotificationServiceImpl implements the NotificationService interface.
type NotificationServiceImpl struct {
	customerRepo customer.Repository
	historyRepo  notification.HistoryRepository
	settingsRepo notification.SettingsRepository
	sink         notification.Sink
	engine       *PolicyEngine
	logger       *logrus.Entry

	passMu sync.Mutex // one pass at a time
}

func NewNotificationServiceImpl(
	cr customer.Repository,
	hr notification.HistoryRepository,
	sr notification.SettingsRepository,
	sink notification.Sink,
	logger *logrus.Entry,
) *NotificationServiceImpl {
	return &NotificationServiceImpl{
		customerRepo: cr,
		historyRepo:  hr,
		settingsRepo: sr,
		sink:         sink,
		engine:       NewPolicyEngine(logger.WithField("component", "policy")),
		logger:       logger,
	}
}

// RunPass executes one evaluation pass. Passes are serialised; each one works on
// a snapshot of settings, customers and history taken at its start. A failed
// delivery is logged and left out of the history so a later pass can retry it.
func (s *NotificationServiceImpl) RunPass(ctx context.Context, now time.Time) (*PassResult, error) {
	s.passMu.Lock()
	defer s.passMu.Unlock()

	settings, customers, history, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	result := &PassResult{
		Date:   schedule.FormatDate(now),
		Sent:   []notification.Event{},
		Failed: []notification.Event{},
	}

	eval := s.engine.Evaluate(customers, *settings, history, now)
	result.Skipped = eval.Skipped

	for _, d := range eval.Dispatches {
		entry := s.logger.WithFields(logrus.Fields{
			"kind":          d.Event.Kind,
			"customer_id":   d.Event.CustomerID,
			"threshold_day": d.Event.ThresholdDay,
			"recipient":     d.Event.Recipient,
		})
		if err := s.sink.Deliver(ctx, d.Message); err != nil {
			entry.WithError(err).Error("Failed to deliver notification")
			result.Failed = append(result.Failed, d.Event)
			continue
		}
		entry.Info("Notification delivered")
		result.Sent = append(result.Sent, d.Event)
	}

	if len(result.Sent) > 0 {
		if err := s.historyRepo.AppendEvents(ctx, result.Sent); err != nil {
			s.logger.WithError(err).Error("Failed to append delivered notifications to history")
			return result, fmt.Errorf("failed to append %d events to history: %w", len(result.Sent), err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"date":    result.Date,
		"sent":    len(result.Sent),
		"failed":  len(result.Failed),
		"skipped": len(result.Skipped),
	}).Info("Reminder pass complete")
	return result, nil
}

// SendManualReminder delivers a customer reminder right away. Manual sends are
// not recorded and do not suppress scheduled reminders.
func (s *NotificationServiceImpl) SendManualReminder(ctx context.Context, customerID int64, now time.Time) error {
	c, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return err
	}
	if c.Email == "" {
		return fmt.Errorf("%w: customer %d", ErrNoEmail, customerID)
	}
	info, err := c.Schedule(now)
	if err != nil {
		return fmt.Errorf("failed to compute schedule for customer %d: %w", customerID, err)
	}
	settings, err := s.settingsRepo.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	msg := customerReminderMessage(customerSchedule{customer: c, info: info}, settings)
	if err := s.sink.Deliver(ctx, msg); err != nil {
		return fmt.Errorf("failed to deliver reminder to customer %d: %w", customerID, err)
	}
	s.logger.WithFields(logrus.Fields{
		"customer_id": customerID,
		"recipient":   c.Email,
	}).Info("Manual reminder delivered")
	return nil
}

// Digest builds the digest snapshot for now without sending it.
func (s *NotificationServiceImpl) Digest(ctx context.Context, now time.Time) (*Digest, error) {
	customers, err := s.customerRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	d := buildDigest(s.engine.computeSchedules(customers, now, nil), now)
	return &d, nil
}

func (s *NotificationServiceImpl) History(ctx context.Context) ([]notification.Event, error) {
	events, err := s.historyRepo.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notification history: %w", err)
	}
	return events, nil
}

func (s *NotificationServiceImpl) snapshot(ctx context.Context) (*notification.Settings, []*customer.Customer, []notification.Event, error) {
	settings, err := s.settingsRepo.GetSettings(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load settings: %w", err)
	}
	customers, err := s.customerRepo.ListAll(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list customers: %w", err)
	}
	history, err := s.historyRepo.ListEvents(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list notification history: %w", err)
	}
	return settings, customers, history, nil
}
