// internal/infra/database/postgres_notification_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"septic_reminder_service/internal/domain/notification"
	"septic_reminder_service/internal/domain/schedule"

	"github.com/lib/pq" // For pq.Array and driver registration
)

const (
	listEventsQuery = `SELECT id, customer_id, customer_name, recipient, threshold_day, date_sent, kind, week_key
               FROM notification_events ORDER BY seq ASC`
	insertEventQuery = `INSERT INTO notification_events (id, customer_id, customer_name, recipient, threshold_day, date_sent, kind, week_key)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	getSettingsQuery = `SELECT enabled, reminder_days, from_email, company_name, business_enabled, business_email,
                      notify_days, include_overdue, overdue_mode, weekly_digest, digest_day, digest_time
               FROM notification_settings WHERE id = 1`
	saveSettingsQuery = `INSERT INTO notification_settings (id, enabled, reminder_days, from_email, company_name, business_enabled,
                      business_email, notify_days, include_overdue, overdue_mode, weekly_digest, digest_day, digest_time)
               VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
               ON CONFLICT (id) DO UPDATE SET
                      enabled = EXCLUDED.enabled, reminder_days = EXCLUDED.reminder_days,
                      from_email = EXCLUDED.from_email, company_name = EXCLUDED.company_name,
                      business_enabled = EXCLUDED.business_enabled, business_email = EXCLUDED.business_email,
                      notify_days = EXCLUDED.notify_days, include_overdue = EXCLUDED.include_overdue,
                      overdue_mode = EXCLUDED.overdue_mode, weekly_digest = EXCLUDED.weekly_digest,
                      digest_day = EXCLUDED.digest_day, digest_time = EXCLUDED.digest_time, updated_at = NOW()`
)

// PostgresNotificationRepository stores the notification history and the
// single settings row.
type PostgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

// --- History Methods ---

func (r *PostgresNotificationRepository) ListEvents(ctx context.Context) ([]notification.Event, error) {
	rows, err := r.db.QueryContext(ctx, listEventsQuery)
	if err != nil {
		return nil, fmt.Errorf("error querying notification events: %w", err)
	}
	defer rows.Close()

	events := make([]notification.Event, 0)
	for rows.Next() {
		var (
			ev       notification.Event
			dateSent time.Time
		)
		if err := rows.Scan(&ev.ID, &ev.CustomerID, &ev.CustomerName, &ev.Recipient, &ev.ThresholdDay, &dateSent, &ev.Kind, &ev.WeekKey); err != nil {
			return nil, fmt.Errorf("error scanning notification event row: %w", err)
		}
		if !ev.Kind.Valid() {
			return nil, fmt.Errorf("notification event %s has unknown kind %q", ev.ID, ev.Kind)
		}
		ev.DateSent = schedule.FormatDate(dateSent)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification event rows: %w", err)
	}
	return events, nil
}

// AppendEvents writes all events in one transaction.
func (r *PostgresNotificationRepository) AppendEvents(ctx context.Context, events []notification.Event) error {
	if len(events) == 0 {
		return nil
	}

	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for append: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	stmt, err := txn.PrepareContext(ctx, insertEventQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for append: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		_, err := stmt.ExecContext(ctx, ev.ID, ev.CustomerID, ev.CustomerName, ev.Recipient, ev.ThresholdDay, ev.DateSent, string(ev.Kind), ev.WeekKey)
		if err != nil {
			return fmt.Errorf("error appending notification event (customer %d, kind %s): %w", ev.CustomerID, ev.Kind, err)
		}
	}

	return txn.Commit()
}

// --- Settings Methods ---

func (r *PostgresNotificationRepository) GetSettings(ctx context.Context) (*notification.Settings, error) {
	var (
		s                       notification.Settings
		reminderDays, notifyDay pq.Int64Array
	)
	err := r.db.QueryRowContext(ctx, getSettingsQuery).Scan(
		&s.Enabled, &reminderDays, &s.FromEmail, &s.CompanyName,
		&s.Business.Enabled, &s.Business.Email, &notifyDay, &s.Business.IncludeOverdue,
		&s.Business.OverdueMode, &s.Business.WeeklyDigest, &s.Business.DigestDay, &s.Business.DigestTime,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notification.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("error getting notification settings: %w", err)
	}
	s.ReminderDays = toInts(reminderDays)
	s.Business.NotifyDays = toInts(notifyDay)
	return &s, nil
}

func (r *PostgresNotificationRepository) SaveSettings(ctx context.Context, s *notification.Settings) error {
	_, err := r.db.ExecContext(ctx, saveSettingsQuery,
		s.Enabled, pq.Array(toInt64s(s.ReminderDays)), s.FromEmail, s.CompanyName,
		s.Business.Enabled, s.Business.Email, pq.Array(toInt64s(s.Business.NotifyDays)), s.Business.IncludeOverdue,
		string(s.Business.OverdueMode), s.Business.WeeklyDigest, s.Business.DigestDay, s.Business.DigestTime,
	)
	if err != nil {
		return fmt.Errorf("error saving notification settings: %w", err)
	}
	return nil
}

// EnsureSettings stores the default settings when the table is still empty.
func (r *PostgresNotificationRepository) EnsureSettings(ctx context.Context) error {
	_, err := r.GetSettings(ctx)
	if errors.Is(err, notification.ErrSettingsNotFound) {
		return r.SaveSettings(ctx, notification.DefaultSettings())
	}
	return err
}

func toInts(values pq.Int64Array) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = int(v)
	}
	return out
}

func toInt64s(values []int) []int64 {
	out := make([]int64, len(values))
	for i, v := range values {
		out[i] = int64(v)
	}
	return out
}
