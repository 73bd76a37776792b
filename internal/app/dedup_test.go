package app

import (
	"testing"

	"septic_reminder_service/internal/domain/notification"

	"github.com/stretchr/testify/assert"
)

func TestHasFired(t *testing.T) {
	history := []notification.Event{
		{CustomerID: 1, ThresholdDay: 30, DateSent: "2026-03-02", Kind: notification.KindCustomerReminder},
		{CustomerID: 1, ThresholdDay: 7, DateSent: "2026-03-02", Kind: notification.KindBusinessAlert},
		{CustomerID: notification.DigestCustomerID, DateSent: "2026-03-02", Kind: notification.KindWeeklyDigest, WeekKey: "2026-W10"},
	}

	tests := []struct {
		name       string
		customerID int64
		threshold  int
		kind       notification.Kind
		key        string
		want       bool
	}{
		{"exact reminder match", 1, 30, notification.KindCustomerReminder, "2026-03-02", true},
		{"other date", 1, 30, notification.KindCustomerReminder, "2026-03-03", false},
		{"other threshold", 1, 90, notification.KindCustomerReminder, "2026-03-02", false},
		{"other customer", 2, 30, notification.KindCustomerReminder, "2026-03-02", false},
		{"kinds are independent", 1, 30, notification.KindBusinessAlert, "2026-03-02", false},
		{"business alert match", 1, 7, notification.KindBusinessAlert, "2026-03-02", true},
		{"digest same week", notification.DigestCustomerID, 0, notification.KindWeeklyDigest, "2026-W10", true},
		{"digest next week", notification.DigestCustomerID, 0, notification.KindWeeklyDigest, "2026-W11", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasFired(history, tt.customerID, tt.threshold, tt.kind, tt.key))
		})
	}
}

func TestHasFired_EmptyHistory(t *testing.T) {
	assert.False(t, HasFired(nil, 1, 30, notification.KindCustomerReminder, "2026-03-02"))
}
