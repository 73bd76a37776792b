// internal/domain/notification/settings.go
package notification

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Settings configures customer reminders, business alerts and the weekly digest.
type Settings struct {
	Enabled      bool             `json:"enabled"`
	ReminderDays []int            `json:"reminder_days"` // days before due
	FromEmail    string           `json:"from_email"`    // email sender; empty falls back to SMTP_FROM
	CompanyName  string           `json:"company_name"`
	Business     BusinessSettings `json:"business_notifications"`
}

// BusinessSettings configures notifications sent to the business itself.
type BusinessSettings struct {
	Enabled        bool        `json:"enabled"`
	Email          string      `json:"business_email"`
	NotifyDays     []int       `json:"notify_days"`
	IncludeOverdue bool        `json:"include_overdue"`
	OverdueMode    OverdueMode `json:"overdue_mode"`
	WeeklyDigest   bool        `json:"weekly_digest"`
	DigestDay      string      `json:"digest_day"`  // "monday"
	DigestTime     string      `json:"digest_time"` // "08:00"
}

// DefaultSettings mirrors the settings the dashboard shipped with.
func DefaultSettings() *Settings {
	return &Settings{
		Enabled:      true,
		ReminderDays: []int{90, 30, 7},
		CompanyName:  "ABC Septic Services",
		Business: BusinessSettings{
			Enabled:        true,
			Email:          "notifications@septicservice.com",
			NotifyDays:     []int{14, 7, 1},
			IncludeOverdue: true,
			OverdueMode:    OverdueAsWritten,
			WeeklyDigest:   true,
			DigestDay:      "monday",
			DigestTime:     "08:00",
		},
	}
}

// Normalize removes duplicate thresholds, orders them from the furthest out
// and fills empty enum-like fields.
func (s *Settings) Normalize() {
	s.ReminderDays = normalizeThresholds(s.ReminderDays)
	s.Business.NotifyDays = normalizeThresholds(s.Business.NotifyDays)
	s.Business.DigestDay = strings.ToLower(strings.TrimSpace(s.Business.DigestDay))
	if s.Business.OverdueMode == "" {
		s.Business.OverdueMode = OverdueAsWritten
	}
}

// Validate checks the settings invariants. Call Normalize first.
func (s *Settings) Validate() error {
	if err := validateThresholds("reminder_days", s.ReminderDays); err != nil {
		return err
	}
	if err := validateThresholds("notify_days", s.Business.NotifyDays); err != nil {
		return err
	}
	if !s.Business.OverdueMode.Valid() {
		return fmt.Errorf("unknown overdue_mode %q", s.Business.OverdueMode)
	}
	if s.Business.DigestDay != "" {
		if _, ok := ParseWeekday(s.Business.DigestDay); !ok {
			return fmt.Errorf("unknown digest_day %q", s.Business.DigestDay)
		}
	}
	if s.Business.DigestTime != "" {
		if _, _, err := ParseDigestTime(s.Business.DigestTime); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy.
func (s *Settings) Clone() *Settings {
	cp := *s
	cp.ReminderDays = append([]int(nil), s.ReminderDays...)
	cp.Business.NotifyDays = append([]int(nil), s.Business.NotifyDays...)
	return &cp
}

// ParseWeekday maps a lower-case English weekday name onto time.Weekday.
func ParseWeekday(name string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return d, true
		}
	}
	return time.Sunday, false
}

// ParseDigestTime parses an HH:MM time of day.
func ParseDigestTime(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid digest_time %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

func normalizeThresholds(days []int) []int {
	seen := make(map[int]struct{}, len(days))
	out := make([]int, 0, len(days))
	for _, d := range days {
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

func validateThresholds(field string, days []int) error {
	for _, d := range days {
		if d <= 0 {
			return fmt.Errorf("%s must contain positive day counts, got %d", field, d)
		}
	}
	return nil
}
