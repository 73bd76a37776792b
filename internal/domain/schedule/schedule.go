// internal/domain/schedule/schedule.go
package schedule

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used across the service (ISO-8601).
const DateLayout = "2006-01-02"

const hoursPerDay = 24

var ErrInvalidInterval = errors.New("service interval must be at least one month")
var ErrMissingServiceDate = errors.New("last service date is not set")

// Urgency buckets a customer by how soon the next service is due.
type Urgency string

const (
	UrgencyOverdue  Urgency = "overdue"
	UrgencyUrgent   Urgency = "urgent"   // 0..30 days
	UrgencyUpcoming Urgency = "upcoming" // 31..90 days
	UrgencyNormal   Urgency = "normal"
)

// Info is the computed schedule for one customer at one point in time.
type Info struct {
	NextDate         time.Time `json:"next_date"`
	DaysUntilService int       `json:"days_until_service"`
	Urgency          Urgency   `json:"urgency"`
}

// Calculate returns the next-due date, the signed day count until it and the urgency tier.
// The result depends only on its arguments; callers recompute it whenever "now" moves.
func Calculate(lastService time.Time, intervalMonths int, now time.Time) (Info, error) {
	if lastService.IsZero() {
		return Info{}, ErrMissingServiceDate
	}
	if intervalMonths < 1 {
		return Info{}, fmt.Errorf("%w: got %d", ErrInvalidInterval, intervalMonths)
	}

	next := AddMonths(Date(lastService), intervalMonths)
	days := DaysBetween(now, next)

	return Info{
		NextDate:         next,
		DaysUntilService: days,
		Urgency:          UrgencyFor(days),
	}, nil
}

// UrgencyFor maps a day count onto a tier. Boundaries are closed at 0, 30 and 90.
func UrgencyFor(daysUntilService int) Urgency {
	switch {
	case daysUntilService < 0:
		return UrgencyOverdue
	case daysUntilService <= 30:
		return UrgencyUrgent
	case daysUntilService <= 90:
		return UrgencyUpcoming
	default:
		return UrgencyNormal
	}
}

// AddMonths advances a calendar date by n months, clamping the day to the
// destination month's length (Jan 31 + 1 month is the last day of February).
func AddMonths(d time.Time, n int) time.Time {
	d = Date(d)
	firstOfTarget := time.Date(d.Year(), d.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()

	day := d.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns ceil((target - now) / 24h). A partial day left counts as a full day.
// Both sides are compared on their wall-clock fields so a DST change never shifts the count.
func DaysBetween(now, target time.Time) int {
	diff := wallClock(target).Sub(wallClock(now))
	return int(math.Ceil(diff.Hours() / hoursPerDay))
}

// DaysSince returns ceil((now - date) / 24h).
func DaysSince(date, now time.Time) int {
	diff := wallClock(now).Sub(wallClock(Date(date)))
	return int(math.Ceil(diff.Hours() / hoursPerDay))
}

// Date strips the time of day, keeping the calendar date as midnight UTC.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders the calendar date of t.
func FormatDate(t time.Time) string {
	return Date(t).Format(DateLayout)
}

// WeekKey identifies the ISO-8601 week that contains now, e.g. "2026-W09".
func WeekKey(now time.Time) string {
	year, week := now.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// WeekdayName returns the lower-case English weekday ("monday").
func WeekdayName(now time.Time) string {
	return strings.ToLower(now.Weekday().String())
}

// Describe renders the day count the way the dashboard shows it.
func (i Info) Describe() string {
	switch {
	case i.DaysUntilService < 0:
		return fmt.Sprintf("%d days overdue", -i.DaysUntilService)
	case i.DaysUntilService == 0:
		return "Due today"
	default:
		return fmt.Sprintf("%d days until service", i.DaysUntilService)
	}
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
