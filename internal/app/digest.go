package app

import (
	"fmt"
	"time"

	"septic_reminder_service/internal/domain/schedule"
)

const (
	digestUrgentDays   = 7
	digestUpcomingDays = 28
	digestRecentDays   = 7
)

// DigestEntry is one customer line in the weekly digest.
type DigestEntry struct {
	CustomerID  int64  `json:"customer_id"`
	Name        string `json:"name"`
	Address     string `json:"address,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Days        int    `json:"days,omitempty"` // days overdue or days until service
	ServiceDate string `json:"service_date,omitempty"`
}

// Digest is a snapshot of the customer base for the weekly summary. It is
// derived from the customer list at send time and never stored.
type Digest struct {
	WeekKey          string        `json:"week_key"`
	Date             string        `json:"date"`
	Overdue          []DigestEntry `json:"overdue"`
	Urgent           []DigestEntry `json:"urgent"`            // 0 < days <= 7
	Upcoming         []DigestEntry `json:"upcoming"`          // 7 < days <= 28
	RecentlyServiced []DigestEntry `json:"recently_serviced"` // serviced within 7 days
	TotalActive      int           `json:"total_active"`
}

func buildDigest(schedules []customerSchedule, now time.Time) Digest {
	d := Digest{
		WeekKey:          schedule.WeekKey(now),
		Date:             schedule.FormatDate(now),
		Overdue:          []DigestEntry{},
		Urgent:           []DigestEntry{},
		Upcoming:         []DigestEntry{},
		RecentlyServiced: []DigestEntry{},
		TotalActive:      len(schedules),
	}

	for _, cs := range schedules {
		c := cs.customer
		days := cs.info.DaysUntilService

		switch {
		case cs.info.Urgency == schedule.UrgencyOverdue:
			d.Overdue = append(d.Overdue, DigestEntry{CustomerID: c.ID, Name: c.Name, Address: c.Address, Phone: c.Phone, Days: -days})
		case days > 0 && days <= digestUrgentDays:
			d.Urgent = append(d.Urgent, DigestEntry{CustomerID: c.ID, Name: c.Name, Address: c.Address, Phone: c.Phone, Days: days})
		case days > digestUrgentDays && days <= digestUpcomingDays:
			d.Upcoming = append(d.Upcoming, DigestEntry{CustomerID: c.ID, Name: c.Name, Address: c.Address, Days: days})
		}

		if schedule.DaysSince(c.LastServiceDate, now) <= digestRecentDays {
			d.RecentlyServiced = append(d.RecentlyServiced, DigestEntry{CustomerID: c.ID, Name: c.Name, ServiceDate: schedule.FormatDate(c.LastServiceDate)})
		}
	}
	return d
}

// Summary is the one-line digest overview.
func (d Digest) Summary() string {
	return fmt.Sprintf("%d overdue, %d urgent (≤7 days), %d upcoming (8-28 days), %d recently completed",
		len(d.Overdue), len(d.Urgent), len(d.Upcoming), len(d.RecentlyServiced))
}
