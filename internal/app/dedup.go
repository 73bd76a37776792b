package app

import "septic_reminder_service/internal/domain/notification"

// HasFired reports whether history already holds the prospective event.
// Customer reminders and business alerts match on customer, threshold, kind and
// the exact calendar date sent; digests match on the week key alone.
func HasFired(history []notification.Event, customerID int64, thresholdDay int, kind notification.Kind, dateOrWeekKey string) bool {
	for _, e := range history {
		if e.Kind != kind {
			continue
		}
		if kind == notification.KindWeeklyDigest {
			if e.WeekKey == dateOrWeekKey {
				return true
			}
			continue
		}
		if e.CustomerID == customerID && e.ThresholdDay == thresholdDay && e.DateSent == dateOrWeekKey {
			return true
		}
	}
	return false
}
