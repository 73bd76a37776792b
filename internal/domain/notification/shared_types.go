// internal/domain/notification/shared_types.go
package notification

// Kind identifies what a notification event was sent for.
type Kind string

const (
	KindCustomerReminder Kind = "customer_reminder" // to the customer's email
	KindBusinessAlert    Kind = "business_alert"    // to the business inbox
	KindWeeklyDigest     Kind = "weekly_digest"     // one per ISO week
)

// OverdueMode selects how the include-overdue flag of business alerts behaves.
type OverdueMode string

const (
	// OverdueAsWritten only alerts on an overdue customer when its day count
	// also equals a configured threshold, so IncludeOverdue never fires on its own.
	OverdueAsWritten OverdueMode = "as_written"
	// OverdueIndependent sends one alert per day for every overdue customer
	// while IncludeOverdue is set, regardless of threshold equality.
	OverdueIndependent OverdueMode = "independent"
)

const (
	// DigestCustomerID is the customer id recorded on digest events.
	DigestCustomerID int64 = 0
	// OverdueThresholdDay is the threshold recorded on independent overdue alerts.
	OverdueThresholdDay = -1
)

func (k Kind) Valid() bool {
	switch k {
	case KindCustomerReminder, KindBusinessAlert, KindWeeklyDigest:
		return true
	}
	return false
}

func (m OverdueMode) Valid() bool {
	return m == OverdueAsWritten || m == OverdueIndependent
}
