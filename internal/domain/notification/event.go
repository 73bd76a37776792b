// internal/domain/notification/event.go
package notification

import (
	"github.com/google/uuid"
)

// Event records one notification that was delivered. Events are immutable and
// only ever appended to the history.
type Event struct {
	ID           uuid.UUID `json:"id"`
	CustomerID   int64     `json:"customer_id"` // DigestCustomerID for digests
	CustomerName string    `json:"customer_name"`
	Recipient    string    `json:"recipient"`
	ThresholdDay int       `json:"threshold_day"`
	DateSent     string    `json:"date_sent"` // YYYY-MM-DD
	Kind         Kind      `json:"kind"`
	WeekKey      string    `json:"week_key,omitempty"` // digests only
}

// Message is what a Sink delivers.
type Message struct {
	Kind      Kind
	From      string // sender address; empty means the channel default
	Recipient string
	Subject   string
	Body      string
	Fields    []Field // structured rendition of Body, in display order
}

// Field is a labelled value inside a message.
type Field struct {
	Name  string
	Value string
}
