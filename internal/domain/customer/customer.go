package customer

import (
	"time"

	"septic_reminder_service/internal/domain/schedule"
)

// Default values applied when a record arrives without them (CSV import, sparse API payloads).
const (
	DefaultServiceInterval = 24 // months
	DefaultTankSize        = "1000 gallons"
	DefaultLat             = 39.7817
	DefaultLng             = -89.6501
)

// DefaultLastServiceDate is used when an imported row has no last-service date.
var DefaultLastServiceDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Customer represents a septic service customer (one recurring job).
type Customer struct {
	ID              int64     `json:"id"`
	Name            string    `json:"customer_name"`
	Address         string    `json:"address"`
	Lat             float64   `json:"lat"`
	Lng             float64   `json:"lng"`
	Phone           string    `json:"phone"`
	Email           string    `json:"email"`
	TankSize        string    `json:"tank_size"`
	LastServiceDate time.Time `json:"last_service_date"` // calendar date, midnight UTC
	ServiceInterval int       `json:"service_interval"`  // months
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Schedule computes the customer's next-service info relative to now.
func (c *Customer) Schedule(now time.Time) (schedule.Info, error) {
	return schedule.Calculate(c.LastServiceDate, c.ServiceInterval, now)
}

// HasCoordinates reports whether the record carries a usable location.
func (c *Customer) HasCoordinates() bool {
	return c.Lat != 0 || c.Lng != 0
}

// ApplyDefaults fills the lenient defaults for optional fields.
func (c *Customer) ApplyDefaults() {
	if c.ServiceInterval < 1 {
		c.ServiceInterval = DefaultServiceInterval
	}
	if c.TankSize == "" {
		c.TankSize = DefaultTankSize
	}
	if c.LastServiceDate.IsZero() {
		c.LastServiceDate = DefaultLastServiceDate
	}
	c.LastServiceDate = schedule.Date(c.LastServiceDate)
}

// Clone returns a copy that can be handed out without sharing state with a store.
func (c *Customer) Clone() *Customer {
	cp := *c
	return &cp
}
