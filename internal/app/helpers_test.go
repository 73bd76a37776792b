package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"septic_reminder_service/internal/domain/customer"
	"septic_reminder_service/internal/domain/notification"
	"septic_reminder_service/internal/domain/schedule"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := schedule.ParseDate(s)
	require.NoError(t, err)
	return d
}

// dueIn builds a customer on a 24 month interval whose next service is days after now.
func dueIn(id int64, name string, now time.Time, days int) *customer.Customer {
	next := schedule.Date(now).AddDate(0, 0, days)
	return &customer.Customer{
		ID:              id,
		Name:            name,
		Address:         name + " Rd",
		Phone:           "555-0100",
		Email:           name + "@example.com",
		LastServiceDate: next.AddDate(-2, 0, 0),
		ServiceInterval: 24,
	}
}

// customerOnly enables customer reminders and nothing else.
func customerOnly() notification.Settings {
	s := notification.DefaultSettings()
	s.Business.Enabled = false
	return *s
}

// businessOnly enables business alerts without the weekly digest.
func businessOnly() notification.Settings {
	s := notification.DefaultSettings()
	s.Enabled = false
	s.Business.WeeklyDigest = false
	return *s
}

type recordingSink struct {
	mu       sync.Mutex
	messages []notification.Message
	fail     bool
}

func (s *recordingSink) Deliver(_ context.Context, msg notification.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("smtp unavailable")
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *recordingSink) sent() []notification.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notification.Message(nil), s.messages...)
}

type stubGeocoder struct {
	coord customer.Coordinate
	err   error
	calls []string
}

func (g *stubGeocoder) Geocode(_ context.Context, address string) (customer.Coordinate, error) {
	g.calls = append(g.calls, address)
	return g.coord, g.err
}

func events(dispatches []Dispatch) []notification.Event {
	out := make([]notification.Event, 0, len(dispatches))
	for _, d := range dispatches {
		out = append(out, d.Event)
	}
	return out
}
