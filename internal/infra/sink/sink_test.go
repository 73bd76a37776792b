package sink

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"septic_reminder_service/internal/domain/notification"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type countingSink struct {
	count int
	err   error
}

func (s *countingSink) Deliver(context.Context, notification.Message) error {
	s.count++
	return s.err
}

func TestRouter_RoutesByKind(t *testing.T) {
	email := &countingSink{}
	chat := &countingSink{}
	fallback := &countingSink{}

	r := NewRouter(discardLogger(), fallback).
		Route(email, notification.KindCustomerReminder, notification.KindBusinessAlert, notification.KindWeeklyDigest).
		Route(chat, notification.KindBusinessAlert, notification.KindWeeklyDigest)

	ctx := context.Background()
	require.NoError(t, r.Deliver(ctx, notification.Message{Kind: notification.KindCustomerReminder}))
	require.NoError(t, r.Deliver(ctx, notification.Message{Kind: notification.KindWeeklyDigest}))

	assert.Equal(t, 2, email.count)
	assert.Equal(t, 1, chat.count)
	assert.Zero(t, fallback.count)
}

func TestRouter_Fallback(t *testing.T) {
	fallback := &countingSink{}
	r := NewRouter(discardLogger(), fallback)

	require.NoError(t, r.Deliver(context.Background(), notification.Message{Kind: notification.KindBusinessAlert}))
	assert.Equal(t, 1, fallback.count)

	assert.Error(t, NewRouter(discardLogger()).Deliver(context.Background(), notification.Message{Kind: notification.KindBusinessAlert}))
}

func TestRouter_OneWorkingChannelIsEnough(t *testing.T) {
	ok := &countingSink{}
	broken := &countingSink{err: errors.New("boom")}
	r := NewRouter(discardLogger()).Route(broken, notification.KindBusinessAlert).Route(ok, notification.KindBusinessAlert)

	err := r.Deliver(context.Background(), notification.Message{Kind: notification.KindBusinessAlert})
	require.NoError(t, err)
	assert.Equal(t, 1, ok.count, "remaining sinks are still tried")
	assert.Equal(t, 1, broken.count)
}

func TestRouter_AllChannelsFailing(t *testing.T) {
	first := &countingSink{err: errors.New("smtp down")}
	second := &countingSink{err: errors.New("telegram down")}
	r := NewRouter(discardLogger()).Route(first, notification.KindBusinessAlert).Route(second, notification.KindBusinessAlert)

	err := r.Deliver(context.Background(), notification.Message{Kind: notification.KindBusinessAlert})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
	assert.Contains(t, err.Error(), "telegram down")
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	s := NewLogSink(logrus.NewEntry(l))
	err := s.Deliver(context.Background(), notification.Message{
		Kind:      notification.KindBusinessAlert,
		Recipient: "office@example.com",
		Subject:   "Service Due: Ann - URGENT",
		Fields:    []notification.Field{{Name: "Phone", Value: "555"}},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"subject":"Service Due: Ann - URGENT"`)
	assert.Contains(t, buf.String(), `"field.Phone":"555"`)
}
