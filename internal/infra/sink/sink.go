// Package sink holds notification sinks that are not tied to an external channel.
package sink

import (
	"context"
	"errors"
	"fmt"

	"septic_reminder_service/internal/domain/notification"

	"github.com/sirupsen/logrus"
)

// LogSink writes every message to the log. It is the sink of last resort when
// no delivery channel is configured.
type LogSink struct {
	logger *logrus.Entry
}

func NewLogSink(logger *logrus.Entry) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Deliver(_ context.Context, msg notification.Message) error {
	fields := logrus.Fields{
		"kind":      msg.Kind,
		"recipient": msg.Recipient,
		"subject":   msg.Subject,
	}
	for _, f := range msg.Fields {
		fields["field."+f.Name] = f.Value
	}
	s.logger.WithFields(fields).Info("Notification")
	return nil
}

// Router delivers each message to the sinks registered for its kind, or to the
// fallback sinks when none are.
type Router struct {
	routes   map[notification.Kind][]notification.Sink
	fallback []notification.Sink
	logger   *logrus.Entry
}

func NewRouter(logger *logrus.Entry, fallback ...notification.Sink) *Router {
	return &Router{
		routes:   make(map[notification.Kind][]notification.Sink),
		fallback: fallback,
		logger:   logger,
	}
}

// Route adds a sink for the given kinds.
func (r *Router) Route(s notification.Sink, kinds ...notification.Kind) *Router {
	for _, k := range kinds {
		r.routes[k] = append(r.routes[k], s)
	}
	return r
}

// Deliver tries every matching sink. The message counts as delivered once any
// of them succeeds. Failures on the other channels are only logged.
func (r *Router) Deliver(ctx context.Context, msg notification.Message) error {
	sinks := r.routes[msg.Kind]
	if len(sinks) == 0 {
		sinks = r.fallback
	}
	if len(sinks) == 0 {
		return fmt.Errorf("no sink configured for %s", msg.Kind)
	}

	var errs []error
	for _, s := range sinks {
		if err := s.Deliver(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == len(sinks) {
		return errors.Join(errs...)
	}
	for _, err := range errs {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"kind":      msg.Kind,
			"recipient": msg.Recipient,
		}).Warn("Delivery channel failed, message went out on another channel")
	}
	return nil
}
