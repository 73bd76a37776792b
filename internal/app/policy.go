// internal/app/policy.go
package app

import (
	"time"

	"septic_reminder_service/internal/domain/customer"
	"septic_reminder_service/internal/domain/notification"
	"septic_reminder_service/internal/domain/schedule"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Dispatch pairs an event with the message that announces it.
type Dispatch struct {
	Event   notification.Event
	Message notification.Message
}

// SkippedCustomer is a customer the pass could not evaluate.
type SkippedCustomer struct {
	CustomerID int64  `json:"customer_id"`
	Name       string `json:"customer_name"`
	Reason     string `json:"reason"`
}

// Evaluation is the outcome of one policy evaluation.
type Evaluation struct {
	Dispatches []Dispatch
	Skipped    []SkippedCustomer
}

// customerSchedule is computed once per customer per pass and shared by every rule.
type customerSchedule struct {
	customer *customer.Customer
	info     schedule.Info
}

// PolicyEngine decides which notifications must fire for a given moment.
// It holds no state between calls: settings and history are passed in.
type PolicyEngine struct {
	logger *logrus.Entry
	newID  func() uuid.UUID
}

func NewPolicyEngine(logger *logrus.Entry) *PolicyEngine {
	return &PolicyEngine{
		logger: logger,
		newID:  uuid.New,
	}
}

// Evaluate runs the reminder rules over every customer and returns the
// dispatches that have not fired yet. Events produced during the call are
// considered part of the history for the remainder of the call.
func (p *PolicyEngine) Evaluate(customers []*customer.Customer, settings notification.Settings, history []notification.Event, now time.Time) Evaluation {
	var eval Evaluation
	today := schedule.FormatDate(now)
	working := append(make([]notification.Event, 0, len(history)), history...)

	emit := func(d Dispatch) {
		eval.Dispatches = append(eval.Dispatches, d)
		working = append(working, d.Event)
		p.logger.WithFields(logrus.Fields{
			"kind":          d.Event.Kind,
			"customer_id":   d.Event.CustomerID,
			"threshold_day": d.Event.ThresholdDay,
			"recipient":     d.Event.Recipient,
		}).Debug("Notification due")
	}

	schedules := p.computeSchedules(customers, now, &eval)

	if settings.Enabled {
		for _, cs := range schedules {
			for _, day := range settings.ReminderDays {
				if cs.info.DaysUntilService != day {
					continue
				}
				if HasFired(working, cs.customer.ID, day, notification.KindCustomerReminder, today) {
					continue
				}
				if cs.customer.Email == "" {
					p.logger.WithField("customer_id", cs.customer.ID).Warn("Customer reminder due but customer has no email address")
					continue
				}
				emit(p.customerReminder(cs, day, &settings, today))
			}
		}
	}

	if !settings.Business.Enabled {
		return eval
	}

	for _, cs := range schedules {
		for _, day := range settings.Business.NotifyDays {
			if cs.info.DaysUntilService != day {
				continue
			}
			if HasFired(working, cs.customer.ID, day, notification.KindBusinessAlert, today) {
				continue
			}
			emit(p.businessAlert(cs, day, &settings, today))
		}

		if settings.Business.OverdueMode == notification.OverdueIndependent &&
			settings.Business.IncludeOverdue &&
			cs.info.DaysUntilService < 0 &&
			!HasFired(working, cs.customer.ID, notification.OverdueThresholdDay, notification.KindBusinessAlert, today) {
			emit(p.businessAlert(cs, notification.OverdueThresholdDay, &settings, today))
		}
	}

	if settings.Business.WeeklyDigest {
		weekKey := schedule.WeekKey(now)
		if schedule.WeekdayName(now) == settings.Business.DigestDay &&
			!HasFired(working, notification.DigestCustomerID, 0, notification.KindWeeklyDigest, weekKey) {
			digest := buildDigest(schedules, now)
			emit(p.weeklyDigest(digest, &settings, today))
		}
	}

	return eval
}

// computeSchedules evaluates every customer once. A customer whose schedule
// cannot be computed is recorded as skipped and left out of the pass.
func (p *PolicyEngine) computeSchedules(customers []*customer.Customer, now time.Time, eval *Evaluation) []customerSchedule {
	schedules := make([]customerSchedule, 0, len(customers))
	for _, c := range customers {
		info, err := c.Schedule(now)
		if err != nil {
			p.logger.WithError(err).WithField("customer_id", c.ID).Warn("Skipping customer with invalid schedule")
			if eval != nil {
				eval.Skipped = append(eval.Skipped, SkippedCustomer{CustomerID: c.ID, Name: c.Name, Reason: err.Error()})
			}
			continue
		}
		schedules = append(schedules, customerSchedule{customer: c, info: info})
	}
	return schedules
}

func (p *PolicyEngine) customerReminder(cs customerSchedule, day int, settings *notification.Settings, today string) Dispatch {
	return Dispatch{
		Event: notification.Event{
			ID:           p.newID(),
			CustomerID:   cs.customer.ID,
			CustomerName: cs.customer.Name,
			Recipient:    cs.customer.Email,
			ThresholdDay: day,
			DateSent:     today,
			Kind:         notification.KindCustomerReminder,
		},
		Message: customerReminderMessage(cs, settings),
	}
}

func (p *PolicyEngine) businessAlert(cs customerSchedule, day int, settings *notification.Settings, today string) Dispatch {
	return Dispatch{
		Event: notification.Event{
			ID:           p.newID(),
			CustomerID:   cs.customer.ID,
			CustomerName: cs.customer.Name,
			Recipient:    settings.Business.Email,
			ThresholdDay: day,
			DateSent:     today,
			Kind:         notification.KindBusinessAlert,
		},
		Message: businessAlertMessage(cs, settings),
	}
}

func (p *PolicyEngine) weeklyDigest(d Digest, settings *notification.Settings, today string) Dispatch {
	return Dispatch{
		Event: notification.Event{
			ID:           p.newID(),
			CustomerID:   notification.DigestCustomerID,
			CustomerName: "Weekly Digest",
			Recipient:    settings.Business.Email,
			DateSent:     today,
			Kind:         notification.KindWeeklyDigest,
			WeekKey:      d.WeekKey,
		},
		Message: digestMessage(d, settings),
	}
}
