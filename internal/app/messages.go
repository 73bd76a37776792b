package app

import (
	"fmt"
	"strconv"
	"strings"

	"septic_reminder_service/internal/domain/notification"
	"septic_reminder_service/internal/domain/schedule"
)

func customerReminderMessage(cs customerSchedule, settings *notification.Settings) notification.Message {
	c := cs.customer
	company := settings.CompanyName
	if company == "" {
		company = "Your septic service"
	}

	fields := []notification.Field{
		{Name: "Customer", Value: c.Name},
		{Name: "Address", Value: c.Address},
		{Name: "Next Service Date", Value: schedule.FormatDate(cs.info.NextDate)},
		{Name: "Status", Value: cs.info.Describe()},
	}
	greeting := fmt.Sprintf("Hello %s,\n\nyour septic tank service status: %s. Please reply or call us to book a visit.\n\n%s\n",
		c.Name, strings.ToLower(cs.info.Describe()), company)

	return notification.Message{
		Kind:      notification.KindCustomerReminder,
		From:      settings.FromEmail,
		Recipient: c.Email,
		Subject:   fmt.Sprintf("%s: septic service reminder", company),
		Body:      greeting + "\n" + renderFields(fields),
		Fields:    fields,
	}
}

func businessAlertMessage(cs customerSchedule, settings *notification.Settings) notification.Message {
	c := cs.customer
	urgency := strings.ToUpper(string(cs.info.Urgency))

	fields := []notification.Field{
		{Name: "Customer", Value: c.Name},
		{Name: "Address", Value: c.Address},
		{Name: "Phone", Value: c.Phone},
		{Name: "Days Until", Value: strconv.Itoa(cs.info.DaysUntilService)},
		{Name: "Next Service Date", Value: schedule.FormatDate(cs.info.NextDate)},
		{Name: "Urgency", Value: string(cs.info.Urgency)},
	}

	return notification.Message{
		Kind:      notification.KindBusinessAlert,
		From:      settings.FromEmail,
		Recipient: settings.Business.Email,
		Subject:   fmt.Sprintf("Service Due: %s - %s", c.Name, urgency),
		Body:      renderFields(fields),
		Fields:    fields,
	}
}

func digestMessage(d Digest, settings *notification.Settings) notification.Message {
	fields := []notification.Field{
		{Name: "Overdue", Value: strconv.Itoa(len(d.Overdue))},
		{Name: "Urgent (≤7 days)", Value: strconv.Itoa(len(d.Urgent))},
		{Name: "Upcoming (8-28 days)", Value: strconv.Itoa(len(d.Upcoming))},
		{Name: "Recently Completed", Value: strconv.Itoa(len(d.RecentlyServiced))},
		{Name: "Total Active Jobs", Value: strconv.Itoa(d.TotalActive)},
	}

	var b strings.Builder
	b.WriteString(renderFields(fields))
	writeSection(&b, "Overdue", d.Overdue, func(e DigestEntry) string {
		return fmt.Sprintf("%s, %s, %s (%d days overdue)", e.Name, e.Address, e.Phone, e.Days)
	})
	writeSection(&b, "Urgent", d.Urgent, func(e DigestEntry) string {
		return fmt.Sprintf("%s, %s, %s (due in %d days)", e.Name, e.Address, e.Phone, e.Days)
	})
	writeSection(&b, "Upcoming", d.Upcoming, func(e DigestEntry) string {
		return fmt.Sprintf("%s, %s (due in %d days)", e.Name, e.Address, e.Days)
	})
	writeSection(&b, "Recently Completed", d.RecentlyServiced, func(e DigestEntry) string {
		return fmt.Sprintf("%s (serviced %s)", e.Name, e.ServiceDate)
	})

	return notification.Message{
		Kind:      notification.KindWeeklyDigest,
		From:      settings.FromEmail,
		Recipient: settings.Business.Email,
		Subject:   fmt.Sprintf("Weekly Service Summary - %s", d.Date),
		Body:      b.String(),
		Fields:    fields,
	}
}

func renderFields(fields []notification.Field) string {
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, "%s: %s\n", f.Name, f.Value)
	}
	return b.String()
}

func writeSection(b *strings.Builder, title string, entries []DigestEntry, line func(DigestEntry) string) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, e := range entries {
		b.WriteString("  - " + line(e) + "\n")
	}
}
