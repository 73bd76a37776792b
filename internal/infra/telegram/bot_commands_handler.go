// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"fmt"
	"strings"
	"time"

	"septic_reminder_service/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const helpText = "Available commands:\n\n" +
	"/due - overdue and urgent customers\n" +
	"/digest - this week's service summary\n" +
	"/run - run the reminder pass now\n" +
	"/help - show this message"

// RegisterBotCommands wires the office chat commands. Only the configured chat
// may use them.
func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	officeChatID int64,
	notificationService app.NotificationService,
	clock func() time.Time,
	baseLogger *logrus.Entry,
) {
	authorized := func(command string, handler func(c telebot.Context, logCtx *logrus.Entry) error) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			logCtx := baseLogger.WithFields(logrus.Fields{
				"command": command,
				"chat_id": c.Chat().ID,
			})
			if c.Chat().ID != officeChatID {
				logCtx.Warn("Unauthorized access attempt")
				return c.Send("This bot only answers the office chat.")
			}
			logCtx.Info("Processing command")
			return handler(c, logCtx)
		}
	}

	b.Handle("/start", authorized("/start", func(c telebot.Context, _ *logrus.Entry) error {
		return c.Send("Septic service reminders are connected to this chat.\n\n" + helpText)
	}))

	b.Handle("/help", authorized("/help", func(c telebot.Context, _ *logrus.Entry) error {
		return c.Send(helpText)
	}))

	b.Handle("/due", authorized("/due", func(c telebot.Context, logCtx *logrus.Entry) error {
		digest, err := notificationService.Digest(ctx, clock())
		if err != nil {
			logCtx.WithError(err).Error("Failed to build digest for /due")
			return c.Send("Could not load customers. Please try again later.")
		}
		return c.Send(dueText(digest))
	}))

	b.Handle("/digest", authorized("/digest", func(c telebot.Context, logCtx *logrus.Entry) error {
		digest, err := notificationService.Digest(ctx, clock())
		if err != nil {
			logCtx.WithError(err).Error("Failed to build digest")
			return c.Send("Could not load customers. Please try again later.")
		}
		return c.Send(fmt.Sprintf("Week %s\n%s\nTotal active jobs: %d", digest.WeekKey, digest.Summary(), digest.TotalActive))
	}))

	b.Handle("/run", authorized("/run", func(c telebot.Context, logCtx *logrus.Entry) error {
		result, err := notificationService.RunPass(ctx, clock())
		if err != nil {
			logCtx.WithError(err).Error("Reminder pass failed")
			return c.Send(fmt.Sprintf("Reminder pass failed: %s", err.Error()))
		}
		return c.Send(runText(result))
	}))
}

func dueText(d *app.Digest) string {
	if len(d.Overdue) == 0 && len(d.Urgent) == 0 {
		return "Nothing overdue or due within 7 days."
	}

	var b strings.Builder
	if len(d.Overdue) > 0 {
		b.WriteString("Overdue:\n")
		for _, e := range d.Overdue {
			fmt.Fprintf(&b, "• %s, %s, %s (%d days overdue)\n", e.Name, e.Address, e.Phone, e.Days)
		}
	}
	if len(d.Urgent) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Due within 7 days:\n")
		for _, e := range d.Urgent {
			fmt.Fprintf(&b, "• %s, %s, %s (in %d days)\n", e.Name, e.Address, e.Phone, e.Days)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func runText(r *app.PassResult) string {
	text := fmt.Sprintf("Reminder pass for %s: %d sent, %d failed, %d skipped.", r.Date, len(r.Sent), len(r.Failed), len(r.Skipped))
	for _, s := range r.Skipped {
		text += fmt.Sprintf("\n• skipped %s: %s", s.Name, s.Reason)
	}
	return text
}
