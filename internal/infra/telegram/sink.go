package telegram

import (
	"context"
	"fmt"
	"strings"

	"septic_reminder_service/internal/domain/notification"

	"gopkg.in/telebot.v3"
)

// Telegram caps a message at 4096 characters.
const maxMessageLength = 4096

// Sink posts business notifications to the office chat.
type Sink struct {
	client Client
	chatID int64
}

func NewSink(client Client, chatID int64) *Sink {
	return &Sink{client: client, chatID: chatID}
}

func (s *Sink) Deliver(ctx context.Context, msg notification.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.client.SendMessage(s.chatID, formatMessage(msg), &telebot.SendOptions{DisableWebPagePreview: true}); err != nil {
		return fmt.Errorf("send telegram message to chat %d: %w", s.chatID, err)
	}
	return nil
}

func formatMessage(msg notification.Message) string {
	var b strings.Builder
	b.WriteString(msg.Subject)
	b.WriteString("\n\n")
	b.WriteString(msg.Body)

	text := strings.TrimRight(b.String(), "\n")
	if r := []rune(text); len(r) > maxMessageLength {
		text = string(r[:maxMessageLength-1]) + "…"
	}
	return text
}
