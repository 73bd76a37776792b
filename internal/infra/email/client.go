// Package email delivers notifications over SMTP.
package email

import (
	"context"
	"fmt"

	"septic_reminder_service/internal/domain/notification"

	"gopkg.in/mail.v2"
)

type dialer interface {
	DialAndSend(m ...*mail.Message) error
}

// Client is an email notification sink.
type Client struct {
	from   string
	dialer dialer
}

func NewClient(smtpHost string, smtpPort int, username, password, from string) *Client {
	return &Client{
		from:   from,
		dialer: mail.NewDialer(smtpHost, smtpPort, username, password),
	}
}

func (c *Client) Deliver(ctx context.Context, msg notification.Message) error {
	if msg.Recipient == "" {
		return fmt.Errorf("email %q has no recipient", msg.Subject)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.dialer.DialAndSend(c.buildMessage(msg)); err != nil {
		return fmt.Errorf("send email to %s: %w", msg.Recipient, err)
	}
	return nil
}

func (c *Client) buildMessage(msg notification.Message) *mail.Message {
	message := mail.NewMessage()

	from := c.from
	if msg.From != "" {
		from = msg.From
	}
	message.SetHeader("From", from)
	message.SetHeader("To", msg.Recipient)
	message.SetHeader("Subject", msg.Subject)

	message.SetBody("text/plain", msg.Body)
	return message
}
