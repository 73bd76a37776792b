package notification

import "context"

// Sink delivers a composed message over some channel (email, chat, log).
type Sink interface {
	Deliver(ctx context.Context, msg Message) error
}
