package telegram

import "context"

// Notifier delivers a rendered notification to a chat
type Notifier interface {
	Deliver(ctx context.Context, text string) error
}
