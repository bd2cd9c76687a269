package ports

import (
	"context"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// Notifier delivers replies to a chat.
type Notifier interface {
	Send(ctx context.Context, chatID int64, reply *domain.Reply) (domain.Receipt, error)
}

// Editor is implemented by notifiers able to replace a previously sent
// message in place, as done when a button of that message is tapped.
type Editor interface {
	Edit(ctx context.Context, chatID int64, messageID int, reply *domain.Reply) (domain.Receipt, error)
}
