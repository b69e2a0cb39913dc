package port

import (
	"context"
	"moodbot/internal/core/domain"
)

type MessageSender interface {
	// SendReply sends a reply to the originating message, with an optional
	// inline keyboard, and returns the sent message id.
	SendReply(ctx context.Context, message *domain.Message, text string, kbd *domain.Keyboard) (int, error)
	// SendTyping signals typing activity in the originating chat.
	SendTyping(ctx context.Context, message *domain.Message)
	// NotifyAndReturnError sends a generic failure notice and returns the
	// error for propagation.
	NotifyAndReturnError(ctx context.Context, err error, message *domain.Message) error
}
