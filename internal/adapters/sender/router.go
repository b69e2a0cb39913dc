package sender

import (
	"context"
	"fmt"

	"moodbot/internal/core/domain"
	"moodbot/internal/core/port"
)

// Router dispatches outbound messages to the sender matching the message's
// origin platform.
type Router struct {
	telegram port.MessageSender
	vk       port.MessageSender
}

func NewRouter(telegram, vk port.MessageSender) *Router {
	return &Router{telegram: telegram, vk: vk}
}

func (r *Router) SendReply(ctx context.Context, message *domain.Message, text string, kbd *domain.Keyboard) (int, error) {
	s, err := r.pick(message)
	if err != nil {
		return 0, err
	}
	return s.SendReply(ctx, message, text, kbd)
}

func (r *Router) SendTyping(ctx context.Context, message *domain.Message) {
	s, err := r.pick(message)
	if err != nil {
		return
	}
	s.SendTyping(ctx, message)
}

func (r *Router) NotifyAndReturnError(ctx context.Context, err error, message *domain.Message) error {
	s, pickErr := r.pick(message)
	if pickErr != nil {
		return err
	}
	return s.NotifyAndReturnError(ctx, err, message)
}

func (r *Router) pick(message *domain.Message) (port.MessageSender, error) {
	switch message.Platform {
	case domain.PlatformTelegram:
		return r.telegram, nil
	case domain.PlatformVK:
		return r.vk, nil
	default:
		return nil, fmt.Errorf("unknown platform %q", message.Platform)
	}
}
