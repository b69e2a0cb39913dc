package command

import (
	"context"
	"fmt"
	"time"

	"moodbot/internal/core/domain"
	"moodbot/internal/core/port"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Start registers a new account. Registration is idempotent: a second
// attempt is rejected with a message, never duplicated.
type Start struct {
	users   port.UserRepository
	sender  port.MessageSender
	command string
	l       *zerolog.Logger
}

func NewStart(users port.UserRepository, sender port.MessageSender, command string) *Start {
	logger := log.With().Str("command", command).Str("handler", "start").Logger()
	return &Start{users: users, sender: sender, command: command, l: &logger}
}

func (h *Start) GetCommand() string {
	return h.command
}

func (h *Start) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if message.SenderID < 0 {
		// group and channel senders have negative platform ids
		_, err := h.sender.SendReply(ctx, message,
			sysMsg("Нет, ботёнок, для создания аккаунта ты должен быть человеком!"), nil)
		return err
	}

	exists, err := h.users.Exists(ctx, message.SenderID)
	if err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("checking account: %w", err), message)
	}
	if exists {
		_, err := h.sender.SendReply(ctx, message,
			sysMsg("Гений, у тебя уже есть аккаунт в боте. Смирись с этим."), nil)
		return err
	}

	if err := h.users.Add(ctx, message.SenderID, message.Platform); err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("creating account: %w", err), message)
	}

	h.l.Info().Int64("userId", message.SenderID).Str("platform", string(message.Platform)).
		Msg("registered new account")

	kbd := domain.NewKeyboard([]domain.Button{{Label: "Настройки", Command: "!настройки"}})
	_, err = h.sender.SendReply(ctx, message,
		sysMsg("Аккаунт готов; теперь вы можете настраивать поведение бота!"), kbd)
	return err
}
