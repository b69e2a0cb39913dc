package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"moodbot/internal/core/domain"
	"moodbot/internal/core/port"
)

// MyMoods lists the moods owned by the sender, private ones included.
type MyMoods struct {
	users   port.UserRepository
	moods   port.MoodRepository
	sender  port.MessageSender
	command string
}

func NewMyMoods(users port.UserRepository, moods port.MoodRepository, sender port.MessageSender, command string) *MyMoods {
	return &MyMoods{users: users, moods: moods, sender: sender, command: command}
}

func (h *MyMoods) GetCommand() string {
	return h.command
}

func (h *MyMoods) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	exists, err := h.users.Exists(ctx, message.SenderID)
	if err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("checking account: %w", err), message)
	}
	if !exists {
		_, err := h.sender.SendReply(ctx, message,
			sysMsg("Гений, чтобы сделать муд, нужно сначала зарегаться командой \"!начать\"."), nil)
		return err
	}

	moods, err := h.moods.ListByOwner(ctx, message.SenderID)
	if err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("listing moods: %w", err), message)
	}
	if len(moods) == 0 {
		_, err := h.sender.SendReply(ctx, message,
			sysMsg("Удивительно, но вы ещё не создавали собственный муд!"+
				"\nЧтобы его создать, напишите \"!создать муд\""), nil)
		return err
	}

	var b strings.Builder
	b.WriteString(sysMsg("Ваши муды:"))
	for _, m := range moods {
		b.WriteString(fmt.Sprintf("\n• %s (id: %d)", m.Name, m.ID))
	}

	_, err = h.sender.SendReply(ctx, message, b.String(), nil)
	return err
}
