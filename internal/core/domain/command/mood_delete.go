package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"moodbot/internal/core/domain"
	"moodbot/internal/core/port"
)

// MoodDelete removes a mood owned by the sender. The administrator may
// delete any mood.
type MoodDelete struct {
	users   port.UserRepository
	moods   port.MoodRepository
	sender  port.MessageSender
	command string
}

func NewMoodDelete(users port.UserRepository, moods port.MoodRepository, sender port.MessageSender, command string) *MoodDelete {
	return &MoodDelete{users: users, moods: moods, sender: sender, command: command}
}

func (h *MoodDelete) GetCommand() string {
	return h.command
}

func (h *MoodDelete) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	exists, err := h.users.Exists(ctx, message.SenderID)
	if err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("checking account: %w", err), message)
	}
	if !exists {
		_, err := h.sender.SendReply(ctx, message, needAccountMsg(), nil)
		return err
	}

	moodID, err := strconv.ParseInt(strings.TrimSpace(message.Text), 10, 64)
	if err != nil {
		_, err := h.sender.SendReply(ctx, message,
			sysMsg("Айди с таким мудом не существует или он приватный!"), nil)
		return err
	}

	mood, err := h.moods.Get(ctx, moodID)
	if err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("loading mood: %w", err), message)
	}
	if mood == nil || (mood.OwnerID != message.SenderID && !isAdmin(message.SenderID)) {
		_, err := h.sender.SendReply(ctx, message,
			sysMsg("Гений, это не твой муд. Если он тебя так раздражает,"+
				" попроси его создателя удалить его."), nil)
		return err
	}

	if err := h.moods.Remove(ctx, moodID); err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("removing mood: %w", err), message)
	}

	_, err = h.sender.SendReply(ctx, message,
		sysMsg("Ваш позорный муд удален и больше вас не позорит!"), nil)
	return err
}
