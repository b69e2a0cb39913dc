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

// MoodSet selects a mood for the account. Private moods are selectable only
// by their owner.
type MoodSet struct {
	users   port.UserRepository
	moods   port.MoodRepository
	sender  port.MessageSender
	command string
}

func NewMoodSet(users port.UserRepository, moods port.MoodRepository, sender port.MessageSender, command string) *MoodSet {
	return &MoodSet{users: users, moods: moods, sender: sender, command: command}
}

func (h *MoodSet) GetCommand() string {
	return h.command
}

func (h *MoodSet) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
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
		_, err := h.sender.SendReply(ctx, message, sysMsg("Такого муда не существует!"), nil)
		return err
	}

	mood, err := h.moods.Get(ctx, moodID)
	if err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("loading mood: %w", err), message)
	}
	if mood == nil || (mood.IsPrivate && mood.OwnerID != message.SenderID) {
		_, err := h.sender.SendReply(ctx, message, sysMsg("Такого муда не существует!"), nil)
		return err
	}

	if err := h.users.UpdateField(ctx, message.SenderID, domain.UserFieldMood, mood.ID); err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("setting mood: %w", err), message)
	}

	_, err = h.sender.SendReply(ctx, message,
		sysMsg(fmt.Sprintf("Вы успешно выбрали муд \"%s\" (id: %d)", mood.Name, mood.ID)), nil)
	return err
}
