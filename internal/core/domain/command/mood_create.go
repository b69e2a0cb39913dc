package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"moodbot/internal/core/domain"
	"moodbot/internal/core/port"
	"moodbot/internal/core/service"
)

// MoodCreate creates a mood from the given instructions. Without an
// argument it explains how to use the command. Non-admin users are capped at
// MaxMoodsPerUser moods.
type MoodCreate struct {
	users   port.UserRepository
	moods   port.MoodRepository
	filter  *service.Filter
	sender  port.MessageSender
	command string
}

func NewMoodCreate(users port.UserRepository, moods port.MoodRepository, filter *service.Filter, sender port.MessageSender, command string) *MoodCreate {
	return &MoodCreate{users: users, moods: moods, filter: filter, sender: sender, command: command}
}

func (h *MoodCreate) GetCommand() string {
	return h.command
}

func (h *MoodCreate) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	instructions := strings.TrimSpace(message.Text)
	if instructions == "" {
		_, err := h.sender.SendReply(ctx, message,
			sysMsg("Чтобы создать новый муд, напишите \"!создать муд <инструкции>\""+
				"\nИнструкции лучше всего писать на английском!"+
				"\nНапример: You are now a cute anime girl. Don't forget to use :3 and other things"+
				" that cute anime girls say. Speak only Russian."), nil)
		return err
	}

	exists, err := h.users.Exists(ctx, message.SenderID)
	if err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("checking account: %w", err), message)
	}
	if !exists {
		_, err := h.sender.SendReply(ctx, message,
			sysMsg("Гений, чтобы создать муд, нужно сначала зарегаться командой \"!начать\"."), nil)
		return err
	}

	if err := h.filter.ScreenOutgoing(ctx, instructions); err != nil {
		if msg := moderationFailMsg(err); msg != "" {
			_, sendErr := h.sender.SendReply(ctx, message, msg, nil)
			return sendErr
		}
		return h.sender.NotifyAndReturnError(ctx, err, message)
	}

	owned, err := h.moods.ListByOwner(ctx, message.SenderID)
	if err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("listing moods: %w", err), message)
	}
	if len(owned) >= domain.MaxMoodsPerUser && !isAdmin(message.SenderID) {
		_, err := h.sender.SendReply(ctx, message,
			sysMsg(fmt.Sprintf("Вы не можете создать больше %d мудов!", domain.MaxMoodsPerUser)), nil)
		return err
	}

	id, err := h.moods.Add(ctx, domain.Mood{
		OwnerID:      message.SenderID,
		Name:         "Мой муд",
		Instructions: instructions,
	})
	if err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("creating mood: %w", err), message)
	}

	_, err = h.sender.SendReply(ctx, message,
		sysMsg(fmt.Sprintf("Вы создали новый муд! Его айди: %d"+
			"\nТеперь вы можете:"+
			"\n1. Поменять название, с помощью команды \"!муд имя %d <название муда>\"."+
			"\n2. Поменять описание, с помощью команды \"!муд описание %d <описание муда>\"."+
			"\n3. Сделать муд публичным, с помощью команды \"!муд видимость %d\"."+
			"\n4. Поменять его инструкции, если вам что-то не понравилось в них."+
			" Команда: \"!муд инструкции %d <инструкции>\"",
			id, id, id, id, id)), nil)
	return err
}
