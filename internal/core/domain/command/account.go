package command

import (
	"context"
	"fmt"
	"time"

	"moodbot/internal/core/domain"
	"moodbot/internal/core/port"
)

// AccountDeleteWarning is the first step of the two-step account deletion:
// it warns about the consequences and names the confirmation command.
type AccountDeleteWarning struct {
	users   port.UserRepository
	moods   port.MoodRepository
	sender  port.MessageSender
	command string
}

func NewAccountDeleteWarning(users port.UserRepository, moods port.MoodRepository, sender port.MessageSender, command string) *AccountDeleteWarning {
	return &AccountDeleteWarning{users: users, moods: moods, sender: sender, command: command}
}

func (h *AccountDeleteWarning) GetCommand() string {
	return h.command
}

func (h *AccountDeleteWarning) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	exists, err := h.users.Exists(ctx, message.SenderID)
	if err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("checking account: %w", err), message)
	}
	if !exists {
		_, err := h.sender.SendReply(ctx, message,
			sysMsg("Пока мы живем в 2025, этот гений живет в 2026"+
				"\nУ вас и так нет аккаунта. Отличная причина создать его командой \"!начать\"!"), nil)
		return err
	}

	msg := sysMsg("Вы уверены, что хотите удалить свой аккаунт?")

	owned, err := h.moods.ListByOwner(ctx, message.SenderID)
	if err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("listing moods: %w", err), message)
	}
	if len(owned) > 0 {
		msg += fmt.Sprintf("\nВы создали муды (%d). Удалив аккаунт, вы больше не"+
			" сможете их редактировать, даже после создания нового аккаунта.", len(owned))
	}
	msg += "\nНапишите \"!точно удалить гпт\" чтобы его удалить."

	_, err = h.sender.SendReply(ctx, message, msg, nil)
	return err
}

// AccountDelete is the confirmed second step. Owned moods survive the
// account row; generation records keep their history.
type AccountDelete struct {
	users   port.UserRepository
	sender  port.MessageSender
	command string
}

func NewAccountDelete(users port.UserRepository, sender port.MessageSender, command string) *AccountDelete {
	return &AccountDelete{users: users, sender: sender, command: command}
}

func (h *AccountDelete) GetCommand() string {
	return h.command
}

func (h *AccountDelete) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	exists, err := h.users.Exists(ctx, message.SenderID)
	if err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("checking account: %w", err), message)
	}
	if !exists {
		_, err := h.sender.SendReply(ctx, message, sysMsg("Для этого нужен аккаунт!"), nil)
		return err
	}

	if err := h.users.Remove(ctx, message.SenderID); err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("removing account: %w", err), message)
	}

	_, err = h.sender.SendReply(ctx, message, sysMsg("Готово... но зачем?"), nil)
	return err
}
