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

// Persona sets the account's persona text; without an argument it explains
// the command. Persona text is screened before it is persisted.
type Persona struct {
	users   port.UserRepository
	filter  *service.Filter
	sender  port.MessageSender
	command string
}

func NewPersona(users port.UserRepository, filter *service.Filter, sender port.MessageSender, command string) *Persona {
	return &Persona{users: users, filter: filter, sender: sender, command: command}
}

func (h *Persona) GetCommand() string {
	return h.command
}

func (h *Persona) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	persona := strings.TrimSpace(message.Text)
	if persona == "" {
		_, err := h.sender.SendReply(ctx, message,
			sysMsg("Персону, как и инструкции, желательно писать на английском!"+
				"\nПример: !персона I'm Hu Tao. I work in Wangsheng Funeral Parlor"+
				" together with Zhongli. I have very long brown twintail hair and flower-shaped"+
				" pupils."), nil)
		return err
	}

	exists, err := h.users.Exists(ctx, message.SenderID)
	if err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("checking account: %w", err), message)
	}
	if !exists {
		_, err := h.sender.SendReply(ctx, message, needAccountMsg(), nil)
		return err
	}

	if err := h.filter.ScreenOutgoing(ctx, persona); err != nil {
		if msg := moderationFailMsg(err); msg != "" {
			_, sendErr := h.sender.SendReply(ctx, message, msg, nil)
			return sendErr
		}
		return h.sender.NotifyAndReturnError(ctx, err, message)
	}

	if err := h.users.UpdateField(ctx, message.SenderID, domain.UserFieldPersona, persona); err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("setting persona: %w", err), message)
	}

	_, err = h.sender.SendReply(ctx, message, sysMsg("Вы успешно установили персону!"), nil)
	return err
}

// MyPersona shows the account's persona.
type MyPersona struct {
	users   port.UserRepository
	sender  port.MessageSender
	command string
}

func NewMyPersona(users port.UserRepository, sender port.MessageSender, command string) *MyPersona {
	return &MyPersona{users: users, sender: sender, command: command}
}

func (h *MyPersona) GetCommand() string {
	return h.command
}

func (h *MyPersona) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	account, err := h.users.Get(ctx, message.SenderID)
	if err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("loading account: %w", err), message)
	}
	if account == nil {
		_, err := h.sender.SendReply(ctx, message, needAccountMsg(), nil)
		return err
	}

	text := sysMsg("У вас ещё не установлена персона!")
	if account.Persona != "" {
		text = sysMsg("Вот ваша персона: " + account.Persona)
	}
	_, err = h.sender.SendReply(ctx, message, text, nil)
	return err
}

// PersonaDelete clears the account's persona.
type PersonaDelete struct {
	users   port.UserRepository
	sender  port.MessageSender
	command string
}

func NewPersonaDelete(users port.UserRepository, sender port.MessageSender, command string) *PersonaDelete {
	return &PersonaDelete{users: users, sender: sender, command: command}
}

func (h *PersonaDelete) GetCommand() string {
	return h.command
}

func (h *PersonaDelete) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
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

	if err := h.users.UpdateField(ctx, message.SenderID, domain.UserFieldPersona, ""); err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("clearing persona: %w", err), message)
	}

	_, err = h.sender.SendReply(ctx, message, sysMsg("Персона успешно удалена!"), nil)
	return err
}
