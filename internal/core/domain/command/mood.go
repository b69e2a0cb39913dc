package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"moodbot/internal/core/domain"
	"moodbot/internal/core/port"
	"moodbot/internal/core/service"

	"github.com/spf13/viper"
)

// Mood shows a mood card for a numeric argument, and edits a mood's fields
// otherwise: "имя"/"название", "описание", "видимость" and "инструкции",
// each followed by the mood id. Text fields are re-screened before they are
// persisted.
type Mood struct {
	users       port.UserRepository
	moods       port.MoodRepository
	generations port.GenerationRepository
	filter      *service.Filter
	sender      port.MessageSender
	command     string
}

type MoodParams struct {
	Users       port.UserRepository
	Moods       port.MoodRepository
	Generations port.GenerationRepository
	Filter      *service.Filter
	Sender      port.MessageSender
	Command     string
}

func NewMood(p MoodParams) *Mood {
	return &Mood{
		users:       p.Users,
		moods:       p.Moods,
		generations: p.Generations,
		filter:      p.Filter,
		sender:      p.Sender,
		command:     p.Command,
	}
}

func (h *Mood) GetCommand() string {
	return h.command
}

func (h *Mood) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := strings.TrimSpace(message.Text)
	if args == "" {
		_, err := h.sender.SendReply(ctx, message,
			sysMsg("Ты чет не то написал, броу!\nДоступные параметры: имя, описание, видимость"), nil)
		return err
	}

	if moodID, err := strconv.ParseInt(args, 10, 64); err == nil {
		return h.showInfo(ctx, message, moodID)
	}
	return h.edit(ctx, message, args)
}

func (h *Mood) showInfo(ctx context.Context, message *domain.Message, moodID int64) error {
	mood, err := h.moods.Get(ctx, moodID)
	if err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("loading mood: %w", err), message)
	}
	if mood == nil || (mood.IsPrivate && mood.OwnerID != message.SenderID && !isAdmin(message.SenderID)) {
		_, err := h.sender.SendReply(ctx, message,
			sysMsg("Айди с таким мудом не существует или он приватный!"), nil)
		return err
	}

	uses, err := h.generations.CountByMood(ctx, mood.ID)
	if err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("counting generations: %w", err), message)
	}

	description := mood.Description
	if description == "" {
		description = "<Нету>"
	}

	kbd := domain.NewKeyboard([]domain.Button{
		{Label: "Выбрать этот муд", Command: fmt.Sprintf("!выбрать муд %d", mood.ID)},
	})
	_, err = h.sender.SendReply(ctx, message,
		sysMsg(fmt.Sprintf("Муд от пользователя - id: %d"+
			"\n👀 | Всего генераций: %d"+
			"\n👤 | Имя: %s"+
			"\n🗒 | Описание: %s"+
			"\n🤖 | Инструкции: %s",
			mood.ID, uses, mood.Name, description, mood.Instructions)), kbd)
	return err
}

func (h *Mood) edit(ctx context.Context, message *domain.Message, args string) error {
	exists, err := h.users.Exists(ctx, message.SenderID)
	if err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("checking account: %w", err), message)
	}
	if !exists {
		_, err := h.sender.SendReply(ctx, message,
			sysMsg("Что ты там менять собрался? У тебя даже аккаунта нет!"+
				"\n... Поэтому можешь его создать командой \"!начать\"."), nil)
		return err
	}

	params := strings.Fields(args)
	if len(params) < 2 {
		_, err := h.sender.SendReply(ctx, message,
			sysMsg("Ты чет не то написал, броу!\nДоступные параметры: имя, описание, видимость"), nil)
		return err
	}
	moodID, err := strconv.ParseInt(params[1], 10, 64)
	if err != nil {
		_, err := h.sender.SendReply(ctx, message,
			sysMsg("Ты чет не то написал, броу!\nДоступные параметры: имя, описание, видимость"), nil)
		return err
	}

	mood, err := h.moods.Get(ctx, moodID)
	if err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("loading mood: %w", err), message)
	}
	if mood == nil || mood.OwnerID != message.SenderID {
		_, err := h.sender.SendReply(ctx, message,
			sysMsg("Гений, это не твой муд! Сделай его копию и меняй как хочешь."), nil)
		return err
	}

	value := strings.Join(params[2:], " ")

	var field domain.MoodField
	var success string
	switch params[0] {
	case "имя", "название":
		field, success = domain.MoodFieldName, "Вы успешно поменяли название муда!"
	case "описание":
		field, success = domain.MoodFieldDescription, "Вы успешно поменяли описание муда!"
	case "инструкции":
		field, success = domain.MoodFieldInstructions, "Вы успешно поменяли инструкции муда!"
	case "видимость":
		newPrivate := !mood.IsPrivate
		status := "публичный"
		if newPrivate {
			status = "приватный"
		}
		if err := h.moods.UpdateField(ctx, moodID, domain.MoodFieldIsPrivate, newPrivate); err != nil {
			return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("updating mood: %w", err), message)
		}
		_, err := h.sender.SendReply(ctx, message,
			sysMsg(fmt.Sprintf("Вы успешно поменяли видимость муда на \"%s\"", status)), nil)
		return err
	default:
		_, err := h.sender.SendReply(ctx, message,
			sysMsg("Эээ... Что? Такого параметра нету, уж извини!"), nil)
		return err
	}

	if err := h.filter.ScreenOutgoing(ctx, value); err != nil {
		if msg := moderationFailMsg(err); msg != "" {
			_, sendErr := h.sender.SendReply(ctx, message, msg, nil)
			return sendErr
		}
		return h.sender.NotifyAndReturnError(ctx, err, message)
	}

	if err := h.moods.UpdateField(ctx, moodID, field, value); err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("updating mood: %w", err), message)
	}
	_, err = h.sender.SendReply(ctx, message, sysMsg(success), nil)
	return err
}

func isAdmin(userID int64) bool {
	return userID == viper.GetInt64("bot.admin_id")
}
