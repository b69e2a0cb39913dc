package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"moodbot/internal/core/domain"
	"moodbot/internal/core/port"

	"github.com/spf13/viper"
)

// Settings shows the account's current mood and model with a shortcut
// keyboard.
type Settings struct {
	users   port.UserRepository
	moods   port.MoodRepository
	sender  port.MessageSender
	models  []domain.ModelDescriptor
	command string
}

func NewSettings(users port.UserRepository, moods port.MoodRepository, sender port.MessageSender, models []domain.ModelDescriptor, command string) *Settings {
	return &Settings{users: users, moods: moods, sender: sender, models: models, command: command}
}

func (h *Settings) GetCommand() string {
	return h.command
}

func (h *Settings) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
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

	mood, err := h.moods.CurrentFor(ctx, message.SenderID)
	if err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("loading mood: %w", err), message)
	}
	if mood == nil {
		mood, err = h.moods.Get(ctx, domain.DefaultMoodID)
		if err != nil || mood == nil {
			return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("loading default mood: %w", err), message)
		}
	}

	_, err = h.sender.SendReply(ctx, message,
		fmt.Sprintf("%s\n🤖 | Текущая модель: %s",
			sysMsg(fmt.Sprintf("| Текущий муд: %s (id: %d)", mood.Name, mood.ID)),
			h.modelLabel(account.CurrentModelID)),
		domain.NewKeyboard(
			[]domain.Button{{Label: "Поменять муд", Command: "!муды"}},
			[]domain.Button{{Label: "Поменять модель", Command: "!модели"}},
		))
	return err
}

func (h *Settings) modelLabel(id string) string {
	if id == "" {
		id = viper.GetString("chat.default_model_id")
	}
	model := domain.FindModelByID(h.models, id)
	if model == nil {
		if strings.Contains(id, "/") {
			// custom model resolved live at selection time
			return id
		}
		return "???"
	}

	name := model.Name
	if model.Deprecation != nil && model.Deprecation.Warning {
		name += " ⚠️"
	}
	if model.DisplayName != "" {
		return fmt.Sprintf("%s (%s)", model.DisplayName, name)
	}
	return name
}
