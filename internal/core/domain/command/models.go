package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"moodbot/internal/core/domain"
	"moodbot/internal/core/port"
)

// ModelList shows the catalog, deprecated entries excluded.
type ModelList struct {
	sender  port.MessageSender
	models  []domain.ModelDescriptor
	command string
}

func NewModelList(sender port.MessageSender, models []domain.ModelDescriptor, command string) *ModelList {
	return &ModelList{sender: sender, models: models, command: command}
}

func (h *ModelList) GetCommand() string {
	return h.command
}

func (h *ModelList) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var b strings.Builder
	b.WriteString(sysMsg("Вот все текущие доступные модели бота:"))
	for _, m := range h.models {
		if m.Deprecation != nil && m.Deprecation.IsDeprecated {
			continue
		}
		b.WriteString(fmt.Sprintf("\n• %s (id: %s)", m.Name, m.ID))
		if m.Price > 0 {
			b.WriteString(fmt.Sprintf(" - %d 🍣", m.Price))
		}
		if m.Deprecation != nil && m.Deprecation.Warning {
			b.WriteString(" ⚠️")
		}
	}
	b.WriteString("\n\nВыбрать модель можно с помощью команды \"!модель <её айди>\"")

	_, err := h.sender.SendReply(ctx, message, b.String(), nil)
	return err
}

// ModelSet selects a model by catalog id, or by a free-form "vendor/model"
// id resolved live against the provider's listing. Only free custom models
// are accepted.
type ModelSet struct {
	users   port.UserRepository
	catalog port.ModelCatalog
	sender  port.MessageSender
	models  []domain.ModelDescriptor
	command string
}

type ModelSetParams struct {
	Users   port.UserRepository
	Catalog port.ModelCatalog
	Sender  port.MessageSender
	Models  []domain.ModelDescriptor
	Command string
}

func NewModelSet(p ModelSetParams) *ModelSet {
	return &ModelSet{
		users:   p.Users,
		catalog: p.Catalog,
		sender:  p.Sender,
		models:  p.Models,
		command: p.Command,
	}
}

func (h *ModelSet) GetCommand() string {
	return h.command
}

func (h *ModelSet) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
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

	id := strings.TrimSpace(message.Text)
	if isDigits(id) {
		return h.setCatalogModel(ctx, message, id)
	}
	return h.setCustomModel(ctx, message, id)
}

func (h *ModelSet) setCatalogModel(ctx context.Context, message *domain.Message, id string) error {
	model := domain.FindModelByID(h.models, id)
	if model == nil {
		_, err := h.sender.SendReply(ctx, message,
			sysMsg("Модели с таким айди пока не существует!"), nil)
		return err
	}
	if model.Deprecation != nil && model.Deprecation.IsDeprecated {
		_, err := h.sender.SendReply(ctx, message,
			sysMsg(fmt.Sprintf("Модель %s устарела и больше не поддерживается,"+
				" пожалуйста выберите другую!", model.Name)), nil)
		return err
	}

	if err := h.users.UpdateField(ctx, message.SenderID, domain.UserFieldModel, id); err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("setting model: %w", err), message)
	}

	msg := sysMsg(fmt.Sprintf("Вы успешно установили модель %s!", model.Name))
	if model.Deprecation != nil && model.Deprecation.Warning {
		msg += "\n\n⚠️ Внимание: выбранная модель устарела и скоро будет удалена из бота. " +
			"Используйте другую модель."
	}
	if model.BadRussian {
		msg += "\n\n⚠️ Внимание: выбранная модель была в основном натренирована на английских" +
			" данных и с русским работает очень плохо. Рекомендуется использовать английский" +
			" для данной модели."
	}

	_, err := h.sender.SendReply(ctx, message, msg, nil)
	return err
}

func (h *ModelSet) setCustomModel(ctx context.Context, message *domain.Message, id string) error {
	if len(strings.Split(id, "/")) != 2 {
		return nil
	}

	model, err := h.catalog.FindModel(ctx, id)
	if err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("resolving model: %w", err), message)
	}
	if model == nil {
		_, err := h.sender.SendReply(ctx, message,
			sysMsg("Такой модели на OpenRouter не существует!"), nil)
		return err
	}
	if !model.IsFree() {
		prompt, completion := model.PricePerMillion()
		_, err := h.sender.SendReply(ctx, message,
			sysMsg(fmt.Sprintf("При выборе кастомной модели можно устанавливать только бесплатные модели,"+
				" а эта стоит аж $%g/М токенов + $%g/М токенов! Дорого!!", prompt, completion)), nil)
		return err
	}

	if err := h.users.UpdateField(ctx, message.SenderID, domain.UserFieldModel, id); err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("setting model: %w", err), message)
	}

	msg := sysMsg(fmt.Sprintf("Вы успешно установили модель %s!", model.Name)) +
		fmt.Sprintf("\n\n⚠️ Внимание: вы выбрали кастомную модель с OpenRouter (%s)."+
			" Делать это не рекомендуется, так как качество и работа с русским кастомных моделей"+
			" может сильно варьироваться. Используйте её только если вы знаете, что делаете.", model.ID)

	_, err = h.sender.SendReply(ctx, message, msg, nil)
	return err
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
