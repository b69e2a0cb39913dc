package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"moodbot/internal/core/domain"
	"moodbot/internal/core/port"
	"moodbot/internal/core/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// AI runs the full query flow: claim an in-flight slot, rebuild the
// conversation, moderate it, assemble and render the prompt, call the
// provider, post-process the response and persist a generation record.
type AI struct {
	users       port.UserRepository
	moods       port.MoodRepository
	generations port.GenerationRepository
	completer   port.Completer
	templates   port.TemplateRenderer
	filter      *service.Filter
	inFlight    *service.InFlight
	sender      port.MessageSender
	models      []domain.ModelDescriptor
	command     string
	l           *zerolog.Logger
}

type AIParams struct {
	Users       port.UserRepository
	Moods       port.MoodRepository
	Generations port.GenerationRepository
	Completer   port.Completer
	Templates   port.TemplateRenderer
	Filter      *service.Filter
	InFlight    *service.InFlight
	Sender      port.MessageSender
	Models      []domain.ModelDescriptor
	Command     string
}

func NewAI(p AIParams) *AI {
	logger := log.With().Str("command", p.Command).Str("handler", "ai").Logger()
	return &AI{
		users:       p.Users,
		moods:       p.Moods,
		generations: p.Generations,
		completer:   p.Completer,
		templates:   p.Templates,
		filter:      p.Filter,
		inFlight:    p.InFlight,
		sender:      p.Sender,
		models:      p.Models,
		command:     p.Command,
		l:           &logger,
	}
}

func (h *AI) GetCommand() string {
	return h.command
}

func (h *AI) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	account, err := h.users.Get(ctx, message.SenderID)
	if err != nil {
		return h.sendError(ctx, fmt.Errorf("loading account: %w", err), message)
	}
	if account == nil {
		_, err := h.sender.SendReply(ctx, message,
			sysMsg("У вас нет аккаунта! Аккаунт в этом боте можно создать, написав команду \"!начать\""), nil)
		return err
	}

	if !h.inFlight.Claim(message.SenderID) {
		_, err := h.sender.SendReply(ctx, message,
			sysMsg("Вы уже в очереди, пожалуйста, подождите."), nil)
		return err
	}
	defer h.inFlight.Release(message.SenderID)

	conv, errMsg := buildConversation(message)
	if errMsg != "" {
		_, err := h.sender.SendReply(ctx, message, errMsg, nil)
		return err
	}

	model, stop, err := h.resolveModel(ctx, account)
	if err != nil {
		return h.sendError(ctx, err, message)
	}
	if stop != "" {
		_, err := h.sender.SendReply(ctx, message, stop, nil)
		return err
	}
	if model.Deprecation != nil && model.Deprecation.IsDeprecated {
		_, err := h.sender.SendReply(ctx, message,
			sysMsg(fmt.Sprintf("Выбранная модель (%s) устарела. Пожалуйста, выберите другую"+
				" через команду \"!модель <айди модели>\". Посмотреть все модели можно командой \"!модели\"", model.Name)), nil)
		return err
	}

	h.sender.SendTyping(ctx, message)

	if err := h.filter.ScreenOutgoing(ctx, conv.Render(false)); err != nil {
		if msg := moderationFailMsg(err); msg != "" {
			_, sendErr := h.sender.SendReply(ctx, message, msg, nil)
			return sendErr
		}
		return h.sendError(ctx, err, message)
	}

	mood, err := h.currentMood(ctx, message.SenderID)
	if err != nil {
		return h.sendError(ctx, err, message)
	}

	aiEmoji := viper.GetString("bot.ai_emoji")
	system := service.BuildSystemPrompt(
		viper.GetString("chat.system_prompt"),
		viper.GetString("chat.persona_prompt"),
		mood.Instructions,
		account.Persona,
	)
	prompt := domain.Prompt{
		Headers:  []domain.ChatMessage{{Text: system}},
		Convo:    conv,
		AIMarker: aiEmoji,
	}

	req, err := h.buildRequest(prompt, model, message.BotIdentity)
	if err != nil {
		return h.sendError(ctx, fmt.Errorf("rendering prompt: %w", err), message)
	}

	h.l.Debug().Int64("userId", message.SenderID).Str("model", model.Name).
		Int64("moodId", mood.ID).Msg("requesting completion")

	raw, err := h.completer.Complete(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrNoChoices) {
			_, sendErr := h.sender.SendReply(ctx, message,
				sysMsg("Ответ от бота был съеден. Все равно он был невкусный (попробуйте ещё раз)."), nil)
			return sendErr
		}
		return h.sendError(ctx, fmt.Errorf("completion: %w", err), message)
	}

	final, err := h.filter.Finalize(raw)
	if err != nil {
		_, sendErr := h.sender.SendReply(ctx, message,
			sysMsg("В результате оказалось слово из черного списка. Спасибо, что потратил мои 0.0020 центов."), nil)
		return sendErr
	}

	if _, err := h.generations.Add(ctx, domain.GenerationRecord{
		Response:  final,
		UserID:    message.SenderID,
		ModelName: model.Name,
		MoodID:    &mood.ID,
	}); err != nil {
		h.l.Warn().Err(err).Msg("failed to persist generation record")
	}

	_, err = h.sender.SendReply(ctx, message, aiEmoji+" "+final, nil)
	return err
}

// buildConversation rebuilds the turn sequence from the triggering message
// and its optional reply context. Returns a user-facing message instead of a
// conversation when there is nothing to respond to.
func buildConversation(message *domain.Message) (*domain.Conversation, string) {
	args := strings.TrimSpace(message.Text)

	reply := domain.ChatMessage{
		Text:       message.ReplyText,
		SenderID:   message.ReplySenderID,
		SenderName: message.ReplySenderName,
	}
	if reply.SenderID != "" && reply.SenderName == "" {
		reply.SenderName = "Anonymous"
	}

	if args == "" {
		if reply.SenderID == "" || reply.Text == "" {
			return nil, sysMsg("Напишите запрос после команды или ответьте на сообщение.")
		}
		return domain.NewConversation(reply), ""
	}

	conv := domain.NewConversation(domain.ChatMessage{
		Text:       args,
		SenderID:   strconv.FormatInt(message.SenderID, 10),
		SenderName: message.SenderName,
	})
	if reply.SenderID != "" {
		if err := conv.Prepend(reply); err != nil {
			return nil, sysMsg("В сообщении, на которое вы ответили, нет текста.")
		}
	}
	return conv, ""
}

// resolveModel maps the account's stored model id onto a descriptor. A
// stored id that no longer resolves resets the account to the default model
// and returns a stop message; the user has to re-send the request. Custom
// ids keep working as long as they were accepted at selection time.
func (h *AI) resolveModel(ctx context.Context, account *domain.UserAccount) (*domain.ModelDescriptor, string, error) {
	id := account.CurrentModelID
	if id == "" {
		id = viper.GetString("chat.default_model_id")
	}

	if model := domain.FindModelByID(h.models, id); model != nil {
		return model, "", nil
	}

	if strings.Contains(id, "/") {
		return &domain.ModelDescriptor{
			ID:          id,
			Name:        id,
			DisplayName: id,
			Source:      domain.SourceRemote,
		}, "", nil
	}

	h.l.Warn().Int64("userId", account.ID).Str("modelId", id).
		Msg("stored model no longer exists, resetting to default")

	defaultID := viper.GetString("chat.default_model_id")
	model := domain.FindModelByID(h.models, defaultID)
	if model == nil {
		return nil, "", fmt.Errorf("%w: default model %q missing from catalog", domain.ErrUnknownModel, defaultID)
	}
	if err := h.users.UpdateField(ctx, account.ID, domain.UserFieldModel, defaultID); err != nil {
		return nil, "", fmt.Errorf("resetting model: %w", err)
	}
	stop := sysMsg(fmt.Sprintf("Модели, которая у вас сейчас установлена, больше"+
		" не существует. Мы автоматически поменяли её на модель по умолчанию (%s)."+
		"\nПопробуйте ввести команду ещё раз, или выберите другую модель в списке \"!модели\"", model.Name))
	return model, stop, nil
}

// currentMood resolves the user's mood, failing over to the default mood
// when the selection points at a deleted row.
func (h *AI) currentMood(ctx context.Context, userID int64) (*domain.Mood, error) {
	mood, err := h.moods.CurrentFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading mood: %w", err)
	}
	if mood != nil {
		return mood, nil
	}
	mood, err = h.moods.Get(ctx, domain.DefaultMoodID)
	if err != nil {
		return nil, fmt.Errorf("loading default mood: %w", err)
	}
	if mood == nil {
		return nil, fmt.Errorf("default mood missing")
	}
	return mood, nil
}

func (h *AI) buildRequest(prompt domain.Prompt, model *domain.ModelDescriptor, botIdentity string) (domain.CompletionRequest, error) {
	maxTokens := viper.GetInt("bot.max_response_tokens")
	entries := prompt.RenderStructured(botIdentity)

	if model.Template == "" {
		return domain.CompletionRequest{
			Model:     model.Name,
			Messages:  entries,
			MaxTokens: maxTokens,
		}, nil
	}

	flat, err := h.templates.Render(model.Template, entries)
	if err != nil {
		return domain.CompletionRequest{}, err
	}
	return domain.CompletionRequest{
		Model:     model.Name,
		Prompt:    flat,
		MaxTokens: maxTokens,
		Stop:      []string{domain.SeparatorToken},
	}, nil
}

func (h *AI) sendError(ctx context.Context, err error, message *domain.Message) error {
	return h.sender.NotifyAndReturnError(ctx, err, message)
}
