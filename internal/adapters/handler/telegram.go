package handler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"moodbot/internal/core/domain"
	"moodbot/internal/core/domain/command"
	"moodbot/internal/core/port"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

// Telegram turns bot updates into command dispatches. Keyboard callbacks
// carry command text in their payload and go through the same registry as
// typed commands.
type Telegram struct {
	registry port.CommandRegistry
	timeout  time.Duration
	botID    int64
}

func NewTelegram(registry port.CommandRegistry, timeout time.Duration, botID int64) *Telegram {
	return &Telegram{registry: registry, timeout: timeout, botID: botID}
}

func (h *Telegram) Handle(_ context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	m := update.Message
	h.dispatch(m.Text, &domain.Message{
		Platform:    domain.PlatformTelegram,
		ID:          m.ID,
		ChatID:      m.Chat.ID,
		SenderID:    m.From.ID,
		SenderName:  displayName(m.From),
		BotIdentity: strconv.FormatInt(h.botID, 10),
	}, m.ReplyToMessage)
}

func (h *Telegram) HandleCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil || cb.Data == "" {
		return
	}

	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID})
	if err != nil {
		log.Err(err).Msg("failed to answer callback query")
	}

	var chatID int64
	if cb.Message.Message != nil {
		chatID = cb.Message.Message.Chat.ID
	}

	h.dispatch(cb.Data, &domain.Message{
		Platform:    domain.PlatformTelegram,
		ChatID:      chatID,
		SenderID:    cb.From.ID,
		SenderName:  displayName(&cb.From),
		BotIdentity: strconv.FormatInt(h.botID, 10),
	}, nil)
}

func (h *Telegram) dispatch(text string, message *domain.Message, reply *models.Message) {
	handler, pattern, err := h.registry.Match(text)
	if err != nil {
		return
	}

	if reply != nil {
		message.ReplyText = reply.Text
		if reply.From != nil {
			message.ReplySenderID = strconv.FormatInt(reply.From.ID, 10)
			message.ReplySenderName = displayName(reply.From)
		}
	}
	message.Text = command.ParseArgs(text, pattern)

	reqID, _ := uuid.NewV4()
	logger := log.With().Str("requestId", reqID.String()).Str("command", pattern).
		Str("platform", string(message.Platform)).Logger()
	logger.Debug().Int64("senderId", message.SenderID).Msg("dispatching command")

	go func() {
		if err := handler.Respond(context.Background(), h.timeout, message); err != nil {
			logger.Err(err).Msg("failed to respond to command")
		}
	}()
}

func displayName(user *models.User) string {
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		name = user.Username
	}
	return name
}
