package sender

import (
	"context"

	"moodbot/internal/core/domain"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type TelegramSender struct {
	bot *bot.Bot
}

func NewTelegramSender(bot *bot.Bot) *TelegramSender {
	return &TelegramSender{bot: bot}
}

func (s *TelegramSender) SendReply(ctx context.Context, message *domain.Message, text string, kbd *domain.Keyboard) (int, error) {
	params := &bot.SendMessageParams{
		ChatID: message.ChatID,
		Text:   text,
	}
	if message.ID != 0 {
		params.ReplyParameters = &models.ReplyParameters{
			MessageID: message.ID,
			ChatID:    message.ChatID,
		}
	}
	if kbd != nil {
		params.ReplyMarkup = toInlineKeyboard(kbd)
	}

	sent, err := s.bot.SendMessage(ctx, params)
	if err != nil {
		return 0, err
	}
	return sent.ID, nil
}

func (s *TelegramSender) SendTyping(ctx context.Context, message *domain.Message) {
	_, err := s.bot.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: message.ChatID,
		Action: models.ChatActionTyping,
	})
	if err != nil {
		log.Err(err).Int64("chatId", message.ChatID).Msg("error sending chat action")
	}
}

func (s *TelegramSender) NotifyAndReturnError(ctx context.Context, err error, message *domain.Message) error {
	log.Err(err).Int64("chatId", message.ChatID).Msg("command failed")
	_, sendErr := s.SendReply(ctx, message,
		viper.GetString("bot.system_emoji")+" Чет пошло не так. Попробуйте позже.", nil)
	if sendErr != nil {
		log.Err(sendErr).Msg("failed to notify user about error")
	}
	return err
}

// toInlineKeyboard maps the platform-neutral keyboard onto Telegram inline
// buttons; the button's command text travels as the callback payload.
func toInlineKeyboard(kbd *domain.Keyboard) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(kbd.Rows))
	for _, row := range kbd.Rows {
		buttons := make([]models.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, models.InlineKeyboardButton{
				Text:         b.Label,
				CallbackData: b.Command,
			})
		}
		rows = append(rows, buttons)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}
