package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"moodbot/internal/core/domain"
	"moodbot/internal/core/port"
	"moodbot/internal/core/service"

	"github.com/spf13/viper"
)

// Tokenize counts tokens in the given text (or the replied-to message) and
// reports an indicative cost.
type Tokenize struct {
	estimator service.Estimator
	sender    port.MessageSender
	command   string
}

func NewTokenize(estimator service.Estimator, sender port.MessageSender, command string) *Tokenize {
	return &Tokenize{estimator: estimator, sender: sender, command: command}
}

func (h *Tokenize) GetCommand() string {
	return h.command
}

func (h *Tokenize) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text := strings.TrimSpace(message.Text)
	if text == "" {
		text = message.ReplyText
	}
	if text == "" {
		_, err := h.sender.SendReply(ctx, message, sysMsg("Эээ... А что токенизировать то?"), nil)
		return err
	}

	family := service.ModelFamily(viper.GetString("bot.token_family"))
	count, err := h.estimator.Estimate(text, family)
	if err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("estimating tokens: %w", err), message)
	}

	cost := float64(count) / 1000 * 0.0015
	_, err = h.sender.SendReply(ctx, message,
		sysMsg(fmt.Sprintf("В сообщении %d токен%s ($%.5f)!", count, tokenEnding(count), cost)), nil)
	return err
}

func tokenEnding(n int) string {
	switch {
	case n == 1:
		return ""
	case n < 5:
		return "а"
	default:
		return "ов"
	}
}
