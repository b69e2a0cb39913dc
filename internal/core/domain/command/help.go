package command

import (
	"context"
	"strings"
	"time"

	"moodbot/internal/core/domain"
	"moodbot/internal/core/port"
)

type Help struct {
	sender  port.MessageSender
	command string
}

func NewHelp(sender port.MessageSender, command string) *Help {
	return &Help{sender: sender, command: command}
}

func (h *Help) GetCommand() string {
	return h.command
}

func (h *Help) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var b strings.Builder
	b.WriteString(sysMsg("Команды бота:\n\n"))
	b.WriteString("!начать — создать аккаунт\n")
	b.WriteString("!gpt <текст> — спросить бота (или ответьте на сообщение)\n")
	b.WriteString("!токены <текст> — посчитать токены в тексте\n")
	b.WriteString("!настройки — текущий муд и модель\n")
	b.WriteString("!муды — список публичных мудов\n")
	b.WriteString("!мои муды — ваши муды\n")
	b.WriteString("!муд <id> — информация о муде\n")
	b.WriteString("!создать муд — создать свой муд\n")
	b.WriteString("!выбрать муд <id> — выбрать муд\n")
	b.WriteString("!удалить муд <id> — удалить свой муд\n")
	b.WriteString("!персона <текст> — задать свою персону\n")
	b.WriteString("!моя персона — показать персону\n")
	b.WriteString("!удалить персону — сбросить персону\n")
	b.WriteString("!модели — список моделей\n")
	b.WriteString("!модель <номер> — выбрать модель\n")
	b.WriteString("!удалить гпт — удалить аккаунт")

	_, err := h.sender.SendReply(ctx, message, b.String(), nil)
	return err
}
