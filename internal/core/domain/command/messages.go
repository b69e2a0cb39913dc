package command

import (
	"errors"
	"fmt"

	"moodbot/internal/core/domain"

	"github.com/spf13/viper"
)

// sysMsg prefixes a user-facing message with the configured system emoji.
func sysMsg(text string) string {
	return viper.GetString("bot.system_emoji") + " " + text
}

func needAccountMsg() string {
	return sysMsg("Для этого нужен аккаунт! Создайте его командой \"!начать\"")
}

// moderationFailMsg maps a screening error to its stable user-facing
// message. Returns "" for errors that are not content-policy rejections.
func moderationFailMsg(err error) string {
	var quota *domain.QuotaExceededError
	if errors.As(err, &quota) {
		return sysMsg(fmt.Sprintf(
			"В сообщении более %d токенов (%d)! Используйте меньше слов.",
			quota.Limit, quota.Count))
	}

	if errors.Is(err, domain.ErrBannedPhrase) {
		return sysMsg("Попробуй поговорить о чем-то другом. Поможет в развитии.")
	}

	if errors.Is(err, domain.ErrModerationUnavailable) {
		return sysMsg("Произошла ошибка во время модерации текста. Попробуйте позже.")
	}

	var rejected *domain.ContentRejectedError
	if errors.As(err, &rejected) {
		return sysMsg(fmt.Sprintf(
			"Лил бро попытался забанить меня, но у него ничего не получилось :(\n"+
				"Запрос нарушает правила OpenAI: %s", rejected.Reason))
	}

	return ""
}
