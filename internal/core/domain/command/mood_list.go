package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"moodbot/internal/core/domain"
	"moodbot/internal/core/port"
)

const moodPageSize = 15

// MoodList shows the public moods sorted by popularity, paginated with
// arrow buttons. The optional argument is the item offset of the requested
// page, carried by the arrow button commands.
type MoodList struct {
	moods   port.MoodRepository
	sender  port.MessageSender
	command string
}

func NewMoodList(moods port.MoodRepository, sender port.MessageSender, command string) *MoodList {
	return &MoodList{moods: moods, sender: sender, command: command}
}

func (h *MoodList) GetCommand() string {
	return h.command
}

func (h *MoodList) Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	offset, _ := strconv.Atoi(strings.TrimSpace(message.Text))
	if offset < 0 {
		offset = 0
	}

	moods, err := h.moods.ListPublic(ctx)
	if err != nil {
		return h.sender.NotifyAndReturnError(ctx, fmt.Errorf("listing moods: %w", err), message)
	}
	if len(moods) == 0 {
		_, err := h.sender.SendReply(ctx, message,
			sysMsg("Публичных мудов в боте пока не существует!"), nil)
		return err
	}
	if offset >= len(moods) {
		offset = 0
	}

	end := offset + moodPageSize
	if end > len(moods) {
		end = len(moods)
	}

	var b strings.Builder
	b.WriteString(sysMsg("Все публичные муды:"))
	for _, m := range moods[offset:end] {
		b.WriteString(fmt.Sprintf("\n• %s (id: %d)", m.Mood.Name, m.Mood.ID))
		if m.Uses > 0 {
			b.WriteString(fmt.Sprintf(" - 👀 %d", m.Uses))
		}
	}

	var arrows []domain.Button
	if offset > 0 {
		arrows = append(arrows, domain.Button{Label: "⬅️", Command: fmt.Sprintf("%s %d", h.command, offset-moodPageSize)})
	}
	if end < len(moods) {
		arrows = append(arrows, domain.Button{Label: "➡️", Command: fmt.Sprintf("%s %d", h.command, offset+moodPageSize)})
	}

	var kbd *domain.Keyboard
	if len(arrows) > 0 {
		kbd = domain.NewKeyboard(arrows)
	}

	_, err = h.sender.SendReply(ctx, message, b.String(), kbd)
	return err
}
