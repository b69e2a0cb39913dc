package domain

import "strings"

type Platform string

const (
	PlatformVK       Platform = "vk"
	PlatformTelegram Platform = "tg"
)

// Message is a platform-neutral incoming command event, as delivered by the
// VK and Telegram adapters.
type Message struct {
	Platform        Platform
	ID              int
	ChatID          int64
	SenderID        int64
	SenderName      string
	Text            string
	ReplyText       string
	ReplySenderID   string
	ReplySenderName string
	// BotIdentity is the platform-native id string of the bot itself, used
	// to attribute prior turns when rebuilding conversation history.
	BotIdentity string
}

// ChatMessage is a single conversation turn. Immutable once constructed.
type ChatMessage struct {
	Text       string
	SenderID   string
	SenderName string
}

// Render returns the turn's text, prefixed with "<name>: " when a display
// name is present and requested.
func (m ChatMessage) Render(inclName bool) string {
	if inclName && m.SenderName != "" {
		return m.SenderName + ": " + m.Text
	}
	return m.Text
}

// Conversation is an ordered sequence of turns. Insertion order is
// chronological, except that a replied-to message is prepended so it always
// precedes the triggering message.
type Conversation struct {
	Messages []ChatMessage
}

func NewConversation(trigger ChatMessage) *Conversation {
	return &Conversation{Messages: []ChatMessage{trigger}}
}

// Prepend inserts a reply-context message at the front. The message must
// carry text; a reply reference without resolvable text is a caller
// contract violation.
func (c *Conversation) Prepend(m ChatMessage) error {
	if m.Text == "" {
		return ErrInvalidReply
	}
	c.Messages = append([]ChatMessage{m}, c.Messages...)
	return nil
}

// Render joins all turn renders with newlines. Used as moderation input and
// for debug logging.
func (c *Conversation) Render(inclName bool) string {
	parts := make([]string, len(c.Messages))
	for i, m := range c.Messages {
		parts[i] = m.Render(inclName)
	}
	return strings.Join(parts, "\n")
}
