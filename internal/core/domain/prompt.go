package domain

import "strings"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// SeparatorToken terminates completion-style turns; it is also passed as a
// stop sequence when a template-rendered prompt is submitted.
const SeparatorToken = "<|endoftext|>"

// PromptEntry is one role-tagged entry of a structured render, matching the
// chat-completion wire format.
type PromptEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Prompt composes system instruction headers with a conversation.
type Prompt struct {
	Headers []ChatMessage
	Convo   *Conversation
	// AIMarker is the visual decoration the bot prefixes to its own replies.
	// It is stripped from assistant turns before they are re-submitted as
	// history, so the model does not learn to echo it.
	AIMarker string
}

// RenderStructured produces the ordered role-tagged entry list: every header
// first as a system entry, then every conversation turn. A turn is an
// assistant turn iff its sender id equals botIdentity, compared with exact
// string equality. Assistant content carries no name prefix.
func (p Prompt) RenderStructured(botIdentity string) []PromptEntry {
	entries := make([]PromptEntry, 0, len(p.Headers)+len(p.Convo.Messages))

	for _, header := range p.Headers {
		entries = append(entries, PromptEntry{
			Role:    RoleSystem,
			Content: header.Render(true),
		})
	}

	for _, m := range p.Convo.Messages {
		if m.SenderID == botIdentity {
			content := m.Render(false)
			if p.AIMarker != "" {
				content = strings.ReplaceAll(content, p.AIMarker+" ", "")
			}
			entries = append(entries, PromptEntry{
				Role:    RoleAssistant,
				Content: content,
			})
		} else {
			entries = append(entries, PromptEntry{
				Role:    RoleUser,
				Content: m.Render(true),
			})
		}
	}

	return entries
}

// CompletionRequest is the provider-facing request. Exactly one of Messages
// and Prompt is populated, depending on the selected model's render mode.
type CompletionRequest struct {
	Model     string
	Messages  []PromptEntry
	Prompt    string
	MaxTokens int
	Stop      []string
}

type ModerationResult struct {
	Flagged    bool
	Categories []string
}
