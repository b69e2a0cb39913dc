package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const botID = "-205906217"

func TestRenderStructuredRolesAndOrder(t *testing.T) {
	conv := NewConversation(ChatMessage{Text: "как дела?", SenderID: "42", SenderName: "Ivan"})
	require.NoError(t, conv.Prepend(ChatMessage{Text: "🤖 неплохо", SenderID: botID, SenderName: "Бот"}))

	p := Prompt{
		Headers: []ChatMessage{{Text: "You are a helpful assistant."}},
		Convo:   conv,
		AIMarker: "🤖",
	}

	entries := p.RenderStructured(botID)

	require.Len(t, entries, 3)
	assert.Equal(t, RoleSystem, entries[0].Role)
	assert.Equal(t, "You are a helpful assistant.", entries[0].Content)
	assert.Equal(t, RoleAssistant, entries[1].Role)
	assert.Equal(t, "неплохо", entries[1].Content, "assistant marker must be stripped")
	assert.Equal(t, RoleUser, entries[2].Role)
	assert.Equal(t, "Ivan: как дела?", entries[2].Content)
}

func TestRenderStructuredExactIdentityMatch(t *testing.T) {
	// a sender id that is a substring of the bot id is still a user
	conv := NewConversation(ChatMessage{Text: "hi", SenderID: "2059", SenderName: "Sub"})

	p := Prompt{Convo: conv}
	entries := p.RenderStructured(botID)

	require.Len(t, entries, 1)
	assert.Equal(t, RoleUser, entries[0].Role)
}

func TestRenderStructuredEntryCount(t *testing.T) {
	conv := NewConversation(ChatMessage{Text: "a", SenderID: "1"})
	require.NoError(t, conv.Prepend(ChatMessage{Text: "b", SenderID: "2"}))

	p := Prompt{
		Headers: []ChatMessage{{Text: "one"}, {Text: "two"}},
		Convo:   conv,
	}

	assert.Len(t, p.RenderStructured(botID), 4)
}

func TestRenderStructuredAssistantDropsName(t *testing.T) {
	conv := NewConversation(ChatMessage{Text: "reply", SenderID: botID, SenderName: "Бот"})

	p := Prompt{Convo: conv}
	entries := p.RenderStructured(botID)

	require.Len(t, entries, 1)
	assert.Equal(t, "reply", entries[0].Content)
}
