package command

import (
	"strings"
	"testing"
	"time"

	"moodbot/internal/core/domain"
	"moodbot/internal/core/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalogModels() []domain.ModelDescriptor {
	return []domain.ModelDescriptor{
		{ID: "1", Name: "gpt-4o-mini"},
		{ID: "2", Name: "old-model", Deprecation: &domain.Deprecation{IsDeprecated: true}},
		{ID: "3", Name: "base-model", Template: "alpaca"},
	}
}

func newAIHandler(users *MockUserRepo, moods *MockMoodRepo, completer *MockCompleter,
	templates *MockTemplates, sender *MockSender, generations *MockGenerationRepo) *AI {
	return NewAI(AIParams{
		Users:       users,
		Moods:       moods,
		Generations: generations,
		Completer:   completer,
		Templates:   templates,
		Filter:      newTestFilter(),
		InFlight:    service.NewInFlight(),
		Sender:      sender,
		Models:      testCatalogModels(),
		Command:     "!gpt",
	})
}

func defaultMood() *domain.Mood {
	return &domain.Mood{ID: 0, Name: "Ассистент", Instructions: "be helpful"}
}

func TestAISuccessStructured(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 42, CurrentModelID: "1", Persona: "Hu Tao"})
	moods := newMockMoodRepo(defaultMood())
	moods.current = defaultMood()
	completer := &MockCompleter{response: "ответ модели"}
	sender := &MockSender{}
	generations := &MockGenerationRepo{}
	h := newAIHandler(users, moods, completer, &MockTemplates{}, sender, generations)

	err := h.Respond(t.Context(), time.Minute, &domain.Message{
		Platform: domain.PlatformVK, SenderID: 42, ChatID: 42,
		SenderName: "Ivan", Text: "привет", BotIdentity: "-205906217",
	})

	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", completer.Request.Model)
	require.NotEmpty(t, completer.Request.Messages)
	assert.Equal(t, domain.RoleSystem, completer.Request.Messages[0].Role)
	assert.Contains(t, completer.Request.Messages[0].Content, "be helpful")
	assert.Contains(t, completer.Request.Messages[0].Content, "Hu Tao")
	assert.Empty(t, completer.Request.Prompt)

	assert.Equal(t, "🤖 ответ модели", sender.Last())
	require.Len(t, generations.records, 1)
	assert.Equal(t, "ответ модели", generations.records[0].Response)
	assert.Equal(t, "gpt-4o-mini", generations.records[0].ModelName)
}

func TestAITemplateModelUsesFlatPrompt(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 42, CurrentModelID: "3"})
	moods := newMockMoodRepo(defaultMood())
	moods.current = defaultMood()
	completer := &MockCompleter{response: "ok"}
	templates := &MockTemplates{rendered: "### Instruction:\nпривет\n### Response:\n"}
	sender := &MockSender{}
	h := newAIHandler(users, moods, completer, templates, sender, &MockGenerationRepo{})

	err := h.Respond(t.Context(), time.Minute, &domain.Message{
		SenderID: 42, Text: "привет", BotIdentity: "-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "alpaca", templates.Name)
	assert.Empty(t, completer.Request.Messages)
	assert.Equal(t, templates.rendered, completer.Request.Prompt)
	assert.Equal(t, []string{domain.SeparatorToken}, completer.Request.Stop)
}

func TestAIDeprecatedModelRejectedBeforeCall(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 42, CurrentModelID: "2"})
	moods := newMockMoodRepo(defaultMood())
	completer := &MockCompleter{}
	sender := &MockSender{}
	h := newAIHandler(users, moods, completer, &MockTemplates{}, sender, &MockGenerationRepo{})

	err := h.Respond(t.Context(), time.Minute, &domain.Message{SenderID: 42, Text: "привет"})

	require.NoError(t, err)
	assert.Contains(t, sender.Last(), "устарела")
	assert.Empty(t, completer.Request.Model, "no remote call for a deprecated model")
}

func TestAIMissingModelResetsToDefault(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 42, CurrentModelID: "99"})
	moods := newMockMoodRepo(defaultMood())
	completer := &MockCompleter{}
	sender := &MockSender{}
	h := newAIHandler(users, moods, completer, &MockTemplates{}, sender, &MockGenerationRepo{})

	err := h.Respond(t.Context(), time.Minute, &domain.Message{SenderID: 42, Text: "привет"})

	require.NoError(t, err)
	assert.Equal(t, "1", users.updated[domain.UserFieldModel])
	assert.Contains(t, sender.Last(), "модель по умолчанию")
	assert.Empty(t, completer.Request.Model)
}

func TestAIDeletedMoodFailsOverToDefault(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 42, CurrentModelID: "1"})
	moods := newMockMoodRepo(defaultMood())
	moods.current = nil // selected mood was deleted
	completer := &MockCompleter{response: "ok"}
	sender := &MockSender{}
	h := newAIHandler(users, moods, completer, &MockTemplates{}, sender, &MockGenerationRepo{})

	err := h.Respond(t.Context(), time.Minute, &domain.Message{SenderID: 42, Text: "привет"})

	require.NoError(t, err)
	assert.Contains(t, completer.Request.Messages[0].Content, "be helpful")
	assert.Equal(t, "🤖 ok", sender.Last())
}

func TestAIDuplicateRequestRejected(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 42, CurrentModelID: "1"})
	moods := newMockMoodRepo(defaultMood())
	h := newAIHandler(users, moods, &MockCompleter{}, &MockTemplates{}, &MockSender{}, &MockGenerationRepo{})

	require.True(t, h.inFlight.Claim(42))
	defer h.inFlight.Release(42)

	sender := &MockSender{}
	h.sender = sender
	err := h.Respond(t.Context(), time.Minute, &domain.Message{SenderID: 42, Text: "привет"})

	require.NoError(t, err)
	assert.Contains(t, sender.Last(), "уже в очереди")
}

func TestAINoChoices(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 42, CurrentModelID: "1"})
	moods := newMockMoodRepo(defaultMood())
	moods.current = defaultMood()
	completer := &MockCompleter{err: domain.ErrNoChoices}
	sender := &MockSender{}
	h := newAIHandler(users, moods, completer, &MockTemplates{}, sender, &MockGenerationRepo{})

	err := h.Respond(t.Context(), time.Minute, &domain.Message{SenderID: 42, Text: "привет"})

	require.NoError(t, err)
	assert.Contains(t, sender.Last(), "съеден")
}

func TestAIReplyPrecedesTrigger(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 42, CurrentModelID: "1"})
	moods := newMockMoodRepo(defaultMood())
	moods.current = defaultMood()
	completer := &MockCompleter{response: "ok"}
	sender := &MockSender{}
	h := newAIHandler(users, moods, completer, &MockTemplates{}, sender, &MockGenerationRepo{})

	err := h.Respond(t.Context(), time.Minute, &domain.Message{
		SenderID: 42, SenderName: "Ivan", Text: "а это что?",
		ReplyText: "контекст", ReplySenderID: "7", BotIdentity: "-1",
	})

	require.NoError(t, err)

	var userTurns []string
	for _, e := range completer.Request.Messages {
		if e.Role == domain.RoleUser {
			userTurns = append(userTurns, e.Content)
		}
	}
	require.Len(t, userTurns, 2)
	assert.True(t, strings.HasPrefix(userTurns[0], "Anonymous: контекст"))
	assert.Equal(t, "Ivan: а это что?", userTurns[1])
}

func TestAIRequiresAccount(t *testing.T) {
	users := newMockUserRepo()
	moods := newMockMoodRepo(defaultMood())
	sender := &MockSender{}
	h := newAIHandler(users, moods, &MockCompleter{}, &MockTemplates{}, sender, &MockGenerationRepo{})

	err := h.Respond(t.Context(), time.Minute, &domain.Message{SenderID: 42, Text: "привет"})

	require.NoError(t, err)
	assert.Contains(t, sender.Last(), "нет аккаунта")
}
