package command

import (
	"testing"
	"time"

	"moodbot/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModelSet(users *MockUserRepo, catalog *MockCatalog, sender *MockSender) *ModelSet {
	return NewModelSet(ModelSetParams{
		Users:   users,
		Catalog: catalog,
		Sender:  sender,
		Models:  testCatalogModels(),
		Command: "!модель",
	})
}

func TestModelSetCatalog(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 42})
	sender := &MockSender{}
	h := newModelSet(users, &MockCatalog{}, sender)

	err := h.Respond(t.Context(), time.Minute, &domain.Message{SenderID: 42, Text: "1"})

	require.NoError(t, err)
	assert.Equal(t, "1", users.updated[domain.UserFieldModel])
	assert.Contains(t, sender.Last(), "Вы успешно установили модель gpt-4o-mini!")
}

func TestModelSetDeprecatedRejected(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 42})
	sender := &MockSender{}
	h := newModelSet(users, &MockCatalog{}, sender)

	err := h.Respond(t.Context(), time.Minute, &domain.Message{SenderID: 42, Text: "2"})

	require.NoError(t, err)
	assert.Empty(t, users.updated)
	assert.Contains(t, sender.Last(), "устарела")
}

func TestModelSetUnknownID(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 42})
	sender := &MockSender{}
	h := newModelSet(users, &MockCatalog{}, sender)

	err := h.Respond(t.Context(), time.Minute, &domain.Message{SenderID: 42, Text: "99"})

	require.NoError(t, err)
	assert.Empty(t, users.updated)
	assert.Contains(t, sender.Last(), "не существует")
}

func TestModelSetCustomFree(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 42})
	catalog := &MockCatalog{model: &domain.RemoteModel{
		ID: "vendor/free-model", Name: "Free Model", PromptPrice: "0", CompletionPrice: "0",
	}}
	sender := &MockSender{}
	h := newModelSet(users, catalog, sender)

	err := h.Respond(t.Context(), time.Minute, &domain.Message{SenderID: 42, Text: "vendor/free-model"})

	require.NoError(t, err)
	assert.Equal(t, "vendor/free-model", users.updated[domain.UserFieldModel])
	assert.Contains(t, sender.Last(), "кастомную модель")
}

func TestModelSetCustomPaidRejected(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 42})
	catalog := &MockCatalog{model: &domain.RemoteModel{
		ID: "vendor/paid-model", Name: "Paid Model", PromptPrice: "0.0000015", CompletionPrice: "0.000002",
	}}
	sender := &MockSender{}
	h := newModelSet(users, catalog, sender)

	err := h.Respond(t.Context(), time.Minute, &domain.Message{SenderID: 42, Text: "vendor/paid-model"})

	require.NoError(t, err)
	assert.Empty(t, users.updated)
	assert.Contains(t, sender.Last(), "только бесплатные модели")
}

func TestModelSetCustomUnknown(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 42})
	sender := &MockSender{}
	h := newModelSet(users, &MockCatalog{}, sender)

	err := h.Respond(t.Context(), time.Minute, &domain.Message{SenderID: 42, Text: "vendor/no-such-model"})

	require.NoError(t, err)
	assert.Empty(t, users.updated)
	assert.Contains(t, sender.Last(), "не существует")
}

func TestModelListSkipsDeprecated(t *testing.T) {
	sender := &MockSender{}
	h := NewModelList(sender, testCatalogModels(), "!модели")

	err := h.Respond(t.Context(), time.Minute, &domain.Message{SenderID: 42})

	require.NoError(t, err)
	assert.Contains(t, sender.Last(), "gpt-4o-mini")
	assert.NotContains(t, sender.Last(), "old-model")
}
