package command

import (
	"testing"
	"time"

	"moodbot/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMoodHandler(users *MockUserRepo, moods *MockMoodRepo, generations *MockGenerationRepo, sender *MockSender) *Mood {
	return NewMood(MoodParams{
		Users:       users,
		Moods:       moods,
		Generations: generations,
		Filter:      newTestFilter(),
		Sender:      sender,
		Command:     "!муд",
	})
}

func TestMoodInfo(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 42})
	moods := newMockMoodRepo(&domain.Mood{ID: 3, OwnerID: 7, Name: "Пират", Instructions: "be a pirate"})
	generations := &MockGenerationRepo{count: 12}
	sender := &MockSender{}
	h := newMoodHandler(users, moods, generations, sender)

	err := h.Respond(t.Context(), time.Minute, &domain.Message{SenderID: 42, Text: "3"})

	require.NoError(t, err)
	assert.Contains(t, sender.Last(), "Пират")
	assert.Contains(t, sender.Last(), "Всего генераций: 12")
	require.NotNil(t, sender.Keyboard)
	assert.Equal(t, "!выбрать муд 3", sender.Keyboard.Rows[0][0].Command)
}

func TestMoodInfoPrivateHidden(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 42})
	moods := newMockMoodRepo(&domain.Mood{ID: 3, OwnerID: 7, Name: "Секрет", IsPrivate: true})
	sender := &MockSender{}
	h := newMoodHandler(users, moods, &MockGenerationRepo{}, sender)

	err := h.Respond(t.Context(), time.Minute, &domain.Message{SenderID: 42, Text: "3"})

	require.NoError(t, err)
	assert.Contains(t, sender.Last(), "не существует или он приватный")
}

func TestMoodEditNotOwner(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 42})
	moods := newMockMoodRepo(&domain.Mood{ID: 3, OwnerID: 7, Name: "Чужой"})
	sender := &MockSender{}
	h := newMoodHandler(users, moods, &MockGenerationRepo{}, sender)

	err := h.Respond(t.Context(), time.Minute, &domain.Message{SenderID: 42, Text: "имя 3 Новое имя"})

	require.NoError(t, err)
	assert.Empty(t, moods.updated)
	assert.Contains(t, sender.Last(), "это не твой муд")
}

func TestMoodEditName(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 42})
	moods := newMockMoodRepo(&domain.Mood{ID: 3, OwnerID: 42, Name: "Старое"})
	sender := &MockSender{}
	h := newMoodHandler(users, moods, &MockGenerationRepo{}, sender)

	err := h.Respond(t.Context(), time.Minute, &domain.Message{SenderID: 42, Text: "имя 3 Новое имя"})

	require.NoError(t, err)
	assert.Equal(t, "Новое имя", moods.updated[domain.MoodFieldName])
	assert.Contains(t, sender.Last(), "поменяли название")
}

func TestMoodEditVisibilityToggle(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 42})
	moods := newMockMoodRepo(&domain.Mood{ID: 3, OwnerID: 42, IsPrivate: false})
	sender := &MockSender{}
	h := newMoodHandler(users, moods, &MockGenerationRepo{}, sender)

	err := h.Respond(t.Context(), time.Minute, &domain.Message{SenderID: 42, Text: "видимость 3"})

	require.NoError(t, err)
	assert.Equal(t, true, moods.updated[domain.MoodFieldIsPrivate])
	assert.Contains(t, sender.Last(), "приватный")
}

func TestMoodEditUnknownParam(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 42})
	moods := newMockMoodRepo(&domain.Mood{ID: 3, OwnerID: 42})
	sender := &MockSender{}
	h := newMoodHandler(users, moods, &MockGenerationRepo{}, sender)

	err := h.Respond(t.Context(), time.Minute, &domain.Message{SenderID: 42, Text: "цвет 3 красный"})

	require.NoError(t, err)
	assert.Empty(t, moods.updated)
	assert.Contains(t, sender.Last(), "Такого параметра нету")
}

func TestMoodSetSelectsMood(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 42})
	moods := newMockMoodRepo(&domain.Mood{ID: 3, OwnerID: 7, Name: "Пират"})
	sender := &MockSender{}
	h := NewMoodSet(users, moods, sender, "!выбрать муд")

	err := h.Respond(t.Context(), time.Minute, &domain.Message{SenderID: 42, Text: "3"})

	require.NoError(t, err)
	assert.Equal(t, int64(3), users.updated[domain.UserFieldMood])
	assert.Contains(t, sender.Last(), "Вы успешно выбрали муд \"Пират\" (id: 3)")
}

func TestMoodSetPrivateRejected(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 42})
	moods := newMockMoodRepo(&domain.Mood{ID: 3, OwnerID: 7, IsPrivate: true})
	sender := &MockSender{}
	h := NewMoodSet(users, moods, sender, "!выбрать муд")

	err := h.Respond(t.Context(), time.Minute, &domain.Message{SenderID: 42, Text: "3"})

	require.NoError(t, err)
	assert.Empty(t, users.updated)
	assert.Contains(t, sender.Last(), "Такого муда не существует")
}

func TestMoodDeleteOwner(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 42})
	moods := newMockMoodRepo(&domain.Mood{ID: 3, OwnerID: 42})
	sender := &MockSender{}
	h := NewMoodDelete(users, moods, sender, "!удалить муд")

	err := h.Respond(t.Context(), time.Minute, &domain.Message{SenderID: 42, Text: "3"})

	require.NoError(t, err)
	assert.Equal(t, []int64{3}, moods.removed)
}

func TestMoodDeleteNotOwnerRejected(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 42})
	moods := newMockMoodRepo(&domain.Mood{ID: 3, OwnerID: 7})
	sender := &MockSender{}
	h := NewMoodDelete(users, moods, sender, "!удалить муд")

	err := h.Respond(t.Context(), time.Minute, &domain.Message{SenderID: 42, Text: "3"})

	require.NoError(t, err)
	assert.Empty(t, moods.removed)
	assert.Contains(t, sender.Last(), "это не твой муд")
}

func TestMoodDeleteAdminOverride(t *testing.T) {
	users := newMockUserRepo(&domain.UserAccount{ID: 100})
	moods := newMockMoodRepo(&domain.Mood{ID: 3, OwnerID: 7})
	sender := &MockSender{}
	h := NewMoodDelete(users, moods, sender, "!удалить муд")

	err := h.Respond(t.Context(), time.Minute, &domain.Message{SenderID: 100, Text: "3"})

	require.NoError(t, err)
	assert.Equal(t, []int64{3}, moods.removed)
}
