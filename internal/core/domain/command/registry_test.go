package command

import (
	"context"
	"testing"
	"time"

	"moodbot/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCommand struct {
	command string
}

func (s *stubCommand) Respond(_ context.Context, _ time.Duration, _ *domain.Message) error {
	return nil
}

func (s *stubCommand) GetCommand() string { return s.command }

func TestRegistryMatchLongestPattern(t *testing.T) {
	r := &Registry{}
	mood := &stubCommand{command: "!муд"}
	moods := &stubCommand{command: "!муды"}
	myMoods := &stubCommand{command: "!мои муды"}
	r.Register(mood)
	r.Register(moods)
	r.Register(myMoods)

	got, pattern, err := r.Match("!муды 15")
	require.NoError(t, err)
	assert.Same(t, moods, got)
	assert.Equal(t, "!муды", pattern)

	got, _, err = r.Match("!муд 3")
	require.NoError(t, err)
	assert.Same(t, mood, got)

	got, _, err = r.Match("!мои муды")
	require.NoError(t, err)
	assert.Same(t, myMoods, got)
}

func TestRegistryMatchWordAligned(t *testing.T) {
	r := &Registry{}
	r.Register(&stubCommand{command: "!модель"})

	// "!модели" must not resolve to "!модель"
	_, _, err := r.Match("!модели")
	require.Error(t, err)
}

func TestRegistryMatchCaseInsensitive(t *testing.T) {
	r := &Registry{}
	handler := &stubCommand{command: "!gpt"}
	r.Register(handler, "!ai")

	got, _, err := r.Match("!GPT привет")
	require.NoError(t, err)
	assert.Same(t, handler, got)

	got, _, err = r.Match("!AI привет")
	require.NoError(t, err)
	assert.Same(t, handler, got)
}

func TestRegistryMatchUnknownCommand(t *testing.T) {
	r := &Registry{}
	r.Register(&stubCommand{command: "!gpt"})

	_, _, err := r.Match("просто сообщение")
	require.Error(t, err)
}

func TestParseArgs(t *testing.T) {
	assert.Equal(t, "привет мир", ParseArgs("!gpt привет мир", "!gpt"))
	assert.Equal(t, "", ParseArgs("!gpt", "!gpt"))
	assert.Equal(t, "имя 3 Новое имя", ParseArgs("!муд имя 3 Новое имя", "!муд"))
}
