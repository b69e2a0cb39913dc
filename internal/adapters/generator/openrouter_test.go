package generator

import (
	"context"
	"errors"
	"testing"

	"moodbot/internal/core/domain"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCompletionAPI struct {
	chatResp openai.ChatCompletionResponse
	textResp openai.CompletionResponse
	modResp  openai.ModerationResponse
	err      error

	chatReq openai.ChatCompletionRequest
	textReq openai.CompletionRequest
}

func (m *mockCompletionAPI) CreateChatCompletion(_ context.Context,
	req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.chatReq = req
	return m.chatResp, m.err
}

func (m *mockCompletionAPI) CreateCompletion(_ context.Context,
	req openai.CompletionRequest) (openai.CompletionResponse, error) {
	m.textReq = req
	return m.textResp, m.err
}

func (m *mockCompletionAPI) Moderations(_ context.Context,
	_ openai.ModerationRequest) (openai.ModerationResponse, error) {
	return m.modResp, m.err
}

func TestCompleteChatMode(t *testing.T) {
	api := &mockCompletionAPI{chatResp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "response"}},
		},
	}}
	o := &OpenRouter{client: api}

	out, err := o.Complete(t.Context(), domain.CompletionRequest{
		Model: "gpt-4o-mini",
		Messages: []domain.PromptEntry{
			{Role: domain.RoleSystem, Content: "be helpful"},
			{Role: domain.RoleUser, Content: "hi"},
		},
		MaxTokens: 100,
	})

	require.NoError(t, err)
	assert.Equal(t, "response", out)
	assert.Equal(t, "gpt-4o-mini", api.chatReq.Model)
	require.Len(t, api.chatReq.Messages, 2)
	assert.Equal(t, "system", api.chatReq.Messages[0].Role)
}

func TestCompleteTextMode(t *testing.T) {
	api := &mockCompletionAPI{textResp: openai.CompletionResponse{
		Choices: []openai.CompletionChoice{{Text: "completion"}},
	}}
	o := &OpenRouter{client: api}

	out, err := o.Complete(t.Context(), domain.CompletionRequest{
		Model:  "base-model",
		Prompt: "### Instruction:\nhi\n### Response:\n",
		Stop:   []string{domain.SeparatorToken},
	})

	require.NoError(t, err)
	assert.Equal(t, "completion", out)
	assert.Equal(t, []string{domain.SeparatorToken}, api.textReq.Stop)
	assert.Empty(t, api.chatReq.Model, "chat endpoint must not be hit in text mode")
}

func TestCompleteEmptyChoices(t *testing.T) {
	o := &OpenRouter{client: &mockCompletionAPI{}}

	_, err := o.Complete(t.Context(), domain.CompletionRequest{
		Messages: []domain.PromptEntry{{Role: domain.RoleUser, Content: "hi"}},
	})

	require.ErrorIs(t, err, domain.ErrNoChoices)
}

func TestCompleteTransportError(t *testing.T) {
	o := &OpenRouter{client: &mockCompletionAPI{err: errors.New("boom")}}

	_, err := o.Complete(t.Context(), domain.CompletionRequest{
		Messages: []domain.PromptEntry{{Role: domain.RoleUser, Content: "hi"}},
	})

	var remote *domain.RemoteCallError
	require.ErrorAs(t, err, &remote)
}

func TestModerateFlagged(t *testing.T) {
	api := &mockCompletionAPI{modResp: openai.ModerationResponse{
		Results: []openai.Result{{
			Flagged: true,
			Categories: openai.ResultCategories{
				Hate:     true,
				Violence: true,
			},
		}},
	}}
	o := &OpenRouter{client: api}

	result, err := o.Moderate(t.Context(), "bad text")

	require.NoError(t, err)
	assert.True(t, result.Flagged)
	assert.Equal(t, []string{"hate", "violence"}, result.Categories)
}

func TestModerateClean(t *testing.T) {
	api := &mockCompletionAPI{modResp: openai.ModerationResponse{
		Results: []openai.Result{{Flagged: false}},
	}}
	o := &OpenRouter{client: api}

	result, err := o.Moderate(t.Context(), "fine text")

	require.NoError(t, err)
	assert.False(t, result.Flagged)
	assert.Empty(t, result.Categories)
}
