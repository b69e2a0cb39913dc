package generator

import (
	"context"
	"fmt"

	"moodbot/internal/core/domain"

	"github.com/sashabaranov/go-openai"
)

type completionAPI interface {
	CreateChatCompletion(ctx context.Context,
		req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
	CreateCompletion(ctx context.Context,
		req openai.CompletionRequest) (openai.CompletionResponse, error)
	Moderations(ctx context.Context,
		req openai.ModerationRequest) (openai.ModerationResponse, error)
}

// OpenRouter wraps an OpenAI-compatible completion provider.
type OpenRouter struct {
	client completionAPI
}

func NewOpenRouter(apiKey, baseURL string) *OpenRouter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenRouter{client: openai.NewClientWithConfig(cfg)}
}

// Complete submits exactly one of the request's Messages or Prompt,
// matching the renderer's chosen mode.
func (o *OpenRouter) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	if req.Prompt != "" {
		return o.completeText(ctx, req)
	}
	return o.completeChat(ctx, req)
}

func (o *OpenRouter) completeChat(ctx context.Context, req domain.CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, entry := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    entry.Role,
			Content: entry.Content,
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     req.Model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
		Stop:      req.Stop,
	})
	if err != nil {
		return "", &domain.RemoteCallError{Err: fmt.Errorf("chat completion: %w", err)}
	}

	if len(resp.Choices) == 0 {
		return "", domain.ErrNoChoices
	}

	return resp.Choices[0].Message.Content, nil
}

func (o *OpenRouter) completeText(ctx context.Context, req domain.CompletionRequest) (string, error) {
	resp, err := o.client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:     req.Model,
		Prompt:    req.Prompt,
		MaxTokens: req.MaxTokens,
		Stop:      req.Stop,
	})
	if err != nil {
		return "", &domain.RemoteCallError{Err: fmt.Errorf("completion: %w", err)}
	}

	if len(resp.Choices) == 0 {
		return "", domain.ErrNoChoices
	}

	return resp.Choices[0].Text, nil
}

// Moderate runs the provider's moderation endpoint and returns the tripped
// category names.
func (o *OpenRouter) Moderate(ctx context.Context, input string) (domain.ModerationResult, error) {
	resp, err := o.client.Moderations(ctx, openai.ModerationRequest{Input: input})
	if err != nil {
		return domain.ModerationResult{}, &domain.RemoteCallError{Err: fmt.Errorf("moderation: %w", err)}
	}

	if len(resp.Results) == 0 {
		return domain.ModerationResult{}, nil
	}

	result := resp.Results[0]
	return domain.ModerationResult{
		Flagged:    result.Flagged,
		Categories: trippedCategories(result.Categories),
	}, nil
}

// trippedCategories keeps a fixed order so rejection messages are stable.
func trippedCategories(c openai.ResultCategories) []string {
	categories := []struct {
		name    string
		flagged bool
	}{
		{"hate", c.Hate},
		{"hate/threatening", c.HateThreatening},
		{"harassment", c.Harassment},
		{"harassment/threatening", c.HarassmentThreatening},
		{"self-harm", c.SelfHarm},
		{"self-harm/intent", c.SelfHarmIntent},
		{"self-harm/instructions", c.SelfHarmInstructions},
		{"sexual", c.Sexual},
		{"sexual/minors", c.SexualMinors},
		{"violence", c.Violence},
		{"violence/graphic", c.ViolenceGraphic},
	}

	var tripped []string
	for _, cat := range categories {
		if cat.flagged {
			tripped = append(tripped, cat.name)
		}
	}
	return tripped
}
