package port

import (
	"context"
	"moodbot/internal/core/domain"
)

type Completer interface {
	// Complete submits the request to the remote completion API and returns
	// the response text. An empty choices list is reported as
	// domain.ErrNoChoices, distinct from transport errors.
	Complete(ctx context.Context, req domain.CompletionRequest) (string, error)
}

type Moderator interface {
	Moderate(ctx context.Context, input string) (domain.ModerationResult, error)
}

type ModelCatalog interface {
	// FindModel resolves a free-form model id against the provider's live
	// model listing. Returns nil when the id is unknown.
	FindModel(ctx context.Context, id string) (*domain.RemoteModel, error)
}

type TemplateRenderer interface {
	// Render linearizes a structured render through the named instruction
	// template. Fails with domain.ErrTemplateNotFound or a
	// *domain.TemplateRenderError.
	Render(name string, entries []domain.PromptEntry) (string, error)
}
