package port

import (
	"context"
	"moodbot/internal/core/domain"
	"time"
)

type Command interface {
	// Respond processes a given message within a specified timeout and
	// responds to the originating chat.
	Respond(ctx context.Context, timeout time.Duration, message *domain.Message) error
	// GetCommand retrieves the command string associated with this handler.
	GetCommand() string
}

type CommandRegistry interface {
	// Register adds a command handler under its own command string plus any
	// aliases.
	Register(handler Command, aliases ...string)
	// Match resolves the handler whose pattern is the longest word-aligned
	// prefix of text, returning the handler and the matched pattern.
	Match(text string) (Command, string, error)
	// ListCommands returns all registered command patterns.
	ListCommands() []string
}
