package command

import (
	"errors"
	"strings"

	"moodbot/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Registry is the command routing table, built once at startup. Patterns
// are matched as the longest word-aligned prefix of the incoming text,
// case-insensitively, so "!муд" and "!муды" never shadow each other.
type Registry struct {
	commands map[string]port.Command
}

func (r *Registry) Register(handler port.Command, aliases ...string) {
	if r.commands == nil {
		r.commands = make(map[string]port.Command)
	}

	log.Info().Str("handler", handler.GetCommand()).Msg("adding command handler to registry")
	r.commands[strings.ToLower(handler.GetCommand())] = handler
	for _, alias := range aliases {
		r.commands[strings.ToLower(alias)] = handler
	}
}

func (r *Registry) Match(text string) (port.Command, string, error) {
	if r.commands == nil {
		return nil, "", errors.New("can't match command, registry not initialized")
	}

	lowered := strings.ToLower(text)

	var (
		best        port.Command
		bestPattern string
	)
	for pattern, handler := range r.commands {
		if !strings.HasPrefix(lowered, pattern) {
			continue
		}
		if len(lowered) > len(pattern) {
			next := lowered[len(pattern)]
			if next != ' ' && next != '\n' {
				continue
			}
		}
		if len(pattern) > len(bestPattern) {
			best = handler
			bestPattern = pattern
		}
	}

	if best == nil {
		return nil, "", errors.New("command not found")
	}

	return best, bestPattern, nil
}

func (r *Registry) ListCommands() []string {
	keys := make([]string, len(r.commands))

	i := 0
	for k := range r.commands {
		keys[i] = k
		i++
	}

	return keys
}

// ParseArgs strips the matched pattern from the text and returns the
// remaining arguments.
func ParseArgs(text, pattern string) string {
	if len(text) <= len(pattern) {
		return ""
	}
	return strings.TrimSpace(text[len(pattern):])
}
