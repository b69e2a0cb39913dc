package service

import "strings"

const (
	moodPlaceholder    = "{{description}}"
	personaPlaceholder = "{{persona}}"
)

// BuildSystemPrompt assembles the leading system instruction: the base
// behavior prompt with the mood instructions substituted, followed by the
// persona block when the user has one set.
func BuildSystemPrompt(systemPrompt, personaPrompt, moodInstructions, persona string) string {
	prompt := strings.ReplaceAll(systemPrompt, moodPlaceholder, moodInstructions)
	if persona != "" {
		prompt = prompt + "\n\n" + strings.ReplaceAll(personaPrompt, personaPlaceholder, persona)
	}
	return prompt
}
