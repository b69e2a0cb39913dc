// Package template loads and renders instruction templates used to
// linearize a structured prompt into a single completion-style string for
// base models.
//
// Each template is a file <name>.yaml under the registry root holding an
// `instruction_template` key with Go text/template syntax. The render
// context exposes `.Messages` (role-tagged entries) and
// `.AddGenerationPrompt`.
package template

import (
	"bytes"
	"fmt"
	"io/fs"
	"text/template"

	"moodbot/internal/core/domain"

	"gopkg.in/yaml.v3"
)

type Registry struct {
	root fs.FS
}

// NewRegistry creates a Registry backed by the provided filesystem root.
// Templates are trusted operator content loaded from disk; user-submitted
// template content must not end up here.
func NewRegistry(root fs.FS) *Registry {
	return &Registry{root: root}
}

type templateFile struct {
	InstructionTemplate string `yaml:"instruction_template"`
}

type renderContext struct {
	Messages            []domain.PromptEntry
	AddGenerationPrompt bool
}

// Render looks up the named template and linearizes the entries through it,
// with the generation-prompt marker enabled.
func (r *Registry) Render(name string, entries []domain.PromptEntry) (string, error) {
	raw, err := fs.ReadFile(r.root, name+".yaml")
	if err != nil {
		return "", fmt.Errorf("%w: %q", domain.ErrTemplateNotFound, name)
	}

	var file templateFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return "", &domain.TemplateRenderError{Name: name, Err: err}
	}
	if file.InstructionTemplate == "" {
		return "", &domain.TemplateRenderError{
			Name: name,
			Err:  fmt.Errorf("file has no instruction_template key"),
		}
	}

	// missingkey=error fails loudly on a field the template references but
	// the context does not provide, instead of inserting "<no value>".
	tmpl, err := template.New(name).Option("missingkey=error").Parse(file.InstructionTemplate)
	if err != nil {
		return "", &domain.TemplateRenderError{Name: name, Err: err}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, renderContext{
		Messages:            entries,
		AddGenerationPrompt: true,
	}); err != nil {
		return "", &domain.TemplateRenderError{Name: name, Err: err}
	}

	return buf.String(), nil
}
