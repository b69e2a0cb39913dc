package template

import (
	"testing"
	"testing/fstest"

	"moodbot/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alpacaTemplate = `instruction_template: |-
  {{- range .Messages }}
  {{- if eq .Role "system" }}{{ .Content }}

  {{ else if eq .Role "user" }}### Instruction:
  {{ .Content }}

  {{ else }}### Response:
  {{ .Content }}

  {{ end }}
  {{- end }}
  {{- if .AddGenerationPrompt }}### Response:
  {{ end }}`

func TestRenderTemplate(t *testing.T) {
	root := fstest.MapFS{
		"alpaca.yaml": &fstest.MapFile{Data: []byte(alpacaTemplate)},
	}
	r := NewRegistry(root)

	out, err := r.Render("alpaca", []domain.PromptEntry{
		{Role: domain.RoleSystem, Content: "Be helpful."},
		{Role: domain.RoleUser, Content: "Ivan: привет"},
	})

	require.NoError(t, err)
	assert.Contains(t, out, "Be helpful.")
	assert.Contains(t, out, "### Instruction:\nIvan: привет")
	assert.True(t, len(out) > 0 && out[len(out)-1] == '\n')
	assert.Contains(t, out, "### Response:\n", "generation prompt must be appended")
}

func TestRenderUnknownTemplate(t *testing.T) {
	r := NewRegistry(fstest.MapFS{})

	_, err := r.Render("nope", nil)

	require.ErrorIs(t, err, domain.ErrTemplateNotFound)
}

func TestRenderMissingInstructionKey(t *testing.T) {
	root := fstest.MapFS{
		"broken.yaml": &fstest.MapFile{Data: []byte("something_else: true")},
	}
	r := NewRegistry(root)

	_, err := r.Render("broken", nil)

	var renderErr *domain.TemplateRenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "broken", renderErr.Name)
}

func TestRenderBadTemplateSyntax(t *testing.T) {
	root := fstest.MapFS{
		"bad.yaml": &fstest.MapFile{Data: []byte("instruction_template: '{{ .Nope '")},
	}
	r := NewRegistry(root)

	_, err := r.Render("bad", nil)

	var renderErr *domain.TemplateRenderError
	require.ErrorAs(t, err, &renderErr)
}
