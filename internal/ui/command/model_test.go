package command

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	for input, want := range map[string]string{
		"projects":  "projects",
		" Export ":  "export",
		"about":     "cv",
		"works":     "available",
		"q":         "quit",
		"tasks":     "",
		"":          "",
		"available": "available",
	} {
		assert.Equal(t, want, Resolve(input), input)
	}
}

func TestModel_EnterEmitsCommand(t *testing.T) {
	m := New(80, 24)
	for _, r := range "Contact" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, CommandMsg("contact"), cmd())
	assert.Empty(t, m.input.Value())
}
