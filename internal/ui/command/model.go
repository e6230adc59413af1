package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rjratcon/rachaeljuzeler/internal/theme"
)

// Commands lists the palette commands offered as completions.
var Commands = []string{
	"projects",
	"cv",
	"updates",
	"contact",
	"available",
	"export",
	"quit",
}

// aliases are accepted spellings that are not offered as completions.
var aliases = map[string]string{
	"about": "cv",
	"works": "available",
	"q":     "quit",
}

// Resolve maps palette input to one of Commands. It returns "" when the
// input names no command.
func Resolve(input string) string {
	name := strings.ToLower(strings.TrimSpace(input))
	if target, ok := aliases[name]; ok {
		return target
	}
	for _, c := range Commands {
		if c == name {
			return c
		}
	}
	return ""
}

// CommandMsg carries the text the user submitted, lowercased.
type CommandMsg string

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(Commands)
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			cmd := strings.ToLower(strings.TrimSpace(m.input.Value()))
			m.input.Reset()
			if cmd != "" {
				return m, func() tea.Msg {
					return CommandMsg(cmd)
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorGold).
		MarginBottom(1)

	title := titleStyle.Render("Command Palette")
	input := m.input.View()
	hint := theme.HelpStyle.Render(strings.Join(Commands, " · "))

	content := lipgloss.JoinVertical(lipgloss.Left, title, input, "", hint)

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
