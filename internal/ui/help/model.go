package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rjratcon/rachaeljuzeler/internal/keys"
	"github.com/rjratcon/rachaeljuzeler/internal/theme"
	"github.com/rjratcon/rachaeljuzeler/internal/ui/command"
)

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	site   string
	width  int
	height int
}

// New creates a new help view model. site is shown under the shortcuts
// so the user can see which checkout is being edited.
func New(keys *keys.KeyMap, site string, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		site:   site,
		width:  width,
		height: height,
	}
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorGold).
		MarginBottom(1)

	title := titleStyle.Render("Keyboard Shortcuts")

	m.help.Width = m.width - 4
	m.help.ShowAll = true
	helpText := m.help.View(m.keys)

	commands := theme.HelpStyle.Render(
		"Commands (:) " + strings.Join(command.Commands, " · "),
	)
	site := theme.HelpStyle.Render("Site: " + m.site)

	content := lipgloss.JoinVertical(lipgloss.Left, title, helpText, "", commands, site)

	return theme.PanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
