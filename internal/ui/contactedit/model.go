package contactedit

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/rjratcon/rachaeljuzeler/internal/keys"
	"github.com/rjratcon/rachaeljuzeler/internal/model"
	"github.com/rjratcon/rachaeljuzeler/internal/store"
	"github.com/rjratcon/rachaeljuzeler/internal/theme"
	"github.com/rjratcon/rachaeljuzeler/internal/ui/status"
)

type contactLoadedMsg struct {
	info model.ContactInfo
	err  error
}

type contactSavedMsg struct{ err error }

// Model shows and edits the contact page details.
type Model struct {
	repo    store.ContentRepository
	keys    *keys.KeyMap
	info    model.ContactInfo
	draft   *model.ContactInfo
	editing bool
	form    *huh.Form
	status  status.Line
	width   int
	height  int
}

// New creates the contact editor.
func New(r store.ContentRepository, k *keys.KeyMap, width, height int) Model {
	return Model{
		repo:  r,
		keys:  k,
		draft: &model.ContactInfo{},
		width: width, height: height,
	}
}

// Init loads the contact document.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// Editing reports whether the form has keyboard focus.
func (m Model) Editing() bool {
	return m.editing
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case contactLoadedMsg:
		if msg.err != nil {
			m.status = status.Failed(msg.err)
			return m, nil
		}
		m.info = msg.info
		return m, nil

	case contactSavedMsg:
		m.status = status.Saved("Contact info", nil, msg.err)
		return m, m.load()

	case tea.KeyMsg:
		if !m.editing {
			switch {
			case key.Matches(msg, m.keys.Edit):
				*m.draft = m.info
				m.status = status.Line{}
				m.form = m.buildForm()
				m.editing = true
				return m, m.form.Init()
			case key.Matches(msg, m.keys.Refresh):
				return m, m.load()
			}
			return m, nil
		}
	}

	if m.editing {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Personal email").Value(&m.draft.PersonalEmail),
			huh.NewInput().Title("Business email").Value(&m.draft.BusinessEmail),
			huh.NewInput().Title("Instagram handle").Placeholder("@handle").Value(&m.draft.InstagramHandle),
			huh.NewInput().Title("Instagram URL").Placeholder("https://instagram.com/...").Value(&m.draft.InstagramURL),
			huh.NewInput().Title("Facebook URL").Placeholder("https://facebook.com/...").Value(&m.draft.FacebookURL),
		).Title("Contact"),
	).WithWidth(min(max(m.width-4, 40), 100)).WithHeight(max(m.height-4, 12))
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		m.editing = false
		return m, m.save(*m.draft)
	case huh.StateAborted:
		m.editing = false
		return m, nil
	}
	return m, cmd
}

// View renders the contact details.
func (m Model) View() string {
	if m.editing && m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	}

	var b strings.Builder
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGold).MarginBottom(1)
	b.WriteString(titleStyle.Render("Contact"))
	b.WriteString("\n\n")

	label := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(20)
	rows := [][2]string{
		{"Personal email", m.info.PersonalEmail},
		{"Business email", m.info.BusinessEmail},
		{"Instagram handle", m.info.InstagramHandle},
		{"Instagram URL", m.info.InstagramURL},
		{"Facebook URL", m.info.FacebookURL},
	}
	for _, row := range rows {
		value := row[1]
		if value == "" {
			value = theme.HelpStyle.Render("(not set)")
		}
		b.WriteString(theme.ListItemStyle.Render(label.Render(row[0]) + value))
		b.WriteString("\n")
	}

	if line := m.status.Render(); line != "" {
		b.WriteString("\n")
		b.WriteString(line)
	}
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render("e edit | r reload"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) load() tea.Cmd {
	r := m.repo
	return func() tea.Msg {
		info, err := r.Contact(context.Background())
		return contactLoadedMsg{info: info, err: err}
	}
}

func (m Model) save(info model.ContactInfo) tea.Cmd {
	r := m.repo
	return func() tea.Msg {
		return contactSavedMsg{err: r.SaveContact(context.Background(), info)}
	}
}
