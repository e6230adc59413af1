package updatemgr

import (
	"context"
	"fmt"
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

type updateMode int

const (
	modeList updateMode = iota
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	title   string
	content string
	link    string
	confirm bool
}

type updatesLoadedMsg struct {
	updates []model.Update
	err     error
}

type updateSavedMsg struct{ err error }

type updateDeletedMsg struct{ err error }

// Model manages the news items on the updates page.
type Model struct {
	mode        updateMode
	repo        store.ContentRepository
	keys        *keys.KeyMap
	updates     []model.Update
	selectedIdx int
	editingID   string
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	status      status.Line
	width       int
	height      int
}

// New creates the updates manager.
func New(r store.ContentRepository, k *keys.KeyMap, width, height int) Model {
	return Model{
		repo:  r,
		keys:  k,
		fb:    &formBindings{},
		width: width, height: height,
	}
}

// Init loads the updates.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// Editing reports whether a form or dialog has keyboard focus.
func (m Model) Editing() bool {
	return m.mode != modeList
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updatesLoadedMsg:
		if msg.err != nil {
			m.status = status.Failed(msg.err)
			return m, nil
		}
		m.updates = msg.updates
		if m.selectedIdx >= len(m.updates) && m.selectedIdx > 0 {
			m.selectedIdx = len(m.updates) - 1
		}
		return m, nil

	case updateSavedMsg:
		m.status = status.Saved("Update", nil, msg.err)
		return m, m.load()

	case updateDeletedMsg:
		if msg.err != nil {
			m.status = status.Failed(msg.err)
		} else {
			m.status = status.Line{Text: "Update deleted", Kind: status.Success}
		}
		return m, m.load()

	case tea.KeyMsg:
		if m.mode == modeList {
			return m.handleListKey(msg)
		}
	}

	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if len(m.updates) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.updates)
		}
	case key.Matches(msg, m.keys.Up):
		if len(m.updates) > 0 {
			m.selectedIdx = (m.selectedIdx - 1 + len(m.updates)) % len(m.updates)
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.load()

	case key.Matches(msg, m.keys.New):
		m.editingID = ""
		*m.fb = formBindings{}
		m.status = status.Line{}
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		if len(m.updates) == 0 {
			return m, nil
		}
		u := m.updates[m.selectedIdx]
		m.editingID = u.ID
		*m.fb = formBindings{title: u.Title, content: u.Content, link: u.Link}
		m.status = status.Line{}
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		if len(m.updates) == 0 {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Delete update %q?", m.updates[m.selectedIdx].Title)).
					Affirmative("Yes, delete").
					Negative("Cancel").
					Value(&m.fb.confirm),
			),
		).WithWidth(m.formWidth())
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) buildForm() *huh.Form {
	heading := "New update"
	if m.editingID != "" {
		heading = "Edit update"
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&m.fb.title).
				Validate(required("title")),
			huh.NewText().
				Title("Content").
				Lines(6).
				Value(&m.fb.content).
				Validate(required("content")),
			huh.NewInput().
				Title("Link").
				Placeholder("https://... (optional)").
				Value(&m.fb.link),
		).Title(heading),
	).WithWidth(m.formWidth()).WithHeight(max(m.height-4, 12))
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
		m.mode = modeList
		return m, m.save()
	case huh.StateAborted:
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	switch m.confirmForm.State {
	case huh.StateCompleted:
		m.mode = modeList
		if !m.fb.confirm {
			m.status = status.Line{Text: "Delete cancelled"}
			return m, nil
		}
		return m, m.delete(m.updates[m.selectedIdx].ID)
	case huh.StateAborted:
		m.mode = modeList
		m.status = status.Line{Text: "Delete cancelled"}
		return m, nil
	}
	return m, cmd
}

// View renders the updates list or the active form.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	case modeConfirmDelete:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirmForm.View())
	}

	var b strings.Builder
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGold).MarginBottom(1)
	b.WriteString(titleStyle.Render(fmt.Sprintf("Updates (%d)", len(m.updates))))
	b.WriteString("\n\n")

	if len(m.updates) == 0 {
		b.WriteString(theme.HelpStyle.Render("No updates yet. Press 'n' to post one."))
	}
	date := lipgloss.NewStyle().Foreground(theme.ColorGray)
	for i, u := range m.updates {
		label := date.Render(u.CreatedAt.Local().Format("2006-01-02")) + "  " + u.Title
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	if len(m.updates) > 0 {
		u := m.updates[m.selectedIdx]
		body := u.Content
		if u.Link != "" {
			body += "\n\n" + date.Render(u.Link)
		}
		b.WriteString("\n")
		b.WriteString(theme.BorderStyle.Padding(0, 1).Width(max(m.width-8, 20)).Render(body))
	}

	if line := m.status.Render(); line != "" {
		b.WriteString("\n")
		b.WriteString(line)
	}
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render("n new | e edit | d delete | r reload"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) load() tea.Cmd {
	r := m.repo
	return func() tea.Msg {
		updates, err := r.Updates(context.Background())
		return updatesLoadedMsg{updates: updates, err: err}
	}
}

func (m Model) save() tea.Cmd {
	r := m.repo
	id := m.editingID
	title, content, link := m.fb.title, m.fb.content, m.fb.link
	return func() tea.Msg {
		var err error
		if id == "" {
			_, err = r.CreateUpdate(context.Background(), title, content, link)
		} else {
			_, err = r.UpdateUpdate(context.Background(), id, title, content, link)
		}
		return updateSavedMsg{err: err}
	}
}

func (m Model) delete(id string) tea.Cmd {
	r := m.repo
	return func() tea.Msg {
		return updateDeletedMsg{err: r.DeleteUpdate(context.Background(), id)}
	}
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
