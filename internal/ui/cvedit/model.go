package cvedit

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

// bioEntry is the first row of the list; the CV sections follow it.
const bioEntry = "Biography"

type cvLoadedMsg struct {
	cv  model.CVContent
	err error
}

type cvSavedMsg struct {
	entry string
	err   error
}

// Model edits the about page: biography and CV sections.
type Model struct {
	repo        store.ContentRepository
	keys        *keys.KeyMap
	cv          model.CVContent
	entries     []string
	selectedIdx int
	editing     bool
	form        *huh.Form
	text        *string
	status      status.Line
	width       int
	height      int
}

// New creates the about/CV editor.
func New(r store.ContentRepository, k *keys.KeyMap, width, height int) Model {
	return Model{
		repo:    r,
		keys:    k,
		entries: append([]string{bioEntry}, model.CVSectionNames...),
		text:    new(string),
		width:   width, height: height,
	}
}

// Init loads the CV document.
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
	case cvLoadedMsg:
		if msg.err != nil {
			m.status = status.Failed(msg.err)
			return m, nil
		}
		m.cv = msg.cv
		return m, nil

	case cvSavedMsg:
		m.status = status.Saved(msg.entry, nil, msg.err)
		return m, m.load()

	case tea.KeyMsg:
		if m.editing {
			return m.updateForm(msg)
		}
		return m.handleListKey(msg)
	}

	if m.editing {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.selectedIdx = (m.selectedIdx + 1) % len(m.entries)
	case key.Matches(msg, m.keys.Up):
		m.selectedIdx = (m.selectedIdx - 1 + len(m.entries)) % len(m.entries)
	case key.Matches(msg, m.keys.Refresh):
		return m, m.load()
	case key.Matches(msg, m.keys.Edit):
		entry := m.entries[m.selectedIdx]
		if entry == bioEntry {
			*m.text = m.cv.Bio
		} else {
			*m.text = strings.Join(m.cv.Sections[entry], "\n")
		}
		m.status = status.Line{}
		m.form = m.buildForm(entry)
		m.editing = true
		return m, m.form.Init()
	}
	return m, nil
}

func (m Model) buildForm(entry string) *huh.Form {
	field := huh.NewText().
		Title(entry).
		Lines(m.formHeight() - 6).
		Value(m.text)
	if entry == bioEntry {
		field = field.Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("biography is required")
			}
			return nil
		})
	} else {
		field = field.Description("One entry per line.")
	}
	return huh.NewForm(huh.NewGroup(field)).
		WithWidth(m.formWidth()).
		WithHeight(m.formHeight())
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
		return m, m.save(m.entries[m.selectedIdx], *m.text)
	case huh.StateAborted:
		m.editing = false
		return m, nil
	}
	return m, cmd
}

// View renders the editor.
func (m Model) View() string {
	if m.editing && m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	}

	var b strings.Builder
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGold).MarginBottom(1)
	b.WriteString(titleStyle.Render("About / CV"))
	b.WriteString("\n\n")

	for i, entry := range m.entries {
		label := entry
		if entry != bioEntry {
			label = fmt.Sprintf("%s (%d)", entry, len(m.cv.Sections[entry]))
		}
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.viewPreview())

	if line := m.status.Render(); line != "" {
		b.WriteString("\n")
		b.WriteString(line)
	}
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render("e edit | r reload"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewPreview() string {
	entry := m.entries[m.selectedIdx]
	var body string
	if entry == bioEntry {
		body = m.cv.Bio
	} else {
		items := m.cv.Sections[entry]
		lines := make([]string, len(items))
		for i, item := range items {
			lines[i] = "• " + item
		}
		body = strings.Join(lines, "\n")
	}
	if body == "" {
		body = theme.HelpStyle.Render("(empty)")
	}

	w := m.width - 8
	if w < 20 {
		w = 20
	}
	return theme.BorderStyle.Padding(0, 1).Width(w).Render(body)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 12)
}

func (m Model) load() tea.Cmd {
	r := m.repo
	return func() tea.Msg {
		cv, err := r.CV(context.Background())
		return cvLoadedMsg{cv: cv, err: err}
	}
}

func (m Model) save(entry, text string) tea.Cmd {
	r := m.repo
	return func() tea.Msg {
		var err error
		if entry == bioEntry {
			err = r.UpdateBio(context.Background(), text)
		} else {
			err = r.UpdateCVSection(context.Background(), entry, strings.Split(text, "\n"))
		}
		return cvSavedMsg{entry: entry, err: err}
	}
}
