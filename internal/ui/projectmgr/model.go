package projectmgr

import (
	"context"
	"errors"
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

// ChangedMsg signals that projects were created, updated or deleted.
type ChangedMsg struct{}

type projectMode int

const (
	modeList projectMode = iota
	modeForm
	modeConfirmDelete
)

// formBindings lives on the heap so huh's Value pointers stay valid
// across Model copies.
type formBindings struct {
	title       string
	subtitle    string
	description string
	images      string
	confirm     bool
}

type projectsLoadedMsg struct {
	projects []model.Project
}

type projectSavedMsg struct {
	id       string
	warnings []string
	err      error
}

type projectDeletedMsg struct {
	id  string
	err error
}

// Model is the Bubble Tea model for the Projects section.
type Model struct {
	mode        projectMode
	repo        store.ProjectRepository
	keys        *keys.KeyMap
	projects    []model.Project
	selectedIdx int
	editingID   string
	isNew       bool
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	status      status.Line
	width       int
	height      int
}

// New creates a new project manager model.
func New(r store.ProjectRepository, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:  modeList,
		repo:  r,
		keys:  k,
		fb:    &formBindings{},
		width: width, height: height,
	}
}

// Init loads projects from the store.
func (m Model) Init() tea.Cmd {
	return m.loadProjects()
}

// Editing reports whether a form or dialog has keyboard focus.
func (m Model) Editing() bool {
	return m.mode != modeList
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case projectsLoadedMsg:
		m.projects = msg.projects
		if m.selectedIdx >= len(m.projects) && m.selectedIdx > 0 {
			m.selectedIdx = len(m.projects) - 1
		}
		return m, nil

	case projectSavedMsg:
		m.status = status.Saved("Project "+msg.id, msg.warnings, msg.err)
		if msg.err != nil && store.IsValidation(msg.err) {
			// Reopen the form so the user can fix the field.
			m.form = m.buildForm()
			m.mode = modeForm
			return m, m.form.Init()
		}
		m.mode = modeList
		return m, tea.Batch(m.loadProjects(), func() tea.Msg { return ChangedMsg{} })

	case projectDeletedMsg:
		switch {
		case errors.Is(msg.err, store.ErrCancelled):
			m.status = status.Line{Text: "Delete cancelled"}
		case msg.err != nil:
			m.status = status.Failed(msg.err)
		default:
			m.status = status.Line{Text: fmt.Sprintf("Project %s deleted (image folder kept)", msg.id), Kind: status.Success}
		}
		m.mode = modeList
		return m, tea.Batch(m.loadProjects(), func() tea.Msg { return ChangedMsg{} })

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveForm(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeList:
		return m.handleListKey(msg)
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
		if len(m.projects) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.projects)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.projects) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.projects) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadProjects()

	case key.Matches(msg, m.keys.New):
		m.isNew = true
		m.editingID = m.repo.NextID()
		*m.fb = formBindings{}
		m.status = status.Line{}
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		if len(m.projects) == 0 {
			return m, nil
		}
		p := m.projects[m.selectedIdx]
		m.isNew = false
		m.editingID = p.ID
		*m.fb = formBindings{
			title:       p.Title,
			subtitle:    p.Subtitle,
			description: p.Description,
		}
		m.status = status.Line{}
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		if len(m.projects) == 0 {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) buildForm() *huh.Form {
	heading := "Edit " + m.editingID
	imagesDesc := "One file path per line; the first is the grid image. Leave empty to keep the current images."
	if m.isNew {
		heading = "New project (" + m.editingID + ")"
		imagesDesc = "One file path per line; the first is the grid image."
	}
	isNew := m.isNew

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("Project title").
				Value(&m.fb.title).
				Validate(requiredField("title")),
			huh.NewInput().
				Title("Subtitle").
				Placeholder("Materials, year (optional)").
				Value(&m.fb.subtitle),
			huh.NewText().
				Title("Description").
				Placeholder("Shown on the project page").
				Value(&m.fb.description).
				Validate(requiredField("description")),
			huh.NewText().
				Title("Images").
				Description(imagesDesc).
				Placeholder("/path/to/photo.jpg").
				Lines(4).
				Value(&m.fb.images).
				Validate(func(s string) error {
					if isNew && len(splitLines(s)) == 0 {
						return fmt.Errorf("at least one image is required")
					}
					return nil
				}),
		).Title(heading),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildConfirmForm() *huh.Form {
	label := ""
	if m.selectedIdx < len(m.projects) {
		label = m.projects[m.selectedIdx].Label()
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", label)).
				Description("The record is removed. Its image folder stays on disk.").
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		m.mode = modeList
		return m, m.saveProject()
	}
	if m.form.State == huh.StateAborted {
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
	if m.confirmForm.State == huh.StateCompleted {
		m.mode = modeList
		p := m.projects[m.selectedIdx]
		return m, m.deleteProject(p.ID, m.fb.confirm)
	}
	if m.confirmForm.State == huh.StateAborted {
		m.mode = modeList
		m.status = status.Line{Text: "Delete cancelled"}
		return m, nil
	}
	return m, cmd
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

// View renders the project manager.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.viewForm(m.form)
	case modeConfirmDelete:
		return m.viewForm(m.confirmForm)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGold).MarginBottom(1)
	b.WriteString(titleStyle.Render(fmt.Sprintf("Projects (%d)", len(m.projects))))
	b.WriteString("\n\n")

	if len(m.projects) == 0 {
		emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)
		b.WriteString(emptyStyle.Render("No projects yet. Press 'n' to create one."))
	} else {
		for i, p := range m.projects {
			label := p.Label()
			if len(p.Images) == 0 {
				label += " (no images)"
			}

			if i == m.selectedIdx {
				b.WriteString(theme.SelectedItemStyle.Render(label))
			} else {
				b.WriteString(theme.ListItemStyle.Render(label))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.viewDetail(m.projects[m.selectedIdx]))
	}

	if line := m.status.Render(); line != "" {
		b.WriteString("\n")
		b.WriteString(line)
	}

	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render(
		"n new | e edit | d delete | r reload",
	))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewDetail(p model.Project) string {
	dim := lipgloss.NewStyle().Foreground(theme.ColorGray)
	lines := []string{lipgloss.NewStyle().Bold(true).Render(p.Title)}
	if p.Subtitle != "" {
		lines = append(lines, dim.Render(p.Subtitle))
	}
	lines = append(lines, "", p.Description, "")
	lines = append(lines, dim.Render("folder: "+p.Folder))
	if len(p.Images) > 0 {
		lines = append(lines, dim.Render(fmt.Sprintf("images: %s (primary: %s)",
			strings.Join(p.Images, ", "), p.PrimaryImage())))
	}

	w := m.width - 8
	if w < 20 {
		w = 20
	}
	return theme.BorderStyle.Padding(0, 1).Width(w).Render(strings.Join(lines, "\n"))
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(f.View())
	if line := m.status.Render(); line != "" {
		b.WriteString("\n")
		b.WriteString(line)
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func (m Model) loadProjects() tea.Cmd {
	r := m.repo
	return func() tea.Msg {
		return projectsLoadedMsg{projects: r.Projects()}
	}
}

func (m Model) saveProject() tea.Cmd {
	r := m.repo
	in := model.ProjectInput{
		Title:       m.fb.title,
		Subtitle:    m.fb.subtitle,
		Description: m.fb.description,
		Images:      splitLines(m.fb.images),
	}
	editID := m.editingID
	isNew := m.isNew
	return func() tea.Msg {
		var (
			out store.Outcome[model.Project]
			err error
		)
		if isNew {
			out, err = r.Create(context.Background(), in)
		} else {
			out, err = r.Update(context.Background(), editID, in)
		}
		if err != nil {
			return projectSavedMsg{id: editID, err: err}
		}
		return projectSavedMsg{id: out.Record.ID, warnings: out.Warnings}
	}
}

// deleteProject runs the delete with the dialog's answer as the
// confirmation, so a "Cancel" reaches the store as a refusal.
func (m Model) deleteProject(id string, confirmed bool) tea.Cmd {
	r := m.repo
	return func() tea.Msg {
		err := r.Delete(context.Background(), id, func(p model.Project) bool {
			return confirmed && p.ID == id
		})
		return projectDeletedMsg{id: id, err: err}
	}
}

func requiredField(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
