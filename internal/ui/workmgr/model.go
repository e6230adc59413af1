package workmgr

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

type workMode int

const (
	modeList workMode = iota
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	input   model.AvailableWorkInput
	confirm bool
}

type worksLoadedMsg struct {
	works []model.AvailableWork
	err   error
}

type workSavedMsg struct {
	warnings []string
	err      error
}

type workDeletedMsg struct{ err error }

// Model manages the works listed as available for sale.
type Model struct {
	mode        workMode
	repo        store.ContentRepository
	keys        *keys.KeyMap
	works       []model.AvailableWork
	selectedIdx int
	editingID   string
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	status      status.Line
	width       int
	height      int
}

// New creates the available works manager.
func New(r store.ContentRepository, k *keys.KeyMap, width, height int) Model {
	return Model{
		repo:  r,
		keys:  k,
		fb:    &formBindings{},
		width: width, height: height,
	}
}

// Init loads the works.
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
	case worksLoadedMsg:
		if msg.err != nil {
			m.status = status.Failed(msg.err)
			return m, nil
		}
		m.works = msg.works
		if m.selectedIdx >= len(m.works) && m.selectedIdx > 0 {
			m.selectedIdx = len(m.works) - 1
		}
		return m, nil

	case workSavedMsg:
		m.status = status.Saved("Work", msg.warnings, msg.err)
		return m, m.load()

	case workDeletedMsg:
		if msg.err != nil {
			m.status = status.Failed(msg.err)
		} else {
			m.status = status.Line{Text: "Work deleted (image kept)", Kind: status.Success}
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
		if len(m.works) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.works)
		}
	case key.Matches(msg, m.keys.Up):
		if len(m.works) > 0 {
			m.selectedIdx = (m.selectedIdx - 1 + len(m.works)) % len(m.works)
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.load()

	case key.Matches(msg, m.keys.New):
		m.editingID = ""
		*m.fb = formBindings{input: model.AvailableWorkInput{Status: model.WorkStatusAvailable}}
		m.status = status.Line{}
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		if len(m.works) == 0 {
			return m, nil
		}
		w := m.works[m.selectedIdx]
		m.editingID = w.ID
		*m.fb = formBindings{input: model.AvailableWorkInput{
			Title:  w.Title,
			Medium: w.Medium,
			Price:  w.Price,
			Status: w.Status,
		}}
		m.status = status.Line{}
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		if len(m.works) == 0 {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Delete %q?", m.works[m.selectedIdx].Title)).
					Description("The image file stays on disk.").
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
	heading := "New available work"
	imageDesc := "Path of the image to copy."
	if m.editingID != "" {
		heading = "Edit available work"
		imageDesc = "Leave empty to keep the current image."
	}
	isNew := m.editingID == ""

	options := make([]huh.Option[string], len(model.WorkStatuses))
	for i, s := range model.WorkStatuses {
		options[i] = huh.NewOption(s, s)
	}

	in := &m.fb.input
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&in.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title is required")
					}
					return nil
				}),
			huh.NewInput().Title("Medium").Placeholder("Bronze, steel").Value(&in.Medium),
			huh.NewInput().Title("Price").Placeholder("$1,200").Value(&in.Price),
			huh.NewSelect[string]().Title("Status").Options(options...).Value(&in.Status),
			huh.NewInput().
				Title("Image").
				Description(imageDesc).
				Placeholder("/path/to/photo.jpg").
				Value(&in.ImagePath).
				Validate(func(s string) error {
					if isNew && strings.TrimSpace(s) == "" {
						return fmt.Errorf("image is required")
					}
					return nil
				}),
		).Title(heading),
	).WithWidth(m.formWidth()).WithHeight(max(m.height-4, 14))
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
		return m, m.delete(m.works[m.selectedIdx].ID)
	case huh.StateAborted:
		m.mode = modeList
		m.status = status.Line{Text: "Delete cancelled"}
		return m, nil
	}
	return m, cmd
}

// View renders the works list or the active form.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	case modeConfirmDelete:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirmForm.View())
	}

	var b strings.Builder
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGold).MarginBottom(1)
	b.WriteString(titleStyle.Render(fmt.Sprintf("Available works (%d)", len(m.works))))
	b.WriteString("\n\n")

	if len(m.works) == 0 {
		b.WriteString(theme.HelpStyle.Render("Nothing listed. Press 'n' to add a work."))
	}
	dim := lipgloss.NewStyle().Foreground(theme.ColorGray)
	for i, w := range m.works {
		label := fmt.Sprintf("%s  %s", theme.WorkStatusStyle(w.Status).Render(w.Status), w.Title)
		if w.Price != "" {
			label += dim.Render("  " + w.Price)
		}
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(label))
		} else {
			b.WriteString(theme.ListItemStyle.Render(label))
		}
		b.WriteString("\n")
	}

	if len(m.works) > 0 {
		w := m.works[m.selectedIdx]
		image := w.Image
		if image == "" {
			image = "(none)"
		}
		detail := strings.Join([]string{
			lipgloss.NewStyle().Bold(true).Render(w.Title),
			dim.Render("medium: " + w.Medium),
			dim.Render("image: " + image),
		}, "\n")
		b.WriteString("\n")
		b.WriteString(theme.BorderStyle.Padding(0, 1).Width(max(m.width-8, 20)).Render(detail))
	}

	if line := m.status.Render(); line != "" {
		b.WriteString("\n")
		b.WriteString(line)
	}
	b.WriteString("\n\n")
	b.WriteString(dim.Render("n new | e edit | d delete | r reload"))

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
		works, err := r.AvailableWorks(context.Background())
		return worksLoadedMsg{works: works, err: err}
	}
}

func (m Model) save() tea.Cmd {
	r := m.repo
	id := m.editingID
	in := m.fb.input
	return func() tea.Msg {
		var (
			out store.Outcome[model.AvailableWork]
			err error
		)
		if id == "" {
			out, err = r.CreateAvailableWork(context.Background(), in)
		} else {
			out, err = r.UpdateAvailableWork(context.Background(), id, in)
		}
		return workSavedMsg{warnings: out.Warnings, err: err}
	}
}

func (m Model) delete(id string) tea.Cmd {
	r := m.repo
	return func() tea.Msg {
		return workDeletedMsg{err: r.DeleteAvailableWork(context.Background(), id)}
	}
}
