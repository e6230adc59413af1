package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/rjratcon/rachaeljuzeler/internal/keys"
	"github.com/rjratcon/rachaeljuzeler/internal/store"
	"github.com/rjratcon/rachaeljuzeler/internal/ui"
	"github.com/rjratcon/rachaeljuzeler/internal/ui/command"
	"github.com/rjratcon/rachaeljuzeler/internal/ui/contactedit"
	"github.com/rjratcon/rachaeljuzeler/internal/ui/cvedit"
	helpview "github.com/rjratcon/rachaeljuzeler/internal/ui/help"
	"github.com/rjratcon/rachaeljuzeler/internal/ui/projectmgr"
	"github.com/rjratcon/rachaeljuzeler/internal/ui/updatemgr"
	"github.com/rjratcon/rachaeljuzeler/internal/ui/workmgr"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewSection ViewState = iota
	ViewHelp
	ViewCommand
)

// Section is one of the site areas shown as a tab.
type Section int

const (
	SectionProjects Section = iota
	SectionCV
	SectionUpdates
	SectionContact
	SectionAvailable
)

var sectionNames = []string{"Projects", "About/CV", "Updates", "Contact", "Available"}

func (s Section) String() string {
	if int(s) < len(sectionNames) {
		return sectionNames[s]
	}
	return fmt.Sprintf("section(%d)", int(s))
}

// ExportFunc writes the project records back out in the site's script
// format and returns the path written.
type ExportFunc func() (string, error)

// Options wires the application to its stores.
type Options struct {
	Projects store.ProjectRepository
	Content  store.ContentRepository
	Export   ExportFunc

	// Site is shown in the header.
	Site string

	Log zerolog.Logger
}

type exportedMsg struct {
	path string
	err  error
}

// Model is the root Bubble Tea model that routes between the section
// tabs and the help and command overlays.
type Model struct {
	currentView  ViewState
	previousView ViewState
	section      Section
	layout       ui.Layout
	keys         *keys.KeyMap
	projectView  projectmgr.Model
	cvView       cvedit.Model
	updateView   updatemgr.Model
	contactView  contactedit.Model
	workView     workmgr.Model
	helpView     helpview.Model
	commandView  command.Model
	export       ExportFunc
	site         string
	log          zerolog.Logger
	ready        bool
	unexported   bool
	notice       string
}

// New creates a new root application model.
func New(opts Options) Model {
	k := keys.DefaultKeyMap()
	return Model{
		currentView: ViewSection,
		section:     SectionProjects,
		keys:        k,
		projectView: projectmgr.New(opts.Projects, k, 80, 24),
		cvView:      cvedit.New(opts.Content, k, 80, 24),
		updateView:  updatemgr.New(opts.Content, k, 80, 24),
		contactView: contactedit.New(opts.Content, k, 80, 24),
		workView:    workmgr.New(opts.Content, k, 80, 24),
		helpView:    helpview.New(k, opts.Site, 80, 24),
		commandView: command.New(80, 24),
		export:      opts.Export,
		site:        opts.Site,
		log:         opts.Log,
	}
}

// Init loads every section so switching tabs shows data at once.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.projectView.Init(),
		m.cvView.Init(),
		m.updateView.Init(),
		m.contactView.Init(),
		m.workView.Init(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.projectView.SetSize(contentWidth, contentHeight)
		m.cvView.SetSize(contentWidth, contentHeight)
		m.updateView.SetSize(contentWidth, contentHeight)
		m.contactView.SetSize(contentWidth, contentHeight)
		m.workView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		// Forward to active section so huh forms can calculate their layout.
		return m.updateSection(m.section, msg)

	case projectmgr.ChangedMsg:
		m.unexported = true
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.log.Error().Err(msg.err).Msg("export failed")
			m.notice = fmt.Sprintf("Export failed: %v", msg.err)
		} else {
			m.log.Info().Str("path", msg.path).Msg("projects exported")
			m.notice = "Exported to " + msg.path
			m.unexported = false
		}
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(string(msg))

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}
		return m.updateActiveView(msg)
	}

	// Results of store commands go to every section; each ignores the
	// messages of the others.
	return m.broadcast(msg)
}

// handleGlobalKey processes keys that work outside forms. The boolean is
// false when the key should go to the active view instead.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch m.currentView {
	case ViewHelp:
		if key.Matches(msg, m.keys.Help, m.keys.Back, m.keys.Quit) {
			m.currentView = m.previousView
			return nil, true
		}
		return nil, true

	case ViewCommand:
		if key.Matches(msg, m.keys.Back) {
			m.currentView = m.previousView
			return nil, true
		}
		return nil, false
	}

	if m.sectionEditing() {
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit, true
	case key.Matches(msg, m.keys.NextTab):
		m.section = (m.section + 1) % Section(len(sectionNames))
		m.notice = ""
		return nil, true
	case key.Matches(msg, m.keys.PrevTab):
		m.section = (m.section - 1 + Section(len(sectionNames))) % Section(len(sectionNames))
		m.notice = ""
		return nil, true
	case key.Matches(msg, m.keys.Help):
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil, true
	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m.commandView.Focus(), true
	}
	return nil, false
}

// sectionEditing reports whether the active section has a form open.
func (m Model) sectionEditing() bool {
	switch m.section {
	case SectionProjects:
		return m.projectView.Editing()
	case SectionCV:
		return m.cvView.Editing()
	case SectionUpdates:
		return m.updateView.Editing()
	case SectionContact:
		return m.contactView.Editing()
	case SectionAvailable:
		return m.workView.Editing()
	}
	return false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	default:
		return m.updateSection(m.section, msg)
	}

	return m, cmd
}

func (m Model) updateSection(s Section, msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch s {
	case SectionProjects:
		m.projectView, cmd = m.projectView.Update(msg)
	case SectionCV:
		m.cvView, cmd = m.cvView.Update(msg)
	case SectionUpdates:
		m.updateView, cmd = m.updateView.Update(msg)
	case SectionContact:
		m.contactView, cmd = m.contactView.Update(msg)
	case SectionAvailable:
		m.workView, cmd = m.workView.Update(msg)
	}

	return m, cmd
}

func (m Model) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, len(sectionNames)+1)
	for s := range Section(len(sectionNames)) {
		var cmd tea.Cmd
		m, cmd = m.updateSection(s, msg)
		cmds = append(cmds, cmd)
	}
	if m.currentView == ViewCommand {
		var cmd tea.Cmd
		m.commandView, cmd = m.commandView.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := "Portfolio Content Manager"
	if m.unexported {
		title += " [not exported]"
	}
	header := m.layout.RenderHeader(title, m.site) + "\n" +
		m.layout.RenderTabs(sectionNames, int(m.section))
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	}

	switch m.section {
	case SectionProjects:
		return m.projectView.View()
	case SectionCV:
		return m.cvView.View()
	case SectionUpdates:
		return m.updateView.View()
	case SectionContact:
		return m.contactView.View()
	case SectionAvailable:
		return m.workView.View()
	default:
		return ""
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	}
	if m.sectionEditing() {
		return "enter next/submit | shift+tab previous field | esc cancel"
	}
	if m.notice != "" {
		return m.notice
	}
	return "tab section | : command | ? help | q quit"
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(input string) tea.Cmd {
	switch command.Resolve(input) {
	case "projects":
		m.section = SectionProjects
	case "cv":
		m.section = SectionCV
	case "updates":
		m.section = SectionUpdates
	case "contact":
		m.section = SectionContact
	case "available":
		m.section = SectionAvailable
	case "export":
		return m.runExport()
	case "quit":
		return tea.Quit
	default:
		m.notice = fmt.Sprintf("Unknown command %q", input)
	}
	return nil
}

func (m Model) runExport() tea.Cmd {
	export := m.export
	if export == nil {
		return func() tea.Msg {
			return exportedMsg{err: fmt.Errorf("export is not configured")}
		}
	}
	return func() tea.Msg {
		path, err := export()
		return exportedMsg{path: path, err: err}
	}
}
