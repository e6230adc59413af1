package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rjratcon/rachaeljuzeler/internal/theme"
)

// Layout manages the multi-panel terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions. The
// header takes two rows (title bar and section tabs); the status bar one.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    2,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// RenderHeader renders the title on the left and the site path on the
// right of a full-width header bar.
func (l Layout) RenderHeader(title string, site string) string {
	return l.fillRow(theme.HeaderStyle, title, site)
}

// RenderTabs renders the section tabs with the active one highlighted.
func (l Layout) RenderTabs(names []string, active int) string {
	tabs := make([]string, len(names))
	for i, name := range names {
		style := theme.TabStyle
		if i == active {
			style = theme.ActiveTabStyle
		}
		tabs[i] = style.Render(name)
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	return lipgloss.NewStyle().MaxWidth(l.Width).Render(row)
}

// RenderStatusBar renders the bottom status bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	return l.fillRow(theme.StatusBarStyle, hints, "")
}

// fillRow renders left and right in style with the background carried
// across the gap so the row spans the full width.
func (l Layout) fillRow(style lipgloss.Style, left, right string) string {
	parts := []string{style.Render(left)}
	if right != "" {
		parts = append(parts, style.Render(right))
	}
	gap := l.Width
	for _, p := range parts {
		gap -= lipgloss.Width(p)
	}
	filler := lipgloss.NewStyle().
		Width(max(gap, 0)).
		Background(style.GetBackground()).
		Render("")

	if len(parts) == 1 {
		return lipgloss.JoinHorizontal(lipgloss.Top, parts[0], filler)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts[0], filler, parts[1])
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(
	header string,
	content string,
	statusBar string,
) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}
