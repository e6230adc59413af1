package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestLayout_RowsSpanWidth(t *testing.T) {
	l := NewLayout(60, 20)

	header := l.RenderHeader("Portfolio Content Manager", "/srv/site")
	assert.Equal(t, 60, lipgloss.Width(header))
	assert.Contains(t, header, "/srv/site")

	bar := l.RenderStatusBar("tab section | q quit")
	assert.Equal(t, 60, lipgloss.Width(bar))

	assert.Equal(t, 17, l.ContentHeight())
}

func TestLayout_TabsClippedToWidth(t *testing.T) {
	l := NewLayout(20, 10)
	tabs := l.RenderTabs([]string{"Projects", "About/CV", "Updates", "Contact"}, 1)
	assert.LessOrEqual(t, lipgloss.Width(tabs), 20)
}
