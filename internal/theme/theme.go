package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rjratcon/rachaeljuzeler/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value). The
// accent follows the site's gold.
var (
	ColorGold   = lipgloss.AdaptiveColor{Dark: "#C9B800", Light: "#786E00"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorBlack  = lipgloss.AdaptiveColor{Dark: "#000000", Light: "#FFFFFF"}
	ColorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the application title bar.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorBlack).
	Background(ColorGold).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// TabStyle renders an inactive section tab.
var TabStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Padding(0, 2)

// ActiveTabStyle renders the selected section tab.
var ActiveTabStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorGold).
	Underline(true).
	Padding(0, 2)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorGold).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorGold)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// PanelStyle wraps overlay panels such as help and the command palette.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// BorderStyle provides a standard rounded border for panels.
var BorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// SuccessStyle, WarningStyle and ErrorStyle color the status line.
var (
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorGreen)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorYellow)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorRed)
)

// WorkStatusStyle returns a color-coded style for an available work status.
func WorkStatusStyle(status string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch status {
	case model.WorkStatusAvailable:
		return base.Foreground(ColorGreen)
	case model.WorkStatusSold:
		return base.Foreground(ColorRed)
	case model.WorkStatusOnHold:
		return base.Foreground(ColorYellow)
	default:
		return base.Foreground(ColorGray)
	}
}
