package ui

import (
	"strconv"

	"charm.land/lipgloss/v2"
)

// Panel chrome sizes.
const (
	PanelBorderWidth  = 2
	PanelBorderHeight = 2
	// PanelChromeHeight is the border plus the title line.
	PanelChromeHeight = 3
)

// Status bar ordering for panel bindings; app-level bindings use higher values.
const (
	PanelOrderPrimary   = 1
	PanelOrderSecondary = 2
)

// Colors
var (
	primaryColor   = lipgloss.Color("62")  // Purple
	secondaryColor = lipgloss.Color("241") // Gray
	accentColor    = lipgloss.Color("86")  // Cyan
	borderColor    = lipgloss.Color("240") // Dark gray
	remapColor     = lipgloss.Color("214") // Orange
	errorColor     = lipgloss.Color("196") // Red
	markColor      = lipgloss.Color("205") // Magenta
)

// Styles holds the rendering styles shared by every panel.
type Styles struct {
	Panel        lipgloss.Style
	FocusedPanel lipgloss.Style
	Title        lipgloss.Style
	FocusedTitle lipgloss.Style
	StatusBar    lipgloss.Style

	// Cell is one key of a keycode or keymap grid.
	Cell         lipgloss.Style
	SelectedCell lipgloss.Style
	RemappedCell lipgloss.Style
	MacroCell    lipgloss.Style

	Tab         lipgloss.Style
	ActiveTab   lipgloss.Style
	DisabledTab lipgloss.Style

	Card  lipgloss.Style
	Label lipgloss.Style
	Dim   lipgloss.Style
	Hint  lipgloss.Style
	Error lipgloss.Style
	Mark  lipgloss.Style
}

// DefaultStyles returns the application styles.
func DefaultStyles() *Styles {
	return &Styles{
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor),
		FocusedPanel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1),
		FocusedTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(secondaryColor),

		Cell: lipgloss.NewStyle().
			Align(lipgloss.Center),
		SelectedCell: lipgloss.NewStyle().
			Align(lipgloss.Center).
			Bold(true).
			Reverse(true),
		RemappedCell: lipgloss.NewStyle().
			Align(lipgloss.Center).
			Foreground(remapColor),
		MacroCell: lipgloss.NewStyle().
			Align(lipgloss.Center).
			Underline(true),

		Tab: lipgloss.NewStyle().
			Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true).
			Foreground(accentColor).
			Underline(true),
		DisabledTab: lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(borderColor).
			Strikethrough(true),

		Card: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(borderColor).
			Padding(0, 1),
		Label: lipgloss.NewStyle().
			Bold(true),
		Dim: lipgloss.NewStyle().
			Foreground(secondaryColor),
		Hint: lipgloss.NewStyle().
			Foreground(secondaryColor).
			Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(errorColor),
		Mark: lipgloss.NewStyle().
			Foreground(markColor),
	}
}

// PanelTitle returns a formatted panel title with optional focus indicator
func (s *Styles) PanelTitle(num int, title string, focused bool) string {
	prefix := ""
	if focused {
		prefix = "● "
	}
	titleText := prefix + "[" + strconv.Itoa(num) + "] " + title

	if focused {
		return s.FocusedTitle.Render(titleText)
	}
	return s.Title.Render(titleText)
}

// PanelFrame returns the border style for a panel of the given outer size.
func (s *Styles) PanelFrame(focused bool, width, height int) lipgloss.Style {
	style := s.Panel
	if focused {
		style = s.FocusedPanel
	}
	return style.
		Width(max(width-PanelBorderWidth, 0)).
		Height(max(height-PanelBorderHeight, 0))
}
