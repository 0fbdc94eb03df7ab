package help

import (
	"slices"
	"strings"

	"charm.land/lipgloss/v2"
)

// FloatingHelp renders a modal with the active keybindings grouped by
// category.
type FloatingHelp struct {
	width    int
	height   int
	title    string
	bindings []Binding

	// Styles (cached for frame size calculations)
	borderStyle lipgloss.Style
	titleStyle  lipgloss.Style
	headerStyle lipgloss.Style
	keyStyle    lipgloss.Style
	descStyle   lipgloss.Style
	footerStyle lipgloss.Style
}

// NewFloatingHelp creates a new floating help modal.
func NewFloatingHelp() *FloatingHelp {
	return &FloatingHelp{
		title: "Help",
		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2),
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")),
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")),
		keyStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")),
		descStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		footerStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
	}
}

// SetSize sets the available size for the modal.
func (f *FloatingHelp) SetSize(width, height int) {
	f.width = width
	f.height = height
}

// SetTitle sets the modal title, "Help" by default.
func (f *FloatingHelp) SetTitle(title string) {
	f.title = title
}

// SetBindings sets the keybindings to display.
func (f *FloatingHelp) SetBindings(bindings []Binding) {
	f.bindings = bindings
}

// View renders the floating help modal.
func (f *FloatingHelp) View() string {
	if f.width <= 0 || f.height <= 0 {
		return ""
	}

	innerWidth := f.width - f.borderStyle.GetHorizontalFrameSize()
	innerHeight := f.height - f.borderStyle.GetVerticalFrameSize()

	if innerWidth < 20 || innerHeight < 5 {
		return f.borderStyle.Width(max(innerWidth, 10)).Render("...")
	}

	// title line + footer line
	lines := f.renderLines(innerWidth)
	if avail := innerHeight - 2; len(lines) > avail {
		lines = lines[:avail]
	}

	body := lipgloss.JoinVertical(lipgloss.Left, f.titleStyle.Render(f.title), strings.Join(lines, "\n"))
	body = lipgloss.Place(innerWidth, innerHeight-1, lipgloss.Left, lipgloss.Top, body)

	footer := f.footerStyle.Render("? to close")
	footer = strings.Repeat(" ", max(innerWidth-lipgloss.Width(footer), 0)) + footer

	return f.borderStyle.Render(body + "\n" + footer)
}

// categoryOrder defines the display order of categories
var categoryOrder = []Category{
	CategoryNavigation,
	CategoryActions,
	CategoryKeycodes,
	CategoryKeymap,
	CategoryFirmware,
	CategoryMacro,
}

// groupByCategory groups enabled bindings by category, sorted by order and
// without repeated keys.
func (f *FloatingHelp) groupByCategory() map[Category][]Binding {
	groups := make(map[Category][]Binding)
	seen := make(map[string]bool)

	for _, b := range f.bindings {
		if !b.Key.Enabled() {
			continue
		}
		id := string(b.Category) + "\x00" + b.Key.Help().Key
		if seen[id] {
			continue
		}
		seen[id] = true
		groups[b.Category] = append(groups[b.Category], b)
	}

	for cat := range groups {
		slices.SortStableFunc(groups[cat], func(a, b Binding) int {
			return a.Order - b.Order
		})
	}

	return groups
}

func (f *FloatingHelp) renderLines(availableWidth int) []string {
	groups := f.groupByCategory()
	if len(groups) == 0 {
		return []string{"No keybindings available"}
	}

	keyWidth := 0
	for _, bindings := range groups {
		for _, b := range bindings {
			keyWidth = max(keyWidth, lipgloss.Width(b.Key.Help().Key))
		}
	}

	// indent (2) + key + gap (2)
	keyStyle := f.keyStyle.Width(keyWidth + 2)
	descStyle := f.descStyle.MaxWidth(max(availableWidth-4-keyWidth, 10))

	var lines []string
	for _, cat := range categoryOrder {
		bindings := groups[cat]
		if len(bindings) == 0 {
			continue
		}

		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, f.headerStyle.Render(string(cat)))

		for _, b := range bindings {
			h := b.Key.Help()
			lines = append(lines, "  "+keyStyle.Render(h.Key)+descStyle.Render(h.Desc))
		}
	}

	return lines
}
