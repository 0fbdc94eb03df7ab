package help

import (
	"slices"
	"strings"

	"charm.land/lipgloss/v2"
)

// StatusBar renders a single status line: key hints on the left, a transient
// message after them and the version right-aligned.
type StatusBar struct {
	width    int
	version  string
	message  string
	bindings []Binding

	// Styles
	keyStyle  lipgloss.Style
	descStyle lipgloss.Style
	sepStyle  lipgloss.Style
	msgStyle  lipgloss.Style
}

// NewStatusBar creates a new status bar that displays the given version string.
func NewStatusBar(version string) *StatusBar {
	return &StatusBar{
		version:   version,
		keyStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("#999999")),
		descStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("#777777")),
		sepStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("#555555")),
		msgStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
	}
}

// SetWidth sets the available width for rendering.
func (s *StatusBar) SetWidth(width int) {
	s.width = width
}

// SetBindings sets the hints to show. Disabled bindings are skipped.
func (s *StatusBar) SetBindings(bindings []Binding) {
	s.bindings = bindings
}

// SetMessage sets the transient message, or clears it with "".
func (s *StatusBar) SetMessage(msg string) {
	s.message = msg
}

// Message returns the transient message.
func (s *StatusBar) Message() string {
	return s.message
}

// View renders the status bar.
func (s *StatusBar) View() string {
	if s.width <= 0 {
		return ""
	}

	const minGap = 1

	version := s.version
	versionWidth := lipgloss.Width(version)
	if versionWidth+minGap > s.width {
		version, versionWidth = "", 0
	}
	avail := s.width - versionWidth - minGap

	sep := s.sepStyle.Render(" • ")
	var left string
	for _, hint := range s.hints() {
		candidate := hint
		if left != "" {
			candidate = left + sep + hint
		}
		if lipgloss.Width(candidate) > avail {
			break
		}
		left = candidate
	}

	if s.message != "" {
		candidate := s.msgStyle.Render(s.message)
		if left != "" {
			candidate = left + "  " + candidate
		}
		if lipgloss.Width(candidate) <= avail {
			left = candidate
		}
	}

	padding := max(s.width-lipgloss.Width(left)-versionWidth, 0)

	return left + strings.Repeat(" ", padding) + version
}

// hints renders enabled bindings, pinned first, then by order.
func (s *StatusBar) hints() []string {
	enabled := make([]Binding, 0, len(s.bindings))
	for _, b := range s.bindings {
		if b.Key.Enabled() && b.Key.Help().Key != "" {
			enabled = append(enabled, b)
		}
	}

	slices.SortStableFunc(enabled, func(a, b Binding) int {
		if a.Pinned != b.Pinned {
			if a.Pinned {
				return -1
			}
			return 1
		}
		return a.Order - b.Order
	})

	seen := make(map[string]bool, len(enabled))
	hints := make([]string, 0, len(enabled))
	for _, b := range enabled {
		h := b.Key.Help()
		if seen[h.Key] {
			continue
		}
		seen[h.Key] = true
		hints = append(hints, s.keyStyle.Render(h.Key)+" "+s.descStyle.Render(h.Desc))
	}
	return hints
}
