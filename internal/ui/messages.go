package ui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/chatter/remap/internal/keycodes"
)

// StatusMsg asks the app to show a transient status line message.
type StatusMsg struct {
	Text string
}

// KeyChosenMsg is sent when a keycode is picked for assignment.
type KeyChosenMsg struct {
	Key *keycodes.Key
}

// EditMacroMsg is sent when a macro key is picked outside macro-edit mode.
type EditMacroMsg struct {
	Key *keycodes.Key
}

// AddAnyKeyMsg asks for a custom keycode to be added to the Any category.
type AddAnyKeyMsg struct {
	Code uint16
}

// CopiedMsg reports a clipboard copy.
type CopiedMsg struct {
	Text string
	Err  error
}

func status(text string) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text} }
}
