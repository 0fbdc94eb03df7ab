package app

import (
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/chatter/remap/internal/ui/help"
)

// Action is a function that executes a keybinding's behavior
type Action func(m *Model) (Model, tea.Cmd)

// ActionBinding combines a display binding with its action for dispatch.
type ActionBinding struct {
	help.Binding        // embedded for display (Key, Category, Order)
	Action       Action // nil = display-only (no action)
}

// dispatchKey iterates through bindings and executes the first matching action.
// Returns nil, nil if no binding matches.
func dispatchKey(m *Model, msg tea.KeyPressMsg, bindings []ActionBinding) (*Model, tea.Cmd) {
	for _, ab := range bindings {
		if key.Matches(msg, ab.Key) && ab.Action != nil {
			newModel, cmd := ab.Action(m)
			return &newModel, cmd
		}
	}
	return nil, nil
}

// ToHelpBindings extracts display-only bindings from action bindings.
func ToHelpBindings(abs []ActionBinding) []help.Binding {
	result := make([]help.Binding, len(abs))
	for i, ab := range abs {
		result[i] = ab.Binding
	}
	return result
}

// KeyMap defines the key bindings for the application
type KeyMap struct {
	// Navigation between panes
	FocusKeymap   key.Binding
	FocusKeycodes key.Binding
	FocusFirmware key.Binding
	NextPane      key.Binding
	PrevPane      key.Binding

	// Actions
	CycleLang    key.Binding
	ReloadKeymap key.Binding
	Quit         key.Binding
	ForceQuit    key.Binding
	Help         key.Binding
	CloseHelp    key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		FocusKeymap: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("#", "focus pane"), // Combined display
		),
		FocusKeycodes: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "focus pane"), // Hidden in help (duplicate)
		),
		FocusFirmware: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "focus pane"), // Hidden in help (duplicate)
		),
		NextPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("⇥", "next pane"),
		),
		PrevPane: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("⇧⇥", "prev pane"),
		),
		CycleLang: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "label language"),
		),
		ReloadKeymap: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reload keymap"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		CloseHelp: key.NewBinding(
			key.WithKeys("?", "esc"),
		),
	}
}
