package help

import (
	"regexp"

	"charm.land/bubbles/v2/key"
	"pgregory.net/rapid"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

func bind(k, desc string, cat Category, order int) Binding {
	return Binding{
		Key:      key.NewBinding(key.WithKeys(k), key.WithHelp(k, desc)),
		Category: cat,
		Order:    order,
	}
}

func pinned(b Binding) Binding {
	b.Pinned = true
	return b
}

// remapBindings is the full set of hints the app shows at once with every
// pane populated. Descriptions are unique and none contains another.
func remapBindings() []Binding {
	return []Binding{
		bind("#", "focus pane", CategoryNavigation, 50),
		bind("⇥", "next pane", CategoryNavigation, 20),
		bind("⇧⇥", "prev pane", CategoryNavigation, 21),
		pinned(bind("q", "quit", CategoryActions, 99)),
		pinned(bind("?", "help", CategoryActions, 100)),
		bind("L", "label language", CategoryActions, 60),
		bind("/", "search", CategoryKeycodes, 1),
		bind("enter", "choose key", CategoryKeycodes, 2),
		bind("c", "copy name", CategoryKeycodes, 3),
		bind("space", "select key", CategoryKeymap, 4),
		bind("s", "save keymap", CategoryKeymap, 5),
		bind("r", "revert key", CategoryKeymap, 6),
		bind("u", "upload", CategoryFirmware, 7),
		bind("x", "delete", CategoryFirmware, 8),
		bind("ctrl+s", "store macro", CategoryMacro, 9),
		bind("esc", "cancel", CategoryMacro, 10),
	}
}

// drawBindings draws a subset of remapBindings with some disabled.
func drawBindings(t *rapid.T) (bindings []Binding, disabled map[string]bool) {
	disabled = make(map[string]bool)
	for _, b := range remapBindings() {
		if !rapid.Bool().Draw(t, "keep "+b.Key.Help().Desc) {
			continue
		}
		if rapid.IntRange(0, 4).Draw(t, "disable "+b.Key.Help().Desc) == 0 {
			b.Key.SetEnabled(false)
			disabled[b.Key.Help().Desc] = true
		}
		bindings = append(bindings, b)
	}
	return bindings, disabled
}
