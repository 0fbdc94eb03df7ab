package ui

import (
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"

	"github.com/chatter/remap/internal/macro"
	"github.com/chatter/remap/internal/ui/help"
)

// MacroSavedMsg carries the edited text of a macro key.
type MacroSavedMsg struct {
	Name string
	Text string
}

// MacroClosedMsg is sent when the editor closes without saving.
type MacroClosedMsg struct{}

type macroKeys struct {
	save   key.Binding
	cancel key.Binding
}

func defaultMacroKeys() macroKeys {
	return macroKeys{
		save:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save macro")),
		cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("⎋", "close editor")),
	}
}

// MacroEditor edits the text of one macro key. While it is open the keycode
// picker appends chosen keys to the text instead of assigning them.
type MacroEditor struct {
	styles  *Styles
	keys    macroKeys
	text    textarea.Model
	name    string
	label   string
	open    bool
	focused bool
	width   int
	height  int
}

// NewMacroEditor creates a closed editor.
func NewMacroEditor(styles *Styles) MacroEditor {
	text := textarea.New()
	text.Placeholder = "hello{KC_ENT}  {KC_LCTL,KC_C}"
	text.ShowLineNumbers = false
	text.SetHeight(4)

	return MacroEditor{
		styles: styles,
		keys:   defaultMacroKeys(),
		text:   text,
	}
}

// Open starts editing the macro stored under name.
func (e *MacroEditor) Open(name, label, text string) tea.Cmd {
	e.name = name
	e.label = label
	e.open = true
	e.text.SetValue(text)
	if e.focused {
		return e.text.Focus()
	}
	return nil
}

// Close stops editing.
func (e *MacroEditor) Close() {
	e.open = false
	e.name = ""
	e.label = ""
	e.text.Blur()
}

// IsOpen reports whether a macro is being edited.
func (e *MacroEditor) IsOpen() bool {
	return e.open
}

// Name returns the macro keycode name being edited.
func (e *MacroEditor) Name() string {
	return e.name
}

// Value returns the current macro text.
func (e *MacroEditor) Value() string {
	return e.text.Value()
}

// AppendKey appends a single-tap group for the named keycode.
func (e *MacroEditor) AppendKey(name string) {
	e.text.SetValue(macro.AppendKey(e.text.Value(), name))
}

// SetSize sets the editor dimensions.
func (e *MacroEditor) SetSize(width, height int) {
	e.width = width
	e.height = height
	e.text.SetWidth(max(width-PanelBorderWidth, 10))
	e.text.SetHeight(max(height-PanelChromeHeight-3, 1))
}

// SetFocused sets the focus state.
func (e *MacroEditor) SetFocused(focused bool) tea.Cmd {
	e.focused = focused
	if !focused {
		e.text.Blur()
		return nil
	}
	if e.open {
		return e.text.Focus()
	}
	return nil
}

// Capturing reports whether typed keys go to the text area.
func (e *MacroEditor) Capturing() bool {
	return e.open && e.focused
}

// Check parses and encodes the current text. It returns the encoded size.
func (e *MacroEditor) Check() (int, error) {
	steps, err := macro.Parse(e.text.Value())
	if err != nil {
		return 0, err
	}
	buf, err := macro.Encode(steps)
	if err != nil {
		return 0, err
	}
	return len(buf), nil
}

// Update handles input.
func (e *MacroEditor) Update(msg tea.Msg) tea.Cmd {
	if !e.open || !e.focused {
		return nil
	}

	if k, ok := msg.(tea.KeyPressMsg); ok {
		switch {
		case key.Matches(k, e.keys.cancel):
			e.Close()
			return func() tea.Msg { return MacroClosedMsg{} }
		case key.Matches(k, e.keys.save):
			if _, err := e.Check(); err != nil {
				return status(err.Error())
			}
			saved := MacroSavedMsg{Name: e.name, Text: e.text.Value()}
			e.Close()
			return func() tea.Msg { return saved }
		}
	}

	var cmd tea.Cmd
	e.text, cmd = e.text.Update(msg)
	return cmd
}

// View renders the editor.
func (e *MacroEditor) View() string {
	title := "Macro"
	if e.label != "" {
		title += ": " + e.label
	}

	lines := []string{
		e.styles.PanelTitle(1, title, e.focused),
		e.text.View(),
		e.checkLine(),
		e.styles.Hint.Render("type text, {KC_X} taps a key, {KC_A,KC_B} is a chord"),
	}
	return e.styles.PanelFrame(e.focused, e.width, e.height).Render(strings.Join(lines, "\n"))
}

func (e *MacroEditor) checkLine() string {
	n, err := e.Check()
	var syntax *macro.SyntaxError
	switch {
	case errors.As(err, &syntax):
		return e.styles.Error.Render(fmt.Sprintf("col %d: %s", syntax.Pos+1, syntax.Msg))
	case err != nil:
		return e.styles.Error.Render(err.Error())
	}
	return e.styles.Dim.Render(fmt.Sprintf("%d bytes", n))
}

// HelpBindings returns the keybindings for the editor (display-only, for status bar).
func (e *MacroEditor) HelpBindings() []help.Binding {
	if !e.open {
		return nil
	}
	return []help.Binding{
		{Key: e.keys.save, Category: help.CategoryMacro, Order: PanelOrderPrimary, Pinned: true},
		{Key: e.keys.cancel, Category: help.CategoryMacro, Order: PanelOrderPrimary},
	}
}
