package ui

import (
	"fmt"
	"slices"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"

	"github.com/chatter/remap/internal/hid"
	"github.com/chatter/remap/internal/keycodes"
	"github.com/chatter/remap/internal/ui/help"
)

// keycodeCellWidth is the width of one key in the picker grid.
const keycodeCellWidth = 8

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

type keycodesKeys struct {
	search   key.Binding
	done     key.Binding
	cancel   key.Binding
	prevCat  key.Binding
	nextCat  key.Binding
	left     key.Binding
	right    key.Binding
	up       key.Binding
	down     key.Binding
	choose   key.Binding
	copyName key.Binding
	addKey   key.Binding
}

func defaultKeycodesKeys() keycodesKeys {
	return keycodesKeys{
		search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		done:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("⏎", "done")),
		cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("⎋", "clear search")),
		prevCat:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev category")),
		nextCat:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next category")),
		left:     key.NewBinding(key.WithKeys("h", "left")),
		right:    key.NewBinding(key.WithKeys("l", "right")),
		up:       key.NewBinding(key.WithKeys("k", "up")),
		down:     key.NewBinding(key.WithKeys("j", "down")),
		choose:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("⏎", "assign")),
		copyName: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy name")),
		addKey:   key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "add keycode")),
	}
}

// KeycodesPanel shows the keycode categories, the search box and the keys of
// the active category or search as a grid.
type KeycodesPanel struct {
	picker  *keycodes.Picker
	styles  *Styles
	keys    keycodesKeys
	search  textinput.Model
	add     textinput.Model
	adding  bool
	cursor  int
	offset  int // first visible grid row
	focused bool
	width   int
	height  int
}

// NewKeycodesPanel creates the panel over picker.
func NewKeycodesPanel(styles *Styles, picker *keycodes.Picker) KeycodesPanel {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search keycodes"

	add := textinput.New()
	add.Prompt = "+ "
	add.Placeholder = "KC_A, LSFT(KC_1) or 0x0004"

	return KeycodesPanel{
		picker: picker,
		styles: styles,
		keys:   defaultKeycodesKeys(),
		search: search,
		add:    add,
	}
}

// SetSize sets the panel dimensions.
func (p *KeycodesPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	inner := max(width-PanelBorderWidth, 1)
	p.search.SetWidth(max(inner-lipgloss.Width(p.search.Prompt)-1, 1))
	p.add.SetWidth(max(inner-lipgloss.Width(p.add.Prompt)-1, 1))
}

// SetFocused sets the focus state.
func (p *KeycodesPanel) SetFocused(focused bool) {
	p.focused = focused
	if !focused {
		p.search.Blur()
		p.add.Blur()
		p.adding = false
	}
}

// Focused reports whether the panel has focus.
func (p *KeycodesPanel) Focused() bool {
	return p.focused
}

// Capturing reports whether typed keys go to a text field.
func (p *KeycodesPanel) Capturing() bool {
	return p.search.Focused() || p.adding
}

// Picker returns the underlying picker.
func (p *KeycodesPanel) Picker() *keycodes.Picker {
	return p.picker
}

// Refresh resyncs after the picker's map changed.
func (p *KeycodesPanel) Refresh() {
	if p.search.Value() != p.picker.SearchText() {
		p.search.SetValue(p.picker.SearchText())
	}
	p.clampCursor()
}

// SelectedKey returns the key under the cursor, or nil.
func (p *KeycodesPanel) SelectedKey() *keycodes.Key {
	keys := p.picker.Keys()
	if p.cursor < 0 || p.cursor >= len(keys) {
		return nil
	}
	return keys[p.cursor]
}

// SelectCategory switches category and clears the search.
func (p *KeycodesPanel) SelectCategory(name string) bool {
	if !p.picker.SelectCategory(name) {
		return false
	}
	p.search.SetValue("")
	p.search.Blur()
	p.cursor, p.offset = 0, 0
	return true
}

// Update handles input.
func (p *KeycodesPanel) Update(msg tea.Msg) tea.Cmd {
	if !p.focused {
		return nil
	}

	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}

	switch {
	case p.adding:
		return p.updateAdd(kmsg)
	case p.search.Focused():
		return p.updateSearch(kmsg)
	}

	switch {
	case key.Matches(kmsg, p.keys.search):
		return p.search.Focus()
	case key.Matches(kmsg, p.keys.prevCat):
		p.cycleCategory(-1)
	case key.Matches(kmsg, p.keys.nextCat):
		p.cycleCategory(1)
	case key.Matches(kmsg, p.keys.left):
		p.move(DirLeft)
	case key.Matches(kmsg, p.keys.right):
		p.move(DirRight)
	case key.Matches(kmsg, p.keys.up):
		p.move(DirUp)
	case key.Matches(kmsg, p.keys.down):
		p.move(DirDown)
	case key.Matches(kmsg, p.keys.choose):
		return p.choose()
	case key.Matches(kmsg, p.keys.copyName):
		return p.copySelected()
	case key.Matches(kmsg, p.keys.addKey) && p.picker.ShowsAddKey():
		p.adding = true
		p.add.SetValue("")
		return p.add.Focus()
	}
	return nil
}

func (p *KeycodesPanel) updateSearch(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, p.keys.cancel):
		p.search.SetValue("")
		p.search.Blur()
		p.picker.SetSearchText("")
		p.cursor, p.offset = 0, 0
		return nil
	case key.Matches(msg, p.keys.done):
		p.search.Blur()
		return nil
	}

	var cmd tea.Cmd
	p.search, cmd = p.search.Update(msg)
	if p.search.Value() != p.picker.SearchText() {
		p.picker.SetSearchText(p.search.Value())
		p.cursor, p.offset = 0, 0
	}
	return cmd
}

func (p *KeycodesPanel) updateAdd(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, p.keys.cancel):
		p.adding = false
		p.add.Blur()
		return nil
	case key.Matches(msg, p.keys.done):
		name := strings.TrimSpace(p.add.Value())
		code, ok := hid.ParseName(name)
		if !ok {
			return status(fmt.Sprintf("unknown keycode %q", name))
		}
		p.adding = false
		p.add.Blur()
		return func() tea.Msg { return AddAnyKeyMsg{Code: code} }
	}

	var cmd tea.Cmd
	p.add, cmd = p.add.Update(msg)
	return cmd
}

func (p *KeycodesPanel) cycleCategory(step int) {
	names := p.picker.Map().Names()
	if len(names) == 0 {
		return
	}
	cur := max(slices.Index(names, p.picker.Category()), 0)
	for i := 1; i < len(names); i++ {
		name := names[(cur+step*i+len(names)*i)%len(names)]
		if p.SelectCategory(name) {
			return
		}
	}
}

func (p *KeycodesPanel) move(dir Direction) {
	n := len(p.picker.Keys())
	p.cursor = MoveIndex(p.cursor, n, p.columns(), dir)
}

func (p *KeycodesPanel) choose() tea.Cmd {
	k := p.SelectedKey()
	if k == nil {
		return nil
	}
	if p.picker.Clickable(k) {
		return func() tea.Msg { return EditMacroMsg{Key: k} }
	}
	return func() tea.Msg { return KeyChosenMsg{Key: k} }
}

func (p *KeycodesPanel) copySelected() tea.Cmd {
	k := p.SelectedKey()
	if k == nil {
		return nil
	}
	text := k.Meta
	return func() tea.Msg {
		return CopiedMsg{Text: text, Err: writeClipboard(text)}
	}
}

func (p *KeycodesPanel) clampCursor() {
	n := len(p.picker.Keys())
	p.cursor = min(max(p.cursor, 0), max(n-1, 0))
}

func (p *KeycodesPanel) columns() int {
	return GridColumns(p.width-PanelBorderWidth, keycodeCellWidth)
}

// View renders the panel.
func (p *KeycodesPanel) View() string {
	inner := max(p.width-PanelBorderWidth, 1)

	var lines []string
	lines = append(lines, p.styles.PanelTitle(2, "Keycodes", p.focused))
	lines = append(lines, p.categoryBar(inner)...)
	lines = append(lines, p.search.View())

	footer := p.footer()
	gridRows := max(p.height-PanelBorderHeight-len(lines)-len(footer), 1)
	lines = append(lines, p.grid(gridRows)...)
	lines = append(lines, footer...)

	return p.styles.PanelFrame(p.focused, p.width, p.height).Render(strings.Join(lines, "\n"))
}

// categoryBar lays the category tabs out in as many lines as needed.
func (p *KeycodesPanel) categoryBar(width int) []string {
	var lines []string
	line := ""
	for _, name := range p.picker.Map().Names() {
		var tab string
		switch {
		case name == p.picker.Category():
			tab = p.styles.ActiveTab.Render(name)
		case p.picker.Map().Len(name) == 0:
			tab = p.styles.DisabledTab.Render(name)
		default:
			tab = p.styles.Tab.Render(name)
		}
		if line != "" && lipgloss.Width(line)+lipgloss.Width(tab) > width {
			lines = append(lines, line)
			line = ""
		}
		line += tab
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

func (p *KeycodesPanel) grid(rows int) []string {
	keys := p.picker.Keys()
	if len(keys) == 0 {
		return []string{p.emptyHint()}
	}

	cols := p.columns()
	cursorRow := p.cursor / cols
	if cursorRow < p.offset {
		p.offset = cursorRow
	}
	if cursorRow >= p.offset+rows {
		p.offset = cursorRow - rows + 1
	}

	var lines []string
	for row := p.offset; row < p.offset+rows && row*cols < len(keys); row++ {
		cells := make([]string, 0, cols)
		for i := row * cols; i < min((row+1)*cols, len(keys)); i++ {
			cells = append(cells, p.cell(keys[i], i == p.cursor))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lines
}

func (p *KeycodesPanel) cell(k *keycodes.Key, selected bool) string {
	style := p.styles.Cell
	switch {
	case selected && p.focused:
		style = p.styles.SelectedCell
	case p.picker.Clickable(k):
		style = p.styles.MacroCell
	}
	return style.Width(keycodeCellWidth).Render(FitCell(k.Label, keycodeCellWidth-1))
}

func (p *KeycodesPanel) emptyHint() string {
	query := p.picker.SearchText()
	if query == "" {
		return p.styles.Hint.Render("no keycodes in this category")
	}
	if name, ok := keycodes.Suggest(p.picker.Map(), query); ok {
		return p.styles.Hint.Render(fmt.Sprintf("no match for %q, did you mean %s?", query, name))
	}
	return p.styles.Hint.Render(fmt.Sprintf("no match for %q", query))
}

func (p *KeycodesPanel) footer() []string {
	var lines []string
	if k := p.SelectedKey(); k != nil {
		lines = append(lines, p.styles.Dim.Render(fmt.Sprintf("%s  0x%04X", k.Meta, k.Code())))
	}
	switch {
	case p.adding:
		lines = append(lines, p.add.View())
	case p.picker.ShowsAddKey():
		lines = append(lines, p.styles.Hint.Render("+ add keycode"))
	}
	return lines
}

// HelpBindings returns the keybindings for this panel (display-only, for status bar).
func (p *KeycodesPanel) HelpBindings() []help.Binding {
	if p.Capturing() {
		return []help.Binding{
			{Key: p.keys.done, Category: help.CategoryKeycodes, Order: PanelOrderPrimary},
			{Key: p.keys.cancel, Category: help.CategoryKeycodes, Order: PanelOrderPrimary},
		}
	}

	addKey := p.keys.addKey
	addKey.SetEnabled(p.picker.ShowsAddKey())

	return []help.Binding{
		{
			Key:      key.NewBinding(key.WithKeys("h", "j", "k", "l"), key.WithHelp("hjkl", "move")),
			Category: help.CategoryNavigation,
			Order:    PanelOrderPrimary,
		},
		{Key: p.keys.choose, Category: help.CategoryKeycodes, Order: PanelOrderPrimary},
		{Key: p.keys.search, Category: help.CategoryKeycodes, Order: PanelOrderPrimary},
		{Key: p.keys.prevCat, Category: help.CategoryKeycodes, Order: PanelOrderSecondary},
		{Key: p.keys.nextCat, Category: help.CategoryKeycodes, Order: PanelOrderSecondary},
		{Key: p.keys.copyName, Category: help.CategoryKeycodes, Order: PanelOrderSecondary},
		{Key: addKey, Category: help.CategoryKeycodes, Order: PanelOrderSecondary},
	}
}
