package ui

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/chatter/remap/internal/keymap"
	"github.com/chatter/remap/internal/labellang"
	"github.com/chatter/remap/internal/ui/help"
)

// keyUnitWidth is the rendered width of a 1u key.
const keyUnitWidth = 7

// SaveKeymapMsg asks the app to write the pending remaps.
type SaveKeymapMsg struct{}

type keymapKeys struct {
	prevLayer key.Binding
	nextLayer key.Binding
	left      key.Binding
	right     key.Binding
	up        key.Binding
	down      key.Binding
	selectPos key.Binding
	clear     key.Binding
	revertPos key.Binding
	revertAll key.Binding
	option    key.Binding
	choice    key.Binding
	save      key.Binding
}

func defaultKeymapKeys() keymapKeys {
	return keymapKeys{
		prevLayer: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev layer")),
		nextLayer: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next layer")),
		left:      key.NewBinding(key.WithKeys("h", "left")),
		right:     key.NewBinding(key.WithKeys("l", "right")),
		up:        key.NewBinding(key.WithKeys("k", "up")),
		down:      key.NewBinding(key.WithKeys("j", "down")),
		selectPos: key.NewBinding(key.WithKeys("enter", "space"), key.WithHelp("⏎", "select key")),
		clear:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("⎋", "deselect")),
		revertPos: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "revert key")),
		revertAll: key.NewBinding(key.WithKeys("U"), key.WithHelp("U", "revert all")),
		option:    key.NewBinding(key.WithKeys("O"), key.WithHelp("O", "next layout option")),
		choice:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "cycle layout choice")),
		save:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
	}
}

// KeymapPanel draws the keyboard with the keycodes of the selected layer.
type KeymapPanel struct {
	state   *keymap.State
	lang    labellang.Lang
	styles  *Styles
	keys    keymapKeys
	row     int
	col     int
	option  int // layout option the choice key cycles
	focused bool
	width   int
	height  int
}

// NewKeymapPanel creates the panel over state.
func NewKeymapPanel(styles *Styles, state *keymap.State, lang labellang.Lang) KeymapPanel {
	return KeymapPanel{
		state:  state,
		lang:   lang,
		styles: styles,
		keys:   defaultKeymapKeys(),
	}
}

// SetSize sets the panel dimensions.
func (p *KeymapPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.state.SetKeyboardSize(width-PanelBorderWidth, height-PanelChromeHeight)
}

// SetFocused sets the focus state.
func (p *KeymapPanel) SetFocused(focused bool) {
	p.focused = focused
}

// SetLang changes the label language.
func (p *KeymapPanel) SetLang(lang labellang.Lang) {
	p.lang = lang
}

// SetState swaps in a reloaded keymap and resets the cursor.
func (p *KeymapPanel) SetState(state *keymap.State) {
	p.state = state
	p.row, p.col, p.option = 0, 0, 0
	if p.width > 0 {
		p.state.SetKeyboardSize(p.width-PanelBorderWidth, p.height-PanelChromeHeight)
	}
}

// State returns the underlying keymap state.
func (p *KeymapPanel) State() *keymap.State {
	return p.state
}

// CursorPos returns the position under the cursor, or "".
func (p *KeymapPanel) CursorPos() string {
	rows := p.state.VisibleRows()
	if p.row < 0 || p.row >= len(rows) || p.col < 0 || p.col >= len(rows[p.row]) {
		return ""
	}
	return rows[p.row][p.col].Pos
}

// Update handles input.
func (p *KeymapPanel) Update(msg tea.Msg) tea.Cmd {
	if !p.focused {
		return nil
	}

	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}

	switch {
	case key.Matches(kmsg, p.keys.prevLayer):
		p.state.ClickLayerNumber(p.state.SelectedLayer() - 1)
	case key.Matches(kmsg, p.keys.nextLayer):
		p.state.ClickLayerNumber(p.state.SelectedLayer() + 1)
	case key.Matches(kmsg, p.keys.left):
		p.moveCol(-1)
	case key.Matches(kmsg, p.keys.right):
		p.moveCol(1)
	case key.Matches(kmsg, p.keys.up):
		p.moveRow(-1)
	case key.Matches(kmsg, p.keys.down):
		p.moveRow(1)
	case key.Matches(kmsg, p.keys.selectPos):
		if pos := p.CursorPos(); pos != "" {
			if pos == p.state.SelectedPos() {
				p.state.ClearSelectedPos()
			} else {
				p.state.SelectPos(pos)
			}
		}
	case key.Matches(kmsg, p.keys.clear):
		p.state.ClearSelectedPos()
	case key.Matches(kmsg, p.keys.revertPos):
		if pos := p.CursorPos(); pos != "" {
			p.state.RevertPos(p.state.SelectedLayer(), pos)
		}
	case key.Matches(kmsg, p.keys.revertAll):
		if n := p.state.RemapCount(); n > 0 {
			p.state.Revert()
			return status(fmt.Sprintf("reverted %d pending change(s)", n))
		}
	case key.Matches(kmsg, p.keys.option):
		if n := len(p.state.Keyboard().Labels); n > 0 {
			p.option = (p.option + 1) % n
		}
	case key.Matches(kmsg, p.keys.choice):
		p.cycleChoice()
	case key.Matches(kmsg, p.keys.save):
		return func() tea.Msg { return SaveKeymapMsg{} }
	}
	return nil
}

func (p *KeymapPanel) moveCol(step int) {
	rows := p.state.VisibleRows()
	if p.row >= len(rows) {
		return
	}
	p.col = min(max(p.col+step, 0), max(len(rows[p.row])-1, 0))
}

func (p *KeymapPanel) moveRow(step int) {
	rows := p.state.VisibleRows()
	next := p.row + step
	for next >= 0 && next < len(rows) && len(rows[next]) == 0 {
		next += step
	}
	if next < 0 || next >= len(rows) {
		return
	}
	p.row = next
	p.col = min(p.col, len(rows[next])-1)
}

// cycleChoice advances the selected layout option to its next choice. An
// option labelled without choices toggles between 0 and 1.
func (p *KeymapPanel) cycleChoice() {
	labels := p.state.Keyboard().Labels
	if p.option >= len(labels) {
		return
	}
	choices := max(len(labels[p.option])-1, 2)

	current := 0
	for _, sel := range p.state.SelectedOptions() {
		if sel.Option == p.option {
			current = sel.Choice
		}
	}
	p.state.SelectOption(p.option, (current+1)%choices)

	// the cursor may now point past a hidden key
	rows := p.state.VisibleRows()
	if p.row < len(rows) && p.col >= len(rows[p.row]) {
		p.col = max(len(rows[p.row])-1, 0)
	}
}

// View renders the panel.
func (p *KeymapPanel) View() string {
	title := p.styles.PanelTitle(1, "Keymap: "+p.state.Keyboard().Name, p.focused)

	lines := []string{title, p.layerTabs()}
	for r, row := range p.state.VisibleRows() {
		cells := make([]string, 0, len(row))
		for c, kp := range row {
			cells = append(cells, p.keyCell(kp, r == p.row && c == p.col))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	if opt := p.optionLine(); opt != "" {
		lines = append(lines, opt)
	}
	lines = append(lines, p.details())

	return p.styles.PanelFrame(p.focused, p.width, p.height).Render(strings.Join(lines, "\n"))
}

func (p *KeymapPanel) layerTabs() string {
	var b strings.Builder
	for layer := range p.state.LayerCount() {
		label := strconv.Itoa(layer)
		if layer == p.state.SelectedLayer() {
			b.WriteString(p.styles.ActiveTab.Render(label))
		} else {
			b.WriteString(p.styles.Tab.Render(label))
		}
	}
	if n := p.state.RemapCount(); n > 0 {
		b.WriteString(p.styles.RemappedCell.Render(fmt.Sprintf("  %d pending", n)))
	}
	return b.String()
}

func (p *KeymapPanel) keyCell(kp keymap.KeyPos, cursor bool) string {
	width := max(int(kp.Units()*keyUnitWidth), 3)
	layer := p.state.SelectedLayer()

	label := ""
	if km, ok := p.state.KeymapAt(layer, kp.Pos); ok {
		label = p.lang.Resolve(km.Code, km.Info.Label)
	}

	style := p.styles.Cell
	switch {
	case cursor && p.focused:
		style = p.styles.SelectedCell
	case kp.Pos == p.state.SelectedPos():
		style = p.styles.Mark.Align(lipgloss.Center)
	case p.state.IsRemapped(layer, kp.Pos):
		style = p.styles.RemappedCell
	}
	return style.Width(width).Render(FitCell(label, width-1))
}

func (p *KeymapPanel) optionLine() string {
	labels := p.state.Keyboard().Labels
	if len(labels) == 0 {
		return ""
	}

	var parts []string
	for i, names := range labels {
		if len(names) == 0 {
			continue
		}
		choice := 0
		for _, sel := range p.state.SelectedOptions() {
			if sel.Option == i {
				choice = sel.Choice
			}
		}
		value := "off"
		switch {
		case len(names) > 1 && choice+1 < len(names):
			value = names[choice+1]
		case len(names) == 1 && choice == 1:
			value = "on"
		}
		part := names[0] + ": " + value
		if i == p.option {
			part = p.styles.Label.Render(part)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "  ")
}

func (p *KeymapPanel) details() string {
	pos := p.CursorPos()
	if pos == "" {
		return ""
	}
	km, ok := p.state.KeymapAt(p.state.SelectedLayer(), pos)
	if !ok {
		return p.styles.Dim.Render(pos + "  (empty)")
	}
	text := fmt.Sprintf("%s  %s  0x%04X", pos, km.Info.Name, km.Code)
	if p.state.IsRemapped(p.state.SelectedLayer(), pos) {
		text += "  (pending)"
	}
	return p.styles.Dim.Render(text)
}

// HelpBindings returns the keybindings for this panel (display-only, for status bar).
func (p *KeymapPanel) HelpBindings() []help.Binding {
	hasOptions := len(p.state.Keyboard().Labels) > 0
	option, choice := p.keys.option, p.keys.choice
	option.SetEnabled(hasOptions)
	choice.SetEnabled(hasOptions)

	return []help.Binding{
		{
			Key:      key.NewBinding(key.WithKeys("h", "j", "k", "l"), key.WithHelp("hjkl", "move")),
			Category: help.CategoryNavigation,
			Order:    PanelOrderPrimary,
		},
		{Key: p.keys.selectPos, Category: help.CategoryKeymap, Order: PanelOrderPrimary},
		{Key: p.keys.save, Category: help.CategoryKeymap, Order: PanelOrderPrimary},
		{Key: p.keys.prevLayer, Category: help.CategoryKeymap, Order: PanelOrderSecondary},
		{Key: p.keys.nextLayer, Category: help.CategoryKeymap, Order: PanelOrderSecondary},
		{Key: p.keys.clear, Category: help.CategoryKeymap, Order: PanelOrderSecondary},
		{Key: p.keys.revertPos, Category: help.CategoryKeymap, Order: PanelOrderSecondary},
		{Key: p.keys.revertAll, Category: help.CategoryKeymap, Order: PanelOrderSecondary},
		{Key: option, Category: help.CategoryKeymap, Order: PanelOrderSecondary},
		{Key: choice, Category: help.CategoryKeymap, Order: PanelOrderSecondary},
	}
}
