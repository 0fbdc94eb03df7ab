package keymap

import (
	"fmt"
	"maps"
	"slices"

	"github.com/chatter/remap/internal/hid"
	"github.com/chatter/remap/internal/keycodes"
	"github.com/chatter/remap/internal/logger"
	"github.com/chatter/remap/internal/macro"
)

// State is the keymap view's model.
type State struct {
	log *logger.Logger

	keyboard        Definition
	keymaps         []map[string]hid.Keymap // layer -> pos -> keymap
	remaps          []map[string]hid.Keymap // pending, same shape
	layerCount      int
	selectedLayer   int
	selectedPos     string
	selectedOptions []LayoutOption
	width, height   int
	draggingKey     *keycodes.Key
	macros          map[string]string
}

// New creates a state for a keyboard with layerCount layers. Layers missing
// from keymaps start empty.
func New(keyboard Definition, layerCount int, keymaps []map[string]hid.Keymap, log *logger.Logger) *State {
	s := &State{
		log:        log,
		keyboard:   keyboard,
		layerCount: layerCount,
		keymaps:    make([]map[string]hid.Keymap, layerCount),
		remaps:     make([]map[string]hid.Keymap, layerCount),
		macros:     make(map[string]string),
	}
	for layer := range layerCount {
		s.keymaps[layer] = make(map[string]hid.Keymap)
		s.remaps[layer] = make(map[string]hid.Keymap)
		if layer < len(keymaps) {
			maps.Copy(s.keymaps[layer], keymaps[layer])
		}
	}
	return s
}

// Keyboard returns the keyboard definition.
func (s *State) Keyboard() Definition {
	return s.keyboard
}

// LayerCount returns the number of layers on the device.
func (s *State) LayerCount() int {
	return s.layerCount
}

// SelectedLayer returns the layer being shown.
func (s *State) SelectedLayer() int {
	return s.selectedLayer
}

// SelectedPos returns the selected key position, or "" when none.
func (s *State) SelectedPos() string {
	return s.selectedPos
}

// ClickLayerNumber clears the key selection and shows layer. Layers outside
// the device range are ignored.
func (s *State) ClickLayerNumber(layer int) {
	if layer < 0 || layer >= s.layerCount {
		return
	}
	s.selectedPos = ""
	s.selectedLayer = layer
	s.log.Debug("selected layer", "layer", layer)
}

// SetKeyboardSize records the rendered keyboard size.
func (s *State) SetKeyboardSize(width, height int) {
	s.width, s.height = width, height
}

// KeyboardSize returns the last recorded keyboard size.
func (s *State) KeyboardSize() (width, height int) {
	return s.width, s.height
}

// SelectPos selects a key position. It reports false for positions that are
// not on the keyboard.
func (s *State) SelectPos(pos string) bool {
	if !s.keyboard.HasPos(pos) {
		return false
	}
	s.selectedPos = pos
	return true
}

// ClearSelectedPos deselects the key.
func (s *State) ClearSelectedPos() {
	s.selectedPos = ""
}

// SetDraggingKey records the key being dragged from the picker, or nil.
func (s *State) SetDraggingKey(key *keycodes.Key) {
	s.draggingKey = key
}

// DraggingKey returns the key being dragged, if any.
func (s *State) DraggingKey() *keycodes.Key {
	return s.draggingKey
}

// Assign records a pending remap of the selected position on the selected
// layer. With no selection it does nothing and returns false. Assigning the
// device's current keycode drops the pending remap.
func (s *State) Assign(key *keycodes.Key) bool {
	if s.selectedPos == "" || key == nil {
		return false
	}

	layer, pos := s.selectedLayer, s.selectedPos
	if current, ok := s.keymaps[layer][pos]; ok && current.Code == key.Code() {
		delete(s.remaps[layer], pos)
	} else {
		s.remaps[layer][pos] = key.Keymap
	}

	s.log.Debug("assigned key", "layer", layer, "pos", pos, "code", key.Code(), "name", key.Meta)
	return true
}

// Revert drops every pending remap.
func (s *State) Revert() {
	for layer := range s.remaps {
		clear(s.remaps[layer])
	}
}

// RevertPos drops the pending remap of one position.
func (s *State) RevertPos(layer int, pos string) {
	if layer >= 0 && layer < len(s.remaps) {
		delete(s.remaps[layer], pos)
	}
}

// Remaps returns a copy of the pending remaps per layer.
func (s *State) Remaps() []map[string]hid.Keymap {
	out := make([]map[string]hid.Keymap, len(s.remaps))
	for layer, remap := range s.remaps {
		out[layer] = maps.Clone(remap)
	}
	return out
}

// RemapCount returns the number of pending remaps over all layers.
func (s *State) RemapCount() int {
	n := 0
	for _, remap := range s.remaps {
		n += len(remap)
	}
	return n
}

// IsRemapped reports whether pos has a pending remap on layer.
func (s *State) IsRemapped(layer int, pos string) bool {
	if layer < 0 || layer >= len(s.remaps) {
		return false
	}
	_, ok := s.remaps[layer][pos]
	return ok
}

// KeymapAt returns the keymap shown at pos on layer: the pending remap if
// there is one, else the device keymap.
func (s *State) KeymapAt(layer int, pos string) (hid.Keymap, bool) {
	if layer < 0 || layer >= s.layerCount {
		return hid.Keymap{}, false
	}
	if km, ok := s.remaps[layer][pos]; ok {
		return km, true
	}
	km, ok := s.keymaps[layer][pos]
	return km, ok
}

// SelectOption selects a choice for a layout option.
func (s *State) SelectOption(option, choice int) {
	for i, sel := range s.selectedOptions {
		if sel.Option == option {
			s.selectedOptions[i].Choice = choice
			return
		}
	}
	s.selectedOptions = append(s.selectedOptions, LayoutOption{Option: option, Choice: choice})
	slices.SortFunc(s.selectedOptions, func(a, b LayoutOption) int { return a.Option - b.Option })
}

// SelectedOptions returns the selected layout options.
func (s *State) SelectedOptions() []LayoutOption {
	return slices.Clone(s.selectedOptions)
}

// VisibleRows returns the keyboard rows filtered by the layout options.
func (s *State) VisibleRows() [][]KeyPos {
	rows := make([][]KeyPos, 0, len(s.keyboard.Rows))
	for _, row := range s.keyboard.Rows {
		var visible []KeyPos
		for _, key := range row {
			if key.visible(s.selectedOptions) {
				visible = append(visible, key)
			}
		}
		rows = append(rows, visible)
	}
	return rows
}

// Macro returns the text of the macro stored under a macro keycode name.
func (s *State) Macro(name string) string {
	return s.macros[name]
}

// SetMacro stores macro text under a macro keycode name. Empty text removes
// the macro; invalid text is rejected.
func (s *State) SetMacro(name, text string) error {
	if _, err := macro.Parse(text); err != nil {
		return fmt.Errorf("macro %s: %w", name, err)
	}
	if text == "" {
		delete(s.macros, name)
		return nil
	}
	s.macros[name] = text
	s.log.Debug("stored macro", "name", name, "len", len(text))
	return nil
}

// Macros returns a copy of the stored macro texts.
func (s *State) Macros() map[string]string {
	if len(s.macros) == 0 {
		return nil
	}
	return maps.Clone(s.macros)
}

// apply folds pending remaps into the device keymaps.
func (s *State) apply() int {
	n := 0
	for layer, remap := range s.remaps {
		for pos, km := range remap {
			s.keymaps[layer][pos] = km
			n++
		}
		clear(remap)
	}
	return n
}
