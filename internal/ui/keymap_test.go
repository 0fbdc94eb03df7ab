package ui

import (
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/chatter/remap/internal/hid"
	"github.com/chatter/remap/internal/keycodes"
	"github.com/chatter/remap/internal/keymap"
	"github.com/chatter/remap/internal/labellang"
	"github.com/chatter/remap/internal/logger"
)

// optionBoard has a bottom row whose last key depends on a layout option.
func optionBoard() keymap.Definition {
	return keymap.Definition{
		Name: "test",
		Rows: [][]keymap.KeyPos{
			{{Pos: "0,0"}, {Pos: "0,1"}, {Pos: "0,2"}},
			{{Pos: "1,0"}, {Pos: "1,1", Width: 2, Option: "0,0"}, {Pos: "1,2", Option: "0,1"}},
		},
		Labels: [][]string{{"Bottom row", "2u", "1u"}},
	}
}

func testKey(code uint16) *keycodes.Key {
	km := hid.KeymapFor(code)
	return &keycodes.Key{Label: km.Info.Label, Meta: km.Info.Name, Keymap: km}
}

func newTestKeymapPanel(t *testing.T) *KeymapPanel {
	t.Helper()
	keymaps := []map[string]hid.Keymap{
		{"0,0": hid.KeymapFor(hid.KC_A), "0,1": hid.KeymapFor(0x05), "1,0": hid.KeymapFor(0x06)},
	}
	state := keymap.New(optionBoard(), 3, keymaps, logger.Nop())
	p := NewKeymapPanel(DefaultStyles(), state, labellang.EnUS)
	p.SetSize(80, 20)
	p.SetFocused(true)
	return &p
}

// =============================================================================
// Unit Tests
// =============================================================================

func TestKeymapPanel_SetSizeSizesKeyboard(t *testing.T) {
	p := newTestKeymapPanel(t)

	w, h := p.State().KeyboardSize()
	if w != 80-PanelBorderWidth || h != 20-PanelChromeHeight {
		t.Errorf("keyboard size = %dx%d", w, h)
	}
}

func TestKeymapPanel_LayerSwitch(t *testing.T) {
	p := newTestKeymapPanel(t)

	p.Update(press("]"))
	if p.State().SelectedLayer() != 1 {
		t.Errorf("layer after ] = %d, want 1", p.State().SelectedLayer())
	}
	p.Update(press("["))
	p.Update(press("["))
	if p.State().SelectedLayer() != 0 {
		t.Errorf("layer should not go below 0, got %d", p.State().SelectedLayer())
	}
}

func TestKeymapPanel_SelectToggles(t *testing.T) {
	p := newTestKeymapPanel(t)

	p.Update(press("l"))
	p.Update(press("enter"))
	if p.State().SelectedPos() != "0,1" {
		t.Fatalf("selected = %q, want 0,1", p.State().SelectedPos())
	}

	p.Update(press("space"))
	if p.State().SelectedPos() != "" {
		t.Errorf("selecting the same key again should deselect, got %q", p.State().SelectedPos())
	}

	p.Update(press("enter"))
	p.Update(press("esc"))
	if p.State().SelectedPos() != "" {
		t.Error("esc should deselect")
	}
}

func TestKeymapPanel_MoveSkipsHiddenKeys(t *testing.T) {
	p := newTestKeymapPanel(t)

	p.Update(press("j"))
	p.Update(press("l"))
	p.Update(press("l"))
	if got := p.CursorPos(); got != "1,1" {
		t.Errorf("cursor = %q, want 1,1 (1,2 is hidden by the default choice)", got)
	}
}

func TestKeymapPanel_CycleChoice(t *testing.T) {
	p := newTestKeymapPanel(t)
	p.Update(press("j"))
	p.Update(press("l"))

	p.Update(press("o"))

	opts := p.State().SelectedOptions()
	if len(opts) != 1 || opts[0].Choice != 1 {
		t.Fatalf("options = %+v, want choice 1", opts)
	}
	if got := p.CursorPos(); got != "1,2" {
		t.Errorf("cursor = %q, want 1,2 after switching to the 1u choice", got)
	}
	if !strings.Contains(p.View(), "Bottom row: 1u") {
		t.Errorf("view should show the selected choice:\n%s", p.View())
	}

	p.Update(press("o"))
	if opts := p.State().SelectedOptions(); opts[0].Choice != 0 {
		t.Errorf("choice should wrap to 0, got %d", opts[0].Choice)
	}
}

func TestKeymapPanel_RevertPos(t *testing.T) {
	p := newTestKeymapPanel(t)
	p.Update(press("enter"))
	p.State().Assign(testKey(hid.KC_Z))

	p.Update(press("u"))
	if p.State().RemapCount() != 0 {
		t.Errorf("u should revert the key under the cursor, %d pending", p.State().RemapCount())
	}
}

func TestKeymapPanel_RevertAll(t *testing.T) {
	p := newTestKeymapPanel(t)
	p.Update(press("enter"))
	p.State().Assign(testKey(hid.KC_Z))
	p.Update(press("]"))
	p.Update(press("enter"))
	p.State().Assign(testKey(hid.KC_Z))

	msg, ok := run(p.Update(press("U"))).(StatusMsg)
	if !ok || !strings.Contains(msg.Text, "2") {
		t.Fatalf("expected status with the reverted count, got %#v", msg)
	}
	if p.State().RemapCount() != 0 {
		t.Error("U should revert every pending remap")
	}

	if cmd := p.Update(press("U")); cmd != nil {
		t.Error("U with nothing pending should be silent")
	}
}

func TestKeymapPanel_Save(t *testing.T) {
	p := newTestKeymapPanel(t)

	if _, ok := run(p.Update(press("s"))).(SaveKeymapMsg); !ok {
		t.Error("s should ask to save")
	}
}

func TestKeymapPanel_ViewShowsPendingAndLabels(t *testing.T) {
	p := newTestKeymapPanel(t)
	p.Update(press("enter"))
	p.State().Assign(testKey(hid.KC_Z))

	view := p.View()
	if !strings.Contains(view, "1 pending") {
		t.Errorf("view should count pending changes:\n%s", view)
	}
	if !strings.Contains(view, "(pending)") {
		t.Errorf("details should mark the key under the cursor as pending:\n%s", view)
	}
}

func TestKeymapPanel_HelpHidesOptionKeysWithoutLabels(t *testing.T) {
	state := keymap.New(keymap.Definition{Name: "plain", Rows: [][]keymap.KeyPos{{{Pos: "0,0"}}}}, 1, nil, logger.Nop())
	p := NewKeymapPanel(DefaultStyles(), state, labellang.EnUS)

	for _, b := range p.HelpBindings() {
		if b.Key.Help().Key == "o" && b.Key.Enabled() {
			t.Error("layout choice binding should be disabled without layout options")
		}
	}
}

// =============================================================================
// Property Tests
// =============================================================================

// Property: the cursor always rests on a visible key.
func TestKeymapPanel_CursorOnVisibleKey(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		state := keymap.New(optionBoard(), 2, nil, logger.Nop())
		p := NewKeymapPanel(DefaultStyles(), state, labellang.EnUS)
		p.SetFocused(true)

		moves := rapid.SliceOf(rapid.SampledFrom([]string{"h", "j", "k", "l", "o", "O", "[", "]"})).Draw(t, "moves")
		for _, m := range moves {
			p.Update(press(m))
			if p.CursorPos() == "" {
				t.Fatalf("cursor (%d,%d) off the keyboard after %q", p.row, p.col, m)
			}
		}
	})
}
