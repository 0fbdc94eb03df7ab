package keycodes

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	"github.com/chatter/remap/internal/hid"
	"github.com/chatter/remap/internal/labellang"
	"github.com/chatter/remap/internal/logger"
)

func newTestBuilder() *Builder {
	return NewBuilder(hid.NewCatalog(), logger.Nop())
}

func defaultParams() Params {
	return Params{Lang: labellang.EnUS, LayerCount: 4}
}

// =============================================================================
// Unit Tests
// =============================================================================

func TestRebuild_CategoryOrder(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   []string
	}{
		{
			name:   "plain",
			params: Params{Lang: labellang.EnUS, LayerCount: 4},
			want:   []string{Basic, Symbol, Functions, Layer, Device, Special, Midi, Any},
		},
		{
			name:   "ble micro pro",
			params: Params{Lang: labellang.EnUS, LayerCount: 4, BleMicroPro: true},
			want:   []string{Basic, Symbol, Functions, Layer, Device, Special, Midi, Any, BMP},
		},
		{
			name:   "macro edit",
			params: Params{Lang: labellang.EnUS, LayerCount: 4, MacroEditMode: true},
			want:   []string{Basic, Symbol, Functions, Layer, Device, Special, Midi, Any, Ascii},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestBuilder().Rebuild(tt.params)
			if diff := cmp.Diff(tt.want, m.Names()); diff != "" {
				t.Errorf("category order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRebuild_BMPPresence(t *testing.T) {
	tests := []struct {
		bleMicroPro bool
		macroEdit   bool
		want        bool
	}{
		{false, false, false},
		{false, true, false},
		{true, false, true},
		{true, true, false},
	}

	for _, tt := range tests {
		p := defaultParams()
		p.BleMicroPro = tt.bleMicroPro
		p.MacroEditMode = tt.macroEdit

		m := newTestBuilder().Rebuild(p)
		if got := m.Has(BMP); got != tt.want {
			t.Errorf("bleMicroPro=%v macroEdit=%v: BMP present = %v, want %v",
				tt.bleMicroPro, tt.macroEdit, got, tt.want)
		}
	}
}

func TestRebuild_AsciiOnlyInMacroEdit(t *testing.T) {
	b := newTestBuilder()

	if b.Rebuild(defaultParams()).Has(Ascii) {
		t.Error("Ascii should be absent outside macro-edit mode")
	}

	p := defaultParams()
	p.MacroEditMode = true
	m := b.Rebuild(p)
	if !m.Has(Ascii) || m.Len(Ascii) == 0 {
		t.Error("Ascii should be present and populated in macro-edit mode")
	}

	p.MacroEditMode = false
	if b.Rebuild(p).Has(Ascii) {
		t.Error("Ascii should disappear when leaving macro-edit mode")
	}
}

func TestRebuild_MacroEditFiltersUnsafeKeys(t *testing.T) {
	p := defaultParams()
	p.MacroEditMode = true
	m := newTestBuilder().Rebuild(p)

	for _, name := range []string{Basic, Symbol, Layer, Device, Special, Midi} {
		for _, key := range m.Keys(name) {
			if !hid.IsMacroSafe(key.Code()) {
				t.Errorf("%s: %s (0x%04X) should be filtered in macro-edit mode", name, key.Meta, key.Code())
			}
		}
	}
}

func TestRebuild_FunctionsKeepMacroKeys(t *testing.T) {
	for _, macroEdit := range []bool{false, true} {
		p := defaultParams()
		p.MacroEditMode = macroEdit
		m := newTestBuilder().Rebuild(p)

		macros := 0
		for _, key := range m.Keys(Functions) {
			if key.IsMacro() {
				macros++
			}
		}
		if macros != len(hid.NewCatalog().Macro()) {
			t.Errorf("macroEdit=%v: expected every macro key in Functions, got %d", macroEdit, macros)
		}
	}
}

func TestRebuild_LabelLanguage(t *testing.T) {
	p := defaultParams()
	p.Lang = labellang.JaJP
	m := newTestBuilder().Rebuild(p)

	for _, key := range m.Keys(Symbol) {
		if key.Code() == 0x2E {
			if key.Label != "^" {
				t.Errorf("JIS label for 0x2E = %q, want %q", key.Label, "^")
			}
			return
		}
	}
	t.Fatal("0x2E not found in Symbol")
}

func TestRebuild_ReplacesMapWholesale(t *testing.T) {
	b := newTestBuilder()
	first := b.Rebuild(defaultParams())
	second := b.Rebuild(defaultParams())

	if first == second {
		t.Fatal("rebuild should produce a new map")
	}
	if b.Map() != second {
		t.Error("builder should expose the latest map")
	}
	if first.Keys(Basic)[0] == second.Keys(Basic)[0] {
		t.Error("rebuild should generate fresh keys")
	}
}

func TestUpdateLayerCount_OnlyTouchesLayer(t *testing.T) {
	b := newTestBuilder()
	m := b.Rebuild(defaultParams())

	before := map[string][]*Key{}
	for _, name := range m.Names() {
		before[name] = m.Keys(name)
	}

	after := b.UpdateLayerCount(7)
	if after != m {
		t.Fatal("layer update should patch the current map in place")
	}

	if got := after.Len(Layer); got != 7*hid.LayerKeysPerLayer {
		t.Errorf("expected %d layer keys, got %d", 7*hid.LayerKeysPerLayer, got)
	}

	for _, name := range after.Names() {
		if name == Layer {
			continue
		}
		if !sameKeys(before[name], after.Keys(name)) {
			t.Errorf("category %s should be reference-unchanged", name)
		}
	}
	if b.Params().LayerCount != 7 {
		t.Errorf("params should record the new layer count")
	}
}

func TestUpdateLayerCount_SameCountIsNoop(t *testing.T) {
	b := newTestBuilder()
	m := b.Rebuild(defaultParams())
	layer := m.Keys(Layer)

	b.UpdateLayerCount(defaultParams().LayerCount)
	if !sameKeys(layer, m.Keys(Layer)) {
		t.Error("unchanged layer count should not regenerate keys")
	}
}

func TestUpdateLayerCount_HonoursMacroEdit(t *testing.T) {
	b := newTestBuilder()
	p := defaultParams()
	p.MacroEditMode = true
	b.Rebuild(p)

	m := b.UpdateLayerCount(8)
	for _, key := range m.Keys(Layer) {
		if !hid.IsMacroSafe(key.Code()) {
			t.Fatalf("layer key %s should be filtered in macro-edit mode", key.Meta)
		}
	}
}

func TestAddAnyKey(t *testing.T) {
	b := newTestBuilder()
	b.Rebuild(defaultParams())

	key := b.AddAnyKey(0x1234)
	if key == nil {
		t.Fatal("expected a new key")
	}
	if key.Meta != "0x1234" {
		t.Errorf("meta = %q, want 0x1234", key.Meta)
	}
	if b.AddAnyKey(0x1234) != nil {
		t.Error("duplicate custom key should be rejected")
	}

	m := b.Rebuild(defaultParams())
	found := false
	for _, k := range m.Keys(Any) {
		if k.Code() == 0x1234 {
			found = true
		}
	}
	if !found {
		t.Error("custom key should survive a rebuild")
	}
	if m.Keys(Any)[0].Meta != hid.AnyKey.Name {
		t.Error("Any template should come first")
	}
}

// =============================================================================
// Property Tests
// =============================================================================

// Property: entering macro-edit mode lower-cases exactly the letter key labels
func TestRebuild_MacroEditLowercasesLetters(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lang := rapid.SampledFrom(labellang.All()).Draw(t, "lang")
		p := Params{Lang: lang, LayerCount: rapid.IntRange(1, 16).Draw(t, "layers")}

		b := newTestBuilder()
		plain := map[uint16]string{}
		for _, key := range b.Rebuild(p).Keys(Basic) {
			plain[key.Code()] = key.Label
		}

		p.MacroEditMode = true
		for _, key := range b.Rebuild(p).Keys(Basic) {
			want := plain[key.Code()]
			if codeA <= key.Code() && key.Code() <= codeZ {
				want = strings.ToLower(want)
			}
			if key.Label != want {
				t.Fatalf("0x%04X: label %q, want %q", key.Code(), key.Label, want)
			}
		}
	})
}

// Property: BMP is present iff the capability flag is set and macro-edit is off
func TestRebuild_BMPPresence_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := Params{
			Lang:          rapid.SampledFrom(labellang.All()).Draw(t, "lang"),
			MacroEditMode: rapid.Bool().Draw(t, "macro"),
			LayerCount:    rapid.IntRange(0, 32).Draw(t, "layers"),
			BleMicroPro:   rapid.Bool().Draw(t, "bmp"),
		}

		m := newTestBuilder().Rebuild(p)
		if m.Has(BMP) != (p.BleMicroPro && !p.MacroEditMode) {
			t.Fatalf("BMP presence wrong for %+v", p)
		}
		if m.Has(Ascii) != p.MacroEditMode {
			t.Fatalf("Ascii presence wrong for %+v", p)
		}
	})
}

// Property: a layer-count change leaves every other category reference-equal
func TestUpdateLayerCount_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := newTestBuilder()
		m := b.Rebuild(Params{
			Lang:        labellang.EnUS,
			LayerCount:  rapid.IntRange(1, 32).Draw(t, "from"),
			BleMicroPro: rapid.Bool().Draw(t, "bmp"),
		})

		before := map[string][]*Key{}
		for _, name := range m.Names() {
			before[name] = m.Keys(name)
		}

		n := rapid.IntRange(1, 32).Draw(t, "to")
		b.UpdateLayerCount(n)

		if m.Len(Layer) != n*hid.LayerKeysPerLayer {
			t.Fatalf("expected %d layer keys, got %d", n*hid.LayerKeysPerLayer, m.Len(Layer))
		}
		for name, keys := range before {
			if name != Layer && !sameKeys(keys, m.Keys(name)) {
				t.Fatalf("category %s changed", name)
			}
		}
	})
}

func sameKeys(a, b []*Key) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
