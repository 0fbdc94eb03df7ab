package keycodes

import (
	"strings"

	"github.com/chatter/remap/internal/hid"
	"github.com/chatter/remap/internal/labellang"
	"github.com/chatter/remap/internal/logger"
)

// Source supplies the raw keymaps per category. hid.Catalog implements it.
type Source interface {
	Basic(lang labellang.Lang) []hid.Keymap
	Symbol(lang labellang.Lang) []hid.Keymap
	Functions(lang labellang.Lang) []hid.Keymap
	Macro() []hid.Keymap
	Layer(layerCount int) []hid.Keymap
	Device(lang labellang.Lang) []hid.Keymap
	Special(lang labellang.Lang) []hid.Keymap
	Midi() []hid.Keymap
	Bmp() []hid.Keymap
	Ascii() []hid.Keymap
	Any() []hid.Keymap
}

// Params are the inputs a category map is generated from.
type Params struct {
	Lang          labellang.Lang
	MacroEditMode bool
	LayerCount    int
	BleMicroPro   bool
}

// Letter codes whose labels are lower-cased in macro-edit mode, since a
// macro step of KC_A types "a".
const (
	codeA = 4
	codeZ = 29
)

// Builder assembles category maps from a Source.
type Builder struct {
	source  Source
	log     *logger.Logger
	params  Params
	current *CategoryMap
	custom  []hid.KeycodeInfo
}

// NewBuilder creates a builder. Call Rebuild before reading Map.
func NewBuilder(source Source, log *logger.Logger) *Builder {
	return &Builder{
		source:  source,
		log:     log,
		current: NewCategoryMap(),
	}
}

// Map returns the current category map.
func (b *Builder) Map() *CategoryMap {
	return b.current
}

// Params returns the parameters of the last rebuild.
func (b *Builder) Params() Params {
	return b.params
}

// Rebuild generates a fresh category map for p and replaces the current one.
func (b *Builder) Rebuild(p Params) *CategoryMap {
	filter := func(keymaps []hid.Keymap) []hid.Keymap {
		if p.MacroEditMode {
			return hid.MacroCodeFilter(keymaps)
		}
		return keymaps
	}

	functions := append(filter(b.source.Functions(p.Lang)), b.source.Macro()...)

	m := NewCategoryMap()
	m.Set(Basic, GenKeys(filter(b.source.Basic(p.Lang)), p.Lang))
	m.Set(Symbol, GenKeys(filter(b.source.Symbol(p.Lang)), p.Lang))
	m.Set(Functions, GenKeys(functions, p.Lang))
	m.Set(Layer, GenKeys(filter(b.source.Layer(p.LayerCount)), p.Lang))
	m.Set(Device, GenKeys(filter(b.source.Device(p.Lang)), p.Lang))
	m.Set(Special, GenKeys(filter(b.source.Special(p.Lang)), p.Lang))
	m.Set(Midi, GenKeys(filter(b.source.Midi()), p.Lang))
	m.Set(Any, GenKeys(filter(b.anyKeymaps()), p.Lang))

	if p.BleMicroPro && !p.MacroEditMode {
		m.Set(BMP, GenKeys(b.source.Bmp(), p.Lang))
	}

	if p.MacroEditMode {
		lowerLetterLabels(m.Keys(Basic))
		m.Set(Ascii, GenKeys(b.source.Ascii(), p.Lang))
	}

	b.params = p
	b.current = m

	b.log.Debug("rebuilt category map",
		"lang", p.Lang,
		"macro_edit", p.MacroEditMode,
		"layers", p.LayerCount,
		"ble_micro_pro", p.BleMicroPro,
		"categories", len(m.order),
	)

	return m
}

// UpdateLayerCount regenerates only the Layer category in place. Every other
// category keeps its slice.
func (b *Builder) UpdateLayerCount(layerCount int) *CategoryMap {
	if layerCount == b.params.LayerCount {
		return b.current
	}

	keymaps := b.source.Layer(layerCount)
	if b.params.MacroEditMode {
		keymaps = hid.MacroCodeFilter(keymaps)
	}

	b.current.Set(Layer, GenKeys(keymaps, b.params.Lang))
	b.params.LayerCount = layerCount

	b.log.Debug("updated layer keys", "layers", layerCount, "keys", b.current.Len(Layer))

	return b.current
}

// AddAnyKey appends a custom keycode to the Any category. The key is kept
// across rebuilds. It returns nil when the code is already present or is
// hidden by macro-edit mode.
func (b *Builder) AddAnyKey(code uint16) *Key {
	for _, info := range b.custom {
		if info.Code == code {
			return nil
		}
	}

	info := hid.CustomKey(code)
	b.custom = append(b.custom, info)

	keymaps := []hid.Keymap{{Code: info.Code, Kinds: info.Kinds, Info: info}}
	if b.params.MacroEditMode {
		keymaps = hid.MacroCodeFilter(keymaps)
	}
	if len(keymaps) == 0 {
		return nil
	}

	key := GenKeys(keymaps, b.params.Lang)[0]
	b.current.Set(Any, append(b.current.Keys(Any), key))

	b.log.Debug("added custom key", "code", code, "name", info.Name)

	return key
}

func (b *Builder) anyKeymaps() []hid.Keymap {
	keymaps := b.source.Any()
	for _, info := range b.custom {
		keymaps = append(keymaps, hid.Keymap{Code: info.Code, Kinds: info.Kinds, Info: info})
	}
	return keymaps
}

func lowerLetterLabels(keys []*Key) {
	for _, key := range keys {
		if code := key.Code(); codeA <= code && code <= codeZ {
			key.Label = strings.ToLower(key.Label)
		}
	}
}
