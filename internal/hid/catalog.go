package hid

import (
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/chatter/remap/internal/labellang"
)

// Catalog is the static category-definition source. Every call returns a
// fresh slice so callers may filter or reorder freely.
type Catalog struct{}

// NewCatalog returns the built-in keycode catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Basic returns letters, digits, editing keys, modifiers and the numpad.
// Layouts with international keys get them appended.
func (c *Catalog) Basic(lang labellang.Lang) []Keymap {
	var infos []KeycodeInfo
	infos = append(infos, transparencyKeys...)
	infos = append(infos, letterKeys()...)
	infos = append(infos, digitKeys()...)
	infos = append(infos, editingKeys...)
	infos = append(infos, modifierKeys...)
	infos = append(infos, numpadKeys...)
	if lang.International() {
		infos = append(infos, internationalKeys...)
	}
	return keymapsOf(filterPresent(infos, lang))
}

// Symbol returns punctuation and shifted keys present in the layout.
func (c *Catalog) Symbol(lang labellang.Lang) []Keymap {
	var infos []KeycodeInfo
	infos = append(infos, symbolKeys...)
	for _, info := range shiftedKeys() {
		if isInternational(BaseCode(info.Code)) && !lang.International() {
			continue
		}
		infos = append(infos, info)
	}
	return keymapsOf(filterPresent(infos, lang))
}

// Functions returns F1-F24 and the system function keys.
func (c *Catalog) Functions(lang labellang.Lang) []Keymap {
	return keymapsOf(filterPresent(functionKeys(), lang))
}

// Macro returns the dynamic macro keys.
func (c *Catalog) Macro() []Keymap {
	return keymapsOf(macroKeys())
}

// Layer returns the layer keycodes for layers 0..layerCount-1.
func (c *Catalog) Layer(layerCount int) []Keymap {
	return keymapsOf(layerKeys(layerCount))
}

// Device returns media, system and mouse keys.
func (c *Catalog) Device(lang labellang.Lang) []Keymap {
	return keymapsOf(filterPresent(deviceKeys, lang))
}

// Special returns firmware-level keys such as reset and space cadet.
func (c *Catalog) Special(lang labellang.Lang) []Keymap {
	return keymapsOf(filterPresent(specialKeys, lang))
}

// Midi returns the MIDI keys.
func (c *Catalog) Midi() []Keymap {
	return keymapsOf(midiKeys())
}

// Bmp returns the BLE Micro Pro keys.
func (c *Catalog) Bmp() []Keymap {
	return keymapsOf(bmpKeys())
}

// Ascii returns one key per printable ASCII character.
func (c *Catalog) Ascii() []Keymap {
	return keymapsOf(asciiKeys())
}

// Any returns the custom keycode template.
func (c *Catalog) Any() []Keymap {
	return []Keymap{newKeymap(AnyKey)}
}

func filterPresent(infos []KeycodeInfo, lang labellang.Lang) []KeycodeInfo {
	out := infos[:0:0]
	for _, info := range infos {
		if lang.Has(info.Code) {
			out = append(out, info)
		}
	}
	return out
}

func isInternational(code uint16) bool {
	for _, info := range internationalKeys {
		if info.Code == code {
			return true
		}
	}
	return false
}

// IsMacroSafe reports whether a keycode can be encoded as a macro step:
// plain HID usages, optionally with left shift. KC_TRNS has no meaning
// inside a macro.
func IsMacroSafe(code uint16) bool {
	if code == KC_TRNS {
		return false
	}
	return code <= maxBasicCode || IsShifted(code)
}

// MacroCodeFilter drops keymaps that cannot be encoded as macro steps.
func MacroCodeFilter(keymaps []Keymap) []Keymap {
	out := make([]Keymap, 0, len(keymaps))
	for _, km := range keymaps {
		if IsMacroSafe(km.Code) {
			out = append(out, km)
		}
	}
	return out
}

var (
	indexOnce sync.Once
	byCode    map[uint16]KeycodeInfo
	byName    map[string]KeycodeInfo
)

func buildIndex() {
	byCode = make(map[uint16]KeycodeInfo)
	byName = make(map[string]KeycodeInfo)

	groups := [][]KeycodeInfo{
		transparencyKeys, letterKeys(), digitKeys(), editingKeys, modifierKeys,
		numpadKeys, internationalKeys, symbolKeys, shiftedKeys(), functionKeys(),
		macroKeys(), deviceKeys, specialKeys, midiKeys(), bmpKeys(), layerKeys(maxLayers),
	}
	for _, group := range groups {
		for _, info := range group {
			// First definition wins for codes with two names.
			if _, ok := byCode[info.Code]; !ok {
				byCode[info.Code] = info
			}
			byName[strings.ToUpper(info.Name)] = info
		}
	}
}

// ByCode looks up a keycode by its 16-bit value.
func ByCode(code uint16) (KeycodeInfo, bool) {
	indexOnce.Do(buildIndex)
	info, ok := byCode[code]
	return info, ok
}

// ByName looks up a keycode by its QMK identifier (case-insensitive).
func ByName(name string) (KeycodeInfo, bool) {
	indexOnce.Do(buildIndex)
	info, ok := byName[strings.ToUpper(strings.TrimSpace(name))]
	return info, ok
}

// Names returns every known keycode identifier.
func Names() []string {
	indexOnce.Do(buildIndex)
	names := make([]string, 0, len(byName))
	for _, info := range byName {
		names = append(names, info.Name)
	}
	slices.Sort(names)
	return names
}

// ParseName resolves a QMK identifier to a code. Besides catalog names it
// accepts LSFT(<name>) for any basic key and 0x-prefixed hex literals.
func ParseName(name string) (uint16, bool) {
	name = strings.TrimSpace(name)
	if info, ok := ByName(name); ok {
		return info.Code, true
	}

	upper := strings.ToUpper(name)
	if inner, ok := strings.CutPrefix(upper, "LSFT("); ok {
		inner, ok = strings.CutSuffix(inner, ")")
		if !ok {
			return 0, false
		}
		code, ok := ParseName(inner)
		if !ok || code > maxBasicCode {
			return 0, false
		}
		return ModShift | code, true
	}

	if hex, ok := strings.CutPrefix(upper, "0X"); ok && hex != "" && len(hex) <= 4 {
		code, err := strconv.ParseUint(hex, 16, 16)
		if err != nil {
			return 0, false
		}
		return uint16(code), true
	}

	return 0, false
}

// KeymapFor returns the keymap for a code read from a device. Unknown codes
// get their hex name.
func KeymapFor(code uint16) Keymap {
	if info, ok := ByCode(code); ok {
		return newKeymap(info)
	}
	name := NameOf(code)
	return Keymap{Code: code, Info: KeycodeInfo{Code: code, Name: name, Label: name}}
}
