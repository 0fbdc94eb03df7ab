// Package hid holds the static keycode catalog: every keycode the configurator
// can offer, grouped by category, plus name and code lookups.
package hid

import "slices"

// Kinds attached to keycodes. A keycode may carry several.
const (
	KindBasic         = "basic"
	KindModifier      = "modifier"
	KindNumpad        = "numpad"
	KindInternational = "international"
	KindSymbol        = "symbol"
	KindShifted       = "shifted"
	KindFunction      = "function"
	KindMacro         = "macro"
	KindLayer         = "layer"
	KindDevice        = "device"
	KindMedia         = "media"
	KindMouse         = "mouse"
	KindSpecial       = "special"
	KindMidi          = "midi"
	KindBmp           = "bmp"
	KindAscii         = "ascii"
	KindAny           = "any"
)

// Well-known codes.
const (
	KC_NO   uint16 = 0x0000
	KC_TRNS uint16 = 0x0001
	KC_A    uint16 = 0x0004
	KC_Z    uint16 = 0x001D

	// ModShift is the left-shift modifier bit in a 16-bit keycode.
	ModShift uint16 = 0x0200

	// maxBasicCode is the highest plain HID usage code.
	maxBasicCode uint16 = 0x00FF
)

// KeycodeInfo describes a single keycode.
type KeycodeInfo struct {
	Code     uint16
	Name     string   // QMK identifier, e.g. "KC_A" or "MO(1)"
	Label    string   // default (en-us) display label
	Kinds    []string // e.g. "basic", "macro"
	Keywords []string // lowercase search terms
}

// HasKind reports whether the keycode carries the given kind.
func (k KeycodeInfo) HasKind(kind string) bool {
	return slices.Contains(k.Kinds, kind)
}

// Keymap is one raw entry produced by a category source.
type Keymap struct {
	Code  uint16
	Kinds []string
	Info  KeycodeInfo
}

// HasKind reports whether the keymap carries the given kind.
func (k Keymap) HasKind(kind string) bool {
	return slices.Contains(k.Kinds, kind)
}

// BaseCode strips modifier bits from a keycode in the basic range.
func BaseCode(code uint16) uint16 {
	return code & maxBasicCode
}

// IsShifted reports whether code is a basic keycode with only left shift applied.
func IsShifted(code uint16) bool {
	return code&0xFF00 == ModShift
}

func newKeymap(info KeycodeInfo) Keymap {
	return Keymap{
		Code:  info.Code,
		Kinds: slices.Clone(info.Kinds),
		Info:  info,
	}
}

func keymapsOf(infos []KeycodeInfo) []Keymap {
	out := make([]Keymap, 0, len(infos))
	for _, info := range infos {
		out = append(out, newKeymap(info))
	}
	return out
}
