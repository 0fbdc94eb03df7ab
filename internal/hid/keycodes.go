package hid

import (
	"fmt"
	"strings"
)

func kc(code uint16, name, label string, kinds []string, keywords ...string) KeycodeInfo {
	return KeycodeInfo{
		Code:     code,
		Name:     name,
		Label:    label,
		Kinds:    kinds,
		Keywords: keywords,
	}
}

var (
	basicKinds   = []string{KindBasic}
	modKinds     = []string{KindBasic, KindModifier}
	numpadKinds  = []string{KindBasic, KindNumpad}
	intlKinds    = []string{KindBasic, KindInternational}
	symbolKinds  = []string{KindBasic, KindSymbol}
	shiftedKinds = []string{KindSymbol, KindShifted}
	fnKinds      = []string{KindBasic, KindFunction}
	mediaKinds   = []string{KindBasic, KindDevice, KindMedia}
	mouseKinds   = []string{KindBasic, KindDevice, KindMouse}
	layerKinds   = []string{KindLayer}
	specialKinds = []string{KindSpecial}
	midiKinds    = []string{KindMidi}
	bmpKinds     = []string{KindBmp}
	macroKinds   = []string{KindMacro}
)

func letterKeys() []KeycodeInfo {
	out := make([]KeycodeInfo, 0, 26)
	for i := range 26 {
		letter := string(rune('A' + i))
		out = append(out, kc(KC_A+uint16(i), "KC_"+letter, letter, basicKinds, strings.ToLower(letter)))
	}
	return out
}

func digitKeys() []KeycodeInfo {
	out := make([]KeycodeInfo, 0, 10)
	for i := range 10 {
		// KC_1 is 0x1E, KC_0 follows KC_9.
		digit := fmt.Sprint((i + 1) % 10)
		out = append(out, kc(0x1E+uint16(i), "KC_"+digit, digit, basicKinds, digit, "number"))
	}
	return out
}

var editingKeys = []KeycodeInfo{
	kc(0x28, "KC_ENT", "Enter", basicKinds, "enter", "return"),
	kc(0x29, "KC_ESC", "Esc", basicKinds, "escape"),
	kc(0x2A, "KC_BSPC", "Bksp", basicKinds, "backspace"),
	kc(0x2B, "KC_TAB", "Tab", basicKinds, "tab"),
	kc(0x2C, "KC_SPC", "Space", basicKinds, "space"),
	kc(0x39, "KC_CAPS", "Caps", basicKinds, "capslock"),
	kc(0x49, "KC_INS", "Ins", basicKinds, "insert"),
	kc(0x4A, "KC_HOME", "Home", basicKinds, "home"),
	kc(0x4B, "KC_PGUP", "PgUp", basicKinds, "pageup"),
	kc(0x4C, "KC_DEL", "Del", basicKinds, "delete"),
	kc(0x4D, "KC_END", "End", basicKinds, "end"),
	kc(0x4E, "KC_PGDN", "PgDn", basicKinds, "pagedown"),
	kc(0x4F, "KC_RGHT", "→", basicKinds, "right", "arrow"),
	kc(0x50, "KC_LEFT", "←", basicKinds, "left", "arrow"),
	kc(0x51, "KC_DOWN", "↓", basicKinds, "down", "arrow"),
	kc(0x52, "KC_UP", "↑", basicKinds, "up", "arrow"),
	kc(0x65, "KC_APP", "Menu", basicKinds, "application", "menu"),
}

var modifierKeys = []KeycodeInfo{
	kc(0xE0, "KC_LCTL", "LCtrl", modKinds, "control", "ctrl"),
	kc(0xE1, "KC_LSFT", "LShift", modKinds, "shift"),
	kc(0xE2, "KC_LALT", "LAlt", modKinds, "alt", "option"),
	kc(0xE3, "KC_LGUI", "LGui", modKinds, "gui", "command", "windows"),
	kc(0xE4, "KC_RCTL", "RCtrl", modKinds, "control", "ctrl"),
	kc(0xE5, "KC_RSFT", "RShift", modKinds, "shift"),
	kc(0xE6, "KC_RALT", "RAlt", modKinds, "alt", "option", "altgr"),
	kc(0xE7, "KC_RGUI", "RGui", modKinds, "gui", "command", "windows"),
}

var numpadKeys = []KeycodeInfo{
	kc(0x53, "KC_NUM", "NumLk", numpadKinds, "numlock"),
	kc(0x54, "KC_PSLS", "/", numpadKinds, "keypad", "slash"),
	kc(0x55, "KC_PAST", "*", numpadKinds, "keypad", "asterisk"),
	kc(0x56, "KC_PMNS", "-", numpadKinds, "keypad", "minus"),
	kc(0x57, "KC_PPLS", "+", numpadKinds, "keypad", "plus"),
	kc(0x58, "KC_PENT", "Enter", numpadKinds, "keypad", "enter"),
	kc(0x59, "KC_P1", "1", numpadKinds, "keypad"),
	kc(0x5A, "KC_P2", "2", numpadKinds, "keypad"),
	kc(0x5B, "KC_P3", "3", numpadKinds, "keypad"),
	kc(0x5C, "KC_P4", "4", numpadKinds, "keypad"),
	kc(0x5D, "KC_P5", "5", numpadKinds, "keypad"),
	kc(0x5E, "KC_P6", "6", numpadKinds, "keypad"),
	kc(0x5F, "KC_P7", "7", numpadKinds, "keypad"),
	kc(0x60, "KC_P8", "8", numpadKinds, "keypad"),
	kc(0x61, "KC_P9", "9", numpadKinds, "keypad"),
	kc(0x62, "KC_P0", "0", numpadKinds, "keypad"),
	kc(0x63, "KC_PDOT", ".", numpadKinds, "keypad", "dot"),
}

var internationalKeys = []KeycodeInfo{
	kc(0x87, "KC_INT1", "\\", intlKinds, "ro", "international"),
	kc(0x88, "KC_INT2", "かな", intlKinds, "kana", "international"),
	kc(0x89, "KC_INT3", "¥", intlKinds, "yen", "international"),
	kc(0x8A, "KC_INT4", "変換", intlKinds, "henkan", "international"),
	kc(0x8B, "KC_INT5", "無変換", intlKinds, "muhenkan", "international"),
	kc(0x90, "KC_LNG1", "かな", intlKinds, "lang1", "hangul"),
	kc(0x91, "KC_LNG2", "英数", intlKinds, "lang2", "hanja", "eisu"),
}

var transparencyKeys = []KeycodeInfo{
	kc(KC_NO, "KC_NO", "No", basicKinds, "none", "nothing"),
	kc(KC_TRNS, "KC_TRNS", "▽", basicKinds, "transparent"),
}

// symbolKeys are the unshifted punctuation keys.
var symbolKeys = []KeycodeInfo{
	kc(0x2D, "KC_MINS", "-", symbolKinds, "minus", "hyphen"),
	kc(0x2E, "KC_EQL", "=", symbolKinds, "equal"),
	kc(0x2F, "KC_LBRC", "[", symbolKinds, "bracket", "left"),
	kc(0x30, "KC_RBRC", "]", symbolKinds, "bracket", "right"),
	kc(0x31, "KC_BSLS", "\\", symbolKinds, "backslash"),
	kc(0x32, "KC_NUHS", "#", symbolKinds, "nonus", "hash"),
	kc(0x33, "KC_SCLN", ";", symbolKinds, "semicolon"),
	kc(0x34, "KC_QUOT", "'", symbolKinds, "quote", "apostrophe"),
	kc(0x35, "KC_GRV", "`", symbolKinds, "grave", "backtick"),
	kc(0x36, "KC_COMM", ",", symbolKinds, "comma"),
	kc(0x37, "KC_DOT", ".", symbolKinds, "dot", "period"),
	kc(0x38, "KC_SLSH", "/", symbolKinds, "slash"),
	kc(0x64, "KC_NUBS", "\\", symbolKinds, "nonus", "backslash"),
}

// shiftedLabels gives the en-us label of each shifted basic key.
var shiftedLabels = []struct {
	base    uint16
	label   string
	keyword string
}{
	{0x1E, "!", "exclamation"},
	{0x1F, "@", "at"},
	{0x20, "#", "hash"},
	{0x21, "$", "dollar"},
	{0x22, "%", "percent"},
	{0x23, "^", "caret"},
	{0x24, "&", "ampersand"},
	{0x25, "*", "asterisk"},
	{0x26, "(", "parenthesis"},
	{0x27, ")", "parenthesis"},
	{0x2D, "_", "underscore"},
	{0x2E, "+", "plus"},
	{0x2F, "{", "brace"},
	{0x30, "}", "brace"},
	{0x31, "|", "pipe"},
	{0x32, "~", "tilde"},
	{0x33, ":", "colon"},
	{0x34, "\"", "doublequote"},
	{0x35, "~", "tilde"},
	{0x36, "<", "less"},
	{0x37, ">", "greater"},
	{0x38, "?", "question"},
	{0x64, "|", "pipe"},
	{0x87, "_", "underscore"},
	{0x89, "|", "pipe"},
}

func shiftedKeys() []KeycodeInfo {
	names := make(map[uint16]string)
	for _, k := range symbolKeys {
		names[k.Code] = k.Name
	}
	for _, k := range digitKeys() {
		names[k.Code] = k.Name
	}
	for _, k := range internationalKeys {
		names[k.Code] = k.Name
	}

	out := make([]KeycodeInfo, 0, len(shiftedLabels))
	for _, s := range shiftedLabels {
		name := fmt.Sprintf("LSFT(%s)", names[s.base])
		out = append(out, kc(ModShift|s.base, name, s.label, shiftedKinds, s.keyword, "shift"))
	}
	return out
}

func functionKeys() []KeycodeInfo {
	out := make([]KeycodeInfo, 0, 29)
	for i := range 24 {
		var code uint16
		if i < 12 {
			code = 0x3A + uint16(i)
		} else {
			code = 0x68 + uint16(i-12)
		}
		name := fmt.Sprintf("F%d", i+1)
		out = append(out, kc(code, "KC_"+name, name, fnKinds, strings.ToLower(name), "function"))
	}
	return append(out,
		kc(0x46, "KC_PSCR", "PrtSc", fnKinds, "printscreen"),
		kc(0x47, "KC_SCRL", "ScrLk", fnKinds, "scrolllock"),
		kc(0x48, "KC_PAUS", "Pause", fnKinds, "pause", "break"),
	)
}

// macroKeyCount is the number of dynamic macro slots offered.
const macroKeyCount = 16

const qkMacro uint16 = 0x7700

func macroKeys() []KeycodeInfo {
	out := make([]KeycodeInfo, 0, macroKeyCount)
	for i := range macroKeyCount {
		out = append(out, kc(qkMacro+uint16(i), fmt.Sprintf("QK_MACRO_%d", i), fmt.Sprintf("M%d", i), macroKinds, "macro"))
	}
	return out
}

var deviceKeys = []KeycodeInfo{
	kc(0xA5, "KC_PWR", "Power", mediaKinds, "power", "system"),
	kc(0xA6, "KC_SLEP", "Sleep", mediaKinds, "sleep", "system"),
	kc(0xA7, "KC_WAKE", "Wake", mediaKinds, "wake", "system"),
	kc(0xA8, "KC_MUTE", "Mute", mediaKinds, "mute", "audio"),
	kc(0xA9, "KC_VOLU", "Vol+", mediaKinds, "volume", "up", "audio"),
	kc(0xAA, "KC_VOLD", "Vol-", mediaKinds, "volume", "down", "audio"),
	kc(0xAB, "KC_MNXT", "Next", mediaKinds, "next", "track", "media"),
	kc(0xAC, "KC_MPRV", "Prev", mediaKinds, "previous", "track", "media"),
	kc(0xAD, "KC_MSTP", "Stop", mediaKinds, "stop", "media"),
	kc(0xAE, "KC_MPLY", "Play", mediaKinds, "play", "pause", "media"),
	kc(0xB0, "KC_EJCT", "Eject", mediaKinds, "eject"),
	kc(0xB2, "KC_CALC", "Calc", mediaKinds, "calculator"),
	kc(0xBD, "KC_BRIU", "Bri+", mediaKinds, "brightness", "up"),
	kc(0xBE, "KC_BRID", "Bri-", mediaKinds, "brightness", "down"),
	kc(0xF0, "KC_MS_U", "Ms ↑", mouseKinds, "mouse", "up"),
	kc(0xF1, "KC_MS_D", "Ms ↓", mouseKinds, "mouse", "down"),
	kc(0xF2, "KC_MS_L", "Ms ←", mouseKinds, "mouse", "left"),
	kc(0xF3, "KC_MS_R", "Ms →", mouseKinds, "mouse", "right"),
	kc(0xF4, "KC_BTN1", "Btn1", mouseKinds, "mouse", "button", "click"),
	kc(0xF5, "KC_BTN2", "Btn2", mouseKinds, "mouse", "button", "click"),
	kc(0xF6, "KC_BTN3", "Btn3", mouseKinds, "mouse", "button", "click"),
	kc(0xF9, "KC_WH_U", "Wh ↑", mouseKinds, "mouse", "wheel", "scroll"),
	kc(0xFA, "KC_WH_D", "Wh ↓", mouseKinds, "mouse", "wheel", "scroll"),
	kc(0xFB, "KC_WH_L", "Wh ←", mouseKinds, "mouse", "wheel", "scroll"),
	kc(0xFC, "KC_WH_R", "Wh →", mouseKinds, "mouse", "wheel", "scroll"),
	kc(0xFD, "KC_ACL0", "Acc0", mouseKinds, "mouse", "acceleration"),
	kc(0xFE, "KC_ACL1", "Acc1", mouseKinds, "mouse", "acceleration"),
	kc(0xFF, "KC_ACL2", "Acc2", mouseKinds, "mouse", "acceleration"),
}

var specialKeys = []KeycodeInfo{
	kc(0x7C00, "QK_BOOT", "Reset", specialKinds, "reset", "bootloader"),
	kc(0x7C02, "DB_TOGG", "Debug", specialKinds, "debug"),
	kc(0x7C03, "EE_CLR", "EEP Rst", specialKinds, "eeprom", "clear"),
	kc(0x7C16, "QK_GESC", "Esc/~", specialKinds, "grave", "escape"),
	kc(0x7C18, "SC_LCPO", "LC/(", specialKinds, "spacecadet", "control"),
	kc(0x7C19, "SC_RCPC", "RC/)", specialKinds, "spacecadet", "control"),
	kc(0x7C1A, "SC_LSPO", "LS/(", specialKinds, "spacecadet", "shift"),
	kc(0x7C1B, "SC_RSPC", "RS/)", specialKinds, "spacecadet", "shift"),
	kc(0x7C1C, "SC_LAPO", "LA/(", specialKinds, "spacecadet", "alt"),
	kc(0x7C1D, "SC_RAPC", "RA/)", specialKinds, "spacecadet", "alt"),
	kc(0x7C1E, "SC_SENT", "RS/Ent", specialKinds, "spacecadet", "enter"),
	kc(0x7C73, "CW_TOGG", "CapsWd", specialKinds, "capsword"),
	kc(0x7C79, "QK_REP", "Repeat", specialKinds, "repeat"),
}

var midiNotes = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func midiKeys() []KeycodeInfo {
	out := make([]KeycodeInfo, 0, len(midiNotes)+5)
	for i, note := range midiNotes {
		name := "MI_" + strings.ReplaceAll(note, "#", "s")
		out = append(out, kc(0x7100+uint16(i), name, note, midiKinds, "midi", "note", strings.ToLower(note)))
	}
	return append(out,
		kc(0x7140, "MI_OCTD", "Oct-", midiKinds, "midi", "octave", "down"),
		kc(0x7141, "MI_OCTU", "Oct+", midiKinds, "midi", "octave", "up"),
		kc(0x7150, "MI_ON", "MIDI On", midiKinds, "midi", "on"),
		kc(0x7151, "MI_OFF", "MIDI Off", midiKinds, "midi", "off"),
		kc(0x7152, "MI_TOGG", "MIDI Tog", midiKinds, "midi", "toggle"),
	)
}

// bmpBase is the first BLE Micro Pro keycode (user keyboard range).
const bmpBase uint16 = 0x7E00

func bmpKeys() []KeycodeInfo {
	fixed := []struct{ name, label, keyword string }{
		{"BLE_DIS", "BLE Off", "bluetooth"},
		{"BLE_EN", "BLE On", "bluetooth"},
		{"USB_DIS", "USB Off", "usb"},
		{"USB_EN", "USB On", "usb"},
		{"SEL_BLE", "Sel BLE", "bluetooth"},
		{"SEL_USB", "Sel USB", "usb"},
		{"TOG_HID", "Tog HID", "hid"},
		{"BATT_LV", "Battery", "battery"},
		{"ENT_SLP", "Sleep", "sleep"},
		{"AD_WO_L", "Adv All", "advertise"},
	}
	out := make([]KeycodeInfo, 0, len(fixed)+16)
	code := bmpBase
	for _, f := range fixed {
		out = append(out, kc(code, f.name, f.label, bmpKinds, f.keyword, "ble"))
		code++
	}
	for i := range 8 {
		out = append(out, kc(code, fmt.Sprintf("ADV_ID%d", i), fmt.Sprintf("Adv %d", i), bmpKinds, "advertise", "ble"))
		code++
	}
	for i := range 8 {
		out = append(out, kc(code, fmt.Sprintf("DEL_ID%d", i), fmt.Sprintf("Del %d", i), bmpKinds, "delete", "bond", "ble"))
		code++
	}
	return out
}

// Layer keycode bases.
const (
	qkTo             uint16 = 0x5200
	qkMomentary      uint16 = 0x5220
	qkDefLayer       uint16 = 0x5240
	qkToggleLayer    uint16 = 0x5260
	qkOneShotLayer   uint16 = 0x5280
	qkLayerTapToggle uint16 = 0x52C0

	// maxLayers bounds layer keycodes to the 5-bit layer field.
	maxLayers = 32
)

var layerFuncs = []struct {
	base    uint16
	prefix  string
	keyword string
}{
	{qkMomentary, "MO", "momentary"},
	{qkToggleLayer, "TG", "toggle"},
	{qkTo, "TO", "to"},
	{qkDefLayer, "DF", "default"},
	{qkLayerTapToggle, "TT", "taptoggle"},
	{qkOneShotLayer, "OSL", "oneshot"},
}

// LayerKeysPerLayer is the number of layer keycodes generated per layer.
var LayerKeysPerLayer = len(layerFuncs)

func layerKeys(layerCount int) []KeycodeInfo {
	layerCount = min(max(layerCount, 0), maxLayers)
	out := make([]KeycodeInfo, 0, layerCount*len(layerFuncs))
	for layer := range layerCount {
		for _, f := range layerFuncs {
			name := fmt.Sprintf("%s(%d)", f.prefix, layer)
			out = append(out, kc(f.base|uint16(layer), name, name, layerKinds, "layer", f.keyword))
		}
	}
	return out
}

// AnyKey is the template entry of the custom keycode category.
var AnyKey = kc(0xFFFF, "ANY", "Any", []string{KindAny}, "any", "custom")

// CustomKey describes an arbitrary 16-bit keycode entered by the user.
func CustomKey(code uint16) KeycodeInfo {
	if info, ok := ByCode(code); ok {
		// Known names remain searchable under their QMK identifier.
		info.Kinds = []string{KindAny}
		return info
	}
	name := fmt.Sprintf("0x%04X", code)
	return kc(code, name, name, []string{KindAny}, "any", "custom")
}
