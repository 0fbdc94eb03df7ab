package hid

import "fmt"

var asciiSymbols = map[rune]uint16{
	' ':  0x2C,
	'-':  0x2D,
	'=':  0x2E,
	'[':  0x2F,
	']':  0x30,
	'\\': 0x31,
	';':  0x33,
	'\'': 0x34,
	'`':  0x35,
	',':  0x36,
	'.':  0x37,
	'/':  0x38,
	'!':  ModShift | 0x1E,
	'@':  ModShift | 0x1F,
	'#':  ModShift | 0x20,
	'$':  ModShift | 0x21,
	'%':  ModShift | 0x22,
	'^':  ModShift | 0x23,
	'&':  ModShift | 0x24,
	'*':  ModShift | 0x25,
	'(':  ModShift | 0x26,
	')':  ModShift | 0x27,
	'_':  ModShift | 0x2D,
	'+':  ModShift | 0x2E,
	'{':  ModShift | 0x2F,
	'}':  ModShift | 0x30,
	'|':  ModShift | 0x31,
	':':  ModShift | 0x33,
	'"':  ModShift | 0x34,
	'~':  ModShift | 0x35,
	'<':  ModShift | 0x36,
	'>':  ModShift | 0x37,
	'?':  ModShift | 0x38,
}

// ASCIICode returns the en-us keycode that types r. Shifted characters carry
// the ModShift bit.
func ASCIICode(r rune) (uint16, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return KC_A + uint16(r-'a'), true
	case r >= 'A' && r <= 'Z':
		return ModShift | (KC_A + uint16(r-'A')), true
	case r == '0':
		return 0x27, true
	case r >= '1' && r <= '9':
		return 0x1E + uint16(r-'1'), true
	}
	code, ok := asciiSymbols[r]
	return code, ok
}

func asciiKeys() []KeycodeInfo {
	out := make([]KeycodeInfo, 0, 0x7F-0x20)
	for r := rune(0x20); r < 0x7F; r++ {
		code, ok := ASCIICode(r)
		if !ok {
			continue
		}
		label := string(r)
		if r == ' ' {
			label = "Space"
		}
		name := NameOf(code)
		out = append(out, KeycodeInfo{
			Code:     code,
			Name:     name,
			Label:    label,
			Kinds:    []string{KindAscii},
			Keywords: []string{fmt.Sprintf("%q", r), "ascii"},
		})
	}
	return out
}

// NameOf renders the QMK identifier for a code, falling back to hex.
func NameOf(code uint16) string {
	if info, ok := ByCode(code); ok {
		return info.Name
	}
	if IsShifted(code) {
		if info, ok := ByCode(BaseCode(code)); ok {
			return "LSFT(" + info.Name + ")"
		}
	}
	return fmt.Sprintf("0x%04X", code)
}
