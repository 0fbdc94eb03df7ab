package macro

import (
	"fmt"
	"slices"

	"github.com/chatter/remap/internal/hid"
)

// VIA macro buffer action bytes.
const (
	actionPrefix byte = 0x01
	actionTap    byte = 0x01
	actionDown   byte = 0x02
	actionUp     byte = 0x03

	kcLeftShift byte = 0xE1
)

// Encode serialises steps into the VIA dynamic macro format. Text is sent
// as raw bytes. Shifted codes wrap the base key in left shift.
func Encode(steps []Step) ([]byte, error) {
	var out []byte
	for _, step := range steps {
		switch s := step.(type) {
		case Text:
			out = append(out, s...)
		case Tap:
			if err := checkCode(s.Code); err != nil {
				return nil, err
			}
			out = appendTap(out, s.Code)
		case Chord:
			for _, code := range s.Codes {
				if err := checkCode(code); err != nil {
					return nil, err
				}
			}
			for _, code := range s.Codes {
				out = appendPress(out, actionDown, code)
			}
			for _, code := range slices.Backward(s.Codes) {
				out = appendPress(out, actionUp, code)
			}
		default:
			return nil, fmt.Errorf("macro: unknown step %T", step)
		}
	}
	return out, nil
}

func checkCode(code uint16) error {
	if !hid.IsMacroSafe(code) {
		return fmt.Errorf("macro: keycode 0x%04X cannot be encoded", code)
	}
	return nil
}

func appendTap(out []byte, code uint16) []byte {
	if hid.IsShifted(code) {
		out = append(out, actionPrefix, actionDown, kcLeftShift)
		out = append(out, actionPrefix, actionTap, byte(hid.BaseCode(code)))
		return append(out, actionPrefix, actionUp, kcLeftShift)
	}
	return append(out, actionPrefix, actionTap, byte(code))
}

// appendPress emits a down or up action. Shift goes down before and comes up
// after its base key.
func appendPress(out []byte, action byte, code uint16) []byte {
	base := byte(hid.BaseCode(code))
	if !hid.IsShifted(code) {
		return append(out, actionPrefix, action, base)
	}
	if action == actionDown {
		out = append(out, actionPrefix, actionDown, kcLeftShift)
		return append(out, actionPrefix, actionDown, base)
	}
	out = append(out, actionPrefix, actionUp, base)
	return append(out, actionPrefix, actionUp, kcLeftShift)
}
