// Package macro parses and formats the macro text typed in the macro editor
// and encodes it into the VIA dynamic macro buffer.
//
// Text is typed literally. A brace group names keycodes:
//
//	hello{KC_ENT}          types "hello" then taps Enter
//	{KC_LCTL, KC_C}        chord: press in order, release in reverse
package macro

import (
	"fmt"
	"strings"

	"github.com/chatter/remap/internal/hid"
)

// Step is one macro action: Text, Tap or Chord.
type Step interface {
	isStep()
}

// Text types characters literally.
type Text string

// Tap presses and releases one keycode.
type Tap struct {
	Code uint16
}

// Chord holds several keycodes down together.
type Chord struct {
	Codes []uint16
}

func (Text) isStep()  {}
func (Tap) isStep()   {}
func (Chord) isStep() {}

// SyntaxError reports a malformed macro text. Pos is a byte offset.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("macro: %s at offset %d", e.Msg, e.Pos)
}

// Parse splits macro text into steps.
func Parse(text string) ([]Step, error) {
	var (
		steps []Step
		buf   strings.Builder
	)

	flush := func() {
		if buf.Len() > 0 {
			steps = append(steps, Text(buf.String()))
			buf.Reset()
		}
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '{':
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				return nil, &SyntaxError{Pos: i, Msg: "unclosed '{'"}
			}
			end += i + 1

			step, err := parseGroup(text[i+1:end], i+1)
			if err != nil {
				return nil, err
			}
			flush()
			steps = append(steps, step)
			i = end
		case isTypeable(c):
			buf.WriteByte(c)
		default:
			return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("cannot type character %q", c)}
		}
	}
	flush()

	return steps, nil
}

func parseGroup(body string, offset int) (Step, error) {
	if strings.TrimSpace(body) == "" {
		return nil, &SyntaxError{Pos: offset, Msg: "empty key group"}
	}
	if i := strings.IndexByte(body, '{'); i >= 0 {
		return nil, &SyntaxError{Pos: offset + i, Msg: "nested '{'"}
	}

	var codes []uint16
	pos := offset
	for part := range strings.SplitSeq(body, ",") {
		name := strings.TrimSpace(part)
		namePos := pos + strings.Index(part, name)
		pos += len(part) + 1

		if name == "" {
			return nil, &SyntaxError{Pos: namePos, Msg: "missing keycode name"}
		}
		code, ok := hid.ParseName(name)
		if !ok {
			return nil, &SyntaxError{Pos: namePos, Msg: fmt.Sprintf("unknown keycode %q", name)}
		}
		if !hid.IsMacroSafe(code) {
			return nil, &SyntaxError{Pos: namePos, Msg: fmt.Sprintf("keycode %s cannot be used in a macro", name)}
		}
		codes = append(codes, code)
	}

	if len(codes) == 1 {
		return Tap{Code: codes[0]}, nil
	}
	return Chord{Codes: codes}, nil
}

func isTypeable(c byte) bool {
	return (c >= 0x20 && c <= 0x7E) || c == '\n' || c == '\t'
}

// Format renders steps back into macro text. Parse(Format(s)) yields s for
// any steps that Parse produced.
func Format(steps []Step) string {
	var b strings.Builder
	for _, step := range steps {
		switch s := step.(type) {
		case Text:
			b.WriteString(string(s))
		case Tap:
			b.WriteString("{" + hid.NameOf(s.Code) + "}")
		case Chord:
			names := make([]string, len(s.Codes))
			for i, code := range s.Codes {
				names[i] = hid.NameOf(code)
			}
			b.WriteString("{" + strings.Join(names, ", ") + "}")
		}
	}
	return b.String()
}

// AppendKey appends a single-tap group for name to the macro text.
func AppendKey(text, name string) string {
	return text + "{" + name + "}"
}
