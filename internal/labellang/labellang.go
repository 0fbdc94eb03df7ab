// Package labellang resolves keycode display labels for the keyboard's
// physical layout language.
package labellang

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownLang is returned when a layout language is not supported.
var ErrUnknownLang = errors.New("unknown label language")

// Lang identifies a keyboard layout language, e.g. "en-us".
type Lang string

const (
	EnUS Lang = "en-us"
	EnGB Lang = "en-gb"
	JaJP Lang = "ja-jp"
	DeDE Lang = "de-de"
)

// Default is used when no language is configured.
const Default = EnUS

// shift mirrors hid.ModShift; labellang sits below hid and cannot import it.
const shift uint16 = 0x0200

type layout struct {
	title         string
	international bool
	labels        map[uint16]string
	missing       map[uint16]bool
}

var layouts = map[Lang]layout{
	EnUS: {
		title: "English (US)",
	},
	EnGB: {
		title: "English (UK)",
		labels: map[uint16]string{
			shift | 0x1F: "\"",
			shift | 0x20: "£",
			shift | 0x34: "@",
			shift | 0x32: "~",
			shift | 0x35: "¬",
			shift | 0x64: "|",
		},
	},
	JaJP: {
		title:         "Japanese (JIS)",
		international: true,
		labels: map[uint16]string{
			0x2E:         "^",
			0x2F:         "@",
			0x30:         "[",
			0x31:         "]",
			0x32:         "]",
			0x34:         ":",
			0x35:         "半角/全角",
			shift | 0x1F: "\"",
			shift | 0x23: "&",
			shift | 0x24: "'",
			shift | 0x25: "(",
			shift | 0x26: ")",
			shift | 0x2D: "=",
			shift | 0x2E: "~",
			shift | 0x2F: "`",
			shift | 0x30: "{",
			shift | 0x31: "}",
			shift | 0x32: "}",
			shift | 0x33: "+",
			shift | 0x34: "*",
		},
		missing: map[uint16]bool{
			shift | 0x27: true, // Shift+0 types nothing on JIS
			shift | 0x35: true,
			0x64:         true,
			shift | 0x64: true,
		},
	},
	DeDE: {
		title: "German (QWERTZ)",
		labels: map[uint16]string{
			0x1C:         "Z",
			0x1D:         "Y",
			0x2D:         "ß",
			0x2E:         "´",
			0x2F:         "Ü",
			0x30:         "+",
			0x32:         "#",
			0x33:         "Ö",
			0x34:         "Ä",
			0x35:         "^",
			0x38:         "-",
			0x64:         "<",
			shift | 0x1F: "\"",
			shift | 0x20: "§",
			shift | 0x23: "&",
			shift | 0x24: "/",
			shift | 0x25: "(",
			shift | 0x26: ")",
			shift | 0x27: "=",
			shift | 0x2D: "?",
			shift | 0x2E: "`",
			shift | 0x30: "*",
			shift | 0x32: "'",
			shift | 0x35: "°",
			shift | 0x36: ";",
			shift | 0x37: ":",
			shift | 0x38: "_",
			shift | 0x64: ">",
		},
		missing: map[uint16]bool{
			0x31:         true,
			shift | 0x31: true,
			shift | 0x2F: true,
			shift | 0x33: true,
			shift | 0x34: true,
		},
	},
}

// All returns the supported languages in display order.
func All() []Lang {
	return []Lang{EnUS, EnGB, JaJP, DeDE}
}

// Parse validates a language identifier. Matching is case-insensitive and
// accepts underscores, so "ja_JP" parses as JaJP. Empty input yields Default.
func Parse(s string) (Lang, error) {
	s = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "-"))
	if s == "" {
		return Default, nil
	}

	lang := Lang(s)
	if _, ok := layouts[lang]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLang, s)
	}

	return lang, nil
}

func (l Lang) layout() layout {
	if lay, ok := layouts[l]; ok {
		return lay
	}
	return layouts[Default]
}

// Title returns a human readable name.
func (l Lang) Title() string {
	return l.layout().title
}

// International reports whether the layout has the JIS international keys.
func (l Lang) International() bool {
	return l.layout().international
}

// Has reports whether the layout can produce the keycode at all.
func (l Lang) Has(code uint16) bool {
	return !l.layout().missing[code]
}

// Label returns the layout's label override for code, if any.
func (l Lang) Label(code uint16) (string, bool) {
	label, ok := l.layout().labels[code]
	return label, ok
}

// Resolve returns the label to display for code, falling back to the
// given default (en-us) label.
func (l Lang) Resolve(code uint16, fallback string) string {
	if label, ok := l.Label(code); ok {
		return label
	}
	return fallback
}
