package labellang

import (
	"errors"
	"testing"

	"pgregory.net/rapid"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Lang
		wantErr bool
	}{
		{"", Default, false},
		{"en-us", EnUS, false},
		{"EN-GB", EnGB, false},
		{"ja_JP", JaJP, false},
		{" de-de ", DeDE, false},
		{"fr-fr", "", true},
		{"english", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownLang) {
					t.Errorf("Parse(%q) error = %v, want ErrUnknownLang", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolve_Overrides(t *testing.T) {
	tests := []struct {
		lang     Lang
		code     uint16
		fallback string
		want     string
	}{
		{EnUS, 0x2E, "=", "="},
		{JaJP, 0x2E, "=", "^"},
		{JaJP, shift | 0x1F, "@", "\""},
		{DeDE, 0x1C, "Y", "Z"},
		{EnGB, shift | 0x20, "#", "£"},
	}

	for _, tt := range tests {
		got := tt.lang.Resolve(tt.code, tt.fallback)
		if got != tt.want {
			t.Errorf("%s.Resolve(0x%04X) = %q, want %q", tt.lang, tt.code, got, tt.want)
		}
	}
}

func TestHas(t *testing.T) {
	if !EnUS.Has(0x64) {
		t.Error("en-us should have KC_NUBS")
	}
	if JaJP.Has(shift | 0x27) {
		t.Error("ja-jp should not have LSFT(KC_0)")
	}
}

func TestUnknownLangFallsBackToDefault(t *testing.T) {
	lang := Lang("xx-xx")
	if lang.Title() != Default.Title() {
		t.Errorf("unknown language should use default layout, got %q", lang.Title())
	}
}

// Property: Parse accepts exactly the supported languages
func TestParse_OnlySupported(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := rapid.StringMatching(`[a-z]{2}-[a-z]{2}`).Draw(t, "input")
		lang, err := Parse(input)

		supported := false
		for _, l := range All() {
			if string(l) == input {
				supported = true
			}
		}

		if supported && err != nil {
			t.Fatalf("Parse(%q) rejected a supported language: %v", input, err)
		}
		if !supported && err == nil {
			t.Fatalf("Parse(%q) accepted unsupported language %q", input, lang)
		}
	})
}
