// Package testgen provides rapid generators for picker keys and category maps.
package testgen

import (
	"fmt"

	"pgregory.net/rapid"

	"github.com/chatter/remap/internal/hid"
	"github.com/chatter/remap/internal/keycodes"
)

// KeyOption transforms a Key generator.
type KeyOption func(*rapid.Generator[*keycodes.Key]) *rapid.Generator[*keycodes.Key]

// Key generates a display key with a short label, a QMK-style meta name and
// a few lowercase keywords. Letters are drawn from a small alphabet so that
// substring collisions between keys are common.
//
// Examples:
//
//	Key()              // &Key{Label: "ab", Meta: "KC_CAB", ...}
//	Key(WithMacroKind) // same, with the "macro" kind attached
func Key(opts ...KeyOption) *rapid.Generator[*keycodes.Key] {
	gen := rapid.Custom(func(t *rapid.T) *keycodes.Key {
		code := rapid.Uint16().Draw(t, "code")
		label := rapid.StringMatching(`[a-dA-D]{1,4}`).Draw(t, "label")
		meta := "KC_" + rapid.StringMatching(`[A-D]{1,5}`).Draw(t, "meta")
		keywords := rapid.SliceOfN(rapid.StringMatching(`[a-d]{1,4}`), 0, 3).Draw(t, "keywords")

		info := hid.KeycodeInfo{
			Code:     code,
			Name:     meta,
			Label:    label,
			Kinds:    []string{hid.KindBasic},
			Keywords: keywords,
		}
		return &keycodes.Key{
			Label:  label,
			Meta:   meta,
			Keymap: hid.Keymap{Code: code, Kinds: info.Kinds, Info: info},
		}
	})
	for _, opt := range opts {
		gen = opt(gen)
	}
	return gen
}

// WithMacroKind marks the generated key as a dynamic macro key.
func WithMacroKind(gen *rapid.Generator[*keycodes.Key]) *rapid.Generator[*keycodes.Key] {
	return rapid.Custom(func(t *rapid.T) *keycodes.Key {
		key := gen.Draw(t, "key")
		key.Keymap.Kinds = append(key.Keymap.Kinds, hid.KindMacro)
		return key
	})
}

// CategoryMap generates a map of 1-5 categories, each holding 0-8 keys.
// Category names are unique.
func CategoryMap() *rapid.Generator[*keycodes.CategoryMap] {
	return rapid.Custom(func(t *rapid.T) *keycodes.CategoryMap {
		m := keycodes.NewCategoryMap()
		n := rapid.IntRange(1, 5).Draw(t, "categories")
		for i := range n {
			keys := rapid.SliceOfN(Key(), 0, 8).Draw(t, fmt.Sprintf("keys%d", i))
			m.Set(fmt.Sprintf("Cat%d", i), keys)
		}
		return m
	})
}

// Query generates a non-empty search query over the same alphabet as Key.
func Query() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-dA-D_]{1,3}`)
}
