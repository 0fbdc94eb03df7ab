// Package keycodes builds the keycode picker: per-category key lists, the
// free-text search ranker and the browse/search selector state.
package keycodes

import (
	"strings"

	"github.com/chatter/remap/internal/hid"
	"github.com/chatter/remap/internal/labellang"
)

// Key is one selectable entry in the picker. Keys are shared by pointer;
// two keys are the same key only if they are the same pointer.
type Key struct {
	Label  string
	Meta   string
	Keymap hid.Keymap
}

// Code returns the keycode value.
func (k *Key) Code() uint16 {
	return k.Keymap.Code
}

// IsMacro reports whether the key is a dynamic macro key.
func (k *Key) IsMacro() bool {
	return k.Keymap.HasKind(hid.KindMacro)
}

// keywords returns the search keywords as one lowercase string.
func (k *Key) keywords() string {
	return strings.ToLower(strings.Join(k.Keymap.Info.Keywords, ""))
}

// GenKeys expands raw keymaps into display keys using the layout language.
func GenKeys(keymaps []hid.Keymap, lang labellang.Lang) []*Key {
	keys := make([]*Key, 0, len(keymaps))
	for _, km := range keymaps {
		keys = append(keys, &Key{
			Label:  lang.Resolve(km.Code, km.Info.Label),
			Meta:   km.Info.Name,
			Keymap: km,
		})
	}
	return keys
}
