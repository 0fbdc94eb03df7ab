// Package keymap holds the device keymap state behind the keymap view:
// the keyboard definition, per-layer keycodes, layer and key selection and
// the pending remaps that have not been written to the device yet.
package keymap

import (
	"fmt"
	"strconv"
	"strings"
)

// KeyPos is one physical key of the keyboard definition.
type KeyPos struct {
	// Pos is the matrix position, "row,col".
	Pos   string  `yaml:"pos"`
	Label string  `yaml:"label,omitempty"`
	Width float64 `yaml:"width,omitempty"`
	// Option restricts the key to one layout choice, "option,choice".
	Option string `yaml:"option,omitempty"`
}

// Units returns the key width in key units, defaulting to 1.
func (k KeyPos) Units() float64 {
	if k.Width <= 0 {
		return 1
	}
	return k.Width
}

// LayoutOption is a selected choice for one layout option.
type LayoutOption struct {
	Option int `yaml:"option"`
	Choice int `yaml:"choice"`
}

// Definition describes the keyboard's physical layout.
type Definition struct {
	Name string     `yaml:"name"`
	Rows [][]KeyPos `yaml:"rows"`
	// Labels names the layout options: the option title followed by its
	// choices, e.g. ["Bottom row", "2u", "1u"]. A title without choices is a
	// toggle.
	Labels [][]string `yaml:"labels,omitempty"`
}

// Positions returns every matrix position in row order.
func (d Definition) Positions() []string {
	var out []string
	for _, row := range d.Rows {
		for _, key := range row {
			out = append(out, key.Pos)
		}
	}
	return out
}

// HasPos reports whether pos is a key of the definition.
func (d Definition) HasPos(pos string) bool {
	for _, row := range d.Rows {
		for _, key := range row {
			if key.Pos == pos {
				return true
			}
		}
	}
	return false
}

// Validate checks that every position is a unique "row,col" pair.
func (d Definition) Validate() error {
	seen := make(map[string]bool)
	for _, row := range d.Rows {
		for _, key := range row {
			if _, _, err := ParsePos(key.Pos); err != nil {
				return err
			}
			if seen[key.Pos] {
				return fmt.Errorf("duplicate key position %q", key.Pos)
			}
			seen[key.Pos] = true
			if key.Option != "" {
				if _, _, err := splitPair(key.Option); err != nil {
					return fmt.Errorf("key %s: invalid layout option %q", key.Pos, key.Option)
				}
			}
		}
	}
	return nil
}

// ParsePos splits a "row,col" matrix position.
func ParsePos(pos string) (row, col int, err error) {
	row, col, err = splitPair(pos)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid key position %q: %w", pos, err)
	}
	return row, col, nil
}

func splitPair(s string) (int, int, error) {
	a, b, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("want two comma separated numbers")
	}
	x, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, err
	}
	if x < 0 || y < 0 {
		return 0, 0, fmt.Errorf("negative value")
	}
	return x, y, nil
}

// visible reports whether the key shows under the selected layout options.
// Keys without an option always show. A key for an option with no selection
// shows only for choice 0.
func (k KeyPos) visible(selected []LayoutOption) bool {
	if k.Option == "" {
		return true
	}
	option, choice, err := splitPair(k.Option)
	if err != nil {
		return false
	}
	for _, sel := range selected {
		if sel.Option == option {
			return sel.Choice == choice
		}
	}
	return choice == 0
}
