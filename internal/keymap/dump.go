package keymap

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/chatter/remap/internal/hid"
	"github.com/chatter/remap/internal/logger"
)

// MaxLayers is the highest layer count a device may report.
const MaxLayers = 32

// ErrInvalidDump is returned when a device dump cannot be used.
var ErrInvalidDump = errors.New("invalid device dump")

// dump is the on-disk YAML form of a device. Keycodes are stored by name so
// the file stays readable and editable.
type dump struct {
	Keyboard        Definition          `yaml:"keyboard"`
	LayerCount      int                 `yaml:"layer_count"`
	SelectedOptions []LayoutOption      `yaml:"selected_options,omitempty"`
	Keymaps         []map[string]string `yaml:"keymaps"`
	// Macros holds macro text by macro keycode name, e.g. "MACRO0".
	Macros map[string]string `yaml:"macros,omitempty"`
}

//go:embed default.yaml
var defaultDump []byte

// Load reads a device dump. defaultLayers is used when the dump does not
// state a layer count.
func Load(path string, defaultLayers int, log *logger.Logger) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read device dump: %w", err)
	}
	return parse(data, path, defaultLayers, 0, log)
}

// LoadOrDefault reads the dump at path, or the built-in 4x12 ortho keyboard
// with defaultLayers layers when path is empty or does not exist yet.
func LoadOrDefault(path string, defaultLayers int, log *logger.Logger) (*State, error) {
	if path != "" {
		s, err := Load(path, defaultLayers, log)
		if !errors.Is(err, os.ErrNotExist) {
			return s, err
		}
	}
	return Default(defaultLayers, log)
}

// Default returns the built-in keyboard. A positive layers replaces its
// layer count of 4; built-in keymaps past the last layer are dropped.
func Default(layers int, log *logger.Logger) (*State, error) {
	return parse(defaultDump, "default.yaml", MaxLayers, layers, log)
}

// parse decodes a dump. A positive layers overrides the dump's layer count.
func parse(data []byte, source string, defaultLayers, layers int, log *logger.Logger) (*State, error) {
	var d dump
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDump, source, err)
	}

	if layers > 0 {
		d.LayerCount = layers
	}
	if d.LayerCount == 0 {
		d.LayerCount = max(defaultLayers, len(d.Keymaps))
	}
	if d.LayerCount < 1 || d.LayerCount > MaxLayers {
		return nil, fmt.Errorf("%w: layer count %d out of range 1..%d", ErrInvalidDump, d.LayerCount, MaxLayers)
	}
	if err := d.Keyboard.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDump, err)
	}

	keymaps := make([]map[string]hid.Keymap, len(d.Keymaps))
	for layer, names := range d.Keymaps {
		keymaps[layer] = make(map[string]hid.Keymap, len(names))
		for pos, name := range names {
			code, ok := hid.ParseName(name)
			if !ok {
				return nil, fmt.Errorf("%w: layer %d key %s: unknown keycode %q", ErrInvalidDump, layer, pos, name)
			}
			keymaps[layer][pos] = hid.KeymapFor(code)
		}
	}

	s := New(d.Keyboard, d.LayerCount, keymaps, log)
	for _, opt := range d.SelectedOptions {
		s.SelectOption(opt.Option, opt.Choice)
	}
	for name, text := range d.Macros {
		if err := s.SetMacro(name, text); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDump, err)
		}
	}

	log.Info("loaded device dump", "source", source, "keyboard", d.Keyboard.Name, "layers", d.LayerCount)

	return s, nil
}

// Save writes the device dump with pending remaps applied. The file is
// replaced atomically, and the remaps are folded into the device keymaps
// only once it is written.
func (s *State) Save(path string) error {
	d := dump{
		Keyboard:        s.keyboard,
		LayerCount:      s.layerCount,
		SelectedOptions: s.selectedOptions,
		Keymaps:         make([]map[string]string, s.layerCount),
		Macros:          s.Macros(),
	}
	for layer := range s.layerCount {
		names := make(map[string]string, len(s.keymaps[layer]))
		for pos, entry := range s.keymaps[layer] {
			names[pos] = hid.NameOf(entry.Code)
		}
		for pos, entry := range s.remaps[layer] {
			names[pos] = hid.NameOf(entry.Code)
		}
		d.Keymaps[layer] = names
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode device dump: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode device dump: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write device dump: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".remap-*.yaml")
	if err != nil {
		return fmt.Errorf("write device dump: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write device dump: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write device dump: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write device dump: %w", err)
	}

	applied := s.apply()
	s.log.Info("saved device dump", "path", path, "applied", applied)

	return nil
}
