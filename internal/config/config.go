// Package config loads remap settings from a TOML file and REMAP_ environment
// variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/chatter/remap/internal/keymap"
	"github.com/chatter/remap/internal/labellang"
	"github.com/chatter/remap/internal/logger"
)

const appName = "remap"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds application configuration.
type Config struct {
	LabelLang string         `mapstructure:"label_lang"`
	LogLevel  string         `mapstructure:"log_level"`
	Device    DeviceConfig   `mapstructure:"device"`
	Firmware  FirmwareConfig `mapstructure:"firmware"`
}

// DeviceConfig describes the keyboard being edited.
type DeviceConfig struct {
	DumpPath    string `mapstructure:"dump_path"`
	LayerCount  int    `mapstructure:"layer_count"`
	BleMicroPro bool   `mapstructure:"ble_micro_pro"`
}

// FirmwareConfig holds the firmware store locations.
type FirmwareConfig struct {
	DBPath       string `mapstructure:"db_path"`
	BlobDir      string `mapstructure:"blob_dir"`
	DropDir      string `mapstructure:"drop_dir"`
	DownloadDir  string `mapstructure:"download_dir"`
	DefinitionID string `mapstructure:"definition_id"`
}

// Lang returns the parsed label language. Call Validate first.
func (c Config) Lang() labellang.Lang {
	lang, err := labellang.Parse(c.LabelLang)
	if err != nil {
		return labellang.Default
	}
	return lang
}

// Validate checks values that cannot be corrected silently.
func (c Config) Validate() error {
	if _, err := labellang.Parse(c.LabelLang); err != nil {
		return fmt.Errorf("%w: label_lang: %w", ErrInvalidConfig, err)
	}
	if err := logger.CheckLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err)
	}
	if c.Device.LayerCount < 1 || c.Device.LayerCount > keymap.MaxLayers {
		return fmt.Errorf("%w: device.layer_count must be between 1 and %d, got %d",
			ErrInvalidConfig, keymap.MaxLayers, c.Device.LayerCount)
	}
	if strings.TrimSpace(c.Firmware.DefinitionID) == "" {
		return fmt.Errorf("%w: firmware.definition_id is empty", ErrInvalidConfig)
	}
	return nil
}

// Path returns the config file location: $REMAP_CONFIG, else
// $XDG_CONFIG_HOME/remap/config.toml.
func Path() string {
	if p := os.Getenv("REMAP_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(configHome(), appName, "config.toml")
}

// Load reads configuration from file and env. The file is optional. Env var
// overrides use prefix REMAP_ with '.' replaced by '_', so
// REMAP_DEVICE_LAYER_COUNT sets device.layer_count.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	v.SetConfigFile(Path())

	v.SetEnvPrefix("REMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !isMissing(err) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes cfg to Path, creating the config directory if needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("label_lang", cfg.LabelLang)
	v.Set("log_level", cfg.LogLevel)
	v.Set("device.dump_path", cfg.Device.DumpPath)
	v.Set("device.layer_count", cfg.Device.LayerCount)
	v.Set("device.ble_micro_pro", cfg.Device.BleMicroPro)
	v.Set("firmware.db_path", cfg.Firmware.DBPath)
	v.Set("firmware.blob_dir", cfg.Firmware.BlobDir)
	v.Set("firmware.drop_dir", cfg.Firmware.DropDir)
	v.Set("firmware.download_dir", cfg.Firmware.DownloadDir)
	v.Set("firmware.definition_id", cfg.Firmware.DefinitionID)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	data := filepath.Join(dataHome(), appName)
	home, _ := os.UserHomeDir()

	v.SetDefault("label_lang", string(labellang.Default))
	v.SetDefault("log_level", "")
	v.SetDefault("device.dump_path", filepath.Join(configHome(), appName, "keymap.yaml"))
	v.SetDefault("device.layer_count", 4)
	v.SetDefault("device.ble_micro_pro", false)
	v.SetDefault("firmware.db_path", filepath.Join(data, "remap.db"))
	v.SetDefault("firmware.blob_dir", filepath.Join(data, "blobs"))
	v.SetDefault("firmware.drop_dir", filepath.Join(data, "drop"))
	v.SetDefault("firmware.download_dir", filepath.Join(home, "Downloads"))
	v.SetDefault("firmware.definition_id", "default")
}

func isMissing(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}

func dataHome() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share")
}
