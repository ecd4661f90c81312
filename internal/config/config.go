// Package config loads host settings from .apptree/config.toml.
//
// Every accessor is nil-safe: a missing file yields a nil *Config whose
// accessors return the defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/pengelbrecht/apptree/internal/keys"
	"github.com/pengelbrecht/apptree/internal/render"
	"github.com/pengelbrecht/apptree/internal/viewport"
)

// Dir is the per-project settings directory.
const Dir = ".apptree"

// FileName is the settings file inside Dir.
const FileName = "config.toml"

// DefaultLogFile is the log file inside Dir used when none is configured.
const DefaultLogFile = "apptree.log"

// Config is the root of .apptree/config.toml.
type Config struct {
	// FrameHeight is the number of menu rows shown at once (default 19).
	FrameHeight int `toml:"frame_height"`

	// LineEnding is "crlf" (default) or "lf".
	LineEnding string `toml:"line_ending"`

	// Menu is the default menu file for the run and serial commands.
	Menu string `toml:"menu"`

	Keys   KeysConfig   `toml:"keys"`
	Log    LogConfig    `toml:"log"`
	Serial SerialConfig `toml:"serial"`
	Evdev  EvdevConfig  `toml:"evdev"`
	Update UpdateConfig `toml:"update"`

	// dir is the directory the file was loaded from.
	dir string
}

// KeysConfig overrides the default k/j/l/h/g bindings. Values use
// keys.ParseCode syntax ("k", "enter", "0x1b").
type KeysConfig struct {
	Up     string `toml:"up"`
	Down   string `toml:"down"`
	Select string `toml:"select"`
	Back   string `toml:"back"`
	Home   string `toml:"home"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Path is the log file (default .apptree/apptree.log). "-" logs to stderr.
	Path string `toml:"path"`

	// Level is debug, info, warn or error (default info).
	Level string `toml:"level"`
}

// SerialConfig configures the serial host.
type SerialConfig struct {
	// Device is the tty to serve the menu on. Empty means stdin/stdout.
	Device string `toml:"device"`
}

// EvdevConfig configures the Linux input device host.
type EvdevConfig struct {
	// Device is the input device path, e.g. /dev/input/event0.
	Device string `toml:"device"`

	// Keys maps action names to evdev key names, e.g. up = ["KEY_UP"].
	// Empty uses the arrow-key defaults.
	Keys map[string][]string `toml:"keys"`

	// Backlog is the number of buffered key presses (default 32).
	Backlog int `toml:"backlog"`
}

// UpdateConfig controls the release check run by the check command.
type UpdateConfig struct {
	// Check enables the check. nil means enabled; offline devices set false.
	Check *bool `toml:"check"`

	// Interval is the minimum time between checks, e.g. "72h" (default 24h).
	Interval string `toml:"interval"`
}

// DefaultUpdateInterval is the minimum time between release checks.
const DefaultUpdateInterval = 24 * time.Hour

// Path returns the settings file path for dir.
func Path(dir string) string {
	return filepath.Join(dir, Dir, FileName)
}

// Load loads configuration from .apptree/config.toml in the given directory.
// Returns nil config (not error) if the file doesn't exist.
func Load(dir string) (*Config, error) {
	cfg, err := LoadFile(Path(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	cfg.dir = dir
	return cfg, nil
}

// LoadFile loads configuration from an explicit path. Unlike Load, a
// missing file is an error.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parsing %s: unknown key %q", path, undecoded[0].String())
	}
	cfg.dir = filepath.Dir(path)
	if filepath.Base(cfg.dir) == Dir {
		cfg.dir = filepath.Dir(cfg.dir)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks values that accessors cannot default away.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.FrameHeight < 0 {
		return fmt.Errorf("frame_height must not be negative")
	}
	if _, err := c.EOL(); err != nil {
		return err
	}
	if _, err := c.Bindings(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if _, err := c.UpdateInterval(); err != nil {
		return err
	}
	return nil
}

// Height returns the frame height (default 19).
func (c *Config) Height() int {
	if c == nil || c.FrameHeight <= 0 {
		return viewport.DefaultHeight
	}
	return c.FrameHeight
}

// EOL returns the line terminator (default CRLF).
func (c *Config) EOL() (string, error) {
	if c == nil {
		return render.CRLF, nil
	}
	switch strings.ToLower(c.LineEnding) {
	case "", "crlf":
		return render.CRLF, nil
	case "lf":
		return render.LF, nil
	}
	return "", fmt.Errorf("line_ending must be crlf or lf, got %q", c.LineEnding)
}

// Bindings returns the default bindings with configured overrides applied.
func (c *Config) Bindings() (*keys.Bindings, error) {
	b := keys.Default()
	if c == nil {
		return b, nil
	}
	overrides := []struct {
		action keys.Action
		value  string
	}{
		{keys.ActionUp, c.Keys.Up},
		{keys.ActionDown, c.Keys.Down},
		{keys.ActionSelect, c.Keys.Select},
		{keys.ActionBack, c.Keys.Back},
		{keys.ActionHome, c.Keys.Home},
	}
	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		code, err := keys.ParseCode(o.value)
		if err != nil {
			return nil, fmt.Errorf("keys.%s: %w", o.action, err)
		}
		b.Set(o.action, code)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// LogPath returns the log file path. An empty result means stderr.
func (c *Config) LogPath() string {
	if c == nil || c.Log.Path == "" {
		dir := ""
		if c != nil {
			dir = c.dir
		}
		return filepath.Join(dir, Dir, DefaultLogFile)
	}
	if c.Log.Path == "-" {
		return ""
	}
	return c.Log.Path
}

// LogLevel returns the normalized log level (default info).
func (c *Config) LogLevel() (string, error) {
	if c == nil || c.Log.Level == "" {
		return "info", nil
	}
	level := strings.ToLower(c.Log.Level)
	switch level {
	case "debug", "info", "warn", "error":
		return level, nil
	}
	return "", fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
}

// MenuPath returns the configured menu file, or "" for the built-in demo.
func (c *Config) MenuPath() string {
	if c == nil {
		return ""
	}
	return c.Menu
}

// SerialDevice returns the configured serial tty, or "".
func (c *Config) SerialDevice() string {
	if c == nil {
		return ""
	}
	return c.Serial.Device
}

// EvdevDevice returns the configured input device, or "".
func (c *Config) EvdevDevice() string {
	if c == nil {
		return ""
	}
	return c.Evdev.Device
}

// EvdevKeys returns the configured action-to-key-name map, or nil for the
// defaults.
func (c *Config) EvdevKeys() map[string][]string {
	if c == nil {
		return nil
	}
	return c.Evdev.Keys
}

// EvdevBacklog returns the configured backlog (0 = package default).
func (c *Config) EvdevBacklog() int {
	if c == nil {
		return 0
	}
	return c.Evdev.Backlog
}

// UpdateCheck reports whether release checks are enabled (default true).
func (c *Config) UpdateCheck() bool {
	if c == nil || c.Update.Check == nil {
		return true
	}
	return *c.Update.Check
}

// UpdateInterval returns the minimum time between release checks.
func (c *Config) UpdateInterval() (time.Duration, error) {
	if c == nil || c.Update.Interval == "" {
		return DefaultUpdateInterval, nil
	}
	d, err := time.ParseDuration(c.Update.Interval)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("update.interval must be a positive duration, got %q", c.Update.Interval)
	}
	return d, nil
}
