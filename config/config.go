// Package config loads vtio settings from TOML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/BurntSushi/toml"
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/vtio/terminal"
)

// DefaultFileName is looked up under the user config directory
const DefaultFileName = "vtio.toml"

// Config is the root configuration
type Config struct {
	Input  InputConfig  `toml:"input"`
	Output OutputConfig `toml:"output"`
	Line   LineConfig   `toml:"line"`
	Log    LogConfig    `toml:"log"`
}

// InputConfig tunes the key decoder and console modes
type InputConfig struct {
	EscapeTimeout   time.Duration `toml:"escape_timeout"`
	EscapeMaxBytes  int           `toml:"escape_max_bytes"`
	BackspaceMode   bool          `toml:"backspace_mode"`
	RestoreOnSignal bool          `toml:"restore_on_signal"`
	QuitKey         Key           `toml:"quit_key"`
}

// OutputConfig tunes the output writer
type OutputConfig struct {
	BufferSize int `toml:"buffer_size"`
}

// LineConfig tunes the line editor
type LineConfig struct {
	EraseOnExit    bool  `toml:"erase_on_exit"`
	EchoForeground Color `toml:"echo_foreground"`
	EchoBackground Color `toml:"echo_background"`
}

// LogConfig configures the rotating log file
type LogConfig struct {
	File       string `toml:"file"`
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Input: InputConfig{
			EscapeTimeout:   terminal.DefaultEscapeTimeout,
			EscapeMaxBytes:  terminal.DefaultEscapeMaxBytes,
			BackspaceMode:   true,
			RestoreOnSignal: true,
			QuitKey:         Key{terminal.KeyEvent{Key: terminal.KeyCharacter, Rune: 'q'}},
		},
		Output: OutputConfig{
			BufferSize: terminal.DefaultOutputBufferSize,
		},
		Line: LineConfig{
			EchoForeground: Color{terminal.ColorIgnored},
			EchoBackground: Color{terminal.ColorIgnored},
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  5,
			MaxBackups: 3,
		},
	}
}

// DefaultPath returns the per-user config file path, or "" when the user
// config directory is unknown
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || strings.TrimSpace(dir) == "" {
		return ""
	}
	return filepath.Join(dir, "vtio", DefaultFileName)
}

// Load reads path over the defaults
// A missing file yields the defaults; an empty path means DefaultPath
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, cfg)
}

// Parse decodes TOML data over base and validates the result
func Parse(data []byte, base Config) (Config, error) {
	cfg := base
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return base, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return base, fmt.Errorf("parse config: unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c Config) Validate() error {
	var errs []error
	if c.Input.EscapeTimeout <= 0 || c.Input.EscapeTimeout > time.Second {
		errs = append(errs, fmt.Errorf("input.escape_timeout %s out of range (0, 1s]", c.Input.EscapeTimeout))
	}
	if c.Input.EscapeMaxBytes < 3 || c.Input.EscapeMaxBytes > 32 {
		errs = append(errs, fmt.Errorf("input.escape_max_bytes %d out of range [3, 32]", c.Input.EscapeMaxBytes))
	}
	if c.Output.BufferSize < 64 {
		errs = append(errs, fmt.Errorf("output.buffer_size %d below 64", c.Output.BufferSize))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: want json or text", c.Log.Format))
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q: want debug, info, warn or error", c.Log.Level))
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 {
		errs = append(errs, errors.New("log.max_size_mb and log.max_backups must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// TerminalOptions maps the configuration onto terminal options
func (c Config) TerminalOptions() terminal.Options {
	opts := terminal.DefaultOptions()
	opts.EscapeTimeout = c.Input.EscapeTimeout
	opts.EscapeMaxBytes = c.Input.EscapeMaxBytes
	opts.BackspaceMode = c.Input.BackspaceMode
	opts.RestoreOnSignal = c.Input.RestoreOnSignal
	opts.OutputBufferSize = c.Output.BufferSize
	opts.EchoForeground = c.Line.EchoForeground.Color
	opts.EchoBackground = c.Line.EchoBackground.Color
	return opts
}

// Color is a terminal color as written in config files:
// "ignore", "#rrggbb", or a color name such as "darkorange"
type Color struct {
	terminal.Color
}

// ParseColor resolves a config color string
func ParseColor(s string) (terminal.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "" || s == "ignore" || s == "ignored" || s == "default":
		return terminal.ColorIgnored, nil
	case strings.HasPrefix(s, "#"):
		c, err := colorful.Hex(s)
		if err != nil {
			return terminal.ColorIgnored, fmt.Errorf("color %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		return terminal.RGB(r, g, b), nil
	}
	tc := tcell.GetColor(s)
	if tc == tcell.ColorDefault || !tc.Valid() {
		return terminal.ColorIgnored, fmt.Errorf("color %q: unknown name", s)
	}
	r, g, b := tc.RGB()
	return terminal.RGB(uint8(r), uint8(g), uint8(b)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	c.Color = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (c Color) MarshalText() ([]byte, error) {
	if c.Ignored() {
		return []byte("ignore"), nil
	}
	return []byte(c.Color.String()), nil
}

// Key is a key binding as written in config files: a single character
// ("q"), a key name or alias ("escape", "f10", "pgdn"), optionally with
// "ctrl+", "alt+" or "shift+" prefixes ("ctrl+x", "alt+up")
type Key struct {
	terminal.KeyEvent
}

// ParseKey resolves a config key binding
func ParseKey(s string) (terminal.KeyEvent, error) {
	var ev terminal.KeyEvent
	rest := strings.TrimSpace(s)
	for {
		lower := strings.ToLower(rest)
		switch {
		case len(rest) > 5 && strings.HasPrefix(lower, "ctrl+"):
			ev.Control = true
			rest = rest[5:]
			continue
		case len(rest) > 4 && strings.HasPrefix(lower, "alt+"):
			ev.Alt = true
			rest = rest[4:]
			continue
		case len(rest) > 6 && strings.HasPrefix(lower, "shift+"):
			ev.Shift = true
			rest = rest[6:]
			continue
		}
		break
	}

	if r := []rune(rest); len(r) == 1 {
		ev.Key = terminal.KeyCharacter
		ev.Rune = r[0]
		if ev.Control {
			ev.Rune = unicode.ToLower(ev.Rune)
		}
		return ev, nil
	}
	k, ok := terminal.KeyByName(rest)
	if !ok || k == terminal.KeyNoName || k == terminal.KeyCharacter {
		return terminal.KeyEvent{}, fmt.Errorf("key %q: unknown name", s)
	}
	ev.Key = k
	return ev, nil
}

// Matches reports whether ev is the bound key
// The rune is compared only for character keys; named keys carry their
// control byte, which bindings do not spell out
func (k Key) Matches(ev terminal.KeyEvent) bool {
	if ev.Key != k.Key || ev.Control != k.Control || ev.Alt != k.Alt || ev.Shift != k.Shift {
		return false
	}
	return k.Key != terminal.KeyCharacter || ev.Rune == k.Rune
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	k.KeyEvent = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (k Key) MarshalText() ([]byte, error) {
	var b strings.Builder
	if k.Control {
		b.WriteString("ctrl+")
	}
	if k.Alt {
		b.WriteString("alt+")
	}
	if k.Shift {
		b.WriteString("shift+")
	}
	if k.Key == terminal.KeyCharacter {
		b.WriteRune(k.Rune)
	} else {
		b.WriteString(terminal.KeyName(k.Key))
	}
	return []byte(b.String()), nil
}
