// Package config holds engine settings and loads them from TOML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Spread mode names accepted in the layout section.
const (
	SpreadOneUp    = "one-up"
	SpreadTwoUpOdd = "two-up-odd"
)

// Config is the engine configuration. The zero value is not usable; start
// from Default.
type Config struct {
	// HitTolerance is the char hit-test tolerance in points.
	HitTolerance float64 `toml:"hit_tolerance"`
	// StrictContracts turns caller-contract violations into panics.
	StrictContracts bool `toml:"strict_contracts"`
	// LineSeparator overrides the separator inserted between pages in
	// extracted text. Empty means the platform separator.
	LineSeparator string `toml:"line_separator"`
	LogLevel      string `toml:"log_level"`

	Layout    LayoutConfig    `toml:"layout"`
	Scripting ScriptingConfig `toml:"scripting"`
	Thumbnail ThumbnailConfig `toml:"thumbnail"`
	Forms     FormsConfig     `toml:"forms"`
}

type LayoutConfig struct {
	Spread   string `toml:"spread"`
	Rotation int    `toml:"rotation"`
}

type ScriptingConfig struct {
	Enabled bool     `toml:"enabled"`
	Timeout Duration `toml:"timeout"`
}

type ThumbnailConfig struct {
	MaxBytes int `toml:"max_bytes"`
}

type FormsConfig struct {
	Highlight      bool   `toml:"highlight"`
	HighlightColor string `toml:"highlight_color"`
}

// Duration reads TOML strings such as "250ms".
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HitTolerance: 20,
		LogLevel:     "info",
		Layout:       LayoutConfig{Spread: SpreadOneUp},
		Scripting:    ScriptingConfig{Enabled: true, Timeout: Duration{500 * time.Millisecond}},
		Thumbnail:    ThumbnailConfig{MaxBytes: 255 * 1024},
		Forms:        FormsConfig{Highlight: true, HighlightColor: "#0000ff22"},
	}
}

var (
	ErrInvalidSpread    = errors.New("config: invalid layout spread")
	ErrInvalidRotation  = errors.New("config: rotation must be a multiple of 90")
	ErrInvalidTolerance = errors.New("config: hit tolerance must be non-negative")
)

// Validate checks field ranges.
func (c Config) Validate() error {
	switch c.Layout.Spread {
	case SpreadOneUp, SpreadTwoUpOdd:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSpread, c.Layout.Spread)
	}
	if c.Layout.Rotation%90 != 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRotation, c.Layout.Rotation)
	}
	if c.HitTolerance < 0 {
		return ErrInvalidTolerance
	}
	if c.Thumbnail.MaxBytes <= 0 {
		return fmt.Errorf("config: thumbnail max_bytes must be positive, got %d", c.Thumbnail.MaxBytes)
	}
	return nil
}

// ParseError reports a malformed configuration source.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string { return fmt.Sprintf("config %s: %v", e.Source, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// Load decodes TOML from r over the defaults. Unknown keys are rejected.
func Load(r io.Reader) (Config, error) {
	return load("<reader>", r)
}

// LoadFile reads a TOML file over the defaults.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}
	defer f.Close()
	return load(path, f)
}

func load(source string, r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, &ParseError{Source: source, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, &ParseError{Source: source, Err: err}
	}
	return cfg, nil
}
