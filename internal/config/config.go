// Package config loads nsf2wav defaults from a YAML file and the
// environment. Command-line flags override both.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/binaryphile/nsf2wav/internal/convert"
	"github.com/binaryphile/nsf2wav/internal/nsf"
)

// FileName is the config file looked up in the user config directory.
const FileName = "config.yaml"

// Config holds the settings a user may want to fix once.
type Config struct {
	// Engine is the renderer command started for each conversion.
	Engine     string   `yaml:"engine"`
	EngineArgs []string `yaml:"engine_args"`

	Channels   int     `yaml:"channels"`
	SampleRate float64 `yaml:"samplerate"`
	LengthMS   int32   `yaml:"length_ms"`
	FadeMS     int32   `yaml:"fade_ms"`

	// ChannelWidth is the number of mask/mute slots.
	ChannelWidth int `yaml:"channel_width"`

	Tag      bool   `yaml:"tag"`
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine:       "nsfplay-render",
		Channels:     1,
		SampleRate:   nsf.DefaultRate,
		LengthMS:     nsf.DefaultPlayTimeMS,
		FadeMS:       nsf.DefaultFadeTimeMS,
		ChannelWidth: nsf.ChannelSlots,
		LogLevel:     "info",
	}
}

// Parse decodes YAML over the defaults. Unknown keys are an error.
// This is a pure function: YAML bytes → Config.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// DefaultPath is $XDG_CONFIG_HOME/nsf2wav/config.yaml, falling back to
// ~/.config/nsf2wav/config.yaml. Empty if neither base is known.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "nsf2wav", FileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "nsf2wav", FileName)
}

// Load reads the config file at path, or the default location when path
// is empty. A missing default file yields the defaults; a missing
// explicit file is an error. Environment overrides are applied last.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if cfg, err = Parse(data); err != nil {
				return Config{}, fmt.Errorf("%s: %w", path, err)
			}
		case explicit || !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from NSF2WAV_ENGINE, NSF2WAV_SAMPLERATE and
// NSF2WAV_LOG_LEVEL.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("NSF2WAV_ENGINE"); v != "" {
		if fields := strings.Fields(v); len(fields) > 0 {
			c.Engine = fields[0]
			c.EngineArgs = fields[1:]
		}
	}
	if v := getenv("NSF2WAV_SAMPLERATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("NSF2WAV_SAMPLERATE: %w", err)
		}
		c.SampleRate = rate
	}
	if v := getenv("NSF2WAV_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks the configuration and returns every problem found.
func (c Config) Validate() []error {
	var errs []error

	if c.Engine == "" {
		errs = append(errs, errors.New("missing required field: engine"))
	}
	if c.Channels != 1 && c.Channels != 2 {
		errs = append(errs, fmt.Errorf("channels must be 1 or 2, got %d", c.Channels))
	}
	switch {
	case math.IsNaN(c.SampleRate) || c.SampleRate < 1:
		errs = append(errs, fmt.Errorf("samplerate must be at least 1 Hz, got %g", c.SampleRate))
	case c.SampleRate > convert.MaxSampleRate(c.Channels):
		errs = append(errs, fmt.Errorf("samplerate too large for %d channels: %g", c.Channels, c.SampleRate))
	}
	if c.LengthMS < 0 {
		errs = append(errs, fmt.Errorf("length_ms must not be negative, got %d", c.LengthMS))
	}
	if c.FadeMS < 0 {
		errs = append(errs, fmt.Errorf("fade_ms must not be negative, got %d", c.FadeMS))
	}
	if c.ChannelWidth < 1 || c.ChannelWidth > 64 {
		errs = append(errs, fmt.Errorf("channel_width must be 1..64, got %d", c.ChannelWidth))
	}
	switch strings.ToLower(c.LogLevel) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}

	return errs
}
