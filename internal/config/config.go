// Package config provides configuration file parsing for stocktake.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Dir returns the stocktake config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/stocktake if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "stocktake"), nil
}

// Path returns the config file location, {Dir}/config.toml.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Scan holds the [scan] table: defaults for the scan pipeline. Flags
// override every field here.
type Scan struct {
	AllPackages         bool   `toml:"all_packages"`
	Timeout             string `toml:"timeout"`
	Jobs                int    `toml:"jobs"`
	UnsafeIntrospection bool   `toml:"unsafe_introspection"`

	// TimeoutValue is Timeout parsed into a duration, filled in by Load.
	// Zero when the file does not set one.
	TimeoutValue time.Duration `toml:"-"`
}

// Output holds the [output] table.
type Output struct {
	// Color is one of "auto", "always", "never". Empty means auto.
	Color string `toml:"color"`
}

// Config is the parsed configuration file.
type Config struct {
	Scan Scan `toml:"scan"`

	// Sources carries per-source enable/disable overrides, keyed by
	// source id.
	Sources map[string]bool `toml:"sources"`

	// Presets maps user preset names to source id lists. User presets
	// shadow builtin presets of the same name.
	Presets map[string][]string `toml:"presets"`

	Output Output `toml:"output"`
}

// Load reads the config file at path. A missing file is not an error:
// every field keeps its zero value. A file that exists but fails to
// parse or validate is fatal; a silently ignored config would let typos
// go unnoticed for months.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Scan.Timeout != "" {
		d, err := time.ParseDuration(c.Scan.Timeout)
		if err != nil {
			return fmt.Errorf("scan.timeout %q is not a duration", c.Scan.Timeout)
		}
		if d <= 0 {
			return fmt.Errorf("scan.timeout %q must be positive", c.Scan.Timeout)
		}
		c.Scan.TimeoutValue = d
	}

	if c.Scan.Jobs < 0 {
		return fmt.Errorf("scan.jobs must not be negative, got %d", c.Scan.Jobs)
	}

	switch c.Output.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("output.color %q is not one of auto, always, never", c.Output.Color)
	}

	return nil
}

// CheckSources verifies every source id mentioned in [sources] and
// [presets] against the known catalog ids. Unknown ids in the file are
// fatal, exactly like unknown ids on the command line.
func (c *Config) CheckSources(known []string) error {
	valid := make(map[string]bool, len(known))
	for _, id := range known {
		valid[id] = true
	}

	for id := range c.Sources {
		if !valid[id] {
			return fmt.Errorf("unknown source %q in [sources]", id)
		}
	}
	for name, sources := range c.Presets {
		for _, id := range sources {
			if !valid[id] {
				return fmt.Errorf("preset %q: unknown source %q", name, id)
			}
		}
	}
	return nil
}
