// Package config loads leapfmt configuration from defaults, a
// .leapfmt.yaml file, LEAPFMT_* environment variables and command-line
// flags, in increasing order of precedence.
package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/leapstack-labs/leapfmt/pkg/style"
)

// Config holds all CLI configuration options.
type Config struct {
	Style        string        `koanf:"style"`
	Jobs         int           `koanf:"jobs"`
	Verbose      bool          `koanf:"verbose"`
	OutputFormat string        `koanf:"output"`
	CachePath    string        `koanf:"cache_path"`
	Cache        bool          `koanf:"cache"`
	Exclude      []string      `koanf:"exclude"`
	Serve        ServeConfig   `koanf:"serve"`
	Watch        WatchConfig   `koanf:"watch"`
	Profiles     []ProfileSpec `koanf:"profiles"`

	// ConfigFile is the file the configuration was read from, if any.
	ConfigFile string `koanf:"-"`
	// ProjectRoot is the directory holding ConfigFile, or the working
	// directory.
	ProjectRoot string `koanf:"-"`
}

// ServeConfig configures the HTTP server.
type ServeConfig struct {
	Addr string `koanf:"addr"`
}

// WatchConfig configures format --watch.
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce"`
}

// ProfileSpec declares a custom style profile in the config file. Unset
// fields inherit from the Base profile.
type ProfileSpec struct {
	Name             string `koanf:"name"`
	Base             string `koanf:"base"`
	IndentMultiplier int    `koanf:"indent_multiplier"`
	MaxWidth         int    `koanf:"max_width"`
	FormatJavadoc    *bool  `koanf:"format_javadoc"`
	ReorderModifiers *bool  `koanf:"reorder_modifiers"`
	Description      string `koanf:"description"`
}

// Default configuration values.
const (
	ConfigFileName  = ".leapfmt.yaml"
	DefaultCacheDir = ".leapfmt"
	DefaultCacheDB  = "cache.db"
	DefaultAddr     = "127.0.0.1:8787"
	DefaultDebounce = 100 * time.Millisecond
	DefaultOutput   = "auto" // Auto-detect: TTY=text, non-TTY=markdown
)

// outputModes are the accepted values of output.
var outputModes = []string{"auto", "text", "markdown", "json"}

// Validate checks values the loader cannot type-check.
func (c *Config) Validate() error {
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	if !slices.Contains(outputModes, c.OutputFormat) {
		return fmt.Errorf("unknown output format %q (want one of %v)", c.OutputFormat, outputModes)
	}
	if _, err := style.Lookup(c.Style); err != nil {
		return err
	}
	return nil
}

// StyleOptions resolves the configured style profile.
func (c *Config) StyleOptions() (style.Options, error) {
	return style.Lookup(c.Style)
}

// RegisterProfiles registers the profiles declared in the config file.
func (c *Config) RegisterProfiles() error {
	for _, p := range c.Profiles {
		if p.Name == "" {
			return fmt.Errorf("profile without a name")
		}
		base, err := style.Lookup(p.Base)
		if err != nil {
			return fmt.Errorf("profile %q: %w", p.Name, err)
		}
		b := style.NewProfile(style.Name(p.Name)).
			IndentMultiplier(base.IndentMultiplier).
			MaxWidth(base.MaxWidth).
			FormatJavadoc(base.FormatJavadoc).
			ReorderModifiers(base.ReorderModifiers).
			Describe(base.Description)
		if p.IndentMultiplier != 0 {
			b.IndentMultiplier(p.IndentMultiplier)
		}
		if p.MaxWidth != 0 {
			b.MaxWidth(p.MaxWidth)
		}
		if p.FormatJavadoc != nil {
			b.FormatJavadoc(*p.FormatJavadoc)
		}
		if p.ReorderModifiers != nil {
			b.ReorderModifiers(*p.ReorderModifiers)
		}
		if p.Description != "" {
			b.Describe(p.Description)
		}
		opts := b.Build()
		if err := opts.Validate(); err != nil {
			return err
		}
		style.Register(opts)
	}
	return nil
}
