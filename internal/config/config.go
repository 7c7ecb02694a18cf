// Package config provides configuration types and defaults for blcc.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds all configuration options for blcc.
type Config struct {
	// SourceExtensions are the dialect translation units.
	SourceExtensions []string `mapstructure:"source_extensions" yaml:"source_extensions"`
	// HeaderExtensions are the dialect headers resolved through includes.
	HeaderExtensions []string `mapstructure:"header_extensions" yaml:"header_extensions"`
	// IncludeDirs are extra directories searched for dialect headers, in
	// addition to -I directories taken from the compiler command line.
	IncludeDirs []string `mapstructure:"include_dirs" yaml:"include_dirs"`

	// TabWidth is the column width of one tab when measuring indentation.
	TabWidth int `mapstructure:"tab_width" yaml:"tab_width"`
	// DirectiveMarker starts a preprocessor line. One character.
	DirectiveMarker string `mapstructure:"directive_marker" yaml:"directive_marker"`

	// Jobs bounds parallel transpilation. Zero means one per CPU is fine.
	Jobs int `mapstructure:"jobs" yaml:"jobs"`

	// WatchDebounce coalesces file events before a watch-mode rebuild.
	WatchDebounce time.Duration `mapstructure:"watch_debounce" yaml:"watch_debounce"`

	// LogFile receives debug logs when --debug or BLCC_DEBUG is set.
	LogFile string `mapstructure:"log_file" yaml:"log_file"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		SourceExtensions: []string{".blcpp", ".blcc", ".blc"},
		HeaderExtensions: []string{".blh"},
		TabWidth:         4,
		DirectiveMarker:  "#",
		WatchDebounce:    200 * time.Millisecond,
		LogFile:          DefaultLogFilePath(),
	}
}

// Marker returns the directive marker as a rune, falling back to '#' when
// the configured value is empty or longer than one character.
func (c Config) Marker() rune {
	r := []rune(c.DirectiveMarker)
	if len(r) != 1 {
		return '#'
	}
	return r[0]
}

// Validate rejects option values the engine cannot work with.
func (c Config) Validate() error {
	if c.TabWidth < 1 {
		return fmt.Errorf("tab_width must be at least 1, got %d", c.TabWidth)
	}
	if len([]rune(c.DirectiveMarker)) != 1 {
		return fmt.Errorf("directive_marker must be a single character, got %q", c.DirectiveMarker)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	if len(c.SourceExtensions) == 0 {
		return fmt.Errorf("source_extensions must not be empty")
	}
	return nil
}

// DefaultConfigPath is where blcc looks for its user config file.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "blcc", "config.yaml")
}

// DefaultLogFilePath is where debug logs land unless overridden.
func DefaultLogFilePath() string {
	return filepath.Join(os.TempDir(), "blcc-debug.log")
}
