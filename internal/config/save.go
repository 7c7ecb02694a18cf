// Package config provides configuration types, defaults, and persistence for blcc.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Save writes a config file, creating parent directories as needed.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// WriteDefault writes a commented starter config. It refuses to overwrite
// an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigTemplate), 0o644)
}

const defaultConfigTemplate = `# blcc configuration

# Dialect file extensions.
source_extensions:
  - .blcpp
  - .blcc
  - .blc
header_extensions:
  - .blh

# Extra directories searched for dialect headers, besides -I flags.
include_dirs: []

# Columns one tab occupies when measuring indentation.
tab_width: 4

# Character that starts a preprocessor directive line.
directive_marker: "#"

# Parallel transpilation jobs. 0 picks a sensible default.
jobs: 0

# How long to coalesce file events before a watch-mode rebuild.
watch_debounce: 200ms
`
