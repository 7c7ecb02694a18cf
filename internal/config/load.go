package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// localConfigName is checked in the working directory before the
// per-user config path.
const localConfigName = ".blcc.yaml"

// Load reads configuration from the given file, falling back to the
// default path, built-in defaults, and BLCC_* environment variables. A
// missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	v := viper.New()
	defaults := Defaults()
	v.SetDefault("source_extensions", defaults.SourceExtensions)
	v.SetDefault("header_extensions", defaults.HeaderExtensions)
	v.SetDefault("include_dirs", defaults.IncludeDirs)
	v.SetDefault("tab_width", defaults.TabWidth)
	v.SetDefault("directive_marker", defaults.DirectiveMarker)
	v.SetDefault("jobs", defaults.Jobs)
	v.SetDefault("watch_debounce", defaults.WatchDebounce)
	v.SetDefault("log_file", defaults.LogFile)

	v.SetEnvPrefix("BLCC")
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		// a project-local config wins over the per-user one
		if _, err := os.Stat(localConfigName); err == nil {
			path = localConfigName
		} else {
			path = DefaultConfigPath()
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			// a missing default-path config is fine; anything else is not
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
