package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"blcc/internal/config"
	"blcc/internal/log"
	"blcc/pkg/headers"
)

var (
	version = "dev"

	cfgFile string
	debug   bool
	outDir  string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "blcc [files]",
	Short:   "Transpile indentation-structured C++ to standard C++",
	Long: `blcc converts the braceless C++ dialect to standard C++: blocks are
opened with a trailing colon and closed by dedenting, statement
terminators and control-structure parentheses are synthesized, and
included dialect headers are resolved and transpiled once each.`,
	Version: version,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runBuild,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/blcc/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"write debug logs to the log file")
	rootCmd.PersistentFlags().Int("tab-width", 0,
		"columns per tab when measuring indentation")
	rootCmd.PersistentFlags().Int("jobs", 0,
		"parallel transpilation jobs")
	rootCmd.PersistentFlags().StringSliceP("include-dir", "I", nil,
		"directory to search for dialect headers")
	rootCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "",
		"artifact directory (default: a fresh temp directory)")

	_ = viper.BindPFlag("tab_width", rootCmd.PersistentFlags().Lookup("tab-width"))
	_ = viper.BindPFlag("jobs", rootCmd.PersistentFlags().Lookup("jobs"))
	_ = viper.BindPFlag("include_dirs", rootCmd.PersistentFlags().Lookup("include-dir"))
}

func initConfig() {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if v := viper.GetInt("tab_width"); v > 0 {
		loaded.TabWidth = v
	}
	if v := viper.GetInt("jobs"); v > 0 {
		loaded.Jobs = v
	}
	if v := viper.GetStringSlice("include_dirs"); len(v) > 0 {
		loaded.IncludeDirs = append(loaded.IncludeDirs, v...)
	}
	cfg = loaded

	if debug || os.Getenv("BLCC_DEBUG") != "" {
		if cleanup, err := log.Init(cfg.LogFile); err == nil {
			cobra.OnFinalize(cleanup)
		}
	} else {
		log.SetEnabled(false)
	}
}

// loadedConfig is for the wrapper entry path, which bypasses cobra.
func loadedConfig() config.Config {
	loaded, err := config.Load(os.Getenv("BLCC_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		loaded = config.Defaults()
	}
	if os.Getenv("BLCC_DEBUG") != "" {
		_, _ = log.Init(loaded.LogFile)
	}
	return loaded
}

func newResolver() *headers.Resolver {
	return headers.New(headers.Config{
		SourceExtensions: cfg.SourceExtensions,
		HeaderExtensions: cfg.HeaderExtensions,
		IncludeDirs:      cfg.IncludeDirs,
		ArtifactDir:      outDir,
		Jobs:             cfg.Jobs,
		TabWidth:         cfg.TabWidth,
		DirectiveMarker:  cfg.Marker(),
	})
}

func runBuild(cmd *cobra.Command, args []string) error {
	plan, err := newResolver().Run(cmd.Context(), args)
	if err != nil {
		return err
	}
	for _, n := range plan.Entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", relPath(n.Path), n.Artifact)
	}
	log.Info(log.CatHeaders, "build complete", "entries", len(plan.Entries), "dir", plan.ArtifactDir)
	return nil
}

func relPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil {
		return path
	}
	return rel
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
