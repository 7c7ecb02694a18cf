package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"blcc/internal/config"
	"blcc/pkg/wrapper"
)

var wrapperCmd = &cobra.Command{
	Use:   "wrapper <name> [-- compiler args]",
	Short: "Invoke a compiler through a wrapper without a symlink",
	Long: `wrapper runs one of the compiler wrappers by name, for setups where
installing blcc under the wrapper names is inconvenient. Everything
after -- is the underlying compiler's own command line, with dialect
sources transpiled first and diagnostics mapped back.

Known wrappers: ` + strings.Join(wrapperNames(), ", "),
	Args: cobra.MinimumNArgs(1),
	RunE: runWrapper,
}

func init() {
	rootCmd.AddCommand(wrapperCmd)
	rootCmd.AddCommand(initConfigCmd)
}

func wrapperNames() []string {
	names := make([]string, 0, len(wrapper.Compilers))
	for name := range wrapper.Compilers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func runWrapper(cmd *cobra.Command, args []string) error {
	w, err := wrapper.New(args[0], wrapper.Config{
		SourceExtensions: cfg.SourceExtensions,
		HeaderExtensions: cfg.HeaderExtensions,
		IncludeDirs:      cfg.IncludeDirs,
		Jobs:             cfg.Jobs,
		TabWidth:         cfg.TabWidth,
		DirectiveMarker:  cfg.Marker(),
		Stdout:           cmd.OutOrStdout(),
		Stderr:           cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	code, err := w.Run(cmd.Context(), args[1:])
	if err != nil {
		return err
	}
	if code != 0 {
		// forward the compiler's exit code without an extra error line
		os.Exit(code)
	}
	return nil
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a commented starter config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultConfigPath()
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}
