package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"blcc/internal/log"
	"blcc/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [files]",
	Short: "Rebuild whenever a dialect file changes",
	Long: `watch builds the given files, then keeps watching their directories and
the configured include directories. Edits trigger a rebuild after a
short debounce; a failed rebuild is reported and watching continues.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	resolver := newResolver()

	build := func() {
		plan, err := resolver.Run(cmd.Context(), args)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			log.ErrorErr(log.CatWatch, "rebuild failed", err)
			return
		}
		for _, n := range plan.Entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", relPath(n.Path), n.Artifact)
		}
	}
	build()

	exts := append(append([]string{}, cfg.SourceExtensions...), cfg.HeaderExtensions...)
	w, err := watch.New(cfg.WatchDebounce, exts)
	if err != nil {
		return err
	}
	defer w.Close()

	seen := map[string]bool{}
	for _, f := range args {
		dir := filepath.Dir(f)
		if !seen[dir] {
			seen[dir] = true
			if err := w.Add(dir); err != nil {
				return err
			}
		}
	}
	for _, dir := range cfg.IncludeDirs {
		if !seen[dir] {
			seen[dir] = true
			if err := w.Add(dir); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "cannot watch %s: %v\n", dir, err)
			}
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), "watching for changes...")
	err = w.Run(cmd.Context(), func(changed []string) {
		log.Info(log.CatWatch, "rebuilding", "changed", len(changed))
		fmt.Fprintf(cmd.OutOrStdout(), "%d file(s) changed, rebuilding\n", len(changed))
		build()
	})
	if err != nil && cmd.Context().Err() != nil {
		return nil // clean shutdown
	}
	return err
}
