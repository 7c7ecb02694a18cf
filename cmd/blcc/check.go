package main

import (
	"fmt"
	"os"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"blcc/pkg/transpiler"
)

var checkCmd = &cobra.Command{
	Use:   "check [files]",
	Short: "Verify files transpile cleanly and the output is stable",
	Long: `check transpiles each file and then transpiles the result again. The
second pass must reproduce the first byte for byte; output that is
already standard C++ must come out unchanged. Any instability is shown
as a diff.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	tcfg := transpiler.Config{TabWidth: cfg.TabWidth, DirectiveMarker: cfg.Marker()}
	failed := 0
	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		first, err := transpiler.Transpile(path, string(src), tcfg)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			failed++
			continue
		}
		second, err := transpiler.Transpile(path, first.Output, tcfg)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: output does not re-transpile: %v\n", path, err)
			failed++
			continue
		}
		if second.Output != first.Output {
			dmp := diffmatchpatch.New()
			diffs := dmp.DiffMain(first.Output, second.Output, false)
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: output is not stable:\n%s\n", path, dmp.DiffPrettyText(diffs))
			failed++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}
