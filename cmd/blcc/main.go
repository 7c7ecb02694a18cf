package main

import (
	"context"
	"fmt"
	"os"

	"blcc/pkg/wrapper"
)

func main() {
	// Installed under a compiler wrapper name (blg++, blcl, ...), the
	// binary acts as that compiler and takes no blcc command line of its
	// own.
	if _, ok := wrapper.Lookup(os.Args[0]); ok {
		os.Exit(runAsCompiler(context.Background(), os.Args[0], os.Args[1:]))
	}
	Execute()
}

func runAsCompiler(ctx context.Context, invoked string, args []string) int {
	cfg := loadedConfig()
	w, err := wrapper.New(invoked, wrapper.Config{
		SourceExtensions: cfg.SourceExtensions,
		HeaderExtensions: cfg.HeaderExtensions,
		IncludeDirs:      cfg.IncludeDirs,
		Jobs:             cfg.Jobs,
		TabWidth:         cfg.TabWidth,
		DirectiveMarker:  cfg.Marker(),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	code, err := w.Run(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return code
}
