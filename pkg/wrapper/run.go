package wrapper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"blcc/internal/log"
	"blcc/pkg/headers"
)

// Compiler is one underlying compiler a wrapper name maps to.
type Compiler struct {
	Exe   string
	Style DiagStyle
}

// Compilers maps each wrapper command name to the real compiler it fronts.
// Installing the binary under one of these names (or a symlink) selects
// the target; everything else about the invocation is the compiler's own
// command line.
var Compilers = map[string]Compiler{
	"blg++":      {Exe: "g++", Style: DiagGNU},
	"blgcc":      {Exe: "gcc", Style: DiagGNU},
	"blclang++":  {Exe: "clang++", Style: DiagGNU},
	"blclang":    {Exe: "clang", Style: DiagGNU},
	"blem++":     {Exe: "em++", Style: DiagGNU},
	"blemcc":     {Exe: "emcc", Style: DiagGNU},
	"blcl":       {Exe: "cl", Style: DiagMSVC},
	"blclang-cl": {Exe: "clang-cl", Style: DiagMSVC},
}

// Lookup resolves an invoked program name to its compiler, tolerating a
// leading path and a Windows .exe suffix.
func Lookup(invoked string) (Compiler, bool) {
	name := strings.TrimSuffix(filepath.Base(invoked), ".exe")
	c, ok := Compilers[name]
	return c, ok
}

// Config carries the wrapper's transpilation settings.
type Config struct {
	SourceExtensions []string
	HeaderExtensions []string
	IncludeDirs      []string
	Jobs             int
	TabWidth         int
	DirectiveMarker  rune

	Stdout io.Writer
	Stderr io.Writer
}

// Wrapper transpiles the dialect sources on a compiler command line and
// forwards everything to the real compiler, patching its diagnostics back
// to original positions.
type Wrapper struct {
	compiler Compiler
	cfg      Config
}

func New(invoked string, cfg Config) (*Wrapper, error) {
	c, ok := Lookup(invoked)
	if !ok {
		return nil, fmt.Errorf("unknown compiler wrapper %q", invoked)
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	return &Wrapper{compiler: c, cfg: cfg}, nil
}

// Run transpiles, invokes the compiler, and returns its exit code. The
// returned error covers wrapper failures only; a compilation failure is a
// nonzero exit code, not an error.
func (w *Wrapper) Run(ctx context.Context, args []string) (int, error) {
	args, err := ExpandResponseFiles(args)
	if err != nil {
		return 1, err
	}

	exts := append(append([]string{}, w.cfg.SourceExtensions...), w.cfg.HeaderExtensions...)
	srcIdx := dialectSources(args, w.compiler.Style, exts)
	if len(srcIdx) == 0 {
		// nothing to transpile, hand straight through
		return w.exec(ctx, args, nil)
	}

	includeDirs := append(append([]string{}, w.cfg.IncludeDirs...),
		ExtractIncludeDirs(args, w.compiler.Style)...)

	resolver := headers.New(headers.Config{
		SourceExtensions: w.cfg.SourceExtensions,
		HeaderExtensions: w.cfg.HeaderExtensions,
		IncludeDirs:      includeDirs,
		Jobs:             w.cfg.Jobs,
		TabWidth:         w.cfg.TabWidth,
		DirectiveMarker:  w.cfg.DirectiveMarker,
	})

	entries := make([]string, len(srcIdx))
	for i, idx := range srcIdx {
		entries[i] = args[idx]
	}
	log.Info(log.CatWrapper, "transpiling sources", "count", len(entries), "compiler", w.compiler.Exe)

	plan, err := resolver.Run(ctx, entries)
	if err != nil {
		return 1, err
	}
	defer func() {
		if rmErr := os.RemoveAll(plan.ArtifactDir); rmErr != nil {
			log.Warn(log.CatWrapper, "artifact cleanup failed", "dir", plan.ArtifactDir, "error", rmErr)
		}
	}()

	patched := make([]string, len(args))
	copy(patched, args)
	for i, idx := range srcIdx {
		patched[idx] = plan.Entries[i].Artifact
	}
	return w.exec(ctx, patched, plan)
}

// exec runs the real compiler. Output is captured so diagnostics can be
// remapped; MSVC prints them on stdout, the GNU family on stderr, so both
// streams go through the patcher.
func (w *Wrapper) exec(ctx context.Context, args []string, plan *headers.Plan) (int, error) {
	cmd := exec.CommandContext(ctx, w.compiler.Exe, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Stdin = os.Stdin

	log.Debug(log.CatWrapper, "exec", "cmd", w.compiler.Exe, "args", strings.Join(args, " "))
	runErr := cmd.Run()

	outText, errText := stdout.String(), stderr.String()
	if plan != nil {
		outText = PatchDiagnostics(outText, w.compiler.Style, plan.Lookup)
		errText = PatchDiagnostics(errText, w.compiler.Style, plan.Lookup)
	}
	if _, err := io.WriteString(w.cfg.Stdout, outText); err != nil {
		return 1, err
	}
	if _, err := io.WriteString(w.cfg.Stderr, errText); err != nil {
		return 1, err
	}

	if runErr == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 1, fmt.Errorf("run %s: %w", w.compiler.Exe, runErr)
}
