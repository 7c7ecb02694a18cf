package headers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"blcc/pkg/transpiler"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestResolver(t *testing.T, cfg Config) *Resolver {
	t.Helper()
	if cfg.ArtifactDir == "" {
		cfg.ArtifactDir = t.TempDir()
	}
	return New(cfg)
}

func TestRunTranspilesEntry(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.blcpp", "int main():\n    return 0\n")

	r := newTestResolver(t, Config{})
	plan, err := r.Run(context.Background(), []string{entry})
	require.NoError(t, err)
	require.Len(t, plan.Entries, 1)

	n := plan.Entries[0]
	require.True(t, n.Dialect)
	require.Equal(t, ".cpp", filepath.Ext(n.Artifact))

	out, err := os.ReadFile(n.Artifact)
	require.NoError(t, err)
	require.Equal(t, "int main(){\n    return 0;\n}\n", string(out))
	require.Equal(t, []int{1, 2, 2}, n.Map.Lines)
}

func TestRunResolvesDialectHeaders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "util.blh", "int helper(int x):\n    return x * 2\n")
	entry := writeFile(t, dir, "main.blcpp", "#include \"util.blh\"\n#include <vector>\nint main():\n    return helper(21)\n")

	r := newTestResolver(t, Config{})
	plan, err := r.Run(context.Background(), []string{entry})
	require.NoError(t, err)

	main := plan.Entries[0]
	require.Len(t, main.Children, 1)
	header := main.Children[0]
	require.Equal(t, ".h", filepath.Ext(header.Artifact))

	// the header reference is redirected to the artifact, the system
	// include is untouched, and the line count is unchanged
	out, err := os.ReadFile(main.Artifact)
	require.NoError(t, err)
	text := string(out)
	require.Contains(t, text, "#include \""+header.Artifact+"\"")
	require.Contains(t, text, "#include <vector>")
	require.Equal(t, strings.Count("#include \"util.blh\"\n#include <vector>\nint main():\n    return helper(21)\n", "\n"),
		strings.Count(text, "\n")-1) // one extra line for the synthesized closing brace

	hout, err := os.ReadFile(header.Artifact)
	require.NoError(t, err)
	require.Equal(t, "int helper(int x){\n    return x * 2;\n}\n", string(hout))
}

func TestRunTranspilesSharedHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "shared.blh", "int common():\n    return 7\n")
	writeFile(t, dir, "a.blh", "#include \"shared.blh\"\nint a():\n    return common()\n")
	writeFile(t, dir, "b.blh", "#include \"shared.blh\"\nint b():\n    return common()\n")
	entry := writeFile(t, dir, "main.blcpp", "#include \"a.blh\"\n#include \"b.blh\"\nint main():\n    return a() + b()\n")

	r := newTestResolver(t, Config{Jobs: 4})
	plan, err := r.Run(context.Background(), []string{entry})
	require.NoError(t, err)

	main := plan.Entries[0]
	require.Len(t, main.Children, 2)
	shared := main.Children[0].Children[0]
	require.Same(t, shared, main.Children[1].Children[0], "both routes must share one node")

	// exactly one artifact per file: main, a, b, shared
	files, err := os.ReadDir(plan.ArtifactDir)
	require.NoError(t, err)
	require.Len(t, files, 4)
}

func TestRunDetectsIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.blh", "#include \"b.blh\"\nint a = 1\n")
	writeFile(t, dir, "b.blh", "#include \"a.blh\"\nint b = 2\n")
	entry := writeFile(t, dir, "main.blcpp", "#include \"a.blh\"\nint main():\n    return 0\n")

	r := newTestResolver(t, Config{})
	_, err := r.Run(context.Background(), []string{entry})
	require.Error(t, err)

	var terr *transpiler.Error
	require.True(t, errors.As(err, &terr))
	require.Equal(t, transpiler.ErrIncludeCycle, terr.Kind)
	require.Equal(t, 1, terr.Line)
	require.Contains(t, terr.Msg, "a.blh")
	require.Contains(t, terr.Msg, "b.blh")
}

func TestRunSelfIncludeIsACycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "self.blh", "#include \"self.blh\"\nint x = 1\n")
	entry := writeFile(t, dir, "main.blcpp", "#include \"self.blh\"\nint main():\n    return 0\n")

	r := newTestResolver(t, Config{})
	_, err := r.Run(context.Background(), []string{entry})
	var terr *transpiler.Error
	require.True(t, errors.As(err, &terr))
	require.Equal(t, transpiler.ErrIncludeCycle, terr.Kind)
}

func TestRunReportsUnresolvedDialectInclude(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.blcpp", "#include \"missing.blh\"\nint main():\n    return 0\n")

	r := newTestResolver(t, Config{})
	_, err := r.Run(context.Background(), []string{entry})
	require.Error(t, err)

	var terr *transpiler.Error
	require.True(t, errors.As(err, &terr))
	require.Equal(t, transpiler.ErrUnresolvedInclude, terr.Kind)
	require.Equal(t, 1, terr.Line)
}

func TestRunSearchesIncludeDirs(t *testing.T) {
	srcDir := t.TempDir()
	libDir := t.TempDir()
	writeFile(t, libDir, "lib.blh", "int lib():\n    return 1\n")
	entry := writeFile(t, srcDir, "main.blcpp", "#include <lib.blh>\nint main():\n    return lib()\n")

	r := newTestResolver(t, Config{IncludeDirs: []string{libDir}})
	plan, err := r.Run(context.Background(), []string{entry})
	require.NoError(t, err)
	require.Len(t, plan.Entries[0].Children, 1)
}

func TestRunKeepsSameNamedHeadersApart(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "x/util.blh", "int from_x():\n    return 1\n")
	writeFile(t, dir, "y/util.blh", "int from_y():\n    return 2\n")
	entry := writeFile(t, dir, "main.blcpp",
		"#include \"x/util.blh\"\n#include \"y/util.blh\"\nint main():\n    return from_x() + from_y()\n")

	r := newTestResolver(t, Config{})
	plan, err := r.Run(context.Background(), []string{entry})
	require.NoError(t, err)

	main := plan.Entries[0]
	require.Len(t, main.Children, 2)
	require.NotEqual(t, main.Children[0].Artifact, main.Children[1].Artifact)
}

func TestRunPropagatesTranspileError(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.blh", "if x:\ny()\n")
	entry := writeFile(t, dir, "main.blcpp", "#include \"bad.blh\"\nint main():\n    return 0\n")

	r := newTestResolver(t, Config{})
	plan, err := r.Run(context.Background(), []string{entry})
	require.Error(t, err)
	require.Nil(t, plan)

	var terr *transpiler.Error
	require.True(t, errors.As(err, &terr))
	require.Equal(t, transpiler.ErrExpectedIndent, terr.Kind)
	require.Equal(t, bad, terr.File, "position must point into the original header")
}

func TestPlanLookupRemapsArtifactPositions(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.blcpp", "int main():\n    if x:\n        f()\n    return 0\n")

	r := newTestResolver(t, Config{})
	plan, err := r.Run(context.Background(), []string{entry})
	require.NoError(t, err)

	n := plan.Entries[0]
	file, line := plan.Lookup(n.Artifact, 3)
	require.Equal(t, entry, file)
	require.Equal(t, 3, line)

	// unknown files pass through for system-header diagnostics
	file, line = plan.Lookup("/usr/include/vector", 120)
	require.Equal(t, "/usr/include/vector", file)
	require.Equal(t, 120, line)
}

func TestDetectGuard(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want GuardKind
	}{
		{"PragmaOnce", "#pragma once\nint x\n", GuardPragmaOnce},
		{"PragmaOnceAfterComment", "// header\n#pragma once\nint x\n", GuardPragmaOnce},
		{"IfndefPair", "#ifndef UTIL_H\n#define UTIL_H\nint x\n#endif\n", GuardIfndef},
		{"IfndefMismatch", "#ifndef UTIL_H\n#define OTHER_H\nint x\n", GuardNone},
		{"None", "int x\n", GuardNone},
		{"Empty", "", GuardNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DetectGuard(tt.src))
		})
	}
}
