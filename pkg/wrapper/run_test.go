package wrapper

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func stubCompiler(t *testing.T, name, exe string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub compilers rely on POSIX utilities")
	}
	Compilers[name] = Compiler{Exe: exe, Style: DiagGNU}
	t.Cleanup(func() { delete(Compilers, name) })
}

func TestNewUnknownWrapperName(t *testing.T) {
	_, err := New("g++", Config{})
	require.Error(t, err)
}

func TestRunForwardsExitCode(t *testing.T) {
	stubCompiler(t, "bltrue", "true")
	stubCompiler(t, "blfalse", "false")

	w, err := New("bltrue", Config{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
	require.NoError(t, err)
	code, err := w.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 0, code)

	w, err = New("blfalse", Config{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
	require.NoError(t, err)
	code, err = w.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 1, code)
}

func TestRunMissingCompilerBinary(t *testing.T) {
	stubCompiler(t, "blnone", "definitely-not-a-real-compiler")

	w, err := New("blnone", Config{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
	require.NoError(t, err)
	_, err = w.Run(context.Background(), nil)
	require.Error(t, err)
}

// Using cat as the "compiler" makes it print the transpiled artifact, so
// the whole pipeline is observable without a real toolchain.
func TestRunTranspilesSourcesBeforeInvoking(t *testing.T) {
	stubCompiler(t, "blcat", "cat")

	dir := t.TempDir()
	src := filepath.Join(dir, "main.blcpp")
	require.NoError(t, os.WriteFile(src, []byte("int main():\n    return 0\n"), 0o644))

	var stdout, stderr bytes.Buffer
	w, err := New("blcat", Config{
		SourceExtensions: []string{".blcpp"},
		HeaderExtensions: []string{".blh"},
		Stdout:           &stdout,
		Stderr:           &stderr,
	})
	require.NoError(t, err)

	code, err := w.Run(context.Background(), []string{src})
	require.NoError(t, err)
	require.Equal(t, 0, code)
	require.Equal(t, "int main(){\n    return 0;\n}\n", stdout.String())
}
