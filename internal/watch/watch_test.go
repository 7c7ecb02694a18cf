package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherDeliversChangedFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New(50*time.Millisecond, []string{".blcpp"})
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Add(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan []string, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, func(changed []string) {
			select {
			case got <- changed:
			default:
			}
		})
	}()

	target := filepath.Join(dir, "main.blcpp")
	require.NoError(t, os.WriteFile(target, []byte("int x = 1\n"), 0o644))
	// an irrelevant extension must not trigger anything on its own
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case changed := <-got:
		require.Equal(t, []string{target}, changed)
	case <-time.After(5 * time.Second):
		t.Fatal("no rebuild batch delivered")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatcherAddFileWatchesParent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.blcpp")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0o644))

	w, err := New(10*time.Millisecond, []string{".blcpp"})
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Add(file))
}

func TestWatcherSkipsUnchangedMtime(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.blcpp")
	require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0o644))

	w, err := New(10*time.Millisecond, []string{".blcpp"})
	require.NoError(t, err)
	defer w.Close()

	st, err := os.Stat(file)
	require.NoError(t, err)
	w.mtimes.Set(file, st.ModTime().UnixNano(), 0)

	pending := map[string]struct{}{file: {}}
	require.Empty(t, w.modified(pending))
}
