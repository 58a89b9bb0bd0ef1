package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func isMKV(path string) bool { return strings.HasSuffix(path, ".mkv") }

func startWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	w, err := New(isMKV, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	require.NoError(t, w.Watch([]string{root}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		w.Close()
	})
	return w
}

func expectChange(t *testing.T, w *Watcher) {
	t.Helper()
	select {
	case <-w.Changes():
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change signal")
	}
}

func expectQuiet(t *testing.T, w *Watcher, d time.Duration) {
	t.Helper()
	select {
	case <-w.Changes():
		t.Fatal("unexpected change signal")
	case <-time.After(d):
	}
}

func TestWatcher_VideoFileCreated(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "Heat.mkv"), []byte("x"), 0o644))
	expectChange(t, w)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden.mkv"), []byte("x"), 0o644))
	expectQuiet(t, w, 300*time.Millisecond)
}

func TestWatcher_BurstCoalesces(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	for _, name := range []string{"a.mkv", "b.mkv", "c.mkv"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644))
	}
	expectChange(t, w)
	expectQuiet(t, w, 300*time.Millisecond)
}

func TestWatcher_NewDirectoryIsFollowed(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	dir := filepath.Join(root, "Alien (1979)")
	require.NoError(t, os.Mkdir(dir, 0o755))
	expectChange(t, w)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "alien.mkv"), []byte("x"), 0o644))
	expectChange(t, w)
}

func TestWatcher_MissingRootSkipped(t *testing.T) {
	w, err := New(nil)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch([]string{filepath.Join(t.TempDir(), "missing")}))
}
