package compiler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchDirs(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	jar := filepath.Join(dir, "lib.jar")
	require.NoError(t, os.WriteFile(jar, nil, 0o644))
	other := t.TempDir()

	got := watchDirs([]string{jar, dir, other + "/*", filepath.Join(dir, "missing"), " "})
	assert.ElementsMatch(t, []string{dir, other}, got)
}

func TestWatcher_ReportsJarChanges(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	got := make(chan []string, 4)
	w, err := NewWatcher([]string{dir}, func(jars []string) { got <- jars }, 20*time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(w.Stop)
	assert.Equal(t, []string{dir}, w.Watched())
	w.Start(t.Context())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	jar := filepath.Join(dir, "dep.jar")
	require.NoError(t, os.WriteFile(jar, []byte("x"), 0o644))

	select {
	case jars := <-got:
		assert.Equal(t, []string{jar}, jars)
	case <-time.After(5 * time.Second):
		t.Fatal("no jar change reported")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	t.Parallel()
	w, err := NewWatcher(nil, nil, 0)
	require.NoError(t, err)
	w.Stop()
	w.Stop()
}
