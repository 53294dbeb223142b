package indexing

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcherIndexesNewFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	d := newTestDriver()
	w, err := NewWatcher(d, nil, 20*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start(dir))
	defer w.Stop()

	target := filepath.Join(dir, "new.txt")
	require.NoError(t, os.WriteFile(target, []byte("hi"), 0o644))

	assert.Eventually(t, func() bool {
		return d.orch.Contains(target)
	}, time.Second, 10*time.Millisecond)
}

func TestWatcherRemovesDeletedFile(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	target := filepath.Join(dir, "gone.txt")
	require.NoError(t, os.WriteFile(target, []byte("hi"), 0o644))

	d := newTestDriver()
	w, err := NewWatcher(d, nil, 20*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start(dir))
	defer w.Stop()

	d.AddPath(target, nil)
	require.NoError(t, os.Remove(target))

	assert.Eventually(t, func() bool {
		return !d.orch.Contains(target)
	}, time.Second, 10*time.Millisecond)
}
