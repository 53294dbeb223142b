package indexing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/pathfind/internal/config"
	"github.com/standardbeagle/pathfind/internal/search"
)

func newTestDriver() *Driver {
	return New(search.New(config.DefaultEngineConfig()), DefaultWalker{})
}

func TestAddPathAppliesExclusion(t *testing.T) {
	d := newTestDriver()
	assert.True(t, d.AddPath("/repo/src/main.go", []string{"node_modules"}))
	assert.False(t, d.AddPath("/repo/node_modules/pkg/index.js", []string{"node_modules"}))
}

func TestAddPathDoublestarExclusion(t *testing.T) {
	d := newTestDriver()
	assert.False(t, d.AddPath("/repo/a/b/.git/HEAD", []string{"**/.git/**"}))
}

func TestAddPathsBatchHonoursCancellation(t *testing.T) {
	d := newTestDriver()
	d.StopIndexing()
	err := d.AddPathsBatch(context.Background(), []string{"/a.txt", "/b.txt"}, nil)
	require.NoError(t, err)
	assert.False(t, d.orch.Contains("/a.txt"))
	assert.False(t, d.orch.Contains("/b.txt"))
}

func TestRemovePathsRecursive(t *testing.T) {
	d := newTestDriver()
	d.AddPath("/root/dir", nil)
	d.AddPath("/root/dir/child", nil)
	d.AddPath("/root/dir/child/grand", nil)

	tree := map[string][]string{
		"/root/dir":             {"/root/dir/child"},
		"/root/dir/child":       {"/root/dir/child/grand"},
		"/root/dir/child/grand": nil,
	}
	d.RemovePathsRecursive("/root/dir", func(dir string) []string { return tree[dir] })

	assert.False(t, d.orch.Contains("/root/dir"))
	assert.False(t, d.orch.Contains("/root/dir/child"))
	assert.False(t, d.orch.Contains("/root/dir/child/grand"))
}

func TestStartIndexingWalksRealDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "node_modules", "b.js"), []byte("x"), 0o644))

	d := newTestDriver()
	err := d.StartIndexing(context.Background(), dir, []string{"node_modules"})
	require.NoError(t, err)
	assert.Equal(t, StatusIdle, d.Status())
	assert.True(t, d.orch.Contains(filepath.Join(dir, "a.go")))
	assert.False(t, d.orch.Contains(filepath.Join(dir, "node_modules", "b.js")))
}

func TestStartIndexingIndexesDirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "notes.txt"), []byte("x"), 0o644))

	d := newTestDriver()
	require.NoError(t, d.StartIndexing(context.Background(), dir, nil))

	assert.True(t, d.orch.Contains(sub), "directory paths are indexed alongside files")

	results, err := d.Search(sub)
	require.NoError(t, err)
	var sawDir, sawFile bool
	for _, r := range results {
		switch r.Path {
		case sub:
			sawDir = true
		case filepath.Join(sub, "notes.txt"):
			sawFile = true
		}
	}
	assert.True(t, sawDir, "directory path missing from its own prefix search")
	assert.True(t, sawFile)
}

func TestStartIndexingBadRoot(t *testing.T) {
	d := newTestDriver()
	err := d.StartIndexing(context.Background(), "/no/such/root/pathfind-test", nil)
	require.Error(t, err)
	assert.Equal(t, StatusFailed, d.Status())
}

func TestSearchBusyWhileIndexing(t *testing.T) {
	d := newTestDriver()
	d.status.set(StatusIndexing)
	_, err := d.Search("anything")
	require.Error(t, err)
}

func TestSearchReturnsToIdle(t *testing.T) {
	d := newTestDriver()
	d.AddPath("/a/file.txt", nil)
	_, err := d.Search("/a/file")
	require.NoError(t, err)
	assert.Equal(t, StatusIdle, d.Status())
}
