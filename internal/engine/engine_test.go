package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/pathfind/internal/config"
	perrors "github.com/standardbeagle/pathfind/internal/errors"
	"github.com/standardbeagle/pathfind/internal/indexing"
)

func newTestEngine() *Engine {
	return New(config.DefaultEngineConfig(), indexing.DefaultWalker{})
}

func TestAddPathAndSearch(t *testing.T) {
	e := newTestEngine()
	require.NoError(t, e.AddPath("/proj/readme.md"))
	assert.True(t, e.Contains("/proj/readme.md"))

	results, err := e.Search("/proj/readme")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "/proj/readme.md", results[0].Path)
}

func TestDisabledEngineShortCircuitsEverything(t *testing.T) {
	cfg := config.DefaultEngineConfig()
	cfg.Enabled = false
	e := New(cfg, nil)

	err := e.AddPath("/a/b.txt")
	require.Error(t, err)
	assert.True(t, perrors.IsKind(err, perrors.KindDisabled))

	_, err = e.Search("anything")
	require.Error(t, err)
	assert.True(t, perrors.IsKind(err, perrors.KindDisabled))

	assert.False(t, e.Contains("/a/b.txt"), "a disabled engine never had AddPath succeed")
}

func TestClearAndStats(t *testing.T) {
	e := newTestEngine()
	require.NoError(t, e.AddPath("/x/y.txt"))
	stats := e.Stats()
	assert.Equal(t, 1, stats.IndexSize)

	require.NoError(t, e.Clear())
	stats = e.Stats()
	assert.Equal(t, 0, stats.IndexSize)
}

func TestStartIndexingBadInputSurfacesError(t *testing.T) {
	e := newTestEngine()
	err := e.StartIndexing(context.Background(), "/no/such/root/pathfind-engine-test")
	require.Error(t, err)
	assert.True(t, perrors.IsKind(err, perrors.KindBadInput))
}

func TestInfoReflectsStats(t *testing.T) {
	e := newTestEngine()
	require.NoError(t, e.AddPath("/a/b.txt"))
	info := e.Info()
	assert.Equal(t, "idle", info.Status)
	assert.Equal(t, 1, info.Stats.IndexSize)
}
