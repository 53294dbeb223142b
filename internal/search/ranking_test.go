package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/pathfind/internal/config"
	"github.com/standardbeagle/pathfind/internal/usage"
)

func testRankContext(t *testing.T) rankContext {
	t.Helper()
	return rankContext{
		cfg:    config.DefaultRankingConfig(),
		stats:  usage.New(),
		now:    time.Now(),
		qLower: "note",
	}
}

func TestRankExactBasenameBeatsPrefix(t *testing.T) {
	rc := testRankContext(t)
	exact := rank(candidate{path: "/a/note", score: 1}, rc)
	prefix := rank(candidate{path: "/a/notebook", score: 1}, rc)
	assert.Greater(t, exact, prefix)
}

func TestRankFreqBoostIsCapped(t *testing.T) {
	rc := testRankContext(t)
	for i := 0; i < 1000; i++ {
		rc.stats.Record("/a/note")
	}
	uncapped := rank(candidate{path: "/a/note", score: 0}, rc)

	rc2 := testRankContext(t)
	rc2.cfg.MaxFreqBoost = 0
	capped := rank(candidate{path: "/a/note", score: 0}, rc2)
	assert.Greater(t, uncapped, capped)
	assert.LessOrEqual(t, uncapped, float32(1.0))
	// 1000 uses add at most MaxFreqBoost (0.5): sigmoid(0.5+0.3+0.6) ≈ 0.802.
	assert.Less(t, uncapped, float32(0.81))
}

func TestRankSameDirectoryBoost(t *testing.T) {
	rc := testRankContext(t)
	rc.currentDirectory = "/proj/src"
	inDir := rank(candidate{path: "/proj/src/note", score: 0}, rc)
	elsewhere := rank(candidate{path: "/other/note", score: 0}, rc)
	assert.Greater(t, inDir, elsewhere)
}

func TestRankedLessNaNSortsLast(t *testing.T) {
	nan := float32(0)
	nan = nan / nan
	assert.True(t, rankedLess(1, nan))
	assert.False(t, rankedLess(nan, 1))
	assert.False(t, rankedLess(nan, nan))
	assert.True(t, rankedLess(0.9, 0.1))
	assert.False(t, rankedLess(0.1, 0.9))
}
