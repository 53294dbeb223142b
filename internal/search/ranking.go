package search

import (
	"math"
	"strings"
	"time"

	"github.com/standardbeagle/pathfind/internal/config"
	"github.com/standardbeagle/pathfind/internal/pathutil"
	"github.com/standardbeagle/pathfind/internal/usage"
)

// candidate is a (path, score) pair flowing through ranking, before
// the intrinsic score has been boosted and squashed.
type candidate struct {
	path  string
	score float32
}

// rankContext bundles everything the ranking formula needs beyond the
// candidate itself.
type rankContext struct {
	cfg              config.RankingConfig
	stats            *usage.Stats
	now              time.Time
	currentDirectory string
	preferredExts    []string
	qLower           string
}

// rank sums the frequency, recency, directory-context, extension, and
// filename-match boosts onto the candidate's intrinsic score, then
// squashes the total into (0,1) with a logistic.
func rank(c candidate, rc rankContext) float32 {
	boost := 0.0

	freq := float64(rc.stats.Freq(c.path))
	freqBoost := freq * rc.cfg.WFreq
	if freqBoost > rc.cfg.MaxFreqBoost {
		freqBoost = rc.cfg.MaxFreqBoost
	}
	boost += freqBoost

	if t, ok := rc.stats.Recency(c.path); ok {
		age := rc.now.Sub(t).Seconds()
		if age < 0 {
			age = 0
		}
		boost += rc.cfg.WRecency / (1 + age*rc.cfg.RecencyLambda)
	}

	if rc.currentDirectory != "" {
		if strings.HasPrefix(c.path, rc.currentDirectory) {
			boost += rc.cfg.WSameDir
		} else if parent := pathutil.Dirname(rc.currentDirectory); parent != "" && strings.HasPrefix(c.path, parent) {
			boost += rc.cfg.WParentDir
		}
	}

	if ext := pathutil.Extension(c.path); ext != "" {
		for k, pref := range rc.preferredExts {
			if pref == ext {
				boost += rc.cfg.WExt * (1 - float64(k)/float64(len(rc.preferredExts)))
				break
			}
		}
		if strings.Contains(rc.qLower, ext) {
			boost += rc.cfg.WExtQuery
		}
	}

	fLower := strings.ToLower(pathutil.Basename(c.path))
	switch {
	case fLower == rc.qLower:
		boost += rc.cfg.WExact
	case strings.HasPrefix(fLower, rc.qLower):
		boost += rc.cfg.WPrefix
	case strings.Contains(fLower, rc.qLower):
		boost += rc.cfg.WContains
	}

	sum := float64(c.score) + boost
	return float32(1 / (1 + math.Exp(-sum)))
}

// rankedLess is a NaN-safe descending comparator: NaN scores sort last
// rather than corrupting the ordering.
func rankedLess(aScore, bScore float32) bool {
	aNaN := aScore != aScore
	bNaN := bScore != bScore
	if aNaN && bNaN {
		return false
	}
	if aNaN {
		return false
	}
	if bNaN {
		return true
	}
	return aScore > bScore
}
