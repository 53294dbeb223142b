// Package search implements the search orchestrator: the component
// that owns the prefix trie, the trigram matcher, the TTL cache, and
// the usage statistics, and composes them into a single ranked Search
// call.
package search

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/standardbeagle/pathfind/internal/art"
	"github.com/standardbeagle/pathfind/internal/cache"
	"github.com/standardbeagle/pathfind/internal/config"
	"github.com/standardbeagle/pathfind/internal/pathutil"
	"github.com/standardbeagle/pathfind/internal/trigram"
	"github.com/standardbeagle/pathfind/internal/usage"
)

// Result is one ranked (path, score) pair, score in (0,1) after the
// final logistic squash.
type Result struct {
	Path  string
	Score float32
}

// Orchestrator owns the trie, the trigram matcher, the TTL cache, and
// the usage statistics exclusively; child components hold no
// references back. A sync.RWMutex gives the single-writer,
// many-readers model: mutation takes the write lock; Search takes the
// read lock, since it only reads the trie and matcher; its own writes
// to the cache and usage stats are already synchronized internally by
// those components.
type Orchestrator struct {
	mu sync.RWMutex

	trie    *art.Trie
	matcher *trigram.Matcher
	cache   *cache.Cache
	stats   *usage.Stats

	cfg   config.EngineConfig
	nowFn func() time.Time
}

// New returns an orchestrator configured per cfg.
func New(cfg config.EngineConfig) *Orchestrator {
	return &Orchestrator{
		trie:    art.NewTrie(),
		matcher: trigram.NewMatcher(),
		cache:   cache.New(cfg.CacheSize, cfg.CacheTTL),
		stats:   usage.New(),
		cfg:     cfg,
		nowFn:   time.Now,
	}
}

// Insert adds path to both the trie and the trigram matcher with the
// given intrinsic score, invalidating the cache. It is the sole
// mutation entry point the indexing driver calls for a new or updated
// path.
func (o *Orchestrator) Insert(path string, score float32) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	changed := o.trie.Insert(path, score)
	o.matcher.Add(path)
	o.cache.Clear()
	return changed
}

// Remove deletes path from the trie and drops its usage entries,
// invalidating the cache. The trigram matcher is not de-indexed;
// Search filters fuzzy hits against trie membership instead.
func (o *Orchestrator) Remove(path string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	removed := o.trie.Remove(path)
	o.stats.Remove(path)
	o.cache.Clear()
	return removed
}

// Contains reports whether path is currently indexed.
func (o *Orchestrator) Contains(path string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.trie.Contains(pathutil.NormalizeString(path))
}

// Clear drops the trie, matcher, cache, and usage stats entirely.
func (o *Orchestrator) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.trie = art.NewTrie()
	o.matcher = trigram.NewMatcher()
	o.cache.Clear()
	o.stats.Clear()
}

// SetCurrentDirectory sets the ranking context's current directory and
// invalidates the cache (a same-directory boost changes with it).
func (o *Orchestrator) SetCurrentDirectory(dir string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cfg.CurrentDirectory = pathutil.NormalizeString(dir)
	o.cache.Clear()
}

// SetPreferredExtensions replaces the preferred-extension list and
// invalidates the cache.
func (o *Orchestrator) SetPreferredExtensions(exts []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cfg.PreferredExtensions = append([]string(nil), exts...)
	o.cache.Clear()
}

// StartCacheJanitor launches the cache's periodic expiry sweep; see
// cache.Cache.StartJanitor.
func (o *Orchestrator) StartCacheJanitor(ctx context.Context, interval time.Duration) {
	o.cache.StartJanitor(ctx, interval)
}

// StopCacheJanitor stops a janitor started with StartCacheJanitor.
// Safe to call when none is running.
func (o *Orchestrator) StopCacheJanitor() {
	o.cache.StopJanitor()
}

// PurgeExpiredCache drops expired cache entries opportunistically,
// called by the indexing driver once at the end of a batch ingest
// rather than after every single insert.
func (o *Orchestrator) PurgeExpiredCache() {
	o.cache.PurgeExpired()
}

// Freq returns how many times path has been recorded as used, for the
// indexing driver's repeated-indexing score bump.
func (o *Orchestrator) Freq(path string) uint32 {
	return o.stats.Freq(path)
}

// RecordPathUsage explicitly records usage of path, independent of
// whether Search already did so automatically (see
// config.RankingConfig.AutoRecordUsage).
func (o *Orchestrator) RecordPathUsage(path string) {
	o.stats.Record(path)
	o.cache.Clear()
}

// Stats returns the current cache and index sizes.
func (o *Orchestrator) Stats() (cacheSize, indexSize int) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.cache.Len(), o.trie.Len()
}

// Search runs the full query pipeline: normalize, cache lookup, trie
// completion, fuzzy fallback, rank, truncate, cache, record usage.
func (o *Orchestrator) Search(query string) []Result {
	trimmed := pathutil.NormalizeString(query)
	if trimmed == "" {
		return nil
	}

	if cached, ok := o.cache.Get(trimmed); ok {
		out := make([]Result, len(cached))
		for i, e := range cached {
			out[i] = Result{Path: e.Path, Score: e.Score}
		}
		return out
	}

	o.mu.RLock()
	buf := o.gatherCandidates(trimmed)
	ranked := o.rankAndTruncate(buf, trimmed, o.cfg.PreferredExtensions)
	o.mu.RUnlock()

	if len(ranked) == 0 {
		return nil
	}

	o.cacheTop(trimmed, ranked)
	if o.cfg.Ranking.AutoRecordUsage {
		o.stats.Record(ranked[0].Path)
	}
	return ranked
}

// SearchByExtension ranks with preferredExtensions in place of the
// configured list for the duration of the call, leaving the configured
// list untouched.
func (o *Orchestrator) SearchByExtension(query string, preferredExtensions []string) []Result {
	trimmed := pathutil.NormalizeString(query)
	if trimmed == "" {
		return nil
	}

	o.mu.RLock()
	buf := o.gatherCandidates(trimmed)
	ranked := o.rankAndTruncate(buf, trimmed, preferredExtensions)
	o.mu.RUnlock()

	if len(ranked) == 0 {
		return nil
	}
	if o.cfg.Ranking.AutoRecordUsage {
		o.stats.Record(ranked[0].Path)
	}
	return ranked
	// Note: extension-overridden searches are not cached, since the
	// cache key would otherwise collide with the default-extension
	// result for the same query string.
}

// gatherCandidates runs trie completion, then trigram fallback if the
// trie alone came up short, deduping by path. Caller must hold at
// least a read lock.
func (o *Orchestrator) gatherCandidates(query string) []candidate {
	want := o.cfg.MaxResults
	if want <= 0 {
		want = 20
	}
	bufSize := want * 2

	artResults := o.trie.Completions(query, bufSize)
	buf := make([]candidate, 0, bufSize)
	seen := make(map[string]bool, bufSize)
	for _, r := range artResults {
		buf = append(buf, candidate{path: r.Path, score: r.Score})
		seen[r.Path] = true
	}

	floor := want
	if floor > 10 {
		floor = 10
	}
	if len(buf) < floor {
		shortfall := want - len(buf)
		if shortfall <= 0 {
			shortfall = want
		}
		fuzzy := o.matcher.Search(query, shortfall)
		for _, r := range fuzzy {
			if seen[r.Path] {
				continue
			}
			// The matcher may return tombstoned paths since removal is
			// trie-only; filter against trie membership.
			if !o.trie.Contains(r.Path) {
				continue
			}
			buf = append(buf, candidate{path: r.Path, score: r.Score})
			seen[r.Path] = true
		}
	}

	return buf
}

// rankAndTruncate applies the ranking formula to every candidate and
// returns the top MaxResults, descending by score, NaN-safe.
func (o *Orchestrator) rankAndTruncate(buf []candidate, query string, preferredExtensions []string) []Result {
	if len(buf) == 0 {
		return nil
	}
	rc := rankContext{
		cfg:              o.cfg.Ranking,
		stats:            o.stats,
		now:              o.nowFn(),
		currentDirectory: o.cfg.CurrentDirectory,
		preferredExts:    preferredExtensions,
		qLower:           strings.ToLower(query),
	}

	results := make([]Result, len(buf))
	for i, c := range buf {
		results[i] = Result{Path: c.path, Score: rank(c, rc)}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return rankedLess(results[i].Score, results[j].Score)
	})

	max := o.cfg.MaxResults
	if max <= 0 {
		max = 20
	}
	if len(results) > max {
		results = results[:max]
	}
	return results
}

// cacheTop inserts only the first min(5, len(results)) pairs: the
// cache accelerates the top of the list, not the whole truncated
// result.
func (o *Orchestrator) cacheTop(query string, results []Result) {
	n := len(results)
	if n > 5 {
		n = 5
	}
	entries := make([]cache.Entry, n)
	for i := 0; i < n; i++ {
		entries[i] = cache.Entry{Path: results[i].Path, Score: results[i].Score}
	}
	o.cache.Insert(query, entries)
}
