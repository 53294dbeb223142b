// Package engine is the public facade: it wires the search
// orchestrator and the indexing driver behind the operations a host
// program actually calls, gating the mutating, indexing and search
// operations on the Disabled/Busy/BadInput error taxonomy. Contains,
// Stats, Info and Close are not gated.
package engine

import (
	"context"
	"time"

	"github.com/standardbeagle/pathfind/internal/config"
	perrors "github.com/standardbeagle/pathfind/internal/errors"
	"github.com/standardbeagle/pathfind/internal/indexing"
	"github.com/standardbeagle/pathfind/internal/search"
)

// Engine is the top-level facade a host program constructs and calls
// into. It owns nothing of its own beyond the driver and its wrapped
// orchestrator.
type Engine struct {
	cfg    config.EngineConfig
	orch   *search.Orchestrator
	driver *indexing.Driver
}

// New constructs an Engine from cfg, using walker for StartIndexing (a
// nil walker falls back to indexing.DefaultWalker). When
// cfg.CacheJanitorInterval is positive, a background janitor sweeps
// expired cache entries on that interval until Close is called.
func New(cfg config.EngineConfig, walker indexing.Walker) *Engine {
	orch := search.New(cfg)
	if cfg.CacheJanitorInterval > 0 {
		orch.StartCacheJanitor(context.Background(), cfg.CacheJanitorInterval)
	}
	return &Engine{
		cfg:    cfg,
		orch:   orch,
		driver: indexing.New(orch, walker),
	}
}

// Close stops the background cache janitor, if one was started.
func (e *Engine) Close() {
	e.orch.StopCacheJanitor()
}

func (e *Engine) disabled(op string) error {
	if !e.cfg.Enabled {
		return perrors.Disabled(op)
	}
	return nil
}

// AddPath indexes a single path.
func (e *Engine) AddPath(path string) error {
	if err := e.disabled("add_path"); err != nil {
		return err
	}
	e.driver.AddPath(path, e.cfg.ExcludedPatterns)
	return nil
}

// AddPathsBatch indexes many paths concurrently.
func (e *Engine) AddPathsBatch(ctx context.Context, paths []string) error {
	if err := e.disabled("add_paths_batch"); err != nil {
		return err
	}
	return e.driver.AddPathsBatch(ctx, paths, e.cfg.ExcludedPatterns)
}

// RemovePath removes a single path.
func (e *Engine) RemovePath(path string) error {
	if err := e.disabled("remove_path"); err != nil {
		return err
	}
	e.driver.RemovePath(path)
	return nil
}

// RemovePathsRecursive removes path and, for each directory, its
// children as reported by descend.
func (e *Engine) RemovePathsRecursive(path string, descend func(dir string) []string) error {
	if err := e.disabled("remove_paths_recursive"); err != nil {
		return err
	}
	e.driver.RemovePathsRecursive(path, descend)
	return nil
}

// Contains reports whether path is indexed.
func (e *Engine) Contains(path string) bool {
	return e.orch.Contains(path)
}

// Search runs a ranked query.
func (e *Engine) Search(query string) ([]search.Result, error) {
	if err := e.disabled("search"); err != nil {
		return nil, err
	}
	return e.driver.Search(query)
}

// SearchByExtension runs a ranked query with a temporary preferred-
// extensions override.
func (e *Engine) SearchByExtension(query string, extensions []string) ([]search.Result, error) {
	if err := e.disabled("search_by_extension"); err != nil {
		return nil, err
	}
	return e.driver.SearchByExtension(query, extensions)
}

// StartIndexing walks root and indexes it.
func (e *Engine) StartIndexing(ctx context.Context, root string) error {
	if err := e.disabled("start_indexing"); err != nil {
		return err
	}
	if e.driver.Status() == indexing.StatusIndexing {
		e.driver.StopIndexing()
	}
	return e.driver.StartIndexing(ctx, root, e.cfg.ExcludedPatterns)
}

// Watch starts indexing root, then keeps the index up to date from
// live filesystem events until ctx is cancelled.
func (e *Engine) Watch(ctx context.Context, root string) error {
	if err := e.disabled("watch"); err != nil {
		return err
	}
	if err := e.StartIndexing(ctx, root); err != nil {
		return err
	}
	w, err := indexing.NewWatcher(e.driver, e.cfg.ExcludedPatterns, e.cfg.WatchDebounce)
	if err != nil {
		return err
	}
	if err := w.Start(root); err != nil {
		return err
	}
	defer w.Stop()
	<-ctx.Done()
	return nil
}

// StopIndexing requests cancellation of any in-flight indexing run.
func (e *Engine) StopIndexing() error {
	if err := e.disabled("stop_indexing"); err != nil {
		return err
	}
	e.driver.StopIndexing()
	return nil
}

// SetCurrentDirectory updates the ranking context's current directory.
func (e *Engine) SetCurrentDirectory(path string) error {
	if err := e.disabled("set_current_directory"); err != nil {
		return err
	}
	e.orch.SetCurrentDirectory(path)
	return nil
}

// SetPreferredExtensions replaces the preferred-extension list.
func (e *Engine) SetPreferredExtensions(list []string) error {
	if err := e.disabled("set_preferred_extensions"); err != nil {
		return err
	}
	e.orch.SetPreferredExtensions(list)
	return nil
}

// RecordPathUsage explicitly records a use of path.
func (e *Engine) RecordPathUsage(path string) error {
	if err := e.disabled("record_path_usage"); err != nil {
		return err
	}
	e.orch.RecordPathUsage(path)
	return nil
}

// Clear drops the entire index, cache, and usage statistics.
func (e *Engine) Clear() error {
	if err := e.disabled("clear"); err != nil {
		return err
	}
	e.orch.Clear()
	return nil
}

// Stats is the point-in-time size summary returned by Engine.Stats.
type Stats struct {
	CacheSize int
	IndexSize int
}

// Stats returns current cache and index sizes.
func (e *Engine) Stats() Stats {
	cacheSize, indexSize := e.orch.Stats()
	return Stats{CacheSize: cacheSize, IndexSize: indexSize}
}

// Info is a point-in-time snapshot of status, progress, last error,
// stats, and a last-updated timestamp.
type Info struct {
	Status      string
	Indexed     int
	LastRoot    string
	LastError   error
	Stats       Stats
	LastUpdated time.Time
}

// Info returns a point-in-time snapshot of engine status and metrics.
func (e *Engine) Info() Info {
	status, indexed, lastRoot, lastErr := e.driver.Info()
	return Info{
		Status:      status.String(),
		Indexed:     indexed,
		LastRoot:    lastRoot,
		LastError:   lastErr,
		Stats:       e.Stats(),
		LastUpdated: time.Now(),
	}
}
