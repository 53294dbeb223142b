// Package indexing implements the indexing driver: the component that
// walks a filesystem subtree (or an explicit batch of paths) through
// the Walker collaborator, applies exclusion patterns, and feeds the
// search orchestrator, while tracking the engine status state machine
// {Idle, Indexing, Searching, Cancelled, Failed}.
package indexing

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	perrors "github.com/standardbeagle/pathfind/internal/errors"
	"github.com/standardbeagle/pathfind/internal/pathutil"
	"github.com/standardbeagle/pathfind/internal/search"
)

// maxFreqScoreBonus caps how much repeated indexing of the same path
// can raise its intrinsic trie score.
const maxFreqScoreBonus = 0.5

// freqScorePerHit is the per-recorded-use increment to intrinsic
// score.
const freqScorePerHit = 0.01

// batchConcurrency bounds AddPathsBatch's fan-out.
const batchConcurrency = 8

// Driver owns the walk/ingest control flow and the status state
// machine. It holds no index state itself; all of that lives in the
// wrapped *search.Orchestrator.
type Driver struct {
	orch   *search.Orchestrator
	walker Walker
	status statusBox
	cancel atomic.Bool
}

// New returns a Driver that ingests into orch using walker.
func New(orch *search.Orchestrator, walker Walker) *Driver {
	if walker == nil {
		walker = DefaultWalker{}
	}
	return &Driver{orch: orch, walker: walker}
}

// Status returns the current engine status.
func (d *Driver) Status() Status { return d.status.get() }

// Info returns the status snapshot backing Engine.Info.
func (d *Driver) Info() (status Status, indexed int, lastRoot string, lastErr error) {
	return d.status.snapshot()
}

// isExcluded reports whether normalized path p matches any pattern,
// combining a plain substring match with doublestar glob matching so
// a pattern like "**/node_modules/**" also works.
func isExcluded(p string, patterns []string) bool {
	for _, raw := range patterns {
		pattern := strings.ReplaceAll(raw, "\\", "/")
		if pattern == "" {
			continue
		}
		if strings.Contains(p, pattern) {
			return true
		}
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}

// AddPath applies exclusion, then inserts p into the orchestrator with
// a repeated-indexing score bump.
func (d *Driver) AddPath(p string, excludedPatterns []string) bool {
	cp := pathutil.NormalizeString(p)
	if cp == "" || isExcluded(cp, excludedPatterns) {
		return false
	}
	bonus := freqScorePerHit * float64(d.orch.Freq(cp))
	if bonus > maxFreqScoreBonus {
		bonus = maxFreqScoreBonus
	}
	return d.orch.Insert(cp, float32(1.0+bonus))
}

// AddPathsBatch ingests paths concurrently, bounded by
// batchConcurrency via errgroup.Group.SetLimit, honouring the
// cancellation flag between items. Actual trie/matcher mutation is
// still serialized by the orchestrator's own lock, so the parallelism
// here only overlaps exclusion-matching and score computation, not
// the single-writer rule.
func (d *Driver) AddPathsBatch(ctx context.Context, paths []string, excludedPatterns []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for _, p := range paths {
		p := p
		if d.cancel.Load() {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil || d.cancel.Load() {
				return nil
			}
			d.AddPath(p, excludedPatterns)
			return nil
		})
	}
	err := g.Wait()
	d.orch.PurgeExpiredCache()
	return err
}

// RemovePath removes p from the orchestrator.
func (d *Driver) RemovePath(p string) bool {
	return d.orch.Remove(pathutil.NormalizeString(p))
}

// RemovePathsRecursive removes p, then recurses into p's direct
// children on disk via descend, repeating for each. descend is
// supplied by the host filesystem layer; it should list the immediate
// children of a directory path, or return an empty slice for a
// non-directory or unreadable path.
func (d *Driver) RemovePathsRecursive(p string, descend func(dir string) []string) bool {
	removed := d.RemovePath(p)
	if descend == nil {
		return removed
	}
	for _, child := range descend(p) {
		if d.cancel.Load() {
			break
		}
		d.RemovePathsRecursive(child, descend)
	}
	return removed
}

// StartIndexing clears the index and walks root through the Walker,
// calling AddPath for every entry, honouring the shared cancellation
// flag between items. Callers are expected to serialize their own
// StartIndexing calls; the driver does not spawn its own goroutine.
func (d *Driver) StartIndexing(ctx context.Context, root string, excludedPatterns []string) error {
	if err := realize(root); err != nil {
		d.status.set(StatusFailed)
		d.status.setErr(err)
		return perrors.BadInput("start_indexing", err).WithPath(root)
	}

	d.orch.Clear()
	d.status.set(StatusIndexing)
	d.status.setProgress(root, 0)
	d.cancel.Store(false)

	indexed := 0
	walkErr := d.walker.Walk(ctx, root, func(path string) error {
		if d.cancel.Load() || ctx.Err() != nil {
			return errStopWalk
		}
		d.AddPath(path, excludedPatterns)
		indexed++
		d.status.setProgress(root, indexed)
		return nil
	})

	switch {
	case walkErr != nil && walkErr != errStopWalk:
		d.status.set(StatusFailed)
		d.status.setErr(walkErr)
		return perrors.BadInput("start_indexing", walkErr).WithPath(root)
	case d.cancel.Load():
		d.status.set(StatusCancelled)
	default:
		d.status.set(StatusIdle)
	}
	return nil
}

// StopIndexing sets the cooperative cancellation flag observed between
// indexed items.
func (d *Driver) StopIndexing() {
	d.cancel.Store(true)
}

// Search runs query through the orchestrator, tracking the
// Idle/Searching status transition. Search while indexing returns a
// Busy error instead of querying the index.
func (d *Driver) Search(query string) ([]search.Result, error) {
	if d.status.get() == StatusIndexing {
		return nil, perrors.Busy("search")
	}
	d.status.set(StatusSearching)
	defer d.status.set(StatusIdle)
	return d.orch.Search(query), nil
}

// SearchByExtension is gated the same way as Search.
func (d *Driver) SearchByExtension(query string, extensions []string) ([]search.Result, error) {
	if d.status.get() == StatusIndexing {
		return nil, perrors.Busy("search_by_extension")
	}
	d.status.set(StatusSearching)
	defer d.status.set(StatusIdle)
	return d.orch.SearchByExtension(query, extensions), nil
}

// errStopWalk is a sentinel the walker loop returns to unwind cleanly
// on cancellation; it is never propagated to the caller as a failure.
var errStopWalk = &walkStopped{}

type walkStopped struct{}

func (*walkStopped) Error() string { return "indexing stopped" }
