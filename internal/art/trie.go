package art

import (
	"bytes"

	perrors "github.com/standardbeagle/pathfind/internal/errors"
)

// Result is one (canonical path, score) pair returned by Completions.
type Result struct {
	Path  string
	Score float32
}

// Trie is an adaptive radix trie: an ordered map from canonical path
// to score with path compression and prefix-bounded completion.
//
// Trie is not safe for concurrent use without external synchronization;
// the search orchestrator serializes all mutation behind a single
// writer lock.
type Trie struct {
	root *node
	size int
}

// NewTrie returns an empty trie.
func NewTrie() *Trie {
	return &Trie{root: newNode4()}
}

// Len returns the number of terminal (indexed) keys.
func (t *Trie) Len() int { return t.size }

// Insert adds or updates key with the given score. It returns true iff
// the key/score pair changed the trie's state: a brand new key, or an
// existing key whose score differs.
//
// An empty key is a legal no-op: the empty canonical path addresses
// the (always absent) root itself.
func (t *Trie) Insert(key string, score float32) bool {
	if key == "" {
		return false
	}
	if t.root == nil {
		t.root = newNode4()
	}
	changed, isNew := insertInto(t.root, []byte(key), score)
	if isNew {
		t.size++
	}
	return changed
}

// insertInto returns (changed, isNew). isNew is true only when a brand
// new terminal was created (used to maintain Trie.size).
func insertInto(nd *node, remaining []byte, score float32) (changed, isNew bool) {
	L := len(nd.prefix)
	common := commonPrefixLen(nd.prefix, remaining)

	switch {
	case common == L && common == len(remaining):
		// Exact match: key ends precisely at this node.
		wasTerminal := nd.isTerminal
		changed = !wasTerminal || nd.score != score
		nd.isTerminal = true
		nd.score = score
		return changed, !wasTerminal

	case common == L:
		// Node prefix fully consumed; key continues into a child.
		edge := remaining[L]
		rest := remaining[L+1:]
		child := nd.getChild(edge)
		if child == nil {
			leaf := newNode4()
			leaf.prefix = append([]byte(nil), rest...)
			leaf.isTerminal = true
			leaf.score = score
			nd.putChild(edge, leaf)
			return true, true
		}
		return insertInto(child, rest, score)

	case common == len(remaining):
		// Key ends inside the node's compressed prefix: split (a).
		splitNode(nd, common)
		nd.isTerminal = true
		nd.score = score
		return true, true

	default:
		// Key and prefix diverge with bytes remaining on both sides:
		// split (b), plus a second leaf for the key's continuation.
		splitNode(nd, common)
		edge := remaining[common]
		rest := remaining[common+1:]
		leaf := newNode4()
		leaf.prefix = append([]byte(nil), rest...)
		leaf.isTerminal = true
		leaf.score = score
		nd.putChild(edge, leaf)
		return true, true
	}
}

// splitNode rewrites nd in place so that nd.prefix becomes
// nd.prefix[:split], and a newly spawned child carries
// nd.prefix[split+1:] along with nd's previous terminal flag, score,
// and entire child set (moved, never cloned). The caller is
// responsible for nd's post-split terminal state and for adding any
// further child the insert requires.
func splitNode(nd *node, split int) {
	if split >= len(nd.prefix) {
		perrors.Invariant("prefix-split", "split point beyond compressed prefix")
	}
	oldPrefix := nd.prefix
	oldTerminal := nd.isTerminal
	oldScore := nd.score

	type edgeChild struct {
		edge  byte
		child *node
	}
	var oldChildren []edgeChild
	nd.eachChild(func(edge byte, child *node) {
		oldChildren = append(oldChildren, edgeChild{edge, child})
	})

	spawned := newNode4()
	if split+1 <= len(oldPrefix) {
		spawned.prefix = append([]byte(nil), oldPrefix[split+1:]...)
	}
	spawned.isTerminal = oldTerminal
	spawned.score = oldScore
	for _, ec := range oldChildren {
		spawned.putChild(ec.edge, ec.child)
	}

	nd.prefix = append([]byte(nil), oldPrefix[:split]...)
	nd.isTerminal = false
	nd.score = 0
	nd.class = cap4
	nd.n, nd.n48, nd.n256 = 0, 0, 0
	nd.keysSmall = [cap16Max]byte{}
	nd.childrenSmall = [cap16Max]*node{}
	nd.index48 = [256]uint8{}
	nd.children48 = [cap48Max]*node{}
	nd.children256 = [cap256Max]*node{}

	nd.putChild(oldPrefix[split], spawned)
}

func commonPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// Contains reports whether key terminates exactly at a node in the
// trie.
func (t *Trie) Contains(key string) bool {
	if key == "" || t.root == nil {
		return false
	}
	nd := t.root
	remaining := []byte(key)
	for {
		L := len(nd.prefix)
		if len(remaining) < L || !bytes.Equal(nd.prefix, remaining[:min(L, len(remaining))]) {
			return false
		}
		remaining = remaining[L:]
		if len(remaining) == 0 {
			return nd.isTerminal
		}
		child := nd.getChild(remaining[0])
		if child == nil {
			return false
		}
		nd = child
		remaining = remaining[1:]
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Remove deletes key if present, returning true iff a terminal was
// found and cleared. Removal merges any resulting chain of exactly one
// non-terminal child back into its parent, with class demotion applied
// by node.removeChild's hysteresis.
func (t *Trie) Remove(key string) bool {
	if key == "" || t.root == nil {
		return false
	}
	newRoot, removed := removeFrom(t.root, []byte(key))
	if !removed {
		return false
	}
	if newRoot == nil {
		t.root = newNode4()
	} else {
		t.root = newRoot
	}
	t.size--
	return true
}

// removeFrom returns the node the caller should store in nd's place
// (nil meaning "drop this edge entirely") along with whether a
// terminal was actually removed.
func removeFrom(nd *node, remaining []byte) (replacement *node, removed bool) {
	L := len(nd.prefix)
	if len(remaining) < L || !bytes.Equal(nd.prefix, remaining[:min(L, len(remaining))]) {
		return nd, false
	}
	rest := remaining[L:]
	if len(rest) == 0 {
		if !nd.isTerminal {
			return nd, false
		}
		nd.isTerminal = false
		nd.score = 0
		return collapse(nd), true
	}

	edge := rest[0]
	childRest := rest[1:]
	child := nd.getChild(edge)
	if child == nil {
		return nd, false
	}
	newChild, ok := removeFrom(child, childRest)
	if !ok {
		return nd, false
	}
	if newChild == nil {
		nd.removeChild(edge)
	} else if newChild != child {
		nd.replaceChild(edge, newChild)
	}
	return collapse(nd), true
}

// collapse drops a non-terminal node with zero children (signalled to
// the parent as nil) and merges a non-terminal node with exactly one
// child into that child by concatenating nd.prefix, the edge byte, and
// the child's own prefix.
func collapse(nd *node) *node {
	if nd.isTerminal {
		return nd
	}
	pop := nd.population()
	if pop == 0 {
		return nil
	}
	if pop == 1 {
		edge, child, _ := nd.soleChild()
		merged := make([]byte, 0, len(nd.prefix)+1+len(child.prefix))
		merged = append(merged, nd.prefix...)
		merged = append(merged, edge)
		merged = append(merged, child.prefix...)
		child.prefix = merged
		return child
	}
	return nd
}

// Completions returns up to maxResults (path, score) pairs for every
// terminal reachable below the node reached by descending prefix. If
// prefix ends inside a node's compressed prefix, the descent must
// match that prefix's leading bytes exactly or the result is empty,
// not an error.
func (t *Trie) Completions(prefix string, maxResults int) []Result {
	if t.root == nil || maxResults <= 0 {
		return nil
	}
	nd := t.root
	remaining := []byte(prefix)
	buffer := make([]byte, 0, len(prefix)+8)

	for {
		L := len(nd.prefix)
		if len(remaining) <= L {
			if !bytes.Equal(nd.prefix[:len(remaining)], remaining) {
				return nil
			}
			buffer = append(buffer, nd.prefix...)
			break
		}
		if !bytes.Equal(nd.prefix, remaining[:L]) {
			return nil
		}
		buffer = append(buffer, nd.prefix...)
		remaining = remaining[L:]
		edge := remaining[0]
		child := nd.getChild(edge)
		if child == nil {
			return nil
		}
		buffer = append(buffer, edge)
		nd = child
		remaining = remaining[1:]
	}

	var out []Result
	collect(nd, buffer, &out, maxResults)
	return out
}

func collect(nd *node, path []byte, out *[]Result, max int) {
	if len(*out) >= max {
		return
	}
	if nd.isTerminal {
		*out = append(*out, Result{Path: string(path), Score: nd.score})
		if len(*out) >= max {
			return
		}
	}
	nd.eachChild(func(edge byte, child *node) {
		if len(*out) >= max {
			return
		}
		childPath := make([]byte, 0, len(path)+1+len(child.prefix))
		childPath = append(childPath, path...)
		childPath = append(childPath, edge)
		childPath = append(childPath, child.prefix...)
		collect(child, childPath, out, max)
	})
}
