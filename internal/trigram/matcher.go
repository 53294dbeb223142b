// Package trigram implements a packed-trigram fuzzy path matcher: an
// append-only path table plus an inverted index from packed trigram to
// sorted path-id list, with an edit-distance-1 variation fallback when
// the primary pass finds nothing.
//
// Paths and queries are padded with two space bytes on each side
// before sliding a 3-byte window, so even one- and two-byte paths
// still yield trigrams.
package trigram

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/pathfind/internal/pathutil"
)

// Result is one (path, score) match.
type Result struct {
	Path  string
	Score float32
}

// Matcher owns the append-only path vector and the trigram postings
// index. It is not safe for concurrent Add/Search use; the orchestrator
// enforces single-writer access.
type Matcher struct {
	paths    []string
	postings map[uint32][]uint32 // packed trigram -> sorted, deduped path ids
}

// NewMatcher returns an empty matcher.
func NewMatcher() *Matcher {
	return &Matcher{postings: make(map[uint32][]uint32)}
}

// Len returns the number of indexed paths, including any that the trie
// has since removed. The matcher never de-indexes; callers filter
// results against trie membership instead.
func (m *Matcher) Len() int { return len(m.paths) }

// PathAt returns the path stored at id, or "" if out of range.
func (m *Matcher) PathAt(id uint32) string {
	if int(id) >= len(m.paths) {
		return ""
	}
	return m.paths[id]
}

// Add appends p to the path table and indexes its trigrams. The
// returned id is stable for the lifetime of the matcher.
func (m *Matcher) Add(p string) uint32 {
	id := uint32(len(m.paths))
	m.paths = append(m.paths, p)
	for _, tg := range trigramsOf(p) {
		list := m.postings[tg]
		if len(list) == 0 || list[len(list)-1] != id {
			m.postings[tg] = append(list, id)
		}
	}
	return id
}

// trigramsOf extracts the ASCII-lowercased, space-padded trigrams of s,
// packed into a u32 as (a<<16)|(b<<8)|c.
func trigramsOf(s string) []uint32 {
	padded := make([]byte, 0, len(s)+4)
	padded = append(padded, ' ', ' ')
	padded = append(padded, s...)
	padded = append(padded, ' ', ' ')
	for i := range padded {
		padded[i] = fastLower(padded[i])
	}
	if len(padded) < 3 {
		return nil
	}
	out := make([]uint32, 0, len(padded)-2)
	for i := 0; i+3 <= len(padded); i++ {
		out = append(out, pack(padded[i], padded[i+1], padded[i+2]))
	}
	return out
}

func pack(a, b, c byte) uint32 {
	return uint32(a)<<16 | uint32(b)<<8 | uint32(c)
}

func fastLower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// bitmap is a simple growable set of path ids used for O(1) presence
// checks and ordered iteration during search.
type bitmap struct {
	words []uint32
}

func newBitmap(n int) *bitmap {
	return &bitmap{words: make([]uint32, (n+31)/32)}
}

func (b *bitmap) ensure(id uint32) {
	need := int(id)/32 + 1
	for len(b.words) < need {
		b.words = append(b.words, 0)
	}
}

func (b *bitmap) set(id uint32) {
	b.ensure(id)
	b.words[id/32] |= 1 << (id % 32)
}

func (b *bitmap) isSet(id uint32) bool {
	if int(id)/32 >= len(b.words) {
		return false
	}
	return b.words[id/32]&(1<<(id%32)) != 0
}

func (b *bitmap) eachSet(fn func(id uint32)) {
	for wi, w := range b.words {
		if w == 0 {
			continue
		}
		for bit := 0; bit < 32; bit++ {
			if w&(1<<uint(bit)) != 0 {
				fn(uint32(wi*32 + bit))
			}
		}
	}
}

// Search returns up to n scored matches for query, using the primary
// trigram-overlap pass and, when that finds nothing, the
// edit-distance-1 variation fallback.
func (m *Matcher) Search(query string, n int) []Result {
	if query == "" || n <= 0 {
		return nil
	}
	qLower := strings.ToLower(query)
	var qTrigrams []uint32
	if len(query) >= 3 {
		qTrigrams = trigramsOf(query)
	}

	hits := make(map[uint32]int) // path id -> hit count
	bm := newBitmap(len(m.paths))

	if len(qTrigrams) > 0 {
		for _, tg := range qTrigrams {
			for _, id := range m.postings[tg] {
				hits[id]++
				bm.set(id)
			}
		}
	}

	distinctHits := len(hits)
	if distinctHits == 0 && len(query) >= 3 {
		return m.fallbackSearch(qLower, n)
	}
	if distinctHits == 0 {
		return nil
	}

	var results []Result
	bm.eachSet(func(id uint32) {
		p := m.paths[id]
		base := float32(hits[id]) / float32(len(qTrigrams))
		results = append(results, Result{Path: p, Score: scorePrimary(base, p, qLower)})
	})

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return len(results[i].Path) < len(results[j].Path)
	})
	if len(results) > n {
		results = results[:n]
	}
	return results
}

func scorePrimary(base float32, path, qLower string) float32 {
	pathLower := strings.ToLower(path)
	filename := strings.ToLower(pathutil.Basename(path))

	score := base
	switch {
	case filename == qLower:
		score += 0.5
	case strings.Contains(filename, qLower):
		score += 0.3
	case strings.Contains(pathLower, qLower):
		score += 0.2
	}
	if len(filename) > 0 && len(qLower) > 0 && filename[0] == qLower[0] {
		score += 0.15
	}
	if dot := strings.IndexByte(qLower, '.'); dot >= 0 {
		if strings.HasSuffix(pathLower, qLower[dot:]) {
			score += 0.1
		}
	}
	if pos := strings.Index(pathLower, qLower); pos >= 0 && len(pathLower) > 0 {
		frac := float64(pos) / float64(len(pathLower))
		if frac > 0.9 {
			frac = 0.9
		}
		score += float32(0.1 * (1 - frac))
	}
	return score
}

// fallbackSearch is the edit-distance-1 variation pass:
// single-character deletions, adjacent transpositions, and (for short
// queries only) single substitutions from a fixed table.
func (m *Matcher) fallbackSearch(qLower string, n int) []Result {
	variations := generateVariations(qLower)
	if len(variations) == 0 {
		return nil
	}

	firstTouch := make(map[uint32]int) // path id -> index of first variation that hit it
	bm := newBitmap(len(m.paths))
	uniqueHits := 0

	for vi, v := range variations {
		vTrigrams := trigramsOf(v)
		for _, tg := range vTrigrams {
			for _, id := range m.postings[tg] {
				if !bm.isSet(id) {
					bm.set(id)
					firstTouch[id] = vi
					uniqueHits++
				}
			}
		}
		if uniqueHits >= n*2 {
			break
		}
	}
	if uniqueHits == 0 {
		return nil
	}

	var results []Result
	bm.eachSet(func(id uint32) {
		p := m.paths[id]
		vi := firstTouch[id]
		score := float32(0.9 - 0.2*(float64(vi)/float64(len(variations))))
		filename := strings.ToLower(pathutil.Basename(p))
		if len(filename) > 0 && len(qLower) > 0 && filename[0] == qLower[0] {
			score += 0.3
		}
		results = append(results, Result{Path: p, Score: score})
	})

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return len(results[i].Path) < len(results[j].Path)
	})
	if len(results) > n {
		results = results[:n]
	}
	return results
}

var substitutionTable = map[byte][]byte{
	'a': {'e'},
	'e': {'a'},
	'i': {'y'},
	'o': {'u'},
	's': {'z'},
	'z': {'s'},
	'c': {'k'},
}

// generateVariations produces the deletion/transposition/substitution
// variant set for the fallback pass.
func generateVariations(q string) []string {
	var out []string
	n := len(q)

	if n >= 2 {
		for i := 0; i < n; i++ {
			out = append(out, q[:i]+q[i+1:])
		}
	}
	if n >= 3 {
		for i := 0; i+1 < n; i++ {
			b := []byte(q)
			b[i], b[i+1] = b[i+1], b[i]
			out = append(out, string(b))
		}
	}
	if n >= 2 && n <= 5 {
		for i := 0; i < n; i++ {
			for _, sub := range substitutionTable[q[i]] {
				b := []byte(q)
				b[i] = sub
				out = append(out, string(b))
			}
		}
	}
	return out
}

// SimilarityHint returns a Jaro-Winkler similarity in [0,1] between a
// query and a candidate path's basename. It is a diagnostic signal for
// host UIs (e.g. "did you mean X?") and is never consulted by Search
// or by the search orchestrator's ranking model.
func SimilarityHint(query, path string) float64 {
	if query == "" || path == "" {
		return 0
	}
	score, err := edlib.StringsSimilarity(strings.ToLower(query), strings.ToLower(pathutil.Basename(path)), edlib.JaroWinkler)
	if err != nil {
		return 0
	}
	return float64(score)
}
