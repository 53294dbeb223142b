// Package cache implements a bounded, LRU-evicted, TTL-expired result
// cache for recent queries. Entries are keyed on the xxhash64 of the
// normalized query string rather than the string itself, with the
// original query string retained alongside each entry so the
// vanishingly rare hash collision reads as a miss instead of silently
// returning the wrong entry.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Entry is one cached (path, score) pair, matching the matcher/trie
// Result shape without importing either package.
type Entry struct {
	Path  string
	Score float32
}

type cacheEntry struct {
	key        uint64
	query      string
	results    []Entry
	insertedAt time.Time
}

// Cache is a bounded LRU cache with an absolute per-entry TTL. It is
// safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	ttl      time.Duration
	maxSize  int
	order    *list.List // front = most recently used
	entries  map[uint64]*list.Element
	stopOnce sync.Once
	cancel   context.CancelFunc
}

// New returns a cache bounded to maxSize entries, each expiring ttl
// after insertion.
func New(maxSize int, ttl time.Duration) *Cache {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &Cache{
		ttl:     ttl,
		maxSize: maxSize,
		order:   list.New(),
		entries: make(map[uint64]*list.Element),
	}
}

func hashKey(query string) uint64 {
	return xxhash.Sum64String(query)
}

// Get returns the cached result list for query iff present and not
// expired. A hit promotes the entry's LRU position without resetting
// its insertedAt, so TTL expiry is always measured from original
// insertion.
func (c *Cache) Get(query string) ([]Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := hashKey(query)
	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	ce := elem.Value.(*cacheEntry)
	if ce.key == key && ce.query != query {
		// Hash collision on distinct query strings: treat as a miss
		// rather than return the wrong cached results.
		return nil, false
	}
	if c.ttl > 0 && time.Since(ce.insertedAt) > c.ttl {
		c.order.Remove(elem)
		delete(c.entries, key)
		return nil, false
	}
	c.order.MoveToFront(elem)
	out := make([]Entry, len(ce.results))
	copy(out, ce.results)
	return out, true
}

// Insert stores results under query, evicting the least recently used
// entry if the cache is at capacity.
func (c *Cache) Insert(query string, results []Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := hashKey(query)
	stored := make([]Entry, len(results))
	copy(stored, results)

	if elem, ok := c.entries[key]; ok {
		elem.Value = &cacheEntry{key: key, query: query, results: stored, insertedAt: time.Now()}
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.maxSize {
		back := c.order.Back()
		if back != nil {
			evicted := back.Value.(*cacheEntry)
			delete(c.entries, evicted.key)
			c.order.Remove(back)
		}
	}

	elem := c.order.PushFront(&cacheEntry{key: key, query: query, results: stored, insertedAt: time.Now()})
	c.entries[key] = elem
}

// Clear drops all entries. Every mutator in the search orchestrator
// calls this (or PurgeExpired) before returning.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[uint64]*list.Element)
}

// PurgeExpired drops entries whose TTL has elapsed. Called
// opportunistically after bulk mutations instead of on every single
// insert.
func (c *Cache) PurgeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ttl <= 0 {
		return
	}
	now := time.Now()
	for e := c.order.Back(); e != nil; {
		prev := e.Prev()
		ce := e.Value.(*cacheEntry)
		if now.Sub(ce.insertedAt) > c.ttl {
			delete(c.entries, ce.key)
			c.order.Remove(e)
		}
		e = prev
	}
}

// Len returns the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// StartJanitor launches a background goroutine that calls PurgeExpired
// on interval until ctx is cancelled. It is optional: the cache is
// already purged opportunistically after bulk mutations, so the
// janitor only matters for hosts that mutate rarely but want expired
// entries reclaimed promptly.
func (c *Cache) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	c.stopOnce.Do(func() {
		c.mu.Lock()
		c.cancel = cancel
		c.mu.Unlock()
	})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.PurgeExpired()
			}
		}
	}()
}

// StopJanitor cancels any running janitor goroutine started via
// StartJanitor. Safe to call even if no janitor was started.
func (c *Cache) StopJanitor() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
