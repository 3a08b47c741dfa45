// Package cache holds a process-wide content cache for blob bytes, shared
// across commits so that pkg/blame doesn't re-read the same
// object from libgit2's odb every time a later commit in a walk touches the
// same unchanged file.
package cache

import (
	"sync"
	"sync/atomic"

	"github.com/fnctui/fnc/pkg/scm"
)

// DefaultLRUCacheSize is the default memory ceiling for a blob cache, in
// bytes (256 MB).
const DefaultLRUCacheSize = 256 * 1024 * 1024

const kilobyte = 1024.0

// LRUBlobCache bounds its resident set by byte count rather than entry
// count: a repository's blobs vary from empty files to multi-megabyte
// binaries, so a fixed-count cache would either starve small-file workloads
// or let one large blob blow the memory budget. Eviction picks the node that
// is both large and rarely touched, not simply the least recently used one.
type LRUBlobCache struct {
	mu      sync.RWMutex
	nodes   map[scm.Hash]*node
	lruHead *node // most recently touched
	lruTail *node // least recently touched
	maxSize int64
	size    int64

	hits   atomic.Int64
	misses atomic.Int64
}

// node is one resident blob plus its position in the recency list.
type node struct {
	hash  scm.Hash
	data  []byte
	touch int64 // number of Get/Put hits against this node
	prev  *node
	next  *node
}

// weight scores how much this node costs to keep around: touches per
// kilobyte. A node with a low weight is large relative to how often it
// earns its keep, and is evicted before a small, hot one.
func (n *node) weight() float64 {
	sizeKB := float64(len(n.data)) / kilobyte
	if sizeKB < 1 {
		sizeKB = 1
	}

	return float64(n.touch) / sizeKB
}

// NewLRUBlobCache builds a cache capped at maxSize bytes of blob content. A
// non-positive maxSize falls back to DefaultLRUCacheSize.
func NewLRUBlobCache(maxSize int64) *LRUBlobCache {
	if maxSize <= 0 {
		maxSize = DefaultLRUCacheSize
	}

	return &LRUBlobCache{
		nodes:   make(map[scm.Hash]*node),
		maxSize: maxSize,
	}
}

// Get returns the cached bytes for hash, or nil on a miss.
func (c *LRUBlobCache) Get(hash scm.Hash) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.nodes[hash]
	if !ok {
		c.misses.Add(1)

		return nil
	}

	c.hits.Add(1)
	c.touch(n)

	return n.data
}

// Put stores data under hash, evicting lower-weight entries as needed to
// stay within maxSize. A blob larger than the entire cache is rejected
// rather than evicting everything else to fit it. The stored copy is
// detached from data's backing array, so callers may reuse or free it after
// Put returns.
func (c *LRUBlobCache) Put(hash scm.Hash, data []byte) {
	if data == nil || int64(len(data)) > c.maxSize {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.insert(hash, data)
}

// GetMulti looks up several hashes in one locked pass, which matters for
// callers like a blame annotation walk that needs every parent-commit blob
// for a file before it can diff a single commit against all of its parents.
func (c *LRUBlobCache) GetMulti(hashes []scm.Hash) (found map[scm.Hash][]byte, missing []scm.Hash) {
	found = make(map[scm.Hash][]byte, len(hashes))

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, h := range hashes {
		if n, ok := c.nodes[h]; ok {
			c.hits.Add(1)
			c.touch(n)
			found[h] = n.data

			continue
		}

		c.misses.Add(1)
		missing = append(missing, h)
	}

	return found, missing
}

// PutMulti is GetMulti's write-side counterpart: one locked pass to seed the
// cache with a batch of blobs a caller already fetched together.
func (c *LRUBlobCache) PutMulti(blobs map[scm.Hash][]byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for hash, data := range blobs {
		if data == nil || int64(len(data)) > c.maxSize {
			continue
		}

		c.insert(hash, data)
	}
}

// insert adds or refreshes one entry. Caller holds c.mu.
func (c *LRUBlobCache) insert(hash scm.Hash, data []byte) {
	if n, ok := c.nodes[hash]; ok {
		c.touch(n)

		return
	}

	size := int64(len(data))
	for c.size+size > c.maxSize && c.lruTail != nil {
		c.evictOne()
	}

	owned := append([]byte(nil), data...)
	n := &node{hash: hash, data: owned, touch: 1}

	c.nodes[hash] = n
	c.size += size
	c.pushFront(n)
}

// Stats snapshots the cache's hit/miss counters and current occupancy.
func (c *LRUBlobCache) Stats() LRUStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return LRUStats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Entries:     len(c.nodes),
		CurrentSize: c.size,
		MaxSize:     c.maxSize,
	}
}

// LRUStats is a point-in-time read of LRUBlobCache's counters.
type LRUStats struct {
	Hits        int64
	Misses      int64
	Entries     int
	CurrentSize int64
	MaxSize     int64
}

// HitRate returns Hits/(Hits+Misses), or 0 when nothing has been looked up
// yet.
func (s LRUStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// Clear empties the cache and resets its occupancy, leaving the hit/miss
// counters untouched since they describe the cache's behavior over its
// lifetime, not its current contents.
func (c *LRUBlobCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nodes = make(map[scm.Hash]*node)
	c.lruHead = nil
	c.lruTail = nil
	c.size = 0
}

// touch records an access and moves n to the front of the recency list.
// Caller holds c.mu.
func (c *LRUBlobCache) touch(n *node) {
	n.touch++

	if n == c.lruHead {
		return
	}

	c.unlink(n)
	c.pushFront(n)
}

// pushFront makes n the most-recently-touched node.
func (c *LRUBlobCache) pushFront(n *node) {
	n.prev = nil
	n.next = c.lruHead

	if c.lruHead != nil {
		c.lruHead.prev = n
	}

	c.lruHead = n

	if c.lruTail == nil {
		c.lruTail = n
	}
}

// unlink splices n out of the recency list without touching its neighbors'
// data.
func (c *LRUBlobCache) unlink(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.lruHead = n.next
	}

	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.lruTail = n.prev
	}
}

// evictionSample bounds how many tail-end candidates evictOne inspects, so
// eviction stays O(1) instead of scanning the whole recency list for the
// global minimum weight.
const evictionSample = 5

// evictOne removes the lowest-weight node among the evictionSample nodes
// closest to the LRU tail. Caller holds c.mu.
func (c *LRUBlobCache) evictOne() {
	if c.lruTail == nil {
		return
	}

	victim := c.lruTail
	lowest := victim.weight()

	candidate := victim.prev
	for i := 1; i < evictionSample && candidate != nil; i++ {
		if w := candidate.weight(); w < lowest {
			lowest = w
			victim = candidate
		}

		candidate = candidate.prev
	}

	c.unlink(victim)
	delete(c.nodes, victim.hash)
	c.size -= int64(len(victim.data))
}
