package api

import (
	"os"
	"strconv"
	"sync"

	"github.com/ecoscope/ecoscope/pkg/bom"
)

// TreeCache is a thread-safe LRU cache for archived evaluation tree
// snapshots. Archived trees are immutable, so entries never go stale.
type TreeCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*cacheEntry
	order   []string // oldest first
}

type cacheEntry struct {
	tree *bom.Tree
}

// NewTreeCache creates a cache with the given maximum number of entries.
// If maxSize <= 0, it defaults to 20.
func NewTreeCache(maxSize int) *TreeCache {
	if maxSize <= 0 {
		maxSize = 20
	}
	return &TreeCache{
		maxSize: maxSize,
		entries: make(map[string]*cacheEntry),
	}
}

// NewTreeCacheFromEnv creates a cache with size from TREE_CACHE_SIZE env var.
func NewTreeCacheFromEnv() *TreeCache {
	size := 20
	if v := os.Getenv("TREE_CACHE_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			size = parsed
		}
	}
	return NewTreeCache(size)
}

// Get retrieves a tree from the cache, or nil if not found.
func (c *TreeCache) Get(id string) *bom.Tree {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[id]
	if !ok {
		return nil
	}

	// Move to end (most recently used)
	c.moveToEnd(id)
	return entry.tree
}

// Put adds a tree to the cache, evicting the oldest if full.
func (c *TreeCache) Put(id string, tree *bom.Tree) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[id]; ok {
		c.entries[id] = &cacheEntry{tree: tree}
		c.moveToEnd(id)
		return
	}

	// Evict oldest if at capacity
	for len(c.entries) >= c.maxSize && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.entries[id] = &cacheEntry{tree: tree}
	c.order = append(c.order, id)
}

func (c *TreeCache) moveToEnd(id string) {
	for i, k := range c.order {
		if k == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, id)
			return
		}
	}
}
