package cache

import "sync"

// FrameCache is a generic cache for per-frame derived data. Entries not
// touched between two EndFrame calls are dropped, so the cache holds roughly
// what the last frame used. A soft limit additionally evicts the least
// recently used entries when one frame touches more keys than it allows.
//
// FrameCache is safe for concurrent use.
// FrameCache must not be copied after creation (has mutex).
type FrameCache[K comparable, V any] struct {
	mu        sync.Mutex
	entries   map[K]*frameEntry[K, V]
	lru       *lruList[K]
	softLimit int
	frame     uint64

	evictions uint64
	hits      uint64
	misses    uint64
}

// frameEntry holds a cached value with the frame it was last used in.
type frameEntry[K comparable, V any] struct {
	value V
	frame uint64
	node  *lruNode[K]
}

// New creates a cache with the given soft limit. A softLimit of 0 means
// unlimited.
func New[K comparable, V any](softLimit int) *FrameCache[K, V] {
	return &FrameCache[K, V]{
		entries:   make(map[K]*frameEntry[K, V]),
		lru:       newLRUList[K](),
		softLimit: softLimit,
	}
}

// Get returns the value for key and marks it used in the current frame.
func (c *FrameCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.touch(e)
	return e.value, true
}

// Set stores value under key and marks it used in the current frame.
func (c *FrameCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value)
}

// GetOrCreate returns the cached value for key, calling create on a miss.
// create runs under the cache lock and must not use the cache.
func (c *FrameCache[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.hits++
		c.touch(e)
		return e.value
	}
	c.misses++
	v := create()
	c.set(key, v)
	return v
}

// Delete removes key. Returns true if it was present.
func (c *FrameCache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	c.lru.Remove(e.node)
	delete(c.entries, key)
	return true
}

// EndFrame drops every entry not used since the previous EndFrame and
// starts a new frame. It returns the number of entries dropped.
func (c *FrameCache[K, V]) EndFrame() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for k, e := range c.entries {
		if e.frame != c.frame {
			c.lru.Remove(e.node)
			delete(c.entries, k)
			dropped++
		}
	}
	c.evictions += uint64(dropped) //nolint:gosec // non-negative
	c.frame++
	return dropped
}

// Clear removes all entries.
func (c *FrameCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*frameEntry[K, V])
	c.lru.Clear()
}

// Len returns the number of entries in the cache.
func (c *FrameCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns cache statistics.
func (c *FrameCache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Len:       len(c.entries),
		Capacity:  c.softLimit,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Frame:     c.frame,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// touch marks e used. Caller must hold c.mu.
func (c *FrameCache[K, V]) touch(e *frameEntry[K, V]) {
	e.frame = c.frame
	c.lru.MoveToFront(e.node)
}

// set inserts or replaces key. Caller must hold c.mu.
func (c *FrameCache[K, V]) set(key K, value V) {
	if e, ok := c.entries[key]; ok {
		e.value = value
		c.touch(e)
		return
	}
	c.entries[key] = &frameEntry[K, V]{
		value: value,
		frame: c.frame,
		node:  c.lru.PushFront(key),
	}
	for c.softLimit > 0 && len(c.entries) > c.softLimit {
		k, ok := c.lru.RemoveOldest()
		if !ok {
			break
		}
		delete(c.entries, k)
		c.evictions++
	}
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the soft limit, 0 when unlimited.
	Capacity int
	// Hits and Misses count Get and GetOrCreate lookups.
	Hits   uint64
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0 before the first lookup.
	HitRate float64
	// Evictions counts entries dropped by the soft limit or EndFrame.
	Evictions uint64
	// Frame is the current frame number.
	Frame uint64
}
