package cache

import "sync"

// DefaultLowWaterRatio is the fraction of capacity eviction drains down to.
const DefaultLowWaterRatio = 0.8

// Sizer reports the number of bytes a cached value holds.
type Sizer interface {
	SizeInBytes() int64
}

// Listener is notified when an entry leaves the cache through eviction,
// Remove or Clear. It runs with the cache lock held and must not call back
// into the cache.
type Listener[K comparable, V any] func(key K, value V)

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries   int
	Used      int64
	Capacity  int64
	LowWater  int64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Memory is a byte-budgeted LRU cache.
//
// Memory must not be copied after creation (has mutex).
type Memory[K comparable, V Sizer] struct {
	mu        sync.Mutex
	entries   map[K]*entry[K, V]
	lru       lruList[K, V]
	capacity  int64
	lowWater  int64
	used      int64
	tick      int64
	listeners []Listener[K, V]

	hits, misses, evictions uint64
}

// New creates a cache holding at most capacity bytes, with the low-water
// mark at DefaultLowWaterRatio of capacity.
func New[K comparable, V Sizer](capacity int64) *Memory[K, V] {
	return NewWithLowWater[K, V](capacity, int64(float64(capacity)*DefaultLowWaterRatio))
}

// NewWithLowWater creates a cache with an explicit low-water mark, clamped
// to [0, capacity].
func NewWithLowWater[K comparable, V Sizer](capacity, lowWater int64) *Memory[K, V] {
	if capacity < 0 {
		capacity = 0
	}
	return &Memory[K, V]{
		entries:  make(map[K]*entry[K, V]),
		capacity: capacity,
		lowWater: clampLowWater(lowWater, capacity),
	}
}

func clampLowWater(lowWater, capacity int64) int64 {
	if lowWater < 0 {
		return 0
	}
	if lowWater > capacity {
		return capacity
	}
	return lowWater
}

// AddListener registers fn for entries leaving the cache.
func (c *Memory[K, V]) AddListener(fn Listener[K, V]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Get returns the value for key and marks it most recently used.
func (c *Memory[K, V]) Get(key K) (V, bool) {
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

// Contains reports whether key is resident without affecting LRU order.
func (c *Memory[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// Put stores value under key. A value larger than the capacity is rejected
// and Put returns false. Replacing an existing value does not notify
// listeners: the caller still owns the old value.
func (c *Memory[K, V]) Put(key K, value V) bool {
	size := value.SizeInBytes()
	if size < 0 {
		size = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if size > c.capacity {
		return false
	}

	if e, ok := c.entries[key]; ok {
		c.used -= e.size
		c.lru.remove(e)
		delete(c.entries, key)
	}

	if c.used+size > c.capacity {
		c.makeSpace(size)
	}

	e := &entry[K, V]{key: key, value: value, size: size}
	c.entries[key] = e
	c.lru.pushFront(e)
	c.used += size
	c.touch(e)
	return true
}

// Remove deletes key and notifies listeners. It reports whether key was
// resident.
func (c *Memory[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	c.drop(e)
	return true
}

// Clear removes every entry, notifying listeners for each.
func (c *Memory[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for e := c.lru.oldest(); e != nil; e = c.lru.oldest() {
		c.drop(e)
	}
}

// Len returns the number of resident entries.
func (c *Memory[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Used returns the resident byte count.
func (c *Memory[K, V]) Used() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used
}

// Free returns the bytes left before the capacity is reached.
func (c *Memory[K, V]) Free() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capacity - c.used
}

// Capacity returns the hard byte limit.
func (c *Memory[K, V]) Capacity() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capacity
}

// LowWater returns the byte count eviction drains down to.
func (c *Memory[K, V]) LowWater() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lowWater
}

// SetCapacity changes the limits, keeping the low-water ratio, and evicts
// immediately when usage now exceeds the capacity.
func (c *Memory[K, V]) SetCapacity(capacity int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if capacity < 0 {
		capacity = 0
	}
	ratio := DefaultLowWaterRatio
	if c.capacity > 0 {
		ratio = float64(c.lowWater) / float64(c.capacity)
	}
	c.capacity = capacity
	c.lowWater = clampLowWater(int64(float64(capacity)*ratio), capacity)
	if c.used > c.capacity {
		c.makeSpace(0)
	}
}

// Stats returns a snapshot of the cache counters.
func (c *Memory[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:   len(c.entries),
		Used:      c.used,
		Capacity:  c.capacity,
		LowWater:  c.lowWater,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// makeSpace evicts least recently used entries until required more bytes
// fit under the low-water mark or the cache is empty.
func (c *Memory[K, V]) makeSpace(required int64) {
	for c.used+required > c.lowWater {
		e := c.lru.oldest()
		if e == nil {
			return
		}
		c.evictions++
		c.drop(e)
	}
}

func (c *Memory[K, V]) drop(e *entry[K, V]) {
	c.lru.remove(e)
	delete(c.entries, e.key)
	c.used -= e.size
	for _, fn := range c.listeners {
		fn(e.key, e.value)
	}
}

func (c *Memory[K, V]) touch(e *entry[K, V]) {
	c.tick++
	e.atime = c.tick
	c.lru.moveToFront(e)
}

// Range calls fn for each entry from most to least recently used without
// changing the order, stopping when fn returns false. fn must not call
// back into the cache.
func (c *Memory[K, V]) Range(fn func(key K, value V) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for e := c.lru.head; e != nil; e = e.next {
		if !fn(e.key, e.value) {
			return
		}
	}
}
