// Package cache provides the CPU tier of the tile resource cache: a
// generic, byte-budgeted LRU map.
//
// Every value reports its own size. When an insert would push usage over
// the capacity, least recently used entries are evicted until usage drops to
// the low-water mark, so usage that oscillates near the limit does not evict
// on every insert. Evicted and removed values are reported to listeners.
//
// Memory is safe for concurrent use.
package cache
