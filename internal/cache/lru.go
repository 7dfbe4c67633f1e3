package cache

// entry is both the map value and a node of the LRU list.
type entry[K comparable, V any] struct {
	key   K
	value V
	size  int64
	atime int64 // access tick, for Stats and tests

	prev *entry[K, V]
	next *entry[K, V]
}

// lruList orders entries from most recently used (head) to least recently
// used (tail). Not thread-safe; Memory holds the lock.
type lruList[K comparable, V any] struct {
	head *entry[K, V]
	tail *entry[K, V]
	len  int
}

func (l *lruList[K, V]) pushFront(e *entry[K, V]) {
	e.prev = nil
	e.next = l.head
	if l.head != nil {
		l.head.prev = e
	}
	l.head = e
	if l.tail == nil {
		l.tail = e
	}
	l.len++
}

func (l *lruList[K, V]) remove(e *entry[K, V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		l.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		l.tail = e.prev
	}
	e.prev, e.next = nil, nil
	l.len--
}

func (l *lruList[K, V]) moveToFront(e *entry[K, V]) {
	if l.head == e {
		return
	}
	l.remove(e)
	l.pushFront(e)
}

// oldest returns the least recently used entry, or nil.
func (l *lruList[K, V]) oldest() *entry[K, V] {
	return l.tail
}
