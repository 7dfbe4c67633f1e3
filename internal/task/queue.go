// Package task runs background retrieval work for the render loop: a
// bounded request queue filled during a frame and a fixed-size worker pool
// it drains into.
package task

import (
	"sort"
	"sync"
)

// DefaultQueueCapacity is the number of requests a frame may queue.
const DefaultQueueCapacity = 200

// Request is one unit of background work. Key identifies the work so the
// same request issued on consecutive frames is not run twice. Requests
// with a lower Priority run first.
type Request struct {
	Key      string
	Priority float64
	Run      func()
}

// RequestQueue collects the requests issued during one frame. When full it
// refuses new requests; the caller issues them again on a later frame.
type RequestQueue struct {
	mu       sync.Mutex
	requests []Request
	keys     map[string]struct{}
	capacity int
	dropped  uint64
}

// NewRequestQueue creates a queue holding at most capacity requests. A
// non-positive capacity selects DefaultQueueCapacity.
func NewRequestQueue(capacity int) *RequestQueue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &RequestQueue{
		requests: make([]Request, 0, capacity),
		keys:     make(map[string]struct{}, capacity),
		capacity: capacity,
	}
}

// Add queues r. It returns false when the queue is full or already holds
// a request with the same key.
func (q *RequestQueue) Add(r Request) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.keys[r.Key]; ok {
		return false
	}
	if len(q.requests) >= q.capacity {
		q.dropped++
		return false
	}
	q.requests = append(q.requests, r)
	q.keys[r.Key] = struct{}{}
	return true
}

// Contains reports whether a request with key is queued.
func (q *RequestQueue) Contains(key string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.keys[key]
	return ok
}

// Len returns the number of queued requests.
func (q *RequestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.requests)
}

// Capacity returns the maximum number of queued requests.
func (q *RequestQueue) Capacity() int { return q.capacity }

// Dropped returns the number of requests refused because the queue was
// full.
func (q *RequestQueue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Take removes and returns every queued request, lowest priority value
// first. Requests with equal priority keep their insertion order.
func (q *RequestQueue) Take() []Request {
	q.mu.Lock()
	out := q.requests
	q.requests = make([]Request, 0, q.capacity)
	clear(q.keys)
	q.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// Clear drops every queued request.
func (q *RequestQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.requests = q.requests[:0]
	clear(q.keys)
}
