package imagery

import (
	"sync"
	"time"

	"github.com/Faultbox/midgard-globe/internal/engine/tile"
)

// Absent-tile bookkeeping defaults.
const (
	DefaultMaxAbsentTries      = 3
	DefaultMinAbsentInterval   = 10 * time.Second
	DefaultAbsentRetryInterval = 60 * time.Second
)

type absentEntry struct {
	tries int
	last  time.Time
}

// absentList remembers tiles whose retrieval failed so they are not
// requested every frame. A tile counts as absent for minInterval after each
// failure and permanently once it failed more than maxTries times; every
// mark is forgotten after retryInterval. Safe for concurrent use.
type absentList struct {
	mu            sync.Mutex
	entries       map[tile.Key]*absentEntry
	maxTries      int
	minInterval   time.Duration
	retryInterval time.Duration
	now           func() time.Time
}

func newAbsentList() *absentList {
	return &absentList{
		entries:       make(map[tile.Key]*absentEntry),
		maxTries:      DefaultMaxAbsentTries,
		minInterval:   DefaultMinAbsentInterval,
		retryInterval: DefaultAbsentRetryInterval,
		now:           time.Now,
	}
}

// mark records one failed retrieval of k.
func (a *absentList) mark(k tile.Key) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.entries[k]
	if !ok {
		e = &absentEntry{}
		a.entries[k] = e
	}
	e.tries++
	e.last = a.now()
}

// markPermanent records that k does not exist in the source.
func (a *absentList) markPermanent(k tile.Key) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries[k] = &absentEntry{tries: a.maxTries + 1, last: a.now()}
}

func (a *absentList) unmark(k tile.Key) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.entries, k)
}

func (a *absentList) isAbsent(k tile.Key) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.entries[k]
	if !ok {
		return false
	}
	since := a.now().Sub(e.last)
	if since > a.retryInterval {
		delete(a.entries, k)
		return false
	}
	return since < a.minInterval || e.tries > a.maxTries
}

func (a *absentList) len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}
