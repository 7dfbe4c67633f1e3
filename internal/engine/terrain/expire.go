package terrain

import (
	"sync"

	"github.com/Faultbox/midgard-globe/internal/engine/tile"
	"github.com/Faultbox/midgard-globe/pkg/geo"
)

// expiration collects sector change events from any goroutine and hands
// them to the render goroutine once per frame.
type expiration struct {
	mu         sync.Mutex
	pending    []geo.Sector
	pendingAll bool

	// current is the frame's expired set; render goroutine only.
	current []geo.Sector
}

func (e *expiration) add(s geo.Sector) {
	if s.IsEmpty() {
		return
	}
	e.mu.Lock()
	e.pending = append(e.pending, s)
	e.mu.Unlock()
}

func (e *expiration) addAll() {
	e.mu.Lock()
	e.pendingAll = true
	e.mu.Unlock()
}

// drain swaps the pending events into the frame's expired set. all reports
// a whole-model event; the caller expands it to the sectors it holds.
func (e *expiration) drain() (all bool) {
	e.mu.Lock()
	e.current, e.pending = e.pending, e.current[:0]
	all = e.pendingAll
	e.pendingAll = false
	e.mu.Unlock()
	return all
}

// intersects reports whether s touches any sector expired this frame.
func (e *expiration) intersects(s geo.Sector) bool {
	for _, x := range e.current {
		if s.Intersects(x) {
			return true
		}
	}
	return false
}

// ExpireSector marks the geometry of every tile intersecting s for rebuild
// on the next frame. It is safe to call from any goroutine and never waits
// for the render goroutine.
func (t *Tessellator) ExpireSector(s geo.Sector) {
	t.expiry.add(s)
}

// ExpireAll marks every tile's geometry for rebuild on the next frame.
func (t *Tessellator) ExpireAll() {
	t.expiry.addAll()
}

// applyExpirations drains pending events at the start of a frame and flags
// the cached geometries they touch, so tiles that are off screen this frame
// are still rebuilt when they come back.
func (t *Tessellator) applyExpirations() {
	all := t.expiry.drain()
	if all {
		for _, st := range t.current.Tiles {
			t.expiry.current = append(t.expiry.current, st.Sector)
		}
	}
	if !all && len(t.expiry.current) == 0 {
		return
	}

	mark := func(_ tile.Key, geom *Geometry) bool {
		if all || t.expiry.intersects(geom.Sector) {
			geom.expired = true
		}
		return true
	}
	t.geometries.Range(mark)
	for k, geom := range t.retained {
		mark(k, geom)
	}
}
