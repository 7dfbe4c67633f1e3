package globe

import (
	"sync"

	"github.com/Faultbox/midgard-globe/pkg/geo"
)

// Change describes an elevation-model update. All means every sector
// changed; otherwise only Sector did.
type Change struct {
	Sector geo.Sector
	All    bool
}

// ChangeListener receives elevation changes. It may be called from any
// goroutine and must not block.
type ChangeListener func(Change)

// ElevationModel supplies elevations in meters.
type ElevationModel interface {
	// Sector is the region the model has data for.
	Sector() geo.Sector

	// Elevation returns the elevation at the location, 0 where unknown.
	Elevation(lat, lon float64) float64
	MinElevation() float64
	MaxElevation() float64
	MinAndMaxElevations(sector geo.Sector) (min, max float64)

	// BestResolution returns the model's finest sample spacing in sector,
	// in radians. Zero means no limit.
	BestResolution(sector geo.Sector) float64

	// Timestamp increases whenever the model's data changes.
	Timestamp() int64

	AddListener(ChangeListener)
}

// ZeroElevationModel is a sea-level planet. It never changes.
type ZeroElevationModel struct{}

func (ZeroElevationModel) Sector() geo.Sector                 { return geo.FullSphere() }
func (ZeroElevationModel) Elevation(lat, lon float64) float64 { return 0 }
func (ZeroElevationModel) MinElevation() float64              { return 0 }
func (ZeroElevationModel) MaxElevation() float64              { return 0 }
func (ZeroElevationModel) BestResolution(geo.Sector) float64  { return 0 }
func (ZeroElevationModel) Timestamp() int64                   { return 0 }
func (ZeroElevationModel) AddListener(ChangeListener)         {}

func (ZeroElevationModel) MinAndMaxElevations(geo.Sector) (float64, float64) {
	return 0, 0
}

// notifier fans a Change out to registered listeners.
type notifier struct {
	mu        sync.Mutex
	listeners []ChangeListener
}

func (n *notifier) AddListener(fn ChangeListener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, fn)
}

func (n *notifier) notify(c Change) {
	n.mu.Lock()
	listeners := append([]ChangeListener(nil), n.listeners...)
	n.mu.Unlock()

	for _, fn := range listeners {
		fn(c)
	}
}
