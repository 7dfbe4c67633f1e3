package globe

import (
	gomath "math"
	"sync/atomic"

	"github.com/Faultbox/midgard-globe/pkg/geo"
)

// CompoundElevationModel layers several models. At each location the model
// with the finest resolution that covers it wins; elsewhere the elevation
// is 0.
type CompoundElevationModel struct {
	models    []ElevationModel
	timestamp atomic.Int64
	notifier
}

// NewCompoundElevationModel composes models and forwards their changes.
func NewCompoundElevationModel(models ...ElevationModel) *CompoundElevationModel {
	c := &CompoundElevationModel{models: models}
	for _, m := range models {
		m.AddListener(func(ch Change) {
			c.timestamp.Add(1)
			c.notify(ch)
		})
	}
	return c
}

func (c *CompoundElevationModel) Sector() geo.Sector {
	s := geo.EmptySector
	for _, m := range c.models {
		s = s.Union(m.Sector())
	}
	return s
}

func (c *CompoundElevationModel) Timestamp() int64 { return c.timestamp.Load() }

func (c *CompoundElevationModel) Elevation(lat, lon float64) float64 {
	best := -1
	bestRes := gomath.Inf(1)
	for i, m := range c.models {
		if !m.Sector().Contains(lat, lon) {
			continue
		}
		res := m.BestResolution(geo.Sector{MinLat: lat, MaxLat: lat, MinLon: lon, MaxLon: lon})
		if res == 0 {
			res = gomath.Inf(1)
		}
		if best < 0 || res < bestRes {
			best, bestRes = i, res
		}
	}
	if best < 0 {
		return 0
	}
	return c.models[best].Elevation(lat, lon)
}

func (c *CompoundElevationModel) MinElevation() float64 {
	v := 0.0
	for _, m := range c.models {
		v = gomath.Min(v, m.MinElevation())
	}
	return v
}

func (c *CompoundElevationModel) MaxElevation() float64 {
	v := 0.0
	for _, m := range c.models {
		v = gomath.Max(v, m.MaxElevation())
	}
	return v
}

func (c *CompoundElevationModel) MinAndMaxElevations(sector geo.Sector) (float64, float64) {
	lo, hi := 0.0, 0.0
	for _, m := range c.models {
		if !m.Sector().Intersects(sector) {
			continue
		}
		mlo, mhi := m.MinAndMaxElevations(sector)
		lo = gomath.Min(lo, mlo)
		hi = gomath.Max(hi, mhi)
	}
	return lo, hi
}

// BestResolution returns the finest non-zero resolution among the models
// covering sector.
func (c *CompoundElevationModel) BestResolution(sector geo.Sector) float64 {
	best := 0.0
	for _, m := range c.models {
		if !m.Sector().Intersects(sector) {
			continue
		}
		if r := m.BestResolution(sector); r > 0 && (best == 0 || r < best) {
			best = r
		}
	}
	return best
}
