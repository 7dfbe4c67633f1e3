package globe

import (
	"fmt"
	gomath "math"
	"sync"
	"sync/atomic"

	"github.com/Faultbox/midgard-globe/pkg/geo"
)

// GridElevationModel holds a regular lat/lon grid of elevation samples in
// memory and interpolates between them bilinearly. Samples outside the
// grid's sector read as 0.
//
// Elevations may be replaced at runtime from any goroutine with
// SetElevations, which notifies listeners with the changed sector.
type GridElevationModel struct {
	sector geo.Sector
	numLat int
	numLon int

	mu       sync.RWMutex
	samples  []float64 // rows south to north
	min, max float64

	timestamp atomic.Int64
	notifier
}

// NewGridElevationModel creates a model covering sector with numLat rows
// and numLon columns of samples, initialized from samples when given.
func NewGridElevationModel(sector geo.Sector, numLat, numLon int, samples []float64) (*GridElevationModel, error) {
	if sector.IsEmpty() {
		return nil, fmt.Errorf("%w: empty elevation sector", ErrInvalidArgument)
	}
	if numLat < 2 || numLon < 2 {
		return nil, fmt.Errorf("%w: elevation grid %dx%d, need at least 2x2", ErrInvalidArgument, numLat, numLon)
	}
	if samples != nil && len(samples) != numLat*numLon {
		return nil, fmt.Errorf("%w: %d samples for a %dx%d grid", ErrInvalidArgument, len(samples), numLat, numLon)
	}

	m := &GridElevationModel{
		sector:  sector,
		numLat:  numLat,
		numLon:  numLon,
		samples: make([]float64, numLat*numLon),
	}
	copy(m.samples, samples)
	m.updateExtremes()
	return m, nil
}

func (m *GridElevationModel) Sector() geo.Sector { return m.sector }
func (m *GridElevationModel) Timestamp() int64   { return m.timestamp.Load() }

// BestResolution returns the sample spacing in latitude, in radians.
func (m *GridElevationModel) BestResolution(sector geo.Sector) float64 {
	if !m.sector.Intersects(sector) {
		return 0
	}
	return geo.Radians(m.sector.DeltaLat() / float64(m.numLat-1))
}

func (m *GridElevationModel) MinElevation() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return gomath.Min(m.min, 0)
}

func (m *GridElevationModel) MaxElevation() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return gomath.Max(m.max, 0)
}

// MinAndMaxElevations scans the samples inside sector. Parts of sector
// outside the grid contribute 0.
func (m *GridElevationModel) MinAndMaxElevations(sector geo.Sector) (float64, float64) {
	in := m.sector.Intersection(sector)
	if in.IsEmpty() {
		return 0, 0
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	r0, r1 := m.rowRange(in.MinLat, in.MaxLat)
	c0, c1 := m.colRange(in.MinLon, in.MaxLon)
	lo, hi := gomath.Inf(1), gomath.Inf(-1)
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			v := m.samples[r*m.numLon+c]
			lo = gomath.Min(lo, v)
			hi = gomath.Max(hi, v)
		}
	}
	if !m.sector.ContainsSector(sector) {
		lo = gomath.Min(lo, 0)
		hi = gomath.Max(hi, 0)
	}
	return lo, hi
}

// Elevation interpolates the four samples surrounding the location.
func (m *GridElevationModel) Elevation(lat, lon float64) float64 {
	if !m.sector.Contains(lat, lon) {
		return 0
	}

	fy := (lat - m.sector.MinLat) / m.sector.DeltaLat() * float64(m.numLat-1)
	fx := (lon - m.sector.MinLon) / m.sector.DeltaLon() * float64(m.numLon-1)
	row := min(int(fy), m.numLat-2)
	col := min(int(fx), m.numLon-2)
	fracY := clamp(fy-float64(row), 0, 1)
	fracX := clamp(fx-float64(col), 0, 1)

	m.mu.RLock()
	sw := m.samples[row*m.numLon+col]
	se := m.samples[row*m.numLon+col+1]
	nw := m.samples[(row+1)*m.numLon+col]
	ne := m.samples[(row+1)*m.numLon+col+1]
	m.mu.RUnlock()

	south := sw*(1-fracX) + se*fracX
	north := nw*(1-fracX) + ne*fracX
	return south*(1-fracY) + north*fracY
}

// SetElevations overwrites the samples whose locations fall inside sector
// with fn(lat, lon), bumps the timestamp and notifies listeners with the
// region whose interpolated elevations changed.
func (m *GridElevationModel) SetElevations(sector geo.Sector, fn func(lat, lon float64) float64) {
	in := m.sector.Intersection(sector)
	if in.IsEmpty() {
		return
	}

	latScale := float64(m.numLat-1) / m.sector.DeltaLat()
	lonScale := float64(m.numLon-1) / m.sector.DeltaLon()
	r0 := int(gomath.Ceil((in.MinLat - m.sector.MinLat) * latScale))
	r1 := int(gomath.Floor((in.MaxLat - m.sector.MinLat) * latScale))
	c0 := int(gomath.Ceil((in.MinLon - m.sector.MinLon) * lonScale))
	c1 := int(gomath.Floor((in.MaxLon - m.sector.MinLon) * lonScale))
	if r0 > r1 || c0 > c1 {
		return
	}

	m.mu.Lock()
	for r := r0; r <= r1; r++ {
		lat := m.rowLat(r)
		for c := c0; c <= c1; c++ {
			m.samples[r*m.numLon+c] = fn(lat, m.colLon(c))
		}
	}
	m.updateExtremes()
	m.mu.Unlock()

	// Interpolation reaches one cell beyond the rewritten samples.
	changed := geo.NewSector(
		m.rowLat(max(r0-1, 0)), m.rowLat(min(r1+1, m.numLat-1)),
		m.colLon(max(c0-1, 0)), m.colLon(min(c1+1, m.numLon-1)),
	)
	m.timestamp.Add(1)
	m.notify(Change{Sector: changed})
}

// Reset replaces every sample and notifies listeners that everything
// changed.
func (m *GridElevationModel) Reset(samples []float64) error {
	if len(samples) != m.numLat*m.numLon {
		return fmt.Errorf("%w: %d samples for a %dx%d grid", ErrInvalidArgument, len(samples), m.numLat, m.numLon)
	}
	m.mu.Lock()
	copy(m.samples, samples)
	m.updateExtremes()
	m.mu.Unlock()

	m.timestamp.Add(1)
	m.notify(Change{All: true})
	return nil
}

func (m *GridElevationModel) rowLat(r int) float64 {
	return m.sector.MinLat + float64(r)*m.sector.DeltaLat()/float64(m.numLat-1)
}

func (m *GridElevationModel) colLon(c int) float64 {
	return m.sector.MinLon + float64(c)*m.sector.DeltaLon()/float64(m.numLon-1)
}

// rowRange returns the sample rows covering [lo, hi], widened to include
// the samples that bound it.
func (m *GridElevationModel) rowRange(lo, hi float64) (int, int) {
	scale := float64(m.numLat-1) / m.sector.DeltaLat()
	r0 := int(gomath.Floor((lo - m.sector.MinLat) * scale))
	r1 := int(gomath.Ceil((hi - m.sector.MinLat) * scale))
	return max(r0, 0), min(r1, m.numLat-1)
}

func (m *GridElevationModel) colRange(lo, hi float64) (int, int) {
	scale := float64(m.numLon-1) / m.sector.DeltaLon()
	c0 := int(gomath.Floor((lo - m.sector.MinLon) * scale))
	c1 := int(gomath.Ceil((hi - m.sector.MinLon) * scale))
	return max(c0, 0), min(c1, m.numLon-1)
}

func (m *GridElevationModel) updateExtremes() {
	m.min, m.max = gomath.Inf(1), gomath.Inf(-1)
	for _, v := range m.samples {
		m.min = gomath.Min(m.min, v)
		m.max = gomath.Max(m.max, v)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
