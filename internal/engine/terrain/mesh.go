package terrain

import (
	"fmt"

	"github.com/Faultbox/midgard-globe/internal/engine/tile"
	"github.com/Faultbox/midgard-globe/internal/globe"
	"github.com/Faultbox/midgard-globe/pkg/math"
)

// meshScratch holds the buffers reused by every tile build. A Tessellator
// owns exactly one, so buildVertices is not reentrant and must only run on
// the render goroutine.
type meshScratch struct {
	elevations []float64 // (h+1)*(w+1) terrain samples
	grid       []float64 // (h+3)*(w+3) samples with skirts
	lats       []float64
	lons       []float64
	points     []math.Vec3
}

func (s *meshScratch) ensure(tileWidth, tileHeight int) {
	n := (tileHeight + 1) * (tileWidth + 1)
	skirted := (tileHeight + 3) * (tileWidth + 3)
	if cap(s.elevations) < n {
		s.elevations = make([]float64, n)
	}
	s.elevations = s.elevations[:n]
	if cap(s.grid) < skirted {
		s.grid = make([]float64, skirted)
		s.points = make([]math.Vec3, skirted)
	}
	s.grid = s.grid[:skirted]
	s.points = s.points[:skirted]
	s.lats = axisBuffer(s.lats, tileHeight+3)
	s.lons = axisBuffer(s.lons, tileWidth+3)
}

func axisBuffer(b []float64, n int) []float64 {
	if cap(b) < n {
		return make([]float64, n)
	}
	return b[:n]
}

// skirtedAxis fills dst with n+2 values: lo, then n samples from exactly lo
// to exactly hi, then hi.
func skirtedAxis(dst []float64, lo, hi float64, n int) {
	delta := (hi - lo) / float64(n-1)
	dst[0] = lo
	for i := 0; i < n; i++ {
		switch i {
		case 0:
			dst[i+1] = lo
		case n - 1:
			dst[i+1] = hi
		default:
			dst[i+1] = lo + float64(i)*delta
		}
	}
	dst[n+1] = hi
}

// buildVertices samples the globe over the tile and writes the skirted mesh
// into geom. Skirt points sit at the globe's minimum elevation, so they hide
// cracks against neighbours of any resolution.
func (t *Tessellator) buildVertices(g globe.Globe, ve float64, tl *tile.Tile, geom *Geometry) error {
	w, h := tl.Level.TileWidth, tl.Level.TileHeight
	numLat, numLon := h+1, w+1
	s := &t.scratch
	s.ensure(w, h)

	sector := tl.Sector
	if err := g.ElevationsForGrid(sector, numLat, numLon, tl.Level.TexelSizeRadians(), s.elevations); err != nil {
		return fmt.Errorf("elevations for %v: %w", tl.Key, err)
	}
	minElevation := g.MinElevation()
	if ve != 1 {
		for i := range s.elevations {
			s.elevations[i] *= ve
		}
		minElevation *= ve
	}

	skirtedAxis(s.lats, sector.MinLat, sector.MaxLat, numLat)
	skirtedAxis(s.lons, sector.MinLon, sector.MaxLon, numLon)

	rows, cols := numLat+2, numLon+2
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if r == 0 || r == rows-1 || c == 0 || c == cols-1 {
				s.grid[r*cols+c] = minElevation
			} else {
				s.grid[r*cols+c] = s.elevations[(r-1)*numLon+(c-1)]
			}
		}
	}
	if err := g.PointsForLatLonGrid(s.lats, s.lons, s.grid, s.points); err != nil {
		return fmt.Errorf("points for %v: %w", tl.Key, err)
	}

	centroid := sector.Centroid()
	ref := g.PointFromPosition(centroid.Lat, centroid.Lon, 0)

	n := 3 * rows * cols
	if cap(geom.Points) < n {
		geom.Points = make([]float32, n)
	}
	geom.Points = geom.Points[:n]
	for i, p := range s.points {
		d := p.Sub(ref)
		geom.Points[3*i] = float32(d.X)
		geom.Points[3*i+1] = float32(d.Y)
		geom.Points[3*i+2] = float32(d.Z)
	}

	geom.Sector = sector
	geom.ReferenceCenter = ref
	geom.Transform = math.Translate(ref.X, ref.Y, ref.Z)
	geom.TileWidth = w
	geom.TileHeight = h
	geom.VerticalExaggeration = ve
	geom.dirty = true
	geom.expired = false
	return nil
}
