package geo

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Sector is an axis-aligned latitude/longitude rectangle in degrees.
// MinLat <= MaxLat and MinLon <= MaxLon always hold for sectors built with
// NewSector. A sector with zero area is empty.
type Sector struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// EmptySector is the distinguished zero-area sector.
var EmptySector = Sector{}

// NewSector returns the sector bounded by the given latitudes and
// longitudes, swapping bounds given in the wrong order.
func NewSector(minLat, maxLat, minLon, maxLon float64) Sector {
	if minLat > maxLat {
		minLat, maxLat = maxLat, minLat
	}
	if minLon > maxLon {
		minLon, maxLon = maxLon, minLon
	}
	return Sector{MinLat: minLat, MaxLat: maxLat, MinLon: minLon, MaxLon: maxLon}
}

// FullSphere covers the whole globe.
func FullSphere() Sector {
	return Sector{MinLat: -90, MaxLat: 90, MinLon: -180, MaxLon: 180}
}

// IsEmpty reports whether the sector has zero area.
func (s Sector) IsEmpty() bool {
	return s.MinLat >= s.MaxLat || s.MinLon >= s.MaxLon
}

// DeltaLat returns the latitude extent.
func (s Sector) DeltaLat() float64 { return s.MaxLat - s.MinLat }

// DeltaLon returns the longitude extent.
func (s Sector) DeltaLon() float64 { return s.MaxLon - s.MinLon }

// Centroid returns the sector midpoint.
func (s Sector) Centroid() Location {
	return Location{Lat: 0.5 * (s.MinLat + s.MaxLat), Lon: 0.5 * (s.MinLon + s.MaxLon)}
}

// Contains reports whether the location lies inside or on the boundary.
func (s Sector) Contains(lat, lon float64) bool {
	return lat >= s.MinLat && lat <= s.MaxLat && lon >= s.MinLon && lon <= s.MaxLon
}

// ContainsSector reports whether other lies entirely inside s.
func (s Sector) ContainsSector(other Sector) bool {
	return other.MinLat >= s.MinLat && other.MaxLat <= s.MaxLat &&
		other.MinLon >= s.MinLon && other.MaxLon <= s.MaxLon
}

// Intersects reports whether the two sectors share any point, including a
// common edge or corner.
func (s Sector) Intersects(other Sector) bool {
	return other.MaxLon >= s.MinLon && other.MinLon <= s.MaxLon &&
		other.MaxLat >= s.MinLat && other.MinLat <= s.MaxLat
}

// Overlaps reports whether the two sectors share a region of positive area.
func (s Sector) Overlaps(other Sector) bool {
	return other.MaxLon > s.MinLon && other.MinLon < s.MaxLon &&
		other.MaxLat > s.MinLat && other.MinLat < s.MaxLat
}

// Intersection returns the common region, or EmptySector when the sectors
// do not overlap.
func (s Sector) Intersection(other Sector) Sector {
	r := Sector{
		MinLat: math.Max(s.MinLat, other.MinLat),
		MaxLat: math.Min(s.MaxLat, other.MaxLat),
		MinLon: math.Max(s.MinLon, other.MinLon),
		MaxLon: math.Min(s.MaxLon, other.MaxLon),
	}
	if r.IsEmpty() {
		return EmptySector
	}
	return r
}

// Union returns the smallest sector containing both. An empty operand is
// ignored.
func (s Sector) Union(other Sector) Sector {
	if s.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return s
	}
	return Sector{
		MinLat: math.Min(s.MinLat, other.MinLat),
		MaxLat: math.Max(s.MaxLat, other.MaxLat),
		MinLon: math.Min(s.MinLon, other.MinLon),
		MaxLon: math.Max(s.MaxLon, other.MaxLon),
	}
}

// Subdivide splits the sector at its midpoint into the south-west,
// south-east, north-west and north-east quadrants.
func (s Sector) Subdivide() [4]Sector {
	c := s.Centroid()
	return [4]Sector{
		{MinLat: s.MinLat, MaxLat: c.Lat, MinLon: s.MinLon, MaxLon: c.Lon},
		{MinLat: s.MinLat, MaxLat: c.Lat, MinLon: c.Lon, MaxLon: s.MaxLon},
		{MinLat: c.Lat, MaxLat: s.MaxLat, MinLon: s.MinLon, MaxLon: c.Lon},
		{MinLat: c.Lat, MaxLat: s.MaxLat, MinLon: c.Lon, MaxLon: s.MaxLon},
	}
}

// Corners returns the south-west, south-east, north-east and north-west
// corners, counter-clockwise.
func (s Sector) Corners() [4]Location {
	return [4]Location{
		{Lat: s.MinLat, Lon: s.MinLon},
		{Lat: s.MinLat, Lon: s.MaxLon},
		{Lat: s.MaxLat, Lon: s.MaxLon},
		{Lat: s.MaxLat, Lon: s.MinLon},
	}
}

// Bound converts the sector to an orb bound, with X as longitude.
func (s Sector) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{s.MinLon, s.MinLat},
		Max: orb.Point{s.MaxLon, s.MaxLat},
	}
}

// Polygon returns the sector outline as a closed orb polygon.
func (s Sector) Polygon() orb.Polygon {
	return s.Bound().ToPolygon()
}

// SectorFromBound converts an orb bound (X as longitude) to a sector.
func SectorFromBound(b orb.Bound) Sector {
	return NewSector(b.Min.Y(), b.Max.Y(), b.Min.X(), b.Max.X())
}

func (s Sector) String() string {
	return fmt.Sprintf("lat[%g, %g] lon[%g, %g]", s.MinLat, s.MaxLat, s.MinLon, s.MaxLon)
}
