package terrain

import (
	gomath "math"

	"github.com/Faultbox/midgard-globe/internal/engine/tile"
	"github.com/Faultbox/midgard-globe/internal/globe"
	"github.com/Faultbox/midgard-globe/pkg/geo"
	"github.com/Faultbox/midgard-globe/pkg/math"
)

// extentSamples is the number of samples per sector edge used to bound a
// tile.
const extentSamples = 5

// UpdateExtent recomputes the tile's bounding box and reference points when
// they were derived from another exaggeration or elevation model state.
func UpdateExtent(g globe.Globe, ve float64, tl *tile.Tile) bool {
	stamp := tile.Stamp{
		VerticalExaggeration: ve,
		ElevationTimestamp:   g.ElevationModel().Timestamp(),
	}
	if tl.ExtentValid(stamp) {
		return false
	}
	tl.SetExtent(computeExtent(g, ve, tl.Sector), referencePoints(g, ve, tl.Sector), stamp)
	return true
}

// computeExtent bounds the sector's surface between its minimum and maximum
// elevations. The sampled box is padded by the sagitta of one sample cell
// so curvature between samples stays inside.
func computeExtent(g globe.Globe, ve float64, s geo.Sector) math.Box {
	minElev, maxElev := g.MinAndMaxElevations(s)
	minElev *= ve
	maxElev *= ve
	if minElev > maxElev {
		minElev, maxElev = maxElev, minElev
	}

	box := math.EmptyBox()
	dLat := s.DeltaLat() / (extentSamples - 1)
	dLon := s.DeltaLon() / (extentSamples - 1)
	for i := 0; i < extentSamples; i++ {
		lat := s.MinLat + float64(i)*dLat
		if i == extentSamples-1 {
			lat = s.MaxLat
		}
		for j := 0; j < extentSamples; j++ {
			lon := s.MinLon + float64(j)*dLon
			if j == extentSamples-1 {
				lon = s.MaxLon
			}
			box = box.Extend(g.PointFromPosition(lat, lon, minElev))
			box = box.Extend(g.PointFromPosition(lat, lon, maxElev))
		}
	}

	cell := geo.Radians(gomath.Hypot(dLat, dLon))
	pad := (g.Radius() + gomath.Max(maxElev, 0)) * (1 - gomath.Cos(cell/2))
	return box.Expand(pad)
}

// referencePoints returns the sector's corners and centroid on the
// exaggerated surface.
func referencePoints(g globe.Globe, ve float64, s geo.Sector) [5]math.Vec3 {
	var refs [5]math.Vec3
	for i, c := range s.Corners() {
		refs[i] = g.PointFromPosition(c.Lat, c.Lon, g.Elevation(c.Lat, c.Lon)*ve)
	}
	c := s.Centroid()
	refs[4] = g.PointFromPosition(c.Lat, c.Lon, g.Elevation(c.Lat, c.Lon)*ve)
	return refs
}
