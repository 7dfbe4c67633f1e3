// Package globe models the planet the tessellator drapes tiles over: an
// ellipsoid in Y-up Cartesian coordinates plus an elevation model.
//
// Cartesian convention: +Y points to the north pole, +Z to (0°, 0°) and
// +X to (0°, 90°E).
package globe

import (
	"errors"

	"github.com/Faultbox/midgard-globe/pkg/geo"
	"github.com/Faultbox/midgard-globe/pkg/math"
)

// ErrInvalidArgument reports malformed grid or buffer arguments.
var ErrInvalidArgument = errors.New("globe: invalid argument")

// Globe is what the tessellator needs from the planet.
type Globe interface {
	// Radius returns the largest radius, used to convert angles to meters.
	Radius() float64
	EquatorialRadius() float64
	PolarRadius() float64

	ElevationModel() ElevationModel

	// Elevation returns the surface elevation in meters, 0 where unknown.
	Elevation(lat, lon float64) float64
	MinElevation() float64
	MaxElevation() float64
	MinAndMaxElevations(sector geo.Sector) (min, max float64)

	// BestResolution returns the finest elevation resolution available in
	// sector, in radians per sample.
	BestResolution(sector geo.Sector) float64

	// ElevationsForGrid fills dst with numLat*numLon elevations sampled on
	// a regular grid spanning sector, rows from south to north.
	ElevationsForGrid(sector geo.Sector, numLat, numLon int, targetResolution float64, dst []float64) error

	// PointsForGrid converts a regular grid of elevations into Cartesian
	// points, in the same order as ElevationsForGrid.
	PointsForGrid(sector geo.Sector, numLat, numLon int, elevations []float64, dst []math.Vec3) error

	// PointsForLatLonGrid converts the grid formed by every (lats[i],
	// lons[j]) pair, rows by latitude, into Cartesian points.
	PointsForLatLonGrid(lats, lons, elevations []float64, dst []math.Vec3) error

	PointFromPosition(lat, lon, elevation float64) math.Vec3
	PositionFromPoint(p math.Vec3) geo.Position
	SurfaceNormal(lat, lon float64) math.Vec3
}
