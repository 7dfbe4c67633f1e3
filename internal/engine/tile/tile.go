package tile

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/midgard-globe/pkg/geo"
	"github.com/Faultbox/midgard-globe/pkg/math"
)

// Stamp records the inputs derived tile state was computed from. A stamp
// that differs from the current frame's means the state must be rebuilt.
type Stamp struct {
	VerticalExaggeration float64
	ElevationTimestamp   int64
}

// Tile is one quadtree node: a key, its sector and level, plus the world
// space bounding volume and reference points derived from the globe. Tile
// is a plain value; it never refers back to the engine that selected it.
type Tile struct {
	Key    Key
	Sector geo.Sector
	Level  *Level

	// Extent bounds the tile's surface between the sector's minimum and
	// maximum elevations. Valid only when HasExtent is true.
	Extent math.Box

	// ReferencePoints are the four sector corners followed by the centroid,
	// on the surface.
	ReferencePoints [5]math.Vec3

	HasExtent   bool
	ExtentStamp Stamp
}

// sizeInBytes approximates the memory held by a Tile value, for the cache.
const sizeInBytes = 256

// SizeInBytes implements cache.Sizer.
func (t Tile) SizeInBytes() int64 { return sizeInBytes }

// Subdivide splits t at its sector midpoint into the south-west, south-east,
// north-west and north-east children at level child. Child rows and
// columns are derived from the child level's delta and the tile origin, so
// the result does not depend on how t was reached.
func (t Tile) Subdivide(child *Level, origin geo.Location) [4]Tile {
	var children [4]Tile
	for i, s := range t.Sector.Subdivide() {
		children[i] = Tile{
			Key: Key{
				Level:  child.Index,
				Row:    int(gomath.Floor((s.MinLat-origin.Lat)/child.TileDelta.Lat + rowEpsilon)),
				Column: int(gomath.Floor((s.MinLon-origin.Lon)/child.TileDelta.Lon + rowEpsilon)),
			},
			Sector: s,
			Level:  child,
		}
	}
	return children
}

// ExtentValid reports whether the derived extent was computed for stamp.
func (t *Tile) ExtentValid(stamp Stamp) bool {
	return t.HasExtent && t.ExtentStamp == stamp
}

// SetExtent stores the derived bounding volume and reference points.
func (t *Tile) SetExtent(extent math.Box, refs [5]math.Vec3, stamp Stamp) {
	t.Extent = extent
	t.ReferencePoints = refs
	t.HasExtent = true
	t.ExtentStamp = stamp
}

// EyeDistance returns the distance from eye to the nearest reference point.
func (t *Tile) EyeDistance(eye math.Vec3) float64 {
	d := gomath.Inf(1)
	for _, p := range t.ReferencePoints {
		d = gomath.Min(d, eye.Distance(p))
	}
	return d
}

// DetailCriterion carries the view-dependent inputs of MustSubdivide.
type DetailCriterion struct {
	Eye         math.Vec3
	GlobeRadius float64

	// FieldOfViewScale is tan(fov/2) / tan(22.5°), clamped to [0, 1].
	FieldOfViewScale float64
}

// MustSubdivide reports whether the tile's cells, in meters, are larger than
// the fraction 10^-detailFactor of the eye distance. Larger detail factors
// refine further. The tile's reference points must be current.
func (t *Tile) MustSubdivide(c DetailCriterion, detailFactor float64) bool {
	texelMeters := t.Level.TexelSizeRadians() * c.GlobeRadius
	scaled := t.EyeDistance(c.Eye) * gomath.Pow(10, -detailFactor) * c.FieldOfViewScale
	return texelMeters > scaled
}

func (t Tile) String() string {
	return fmt.Sprintf("tile %v %v", t.Key, t.Sector)
}
