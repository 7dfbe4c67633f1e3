// Package terrain tessellates the globe surface: every frame it selects a
// quadtree of tiles refined to a screen-space detail target, builds or reuses
// a skirted mesh per selected tile and draws or picks them.
package terrain

import (
	"github.com/google/uuid"

	"github.com/Faultbox/midgard-globe/internal/engine/tile"
	"github.com/Faultbox/midgard-globe/pkg/geo"
	"github.com/Faultbox/midgard-globe/pkg/math"
)

// geometryOverhead approximates the fixed cost of a Geometry beyond its
// point slice.
const geometryOverhead = 256

// Geometry is the CPU mesh of one tile. Points holds (h+3)*(w+3) xyz
// triplets relative to ReferenceCenter, rows from south to north, with a
// skirt row or column on every side.
type Geometry struct {
	Sector          geo.Sector
	ReferenceCenter math.Vec3
	Transform       math.Mat4
	Points          []float32
	TileWidth       int
	TileHeight      int

	// Token identifies the geometry's buffers in the GPU cache.
	Token uuid.UUID

	// VerticalExaggeration the points were built with.
	VerticalExaggeration float64

	dirty   bool // points changed since the last upload
	expired bool // an expiration event touched the sector
}

// SizeInBytes implements cache.Sizer.
func (g *Geometry) SizeInBytes() int64 {
	return int64(len(g.Points))*4 + geometryOverhead
}

// RowStride is the number of points per row, skirts included.
func (g *Geometry) RowStride() int { return g.TileWidth + 3 }

// Point returns point i in model coordinates.
func (g *Geometry) Point(i int) math.Vec3 {
	return math.Vec3{
		X: float64(g.Points[3*i]) + g.ReferenceCenter.X,
		Y: float64(g.Points[3*i+1]) + g.ReferenceCenter.Y,
		Z: float64(g.Points[3*i+2]) + g.ReferenceCenter.Z,
	}
}

// Dirty reports whether the points must be uploaded again.
func (g *Geometry) Dirty() bool { return g.dirty }

// SharedGeometry holds the buffers every tile with the same dimensions
// draws with: texture coordinates and the strip, wireframe and outline
// indices.
type SharedGeometry struct {
	Width  int
	Height int

	TexCoords        []float32
	Indices          []uint32
	WireframeIndices []uint32
	OutlineIndices   []uint32

	TexCoordToken  uuid.UUID
	IndicesToken   uuid.UUID
	WireframeToken uuid.UUID
	OutlineToken   uuid.UUID
}

func newSharedGeometry(width, height int) *SharedGeometry {
	return &SharedGeometry{
		Width:            width,
		Height:           height,
		TexCoords:        buildTexCoords(width, height),
		Indices:          buildIndices(width, height),
		WireframeIndices: buildWireframeIndices(width, height),
		OutlineIndices:   buildOutlineIndices(width, height),
		TexCoordToken:    uuid.New(),
		IndicesToken:     uuid.New(),
		WireframeToken:   uuid.New(),
		OutlineToken:     uuid.New(),
	}
}

type dims struct{ width, height int }

// SurfaceTile is a selected tile together with the geometry it draws.
type SurfaceTile struct {
	tile.Tile
	Geometry *Geometry
}
