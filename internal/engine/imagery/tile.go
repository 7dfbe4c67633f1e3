package imagery

import (
	"github.com/Faultbox/midgard-globe/internal/engine/tile"
	"github.com/Faultbox/midgard-globe/pkg/geo"
	"github.com/Faultbox/midgard-globe/pkg/math"
)

// TextureTile is an imagery tile selected for drawing, with the texture it
// draws. When its own texture is not resident yet it borrows a resident
// ancestor's: Source and TextureSector then name the ancestor.
type TextureTile struct {
	tile.Tile

	Texture       uint32
	Source        tile.Key
	TextureSector geo.Sector
}

// Fallback reports whether the tile draws an ancestor's texture.
func (t *TextureTile) Fallback() bool { return t.Source != t.Key }

// TextureMatrix maps the texture coordinates of a terrain tile covering
// surface to coordinates in a texture covering textured. Terrain
// coordinates grow north, while texture rows are uploaded north first, so
// the t axis is flipped.
func TextureMatrix(surface, textured geo.Sector) math.Mat4 {
	sx, sy, ox, oy := sectorTransform(surface, textured)
	return math.Translate(ox, 1-oy, 0).Mul(math.Scale(sx, -sy, 1))
}

// TileMatrix maps the texture coordinates of a terrain tile covering
// surface into the unit square of imagery sector s. The surface program
// discards fragments mapped outside [0,1], which clips each imagery tile to
// its own sector.
func TileMatrix(surface, s geo.Sector) math.Mat4 {
	sx, sy, ox, oy := sectorTransform(surface, s)
	return math.Translate(ox, oy, 0).Mul(math.Scale(sx, sy, 1))
}

func sectorTransform(from, to geo.Sector) (sx, sy, ox, oy float64) {
	sx = from.DeltaLon() / to.DeltaLon()
	sy = from.DeltaLat() / to.DeltaLat()
	ox = (from.MinLon - to.MinLon) / to.DeltaLon()
	oy = (from.MinLat - to.MinLat) / to.DeltaLat()
	return sx, sy, ox, oy
}
