package terrain

import (
	"image"

	"github.com/paulmach/orb/geojson"

	"github.com/Faultbox/midgard-globe/internal/engine/frame"
	"github.com/Faultbox/midgard-globe/internal/engine/picking"
	"github.com/Faultbox/midgard-globe/pkg/geo"
)

// TileList is the ordered set of tiles selected for one frame. Tiles are in
// traversal order, which is also the draw and pick order.
type TileList struct {
	Tiles []*SurfaceTile

	// Sector is the union of the tile sectors.
	Sector geo.Sector

	tessellator *Tessellator
}

// Len returns the number of selected tiles.
func (l *TileList) Len() int { return len(l.Tiles) }

// Tessellator returns the tessellator that produced the list.
func (l *TileList) Tessellator() *Tessellator { return l.tessellator }

// BeginRendering prepares the graphics context for Render calls.
func (l *TileList) BeginRendering(dc *frame.Context) bool {
	return l.tessellator.BeginRendering(dc)
}

// Render draws one tile of the list.
func (l *TileList) Render(dc *frame.Context, st *SurfaceTile) {
	l.tessellator.Render(dc, st)
}

// EndRendering undoes BeginRendering.
func (l *TileList) EndRendering(dc *frame.Context) {
	l.tessellator.EndRendering(dc)
}

// Pick resolves a window pixel against the list.
func (l *TileList) Pick(dc *frame.Context, p image.Point) *picking.PickedObject {
	return l.tessellator.Pick(dc, l, p)
}

// Sectors returns the tile sectors in list order.
func (l *TileList) Sectors() []geo.Sector {
	out := make([]geo.Sector, len(l.Tiles))
	for i, st := range l.Tiles {
		out[i] = st.Sector
	}
	return out
}

// FeatureCollection exports the selected sectors as GeoJSON polygons with
// the tile key as properties.
func (l *TileList) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, st := range l.Tiles {
		f := geojson.NewFeature(st.Sector.Polygon())
		f.Properties["level"] = st.Key.Level
		f.Properties["row"] = st.Key.Row
		f.Properties["column"] = st.Key.Column
		f.Properties["key"] = st.Key.String()
		fc.Append(f)
	}
	return fc
}
