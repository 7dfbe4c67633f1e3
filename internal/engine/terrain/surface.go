package terrain

import (
	gomath "math"
	"sort"

	"github.com/Faultbox/midgard-globe/internal/engine/picking"
	"github.com/Faultbox/midgard-globe/internal/engine/tile"
	"github.com/Faultbox/midgard-globe/pkg/math"
)

// Intersection is one ray hit on the selected terrain.
type Intersection struct {
	Point    math.Vec3
	Distance float64
	Tile     tile.Key
}

// SurfacePoint returns the model point of the selected terrain mesh at
// (lat, lon). ok is false when no tile selected last frame contains the
// location.
func (t *Tessellator) SurfacePoint(lat, lon float64) (p math.Vec3, ok bool) {
	for _, st := range t.current.Tiles {
		if st.Sector.Contains(lat, lon) {
			return SurfacePoint(st.Geometry, lat, lon), true
		}
	}
	return p, false
}

// Elevation returns the elevation of the drawn terrain at (lat, lon),
// vertical exaggeration included.
func (t *Tessellator) Elevation(lat, lon float64) (float64, bool) {
	p, ok := t.SurfacePoint(lat, lon)
	if !ok {
		return 0, false
	}
	return t.globe.PositionFromPoint(p).Elevation, true
}

// SurfacePoint interpolates geom at (lat, lon), which must lie in its
// sector. Each cell is split along its south-west to north-east diagonal,
// matching the drawn triangles.
func SurfacePoint(geom *Geometry, lat, lon float64) math.Vec3 {
	s := geom.Sector
	w, h := geom.TileWidth, geom.TileHeight

	sf := (lon - s.MinLon) / s.DeltaLon() * float64(w)
	tf := (lat - s.MinLat) / s.DeltaLat() * float64(h)
	si := clampInt(int(gomath.Floor(sf)), 0, w-1)
	ti := clampInt(int(gomath.Floor(tf)), 0, h-1)
	ss := sf - float64(si)
	ts := tf - float64(ti)

	// +1 skips the skirt row and column.
	stride := geom.RowStride()
	ll := (ti+1)*stride + si + 1
	pll := geom.Point(ll)
	plr := geom.Point(ll + 1)
	pul := geom.Point(ll + stride)
	pur := geom.Point(ll + stride + 1)

	if ss < ts {
		// upper-left triangle
		return pll.Add(pur.Sub(pul).Scale(ss)).Add(pul.Sub(pll).Scale(ts))
	}
	// lower-right triangle
	return pll.Add(plr.Sub(pll).Scale(ss)).Add(pur.Sub(plr).Scale(ts))
}

// Intersect returns the hits of ray on the tiles selected last frame,
// nearest first. Skirts are ignored.
func (t *Tessellator) Intersect(ray picking.Ray) []Intersection {
	var hits []Intersection
	for _, st := range t.current.Tiles {
		if _, hit := ray.IntersectBox(st.Extent); !hit {
			continue
		}
		hits = intersectGeometry(ray, st.Key, st.Geometry, hits)
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

func intersectGeometry(ray picking.Ray, k tile.Key, geom *Geometry, hits []Intersection) []Intersection {
	stride := geom.RowStride()
	for j := 1; j <= geom.TileHeight; j++ {
		for i := 1; i <= geom.TileWidth; i++ {
			ll := j*stride + i
			pll := geom.Point(ll)
			plr := geom.Point(ll + 1)
			pul := geom.Point(ll + stride)
			pur := geom.Point(ll + stride + 1)

			if d, hit := ray.IntersectTriangle(pul, pll, pur); hit {
				hits = append(hits, Intersection{Point: ray.PointAt(d), Distance: d, Tile: k})
			}
			if d, hit := ray.IntersectTriangle(pur, pll, plr); hit {
				hits = append(hits, Intersection{Point: ray.PointAt(d), Distance: d, Tile: k})
			}
		}
	}
	return hits
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
