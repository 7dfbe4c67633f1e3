package terrain

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/midgard-globe/internal/engine/tile"
	"github.com/Faultbox/midgard-globe/internal/globe"
)

func TestSurfacePointAtVertex(t *testing.T) {
	f := newFixture(t, globe.NewEarth(nil), 10e3)
	f.frame()

	// Mesh vertex (row 2, column 4) of tile 4/44/89.
	lat, lon := 9.5625, 21.375
	p, ok := f.tess.SurfacePoint(lat, lon)
	if !ok {
		t.Fatal("no terrain at the vertex")
	}
	if d := p.Distance(f.globe.PointFromPosition(lat, lon, 0)); d > 0.1 {
		t.Errorf("vertex off by %g m", d)
	}
}

func TestSurfacePointBetweenVertices(t *testing.T) {
	f := newFixture(t, globe.NewEarth(nil), 10e3)
	f.frame()

	// Flat triangles sag below the ellipsoid between vertices.
	elev, ok := f.tess.Elevation(testLat, testLon)
	if !ok {
		t.Fatal("no terrain under the camera")
	}
	if elev > 0 || elev < -60 {
		t.Errorf("elevation %g m inside a cell", elev)
	}

	if _, ok := f.tess.SurfacePoint(-60, 100); ok {
		t.Error("surface point outside the coverage")
	}
	if _, ok := f.tess.Elevation(-60, 100); ok {
		t.Error("elevation outside the coverage")
	}
}

func TestSurfacePointCorners(t *testing.T) {
	g := globe.NewEarth(nil)
	_, geom := buildTestMesh(t, g, 1)
	s := geom.Sector
	stride := geom.RowStride()
	w, h := geom.TileWidth, geom.TileHeight

	tests := []struct {
		name     string
		lat, lon float64
		index    int
	}{
		{"south-west", s.MinLat, s.MinLon, stride + 1},
		{"south-east", s.MinLat, s.MaxLon, stride + w + 1},
		{"north-west", s.MaxLat, s.MinLon, (h+1)*stride + 1},
		{"north-east", s.MaxLat, s.MaxLon, (h+1)*stride + w + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SurfacePoint(geom, tt.lat, tt.lon)
			if d := got.Distance(geom.Point(tt.index)); d > 1e-6 {
				t.Errorf("corner off by %g m", d)
			}
		})
	}
}

func TestIntersectStraightDown(t *testing.T) {
	f := newFixture(t, globe.NewEarth(nil), 10e3)
	f.frame()

	hits := f.tess.Intersect(f.dc.View.RayThroughScreenPoint(320, 240))
	if len(hits) == 0 {
		t.Fatal("no hit")
	}
	hit := hits[0]
	if hit.Tile != (tile.Key{Level: 4, Row: 44, Column: 89}) {
		t.Errorf("hit tile %v", hit.Tile)
	}
	pos := f.globe.PositionFromPoint(hit.Point)
	if gomath.Abs(pos.Lat-testLat) > 1e-4 || gomath.Abs(pos.Lon-testLon) > 1e-4 {
		t.Errorf("hit at %v, want (%g, %g)", pos, testLat, testLon)
	}
	if pos.Elevation > 0 || pos.Elevation < -60 {
		t.Errorf("hit elevation %g", pos.Elevation)
	}
}
