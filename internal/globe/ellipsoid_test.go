package globe

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/midgard-globe/pkg/geo"
	"github.com/Faultbox/midgard-globe/pkg/math"
)

func near(a, b, tol float64) bool { return gomath.Abs(a-b) <= tol }

func TestPointFromPositionAxes(t *testing.T) {
	g := NewEarth(nil)

	tests := []struct {
		name          string
		lat, lon, alt float64
		want          math.Vec3
	}{
		{"prime meridian on equator", 0, 0, 0, math.Vec3{Z: WGS84EquatorialRadius}},
		{"90 east on equator", 0, 90, 0, math.Vec3{X: WGS84EquatorialRadius}},
		{"north pole", 90, 0, 0, math.Vec3{Y: WGS84PolarRadius}},
		{"raised equator", 0, 0, 1000, math.Vec3{Z: WGS84EquatorialRadius + 1000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.PointFromPosition(tt.lat, tt.lon, tt.alt)
			if got.Distance(tt.want) > 1e-3 {
				t.Errorf("PointFromPosition() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPositionRoundTrip(t *testing.T) {
	g := NewEarth(nil)

	positions := []geo.Position{
		{Lat: 0, Lon: 0, Elevation: 0},
		{Lat: 45, Lon: -122.5, Elevation: 1200},
		{Lat: -33.9, Lon: 151.2, Elevation: -50},
		{Lat: 89.5, Lon: 10, Elevation: 3000},
		{Lat: 90, Lon: 0, Elevation: 10},
	}
	for _, p := range positions {
		got := g.PositionFromPoint(g.PointFromPosition(p.Lat, p.Lon, p.Elevation))
		if !near(got.Lat, p.Lat, 1e-9) || !near(got.Elevation, p.Elevation, 1e-4) {
			t.Errorf("round trip of %+v = %+v", p, got)
		}
		if gomath.Abs(p.Lat) < 90 && !near(got.Lon, p.Lon, 1e-9) {
			t.Errorf("round trip longitude of %+v = %v", p, got.Lon)
		}
	}
}

func TestPointsForGridMatchesPointFromPosition(t *testing.T) {
	g := NewEarth(nil)
	s := geo.NewSector(10, 20, 30, 45)
	const numLat, numLon = 3, 4

	elev := make([]float64, numLat*numLon)
	for i := range elev {
		elev[i] = float64(i * 100)
	}
	pts := make([]math.Vec3, numLat*numLon)
	if err := g.PointsForGrid(s, numLat, numLon, elev, pts); err != nil {
		t.Fatalf("PointsForGrid() error = %v", err)
	}

	lats := []float64{10, 15, 20}
	lons := []float64{30, 35, 40, 45}
	for r, lat := range lats {
		for c, lon := range lons {
			i := r*numLon + c
			want := g.PointFromPosition(lat, lon, elev[i])
			if pts[i].Distance(want) > 1e-6 {
				t.Errorf("point %d = %v, want %v", i, pts[i], want)
			}
		}
	}
}

func TestGridArgumentValidation(t *testing.T) {
	g := NewEarth(nil)
	s := geo.NewSector(0, 1, 0, 1)

	if err := g.ElevationsForGrid(s, 0, 3, 0, make([]float64, 9)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero rows: error = %v, want ErrInvalidArgument", err)
	}
	if err := g.ElevationsForGrid(s, 3, 3, 0, make([]float64, 8)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("short buffer: error = %v, want ErrInvalidArgument", err)
	}
	if err := g.PointsForGrid(s, 3, 3, make([]float64, 9), make([]math.Vec3, 4)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("short points: error = %v, want ErrInvalidArgument", err)
	}
}

func TestSurfaceNormalIsUnit(t *testing.T) {
	g := NewEarth(nil)
	n := g.SurfaceNormal(37, -122)
	if !near(n.Length(), 1, 1e-12) {
		t.Errorf("SurfaceNormal length = %v", n.Length())
	}
	if up := g.SurfaceNormal(90, 0); up.Distance(math.Vec3{Y: 1}) > 1e-12 {
		t.Errorf("SurfaceNormal(north pole) = %v", up)
	}
}
