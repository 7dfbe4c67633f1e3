package globe

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/midgard-globe/pkg/geo"
	"github.com/Faultbox/midgard-globe/pkg/math"
)

// WGS84 ellipsoid parameters.
const (
	WGS84EquatorialRadius = 6378137.0
	WGS84PolarRadius      = 6356752.3142
	WGS84EccentricitySq   = 0.00669437999013
)

// Ellipsoid is an ellipsoidal Globe.
type Ellipsoid struct {
	equatorial float64
	polar      float64
	e2         float64
	model      ElevationModel
}

// NewEllipsoid returns a globe with the given radii. A nil model means no
// elevations.
func NewEllipsoid(equatorial, polar float64, model ElevationModel) *Ellipsoid {
	if model == nil {
		model = ZeroElevationModel{}
	}
	e2 := 1 - (polar*polar)/(equatorial*equatorial)
	return &Ellipsoid{equatorial: equatorial, polar: polar, e2: e2, model: model}
}

// NewEarth returns a WGS84 globe.
func NewEarth(model ElevationModel) *Ellipsoid {
	g := NewEllipsoid(WGS84EquatorialRadius, WGS84PolarRadius, model)
	g.e2 = WGS84EccentricitySq
	g.polar = WGS84EquatorialRadius * gomath.Sqrt(1-WGS84EccentricitySq)
	return g
}

func (g *Ellipsoid) Radius() float64           { return gomath.Max(g.equatorial, g.polar) }
func (g *Ellipsoid) EquatorialRadius() float64 { return g.equatorial }
func (g *Ellipsoid) PolarRadius() float64      { return g.polar }

func (g *Ellipsoid) ElevationModel() ElevationModel { return g.model }

func (g *Ellipsoid) Elevation(lat, lon float64) float64 { return g.model.Elevation(lat, lon) }
func (g *Ellipsoid) MinElevation() float64              { return g.model.MinElevation() }
func (g *Ellipsoid) MaxElevation() float64              { return g.model.MaxElevation() }

func (g *Ellipsoid) MinAndMaxElevations(sector geo.Sector) (float64, float64) {
	return g.model.MinAndMaxElevations(sector)
}

func (g *Ellipsoid) BestResolution(sector geo.Sector) float64 {
	return g.model.BestResolution(sector)
}

// ElevationsForGrid samples the elevation model. The target resolution is
// advisory; in-memory models always sample at full resolution.
func (g *Ellipsoid) ElevationsForGrid(sector geo.Sector, numLat, numLon int, targetResolution float64, dst []float64) error {
	if err := checkGrid(numLat, numLon, len(dst)); err != nil {
		return err
	}
	dLat := sector.DeltaLat() / float64(max(numLat-1, 1))
	dLon := sector.DeltaLon() / float64(max(numLon-1, 1))

	i := 0
	for r := 0; r < numLat; r++ {
		lat := sector.MinLat + float64(r)*dLat
		if r == numLat-1 {
			lat = sector.MaxLat
		}
		for c := 0; c < numLon; c++ {
			lon := sector.MinLon + float64(c)*dLon
			if c == numLon-1 {
				lon = sector.MaxLon
			}
			dst[i] = g.model.Elevation(lat, lon)
			i++
		}
	}
	return nil
}

func (g *Ellipsoid) PointsForGrid(sector geo.Sector, numLat, numLon int, elevations []float64, dst []math.Vec3) error {
	if err := checkGrid(numLat, numLon, len(dst)); err != nil {
		return err
	}
	lats := gridAxis(sector.MinLat, sector.MaxLat, numLat)
	lons := gridAxis(sector.MinLon, sector.MaxLon, numLon)
	return g.PointsForLatLonGrid(lats, lons, elevations, dst)
}

// PointsForLatLonGrid computes longitude trigonometry once per column and
// latitude trigonometry once per row.
func (g *Ellipsoid) PointsForLatLonGrid(lats, lons, elevations []float64, dst []math.Vec3) error {
	n := len(lats) * len(lons)
	if len(elevations) < n || len(dst) < n {
		return fmt.Errorf("%w: grid %dx%d needs %d elevations and points, got %d and %d",
			ErrInvalidArgument, len(lats), len(lons), n, len(elevations), len(dst))
	}

	cosLon := make([]float64, len(lons))
	sinLon := make([]float64, len(lons))
	for j, lon := range lons {
		sinLon[j], cosLon[j] = gomath.Sincos(geo.Radians(lon))
	}

	i := 0
	for _, lat := range lats {
		sinLat, cosLat := gomath.Sincos(geo.Radians(lat))
		rpm := g.equatorial / gomath.Sqrt(1-g.e2*sinLat*sinLat)
		for j := range lons {
			h := elevations[i]
			dst[i] = math.Vec3{
				X: (rpm + h) * cosLat * sinLon[j],
				Y: (rpm*(1-g.e2) + h) * sinLat,
				Z: (rpm + h) * cosLat * cosLon[j],
			}
			i++
		}
	}
	return nil
}

func (g *Ellipsoid) PointFromPosition(lat, lon, elevation float64) math.Vec3 {
	sinLat, cosLat := gomath.Sincos(geo.Radians(lat))
	sinLon, cosLon := gomath.Sincos(geo.Radians(lon))
	rpm := g.equatorial / gomath.Sqrt(1-g.e2*sinLat*sinLat)
	return math.Vec3{
		X: (rpm + elevation) * cosLat * sinLon,
		Y: (rpm*(1-g.e2) + elevation) * sinLat,
		Z: (rpm + elevation) * cosLat * cosLon,
	}
}

// PositionFromPoint inverts PointFromPosition with a fixed-point iteration
// on latitude.
func (g *Ellipsoid) PositionFromPoint(p math.Vec3) geo.Position {
	lon := gomath.Atan2(p.X, p.Z)
	rho := gomath.Hypot(p.X, p.Z)

	if rho < 1e-9 {
		lat := 90.0
		if p.Y < 0 {
			lat = -90
		}
		return geo.Position{Lat: lat, Lon: geo.Degrees(lon), Elevation: gomath.Abs(p.Y) - g.polar}
	}

	lat := gomath.Atan2(p.Y, rho*(1-g.e2))
	var h float64
	for i := 0; i < 10; i++ {
		sinLat, cosLat := gomath.Sincos(lat)
		n := g.equatorial / gomath.Sqrt(1-g.e2*sinLat*sinLat)
		h = rho/cosLat - n
		next := gomath.Atan2(p.Y, rho*(1-g.e2*n/(n+h)))
		if gomath.Abs(next-lat) < 1e-14 {
			lat = next
			break
		}
		lat = next
	}
	sinLat, cosLat := gomath.Sincos(lat)
	n := g.equatorial / gomath.Sqrt(1-g.e2*sinLat*sinLat)
	h = rho/cosLat - n

	return geo.Position{Lat: geo.Degrees(lat), Lon: geo.Degrees(lon), Elevation: h}
}

// SurfaceNormal returns the unit ellipsoid normal at the location.
func (g *Ellipsoid) SurfaceNormal(lat, lon float64) math.Vec3 {
	sinLat, cosLat := gomath.Sincos(geo.Radians(lat))
	sinLon, cosLon := gomath.Sincos(geo.Radians(lon))
	return math.Vec3{X: cosLat * sinLon, Y: sinLat, Z: cosLat * cosLon}
}

func checkGrid(numLat, numLon, n int) error {
	if numLat < 1 || numLon < 1 {
		return fmt.Errorf("%w: grid dimensions %dx%d", ErrInvalidArgument, numLat, numLon)
	}
	if n < numLat*numLon {
		return fmt.Errorf("%w: buffer holds %d of %d samples", ErrInvalidArgument, n, numLat*numLon)
	}
	return nil
}

// gridAxis returns n evenly spaced values from lo to hi, with the last one
// exactly hi.
func gridAxis(lo, hi float64, n int) []float64 {
	v := make([]float64, n)
	if n == 1 {
		v[0] = lo
		return v
	}
	d := (hi - lo) / float64(n-1)
	for i := range v {
		v[i] = lo + float64(i)*d
	}
	v[n-1] = hi
	return v
}
