// Package camera provides the globe orbit camera and the per-frame view it
// produces.
package camera

import (
	"image"
	gomath "math"

	"github.com/Faultbox/midgard-globe/internal/globe"
	"github.com/Faultbox/midgard-globe/pkg/geo"
	"github.com/Faultbox/midgard-globe/pkg/math"
)

// GlobeCamera orbits a location on the globe.
type GlobeCamera struct {
	// Look-at location, degrees
	Lat, Lon float64

	// Range is the distance from the look-at point to the eye, meters.
	Range float64

	// Orientation, degrees. Heading is clockwise from north; tilt is
	// measured from the local vertical.
	Heading float64
	Tilt    float64

	// FieldOfView is the vertical field of view, degrees.
	FieldOfView float64

	// Constraints
	MinRange float64
	MaxRange float64
	MaxTilt  float64

	// Sensitivity
	DragSensitivity float64
	ZoomSensitivity float64
	TurnSensitivity float64
}

// NewGlobeCamera creates a camera looking straight down at (0, 0) from far
// enough away to see the whole globe.
func NewGlobeCamera() *GlobeCamera {
	return &GlobeCamera{
		Range:           2.0e7,
		FieldOfView:     45,
		MinRange:        100,
		MaxRange:        5.0e7,
		MaxTilt:         85,
		DragSensitivity: 0.002,
		ZoomSensitivity: 0.1,
		TurnSensitivity: 0.25,
	}
}

// Frame returns the orthonormal local frame at the look-at location:
// surface normal, north and east.
func (c *GlobeCamera) Frame(g globe.Globe) (normal, north, east math.Vec3) {
	lat, lon := geo.Radians(c.Lat), geo.Radians(c.Lon)
	sinLat, cosLat := gomath.Sincos(lat)
	sinLon, cosLon := gomath.Sincos(lon)

	normal = g.SurfaceNormal(c.Lat, c.Lon)
	north = math.Vec3{X: -sinLat * sinLon, Y: cosLat, Z: -sinLat * cosLon}
	east = math.Vec3{X: cosLon, Y: 0, Z: -sinLon}
	return normal, north, east
}

// Pose returns the eye, look-at and up vectors in model coordinates. The
// look-at point sits on the terrain scaled by verticalExaggeration.
func (c *GlobeCamera) Pose(g globe.Globe, verticalExaggeration float64) (eye, center, up math.Vec3) {
	center = g.PointFromPosition(c.Lat, c.Lon, g.Elevation(c.Lat, c.Lon)*verticalExaggeration)
	normal, north, east := c.Frame(g)

	sinH, cosH := gomath.Sincos(geo.Radians(c.Heading))
	sinT, cosT := gomath.Sincos(geo.Radians(c.Tilt))
	forward := north.Scale(cosH).Add(east.Scale(sinH))

	dir := normal.Scale(cosT).Sub(forward.Scale(sinT))
	eye = center.Add(dir.Scale(c.Range))
	up = normal.Scale(sinT).Add(forward.Scale(cosT))
	return eye, center, up
}

// View builds the frame's view for a viewport of the given size.
func (c *GlobeCamera) View(g globe.Globe, verticalExaggeration float64, width, height int) *View {
	eye, center, up := c.Pose(g, verticalExaggeration)
	near, far := ClipDistances(g, eye, verticalExaggeration, c.FieldOfView)
	return NewView(eye, center, up, c.FieldOfView, image.Rect(0, 0, width, height), near, far)
}

// HandleDrag pans the look-at location by a mouse drag in pixels.
func (c *GlobeCamera) HandleDrag(deltaX, deltaY float64) {
	step := c.DragSensitivity * c.Range / globe.WGS84EquatorialRadius
	forward := deltaY * step
	right := -deltaX * step

	sinH, cosH := gomath.Sincos(geo.Radians(c.Heading))
	dLat := forward*cosH - right*sinH
	dLon := forward*sinH + right*cosH

	cosLat := gomath.Cos(geo.Radians(c.Lat))
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	c.Lat = geo.ClampLatitude(c.Lat + geo.Degrees(dLat))
	c.Lon = geo.NormalizeLongitude(c.Lon + geo.Degrees(dLon)/cosLat)
}

// HandleZoom updates the range based on scroll wheel delta.
func (c *GlobeCamera) HandleZoom(delta float64) {
	c.Range -= delta * c.Range * c.ZoomSensitivity
	c.Range = clamp(c.Range, c.MinRange, c.MaxRange)
}

// HandleTurn changes heading and tilt by a drag in pixels.
func (c *GlobeCamera) HandleTurn(deltaX, deltaY float64) {
	c.Heading = gomath.Mod(c.Heading+deltaX*c.TurnSensitivity, 360)
	if c.Heading < 0 {
		c.Heading += 360
	}
	c.Tilt = clamp(c.Tilt+deltaY*c.TurnSensitivity, 0, c.MaxTilt)
}

// LookAt moves the camera over loc, keeping heading and tilt.
func (c *GlobeCamera) LookAt(loc geo.Location, rng float64) {
	c.Lat = geo.ClampLatitude(loc.Lat)
	c.Lon = geo.NormalizeLongitude(loc.Lon)
	c.Range = clamp(rng, c.MinRange, c.MaxRange)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
