package camera

import (
	"image"
	gomath "math"

	"github.com/Faultbox/midgard-globe/internal/engine/picking"
	"github.com/Faultbox/midgard-globe/internal/globe"
	"github.com/Faultbox/midgard-globe/pkg/geo"
	"github.com/Faultbox/midgard-globe/pkg/math"
)

// referenceFieldOfView is the field of view at which the detail criterion
// is unscaled, degrees.
const referenceFieldOfView = 45.0

// View is an immutable per-frame snapshot of the camera: matrices, viewport
// and the view frustum in model coordinates.
type View struct {
	Eye    math.Vec3
	Center math.Vec3
	Up     math.Vec3

	Modelview           math.Mat4
	Projection          math.Mat4
	ModelviewProjection math.Mat4
	inverseMVP          math.Mat4

	Viewport    image.Rectangle
	Frustum     math.Frustum
	FieldOfView float64 // vertical, degrees
	NearClip    float64
	FarClip     float64
}

// NewView builds a view looking from eye to center.
func NewView(eye, center, up math.Vec3, fieldOfView float64, viewport image.Rectangle, near, far float64) *View {
	w, h := viewport.Dx(), viewport.Dy()
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}

	mv := math.LookAt(eye, center, up)
	proj := math.Perspective(geo.Radians(fieldOfView), float64(w)/float64(h), near, far)
	mvp := proj.Mul(mv)

	return &View{
		Eye:                 eye,
		Center:              center,
		Up:                  up,
		Modelview:           mv,
		Projection:          proj,
		ModelviewProjection: mvp,
		inverseMVP:          mvp.Inverse(),
		Viewport:            image.Rect(viewport.Min.X, viewport.Min.Y, viewport.Min.X+w, viewport.Min.Y+h),
		Frustum:             math.FrustumFromMatrix(mvp),
		FieldOfView:         fieldOfView,
		NearClip:            near,
		FarClip:             far,
	}
}

// ClipDistances picks near and far clip distances for an eye position: far
// reaches the horizon plus the horizon of the highest terrain, near keeps
// the terrain under the eye in front of the near plane.
func ClipDistances(g globe.Globe, eye math.Vec3, verticalExaggeration, fieldOfView float64) (near, far float64) {
	pos := g.PositionFromPoint(eye)
	r := g.Radius()

	height := gomath.Max(pos.Elevation, 1)
	maxElevation := gomath.Max(g.MaxElevation()*verticalExaggeration, 0)
	far = gomath.Sqrt(height*(2*r+height)) + gomath.Sqrt(maxElevation*(2*r+maxElevation))

	clearance := pos.Elevation - g.Elevation(pos.Lat, pos.Lon)*verticalExaggeration
	tanHalf := gomath.Tan(geo.Radians(fieldOfView) / 2)
	near = clearance / (2 * gomath.Sqrt(2*tanHalf*tanHalf+1))
	if near < 1 {
		near = 1
	}
	if far < 2*near {
		far = 2 * near
	}
	return near, far
}

// FieldOfViewScale is tan(fov/2) / tan(22.5°), clamped to [0, 1]. Narrow
// fields of view lower it, which makes the terrain refine further.
func (v *View) FieldOfViewScale() float64 {
	s := gomath.Tan(geo.Radians(v.FieldOfView)/2) / gomath.Tan(geo.Radians(referenceFieldOfView)/2)
	return clamp(s, 0, 1)
}

// PixelSizeAtDistance returns the size in meters of one pixel at distance d
// from the eye.
func (v *View) PixelSizeAtDistance(d float64) float64 {
	return 2 * d * gomath.Tan(geo.Radians(v.FieldOfView)/2) / float64(v.Viewport.Dy())
}

// RayThroughScreenPoint returns the ray from the eye through window pixel
// (x, y), with y measured from the top of the window.
func (v *View) RayThroughScreenPoint(x, y float64) picking.Ray {
	return picking.ScreenToRay(
		x-float64(v.Viewport.Min.X), y-float64(v.Viewport.Min.Y),
		float64(v.Viewport.Dx()), float64(v.Viewport.Dy()),
		v.inverseMVP,
	)
}

// Project maps a model point to window coordinates (y from the top) and a
// depth in [0, 1]. ok is false for points behind the eye.
func (v *View) Project(p math.Vec3) (x, y, depth float64, ok bool) {
	c := v.ModelviewProjection.MulVec4(math.Vec4{p.X, p.Y, p.Z, 1})
	if c[3] <= 0 {
		return 0, 0, 0, false
	}
	nx, ny, nz := c[0]/c[3], c[1]/c[3], c[2]/c[3]
	x = float64(v.Viewport.Min.X) + (nx+1)/2*float64(v.Viewport.Dx())
	y = float64(v.Viewport.Min.Y) + (1-ny)/2*float64(v.Viewport.Dy())
	return x, y, (nz + 1) / 2, true
}

// PickFrustum returns the frustum covering a size×size pixel square
// centered on window pixel p.
func (v *View) PickFrustum(p image.Point, size int) math.Frustum {
	if size < 1 {
		size = 1
	}
	vw, vh := float64(v.Viewport.Dx()), float64(v.Viewport.Dy())
	s := float64(size)
	px := float64(p.X-v.Viewport.Min.X) + 0.5
	py := vh - (float64(p.Y-v.Viewport.Min.Y) + 0.5)

	pick := math.Translate((vw-2*px)/s, (vh-2*py)/s, 0).Mul(math.Scale(vw/s, vh/s, 1))
	return math.FrustumFromMatrix(pick.Mul(v.ModelviewProjection))
}

// Visible reports whether the box intersects the view frustum.
func (v *View) Visible(b math.Box) bool {
	return v.Frustum.IntersectsBox(b)
}
