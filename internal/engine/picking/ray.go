// Package picking provides ray casting, pick color encoding and picked
// object reporting.
package picking

import (
	gomath "math"

	"github.com/Faultbox/midgard-globe/pkg/math"
)

// Epsilon is the smallest ray/plane angle cosine treated as non-parallel.
const Epsilon = 1e-5

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// NewRay returns a ray from origin through target.
func NewRay(origin, target math.Vec3) Ray {
	return Ray{Origin: origin, Direction: target.Sub(origin).Normalize()}
}

// PointAt returns Origin + t*Direction.
func (r Ray) PointAt(t float64) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// ScreenToRay converts screen coordinates to a world-space ray.
// screenX, screenY are pixel coordinates with the origin at the top left,
// viewportW/H are viewport dimensions and invViewProj is the inverse of the
// projection * modelview matrix.
func ScreenToRay(screenX, screenY, viewportW, viewportH float64, invViewProj math.Mat4) Ray {
	// Convert screen coords to normalized device coords (-1 to 1)
	ndcX := 2.0*screenX/viewportW - 1.0
	ndcY := 1.0 - 2.0*screenY/viewportH // Flip Y

	nearWorld := unproject(invViewProj, math.Vec4{ndcX, ndcY, -1.0, 1.0})
	farWorld := unproject(invViewProj, math.Vec4{ndcX, ndcY, 1.0, 1.0})

	return NewRay(nearWorld, farWorld)
}

func unproject(inv math.Mat4, ndc math.Vec4) math.Vec3 {
	v := inv.MulVec4(ndc)
	if v[3] != 0 {
		return math.Vec3{X: v[0] / v[3], Y: v[1] / v[3], Z: v[2] / v[3]}
	}
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// IntersectTrianglePlane intersects the ray with the plane of triangle abc.
// It does not check that the hit lies inside the triangle, so callers must
// already know the ray crosses it, for example from a pick color.
func (r Ray) IntersectTrianglePlane(a, b, c math.Vec3) (math.Vec3, bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	w0 := r.Origin.Sub(a)
	num := -n.Dot(w0)
	den := n.Dot(r.Direction)
	if gomath.Abs(den) < Epsilon {
		return math.Vec3{}, false // parallel
	}
	t := num / den
	if t < 0 {
		return math.Vec3{}, false // behind the origin
	}
	return r.PointAt(t), true
}

// IntersectTriangle returns the distance along the ray to triangle abc,
// using the Möller-Trumbore test.
func (r Ray) IntersectTriangle(a, b, c math.Vec3) (t float64, hit bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if gomath.Abs(det) < 1e-12 {
		return 0, false
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t = e2.Dot(q) * inv
	if t < 0 {
		return 0, false
	}
	return t, true
}

// IntersectBox tests ray intersection with an axis-aligned bounding box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectBox(box math.Box) (t float64, hit bool) {
	tmin := gomath.Inf(-1)
	tmax := gomath.Inf(1)

	o := [3]float64{r.Origin.X, r.Origin.Y, r.Origin.Z}
	d := [3]float64{r.Direction.X, r.Direction.Y, r.Direction.Z}
	lo := [3]float64{box.Min.X, box.Min.Y, box.Min.Z}
	hi := [3]float64{box.Max.X, box.Max.Y, box.Max.Z}

	for i := 0; i < 3; i++ {
		if d[i] == 0 {
			if o[i] < lo[i] || o[i] > hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - o[i]) / d[i]
		t2 := (hi[i] - o[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = gomath.Max(tmin, t1)
		tmax = gomath.Min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}
