package math

import "math"

// Plane is the set of points p with Normal·p + D = 0. Points with a positive
// signed distance are on the side the normal points to.
type Plane struct {
	Normal Vec3
	D      float64
}

// NewPlane builds a plane from the coefficients a, b, c, d and normalizes it.
func NewPlane(a, b, c, d float64) Plane {
	return Plane{Normal: Vec3{a, b, c}, D: d}.Normalize()
}

// PlaneFromPoints returns the plane through three points, oriented by the
// winding a→b→c.
func PlaneFromPoints(a, b, c Vec3) Plane {
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	return Plane{Normal: n, D: -n.Dot(a)}
}

// Normalize scales the plane so its normal has unit length.
func (p Plane) Normalize() Plane {
	l := p.Normal.Length()
	if l == 0 {
		return p
	}
	return Plane{Normal: p.Normal.Scale(1 / l), D: p.D / l}
}

// Distance returns the signed distance from the plane to point v.
func (p Plane) Distance(v Vec3) float64 {
	return p.Normal.Dot(v) + p.D
}

// Frustum is a view volume bounded by six inward-facing planes.
type Frustum struct {
	Left, Right, Bottom, Top, Near, Far Plane
}

// FrustumFromMatrix extracts the frustum planes from a combined
// projection * modelview matrix. The planes are expressed in the coordinate
// system the modelview matrix transforms from.
func FrustumFromMatrix(m Mat4) Frustum {
	r0, r1, r2, r3 := m.Row(0), m.Row(1), m.Row(2), m.Row(3)
	plane := func(a, b Vec4, sign float64) Plane {
		return NewPlane(a[0]+sign*b[0], a[1]+sign*b[1], a[2]+sign*b[2], a[3]+sign*b[3])
	}
	return Frustum{
		Left:   plane(r3, r0, 1),
		Right:  plane(r3, r0, -1),
		Bottom: plane(r3, r1, 1),
		Top:    plane(r3, r1, -1),
		Near:   plane(r3, r2, 1),
		Far:    plane(r3, r2, -1),
	}
}

// Planes returns the six planes in a fixed order.
func (f Frustum) Planes() [6]Plane {
	return [6]Plane{f.Left, f.Right, f.Bottom, f.Top, f.Near, f.Far}
}

// ContainsPoint reports whether v is inside or on the frustum.
func (f Frustum) ContainsPoint(v Vec3) bool {
	for _, p := range f.Planes() {
		if p.Distance(v) < 0 {
			return false
		}
	}
	return true
}

// IntersectsBox reports whether the box is at least partially inside the
// frustum. The test is conservative: boxes near a frustum corner may be
// reported as intersecting when they are not.
func (f Frustum) IntersectsBox(b Box) bool {
	if b.IsEmpty() {
		return false
	}
	for _, p := range f.Planes() {
		// The box corner furthest along the plane normal.
		v := Vec3{b.Min.X, b.Min.Y, b.Min.Z}
		if p.Normal.X >= 0 {
			v.X = b.Max.X
		}
		if p.Normal.Y >= 0 {
			v.Y = b.Max.Y
		}
		if p.Normal.Z >= 0 {
			v.Z = b.Max.Z
		}
		if p.Distance(v) < 0 {
			return false
		}
	}
	return true
}

// Box is an axis-aligned bounding box in world coordinates.
type Box struct {
	Min, Max Vec3
}

// EmptyBox returns a box that contains nothing and grows on the first Extend.
func EmptyBox() Box {
	inf := math.Inf(1)
	return Box{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// BoxFromPoints returns the smallest box containing all points.
func BoxFromPoints(points ...Vec3) Box {
	b := EmptyBox()
	for _, p := range points {
		b = b.Extend(p)
	}
	return b
}

// IsEmpty reports whether the box contains no points.
func (b Box) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Extend returns the box grown to include p.
func (b Box) Extend(p Vec3) Box {
	return Box{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Expand returns the box grown by d on every side.
func (b Box) Expand(d float64) Box {
	return Box{
		Min: b.Min.Sub(Vec3{d, d, d}),
		Max: b.Max.Add(Vec3{d, d, d}),
	}
}

// Center returns the box center.
func (b Box) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Radius returns the radius of the sphere enclosing the box.
func (b Box) Radius() float64 {
	return b.Max.Sub(b.Min).Length() * 0.5
}

// Contains reports whether p is inside or on the box.
func (b Box) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// DistanceTo returns the distance from p to the nearest point of the box,
// zero when p is inside.
func (b Box) DistanceTo(p Vec3) float64 {
	c := p.Max(b.Min).Min(b.Max)
	return c.Distance(p)
}

// Corners returns the eight box corners, bottom face first.
func (b Box) Corners() [8]Vec3 {
	return [8]Vec3{
		{b.Min.X, b.Min.Y, b.Min.Z},
		{b.Max.X, b.Min.Y, b.Min.Z},
		{b.Max.X, b.Min.Y, b.Max.Z},
		{b.Min.X, b.Min.Y, b.Max.Z},
		{b.Min.X, b.Max.Y, b.Min.Z},
		{b.Max.X, b.Max.Y, b.Min.Z},
		{b.Max.X, b.Max.Y, b.Max.Z},
		{b.Min.X, b.Max.Y, b.Max.Z},
	}
}
