package picking

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/midgard-globe/pkg/math"
)

func TestScreenToRayCenter(t *testing.T) {
	proj := math.Perspective(gomath.Pi/3, 800.0/600.0, 0.1, 1000)
	view := math.LookAt(math.Vec3{Z: 10}, math.Vec3{}, math.Vec3{Y: 1})
	inv := proj.Mul(view).Inverse()

	r := ScreenToRay(400, 300, 800, 600, inv)

	if r.Direction.Distance(math.Vec3{Z: -1}) > 1e-9 {
		t.Errorf("center ray direction = %v, want (0, 0, -1)", r.Direction)
	}
	if gomath.Abs(r.Origin.X) > 1e-9 || gomath.Abs(r.Origin.Y) > 1e-9 {
		t.Errorf("center ray origin = %v, want on the Z axis", r.Origin)
	}

	// Top-left pixels look up and to the left.
	tl := ScreenToRay(0, 0, 800, 600, inv)
	if tl.Direction.X >= 0 || tl.Direction.Y <= 0 {
		t.Errorf("top-left ray direction = %v", tl.Direction)
	}
}

func TestIntersectTrianglePlane(t *testing.T) {
	a := math.Vec3{X: 0, Y: 0, Z: 0}
	b := math.Vec3{X: 1, Y: 0, Z: 0}
	c := math.Vec3{X: 0, Y: 1, Z: 0}

	tests := []struct {
		name string
		ray  Ray
		want math.Vec3
		ok   bool
	}{
		{"straight down", NewRay(math.Vec3{X: 0.25, Y: 0.25, Z: 5}, math.Vec3{X: 0.25, Y: 0.25}), math.Vec3{X: 0.25, Y: 0.25}, true},
		{"outside triangle still hits plane", NewRay(math.Vec3{X: 3, Y: 3, Z: 5}, math.Vec3{X: 3, Y: 3}), math.Vec3{X: 3, Y: 3}, true},
		{"parallel", Ray{Origin: math.Vec3{Z: 1}, Direction: math.Vec3{X: 1}}, math.Vec3{}, false},
		{"pointing away", Ray{Origin: math.Vec3{Z: 1}, Direction: math.Vec3{Z: 1}}, math.Vec3{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.ray.IntersectTrianglePlane(a, b, c)
			if ok != tt.ok {
				t.Fatalf("IntersectTrianglePlane() ok = %v, want %v", ok, tt.ok)
			}
			if ok && got.Distance(tt.want) > 1e-12 {
				t.Errorf("IntersectTrianglePlane() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIntersectTriangle(t *testing.T) {
	a := math.Vec3{X: 0, Y: 0, Z: 0}
	b := math.Vec3{X: 1, Y: 0, Z: 0}
	c := math.Vec3{X: 0, Y: 1, Z: 0}
	down := math.Vec3{Z: -1}

	if d, hit := (Ray{Origin: math.Vec3{X: 0.2, Y: 0.2, Z: 4}, Direction: down}).IntersectTriangle(a, b, c); !hit || gomath.Abs(d-4) > 1e-12 {
		t.Errorf("inside: IntersectTriangle() = %v, %v, want 4, true", d, hit)
	}
	if _, hit := (Ray{Origin: math.Vec3{X: 0.8, Y: 0.8, Z: 4}, Direction: down}).IntersectTriangle(a, b, c); hit {
		t.Error("outside hypotenuse: IntersectTriangle() should miss")
	}
	if _, hit := (Ray{Origin: math.Vec3{X: 0.2, Y: 0.2, Z: -4}, Direction: down}).IntersectTriangle(a, b, c); hit {
		t.Error("behind origin: IntersectTriangle() should miss")
	}
}

func TestIntersectBox(t *testing.T) {
	box := math.BoxFromPoints(math.Vec3{X: -1, Y: -1, Z: -1}, math.Vec3{X: 1, Y: 1, Z: 1})

	tests := []struct {
		name  string
		ray   Ray
		wantT float64
		hit   bool
	}{
		{"hit from outside", Ray{Origin: math.Vec3{Z: 5}, Direction: math.Vec3{Z: -1}}, 4, true},
		{"start inside", Ray{Origin: math.Vec3{}, Direction: math.Vec3{X: 1}}, 1, true},
		{"miss", Ray{Origin: math.Vec3{X: 3, Z: 5}, Direction: math.Vec3{Z: -1}}, 0, false},
		{"box behind", Ray{Origin: math.Vec3{Z: 5}, Direction: math.Vec3{Z: 1}}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := tt.ray.IntersectBox(box)
			if hit != tt.hit || (hit && gomath.Abs(got-tt.wantT) > 1e-12) {
				t.Errorf("IntersectBox() = %v, %v, want %v, %v", got, hit, tt.wantT, tt.hit)
			}
		})
	}
}
