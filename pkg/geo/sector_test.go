package geo

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestNewSectorOrdersBounds(t *testing.T) {
	s := NewSector(10, -10, 20, -20)
	want := Sector{MinLat: -10, MaxLat: 10, MinLon: -20, MaxLon: 20}
	if s != want {
		t.Errorf("NewSector() = %v, want %v", s, want)
	}
}

func TestSectorIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		s    Sector
		want bool
	}{
		{"zero value", Sector{}, true},
		{"zero height", NewSector(5, 5, 0, 10), true},
		{"zero width", NewSector(0, 10, 5, 5), true},
		{"full sphere", FullSphere(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSectorIntersects(t *testing.T) {
	a := NewSector(0, 10, 0, 10)

	tests := []struct {
		name         string
		b            Sector
		intersects   bool
		overlaps     bool
		intersection Sector
	}{
		{"inside", NewSector(2, 4, 2, 4), true, true, NewSector(2, 4, 2, 4)},
		{"partial", NewSector(5, 15, 5, 15), true, true, NewSector(5, 10, 5, 10)},
		{"shared edge", NewSector(10, 20, 0, 10), true, false, EmptySector},
		{"shared corner", NewSector(10, 20, 10, 20), true, false, EmptySector},
		{"disjoint", NewSector(20, 30, 20, 30), false, false, EmptySector},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersects(tt.b); got != tt.intersects {
				t.Errorf("Intersects() = %v, want %v", got, tt.intersects)
			}
			if got := a.Overlaps(tt.b); got != tt.overlaps {
				t.Errorf("Overlaps() = %v, want %v", got, tt.overlaps)
			}
			if got := a.Intersection(tt.b); got != tt.intersection {
				t.Errorf("Intersection() = %v, want %v", got, tt.intersection)
			}
		})
	}
}

func TestSectorUnion(t *testing.T) {
	a := NewSector(0, 10, 0, 10)
	b := NewSector(-5, 5, 20, 30)

	if got, want := a.Union(b), NewSector(-5, 10, 0, 30); got != want {
		t.Errorf("Union() = %v, want %v", got, want)
	}
	if got := EmptySector.Union(a); got != a {
		t.Errorf("EmptySector.Union() = %v, want %v", got, a)
	}
	if got := a.Union(EmptySector); got != a {
		t.Errorf("Union(EmptySector) = %v, want %v", got, a)
	}
}

func TestSectorSubdivideCoversParent(t *testing.T) {
	parent := NewSector(-36, 0, 144, 180)
	children := parent.Subdivide()

	var union Sector
	for i, c := range children {
		if c.DeltaLat() != 18 || c.DeltaLon() != 18 {
			t.Errorf("child %d = %v, want 18° square", i, c)
		}
		if !parent.ContainsSector(c) {
			t.Errorf("child %d = %v not inside parent", i, c)
		}
		for j := i + 1; j < len(children); j++ {
			if c.Overlaps(children[j]) {
				t.Errorf("children %d and %d overlap", i, j)
			}
		}
		union = union.Union(c)
	}
	if union != parent {
		t.Errorf("union of children = %v, want %v", union, parent)
	}
}

func TestSectorBoundRoundTrip(t *testing.T) {
	s := NewSector(-10, 20, 30, 40)
	b := s.Bound()
	if b.Min != (orb.Point{30, -10}) || b.Max != (orb.Point{40, 20}) {
		t.Errorf("Bound() = %v", b)
	}
	if got := SectorFromBound(b); got != s {
		t.Errorf("SectorFromBound() = %v, want %v", got, s)
	}
	if ring := s.Polygon()[0]; len(ring) != 5 {
		t.Errorf("Polygon() ring has %d points, want 5", len(ring))
	}
}

func TestNormalizeLongitude(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{180, 180},
		{-180, -180},
		{190, -170},
		{-190, 170},
		{540, 180 - 360},
	}
	for _, tt := range tests {
		if got := NormalizeLongitude(tt.in); got != tt.want {
			t.Errorf("NormalizeLongitude(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
