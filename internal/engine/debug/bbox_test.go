package debug

import (
	"testing"

	"github.com/Faultbox/midgard-globe/pkg/math"
)

func TestBoxLineVertices(t *testing.T) {
	b := math.Box{Min: math.Vec3{X: 10, Y: 20, Z: 30}, Max: math.Vec3{X: 11, Y: 22, Z: 33}}
	center := b.Center()
	v := BoxLineVertices(b, center)
	if len(v) != 3*BoxLineVertexCount {
		t.Fatalf("len = %d, want %d", len(v), 3*BoxLineVertexCount)
	}

	// Every edge is axis aligned: its endpoints differ in exactly one axis.
	for e := 0; e < BoxLineVertexCount/2; e++ {
		a, c := v[6*e:6*e+3], v[6*e+3:6*e+6]
		diff := 0
		for i := 0; i < 3; i++ {
			if a[i] != c[i] {
				diff++
			}
		}
		if diff != 1 {
			t.Errorf("edge %d %v-%v is not axis aligned", e, a, c)
		}
	}

	// Relative to the center every coordinate is ± half the size.
	half := [3]float32{0.5, 1, 1.5}
	for i, x := range v {
		h := half[i%3]
		if x != h && x != -h {
			t.Errorf("vertex coordinate %d = %v, want ±%v", i, x, h)
		}
	}
}
