package terrain

import "testing"

var tileSizes = []struct{ w, h int }{{1, 1}, {2, 3}, {8, 8}, {32, 32}}

func TestBuildIndicesCount(t *testing.T) {
	for _, sz := range tileSizes {
		idx := buildIndices(sz.w, sz.h)
		numLat, numLon := sz.h+3, sz.w+3
		want := 2*(numLat-1)*numLon + 2*(numLat-2)
		if len(idx) != want {
			t.Errorf("%dx%d: %d strip indices, want %d", sz.w, sz.h, len(idx), want)
		}
		for _, i := range idx {
			if int(i) >= numLat*numLon {
				t.Fatalf("%dx%d: index %d out of range", sz.w, sz.h, i)
			}
		}
	}
}

func TestBuildIndicesBridgesRows(t *testing.T) {
	w, h := 2, 2
	numLon := w + 3
	idx := buildIndices(w, h)

	// Row 0 emits 2*numLon indices; then the degenerate pair.
	bridge := idx[2*numLon : 2*numLon+2]
	if bridge[0] != uint32(numLon-1) || bridge[1] != uint32(2*numLon) {
		t.Errorf("bridge = %v, want [%d %d]", bridge, numLon-1, 2*numLon)
	}
	// The bridge repeats the last index of row 0 and the first of row 1.
	if idx[2*numLon-1] != bridge[0] || idx[2*numLon+2] != bridge[1] {
		t.Errorf("bridge does not repeat neighbours: %v", idx[2*numLon-2:2*numLon+4])
	}
	if idx[0] != uint32(numLon) || idx[1] != 0 {
		t.Errorf("strip starts with %v, want [%d 0]", idx[:2], numLon)
	}
}

func TestBuildTexCoordsClampsSkirts(t *testing.T) {
	w, h := 4, 2
	numLon := w + 3
	tc := buildTexCoords(w, h)
	if len(tc) != 2*(h+3)*(w+3) {
		t.Fatalf("len = %d", len(tc))
	}
	st := func(row, col int) (float32, float32) {
		i := 2 * (row*numLon + col)
		return tc[i], tc[i+1]
	}

	tests := []struct {
		row, col int
		s, t     float32
	}{
		{0, 0, 0, 0},     // south-west skirt
		{1, 1, 0, 0},     // south-west corner
		{1, 2, 0.25, 0},  // first interior column
		{2, 1, 0, 0.5},   // interior row
		{3, 5, 1, 1},     // north-east corner
		{4, 6, 1, 1},     // north-east skirt
		{2, 3, 0.5, 0.5}, // middle
	}
	for _, tt := range tests {
		s, tv := st(tt.row, tt.col)
		if s != tt.s || tv != tt.t {
			t.Errorf("texcoord(%d, %d) = (%v, %v), want (%v, %v)", tt.row, tt.col, s, tv, tt.s, tt.t)
		}
	}
}

func isSkirt(i, w, h int) bool {
	stride := w + 3
	row, col := i/stride, i%stride
	return row == 0 || row == h+2 || col == 0 || col == w+2
}

func TestBuildWireframeIndices(t *testing.T) {
	for _, sz := range tileSizes {
		idx := buildWireframeIndices(sz.w, sz.h)
		numLat, numLon := sz.h+1, sz.w+1
		want := 2*numLat*(numLon-1) + 2*(numLat-1)*numLon
		if len(idx) != want {
			t.Errorf("%dx%d: %d wireframe indices, want %d", sz.w, sz.h, len(idx), want)
		}
		for _, i := range idx {
			if isSkirt(int(i), sz.w, sz.h) {
				t.Fatalf("%dx%d: wireframe uses skirt point %d", sz.w, sz.h, i)
			}
		}
	}
}

func TestBuildOutlineIndices(t *testing.T) {
	for _, sz := range tileSizes {
		idx := buildOutlineIndices(sz.w, sz.h)
		numLat, numLon := sz.h+1, sz.w+1
		want := 2*(numLat-1) + 2*numLon - 1
		if len(idx) != want {
			t.Errorf("%dx%d: %d outline indices, want %d", sz.w, sz.h, len(idx), want)
		}
		if idx[0] != idx[len(idx)-1] {
			t.Errorf("%dx%d: outline not closed: %d .. %d", sz.w, sz.h, idx[0], idx[len(idx)-1])
		}
		stride := sz.w + 3
		if idx[0] != uint32(stride+1) {
			t.Errorf("%dx%d: outline starts at %d, want south-west corner %d", sz.w, sz.h, idx[0], stride+1)
		}
		for _, i := range idx {
			if isSkirt(int(i), sz.w, sz.h) {
				t.Fatalf("%dx%d: outline uses skirt point %d", sz.w, sz.h, i)
			}
		}
	}
}

func TestSharedGeometryPerInstance(t *testing.T) {
	a := &Tessellator{shared: make(map[dims]*SharedGeometry)}
	b := &Tessellator{shared: make(map[dims]*SharedGeometry)}

	sa := a.sharedGeometry(8, 8)
	if a.sharedGeometry(8, 8) != sa {
		t.Error("same tessellator rebuilt shared geometry")
	}
	if b.sharedGeometry(8, 8) == sa {
		t.Error("tessellators share geometry")
	}
	if a.sharedGeometry(4, 8) == sa {
		t.Error("different dimensions share geometry")
	}
}
