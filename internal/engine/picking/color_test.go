package picking

import "testing"

func TestRGBRoundTrip(t *testing.T) {
	for _, code := range []int{1, 255, 256, 65535, 0x123456, MaxColorCode} {
		r, g, b := RGB(code)
		if got := CodeFromRGB(r, g, b); got != code {
			t.Errorf("CodeFromRGB(RGB(%#x)) = %#x", code, got)
		}
	}
}

func TestColorRangeIndex(t *testing.T) {
	var alloc Allocator
	alloc.Next() // codes from an earlier batch in the same pass

	cr := ColorRange{Min: alloc.Next()}
	for i := 0; i < 9; i++ {
		cr.Max = alloc.Next()
	}

	tests := []struct {
		code int
		want int
	}{
		{cr.Min, 0},
		{cr.Min + 4, 4},
		{cr.Max, 9},
		{cr.Min - 1, -1},
		{cr.Max + 1, -1},
		{0, -1},
	}
	for _, tt := range tests {
		if got := cr.Index(tt.code); got != tt.want {
			t.Errorf("Index(%d) = %d, want %d (range %v)", tt.code, got, tt.want, cr)
		}
	}
}

func TestAllocatorReset(t *testing.T) {
	var a Allocator
	a.Next()
	a.Next()
	a.Reset()
	if got := a.Next(); got != 1 {
		t.Errorf("Next() after Reset() = %d, want 1", got)
	}
	if (ColorRange{}).Contains(0) {
		t.Error("zero ColorRange must be empty")
	}
}
