package picking

import "fmt"

// MaxColorCode is the largest code an RGB8 pick buffer can hold.
const MaxColorCode = 1<<24 - 1

// RGB returns the 8-bit channels of a color code, red most significant.
func RGB(code int) (r, g, b uint8) {
	return uint8(code >> 16), uint8(code >> 8), uint8(code)
}

// CodeFromRGB reverses RGB.
func CodeFromRGB(r, g, b uint8) int {
	return int(r)<<16 | int(g)<<8 | int(b)
}

// ColorRange is the inclusive range of codes assigned to a batch of
// pickable primitives. The zero value is empty.
type ColorRange struct {
	Min, Max int
}

// IsEmpty reports whether no code was assigned.
func (cr ColorRange) IsEmpty() bool { return cr.Max < cr.Min || cr.Min == 0 }

// Contains reports whether code was assigned from this range.
func (cr ColorRange) Contains(code int) bool {
	return !cr.IsEmpty() && code >= cr.Min && code <= cr.Max
}

// Index returns the position of code in the batch, or -1 on a miss.
func (cr ColorRange) Index(code int) int {
	if !cr.Contains(code) {
		return -1
	}
	return code - cr.Min
}

func (cr ColorRange) String() string {
	return fmt.Sprintf("[%d, %d]", cr.Min, cr.Max)
}

// Allocator hands out sequential unique pick colors for one pick pass.
// Code 0 is reserved for "nothing drawn" (the cleared pick buffer).
type Allocator struct {
	next int
}

// Reset starts a new pick pass.
func (a *Allocator) Reset() { a.next = 0 }

// Next returns the next unique code. It wraps after MaxColorCode codes;
// a single pass never needs that many.
func (a *Allocator) Next() int {
	a.next++
	if a.next > MaxColorCode {
		a.next = 1
	}
	return a.next
}
