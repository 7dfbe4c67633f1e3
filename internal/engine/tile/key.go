package tile

import "fmt"

// Key identifies one quadtree node. Tiles with equal keys are
// interchangeable, which makes Key the cache key for everything derived
// from a tile.
type Key struct {
	Level  int
	Row    int
	Column int
}

const (
	packLevelBits = 6
	packIndexBits = 29
	packIndexMask = 1<<packIndexBits - 1
)

// Pack encodes the key into a uint64 that sorts by level, then row, then
// column. Rows and columns must fit in 29 bits.
func (k Key) Pack() uint64 {
	return uint64(k.Level)<<(2*packIndexBits) |
		uint64(k.Row&packIndexMask)<<packIndexBits |
		uint64(k.Column&packIndexMask)
}

// UnpackKey reverses Pack.
func UnpackKey(v uint64) Key {
	return Key{
		Level:  int(v >> (2 * packIndexBits) & (1<<packLevelBits - 1)),
		Row:    int(v >> packIndexBits & packIndexMask),
		Column: int(v & packIndexMask),
	}
}

// Parent returns the key one level up. It panics on level zero.
func (k Key) Parent() Key {
	if k.Level == 0 {
		panic("tile: level zero key has no parent")
	}
	return Key{Level: k.Level - 1, Row: k.Row >> 1, Column: k.Column >> 1}
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%d/%d", k.Level, k.Row, k.Column)
}
