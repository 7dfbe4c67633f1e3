// Package tile describes the quadtree resolution hierarchy over a globe:
// levels, level sets, tile keys and tiles.
package tile

import (
	"errors"
	"fmt"
	"math"

	"github.com/Faultbox/midgard-globe/pkg/geo"
)

// ErrInvalidArgument reports a programmer error in a geographic or
// dimensional argument.
var ErrInvalidArgument = errors.New("invalid argument")

// rowEpsilon absorbs rounding when a boundary latitude is divided by the
// tile delta, so boundaries land in the tile that starts there.
const rowEpsilon = 1e-9

// Level is one resolution tier of a LevelSet.
type Level struct {
	Index      int
	TileDelta  geo.Location // Lat and Lon extent of every tile, degrees
	TileWidth  int          // grid cells per tile, longitude axis
	TileHeight int          // grid cells per tile, latitude axis

	// Empty marks a tier with no backing data. The assembler never stops on
	// an empty level unless it is the last one.
	Empty bool
}

// TexelSize returns the size of one grid cell in degrees of latitude.
func (l *Level) TexelSize() float64 {
	return l.TileDelta.Lat / float64(l.TileHeight)
}

// TexelSizeRadians returns the cell size in radians, the unit the globe's
// best-resolution query uses.
func (l *Level) TexelSizeRadians() float64 {
	return geo.Radians(l.TexelSize())
}

func (l *Level) String() string {
	return fmt.Sprintf("level %d (%gx%g°, %dx%d)", l.Index, l.TileDelta.Lat, l.TileDelta.Lon, l.TileWidth, l.TileHeight)
}

// LevelSetConfig describes a LevelSet where every level halves the previous
// level's tile delta.
type LevelSetConfig struct {
	Sector         geo.Sector
	TileOrigin     geo.Location
	LevelZeroDelta geo.Location
	NumLevels      int
	TileWidth      int
	TileHeight     int

	// NumEmptyLevels marks the first n levels as having no data.
	NumEmptyLevels int
}

// DefaultLevelSetConfig returns the terrain defaults: the full sphere with
// 36° level-zero tiles of 32x32 cells and 12 levels.
func DefaultLevelSetConfig() LevelSetConfig {
	return LevelSetConfig{
		Sector:         geo.FullSphere(),
		TileOrigin:     geo.Location{Lat: -90, Lon: -180},
		LevelZeroDelta: geo.Location{Lat: 36, Lon: 36},
		NumLevels:      12,
		TileWidth:      32,
		TileHeight:     32,
	}
}

// LevelSet is the ordered sequence of levels covering one root sector.
// Level i+1's tile delta is exactly half of level i's.
type LevelSet struct {
	sector geo.Sector
	origin geo.Location
	levels []Level
}

// NewLevelSet validates cfg and builds the level sequence.
func NewLevelSet(cfg LevelSetConfig) (*LevelSet, error) {
	switch {
	case cfg.Sector.IsEmpty():
		return nil, fmt.Errorf("%w: level set sector is empty", ErrInvalidArgument)
	case cfg.NumLevels < 1:
		return nil, fmt.Errorf("%w: level count %d", ErrInvalidArgument, cfg.NumLevels)
	case cfg.TileWidth < 1 || cfg.TileHeight < 1:
		return nil, fmt.Errorf("%w: tile dimensions %dx%d", ErrInvalidArgument, cfg.TileWidth, cfg.TileHeight)
	case cfg.LevelZeroDelta.Lat <= 0 || cfg.LevelZeroDelta.Lon <= 0:
		return nil, fmt.Errorf("%w: level zero delta %v", ErrInvalidArgument, cfg.LevelZeroDelta)
	case cfg.NumEmptyLevels < 0 || cfg.NumEmptyLevels >= cfg.NumLevels:
		return nil, fmt.Errorf("%w: %d empty levels of %d", ErrInvalidArgument, cfg.NumEmptyLevels, cfg.NumLevels)
	case cfg.TileOrigin.Lat > cfg.Sector.MinLat || cfg.TileOrigin.Lon > cfg.Sector.MinLon:
		// Rows and columns south or west of the origin would be negative.
		return nil, fmt.Errorf("%w: tile origin %v is north or east of sector %v", ErrInvalidArgument, cfg.TileOrigin, cfg.Sector)
	}

	ls := &LevelSet{
		sector: cfg.Sector,
		origin: cfg.TileOrigin,
		levels: make([]Level, cfg.NumLevels),
	}
	for i := range ls.levels {
		// Scaling by a power of two is exact, so deltas never drift.
		ls.levels[i] = Level{
			Index: i,
			TileDelta: geo.Location{
				Lat: math.Ldexp(cfg.LevelZeroDelta.Lat, -i),
				Lon: math.Ldexp(cfg.LevelZeroDelta.Lon, -i),
			},
			TileWidth:  cfg.TileWidth,
			TileHeight: cfg.TileHeight,
			Empty:      i < cfg.NumEmptyLevels,
		}
	}
	return ls, nil
}

// Sector returns the root sector.
func (ls *LevelSet) Sector() geo.Sector { return ls.sector }

// TileOrigin returns the location tile rows and columns are counted from.
func (ls *LevelSet) TileOrigin() geo.Location { return ls.origin }

// NumLevels returns the number of levels.
func (ls *LevelSet) NumLevels() int { return len(ls.levels) }

// Level returns level i. It panics when i is out of range.
func (ls *LevelSet) Level(i int) *Level {
	return &ls.levels[i]
}

// FirstLevel returns the coarsest level.
func (ls *LevelSet) FirstLevel() *Level { return &ls.levels[0] }

// LastLevel returns the finest level.
func (ls *LevelSet) LastLevel() *Level { return &ls.levels[len(ls.levels)-1] }

// IsFinalLevel reports whether i is the finest level.
func (ls *LevelSet) IsFinalLevel(i int) bool {
	return i == len(ls.levels)-1
}

// IsLevelEmpty reports whether level i has no backing data.
func (ls *LevelSet) IsLevelEmpty(i int) bool {
	return ls.levels[i].Empty
}

// LevelFor returns the coarsest level whose texel size is at most
// resolution (degrees per cell), preferring the next coarser level when its
// texel size is closer to the target. It returns the last level when no
// level is fine enough, and -1 when sector lies outside the root sector.
func (ls *LevelSet) LevelFor(resolution float64, sector geo.Sector) int {
	if !ls.sector.Intersects(sector) {
		return -1
	}
	for i := range ls.levels {
		size := ls.levels[i].TexelSize()
		if size > resolution {
			continue
		}
		if i > 0 {
			coarser := ls.levels[i-1].TexelSize()
			if coarser-resolution < resolution-size {
				return i - 1
			}
		}
		return i
	}
	return len(ls.levels) - 1
}

// RowFor returns the row containing lat at level l. The root sector's
// northern edge belongs to the last row.
func (ls *LevelSet) RowFor(lat float64, l *Level) int {
	row := int(math.Floor((lat-ls.origin.Lat)/l.TileDelta.Lat + rowEpsilon))
	if lat >= ls.sector.MaxLat && row > 0 && ls.rowLat(row, l) >= ls.sector.MaxLat {
		row--
	}
	return row
}

// ColumnFor returns the column containing lon at level l. The root sector's
// eastern edge belongs to the last column.
func (ls *LevelSet) ColumnFor(lon float64, l *Level) int {
	col := int(math.Floor((lon-ls.origin.Lon)/l.TileDelta.Lon + rowEpsilon))
	if lon >= ls.sector.MaxLon && col > 0 && ls.colLon(col, l) >= ls.sector.MaxLon {
		col--
	}
	return col
}

func (ls *LevelSet) rowLat(row int, l *Level) float64 {
	return ls.origin.Lat + float64(row)*l.TileDelta.Lat
}

func (ls *LevelSet) colLon(col int, l *Level) float64 {
	return ls.origin.Lon + float64(col)*l.TileDelta.Lon
}

// SectorForKey returns the sector of the tile identified by k. Bounds are
// computed from the integer row and column, so shared edges of neighboring
// tiles are bit-identical.
func (ls *LevelSet) SectorForKey(k Key) geo.Sector {
	l := &ls.levels[k.Level]
	return geo.Sector{
		MinLat: ls.rowLat(k.Row, l),
		MaxLat: ls.rowLat(k.Row+1, l),
		MinLon: ls.colLon(k.Column, l),
		MaxLon: ls.colLon(k.Column+1, l),
	}
}

// KeyFor returns the key of the level-l tile containing the location.
func (ls *LevelSet) KeyFor(loc geo.Location, l *Level) Key {
	return Key{Level: l.Index, Row: ls.RowFor(loc.Lat, l), Column: ls.ColumnFor(loc.Lon, l)}
}

// TileFor validates k and returns the tile it identifies.
func (ls *LevelSet) TileFor(k Key) (Tile, error) {
	if k.Level < 0 || k.Level >= len(ls.levels) {
		return Tile{}, fmt.Errorf("%w: level %d of %d", ErrInvalidArgument, k.Level, len(ls.levels))
	}
	if k.Row < 0 || k.Column < 0 {
		return Tile{}, fmt.Errorf("%w: negative row or column in %v", ErrInvalidArgument, k)
	}
	return Tile{Key: k, Sector: ls.SectorForKey(k), Level: &ls.levels[k.Level]}, nil
}

// TopLevelKeys returns the first-level keys covering the root sector, row by
// row from the south-west corner.
func (ls *LevelSet) TopLevelKeys() []Key {
	l := ls.FirstLevel()
	firstRow := ls.RowFor(ls.sector.MinLat, l)
	lastRow := ls.RowFor(ls.sector.MaxLat, l)
	firstCol := ls.ColumnFor(ls.sector.MinLon, l)
	lastCol := ls.ColumnFor(ls.sector.MaxLon, l)

	keys := make([]Key, 0, (lastRow-firstRow+1)*(lastCol-firstCol+1))
	for row := firstRow; row <= lastRow; row++ {
		for col := firstCol; col <= lastCol; col++ {
			keys = append(keys, Key{Level: l.Index, Row: row, Column: col})
		}
	}
	return keys
}

// Children subdivides t into the next level. ok is false when t is already
// at the final level.
func (ls *LevelSet) Children(t Tile) (children [4]Tile, ok bool) {
	if ls.IsFinalLevel(t.Key.Level) {
		return children, false
	}
	return t.Subdivide(&ls.levels[t.Key.Level+1], ls.origin), true
}
