package tile

import (
	"errors"
	"testing"

	"github.com/Faultbox/midgard-globe/pkg/geo"
)

func mustLevelSet(t *testing.T, cfg LevelSetConfig) *LevelSet {
	t.Helper()
	ls, err := NewLevelSet(cfg)
	if err != nil {
		t.Fatalf("NewLevelSet() error = %v", err)
	}
	return ls
}

func TestNewLevelSetValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*LevelSetConfig)
	}{
		{"empty sector", func(c *LevelSetConfig) { c.Sector = geo.EmptySector }},
		{"no levels", func(c *LevelSetConfig) { c.NumLevels = 0 }},
		{"zero tile width", func(c *LevelSetConfig) { c.TileWidth = 0 }},
		{"negative tile height", func(c *LevelSetConfig) { c.TileHeight = -4 }},
		{"zero delta", func(c *LevelSetConfig) { c.LevelZeroDelta = geo.Location{} }},
		{"all levels empty", func(c *LevelSetConfig) { c.NumEmptyLevels = c.NumLevels }},
		{"origin north of sector", func(c *LevelSetConfig) { c.TileOrigin = geo.Location{Lat: 0, Lon: -180} }},
		{"origin east of sector", func(c *LevelSetConfig) { c.TileOrigin = geo.Location{Lat: -90, Lon: 0} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultLevelSetConfig()
			tt.modify(&cfg)
			if _, err := NewLevelSet(cfg); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("NewLevelSet() error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestLevelSetLevels(t *testing.T) {
	cfg := DefaultLevelSetConfig()
	cfg.NumEmptyLevels = 2
	ls := mustLevelSet(t, cfg)

	if ls.NumLevels() != 12 {
		t.Fatalf("NumLevels() = %d, want 12", ls.NumLevels())
	}
	for i := 1; i < ls.NumLevels(); i++ {
		prev, cur := ls.Level(i-1), ls.Level(i)
		if cur.TileDelta.Lat*2 != prev.TileDelta.Lat || cur.TileDelta.Lon*2 != prev.TileDelta.Lon {
			t.Errorf("level %d delta %v is not half of %v", i, cur.TileDelta, prev.TileDelta)
		}
	}
	if !ls.IsLevelEmpty(0) || !ls.IsLevelEmpty(1) || ls.IsLevelEmpty(2) {
		t.Error("IsLevelEmpty() mismatch for NumEmptyLevels=2")
	}
	if ls.IsFinalLevel(10) || !ls.IsFinalLevel(11) {
		t.Error("IsFinalLevel() mismatch")
	}
	if got := ls.FirstLevel().TexelSize(); got != 36.0/32 {
		t.Errorf("level 0 TexelSize() = %v, want %v", got, 36.0/32)
	}
}

func TestLevelFor(t *testing.T) {
	ls := mustLevelSet(t, DefaultLevelSetConfig())
	// Texel sizes: 1.125, 0.5625, 0.28125, ...

	tests := []struct {
		name   string
		target float64
		want   int
	}{
		{"coarser than level zero", 2.0, 0},
		{"exact level one", 0.5625, 1},
		{"closer to coarser level", 0.9, 0},
		{"closer to finer level", 0.6, 1},
		{"finer than every level", 1e-9, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ls.LevelFor(tt.target, geo.NewSector(0, 1, 0, 1)); got != tt.want {
				t.Errorf("LevelFor(%v) = %d, want %d", tt.target, got, tt.want)
			}
		})
	}
}

func TestLevelForOutsideRoot(t *testing.T) {
	cfg := DefaultLevelSetConfig()
	cfg.Sector = geo.NewSector(0, 36, 0, 36)
	ls := mustLevelSet(t, cfg)

	if got := ls.LevelFor(0.1, geo.NewSector(-50, -40, -50, -40)); got != -1 {
		t.Errorf("LevelFor() outside root = %d, want -1", got)
	}
}

func TestTopLevelKeysFullSphere(t *testing.T) {
	ls := mustLevelSet(t, DefaultLevelSetConfig())
	keys := ls.TopLevelKeys()

	if len(keys) != 50 {
		t.Fatalf("len(TopLevelKeys()) = %d, want 50 (5 rows x 10 columns)", len(keys))
	}
	var union geo.Sector
	for _, k := range keys {
		union = union.Union(ls.SectorForKey(k))
	}
	if union != geo.FullSphere() {
		t.Errorf("top-level union = %v, want full sphere", union)
	}
	last := keys[len(keys)-1]
	if last.Row != 4 || last.Column != 9 {
		t.Errorf("last key = %v, want 0/4/9", last)
	}
}

func TestRowAndColumnFor(t *testing.T) {
	ls := mustLevelSet(t, DefaultLevelSetConfig())
	l := ls.FirstLevel()

	tests := []struct {
		lat, lon    float64
		row, column int
	}{
		{-90, -180, 0, 0},
		{-54, -144, 1, 1},
		{-54.0001, -144.0001, 0, 0},
		{90, 180, 4, 9},
		{0, 0, 2, 5},
	}
	for _, tt := range tests {
		if got := ls.RowFor(tt.lat, l); got != tt.row {
			t.Errorf("RowFor(%v) = %d, want %d", tt.lat, got, tt.row)
		}
		if got := ls.ColumnFor(tt.lon, l); got != tt.column {
			t.Errorf("ColumnFor(%v) = %d, want %d", tt.lon, got, tt.column)
		}
	}
}

func TestTileForValidation(t *testing.T) {
	ls := mustLevelSet(t, DefaultLevelSetConfig())

	bad := []Key{
		{Level: -1},
		{Level: 12},
		{Level: 0, Row: -1},
		{Level: 3, Column: -2},
	}
	for _, k := range bad {
		if _, err := ls.TileFor(k); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("TileFor(%v) error = %v, want ErrInvalidArgument", k, err)
		}
	}

	tl, err := ls.TileFor(Key{Level: 1, Row: 3, Column: 7})
	if err != nil {
		t.Fatalf("TileFor() error = %v", err)
	}
	if want := geo.NewSector(-36, -18, -54, -36); tl.Sector != want {
		t.Errorf("TileFor() sector = %v, want %v", tl.Sector, want)
	}
}
