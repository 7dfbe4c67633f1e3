package main

import (
	"image/color"
	"testing"

	"github.com/Faultbox/midgard-globe/internal/engine/texture"
	"github.com/Faultbox/midgard-globe/internal/engine/tile"
	"github.com/Faultbox/midgard-globe/pkg/geo"
)

func TestTintAt(t *testing.T) {
	tests := []struct {
		h    float64
		want color.RGBA
	}{
		{-9000, tint[0].color},
		{0, tint[2].color},
		{9000, tint[len(tint)-1].color},
		{400, color.RGBA{127, 159, 94, 255}},
	}
	for _, tt := range tests {
		if got := tintAt(tt.h); got != tt.want {
			t.Errorf("tintAt(%v) = %v, want %v", tt.h, got, tt.want)
		}
	}
}

func TestRenderTileBorderAndGraticule(t *testing.T) {
	img := renderTile(geo.NewSector(0, 20, 0, 20), 20, 1000)
	border := color.RGBA{R: 255, G: 210, B: 40, A: 255}
	for _, p := range [][2]int{{0, 0}, {19, 0}, {0, 19}, {19, 19}, {7, 0}} {
		if got := img.RGBAAt(p[0], p[1]); got != border {
			t.Errorf("texel %v = %v, want border", p, got)
		}
	}
	// Texel columns 9 and 10 straddle the 10° meridian.
	if !onGraticule(9.5, 1) || !onGraticule(10.5, 1) || onGraticule(5.5, 1) {
		t.Error("onGraticule misplaces the 10° line")
	}
}

func TestEncodeDecodes(t *testing.T) {
	img := renderTile(geo.NewSector(-10, 10, 30, 50), 16, 2000)
	for _, format := range []string{"png", "tiff", "bmp"} {
		data, err := encode(img, format)
		if err != nil {
			t.Fatalf("encode(%s) error = %v", format, err)
		}
		got, err := texture.DecodeSized(data, 16, 16)
		if err != nil {
			t.Fatalf("decode %s: %v", format, err)
		}
		if got.RGBAAt(5, 5) != img.RGBAAt(5, 5) {
			t.Errorf("%s texel = %v, want %v", format, got.RGBAAt(5, 5), img.RGBAAt(5, 5))
		}
	}
	if _, err := encode(img, "gif"); err == nil {
		t.Error("encode(gif) error = nil")
	}
}

func TestLevelKeys(t *testing.T) {
	ls, err := tile.NewLevelSet(tile.LevelSetConfig{
		Sector:         geo.FullSphere(),
		TileOrigin:     geo.Location{Lat: -90, Lon: -180},
		LevelZeroDelta: geo.Location{Lat: 36, Lon: 36},
		NumLevels:      4,
		TileWidth:      8,
		TileHeight:     8,
	})
	if err != nil {
		t.Fatal(err)
	}

	got := levelKeys(ls, 3)
	want := []int{50, 200, 800}
	if len(got) != len(want) {
		t.Fatalf("levels = %d, want %d", len(got), len(want))
	}
	for i, keys := range got {
		if len(keys) != want[i] {
			t.Errorf("level %d: %d keys, want %d", i, len(keys), want[i])
		}
		seen := make(map[tile.Key]bool)
		for _, k := range keys {
			if k.Level != i || seen[k] {
				t.Errorf("level %d: bad or duplicate key %v", i, k)
			}
			seen[k] = true
		}
	}

	if n := len(levelKeys(ls, 10)); n != 4 {
		t.Errorf("levelKeys capped at %d levels, want 4", n)
	}
}
