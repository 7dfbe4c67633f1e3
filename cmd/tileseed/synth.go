package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	gomath "math"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/Faultbox/midgard-globe/internal/engine/tile"
	"github.com/Faultbox/midgard-globe/internal/globe"
	"github.com/Faultbox/midgard-globe/pkg/geo"
)

// graticule spacing in degrees.
const graticule = 10.0

// tint stops map elevation in meters to a hypsometric color.
var tint = []struct {
	elevation float64
	color     color.RGBA
}{
	{-4000, color.RGBA{8, 32, 84, 255}},
	{-200, color.RGBA{36, 94, 160, 255}},
	{0, color.RGBA{86, 148, 96, 255}},
	{800, color.RGBA{168, 170, 92, 255}},
	{2000, color.RGBA{140, 104, 70, 255}},
	{3500, color.RGBA{236, 236, 240, 255}},
}

func tintAt(h float64) color.RGBA {
	if h <= tint[0].elevation {
		return tint[0].color
	}
	for i := 1; i < len(tint); i++ {
		lo, hi := tint[i-1], tint[i]
		if h <= hi.elevation {
			t := (h - lo.elevation) / (hi.elevation - lo.elevation)
			return color.RGBA{
				R: lerp(lo.color.R, hi.color.R, t),
				G: lerp(lo.color.G, hi.color.G, t),
				B: lerp(lo.color.B, hi.color.B, t),
				A: 255,
			}
		}
	}
	return tint[len(tint)-1].color
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(gomath.Round(float64(a) + (float64(b)-float64(a))*t))
}

// renderTile draws the relief tint of sector with a graticule and a one
// texel border, row 0 at the north edge.
func renderTile(s geo.Sector, size int, relief float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	dLat := s.DeltaLat() / float64(size)
	dLon := s.DeltaLon() / float64(size)
	for y := range size {
		lat := s.MaxLat - (float64(y)+0.5)*dLat
		for x := range size {
			lon := s.MinLon + (float64(x)+0.5)*dLon
			c := tintAt(globe.Relief(lat, lon, relief))
			if onGraticule(lat, dLat) || onGraticule(lon, dLon) {
				c = color.RGBA{R: c.R/2 + 127, G: c.G/2 + 127, B: c.B/2 + 127, A: 255}
			}
			if x == 0 || y == 0 || x == size-1 || y == size-1 {
				c = color.RGBA{R: 255, G: 210, B: 40, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// onGraticule reports whether the texel centered at v, step wide, crosses
// a graticule line.
func onGraticule(v, step float64) bool {
	lo := gomath.Floor((v - step/2) / graticule)
	hi := gomath.Floor((v + step/2) / graticule)
	return lo != hi
}

func encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "tiff":
		err = tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case "bmp":
		err = bmp.Encode(&buf, img)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// levelKeys returns the keys of every tile of levels [0, n), level by
// level.
func levelKeys(ls *tile.LevelSet, n int) [][]tile.Key {
	n = min(n, ls.NumLevels())
	if n <= 0 {
		return nil
	}
	out := make([][]tile.Key, 0, n)
	var tiles []tile.Tile
	for _, k := range ls.TopLevelKeys() {
		t, err := ls.TileFor(k)
		if err == nil {
			tiles = append(tiles, t)
		}
	}
	for len(out) < n {
		keys := make([]tile.Key, len(tiles))
		for i, t := range tiles {
			keys[i] = t.Key
		}
		out = append(out, keys)

		var next []tile.Tile
		for _, t := range tiles {
			if children, ok := ls.Children(t); ok {
				next = append(next, children[:]...)
			}
		}
		tiles = next
	}
	return out
}
