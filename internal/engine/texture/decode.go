// Package texture decodes tile payloads into RGBA images sized for upload.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder

	_ "golang.org/x/image/bmp" // register decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder
)

// ErrUnknownFormat is returned when a payload is neither a registered image
// format nor a TGA image.
var ErrUnknownFormat = errors.New("texture: unknown image format")

// Decode decodes payload into an RGBA image whose bounds start at the
// origin, and reports the format name.
func Decode(payload []byte) (*image.RGBA, string, error) {
	img, format, err := image.Decode(bytes.NewReader(payload))
	if errors.Is(err, image.ErrFormat) {
		rgba, tgaErr := DecodeTGA(payload)
		if tgaErr != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrUnknownFormat, tgaErr)
		}
		return rgba, "tga", nil
	}
	if err != nil {
		return nil, format, fmt.Errorf("decode %s: %w", format, err)
	}
	return ToRGBA(img), format, nil
}

// DecodeSized decodes payload and resamples it to width x height.
func DecodeSized(payload []byte, width, height int) (*image.RGBA, error) {
	img, _, err := Decode(payload)
	if err != nil {
		return nil, err
	}
	return Resample(img, width, height), nil
}

// ToRGBA converts img to an RGBA image with bounds at the origin. An image
// already in that form is returned as is.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Resample scales img to width x height with bilinear filtering. img is
// returned unchanged when it already has that size.
func Resample(img *image.RGBA, width, height int) *image.RGBA {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// ApplyColorKey makes every pixel within tolerance of key on each color
// channel fully transparent. Keyed pixels are also set to black so texture
// filtering does not bleed the key color into neighbours.
func ApplyColorKey(img *image.RGBA, key color.RGBA, tolerance uint8) int {
	near := func(a, b uint8) bool {
		if a > b {
			return a-b <= tolerance
		}
		return b-a <= tolerance
	}
	keyed := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			o := img.PixOffset(x, y)
			px := img.Pix[o : o+4 : o+4]
			if near(px[0], key.R) && near(px[1], key.G) && near(px[2], key.B) {
				px[0], px[1], px[2], px[3] = 0, 0, 0, 0
				keyed++
			}
		}
	}
	return keyed
}
