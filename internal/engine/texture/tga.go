package texture

import (
	"encoding/binary"
	"fmt"
	"image"
)

// TGA image types the decoder accepts.
const (
	TGATypeUncompressed = 2  // uncompressed true-color
	TGATypeRLE          = 10 // run-length encoded true-color
)

const tgaHeaderSize = 18

// tgaPixels writes BGR(A) pixels in file order into an RGBA image.
type tgaPixels struct {
	img     *image.RGBA
	width   int
	height  int
	bpp     int
	topDown bool
}

func (p *tgaPixels) set(i int, bgra []byte) {
	x, y := i%p.width, i/p.width
	if !p.topDown {
		y = p.height - 1 - y
	}
	o := p.img.PixOffset(x, y)
	p.img.Pix[o+0] = bgra[2]
	p.img.Pix[o+1] = bgra[1]
	p.img.Pix[o+2] = bgra[0]
	p.img.Pix[o+3] = 255
	if p.bpp == 4 {
		p.img.Pix[o+3] = bgra[3]
	}
}

// DecodeTGA decodes a 24 or 32 bit true-color TGA image, uncompressed or
// run-length encoded. TGA has no signature, so image.Decode cannot detect
// it; Decode falls back to this decoder when no registered format matches.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	if len(data) < tgaHeaderSize {
		return nil, fmt.Errorf("tga: header truncated")
	}
	idLength := int(data[0])
	if data[1] != 0 {
		return nil, fmt.Errorf("tga: color-mapped images not supported")
	}
	kind := data[2]
	if kind != TGATypeUncompressed && kind != TGATypeRLE {
		return nil, fmt.Errorf("tga: unsupported image type %d", kind)
	}
	width := int(binary.LittleEndian.Uint16(data[12:14]))
	height := int(binary.LittleEndian.Uint16(data[14:16]))
	bits := int(data[16])
	if bits != 24 && bits != 32 {
		return nil, fmt.Errorf("tga: unsupported bit depth %d", bits)
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("tga: empty image %dx%d", width, height)
	}

	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("tga: image id truncated")
	}

	p := &tgaPixels{
		img:     image.NewRGBA(image.Rect(0, 0, width, height)),
		width:   width,
		height:  height,
		bpp:     bits / 8,
		topDown: data[17]&0x20 != 0,
	}
	pix := data[offset:]
	if kind == TGATypeUncompressed {
		if len(pix) < width*height*p.bpp {
			return nil, fmt.Errorf("tga: pixel data truncated")
		}
		for i := 0; i < width*height; i++ {
			p.set(i, pix[i*p.bpp:])
		}
		return p.img, nil
	}
	if err := p.decodeRLE(pix); err != nil {
		return nil, err
	}
	return p.img, nil
}

// decodeRLE expands run-length packets: a set high bit repeats one pixel,
// otherwise the packet is followed by count literal pixels.
func (p *tgaPixels) decodeRLE(data []byte) error {
	total := p.width * p.height
	i, n := 0, 0
	for n < total {
		if i >= len(data) {
			return fmt.Errorf("tga: run-length data truncated at pixel %d of %d", n, total)
		}
		header := data[i]
		i++
		count := min(int(header&0x7f)+1, total-n)

		if header&0x80 != 0 {
			if i+p.bpp > len(data) {
				return fmt.Errorf("tga: run-length data truncated at pixel %d of %d", n, total)
			}
			for range count {
				p.set(n, data[i:])
				n++
			}
			i += p.bpp
			continue
		}
		if i+count*p.bpp > len(data) {
			return fmt.Errorf("tga: run-length data truncated at pixel %d of %d", n, total)
		}
		for range count {
			p.set(n, data[i:])
			n++
			i += p.bpp
		}
	}
	return nil
}
