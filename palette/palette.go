/*
Package palette reduces an image to a palette small enough for the 4 and 8 bpp
ImageFile modes.

An image that already uses few enough colors keeps them exactly, in order of
first appearance. Anything else is quantized with a median cut.
*/
package palette

import (
	"errors"
	"image"
	"image/color"
	"image/draw"

	"github.com/ericpauley/go-quantize/quantize"
)

// ErrNoColors is returned when asked for a palette of fewer than one color
var ErrNoColors = errors.New("palette: maximum colors must be positive")

// Colors in order of first appearance, scanning rows top to bottom, and the
// index of each
func uniqueColors(m image.Image, limit int) (color.Palette, map[color.NRGBA]uint8, bool) {
	b := m.Bounds()
	indices := make(map[color.NRGBA]uint8)
	p := make(color.Palette, 0, limit)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
			if _, ok := indices[c]; ok {
				continue
			}
			if len(p) == limit {
				return nil, nil, false
			}
			indices[c] = uint8(len(p))
			p = append(p, c)
		}
	}
	return p, indices, true
}

// Reduce returns m as an *image.Paletted with its origin at (0, 0) and no more
// than max palette entries. A paletted image whose palette already fits is
// returned with its indices untouched, and an image with no more than max
// distinct colors is converted without loss. Otherwise the palette is chosen
// by median cut quantization and every pixel mapped to its closest entry.
// The boolean reports whether the conversion was lossless.
func Reduce(m image.Image, max int) (*image.Paletted, bool, error) {
	if max < 1 {
		return nil, false, ErrNoColors
	}
	if max > 256 {
		// Paletted pixels are 8-bit indices
		max = 256
	}

	b := m.Bounds()

	if pm, ok := m.(*image.Paletted); ok && len(pm.Palette) <= max && len(pm.Palette) > 0 {
		// Adjust image so that top-left corner is at (0, 0)
		dup := image.NewPaletted(b.Sub(b.Min), pm.Palette)
		for y := 0; y < b.Dy(); y++ {
			copy(dup.Pix[y*dup.Stride:], pm.Pix[pm.PixOffset(b.Min.X, b.Min.Y+y):][:b.Dx()])
		}
		return dup, true, nil
	}

	if p, indices, ok := uniqueColors(m, max); ok {
		if len(p) == 0 {
			// Empty image
			p = color.Palette{color.NRGBA{}}
		}

		// Matched on NRGBA so transparent colors keep their own entries
		pm := image.NewPaletted(b.Sub(b.Min), p)
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				c := color.NRGBAModel.Convert(m.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				pm.Pix[pm.PixOffset(x, y)] = indices[c]
			}
		}
		return pm, true, nil
	}

	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b.Sub(b.Min), q.Quantize(make(color.Palette, 0, max), m))
	draw.Draw(pm, pm.Bounds(), m, b.Min, draw.Src)

	return pm, false, nil
}
