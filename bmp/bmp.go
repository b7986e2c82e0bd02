/*
Package bmp implements the Windows BMP file and info headers as used by the
BigFile archive.

A BMP file starts with a 14 byte BITMAPFILEHEADER: the magic "BM", the total
file size, four reserved bytes and the offset of the pixel data. It is followed
by a BITMAPINFOHEADER (40 bytes, or 108/124 bytes for the V4/V5 variants), an
optional 12 byte bit mask segment, the palette and finally the pixels. A DIB is
the same file with the first 14 bytes removed, which is how BigFile stores its
members.

All values are little-endian.
*/
package bmp

import (
	"errors"
	"image/color"
)

const (
	// FileHeaderSize is the size in bytes of the BITMAPFILEHEADER
	FileHeaderSize = 14
	// InfoHeaderSize is the size in bytes of a plain BITMAPINFOHEADER
	InfoHeaderSize = 40

	infoHeaderV4Size = 108
	infoHeaderV5Size = 124

	bitFieldsSize = 12

	// CompressionBitFields is BI_BITFIELDS
	CompressionBitFields = 3
)

var (
	// ErrBadMagic is returned when a file does not start with "BM"
	ErrBadMagic = errors.New("bmp: bad magic")
	// ErrUnsupportedHeader is returned for info header sizes other than 40, 108 or 124
	ErrUnsupportedHeader = errors.New("bmp: unsupported info header size")
	// ErrBadPaletteSize is returned for an implausible palette length
	ErrBadPaletteSize = errors.New("bmp: bad palette size")
)

// Color is a palette entry, stored on disk as B, G, R, A. The alpha byte is
// inverted so 0 is opaque and 255 is transparent.
type Color struct {
	B, G, R, A uint8
}

// NRGBA returns c with the alpha byte inverted back to the usual sense.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{c.R, c.G, c.B, 255 - c.A}
}

// RGBA implements the color.Color interface.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// ColorFromNRGBA is the inverse of Color.NRGBA.
func ColorFromNRGBA(c color.NRGBA) Color {
	return Color{B: c.B, G: c.G, R: c.R, A: 255 - c.A}
}

// ColorModel converts any color into a palette Color.
var ColorModel = color.ModelFunc(func(c color.Color) color.Color {
	if c, ok := c.(Color); ok {
		return c
	}
	return ColorFromNRGBA(color.NRGBAModel.Convert(c).(color.NRGBA))
})
