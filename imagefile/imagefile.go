/*
Package imagefile implements the ImageFile decoder and encoder.

An ImageFile is laid out much like a DIB with unsigned dimensions. It starts
with a 40 byte little-endian header:

	0x00 header size, always 0x28
	0x04 width
	0x08 height
	0x0c 1 (16-bit)
	0x0e bit depth (16-bit): 4, 8, 16, 24 or 32
	0x10 0
	0x14 bitmap image size, rows*height for 16 and 32 bpp, otherwise 0
	0x18 2834 for paletted or 24 bpp images, otherwise 0
	0x1c copy of 0x18
	0x20 palette entry count
	0x24 copy of 0x20

The palette follows as four bytes per entry (B, G, R and an inverted alpha)
and then the pixel rows, bottom row first. Every row is padded to a multiple
of four bytes. Pixels are 4-bit palette indices (high nibble first), 8-bit
palette indices, 16-bit RGB555, 24-bit BGR or 32-bit BGRA with inverted alpha.
*/
package imagefile

import (
	"errors"
	"fmt"
)

const (
	// HeaderSize is the fixed size of the header before the palette
	HeaderSize = 0x28

	constant1    = 1
	constant0    = 0
	pelsPerMeter = 2834
)

var (
	// ErrBadHeaderSize is returned when the header size field is not 0x28
	ErrBadHeaderSize = errors.New("imagefile: bad header size")
	// ErrBadConstant is returned when one of the constant fields is wrong
	ErrBadConstant = errors.New("imagefile: bad constant")
	// ErrUnsupportedBitDepth is returned for bit depths other than 4, 8, 16, 24 or 32
	ErrUnsupportedBitDepth = errors.New("imagefile: unsupported bit depth")
	// ErrTruncatedPixelData is returned when the pixel rows end early
	ErrTruncatedPixelData = errors.New("imagefile: truncated pixel data")
	// ErrPaletteIndexOutOfRange is returned for an index past the end of the palette
	ErrPaletteIndexOutOfRange = errors.New("imagefile: palette index out of range")
	// ErrColorNotInPalette is returned when encoding a color missing from the palette
	ErrColorNotInPalette = errors.New("imagefile: color not in palette")
	// ErrSizeMismatch is returned when the pixels do not match the header dimensions
	ErrSizeMismatch = errors.New("imagefile: image size does not match header")
	// ErrTooLarge is returned for dimensions that cannot be addressed
	ErrTooLarge = errors.New("imagefile: image too large")
)

// Mode is the pixel layout selected by the bit depth.
type Mode int

// Supported modes
const (
	Palette4 Mode = iota
	Palette8
	RGB555
	BGR888
	BGRA8888
)

var modeNames = [...]string{
	Palette4: "Palette4",
	Palette8: "Palette8",
	RGB555:   "RGB555",
	BGR888:   "BGR888",
	BGRA8888: "BGRA8888",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ModeFromBitDepth returns the Mode for bit depth d.
func ModeFromBitDepth(d uint16) (Mode, error) {
	switch d {
	case 4:
		return Palette4, nil
	case 8:
		return Palette8, nil
	case 16:
		return RGB555, nil
	case 24:
		return BGR888, nil
	case 32:
		return BGRA8888, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, d)
	}
}

// BitDepth returns the number of bits per pixel.
func (m Mode) BitDepth() uint16 {
	return [...]uint16{4, 8, 16, 24, 32}[m]
}

// Paletted reports whether pixels are palette indices.
func (m Mode) Paletted() bool {
	return m == Palette4 || m == Palette8
}

// MaxColors returns the number of addressable palette entries, or zero for
// direct color modes.
func (m Mode) MaxColors() int {
	switch m {
	case Palette4:
		return 1 << 4
	case Palette8:
		return 1 << 8
	default:
		return 0
	}
}

func (m Mode) modeTag() uint32 {
	if m.Paletted() || m == BGR888 {
		return pelsPerMeter
	}
	return 0
}

// rawRowBytes returns the bytes used by the pixels of one row.
func (m Mode) rawRowBytes(width uint64) uint64 {
	switch m {
	case Palette4:
		return (width + 1) / 2
	case Palette8:
		return width
	default:
		return width * uint64(m.BitDepth()/8)
	}
}

// RowBytes returns the length of one row on disk, including padding.
func (m Mode) RowBytes(width uint32) uint64 {
	return (m.rawRowBytes(uint64(width)) + 3) / 4 * 4
}

// PixelBytes returns the length of the pixel data on disk.
func (m Mode) PixelBytes(width, height uint32) uint64 {
	return m.RowBytes(width) * uint64(height)
}

// imageSize is the expected value of the bitmap image size field.
func (m Mode) imageSize(width, height uint32) uint32 {
	switch m {
	case RGB555, BGRA8888:
		return uint32(m.PixelBytes(width, height))
	default:
		return 0
	}
}
