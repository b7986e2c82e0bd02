package imagefile

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"

	"github.com/yanorei32/future2-utils/cursor"
	"github.com/yanorei32/future2-utils/raster"
	"github.com/yanorei32/future2-utils/warn"
)

type encoder struct {
	c *cursor.Cursor

	header   *Header
	mode     Mode
	indices  map[color.NRGBA]uint8
	warnings warn.List
}

func (e *encoder) index(m image.Image, x, y int) (uint8, error) {
	var i uint8
	if pm, ok := m.(*image.Paletted); ok {
		i = pm.ColorIndexAt(x, y)
	} else {
		c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
		var ok bool
		if i, ok = e.indices[c]; !ok {
			return 0, fmt.Errorf("%w: %v at (%d, %d)", ErrColorNotInPalette, c, x, y)
		}
	}
	if int(i) >= len(e.header.Palette) || int(i) >= e.mode.MaxColors() {
		return 0, fmt.Errorf("%w: %d at (%d, %d)", ErrPaletteIndexOutOfRange, i, x, y)
	}
	return i, nil
}

// m has its rows in file order, bottom row first
func (e *encoder) encode(m image.Image) error {
	b := m.Bounds()

	if e.mode.Paletted() {
		// First entry wins when the palette holds duplicates
		e.indices = make(map[color.NRGBA]uint8, len(e.header.Palette))
		for i := len(e.header.Palette) - 1; i >= 0; i-- {
			if i < e.mode.MaxColors() {
				e.indices[e.header.Palette[i].NRGBA()] = uint8(i)
			}
		}
	}

	if e.mode == BGRA8888 {
		e.warnings.Addf("alpha", "32 bpp alpha is written as is but inverted when read back")
	}

	if err := e.header.Encode(e.c); err != nil {
		return err
	}

	row := make([]byte, e.mode.RowBytes(e.header.Width))

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for i := range row {
			row[i] = 0
		}

		for x := 0; x < b.Dx(); x++ {
			switch e.mode {
			case Palette4, Palette8:
				i, err := e.index(m, b.Min.X+x, y)
				if err != nil {
					return err
				}
				if e.mode == Palette8 {
					row[x] = i
				} else if x&1 == 0 {
					row[x/2] = i << 4
				} else {
					row[x/2] |= i
				}
			default:
				c := color.NRGBAModel.Convert(m.At(b.Min.X+x, y)).(color.NRGBA)
				switch e.mode {
				case RGB555:
					binary.LittleEndian.PutUint16(row[x*2:], uint16(c.R>>3)<<10|uint16(c.G>>3)<<5|uint16(c.B>>3))
				case BGR888:
					copy(row[x*3:], []byte{c.B, c.G, c.R})
				case BGRA8888:
					copy(row[x*4:], []byte{c.B, c.G, c.R, c.A})
				}
			}
		}

		if _, err := e.c.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func encode(h *Header, m image.Image) ([]byte, warn.List, error) {
	mode, err := h.Mode()
	if err != nil {
		return nil, nil, err
	}

	b := m.Bounds()
	if uint64(b.Dx()) != uint64(h.Width) || uint64(b.Dy()) != uint64(h.Height) {
		return nil, nil, fmt.Errorf("%w: image is %dx%d, header is %dx%d", ErrSizeMismatch, b.Dx(), b.Dy(), h.Width, h.Height)
	}

	e := encoder{
		c:      cursor.NewWriter(h.PixelOffset() + int(mode.PixelBytes(h.Width, h.Height))),
		header: h,
		mode:   mode,
	}
	if err := e.encode(m); err != nil {
		return nil, nil, err
	}
	return e.c.Bytes(), e.warnings, nil
}

// EncodeRows writes an ImageFile with header h from pix, which holds the rows
// as 8-bit R, G, B, A in file order, bottom row first.
//
// Paletted modes look every pixel up in the header palette. The 32 bpp mode
// writes alpha unchanged, so decoding the result inverts it; a warning says
// so.
func EncodeRows(h *Header, pix []byte) ([]byte, warn.List, error) {
	if uint64(len(pix)) != 4*uint64(h.Width)*uint64(h.Height) {
		return nil, nil, fmt.Errorf("%w: %d bytes for %dx%d", ErrSizeMismatch, len(pix), h.Width, h.Height)
	}

	return encode(h, &image.NRGBA{
		Pix:    pix,
		Stride: 4 * int(h.Width),
		Rect:   image.Rect(0, 0, int(h.Width), int(h.Height)),
	})
}

// Encode writes the top-down image m as an ImageFile with header h. An
// *image.Paletted in a paletted mode has its color indices written directly,
// so its palette should agree with h.Palette.
func Encode(h *Header, m image.Image) ([]byte, warn.List, error) {
	if pm, ok := m.(*image.Paletted); ok {
		return encode(h, raster.FlipPaletted(pm))
	}
	return encode(h, raster.FlipVertical(raster.ToNRGBA(m)))
}
