package imagefile

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/yanorei32/future2-utils/cursor"
	"github.com/yanorei32/future2-utils/raster"
	"github.com/yanorei32/future2-utils/warn"
)

type decoder struct {
	c *cursor.Cursor

	header   *Header
	mode     Mode
	palette  []color.NRGBA
	warnings warn.List

	// Pixels in file order, bottom row first
	image *image.NRGBA
}

func (d *decoder) readHeader() error {
	h, warnings, err := DecodeHeader(d.c)
	if err != nil {
		return err
	}
	d.header, d.warnings = h, warnings

	if d.mode, err = h.Mode(); err != nil {
		return err
	}

	d.palette = make([]color.NRGBA, len(h.Palette))
	for i, c := range h.Palette {
		d.palette[i] = c.NRGBA()
	}

	return nil
}

func (d *decoder) paletteColor(i uint8) (color.NRGBA, error) {
	if int(i) >= len(d.palette) {
		return color.NRGBA{}, fmt.Errorf("%w: %d of %d", ErrPaletteIndexOutOfRange, i, len(d.palette))
	}
	return d.palette[i], nil
}

// Expand a 5-bit channel to 8 bits, c*8 + c/4
func expand5(c uint16) uint8 {
	return uint8(c * 33 / 4)
}

func (d *decoder) readPixels() error {
	w, h := d.header.Width, d.header.Height
	if uint64(w)*uint64(h) > math.MaxInt32 {
		return fmt.Errorf("%w: %dx%d", ErrTooLarge, w, h)
	}

	rowBytes := d.mode.RowBytes(w)
	if need := rowBytes * uint64(h); need > uint64(d.c.Remaining()) {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedPixelData, need, d.c.Remaining())
	}

	d.image = image.NewNRGBA(image.Rect(0, 0, int(w), int(h)))

	for y := 0; y < int(h); y++ {
		row, err := d.c.ReadExact(int(rowBytes))
		if err != nil {
			return fmt.Errorf("%w: row %d: %v", ErrTruncatedPixelData, y, err)
		}

		dst := d.image.Pix[y*d.image.Stride:]

		for x := 0; x < int(w); x++ {
			var c color.NRGBA

			switch d.mode {
			case Palette4:
				i := row[x/2]
				if x&1 == 0 {
					i >>= 4
				} else {
					i &= 0x0f
				}
				if c, err = d.paletteColor(i); err != nil {
					return err
				}
			case Palette8:
				if c, err = d.paletteColor(row[x]); err != nil {
					return err
				}
			case RGB555:
				v := binary.LittleEndian.Uint16(row[x*2:])
				c = color.NRGBA{
					expand5(v >> 10 & 0x1f),
					expand5(v >> 5 & 0x1f),
					expand5(v & 0x1f),
					0xff,
				}
			case BGR888:
				p := row[x*3 : x*3+3]
				c = color.NRGBA{p[2], p[1], p[0], 0xff}
			case BGRA8888:
				p := row[x*4 : x*4+4]
				c = color.NRGBA{p[2], p[1], p[0], 255 - p[3]}
			}

			dst[x*4+0] = c.R
			dst[x*4+1] = c.G
			dst[x*4+2] = c.B
			dst[x*4+3] = c.A
		}
	}

	return nil
}

func (d *decoder) decode(b []byte, configOnly bool) error {
	d.c = cursor.New(b)

	if err := d.readHeader(); err != nil {
		return err
	}

	if configOnly {
		return nil
	}

	if err := d.readPixels(); err != nil {
		return err
	}

	if n := d.c.Remaining(); n > 0 {
		d.warnings.Addf("pixel_data", "%d trailing bytes after %d rows", n, d.header.Height)
	}

	return nil
}

// Decoded is the result of decoding an ImageFile.
type Decoded struct {
	Header *Header
	// Image is top-down, unlike the rows on disk
	Image    *image.NRGBA
	Warnings warn.List
}

// Decode reads an ImageFile from b, returning the header, the pixels as a
// top-down image and any warnings about unexpected header values.
func Decode(b []byte) (*Decoded, error) {
	var d decoder
	if err := d.decode(b, false); err != nil {
		return nil, err
	}
	return &Decoded{
		Header:   d.header,
		Image:    raster.FlipVertical(d.image),
		Warnings: d.warnings,
	}, nil
}

// DecodeConfig returns the header and palette of an ImageFile without decoding
// the pixels.
func DecodeConfig(b []byte) (*Header, warn.List, error) {
	var d decoder
	if err := d.decode(b, true); err != nil {
		return nil, nil, err
	}
	return d.header, d.warnings, nil
}
