package bmp

import (
	"fmt"

	"github.com/yanorei32/future2-utils/cursor"
)

const maxPaletteEntries = 1 << 16

// FileHeader is the BITMAPFILEHEADER. The magic is implicit.
type FileHeader struct {
	Size     uint32
	Reserved uint32
	OffBits  uint32
}

// DecodeFileHeader reads a FileHeader, failing with ErrBadMagic unless the
// first two bytes are "BM".
func DecodeFileHeader(c *cursor.Cursor) (*FileHeader, error) {
	magic, err := c.ReadExact(2)
	if err != nil {
		return nil, err
	}
	if magic[0] != 'B' || magic[1] != 'M' {
		return nil, ErrBadMagic
	}

	h := new(FileHeader)
	for _, v := range []*uint32{&h.Size, &h.Reserved, &h.OffBits} {
		if *v, err = c.ReadU32(); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Encode writes the FileHeader including the magic.
func (h FileHeader) Encode(c *cursor.Cursor) error {
	if _, err := c.Write([]byte{'B', 'M'}); err != nil {
		return err
	}
	for _, v := range []uint32{h.Size, h.Reserved, h.OffBits} {
		if err := c.WriteU32(v); err != nil {
			return err
		}
	}
	return nil
}

// InfoHeader is the BITMAPINFOHEADER followed by its optional bit mask segment
// and palette.
type InfoHeader struct {
	HeaderSize    uint32
	Width         int32
	Height        int32
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32

	// Extra holds the V4/V5 fields beyond the first 40 bytes, verbatim
	Extra []byte
	// BitFields holds the 12 byte mask segment of a 40 byte BI_BITFIELDS header
	BitFields []byte
	Palette   []Color
}

// PaletteLen returns the number of palette entries implied by the header
// fields. A zero ClrUsed means the full palette for 8 bits or fewer.
func (h *InfoHeader) PaletteLen() int {
	if h.ClrUsed == 0 && h.BitCount >= 1 && h.BitCount <= 8 {
		return 1 << h.BitCount
	}
	return int(h.ClrUsed)
}

// PaletteOffset returns the offset of the palette from the start of the DIB.
func (h *InfoHeader) PaletteOffset() uint32 {
	return h.HeaderSize + uint32(len(h.BitFields))
}

// PixelOffset returns the offset of the pixel data from the start of the DIB.
func (h *InfoHeader) PixelOffset() uint32 {
	return h.PaletteOffset() + 4*uint32(len(h.Palette))
}

// DecodeInfoHeader reads an InfoHeader and its palette.
func DecodeInfoHeader(c *cursor.Cursor) (*InfoHeader, error) {
	h := new(InfoHeader)

	var err error
	if h.HeaderSize, err = c.ReadU32(); err != nil {
		return nil, err
	}

	switch h.HeaderSize {
	case InfoHeaderSize, infoHeaderV4Size, infoHeaderV5Size:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedHeader, h.HeaderSize)
	}

	if h.Width, err = c.ReadI32(); err != nil {
		return nil, err
	}
	if h.Height, err = c.ReadI32(); err != nil {
		return nil, err
	}
	if h.Planes, err = c.ReadU16(); err != nil {
		return nil, err
	}
	if h.BitCount, err = c.ReadU16(); err != nil {
		return nil, err
	}
	if h.Compression, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if h.SizeImage, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if h.XPelsPerMeter, err = c.ReadI32(); err != nil {
		return nil, err
	}
	if h.YPelsPerMeter, err = c.ReadI32(); err != nil {
		return nil, err
	}
	if h.ClrUsed, err = c.ReadU32(); err != nil {
		return nil, err
	}
	if h.ClrImportant, err = c.ReadU32(); err != nil {
		return nil, err
	}

	if h.HeaderSize > InfoHeaderSize {
		if h.Extra, err = c.ReadExact(int(h.HeaderSize - InfoHeaderSize)); err != nil {
			return nil, err
		}
	} else if h.Compression == CompressionBitFields {
		if h.BitFields, err = c.ReadExact(bitFieldsSize); err != nil {
			return nil, err
		}
	}

	n := h.PaletteLen()
	if n > maxPaletteEntries {
		return nil, fmt.Errorf("%w: %d", ErrBadPaletteSize, n)
	}

	h.Palette = make([]Color, n)
	for i := range h.Palette {
		b, err := c.ReadExact(4)
		if err != nil {
			return nil, err
		}
		h.Palette[i] = Color{B: b[0], G: b[1], R: b[2], A: b[3]}
	}

	return h, nil
}

// Encode writes the InfoHeader fields, the mask segment and the palette.
// HeaderSize is written as stored and must agree with the length of Extra.
func (h *InfoHeader) Encode(c *cursor.Cursor) error {
	if h.HeaderSize != InfoHeaderSize+uint32(len(h.Extra)) {
		return fmt.Errorf("%w: %d with %d extra bytes", ErrUnsupportedHeader, h.HeaderSize, len(h.Extra))
	}

	for _, v := range []uint32{h.HeaderSize, uint32(h.Width), uint32(h.Height)} {
		if err := c.WriteU32(v); err != nil {
			return err
		}
	}
	if err := c.WriteU16(h.Planes); err != nil {
		return err
	}
	if err := c.WriteU16(h.BitCount); err != nil {
		return err
	}
	for _, v := range []uint32{h.Compression, h.SizeImage, uint32(h.XPelsPerMeter), uint32(h.YPelsPerMeter), h.ClrUsed, h.ClrImportant} {
		if err := c.WriteU32(v); err != nil {
			return err
		}
	}

	for _, b := range [][]byte{h.Extra, h.BitFields} {
		if _, err := c.Write(b); err != nil {
			return err
		}
	}

	for _, p := range h.Palette {
		if _, err := c.Write([]byte{p.B, p.G, p.R, p.A}); err != nil {
			return err
		}
	}

	return nil
}
