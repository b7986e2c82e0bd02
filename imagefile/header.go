package imagefile

import (
	"fmt"
	"io"

	"github.com/yanorei32/future2-utils/bmp"
	"github.com/yanorei32/future2-utils/cursor"
	"github.com/yanorei32/future2-utils/warn"
)

// Header is the ImageFile header and palette. The mode tag and palette count
// are stored twice on disk but only once here.
type Header struct {
	Width           uint32
	Height          uint32
	BitDepth        uint16
	BitmapImageSize uint32
	ModeTag         uint32
	Palette         []bmp.Color
}

// NewHeader returns a Header for the given mode with the bitmap image size and
// mode tag computed.
func NewHeader(width, height uint32, mode Mode, palette []bmp.Color) *Header {
	return &Header{
		Width:           width,
		Height:          height,
		BitDepth:        mode.BitDepth(),
		BitmapImageSize: mode.imageSize(width, height),
		ModeTag:         mode.modeTag(),
		Palette:         palette,
	}
}

// Mode returns the Mode selected by the bit depth.
func (h *Header) Mode() (Mode, error) {
	return ModeFromBitDepth(h.BitDepth)
}

// PixelOffset returns the offset of the pixel data from the start of the file.
func (h *Header) PixelOffset() int {
	return HeaderSize + 4*len(h.Palette)
}

// DecodeHeader reads the header and palette. Only the header size, the two
// constants and the bit depth are fatal; anything else unexpected is returned
// as a warning.
func DecodeHeader(c *cursor.Cursor) (*Header, warn.List, error) {
	var raw struct {
		headerSize, width, height    uint32
		constant1, bitDepth          uint16
		constant0, imageSize         uint32
		modeTagA, modeTagB           uint32
		paletteCountA, paletteCountB uint32
	}

	var err error
	for _, v := range []*uint32{&raw.headerSize, &raw.width, &raw.height} {
		if *v, err = c.ReadU32(); err != nil {
			return nil, nil, err
		}
	}
	for _, v := range []*uint16{&raw.constant1, &raw.bitDepth} {
		if *v, err = c.ReadU16(); err != nil {
			return nil, nil, err
		}
	}
	for _, v := range []*uint32{&raw.constant0, &raw.imageSize, &raw.modeTagA, &raw.modeTagB, &raw.paletteCountA, &raw.paletteCountB} {
		if *v, err = c.ReadU32(); err != nil {
			return nil, nil, err
		}
	}

	if raw.headerSize != HeaderSize {
		return nil, nil, fmt.Errorf("%w: %#x", ErrBadHeaderSize, raw.headerSize)
	}
	if raw.constant1 != constant1 {
		return nil, nil, fmt.Errorf("%w: expected %d at 0x0c, got %d", ErrBadConstant, constant1, raw.constant1)
	}
	if raw.constant0 != constant0 {
		return nil, nil, fmt.Errorf("%w: expected %d at 0x10, got %d", ErrBadConstant, constant0, raw.constant0)
	}

	mode, err := ModeFromBitDepth(raw.bitDepth)
	if err != nil {
		return nil, nil, err
	}

	var warnings warn.List
	warnings.Mismatch("mode_tag", raw.modeTagA, mode.modeTag())
	warnings.Mismatch("mode_tag_b", raw.modeTagB, raw.modeTagA)
	warnings.Mismatch("palette_count_b", raw.paletteCountB, raw.paletteCountA)
	warnings.Mismatch("bitmap_image_size", raw.imageSize, mode.imageSize(raw.width, raw.height))

	if uint64(raw.paletteCountA)*4 > uint64(c.Remaining()) {
		return nil, nil, fmt.Errorf("imagefile: reading palette of %d colors: %w", raw.paletteCountA, io.ErrUnexpectedEOF)
	}

	h := &Header{
		Width:           raw.width,
		Height:          raw.height,
		BitDepth:        raw.bitDepth,
		BitmapImageSize: raw.imageSize,
		ModeTag:         raw.modeTagA,
		Palette:         make([]bmp.Color, raw.paletteCountA),
	}

	for i := range h.Palette {
		b, err := c.ReadExact(4)
		if err != nil {
			return nil, nil, err
		}
		h.Palette[i] = bmp.Color{B: b[0], G: b[1], R: b[2], A: b[3]}
	}

	return h, warnings, nil
}

// Encode writes the header and palette. Fields are written as stored, not
// recomputed from the mode; the duplicated fields are written from the single
// copy.
func (h *Header) Encode(c *cursor.Cursor) error {
	for _, v := range []uint32{HeaderSize, h.Width, h.Height} {
		if err := c.WriteU32(v); err != nil {
			return err
		}
	}
	for _, v := range []uint16{constant1, h.BitDepth} {
		if err := c.WriteU16(v); err != nil {
			return err
		}
	}
	n := uint32(len(h.Palette))
	for _, v := range []uint32{constant0, h.BitmapImageSize, h.ModeTag, h.ModeTag, n, n} {
		if err := c.WriteU32(v); err != nil {
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
