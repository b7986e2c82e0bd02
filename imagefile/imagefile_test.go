package imagefile

import (
	"errors"
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanorei32/future2-utils/bmp"
	"github.com/yanorei32/future2-utils/cursor"
)

type rawFile struct {
	headerSize         uint32
	width, height      uint32
	constant1          uint16
	bitDepth           uint16
	constant0          uint32
	imageSize          uint32
	modeTagA, modeTagB uint32
	paletteA, paletteB uint32
	palette            []bmp.Color
	pixels             []byte
}

// newRaw returns a well formed file for the given mode
func newRaw(width, height uint32, mode Mode, palette []bmp.Color, pixels []byte) rawFile {
	return rawFile{
		headerSize: HeaderSize,
		width:      width,
		height:     height,
		constant1:  1,
		bitDepth:   mode.BitDepth(),
		imageSize:  mode.imageSize(width, height),
		modeTagA:   mode.modeTag(),
		modeTagB:   mode.modeTag(),
		paletteA:   uint32(len(palette)),
		paletteB:   uint32(len(palette)),
		palette:    palette,
		pixels:     pixels,
	}
}

func (r rawFile) bytes() []byte {
	c := cursor.NewWriter(0)
	c.WriteU32(r.headerSize)
	c.WriteU32(r.width)
	c.WriteU32(r.height)
	c.WriteU16(r.constant1)
	c.WriteU16(r.bitDepth)
	for _, v := range []uint32{r.constant0, r.imageSize, r.modeTagA, r.modeTagB, r.paletteA, r.paletteB} {
		c.WriteU32(v)
	}
	for _, p := range r.palette {
		c.Write([]byte{p.B, p.G, p.R, p.A})
	}
	c.Write(r.pixels)
	return c.Bytes()
}

var (
	red         = bmp.Color{B: 0, G: 0, R: 255, A: 0}
	green       = bmp.Color{B: 0, G: 255, R: 0, A: 0}
	blue        = bmp.Color{B: 255, G: 0, R: 0, A: 0}
	transparent = bmp.Color{B: 0, G: 0, R: 0, A: 255}

	opaqueRed   = color.NRGBA{255, 0, 0, 255}
	opaqueGreen = color.NRGBA{0, 255, 0, 255}
	opaqueBlue  = color.NRGBA{0, 0, 255, 255}
)

func row(m *image.NRGBA, y int) []color.NRGBA {
	var r []color.NRGBA
	for x := m.Rect.Min.X; x < m.Rect.Max.X; x++ {
		r = append(r, m.NRGBAAt(x, y))
	}
	return r
}

func TestDecodePalette8(t *testing.T) {
	b := newRaw(2, 2, Palette8, []bmp.Color{red, green}, []byte{
		0x00, 0x01, 0x00, 0x00,
		0x01, 0x00, 0x00, 0x00,
	}).bytes()

	d, err := Decode(b)
	require.NoError(t, err)
	assert.Empty(t, d.Warnings)

	assert.Equal(t, uint32(2), d.Header.Width)
	assert.Equal(t, []bmp.Color{red, green}, d.Header.Palette)
	assert.Equal(t, []color.NRGBA{opaqueGreen, opaqueRed}, row(d.Image, 0))
	assert.Equal(t, []color.NRGBA{opaqueRed, opaqueGreen}, row(d.Image, 1))
}

func TestDecodeRGB555(t *testing.T) {
	b := newRaw(3, 1, RGB555, nil, []byte{
		0xff, 0x7f, 0x00, 0x00, 0x1f, 0x00, 0x00, 0x00,
	}).bytes()

	d, err := Decode(b)
	require.NoError(t, err)
	assert.Empty(t, d.Warnings)
	assert.Equal(t, []color.NRGBA{
		{255, 255, 255, 255},
		{0, 0, 0, 255},
		{0, 0, 255, 255},
	}, row(d.Image, 0))
}

func TestExpand5(t *testing.T) {
	assert.Equal(t, uint8(0), expand5(0))
	assert.Equal(t, uint8(255), expand5(31))

	for c := uint16(1); c < 32; c++ {
		assert.Greater(t, expand5(c), expand5(c-1))
		assert.Equal(t, uint8(c*8+c/4), expand5(c))
	}
}

func TestDecodePalette4OddWidth(t *testing.T) {
	// The low nibble of the last byte in each row would be out of range if
	// it were read
	b := newRaw(3, 2, Palette4, []bmp.Color{transparent, red, green, blue}, []byte{
		0x12, 0x3f, 0xee, 0xee,
		0x21, 0x0f, 0xee, 0xee,
	}).bytes()

	d, err := Decode(b)
	require.NoError(t, err)
	assert.Empty(t, d.Warnings)

	assert.Equal(t, []color.NRGBA{opaqueGreen, opaqueRed, {0, 0, 0, 0}}, row(d.Image, 0))
	assert.Equal(t, []color.NRGBA{opaqueRed, opaqueGreen, opaqueBlue}, row(d.Image, 1))
}

func TestDecodeBGR888(t *testing.T) {
	b := newRaw(1, 2, BGR888, nil, []byte{
		0x01, 0x02, 0x03, 0x00,
		0x04, 0x05, 0x06, 0x00,
	}).bytes()

	d, err := Decode(b)
	require.NoError(t, err)
	assert.Empty(t, d.Warnings)
	assert.Equal(t, color.NRGBA{6, 5, 4, 255}, d.Image.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{3, 2, 1, 255}, d.Image.NRGBAAt(0, 1))
}

func TestDecodeBGRA8888(t *testing.T) {
	b := newRaw(2, 1, BGRA8888, nil, []byte{
		0x01, 0x02, 0x03, 0x00,
		0x04, 0x05, 0x06, 0xff,
	}).bytes()

	d, err := Decode(b)
	require.NoError(t, err)
	assert.Empty(t, d.Warnings)
	assert.Equal(t, []color.NRGBA{{3, 2, 1, 255}, {6, 5, 4, 0}}, row(d.Image, 0))
}

func TestPixelBytes(t *testing.T) {
	tests := []struct {
		mode   Mode
		width  uint32
		height uint32
		want   uint64
	}{
		{Palette4, 1, 3, 4 * 3},
		{Palette4, 9, 2, 8 * 2},
		{Palette8, 2, 2, 4 * 2},
		{Palette8, 5, 1, 8},
		{RGB555, 3, 2, 8 * 2},
		{RGB555, 2, 2, 4 * 2},
		{BGR888, 1, 1, 4},
		{BGR888, 5, 2, 16 * 2},
		{BGRA8888, 3, 3, 12 * 3},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mode.PixelBytes(tt.width, tt.height))

			var palette []bmp.Color
			if tt.mode.Paletted() {
				palette = []bmp.Color{transparent}
			}
			b := newRaw(tt.width, tt.height, tt.mode, palette, make([]byte, tt.want)).bytes()

			d, err := Decode(b)
			require.NoError(t, err)
			assert.Empty(t, d.Warnings, "all pixel bytes should be consumed")

			_, err = Decode(b[:len(b)-1])
			assert.True(t, errors.Is(err, ErrTruncatedPixelData))
		})
	}
}

func TestModeFromBitDepth(t *testing.T) {
	for _, m := range []Mode{Palette4, Palette8, RGB555, BGR888, BGRA8888} {
		got, err := ModeFromBitDepth(m.BitDepth())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	_, err := ModeFromBitDepth(1)
	assert.True(t, errors.Is(err, ErrUnsupportedBitDepth))
	assert.Equal(t, "Mode(7)", Mode(7).String())
}

func TestDecodeErrors(t *testing.T) {
	good := func() rawFile {
		return newRaw(2, 1, Palette8, []bmp.Color{red}, []byte{0x00, 0x00, 0x00, 0x00})
	}

	tests := []struct {
		name   string
		modify func(*rawFile)
		err    error
	}{
		{"header size", func(r *rawFile) { r.headerSize = 0x6c }, ErrBadHeaderSize},
		{"constant 1", func(r *rawFile) { r.constant1 = 2 }, ErrBadConstant},
		{"constant 0", func(r *rawFile) { r.constant0 = 1 }, ErrBadConstant},
		{"bit depth", func(r *rawFile) { r.bitDepth = 12 }, ErrUnsupportedBitDepth},
		{"palette index", func(r *rawFile) { r.pixels = []byte{0x00, 0x01, 0x00, 0x00} }, ErrPaletteIndexOutOfRange},
		{"truncated pixels", func(r *rawFile) { r.pixels = r.pixels[:3] }, ErrTruncatedPixelData},
		{"truncated palette", func(r *rawFile) { r.paletteA, r.paletteB, r.pixels = 3, 3, nil }, io.ErrUnexpectedEOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := good()
			tt.modify(&r)

			_, err := Decode(r.bytes())
			assert.True(t, errors.Is(err, tt.err), "got %v", err)
		})
	}

	_, err := Decode([]byte{0x28, 0x00})
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestDecodeWarnings(t *testing.T) {
	r := newRaw(2, 1, Palette8, []bmp.Color{red, green}, []byte{0x00, 0x01, 0x00, 0x00, 0xaa})
	r.modeTagA = 0
	r.modeTagB = 1
	r.paletteB = 3
	r.imageSize = 4

	d, err := Decode(r.bytes())
	require.NoError(t, err)
	assert.Equal(t, []color.NRGBA{opaqueRed, opaqueGreen}, row(d.Image, 0))

	var fields []string
	for _, w := range d.Warnings {
		fields = append(fields, w.Field)
	}
	assert.Equal(t, []string{"mode_tag", "mode_tag_b", "palette_count_b", "bitmap_image_size", "pixel_data"}, fields)
}

func TestDecodeConfig(t *testing.T) {
	b := newRaw(2, 2, Palette8, []bmp.Color{red, green}, nil).bytes()

	h, warnings, err := DecodeConfig(b)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	mode, err := h.Mode()
	require.NoError(t, err)
	assert.Equal(t, Palette8, mode)
	assert.Equal(t, HeaderSize+8, h.PixelOffset())

	_, err = Decode(b)
	assert.True(t, errors.Is(err, ErrTruncatedPixelData))
}

func TestHeaderEncode(t *testing.T) {
	r := newRaw(7, 3, BGRA8888, nil, nil)
	b := r.bytes()

	h, warnings, err := DecodeHeader(cursor.New(b))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, NewHeader(7, 3, BGRA8888, []bmp.Color{}), h)

	c := cursor.NewWriter(0)
	require.NoError(t, h.Encode(c))
	assert.Equal(t, b, c.Bytes())

	// Anomalous values survive a round trip
	r.imageSize = 0
	b = r.bytes()
	h, warnings, err = DecodeHeader(cursor.New(b))
	require.NoError(t, err)
	assert.Len(t, warnings, 1)

	c = cursor.NewWriter(0)
	require.NoError(t, h.Encode(c))
	assert.Equal(t, b, c.Bytes())
}

func TestEncodeRowsPalette8(t *testing.T) {
	h := NewHeader(2, 2, Palette8, []bmp.Color{red, green})

	// Bottom row first
	pix := []byte{
		255, 0, 0, 255, 0, 255, 0, 255,
		0, 255, 0, 255, 255, 0, 0, 255,
	}

	b, warnings, err := EncodeRows(h, pix)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, newRaw(2, 2, Palette8, []bmp.Color{red, green}, []byte{
		0x00, 0x01, 0x00, 0x00,
		0x01, 0x00, 0x00, 0x00,
	}).bytes(), b)

	d, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, []color.NRGBA{opaqueGreen, opaqueRed}, row(d.Image, 0))
	assert.Equal(t, []color.NRGBA{opaqueRed, opaqueGreen}, row(d.Image, 1))
}

func TestEncodeRowsBGRA8888(t *testing.T) {
	h := NewHeader(1, 2, BGRA8888, nil)
	pix := []byte{
		10, 20, 30, 255,
		40, 50, 60, 100,
	}

	b, warnings, err := EncodeRows(h, pix)
	require.NoError(t, err)
	if assert.Len(t, warnings, 1) {
		assert.Equal(t, "alpha", warnings[0].Field)
	}

	d, err := Decode(b)
	require.NoError(t, err)
	assert.Empty(t, d.Warnings)

	// Alpha comes back inverted
	assert.Equal(t, color.NRGBA{40, 50, 60, 155}, d.Image.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{10, 20, 30, 0}, d.Image.NRGBAAt(0, 1))
}

func TestEncodeRoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			// Values that survive 5-bit quantization
			v := uint8((x*3 + y) * 33 / 4)
			src.SetNRGBA(x, y, color.NRGBA{v, 255 - v, v / 2 * 2, 255})
		}
	}

	for _, mode := range []Mode{RGB555, BGR888} {
		t.Run(mode.String(), func(t *testing.T) {
			b, warnings, err := Encode(NewHeader(3, 2, mode, nil), src)
			require.NoError(t, err)
			assert.Empty(t, warnings)

			d, err := Decode(b)
			require.NoError(t, err)
			assert.Empty(t, d.Warnings)

			if mode == BGR888 {
				assert.Equal(t, src.Pix, d.Image.Pix)
				return
			}
			for y := 0; y < 2; y++ {
				for x := 0; x < 3; x++ {
					want := src.NRGBAAt(x, y)
					got := d.Image.NRGBAAt(x, y)
					assert.Equal(t, want.R>>3, got.R>>3)
					assert.Equal(t, want.G>>3, got.G>>3)
					assert.Equal(t, want.B>>3, got.B>>3)
				}
			}
		})
	}
}

func TestEncodePaletted(t *testing.T) {
	palette := []bmp.Color{transparent, red, green, blue}
	cp := make(color.Palette, len(palette))
	for i, c := range palette {
		cp[i] = c
	}

	src := image.NewPaletted(image.Rect(0, 0, 3, 2), cp)
	src.Pix = []uint8{
		1, 2, 3,
		3, 0, 1,
	}

	for _, mode := range []Mode{Palette4, Palette8} {
		t.Run(mode.String(), func(t *testing.T) {
			b, _, err := Encode(NewHeader(3, 2, mode, palette), src)
			require.NoError(t, err)

			d, err := Decode(b)
			require.NoError(t, err)
			assert.Empty(t, d.Warnings)
			assert.Equal(t, []color.NRGBA{opaqueRed, opaqueGreen, opaqueBlue}, row(d.Image, 0))
			assert.Equal(t, []color.NRGBA{opaqueBlue, {0, 0, 0, 0}, opaqueRed}, row(d.Image, 1))
		})
	}

	b, _, err := Encode(NewHeader(3, 2, Palette4, palette), src)
	require.NoError(t, err)
	// Bottom row first, high nibble first, padded to four bytes
	assert.Equal(t, []byte{
		0x30, 0x10, 0x00, 0x00,
		0x12, 0x30, 0x00, 0x00,
	}, b[HeaderSize+16:])
}

func TestEncodeErrors(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.SetNRGBA(0, 0, opaqueBlue)

	_, _, err := Encode(NewHeader(1, 1, Palette8, []bmp.Color{red}), src)
	assert.True(t, errors.Is(err, ErrColorNotInPalette))

	_, _, err = Encode(NewHeader(2, 1, BGR888, nil), src)
	assert.True(t, errors.Is(err, ErrSizeMismatch))

	_, _, err = EncodeRows(NewHeader(1, 1, BGR888, nil), []byte{1, 2, 3})
	assert.True(t, errors.Is(err, ErrSizeMismatch))

	_, _, err = Encode(&Header{Width: 1, Height: 1, BitDepth: 2}, src)
	assert.True(t, errors.Is(err, ErrUnsupportedBitDepth))

	pm := image.NewPaletted(image.Rect(0, 0, 1, 1), color.Palette{red, green})
	pm.SetColorIndex(0, 0, 1)
	_, _, err = Encode(NewHeader(1, 1, Palette8, []bmp.Color{red}), pm)
	assert.True(t, errors.Is(err, ErrPaletteIndexOutOfRange))
}
