package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradient() *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			m.SetNRGBA(x, y, color.NRGBA{uint8(x * 100), uint8(y * 100), 0x7f, 0xff})
		}
	}
	return m
}

func TestFlipVertical(t *testing.T) {
	m := gradient()
	f := FlipVertical(m)

	assert.Equal(t, m.Bounds(), f.Bounds())
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			assert.Equal(t, m.NRGBAAt(x, 1-y), f.NRGBAAt(x, y))
		}
	}
	assert.Equal(t, m, FlipVertical(f))
}

func TestFlipVerticalSubImage(t *testing.T) {
	m := gradient().SubImage(image.Rect(1, 0, 3, 2)).(*image.NRGBA)
	f := FlipVertical(m)

	assert.Equal(t, image.Rect(0, 0, 2, 2), f.Bounds())
	assert.Equal(t, m.NRGBAAt(1, 1), f.NRGBAAt(0, 0))
	assert.Equal(t, m.NRGBAAt(2, 0), f.NRGBAAt(1, 1))
}

func TestFlipPaletted(t *testing.T) {
	p := color.Palette{color.Black, color.White}
	m := image.NewPaletted(image.Rect(0, 0, 2, 3), p)
	m.SetColorIndex(0, 0, 1)
	m.SetColorIndex(1, 2, 1)

	f := FlipPaletted(m)
	assert.Equal(t, uint8(1), f.ColorIndexAt(0, 2))
	assert.Equal(t, uint8(1), f.ColorIndexAt(1, 0))
	assert.Equal(t, uint8(0), f.ColorIndexAt(0, 0))
	assert.Equal(t, p, f.Palette)
}

func TestToNRGBA(t *testing.T) {
	m := image.NewRGBA(image.Rect(5, 5, 6, 6))
	m.Set(5, 5, color.RGBA{0x10, 0x20, 0x30, 0xff})

	n := ToNRGBA(m)
	assert.Equal(t, image.Rect(0, 0, 1, 1), n.Bounds())
	assert.Equal(t, color.NRGBA{0x10, 0x20, 0x30, 0xff}, n.NRGBAAt(0, 0))
}

func TestRoundTrip(t *testing.T) {
	m := gradient()

	for _, format := range []string{PNG, BMP} {
		t.Run(format, func(t *testing.T) {
			b := new(bytes.Buffer)
			if format == PNG {
				require.NoError(t, EncodePNG(b, m))
			} else {
				require.NoError(t, EncodeBMP(b, m))
			}

			got, err := Decode(b, format)
			require.NoError(t, err)
			assert.Equal(t, m.Pix, ToNRGBA(got).Pix)
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
		err  error
	}{
		{"a/b/sprite.PNG", PNG, nil},
		{"sprite.bmp", BMP, nil},
		{"sprite.dib", "", ErrUnknownFormat},
		{"sprite.data", "", ErrUnknownFormat},
	}

	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if tt.err != nil {
			assert.True(t, errors.Is(err, tt.err))
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := Decode(new(bytes.Buffer), "gif")
	assert.True(t, errors.Is(err, ErrUnknownFormat))
}
