/*
Package raster bridges between the codecs in this module and the standard
image types.

ImageFile stores its rows bottom-up while image.Image is top-down, so every
conversion goes through one of the flips here. Reading and writing PNG and BMP
files is delegated to image/png and golang.org/x/image/bmp; the caller always
names the format, nothing is sniffed.
*/
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	xbmp "golang.org/x/image/bmp"
)

// Supported external formats
const (
	PNG = "png"
	BMP = "bmp"
)

// ErrUnknownFormat is returned for a format other than PNG or BMP
var ErrUnknownFormat = errors.New("raster: unknown format")

// FormatFromPath returns the format implied by the extension of path.
func FormatFromPath(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return PNG, nil
	case ".bmp":
		return BMP, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
}

// Decode reads an image in the given format.
func Decode(r io.Reader, format string) (image.Image, error) {
	switch format {
	case PNG:
		return png.Decode(r)
	case BMP:
		return xbmp.Decode(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// EncodePNG writes m to w as a PNG.
func EncodePNG(w io.Writer, m image.Image) error {
	return png.Encode(w, m)
}

// EncodeBMP writes m to w as a BMP.
func EncodeBMP(w io.Writer, m image.Image) error {
	return xbmp.Encode(w, m)
}

// ToNRGBA returns m as an *image.NRGBA with its top-left corner at (0, 0). The
// pixels are always copied.
func ToNRGBA(m image.Image) *image.NRGBA {
	b := m.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), m, b.Min, draw.Src)
	return dst
}

func flip(dst, src []byte, dstStride int, srcOffset func(y int) int, rowLen, height int) {
	for y := 0; y < height; y++ {
		s := srcOffset(height - 1 - y)
		copy(dst[y*dstStride:y*dstStride+rowLen], src[s:s+rowLen])
	}
}

// FlipVertical returns a copy of m upside down with its top-left corner at
// (0, 0).
func FlipVertical(m *image.NRGBA) *image.NRGBA {
	b := m.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	flip(dst.Pix, m.Pix, dst.Stride, func(y int) int {
		return m.PixOffset(b.Min.X, b.Min.Y+y)
	}, 4*b.Dx(), b.Dy())
	return dst
}

// FlipPaletted is FlipVertical for paletted images. The palette is shared
// with m.
func FlipPaletted(m *image.Paletted) *image.Paletted {
	b := m.Bounds()
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), m.Palette)
	flip(dst.Pix, m.Pix, dst.Stride, func(y int) int {
		return m.PixOffset(b.Min.X, b.Min.Y+y)
	}, b.Dx(), b.Dy())
	return dst
}
