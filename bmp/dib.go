package bmp

import (
	"errors"
	"fmt"
	"math"

	"github.com/yanorei32/future2-utils/cursor"
)

// ErrTooLarge is returned when a DIB is too big to be addressed by the 32-bit
// size field of the file header
var ErrTooLarge = errors.New("bmp: file too large")

// StripToDIB removes the 14 byte file header from a BMP file, returning the
// DIB as a new slice.
func StripToDIB(b []byte) ([]byte, error) {
	c := cursor.New(b)
	if _, err := DecodeFileHeader(c); err != nil {
		return nil, fmt.Errorf("bmp: reading file header: %w", err)
	}
	return c.ReadExact(c.Remaining())
}

// WrapDIB rebuilds a BMP file from a DIB. The pixel offset is derived from the
// embedded info header and palette; for a plain 40 byte header with N palette
// entries it is 14 + 40 + 4*N.
func WrapDIB(dib []byte) ([]byte, error) {
	h, err := DecodeInfoHeader(cursor.New(dib))
	if err != nil {
		return nil, fmt.Errorf("bmp: reading info header: %w", err)
	}

	if uint64(len(dib)) > math.MaxUint32-FileHeaderSize {
		return nil, ErrTooLarge
	}

	c := cursor.NewWriter(FileHeaderSize + len(dib))

	fh := FileHeader{
		Size: uint32(FileHeaderSize + len(dib)),
		// Includes the BI_BITFIELDS masks of a 40 byte header, which sit before the pixels
		OffBits: FileHeaderSize + h.PixelOffset(),
	}
	if err := fh.Encode(c); err != nil {
		return nil, err
	}
	if _, err := c.Write(dib); err != nil {
		return nil, err
	}

	return c.Bytes(), nil
}
