/*
Package cursor implements a little-endian reader and writer over an in-memory
byte slice with an explicit position.

Every multi-byte integer in the BigFile, S10Str and ImageFile formats is little
endian so there is no byte order option.
*/
package cursor

import (
	"encoding/binary"
	"errors"
	"io"
)

var (
	// ErrOverflow is returned when writing past the end of a fixed buffer
	ErrOverflow = errors.New("cursor: write overflows buffer")
	// ErrOutOfRange is returned when seeking before the start or past the end
	ErrOutOfRange = errors.New("cursor: position out of range")
)

// Cursor reads and writes primitive values at a position within a buffer.
type Cursor struct {
	buf   []byte
	pos   int
	fixed bool
}

// New returns a Cursor over b. Writes overwrite b in place and fail with
// ErrOverflow rather than growing it.
func New(b []byte) *Cursor {
	return &Cursor{
		buf:   b,
		fixed: true,
	}
}

// NewWriter returns an empty Cursor that grows as it is written to. The
// capacity is only a hint.
func NewWriter(capacity int) *Cursor {
	return &Cursor{
		buf: make([]byte, 0, capacity),
	}
}

// Bytes returns the underlying buffer.
func (c *Cursor) Bytes() []byte {
	return c.buf
}

// Len returns the length of the underlying buffer.
func (c *Cursor) Len() int {
	return len(c.buf)
}

// Remaining returns the number of bytes between the position and the end.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// Position returns the current offset from the start of the buffer.
func (c *Cursor) Position() int {
	return c.pos
}

// SetPosition moves to the absolute offset p.
func (c *Cursor) SetPosition(p int) error {
	if p < 0 || p > len(c.buf) {
		return ErrOutOfRange
	}
	c.pos = p
	return nil
}

// Seek moves d bytes relative to the current position.
func (c *Cursor) Seek(d int) error {
	return c.SetPosition(c.pos + d)
}

func (c *Cursor) next(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, io.ErrUnexpectedEOF
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadU8 reads a single byte.
func (c *Cursor) ReadU8() (uint8, error) {
	b, err := c.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads a little-endian uint16.
func (c *Cursor) ReadU16() (uint16, error) {
	b, err := c.next(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads a little-endian uint32.
func (c *Cursor) ReadU32() (uint32, error) {
	b, err := c.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadI32 reads a little-endian int32.
func (c *Cursor) ReadI32() (int32, error) {
	v, err := c.ReadU32()
	return int32(v), err
}

// ReadExact returns a copy of the next n bytes. Nothing is consumed if fewer
// than n bytes remain.
func (c *Cursor) ReadExact(n int) ([]byte, error) {
	b, err := c.next(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Read implements io.Reader.
func (c *Cursor) Read(p []byte) (int, error) {
	if c.Remaining() == 0 {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, c.buf[c.pos:])
	c.pos += n
	return n, nil
}

func (c *Cursor) reserve(n int) ([]byte, error) {
	end := c.pos + n
	if end > len(c.buf) {
		if c.fixed {
			return nil, ErrOverflow
		}
		if end > cap(c.buf) {
			grown := make([]byte, len(c.buf), 2*cap(c.buf)+n)
			copy(grown, c.buf)
			c.buf = grown
		}
		c.buf = c.buf[:end]
	}
	b := c.buf[c.pos:end]
	c.pos = end
	return b, nil
}

// WriteU8 writes a single byte.
func (c *Cursor) WriteU8(v uint8) error {
	b, err := c.reserve(1)
	if err != nil {
		return err
	}
	b[0] = v
	return nil
}

// WriteU16 writes a little-endian uint16.
func (c *Cursor) WriteU16(v uint16) error {
	b, err := c.reserve(2)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(b, v)
	return nil
}

// WriteU32 writes a little-endian uint32.
func (c *Cursor) WriteU32(v uint32) error {
	b, err := c.reserve(4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, v)
	return nil
}

// WriteI32 writes a little-endian int32.
func (c *Cursor) WriteI32(v int32) error {
	return c.WriteU32(uint32(v))
}

// Write implements io.Writer. A fixed cursor writes nothing when p does not
// fit.
func (c *Cursor) Write(p []byte) (int, error) {
	b, err := c.reserve(len(p))
	if err != nil {
		return 0, err
	}
	return copy(b, p), nil
}

// WriteZeros writes n zero bytes.
func (c *Cursor) WriteZeros(n int) error {
	b, err := c.reserve(n)
	if err != nil {
		return err
	}
	for i := range b {
		b[i] = 0
	}
	return nil
}
