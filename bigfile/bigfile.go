/*
Package bigfile implements the BigFile archive.

A BigFile starts with a little-endian uint32 member count and a single key
byte, followed by one descriptor per member: a uint32 offset from the start of
the file and a uint32 size. The members follow the descriptor table back to
back with every byte XORed with the key. The members are usually DIBs, BMP
files without their 14 byte file header.
*/
package bigfile

import (
	"errors"
	"fmt"
	"math"

	"github.com/yanorei32/future2-utils/cursor"
	"github.com/yanorei32/future2-utils/warn"
)

const (
	// DefaultKey is the key found in the shipped archives
	DefaultKey = 0x29

	descriptorSize = 8
	fixedSize      = 4 + 1
)

var (
	// ErrOffsetOutOfRange is returned when a member lies outside the archive
	ErrOffsetOutOfRange = errors.New("bigfile: offset out of range")
	// ErrTooLarge is returned when the archive cannot be addressed with 32-bit offsets
	ErrTooLarge = errors.New("bigfile: archive too large")
)

// Descriptor locates a member within the archive.
type Descriptor struct {
	StartAt uint32
	Size    uint32
}

// HeaderSize returns the size of the count, key and descriptor table for n
// members.
func HeaderSize(n int) int {
	return fixedSize + descriptorSize*n
}

// Scramble XORs every byte of b with key in place. Applying it twice restores
// the original bytes.
func Scramble(b []byte, key byte) {
	for i := range b {
		b[i] ^= key
	}
}

// Archive is a decoded BigFile. It implements the encoding.BinaryMarshaler
// and encoding.BinaryUnmarshaler interfaces.
type Archive struct {
	Key     byte
	Members [][]byte

	descriptors []Descriptor
	warnings    warn.List
}

// Warnings returns the warnings found by the last UnmarshalBinary.
func (a *Archive) Warnings() warn.List {
	return a.warnings
}

// Layout returns the descriptor table read by the last UnmarshalBinary, which
// need not match the layout MarshalBinary would write.
func (a *Archive) Layout() []Descriptor {
	return a.descriptors
}

// Descriptors returns the descriptor table that MarshalBinary would write.
func (a *Archive) Descriptors() ([]Descriptor, error) {
	offset := uint64(HeaderSize(len(a.Members)))
	descriptors := make([]Descriptor, len(a.Members))
	for i, m := range a.Members {
		if offset+uint64(len(m)) > math.MaxUint32 {
			return nil, fmt.Errorf("%w: member %d ends past 4 GiB", ErrTooLarge, i)
		}
		descriptors[i] = Descriptor{
			StartAt: uint32(offset),
			Size:    uint32(len(m)),
		}
		offset += uint64(len(m))
	}
	return descriptors, nil
}

// MarshalBinary encodes the archive, scrambling a copy of each member.
func (a *Archive) MarshalBinary() ([]byte, error) {
	descriptors, err := a.Descriptors()
	if err != nil {
		return nil, err
	}

	size := HeaderSize(len(a.Members))
	if n := len(descriptors); n > 0 {
		size = int(descriptors[n-1].StartAt + descriptors[n-1].Size)
	}

	c := cursor.New(make([]byte, size))

	if err := c.WriteU32(uint32(len(a.Members))); err != nil {
		return nil, err
	}
	if err := c.WriteU8(a.Key); err != nil {
		return nil, err
	}
	for _, d := range descriptors {
		if err := c.WriteU32(d.StartAt); err != nil {
			return nil, err
		}
		if err := c.WriteU32(d.Size); err != nil {
			return nil, err
		}
	}

	for _, m := range a.Members {
		start := c.Position()
		if _, err := c.Write(m); err != nil {
			return nil, err
		}
		Scramble(c.Bytes()[start:c.Position()], a.Key)
	}

	return c.Bytes(), nil
}

// UnmarshalBinary decodes the archive, unscrambling each member into a new
// slice. Members that overlap or are out of order are accepted with a warning.
func (a *Archive) UnmarshalBinary(b []byte) error {
	c := cursor.New(b)

	a.Key = 0
	a.Members = nil
	a.descriptors = nil
	a.warnings = nil

	count, err := c.ReadU32()
	if err != nil {
		return fmt.Errorf("bigfile: reading count: %w", err)
	}
	if a.Key, err = c.ReadU8(); err != nil {
		return fmt.Errorf("bigfile: reading key: %w", err)
	}

	if uint64(count)*descriptorSize > uint64(c.Remaining()) {
		return fmt.Errorf("bigfile: %d descriptors in %d bytes: %w", count, c.Remaining(), ErrOffsetOutOfRange)
	}

	descriptors := make([]Descriptor, count)
	for i := range descriptors {
		if descriptors[i].StartAt, err = c.ReadU32(); err != nil {
			return err
		}
		if descriptors[i].Size, err = c.ReadU32(); err != nil {
			return err
		}
	}

	if err := checkDescriptors(descriptors, len(b), &a.warnings); err != nil {
		return err
	}

	a.Members = make([][]byte, count)
	for i, d := range descriptors {
		if err := c.SetPosition(int(d.StartAt)); err != nil {
			return err
		}
		if a.Members[i], err = c.ReadExact(int(d.Size)); err != nil {
			return err
		}
		Scramble(a.Members[i], a.Key)
	}
	a.descriptors = descriptors

	return nil
}

func checkDescriptors(descriptors []Descriptor, length int, warnings *warn.List) error {
	header := uint64(HeaderSize(len(descriptors)))
	end := header

	for i, d := range descriptors {
		if uint64(d.StartAt)+uint64(d.Size) > uint64(length) {
			return fmt.Errorf("%w: member %d at %#x size %d, archive is %d bytes", ErrOffsetOutOfRange, i, d.StartAt, d.Size, length)
		}
		if uint64(d.StartAt) < end {
			warnings.Addf(fmt.Sprintf("member %d", i), "starts at %#x, overlapping data ending at %#x", d.StartAt, end)
		}
		if e := uint64(d.StartAt) + uint64(d.Size); e > end {
			end = e
		}
	}

	return nil
}

// Encode returns a BigFile holding members scrambled with key.
func Encode(members [][]byte, key byte) ([]byte, error) {
	a := Archive{
		Key:     key,
		Members: members,
	}
	return a.MarshalBinary()
}

// Decode returns the key and unscrambled members of the BigFile in b.
func Decode(b []byte) (*Archive, warn.List, error) {
	a := new(Archive)
	if err := a.UnmarshalBinary(b); err != nil {
		return nil, nil, err
	}
	return a, a.Warnings(), nil
}
