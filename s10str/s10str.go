/*
Package s10str implements the S10Str archive of titled MP3 streams.

An S10Str starts with a little-endian uint32 entry count followed by one
descriptor per entry: a 520 byte title holding UTF-16LE text padded with NUL
code units, a uint32 offset from the start of the file and a uint32 size. The
payloads follow the descriptor table unmodified.
*/
package s10str

import (
	"errors"
	"fmt"
	"math"

	"github.com/yanorei32/future2-utils/cursor"
	"github.com/yanorei32/future2-utils/warn"
)

const (
	// TitleSize is the fixed size of an encoded title
	TitleSize = 520

	descriptorSize = TitleSize + 4 + 4
	fixedSize      = 4
)

var (
	// ErrOffsetOutOfRange is returned when an entry lies outside the archive
	ErrOffsetOutOfRange = errors.New("s10str: offset out of range")
	// ErrTitleTooLong is returned when a title needs more than TitleSize bytes
	ErrTitleTooLong = errors.New("s10str: title too long")
	// ErrInvalidUTF16 is returned when a title holds an unpaired surrogate
	ErrInvalidUTF16 = errors.New("s10str: invalid UTF-16")
	// ErrTooLarge is returned when the archive cannot be addressed with 32-bit offsets
	ErrTooLarge = errors.New("s10str: archive too large")
)

// HeaderSize returns the size of the count and descriptor table for n
// entries.
func HeaderSize(n int) int {
	return fixedSize + descriptorSize*n
}

// Entry is a single titled payload.
type Entry struct {
	Title string
	Data  []byte
}

// Archive is a decoded S10Str. It implements the encoding.BinaryMarshaler
// and encoding.BinaryUnmarshaler interfaces.
type Archive struct {
	Entries []Entry

	descriptors []Descriptor
	warnings    warn.List
}

// Descriptor locates an entry within the archive.
type Descriptor struct {
	StartAt uint32
	Size    uint32
}

// Warnings returns the warnings found by the last UnmarshalBinary.
func (a *Archive) Warnings() warn.List {
	return a.warnings
}

// Layout returns the offset and size of each entry as read by the last
// UnmarshalBinary.
func (a *Archive) Layout() []Descriptor {
	return a.descriptors
}

// MarshalBinary encodes the archive.
func (a *Archive) MarshalBinary() ([]byte, error) {
	titles := make([][]byte, len(a.Entries))
	offset := uint64(HeaderSize(len(a.Entries)))
	for i, e := range a.Entries {
		var err error
		if titles[i], err = EncodeTitle(e.Title); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		offset += uint64(len(e.Data))
		if offset > math.MaxUint32 {
			return nil, fmt.Errorf("%w: entry %d ends past 4 GiB", ErrTooLarge, i)
		}
	}

	c := cursor.New(make([]byte, offset))

	if err := c.WriteU32(uint32(len(a.Entries))); err != nil {
		return nil, err
	}

	start := uint32(HeaderSize(len(a.Entries)))
	for i, e := range a.Entries {
		if _, err := c.Write(titles[i]); err != nil {
			return nil, err
		}
		if err := c.WriteU32(start); err != nil {
			return nil, err
		}
		if err := c.WriteU32(uint32(len(e.Data))); err != nil {
			return nil, err
		}
		start += uint32(len(e.Data))
	}

	for _, e := range a.Entries {
		if _, err := c.Write(e.Data); err != nil {
			return nil, err
		}
	}

	return c.Bytes(), nil
}

type descriptor struct {
	title   []byte
	startAt uint32
	size    uint32
}

// UnmarshalBinary decodes the archive, copying each payload into a new slice.
// Entries that overlap or are out of order are accepted with a warning.
func (a *Archive) UnmarshalBinary(b []byte) error {
	c := cursor.New(b)

	a.Entries = nil
	a.descriptors = nil
	a.warnings = nil

	count, err := c.ReadU32()
	if err != nil {
		return fmt.Errorf("s10str: reading count: %w", err)
	}

	if uint64(count)*descriptorSize > uint64(c.Remaining()) {
		return fmt.Errorf("s10str: %d descriptors in %d bytes: %w", count, c.Remaining(), ErrOffsetOutOfRange)
	}

	descriptors := make([]descriptor, count)
	for i := range descriptors {
		d := &descriptors[i]
		if d.title, err = c.ReadExact(TitleSize); err != nil {
			return err
		}
		if d.startAt, err = c.ReadU32(); err != nil {
			return err
		}
		if d.size, err = c.ReadU32(); err != nil {
			return err
		}
	}

	end := uint64(c.Position())
	for i, d := range descriptors {
		if uint64(d.startAt)+uint64(d.size) > uint64(len(b)) {
			return fmt.Errorf("%w: entry %d at %#x size %d, archive is %d bytes", ErrOffsetOutOfRange, i, d.startAt, d.size, len(b))
		}
		if uint64(d.startAt) < end {
			a.warnings.Addf(fmt.Sprintf("entry %d", i), "starts at %#x, overlapping data ending at %#x", d.startAt, end)
		}
		if e := uint64(d.startAt) + uint64(d.size); e > end {
			end = e
		}
	}

	a.Entries = make([]Entry, count)
	layout := make([]Descriptor, count)
	for i, d := range descriptors {
		layout[i] = Descriptor{StartAt: d.startAt, Size: d.size}
		if a.Entries[i].Title, err = DecodeTitle(d.title); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if err := c.SetPosition(int(d.startAt)); err != nil {
			return err
		}
		if a.Entries[i].Data, err = c.ReadExact(int(d.size)); err != nil {
			return err
		}
	}
	a.descriptors = layout

	return nil
}

// Encode returns an S10Str holding entries.
func Encode(entries []Entry) ([]byte, error) {
	a := Archive{
		Entries: entries,
	}
	return a.MarshalBinary()
}

// Decode returns the entries of the S10Str in b.
func Decode(b []byte) (*Archive, warn.List, error) {
	a := new(Archive)
	if err := a.UnmarshalBinary(b); err != nil {
		return nil, nil, err
	}
	return a, a.Warnings(), nil
}
