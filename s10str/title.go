package s10str

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// EncodeTitle returns title as UTF-16LE padded with NUL to TitleSize bytes.
func EncodeTitle(title string) ([]byte, error) {
	b, err := utf16le.NewEncoder().Bytes([]byte(title))
	if err != nil {
		return nil, err
	}
	if len(b) > TitleSize {
		return nil, fmt.Errorf("%w: %q is %d bytes", ErrTitleTooLong, title, len(b))
	}

	padded := make([]byte, TitleSize)
	copy(padded, b)

	return padded, nil
}

// DecodeTitle returns the UTF-16LE text in b up to the first NUL code unit.
func DecodeTitle(b []byte) (string, error) {
	n := len(b) &^ 1
	for i := 0; i < n; i += 2 {
		if binary.LittleEndian.Uint16(b[i:]) == 0 {
			n = i
			break
		}
	}
	b = b[:n]

	// The decoder substitutes U+FFFD for unpaired surrogates
	for i := 0; i < n; i += 2 {
		switch u := binary.LittleEndian.Uint16(b[i:]); {
		case u >= 0xd800 && u < 0xdc00:
			if i+2 >= n {
				return "", fmt.Errorf("%w: high surrogate %#04x at end of title", ErrInvalidUTF16, u)
			}
			if l := binary.LittleEndian.Uint16(b[i+2:]); l < 0xdc00 || l >= 0xe000 {
				return "", fmt.Errorf("%w: high surrogate %#04x followed by %#04x", ErrInvalidUTF16, u, l)
			}
			i += 2
		case u >= 0xdc00 && u < 0xe000:
			return "", fmt.Errorf("%w: unpaired low surrogate %#04x", ErrInvalidUTF16, u)
		}
	}

	s, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}

	return string(s), nil
}
