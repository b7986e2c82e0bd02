package future2

import (
	"fmt"
	"hash/crc32"
)

// Logged alongside each member so extracted files can be compared against a
// known dump
func crc(b []byte) string {
	h := crc32.NewIEEE()
	h.Write(b)
	return fmt.Sprintf("%.*X", crc32.Size<<1, h.Sum(nil))
}
