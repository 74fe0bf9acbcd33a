package mft

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

// decodeUTF16 decodes little-endian UTF-16 code units (as used by every NTFS string field) into a Go
// string. Folded in from what was a separate single-purpose package in the teacher codebase; nothing
// else in this repo needs UTF-16 decoding independently of attribute parsing.
func decodeUTF16(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", fmt.Errorf("mft: UTF-16 data must have an even number of bytes, got %d", len(b))
	}
	shorts := make([]uint16, len(b)/2)
	for i := range shorts {
		shorts[i] = binary.LittleEndian.Uint16(b[i*2 : i*2+2])
	}
	return string(utf16.Decode(shorts)), nil
}
