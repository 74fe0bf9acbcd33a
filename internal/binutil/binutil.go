// Package binutil contains bounds-checked helpers for reading binary data out of a byte slice.
package binutil

import (
	"encoding/binary"
	"fmt"
)

// ErrOutOfBounds is returned whenever a read would run past the end of the underlying slice.
var ErrOutOfBounds = fmt.Errorf("binutil: read out of bounds")

// Duplicate creates a full copy of the input byte slice.
func Duplicate(in []byte) []byte {
	out := make([]byte, len(in))
	copy(out, in)
	return out
}

// IsOnlyZeroes returns true when every byte in data is zero (and for an empty slice).
func IsOnlyZeroes(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}

// Reader reads primitive values from a byte slice using an offset and length instead of two-sided
// slice expressions. Unlike a plain slice expression, every method reports ErrOutOfBounds instead of
// panicking when the requested range exceeds the underlying data; this is required so that the rest
// of the decoder can survive arbitrarily truncated or corrupt forensic input.
type Reader struct {
	data []byte
	bo   binary.ByteOrder
}

// NewReader creates a Reader over data using the given byte order. The slice is stored directly, no
// copy is made.
func NewReader(data []byte, bo binary.ByteOrder) *Reader {
	return &Reader{data: data, bo: bo}
}

// NewLittleEndianReader creates a Reader over data using binary.LittleEndian.
func NewLittleEndianReader(data []byte) *Reader {
	return NewReader(data, binary.LittleEndian)
}

// NewBigEndianReader creates a Reader over data using binary.BigEndian.
func NewBigEndianReader(data []byte) *Reader {
	return NewReader(data, binary.BigEndian)
}

// Data returns the full data this Reader was constructed with.
func (r *Reader) Data() []byte { return r.data }

// Len returns the length of the contained data.
func (r *Reader) Len() int { return len(r.data) }

func (r *Reader) bounds(offset, length int) error {
	if offset < 0 || length < 0 || offset+length > len(r.data) {
		return fmt.Errorf("%w: offset %d length %d exceeds data length %d", ErrOutOfBounds, offset, length, len(r.data))
	}
	return nil
}

// Read returns length bytes starting at offset. The returned slice aliases the underlying data.
func (r *Reader) Read(offset, length int) ([]byte, error) {
	if err := r.bounds(offset, length); err != nil {
		return nil, err
	}
	return r.data[offset : offset+length], nil
}

// ReadFrom returns all data starting at offset.
func (r *Reader) ReadFrom(offset int) ([]byte, error) {
	if offset < 0 || offset > len(r.data) {
		return nil, fmt.Errorf("%w: offset %d exceeds data length %d", ErrOutOfBounds, offset, len(r.data))
	}
	return r.data[offset:], nil
}

// Sub returns a new Reader over the range read by Read(offset, length), sharing this Reader's byte order.
func (r *Reader) Sub(offset, length int) (*Reader, error) {
	b, err := r.Read(offset, length)
	if err != nil {
		return nil, err
	}
	return &Reader{data: b, bo: r.bo}, nil
}

// Byte returns the byte at offset.
func (r *Reader) Byte(offset int) (byte, error) {
	b, err := r.Read(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Int8 returns the signed byte at offset.
func (r *Reader) Int8(offset int) (int8, error) {
	b, err := r.Byte(offset)
	return int8(b), err
}

// Uint16 reads a 2-byte unsigned integer at offset.
func (r *Reader) Uint16(offset int) (uint16, error) {
	b, err := r.Read(offset, 2)
	if err != nil {
		return 0, err
	}
	return r.bo.Uint16(b), nil
}

// Int16 reads a 2-byte signed integer at offset.
func (r *Reader) Int16(offset int) (int16, error) {
	v, err := r.Uint16(offset)
	return int16(v), err
}

// Uint32 reads a 4-byte unsigned integer at offset.
func (r *Reader) Uint32(offset int) (uint32, error) {
	b, err := r.Read(offset, 4)
	if err != nil {
		return 0, err
	}
	return r.bo.Uint32(b), nil
}

// Int32 reads a 4-byte signed integer at offset.
func (r *Reader) Int32(offset int) (int32, error) {
	v, err := r.Uint32(offset)
	return int32(v), err
}

// Uint64 reads an 8-byte unsigned integer at offset.
func (r *Reader) Uint64(offset int) (uint64, error) {
	b, err := r.Read(offset, 8)
	if err != nil {
		return 0, err
	}
	return r.bo.Uint64(b), nil
}

// Int64 reads an 8-byte signed integer at offset.
func (r *Reader) Int64(offset int) (int64, error) {
	v, err := r.Uint64(offset)
	return int64(v), err
}

// PadTo grows data to length bytes, sign-extending with 0xFF when the most significant bit of the
// last byte is set and zero-extending otherwise. Used to widen narrow signed/unsigned little-endian
// fields (such as data-run length/offset fields) up to a fixed word size before parsing.
func PadTo(data []byte, length int) []byte {
	if len(data) >= length {
		return data
	}
	result := make([]byte, length)
	if len(data) == 0 {
		return result
	}
	copy(result, data)
	if data[len(data)-1]&0x80 == 0x80 {
		for i := len(data); i < length; i++ {
			result[i] = 0xFF
		}
	}
	return result
}
