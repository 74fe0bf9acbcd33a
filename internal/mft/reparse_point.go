package mft

import (
	"fmt"

	"github.com/dfir-toolkit/ntfsmft/internal/binutil"
)

// Well-known reparse tags this package knows how to pull substitute/print names out of. Other tags
// (e.g. third-party filter-driver reparse points) are decoded down to just the tag.
const (
	ReparseTagMountPoint      uint32 = 0xA0000003
	ReparseTagSymlink         uint32 = 0xA000000C
)

// ReparsePoint is the decoded $REPARSE_POINT (0xC0) payload.
type ReparsePoint struct {
	Tag            uint32
	SubstituteName string
	PrintName      string
	HasNames       bool
}

const minReparsePointLength = 8

// ParseReparsePoint decodes a $REPARSE_POINT attribute's content. For symbolic-link and mount-point
// tags it also decodes the substitute and print names out of the tag-specific reparse data buffer;
// other tags are reported with just their tag value.
func ParseReparsePoint(b []byte) (ReparsePoint, error) {
	if len(b) < minReparsePointLength {
		return ReparsePoint{}, fmt.Errorf("mft: $REPARSE_POINT needs at least %d bytes, got %d", minReparsePointLength, len(b))
	}
	r := binutil.NewLittleEndianReader(b)
	tag, err := r.Uint32(0x00)
	if err != nil {
		return ReparsePoint{}, err
	}
	dataLength, err := r.Uint16(0x04)
	if err != nil {
		return ReparsePoint{}, err
	}

	rp := ReparsePoint{Tag: tag}
	if tag != ReparseTagSymlink && tag != ReparseTagMountPoint {
		return rp, nil
	}

	headerLen := 8 // common reparse-data header: substitute-name offset/length, print-name offset/length
	if tag == ReparseTagSymlink {
		headerLen += 4 // symbolic links carry an extra 4-byte "flags" field before the name buffer
	}
	bufStart := 8 + headerLen
	if len(b) < bufStart || int(dataLength) < headerLen {
		return rp, fmt.Errorf("mft: $REPARSE_POINT data too short for tag %#x", tag)
	}

	subNameOffset, err := r.Uint16(8)
	if err != nil {
		return rp, err
	}
	subNameLength, err := r.Uint16(10)
	if err != nil {
		return rp, err
	}
	printNameOffset, err := r.Uint16(12)
	if err != nil {
		return rp, err
	}
	printNameLength, err := r.Uint16(14)
	if err != nil {
		return rp, err
	}

	nameBuffer, err := r.ReadFrom(bufStart)
	if err != nil {
		return rp, fmt.Errorf("mft: unable to read $REPARSE_POINT name buffer: %w", err)
	}
	subBytes, err := readRange(nameBuffer, int(subNameOffset), int(subNameLength))
	if err != nil {
		return rp, fmt.Errorf("mft: unable to read substitute name: %w", err)
	}
	subName, err := decodeUTF16(subBytes)
	if err != nil {
		return rp, fmt.Errorf("mft: unable to decode substitute name: %w", err)
	}
	printBytes, err := readRange(nameBuffer, int(printNameOffset), int(printNameLength))
	if err != nil {
		return rp, fmt.Errorf("mft: unable to read print name: %w", err)
	}
	printName, err := decodeUTF16(printBytes)
	if err != nil {
		return rp, fmt.Errorf("mft: unable to decode print name: %w", err)
	}

	rp.SubstituteName = subName
	rp.PrintName = printName
	rp.HasNames = true
	return rp, nil
}

func readRange(b []byte, offset, length int) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > len(b) {
		return nil, fmt.Errorf("mft: range [%d:%d] out of bounds for %d-byte buffer", offset, offset+length, len(b))
	}
	return b[offset : offset+length], nil
}
