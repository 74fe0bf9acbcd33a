package mft

import (
	"bytes"
	"fmt"

	"github.com/dfir-toolkit/ntfsmft/internal/binutil"
)

// FileSignature is the 4-byte magic that begins every in-use or previously in-use MFT record.
var FileSignature = []byte{'F', 'I', 'L', 'E'}

// BadSignature is the 4-byte magic NTFS itself writes over a record it gave up on mid-write; such
// records are still decoded, just flagged corrupt by the caller.
var BadSignature = []byte{'B', 'A', 'A', 'D'}

// RecordHeader holds the fixed-layout fields of an MFT record, before fixup has necessarily been
// applied to the rest of the buffer (the header's own bytes sit before the first fixup-protected
// sector boundary in every real-world record size, so it can always be read first).
type RecordHeader struct {
	Signature             []byte
	FixupArrayOffset      int
	FixupArrayCount       int
	LogFileSequenceNumber uint64
	SequenceNumber        uint16
	HardLinkCount         int
	FirstAttributeOffset  int
	Flags                 RecordFlag
	ActualSize            uint32
	AllocatedSize         uint32
	BaseRecordReference   FileReference
	NextAttributeId       int
	RecordNumber          uint64
}

// MinRecordHeaderLength is the minimum number of bytes ParseRecordHeader needs.
const MinRecordHeaderLength = 0x30

// ParseRecordHeader parses the fixed fields of an MFT record header. It does not require fixup to
// have been applied yet, and does not itself validate the signature against FileSignature/BadSignature
// (callers decide how to react to an unrecognized signature).
func ParseRecordHeader(b []byte) (RecordHeader, error) {
	if len(b) < MinRecordHeaderLength {
		return RecordHeader{}, fmt.Errorf("mft: record header needs at least %d bytes, got %d", MinRecordHeaderLength, len(b))
	}
	r := binutil.NewLittleEndianReader(b)

	sig, err := r.Read(0x00, 4)
	if err != nil {
		return RecordHeader{}, err
	}
	fixupOffset, err := r.Uint16(0x04)
	if err != nil {
		return RecordHeader{}, err
	}
	fixupCount, err := r.Uint16(0x06)
	if err != nil {
		return RecordHeader{}, err
	}
	lsn, err := r.Uint64(0x08)
	if err != nil {
		return RecordHeader{}, err
	}
	seq, err := r.Uint16(0x10)
	if err != nil {
		return RecordHeader{}, err
	}
	hardLinks, err := r.Uint16(0x12)
	if err != nil {
		return RecordHeader{}, err
	}
	attrOffset, err := r.Uint16(0x14)
	if err != nil {
		return RecordHeader{}, err
	}
	flags, err := r.Uint16(0x16)
	if err != nil {
		return RecordHeader{}, err
	}
	actualSize, err := r.Uint32(0x18)
	if err != nil {
		return RecordHeader{}, err
	}
	allocatedSize, err := r.Uint32(0x1C)
	if err != nil {
		return RecordHeader{}, err
	}
	baseRefBytes, err := r.Read(0x20, 8)
	if err != nil {
		return RecordHeader{}, err
	}
	baseRef, err := ParseFileReference(baseRefBytes)
	if err != nil {
		return RecordHeader{}, fmt.Errorf("mft: unable to parse base record reference: %w", err)
	}
	nextAttrId, err := r.Uint16(0x28)
	if err != nil {
		return RecordHeader{}, err
	}
	recordNumber, err := r.Uint32(0x2C)
	if err != nil {
		return RecordHeader{}, err
	}

	return RecordHeader{
		Signature:             binutil.Duplicate(sig),
		FixupArrayOffset:      int(fixupOffset),
		FixupArrayCount:       int(fixupCount),
		LogFileSequenceNumber: lsn,
		SequenceNumber:        seq,
		HardLinkCount:         int(hardLinks),
		FirstAttributeOffset:  int(attrOffset),
		Flags:                 RecordFlag(flags),
		ActualSize:            actualSize,
		AllocatedSize:         allocatedSize,
		BaseRecordReference:   baseRef,
		NextAttributeId:       int(nextAttrId),
		RecordNumber:          uint64(recordNumber),
	}, nil
}

// IsFileSignature reports whether sig is the normal "FILE" magic.
func IsFileSignature(sig []byte) bool { return bytes.Equal(sig, FileSignature) }

// IsBadSignature reports whether sig is the "BAAD" magic NTFS writes over a record it failed to
// finish transacting.
func IsBadSignature(sig []byte) bool { return bytes.Equal(sig, BadSignature) }
