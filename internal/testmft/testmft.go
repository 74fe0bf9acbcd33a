// Package testmft synthesizes valid, fixup-correct, in-memory MFT records and images from Go struct
// literals (SPEC_FULL.md §2.5), for package tests that need a whole self-consistent record rather than
// the inline-hex attribute fixtures the rest of this repo's tests use for attribute-level cases.
// Reachable from cmd/mftanalyzer's synth subcommand for generating manual-testing fixtures.
package testmft

import (
	"encoding/binary"

	"github.com/dfir-toolkit/ntfsmft/internal/mft"
)

// RecordSize is the record size every Builder-produced record uses; 1024 bytes (two sectors) is the
// overwhelmingly common real-world NTFS MFT record size.
const RecordSize = 1024

const sectorSize = 512
const fixupOffset = 0x30
const fixupCount = RecordSize/sectorSize + 1
const firstAttrOffset = 0x38
const fixupSignature = 0xBEEF

// FileNameEntry describes one $FILE_NAME attribute to attach to a Builder record.
type FileNameEntry struct {
	Parent         uint64
	ParentSequence uint16
	Name           string
	Namespace      mft.FileNameNamespace
	Creation       uint64 // raw Windows FILETIME; zero means a fixed, plausible default is used
	Modified       uint64
	Flags          uint32
	RealSize       uint64
}

// Builder collects the fields of one MFT record before rendering it to fixup-correct bytes.
type Builder struct {
	Number       uint64
	Sequence     uint16
	Flags        uint16 // mft.RecordFlag bits
	BaseRecord   uint64 // nonzero marks this as an extension record
	BaseSequence uint16

	StandardInformation bool
	SICreation          uint64
	SIModified          uint64
	SIFlags             uint32

	FileNames []FileNameEntry

	// ResidentData, when non-nil, attaches an unnamed resident $DATA attribute with this content.
	ResidentData []byte

	// DataRuns, when non-empty, attaches an unnamed non-resident $DATA attribute whose data-run list
	// encodes these runs; mutually exclusive with ResidentData.
	DataRuns     []mft.DataRun
	DataRealSize uint64

	signature string // defaults to "FILE"
}

// WithBadSignature marks the record to be rendered with the "BAAD" signature NTFS writes over a
// record it gave up on mid-transaction, instead of "FILE".
func (b Builder) WithBadSignature() Builder {
	b.signature = "BAAD"
	return b
}

// Build renders b into a RecordSize-byte, fixup-correct record buffer.
func (b Builder) Build() []byte {
	var attrs []byte

	if b.StandardInformation {
		creation := b.SICreation
		if creation == 0 {
			creation = defaultFiletime
		}
		modified := b.SIModified
		if modified == 0 {
			modified = creation
		}
		attrs = append(attrs, residentAttribute(mft.AttributeTypeStandardInformation, standardInformationContent(creation, modified, b.SIFlags))...)
	}

	for _, fn := range b.FileNames {
		creation := fn.Creation
		if creation == 0 {
			creation = defaultFiletime
		}
		modified := fn.Modified
		if modified == 0 {
			modified = creation
		}
		ns := fn.Namespace
		attrs = append(attrs, residentAttribute(mft.AttributeTypeFileName, fileNameContent(fn.Parent, fn.ParentSequence, creation, modified, fn.Flags, fn.RealSize, ns, fn.Name))...)
	}

	switch {
	case b.ResidentData != nil:
		attrs = append(attrs, residentAttribute(mft.AttributeTypeData, b.ResidentData)...)
	case len(b.DataRuns) > 0:
		attrs = append(attrs, nonResidentDataAttribute(b.DataRuns, b.DataRealSize)...)
	}

	attrs = append(attrs, 0xFF, 0xFF, 0xFF, 0xFF) // terminator

	usedSize := firstAttrOffset + len(attrs)
	buf := make([]byte, RecordSize)

	sig := b.signature
	if sig == "" {
		sig = "FILE"
	}
	copy(buf[0:4], []byte(sig))
	binary.LittleEndian.PutUint16(buf[0x04:], fixupOffset)
	binary.LittleEndian.PutUint16(buf[0x06:], fixupCount)
	binary.LittleEndian.PutUint16(buf[0x10:], b.Sequence)
	binary.LittleEndian.PutUint16(buf[0x14:], firstAttrOffset)
	binary.LittleEndian.PutUint16(buf[0x16:], b.Flags)
	binary.LittleEndian.PutUint32(buf[0x18:], uint32(usedSize))
	binary.LittleEndian.PutUint32(buf[0x1C:], uint32(RecordSize))
	binary.LittleEndian.PutUint64(buf[0x20:], fileReferenceUint64(b.BaseRecord, b.BaseSequence))
	binary.LittleEndian.PutUint32(buf[0x2C:], uint32(b.Number))
	copy(buf[firstAttrOffset:], attrs)

	applyFixup(buf)
	return buf
}

// Chain renders several builders back to back into one contiguous image, as a driver would stream it
// from a real $MFT file.
func Chain(builders ...Builder) []byte {
	var out []byte
	for _, b := range builders {
		out = append(out, b.Build()...)
	}
	return out
}

// defaultFiletime is 2019-12-28T07:15:01.1509248Z as a Windows FILETIME, used whenever a Builder doesn't
// specify a timestamp explicitly.
const defaultFiletime = 0x01d5bd4e84dd9000

func applyFixup(buf []byte) {
	binary.LittleEndian.PutUint16(buf[fixupOffset:], fixupSignature)
	for i := 1; i <= RecordSize/sectorSize; i++ {
		original := buf[i*sectorSize-2 : i*sectorSize]
		binary.LittleEndian.PutUint16(buf[fixupOffset+i*2:], binary.LittleEndian.Uint16(original))
		binary.LittleEndian.PutUint16(buf[i*sectorSize-2:], fixupSignature)
	}
}

func fileReferenceUint64(recordNumber uint64, seq uint16) uint64 {
	return (recordNumber & 0xFFFFFFFFFFFF) | uint64(seq)<<48
}

func align8(n int) int {
	if n%8 == 0 {
		return n
	}
	return n + (8 - n%8)
}

// residentAttribute builds a resident attribute record with the common 16-byte header plus the
// fixed resident-specific fields, matching the layout internal/mft.ParseAttribute expects.
func residentAttribute(attrType mft.AttributeType, content []byte) []byte {
	const dataOffset = 24
	total := align8(dataOffset + len(content))
	b := make([]byte, total)
	binary.LittleEndian.PutUint32(b[0x00:], uint32(attrType))
	binary.LittleEndian.PutUint32(b[0x04:], uint32(total))
	b[0x08] = 0 // resident
	binary.LittleEndian.PutUint32(b[0x10:], uint32(len(content)))
	binary.LittleEndian.PutUint16(b[0x14:], dataOffset)
	copy(b[dataOffset:], content)
	return b
}

// nonResidentDataAttribute builds a non-resident $DATA attribute carrying an encoded data-run list
// instead of content.
func nonResidentDataAttribute(runs []mft.DataRun, realSize uint64) []byte {
	runBytes := encodeDataRuns(runs)
	const runsOffset = 0x40
	total := align8(runsOffset + len(runBytes))
	b := make([]byte, total)
	binary.LittleEndian.PutUint32(b[0x00:], uint32(mft.AttributeTypeData))
	binary.LittleEndian.PutUint32(b[0x04:], uint32(total))
	b[0x08] = 1 // non-resident
	binary.LittleEndian.PutUint64(b[0x10:], 0)                         // starting VCN
	binary.LittleEndian.PutUint64(b[0x18:], uint64(len(runs)))         // ending VCN (approximate, unused by decoder)
	binary.LittleEndian.PutUint16(b[0x20:], runsOffset)
	binary.LittleEndian.PutUint64(b[0x28:], sumAllocated(runs)*4096) // allocated size
	binary.LittleEndian.PutUint64(b[0x30:], realSize)                 // actual size
	binary.LittleEndian.PutUint64(b[0x38:], realSize)                 // initialized size
	copy(b[runsOffset:], runBytes)
	return b
}

func sumAllocated(runs []mft.DataRun) uint64 {
	var total uint64
	for _, r := range runs {
		total += r.LengthInClusters
	}
	return total
}

// encodeDataRuns renders runs back into the packed variable-width data-run byte format
// internal/mft.ParseDataRuns decodes; offsets are encoded as deltas from the previous run exactly as
// the real format requires.
func encodeDataRuns(runs []mft.DataRun) []byte {
	var out []byte
	var prevLCN int64
	for _, run := range runs {
		lengthBytes := minimalUint(run.LengthInClusters)
		if run.Sparse {
			header := byte(len(lengthBytes))
			out = append(out, header)
			out = append(out, lengthBytes...)
			continue
		}
		delta := run.OffsetCluster - prevLCN
		prevLCN = run.OffsetCluster
		offsetBytes := minimalInt(delta)
		header := byte(len(lengthBytes)) | byte(len(offsetBytes))<<4
		out = append(out, header)
		out = append(out, lengthBytes...)
		out = append(out, offsetBytes...)
	}
	out = append(out, 0x00)
	return out
}

func minimalUint(v uint64) []byte {
	if v == 0 {
		return []byte{0}
	}
	var b []byte
	for v > 0 {
		b = append(b, byte(v))
		v >>= 8
	}
	return b
}

func minimalInt(v int64) []byte {
	if v == 0 {
		return []byte{0}
	}
	var b []byte
	for {
		b = append(b, byte(v))
		if (v >= -128 && v <= 127) && sameSignExtension(b, v) {
			break
		}
		v >>= 8
	}
	return b
}

// sameSignExtension reports whether the accumulated little-endian bytes b already sign-extend to v,
// i.e. whether one more byte would be redundant.
func sameSignExtension(b []byte, v int64) bool {
	last := int8(b[len(b)-1])
	return int64(last) == v
}

func standardInformationContent(creation, modified uint64, attrs uint32) []byte {
	b := make([]byte, 48)
	binary.LittleEndian.PutUint64(b[0x00:], creation)
	binary.LittleEndian.PutUint64(b[0x08:], modified)
	binary.LittleEndian.PutUint64(b[0x10:], modified)
	binary.LittleEndian.PutUint64(b[0x18:], modified)
	binary.LittleEndian.PutUint32(b[0x20:], attrs)
	return b
}

func fileNameContent(parent uint64, parentSeq uint16, creation, modified uint64, flags uint32, realSize uint64, ns mft.FileNameNamespace, name string) []byte {
	nameBytes := utf16Encode(name)
	b := make([]byte, 0x42+len(nameBytes))
	binary.LittleEndian.PutUint64(b[0x00:], fileReferenceUint64(parent, parentSeq))
	binary.LittleEndian.PutUint64(b[0x08:], creation)
	binary.LittleEndian.PutUint64(b[0x10:], modified)
	binary.LittleEndian.PutUint64(b[0x18:], modified)
	binary.LittleEndian.PutUint64(b[0x20:], modified)
	binary.LittleEndian.PutUint64(b[0x28:], 4096)
	if realSize == 0 {
		realSize = 12
	}
	binary.LittleEndian.PutUint64(b[0x30:], realSize)
	binary.LittleEndian.PutUint32(b[0x38:], flags)
	b[0x40] = byte(len(name))
	b[0x41] = byte(ns)
	copy(b[0x42:], nameBytes)
	return b
}

func utf16Encode(s string) []byte {
	out := make([]byte, 0, len(s)*2)
	for _, r := range s {
		out = append(out, byte(r), 0)
	}
	return out
}
