// Package mft decodes individual NTFS MFT records and attributes: record headers, the attribute
// chain, and the per-type attribute payloads (standard-information, file-name, object-id, data
// including non-resident data-runs, attribute-list, index-root, and a handful of best-effort others).
// It operates purely on an already fixup-corrected record buffer; see internal/fixup for fixup itself
// and internal/record for assembling decoded attributes into a denormalized logical record.
package mft

import (
	"fmt"

	"github.com/dfir-toolkit/ntfsmft/internal/binutil"
)

// FileReference identifies an MFT record by number plus the sequence number that was active when the
// reference was written, so a stale reference to a reused record number can be detected.
type FileReference struct {
	RecordNumber   uint64
	SequenceNumber uint16
}

// ParseFileReference parses an 8-byte little-endian file reference: the low 6 bytes are the record
// number, the high 2 bytes are the sequence number.
func ParseFileReference(b []byte) (FileReference, error) {
	if len(b) != 8 {
		return FileReference{}, fmt.Errorf("mft: file reference must be 8 bytes, got %d", len(b))
	}
	r := binutil.NewLittleEndianReader(b)
	low48, err := r.Read(0, 6)
	if err != nil {
		return FileReference{}, err
	}
	seq, err := r.Uint16(6)
	if err != nil {
		return FileReference{}, err
	}
	recNum := uint64(0)
	for i := 5; i >= 0; i-- {
		recNum = recNum<<8 | uint64(low48[i])
	}
	return FileReference{RecordNumber: recNum, SequenceNumber: seq}, nil
}

// RecordFlag is a bit-mask flag describing the status of an MFT record.
type RecordFlag uint16

const (
	RecordFlagInUse       RecordFlag = 0x0001
	RecordFlagIsDirectory RecordFlag = 0x0002
	RecordFlagInExtend    RecordFlag = 0x0004
	RecordFlagIsIndex     RecordFlag = 0x0008
)

// Is reports whether this RecordFlag's bit mask contains c.
func (f RecordFlag) Is(c RecordFlag) bool { return f&c == c }

// AttributeType identifies the type of an attribute. Use Name() for its conventional $NAME.
type AttributeType uint32

const (
	AttributeTypeStandardInformation AttributeType = 0x10
	AttributeTypeAttributeList       AttributeType = 0x20
	AttributeTypeFileName            AttributeType = 0x30
	AttributeTypeObjectId            AttributeType = 0x40
	AttributeTypeSecurityDescriptor  AttributeType = 0x50
	AttributeTypeVolumeName          AttributeType = 0x60
	AttributeTypeVolumeInformation   AttributeType = 0x70
	AttributeTypeData                AttributeType = 0x80
	AttributeTypeIndexRoot           AttributeType = 0x90
	AttributeTypeIndexAllocation     AttributeType = 0xA0
	AttributeTypeBitmap              AttributeType = 0xB0
	AttributeTypeReparsePoint        AttributeType = 0xC0
	AttributeTypeEAInformation       AttributeType = 0xD0
	AttributeTypeEA                  AttributeType = 0xE0
	AttributeTypePropertySet         AttributeType = 0xF0
	AttributeTypeLoggedUtilityStream AttributeType = 0x100
	AttributeTypeTerminator          AttributeType = 0xFFFFFFFF
)

// Name returns the conventional "$NAME" for at, or "unknown" for a type this package doesn't
// recognize (such types are still decoded structurally, just not given a friendly name).
func (at AttributeType) Name() string {
	switch at {
	case AttributeTypeStandardInformation:
		return "$STANDARD_INFORMATION"
	case AttributeTypeAttributeList:
		return "$ATTRIBUTE_LIST"
	case AttributeTypeFileName:
		return "$FILE_NAME"
	case AttributeTypeObjectId:
		return "$OBJECT_ID"
	case AttributeTypeSecurityDescriptor:
		return "$SECURITY_DESCRIPTOR"
	case AttributeTypeVolumeName:
		return "$VOLUME_NAME"
	case AttributeTypeVolumeInformation:
		return "$VOLUME_INFORMATION"
	case AttributeTypeData:
		return "$DATA"
	case AttributeTypeIndexRoot:
		return "$INDEX_ROOT"
	case AttributeTypeIndexAllocation:
		return "$INDEX_ALLOCATION"
	case AttributeTypeBitmap:
		return "$BITMAP"
	case AttributeTypeReparsePoint:
		return "$REPARSE_POINT"
	case AttributeTypeEAInformation:
		return "$EA_INFORMATION"
	case AttributeTypeEA:
		return "$EA"
	case AttributeTypePropertySet:
		return "$PROPERTY_SET"
	case AttributeTypeLoggedUtilityStream:
		return "$LOGGED_UTILITY_STREAM"
	}
	return "unknown"
}

// AttributeFlags is a bit-mask flag describing properties of an attribute's content.
type AttributeFlags uint16

const (
	AttributeFlagsCompressed AttributeFlags = 0x0001
	AttributeFlagsEncrypted  AttributeFlags = 0x4000
	AttributeFlagsSparse     AttributeFlags = 0x8000
)

// Is reports whether this AttributeFlags' bit mask contains c.
func (f AttributeFlags) Is(c AttributeFlags) bool { return f&c == c }

// FileAttribute is the DOS-style file attribute bitfield shared by $STANDARD_INFORMATION and
// $FILE_NAME.
type FileAttribute uint32

const (
	FileAttributeReadOnly          FileAttribute = 0x0001
	FileAttributeHidden            FileAttribute = 0x0002
	FileAttributeSystem            FileAttribute = 0x0004
	FileAttributeArchive           FileAttribute = 0x0020
	FileAttributeDevice            FileAttribute = 0x0040
	FileAttributeNormal            FileAttribute = 0x0080
	FileAttributeTemporary         FileAttribute = 0x0100
	FileAttributeSparseFile        FileAttribute = 0x0200
	FileAttributeReparsePoint      FileAttribute = 0x0400
	FileAttributeCompressed        FileAttribute = 0x0800
	FileAttributeOffline           FileAttribute = 0x1000
	FileAttributeNotContentIndexed FileAttribute = 0x2000
	FileAttributeEncrypted         FileAttribute = 0x4000

	// Directory-only: set on the $FILE_NAME copy that lives in the parent's index, cleared on the
	// $STANDARD_INFORMATION copy. Kept here for reference when decoding index entries.
	FileAttributeDirectory FileAttribute = 0x10000000
)

// Is reports whether this FileAttribute's bit mask contains c.
func (f FileAttribute) Is(c FileAttribute) bool { return f&c == c }

// Names returns the set bits of f as a human-readable list in DOS attribute-bit order (e.g.
// ["HIDDEN", "ARCHIVE"]),
// used by output serializers that want a readable attribute summary rather than a raw bitmask.
func (f FileAttribute) Names() []string {
	var names []string
	add := func(bit FileAttribute, name string) {
		if f.Is(bit) {
			names = append(names, name)
		}
	}
	add(FileAttributeReadOnly, "READONLY")
	add(FileAttributeHidden, "HIDDEN")
	add(FileAttributeSystem, "SYSTEM")
	add(FileAttributeDirectory, "DIRECTORY")
	add(FileAttributeArchive, "ARCHIVE")
	add(FileAttributeDevice, "DEVICE")
	add(FileAttributeNormal, "NORMAL")
	add(FileAttributeTemporary, "TEMPORARY")
	add(FileAttributeSparseFile, "SPARSE_FILE")
	add(FileAttributeReparsePoint, "REPARSE_POINT")
	add(FileAttributeCompressed, "COMPRESSED")
	add(FileAttributeOffline, "OFFLINE")
	add(FileAttributeNotContentIndexed, "NOT_CONTENT_INDEXED")
	add(FileAttributeEncrypted, "ENCRYPTED")
	return names
}
