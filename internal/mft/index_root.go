package mft

import (
	"fmt"

	"github.com/dfir-toolkit/ntfsmft/internal/binutil"
)

// CollationType identifies how an index's entries are ordered.
type CollationType uint32

const (
	CollationTypeBinary            CollationType = 0x00000000
	CollationTypeFileName          CollationType = 0x00000001
	CollationTypeUnicodeString     CollationType = 0x00000002
	CollationTypeNtofsULong        CollationType = 0x00000010
	CollationTypeNtofsSid          CollationType = 0x00000011
	CollationTypeNtofsSecurityHash CollationType = 0x00000012
	CollationTypeNtofsUlongs       CollationType = 0x00000013
)

// IndexRoot is the decoded $INDEX_ROOT (0x90) payload. The core only needs its presence to classify a
// record as a directory (spec §4.D), but the entries are decoded too since a small directory's entire
// contents can fit resident in $INDEX_ROOT alone.
type IndexRoot struct {
	AttributeType     AttributeType
	CollationType     CollationType
	BytesPerRecord    uint32
	ClustersPerRecord uint32
	Flags             uint32
	Entries           []IndexEntry
}

// IndexEntry is one entry of an index ($INDEX_ROOT or $INDEX_ALLOCATION), almost always a $FILE_NAME
// pointing at a child of the directory this index belongs to.
type IndexEntry struct {
	FileReference   FileReference
	Flags           uint32
	FileName        FileName
	HasFileName     bool
	PointsToSubNode bool
	SubNodeVCN      uint64
}

const minIndexRootLength = 0x20

// ParseIndexRoot decodes a $INDEX_ROOT attribute's content. Only AttributeTypeFileName-indexed roots
// (ordinary directories) are supported; any other indexed attribute type is reported as an error but
// the record is still otherwise usable (the caller treats this the same as any other per-attribute
// decode failure).
func ParseIndexRoot(b []byte) (IndexRoot, error) {
	if len(b) < minIndexRootLength {
		return IndexRoot{}, fmt.Errorf("mft: $INDEX_ROOT needs at least %d bytes, got %d", minIndexRootLength, len(b))
	}
	r := binutil.NewLittleEndianReader(b)

	attrType, err := r.Uint32(0x00)
	if err != nil {
		return IndexRoot{}, err
	}
	if AttributeType(attrType) != AttributeTypeFileName && attrType != 0 {
		return IndexRoot{}, fmt.Errorf("mft: unsupported indexed attribute type %#x in $INDEX_ROOT", attrType)
	}
	collation, err := r.Uint32(0x04)
	if err != nil {
		return IndexRoot{}, err
	}
	bytesPerRecord, err := r.Uint32(0x08)
	if err != nil {
		return IndexRoot{}, err
	}
	clustersPerRecord, err := r.Uint32(0x0C)
	if err != nil {
		return IndexRoot{}, err
	}
	indexAllocSize, err := r.Uint32(0x10)
	if err != nil {
		return IndexRoot{}, err
	}
	flags, err := r.Uint32(0x1C)
	if err != nil {
		return IndexRoot{}, err
	}

	root := IndexRoot{
		AttributeType:     AttributeType(attrType),
		CollationType:     CollationType(collation),
		BytesPerRecord:    bytesPerRecord,
		ClustersPerRecord: clustersPerRecord,
		Flags:             flags,
	}

	entriesLength := int(indexAllocSize) - 16
	if entriesLength > 0 && len(b) >= 0x20+entriesLength {
		entryBytes, err := r.Read(0x20, entriesLength)
		if err != nil {
			return root, err
		}
		entries, err := parseIndexEntries(entryBytes)
		if err != nil {
			return root, fmt.Errorf("mft: error parsing $INDEX_ROOT entries: %w", err)
		}
		root.Entries = entries
	}
	return root, nil
}

const (
	indexEntryFlagSubNode       = 0x1
	indexEntryFlagLastInNode    = 0x2
	minIndexEntryHeaderLength   = 0x10
)

func parseIndexEntries(b []byte) ([]IndexEntry, error) {
	var entries []IndexEntry
	for len(b) > 0 {
		if len(b) < minIndexEntryHeaderLength {
			break
		}
		r := binutil.NewLittleEndianReader(b)

		entryLength, err := r.Uint16(0x08)
		if err != nil {
			return entries, err
		}
		if int(entryLength) > len(b) || entryLength < minIndexEntryHeaderLength {
			return entries, fmt.Errorf("mft: index entry length %d invalid for %d remaining bytes", entryLength, len(b))
		}
		flags, err := r.Uint32(0x0C)
		if err != nil {
			return entries, err
		}
		contentLength, err := r.Uint16(0x0A)
		if err != nil {
			return entries, err
		}
		isLast := flags&indexEntryFlagLastInNode != 0
		pointsToSubNode := flags&indexEntryFlagSubNode != 0

		entry := IndexEntry{Flags: flags, PointsToSubNode: pointsToSubNode}

		if !isLast {
			fileRefBytes, err := r.Read(0x00, 8)
			if err != nil {
				return entries, err
			}
			fileRef, err := ParseFileReference(fileRefBytes)
			if err != nil {
				return entries, fmt.Errorf("mft: unable to parse index entry file reference: %w", err)
			}
			entry.FileReference = fileRef

			if contentLength > 0 {
				contentBytes, err := r.Read(0x10, int(contentLength))
				if err != nil {
					return entries, err
				}
				fileName, err := ParseFileName(contentBytes)
				if err != nil {
					return entries, fmt.Errorf("mft: error parsing $FILE_NAME in index entry: %w", err)
				}
				entry.FileName = fileName
				entry.HasFileName = true
			}
		}

		if pointsToSubNode {
			subNodeVCN, err := r.Uint64(int(entryLength) - 8)
			if err != nil {
				return entries, err
			}
			entry.SubNodeVCN = subNodeVCN
		}

		entries = append(entries, entry)

		if isLast {
			break
		}
		rest, err := r.ReadFrom(int(entryLength))
		if err != nil {
			break
		}
		b = rest
	}
	return entries, nil
}
