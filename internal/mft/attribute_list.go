package mft

import (
	"fmt"

	"github.com/dfir-toolkit/ntfsmft/internal/binutil"
)

// AttributeListEntry is one entry of a $ATTRIBUTE_LIST (0x20) attribute: a pointer to where an
// attribute of the given type actually lives, which may be the base record itself or an extension
// record referenced by BaseRecordReference (a slightly confusing name inherited from the on-disk
// field: it's the reference to the record *holding* this particular instance of the attribute, not
// necessarily this record's own base).
type AttributeListEntry struct {
	Type                AttributeType
	Name                string
	StartingVCN         uint64
	BaseRecordReference FileReference
	AttributeId         uint16
}

const minAttributeListEntryLength = 0x1A

// ParseAttributeList decodes a $ATTRIBUTE_LIST attribute's content into its entries.
func ParseAttributeList(b []byte) ([]AttributeListEntry, error) {
	var entries []AttributeListEntry
	for len(b) > 0 {
		if len(b) < minAttributeListEntryLength {
			return entries, fmt.Errorf("mft: $ATTRIBUTE_LIST entry needs at least %d bytes, got %d", minAttributeListEntryLength, len(b))
		}
		r := binutil.NewLittleEndianReader(b)

		typeVal, err := r.Uint32(0x00)
		if err != nil {
			return entries, err
		}
		entryLength, err := r.Uint16(0x04)
		if err != nil {
			return entries, err
		}
		if int(entryLength) > len(b) || entryLength == 0 {
			return entries, fmt.Errorf("mft: $ATTRIBUTE_LIST entry length %d invalid for %d remaining bytes", entryLength, len(b))
		}
		nameLength, err := r.Byte(0x06)
		if err != nil {
			return entries, err
		}
		name := ""
		if nameLength != 0 {
			nameOffset, err := r.Byte(0x07)
			if err != nil {
				return entries, err
			}
			nameBytes, err := r.Read(int(nameOffset), int(nameLength)*2)
			if err != nil {
				return entries, fmt.Errorf("mft: unable to read $ATTRIBUTE_LIST entry name: %w", err)
			}
			name, err = decodeUTF16(nameBytes)
			if err != nil {
				return entries, fmt.Errorf("mft: unable to decode $ATTRIBUTE_LIST entry name: %w", err)
			}
		}
		startVCN, err := r.Uint64(0x08)
		if err != nil {
			return entries, err
		}
		baseRefBytes, err := r.Read(0x10, 8)
		if err != nil {
			return entries, err
		}
		baseRef, err := ParseFileReference(baseRefBytes)
		if err != nil {
			return entries, fmt.Errorf("mft: unable to parse $ATTRIBUTE_LIST base reference: %w", err)
		}
		attrId, err := r.Uint16(0x18)
		if err != nil {
			return entries, err
		}

		entries = append(entries, AttributeListEntry{
			Type:                AttributeType(typeVal),
			Name:                name,
			StartingVCN:         startVCN,
			BaseRecordReference: baseRef,
			AttributeId:         attrId,
		})

		rest, err := r.ReadFrom(int(entryLength))
		if err != nil {
			break
		}
		b = rest
	}
	return entries, nil
}
