package mft

import (
	"fmt"

	"github.com/dfir-toolkit/ntfsmft/internal/binutil"
)

// Attribute is a parsed attribute header plus its raw content. For a resident attribute, Data is the
// attribute's actual content. For a non-resident attribute, Data is the (still-encoded) data-run list
// starting at DataRunsOffset; use ParseDataRuns to decode it.
type Attribute struct {
	Type        AttributeType
	Resident    bool
	Name        string
	Flags       AttributeFlags
	AttributeId int
	Data        []byte

	// Non-resident-only fields; zero for resident attributes.
	StartingVCN     uint64
	EndingVCN       uint64
	CompressionUnit uint16
	AllocatedSize   uint64
	ActualSize      uint64
	InitializedSize uint64
}

// headerMinLength is the smallest an attribute header (common part, before the resident/non-resident
// split) can be.
const headerMinLength = 16

// ParseAttributes walks a sequence of attribute headers starting at the beginning of b, stopping at
// the AttributeTypeTerminator sentinel (0xFFFFFFFF) or when the remaining data is too short to hold
// another header. This performs no used-size bound; callers that have a record's used-size should
// slice b down to it first, as record.Assemble does.
func ParseAttributes(b []byte) ([]Attribute, []error) {
	var attrs []Attribute
	var errs []error
	offset := 0
	for len(b) > 0 {
		if len(b) < 8 {
			errs = append(errs, fmt.Errorf("mft: %d bytes remaining, too short for an attribute header", len(b)))
			break
		}
		r := binutil.NewLittleEndianReader(b)
		typeVal, _ := r.Uint32(0)
		if AttributeType(typeVal) == AttributeTypeTerminator {
			break
		}

		recordLength, err := r.Uint32(0x04)
		if err != nil {
			errs = append(errs, err)
			break
		}
		if recordLength == 0 {
			// Spec §4.D: a total length of 0 after the header is treated as end-of-chain.
			break
		}
		if int(recordLength) > len(b) {
			errs = append(errs, fmt.Errorf("mft: attribute record length %d exceeds remaining data %d", recordLength, len(b)))
			break
		}

		recordData, err := r.Read(0, int(recordLength))
		if err != nil {
			errs = append(errs, err)
			break
		}
		attr, err := ParseAttribute(recordData)
		if err != nil {
			// Spec §4.D error policy: mark this one attribute corrupt, advance by the declared total
			// length, and keep going rather than aborting the whole chain.
			errs = append(errs, fmt.Errorf("mft: attribute at relative offset %d: %w", offset, err))
		} else {
			attrs = append(attrs, attr)
		}

		rest, err := r.ReadFrom(int(recordLength))
		if err != nil {
			break
		}
		offset += int(recordLength)
		b = rest
	}
	return attrs, errs
}

// ParseAttribute parses a single attribute header and its content from b, which must contain exactly
// this attribute's bytes (its declared total length).
func ParseAttribute(b []byte) (Attribute, error) {
	if len(b) < headerMinLength {
		return Attribute{}, fmt.Errorf("mft: attribute header needs at least %d bytes, got %d", headerMinLength, len(b))
	}
	r := binutil.NewLittleEndianReader(b)

	typeVal, err := r.Uint32(0x00)
	if err != nil {
		return Attribute{}, err
	}
	nonResidentFlag, err := r.Byte(0x08)
	if err != nil {
		return Attribute{}, err
	}
	nameLength, err := r.Byte(0x09)
	if err != nil {
		return Attribute{}, err
	}
	nameOffset, err := r.Uint16(0x0A)
	if err != nil {
		return Attribute{}, err
	}
	flags, err := r.Uint16(0x0C)
	if err != nil {
		return Attribute{}, err
	}
	attrId, err := r.Uint16(0x0E)
	if err != nil {
		return Attribute{}, err
	}

	name := ""
	if nameLength != 0 {
		nameBytes, err := r.Read(int(nameOffset), int(nameLength)*2)
		if err != nil {
			return Attribute{}, fmt.Errorf("mft: unable to read attribute name: %w", err)
		}
		name, err = decodeUTF16(nameBytes)
		if err != nil {
			return Attribute{}, fmt.Errorf("mft: unable to decode attribute name: %w", err)
		}
	}

	resident := nonResidentFlag == 0
	attr := Attribute{
		Type:        AttributeType(typeVal),
		Resident:    resident,
		Name:        name,
		Flags:       AttributeFlags(flags),
		AttributeId: int(attrId),
	}

	if resident {
		dataLength, err := r.Uint32(0x10)
		if err != nil {
			return Attribute{}, err
		}
		dataOffset, err := r.Uint16(0x14)
		if err != nil {
			return Attribute{}, err
		}
		data, err := r.Read(int(dataOffset), int(dataLength))
		if err != nil {
			return Attribute{}, fmt.Errorf("mft: resident content out of bounds: %w", err)
		}
		attr.Data = binutil.Duplicate(data)
		attr.ActualSize = uint64(dataLength)
		attr.AllocatedSize = uint64(dataLength)
		return attr, nil
	}

	startVCN, err := r.Uint64(0x10)
	if err != nil {
		return Attribute{}, err
	}
	endVCN, err := r.Uint64(0x18)
	if err != nil {
		return Attribute{}, err
	}
	runsOffset, err := r.Uint16(0x20)
	if err != nil {
		return Attribute{}, err
	}
	compressionUnit, err := r.Uint16(0x22)
	if err != nil {
		return Attribute{}, err
	}
	allocSize, err := r.Uint64(0x28)
	if err != nil {
		return Attribute{}, err
	}
	realSize, err := r.Uint64(0x30)
	if err != nil {
		return Attribute{}, err
	}
	initSize, err := r.Uint64(0x38)
	if err != nil {
		return Attribute{}, err
	}
	data, err := r.ReadFrom(int(runsOffset))
	if err != nil {
		return Attribute{}, fmt.Errorf("mft: non-resident data-run offset out of bounds: %w", err)
	}

	attr.StartingVCN = startVCN
	attr.EndingVCN = endVCN
	attr.CompressionUnit = compressionUnit
	attr.AllocatedSize = allocSize
	attr.ActualSize = realSize
	attr.InitializedSize = initSize
	attr.Data = binutil.Duplicate(data)
	return attr, nil
}
