package mft

import (
	"fmt"

	"github.com/dfir-toolkit/ntfsmft/internal/binutil"
	"github.com/dfir-toolkit/ntfsmft/internal/fstime"
)

// StandardInformation is the decoded $STANDARD_INFORMATION (0x10) payload: the four timestamps every
// real record carries, plus the DOS attribute bitfield and (on NTFS 3.x, when the content is at least
// 72 bytes) USN/security/quota/version fields.
type StandardInformation struct {
	Creation                fstime.Value
	FileLastModified        fstime.Value
	MftLastModified         fstime.Value
	LastAccess              fstime.Value
	FileAttributes          FileAttribute
	MaximumNumberOfVersions uint32
	VersionNumber           uint32
	ClassId                 uint32
	OwnerId                 uint32
	SecurityId              uint32
	QuotaCharged            uint64
	UpdateSequenceNumber    uint64
}

// minStandardInformationLength is the pre-NTFS-3.0 content length (four 8-byte timestamps plus four
// 4-byte fields); spec §4.D requires at least this much.
const minStandardInformationLength = 48

// ParseStandardInformation decodes a $STANDARD_INFORMATION attribute's content.
func ParseStandardInformation(b []byte) (StandardInformation, error) {
	if len(b) < minStandardInformationLength {
		return StandardInformation{}, fmt.Errorf("mft: $STANDARD_INFORMATION needs at least %d bytes, got %d", minStandardInformationLength, len(b))
	}
	r := binutil.NewLittleEndianReader(b)

	creation, err := r.Uint64(0x00)
	if err != nil {
		return StandardInformation{}, err
	}
	modified, err := r.Uint64(0x08)
	if err != nil {
		return StandardInformation{}, err
	}
	mftModified, err := r.Uint64(0x10)
	if err != nil {
		return StandardInformation{}, err
	}
	accessed, err := r.Uint64(0x18)
	if err != nil {
		return StandardInformation{}, err
	}
	attrs, err := r.Uint32(0x20)
	if err != nil {
		return StandardInformation{}, err
	}
	maxVersions, err := r.Uint32(0x24)
	if err != nil {
		return StandardInformation{}, err
	}
	version, err := r.Uint32(0x28)
	if err != nil {
		return StandardInformation{}, err
	}
	classId, err := r.Uint32(0x2C)
	if err != nil {
		return StandardInformation{}, err
	}

	si := StandardInformation{
		Creation:                fstime.Decode(creation),
		FileLastModified:        fstime.Decode(modified),
		MftLastModified:         fstime.Decode(mftModified),
		LastAccess:              fstime.Decode(accessed),
		FileAttributes:          FileAttribute(attrs),
		MaximumNumberOfVersions: maxVersions,
		VersionNumber:           version,
		ClassId:                 classId,
	}

	// Extended NTFS 3.x fields only appear when the attribute content is long enough (spec §4.D).
	if len(b) >= 0x30+4 {
		if v, err := r.Uint32(0x30); err == nil {
			si.OwnerId = v
		}
	}
	if len(b) >= 0x34+4 {
		if v, err := r.Uint32(0x34); err == nil {
			si.SecurityId = v
		}
	}
	if len(b) >= 0x38+8 {
		if v, err := r.Uint64(0x38); err == nil {
			si.QuotaCharged = v
		}
	}
	if len(b) >= 0x40+8 {
		if v, err := r.Uint64(0x40); err == nil {
			si.UpdateSequenceNumber = v
		}
	}

	return si, nil
}
