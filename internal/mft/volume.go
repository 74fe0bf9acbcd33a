package mft

import (
	"fmt"

	"github.com/dfir-toolkit/ntfsmft/internal/binutil"
)

// VolumeName is the decoded $VOLUME_NAME (0x60) payload: just the volume's label.
type VolumeName struct {
	Name string
}

// ParseVolumeName decodes a $VOLUME_NAME attribute's content. An empty (zero-length) label is valid.
func ParseVolumeName(b []byte) (VolumeName, error) {
	if len(b) == 0 {
		return VolumeName{}, nil
	}
	name, err := decodeUTF16(b)
	if err != nil {
		return VolumeName{}, fmt.Errorf("mft: unable to decode volume name: %w", err)
	}
	return VolumeName{Name: name}, nil
}

// VolumeFlags is a bit-mask flag describing volume-wide dirty/upgrade state.
type VolumeFlags uint16

const (
	VolumeFlagDirty                  VolumeFlags = 0x0001
	VolumeFlagResizeLogFile          VolumeFlags = 0x0002
	VolumeFlagUpgradeOnMount         VolumeFlags = 0x0004
	VolumeFlagMounted                VolumeFlags = 0x0008
	VolumeFlagDeleteUSNUnderway      VolumeFlags = 0x0010
	VolumeFlagRepairObjectIds        VolumeFlags = 0x0020
	VolumeFlagModifiedByChkdsk       VolumeFlags = 0x8000
)

// Is reports whether this VolumeFlags' bit mask contains c.
func (f VolumeFlags) Is(c VolumeFlags) bool { return f&c == c }

// VolumeInformation is the decoded $VOLUME_INFORMATION (0x70) payload.
type VolumeInformation struct {
	MajorVersion byte
	MinorVersion byte
	Flags        VolumeFlags
}

const minVolumeInformationLength = 0x0C

// ParseVolumeInformation decodes a $VOLUME_INFORMATION attribute's content.
func ParseVolumeInformation(b []byte) (VolumeInformation, error) {
	if len(b) < minVolumeInformationLength {
		return VolumeInformation{}, fmt.Errorf("mft: $VOLUME_INFORMATION needs at least %d bytes, got %d", minVolumeInformationLength, len(b))
	}
	r := binutil.NewLittleEndianReader(b)
	major, err := r.Byte(0x08)
	if err != nil {
		return VolumeInformation{}, err
	}
	minor, err := r.Byte(0x09)
	if err != nil {
		return VolumeInformation{}, err
	}
	flags, err := r.Uint16(0x0A)
	if err != nil {
		return VolumeInformation{}, err
	}
	return VolumeInformation{MajorVersion: major, MinorVersion: minor, Flags: VolumeFlags(flags)}, nil
}
