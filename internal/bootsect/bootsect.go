// Package bootsect parses the NTFS boot sector (the Volume Boot Record, $Boot), used only by the
// extract subcommand to locate the $MFT's own cluster and geometry before reading a volume image
// (SPEC_FULL.md §7.1). The OemId field should read "NTFS    " ("NTFS" padded to 8 bytes) for a genuine
// NTFS boot sector.
package bootsect

import (
	"fmt"

	"github.com/dfir-toolkit/ntfsmft/internal/binutil"
)

// BootSector is the parsed fields of an NTFS boot sector relevant to locating and reading the $MFT.
type BootSector struct {
	OemId                  string
	BytesPerSector         int
	SectorsPerCluster      int
	MediaDescriptor        byte
	SectorsPerTrack        int
	NumberOfHeads          int
	HiddenSectors          int
	TotalSectors           uint64
	MftClusterNumber       uint64
	MftMirrorClusterNumber uint64
	RecordSizeInBytes      int
	IndexBufferSizeInBytes int
	VolumeSerialNumber     []byte
}

// MinLength is the smallest boot sector prefix Parse needs; everything it reads from lives within the
// first 80 bytes.
const MinLength = 80

// Parse decodes an NTFS boot sector from data, which must be at least MinLength bytes.
func Parse(data []byte) (BootSector, error) {
	if len(data) < MinLength {
		return BootSector{}, fmt.Errorf("bootsect: need at least %d bytes, got %d", MinLength, len(data))
	}

	r := binutil.NewLittleEndianReader(data)

	bytesPerSector, err := r.Uint16(0x0B)
	if err != nil {
		return BootSector{}, err
	}
	sectorsPerClusterRaw, err := r.Byte(0x0D)
	if err != nil {
		return BootSector{}, err
	}
	sectorsPerCluster := int(int8(sectorsPerClusterRaw))
	if sectorsPerCluster < 0 {
		// A negative value means the field holds the power of two for the cluster size instead of a
		// literal sector count.
		sectorsPerCluster = 1 << -sectorsPerCluster
	}
	bytesPerCluster := int(bytesPerSector) * sectorsPerCluster

	oemID, err := r.Read(0x03, 8)
	if err != nil {
		return BootSector{}, err
	}
	mediaDescriptor, err := r.Byte(0x15)
	if err != nil {
		return BootSector{}, err
	}
	sectorsPerTrack, err := r.Uint16(0x18)
	if err != nil {
		return BootSector{}, err
	}
	numberOfHeads, err := r.Uint16(0x1A)
	if err != nil {
		return BootSector{}, err
	}
	hiddenSectors, err := r.Uint16(0x1C)
	if err != nil {
		return BootSector{}, err
	}
	totalSectors, err := r.Uint64(0x28)
	if err != nil {
		return BootSector{}, err
	}
	mftCluster, err := r.Uint64(0x30)
	if err != nil {
		return BootSector{}, err
	}
	mftMirrorCluster, err := r.Uint64(0x38)
	if err != nil {
		return BootSector{}, err
	}
	recordSizeRaw, err := r.Byte(0x40)
	if err != nil {
		return BootSector{}, err
	}
	indexSizeRaw, err := r.Byte(0x44)
	if err != nil {
		return BootSector{}, err
	}
	serial, err := r.Read(0x48, 8)
	if err != nil {
		return BootSector{}, err
	}

	return BootSector{
		OemId:                  string(oemID),
		BytesPerSector:         int(bytesPerSector),
		SectorsPerCluster:      sectorsPerCluster,
		MediaDescriptor:        mediaDescriptor,
		SectorsPerTrack:        int(sectorsPerTrack),
		NumberOfHeads:          int(numberOfHeads),
		HiddenSectors:          int(hiddenSectors),
		TotalSectors:           totalSectors,
		MftClusterNumber:       mftCluster,
		MftMirrorClusterNumber: mftMirrorCluster,
		RecordSizeInBytes:      bytesOrClustersToBytes(recordSizeRaw, bytesPerCluster),
		IndexBufferSizeInBytes: bytesOrClustersToBytes(indexSizeRaw, bytesPerCluster),
		VolumeSerialNumber:     binutil.Duplicate(serial),
	}, nil
}

// bytesOrClustersToBytes decodes the dual-meaning size fields NTFS uses for the MFT record size and
// index buffer size: a positive byte value is a cluster count, a negative one (two's-complement) is
// the power-of-two byte size directly.
func bytesOrClustersToBytes(b byte, bytesPerCluster int) int {
	signed := int(int8(b))
	if signed < 0 {
		return 1 << -signed
	}
	return signed * bytesPerCluster
}

// MftOffset returns the byte offset of the $MFT's first cluster within the volume.
func (b BootSector) MftOffset() int64 {
	return int64(b.MftClusterNumber) * int64(b.BytesPerSector) * int64(b.SectorsPerCluster)
}

// BytesPerCluster returns the volume's cluster size in bytes.
func (b BootSector) BytesPerCluster() int {
	return b.BytesPerSector * b.SectorsPerCluster
}
