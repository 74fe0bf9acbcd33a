package mft_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfir-toolkit/ntfsmft/internal/mft"
)

func TestParseRecordHeader(t *testing.T) {
	input := decodeHex(t, "46494c453000030034120000000000000500020038000300000400000004000000000000000000000400000005000000")

	rh, err := mft.ParseRecordHeader(input)
	require.NoError(t, err)
	assert.True(t, mft.IsFileSignature(rh.Signature))
	assert.False(t, mft.IsBadSignature(rh.Signature))
	assert.Equal(t, 0x30, rh.FixupArrayOffset)
	assert.Equal(t, 3, rh.FixupArrayCount)
	assert.Equal(t, uint64(0x1234), rh.LogFileSequenceNumber)
	assert.Equal(t, uint16(5), rh.SequenceNumber)
	assert.Equal(t, 2, rh.HardLinkCount)
	assert.Equal(t, 0x38, rh.FirstAttributeOffset)
	assert.True(t, rh.Flags.Is(mft.RecordFlagInUse))
	assert.True(t, rh.Flags.Is(mft.RecordFlagIsDirectory))
	assert.Equal(t, uint32(1024), rh.ActualSize)
	assert.Equal(t, uint32(1024), rh.AllocatedSize)
	assert.Equal(t, 4, rh.NextAttributeId)
	assert.Equal(t, uint64(5), rh.RecordNumber)
}

func TestParseRecordHeaderTooShort(t *testing.T) {
	_, err := mft.ParseRecordHeader(make([]byte, 10))
	assert.Error(t, err)
}

func TestParseStandardInformation(t *testing.T) {
	input := decodeHex(t, "00a034cc64d7d50100a034cc64d7d50100a034cc64d7d50100a034cc64d7d50120000000000000000000000000000000")

	si, err := mft.ParseStandardInformation(input)
	require.NoError(t, err)
	assert.False(t, si.Creation.Zero)
	assert.False(t, si.Creation.Corrupt)
	assert.Equal(t, si.Creation.Time, si.LastAccess.Time)
	assert.True(t, si.FileAttributes.Is(mft.FileAttributeArchive))
	assert.Equal(t, uint32(0), si.OwnerId)
}

func TestParseStandardInformationTooShort(t *testing.T) {
	_, err := mft.ParseStandardInformation(make([]byte, 10))
	assert.Error(t, err)
}

func TestParseFileName(t *testing.T) {
	input := decodeHex(t, "050000000000050000a034cc64d7d50100a034cc64d7d50100a034cc64d7d50100a034cc64d7d50100100000000000000c0000000000000020000000000000000601680069002e00740078007400")

	fn, err := mft.ParseFileName(input)
	require.NoError(t, err)
	assert.Equal(t, mft.FileReference{RecordNumber: 5, SequenceNumber: 5}, fn.ParentFileReference)
	assert.Equal(t, "hi.txt", fn.Name)
	assert.Equal(t, uint64(4096), fn.AllocatedSize)
	assert.Equal(t, uint64(12), fn.RealSize)
	assert.True(t, fn.Flags.Is(mft.FileAttributeArchive))
	assert.Equal(t, mft.FileNameNamespaceWin32, fn.Namespace)
}

func TestPreferredFileNamePrefersWin32AndDos(t *testing.T) {
	names := []mft.FileName{
		{Namespace: mft.FileNameNamespaceDos, Name: "HI.TXT"},
		{Namespace: mft.FileNameNamespaceWin32AndDos, Name: "hi.txt"},
		{Namespace: mft.FileNameNamespacePosix, Name: "hi.txt"},
	}
	best, ok := mft.PreferredFileName(names)
	require.True(t, ok)
	assert.Equal(t, mft.FileNameNamespaceWin32AndDos, best.Namespace)
}

func TestPreferredFileNameEmpty(t *testing.T) {
	_, ok := mft.PreferredFileName(nil)
	assert.False(t, ok)
}

func TestParseAttributeList(t *testing.T) {
	input := decodeHex(t, "800000001a000000000000000000000005000000000005000000800000001a000000010000000000000007000000000003000100")

	entries, err := mft.ParseAttributeList(input)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, mft.AttributeTypeData, entries[0].Type)
	assert.Equal(t, mft.FileReference{RecordNumber: 5, SequenceNumber: 5}, entries[0].BaseRecordReference)
	assert.Equal(t, uint64(1), entries[1].StartingVCN)
	assert.Equal(t, mft.FileReference{RecordNumber: 7, SequenceNumber: 3}, entries[1].BaseRecordReference)
	assert.Equal(t, uint16(1), entries[1].AttributeId)
}

func TestParseIndexRoot(t *testing.T) {
	input := decodeHex(t, "300000000100000000100000010000007e00000000000000000000000000000006000000000001005e004e0000000000050000000000050000a034cc64d7d50100a034cc64d7d50100a034cc64d7d50100a034cc64d7d50100100000000000000c0000000000000020000000000000000601680069002e0074007800740000000000000000001000000002000000")

	root, err := mft.ParseIndexRoot(input)
	require.NoError(t, err)
	assert.Equal(t, mft.AttributeTypeFileName, root.AttributeType)
	assert.Equal(t, mft.CollationTypeFileName, root.CollationType)
	require.Len(t, root.Entries, 2)
	assert.True(t, root.Entries[0].HasFileName)
	assert.Equal(t, "hi.txt", root.Entries[0].FileName.Name)
	assert.False(t, root.Entries[0].PointsToSubNode)
	assert.False(t, root.Entries[1].HasFileName)
}

func TestParseIndexRootRejectsNonFileNameIndex(t *testing.T) {
	input := make([]byte, 0x20)
	input[0] = 0xB0 // $BITMAP, not supported as an indexed type
	_, err := mft.ParseIndexRoot(input)
	assert.Error(t, err)
}

func TestParseObjectIdMinimal(t *testing.T) {
	guid := decodeHex(t, "efbeadde000000000000000000000000")
	out, err := mft.ParseObjectId(guid)
	require.NoError(t, err)
	assert.False(t, out.HasBirthVolume)
	assert.False(t, out.HasBirthObject)
	assert.False(t, out.HasBirthDomain)
	assert.Equal(t, "deadbeef-0000-0000-0000-000000000000", out.ObjectId.String())
}

func TestParseObjectIdWithBirth(t *testing.T) {
	objectID := decodeHex(t, "efbeadde000000000000000000000000")[:16]
	volumeID := decodeHex(t, "01000000000000000000000000000000")[:16]
	objID := decodeHex(t, "02000000000000000000000000000000")[:16]
	domainID := decodeHex(t, "03000000000000000000000000000000")[:16]
	input := append(append(append(append([]byte{}, objectID...), volumeID...), objID...), domainID...)

	out, err := mft.ParseObjectId(input)
	require.NoError(t, err)
	assert.True(t, out.HasBirthVolume)
	assert.True(t, out.HasBirthObject)
	assert.True(t, out.HasBirthDomain)
}

func TestParseSecurityDescriptorMalformedTooShort(t *testing.T) {
	sd := mft.ParseSecurityDescriptor(make([]byte, 4))
	assert.True(t, sd.Malformed)
}

func TestParseVolumeName(t *testing.T) {
	name := decodeHex(t, "530079007300740065006d0000")
	vn, err := mft.ParseVolumeName(name[:len(name)-1])
	require.NoError(t, err)
	assert.Equal(t, "System", vn.Name)
}

func TestParseVolumeInformation(t *testing.T) {
	input := decodeHex(t, "00000000000000000300080000000000")
	vi, err := mft.ParseVolumeInformation(input)
	require.NoError(t, err)
	assert.Equal(t, byte(3), vi.MajorVersion)
	assert.Equal(t, byte(0), vi.MinorVersion)
	assert.True(t, vi.Flags.Is(mft.VolumeFlagMounted))
}

func TestParseReparsePointUnknownTag(t *testing.T) {
	input := decodeHex(t, "00000000000000000000000000000000")
	rp, err := mft.ParseReparsePoint(input)
	require.NoError(t, err)
	assert.False(t, rp.HasNames)
	assert.Equal(t, uint32(0), rp.Tag)
}
