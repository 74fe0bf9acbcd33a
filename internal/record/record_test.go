package record_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfir-toolkit/ntfsmft/internal/mft"
	"github.com/dfir-toolkit/ntfsmft/internal/record"
)

const sectorSize = 512

// fileReferenceBytes encodes an 8-byte little-endian file reference.
func fileReferenceBytes(recordNumber uint64, seq uint16) []byte {
	b := make([]byte, 8)
	b[0] = byte(recordNumber)
	b[1] = byte(recordNumber >> 8)
	b[2] = byte(recordNumber >> 16)
	b[3] = byte(recordNumber >> 24)
	b[4] = byte(recordNumber >> 32)
	b[5] = byte(recordNumber >> 40)
	binary.LittleEndian.PutUint16(b[6:], seq)
	return b
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

func fileNameContent(parent uint64, parentSeq uint16, creation uint64, name string) []byte {
	nameBytes := utf16Encode(name)
	b := make([]byte, 0x42+len(nameBytes))
	copy(b[0x00:], fileReferenceBytes(parent, parentSeq))
	binary.LittleEndian.PutUint64(b[0x08:], creation)
	binary.LittleEndian.PutUint64(b[0x10:], creation)
	binary.LittleEndian.PutUint64(b[0x18:], creation)
	binary.LittleEndian.PutUint64(b[0x20:], creation)
	binary.LittleEndian.PutUint64(b[0x28:], 4096)
	binary.LittleEndian.PutUint64(b[0x30:], 12)
	binary.LittleEndian.PutUint32(b[0x38:], 0x20)
	b[0x40] = byte(len(name))
	b[0x41] = byte(mft.FileNameNamespaceWin32)
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

func align8(n int) int {
	if n%8 == 0 {
		return n
	}
	return n + (8 - n%8)
}

// residentAttribute builds a resident attribute record: common 16-byte header, then 4-byte data
// length, 2-byte data offset (fixed at 24), then the content, padded to an 8-byte boundary.
func residentAttribute(attrType mft.AttributeType, content []byte) []byte {
	const dataOffset = 24
	total := align8(dataOffset + len(content))
	b := make([]byte, total)
	binary.LittleEndian.PutUint32(b[0x00:], uint32(attrType))
	binary.LittleEndian.PutUint32(b[0x04:], uint32(total))
	b[0x08] = 0 // resident
	b[0x09] = 0 // name length
	binary.LittleEndian.PutUint16(b[0x0A:], 0)
	binary.LittleEndian.PutUint16(b[0x0C:], 0) // flags
	binary.LittleEndian.PutUint16(b[0x0E:], 0) // attribute id
	binary.LittleEndian.PutUint32(b[0x10:], uint32(len(content)))
	binary.LittleEndian.PutUint16(b[0x14:], dataOffset)
	copy(b[dataOffset:], content)
	return b
}

// buildRecord assembles a two-sector (1024-byte), fixup-correct MFT record containing a
// $STANDARD_INFORMATION and a $FILE_NAME attribute.
func buildRecord(t *testing.T, recordNumber uint64, seq uint16, flags uint16, parent uint64, parentSeq uint16, name string) []byte {
	t.Helper()

	const recordSize = 2 * sectorSize
	const fixupOffset = 0x30
	const fixupCount = 3 // sectorCount + 1
	const firstAttrOffset = 0x38

	si := residentAttribute(mft.AttributeTypeStandardInformation, standardInformationContent(0x01d5d764cc34a000, 0x01d5d764cc34a000, 0x20))
	fn := residentAttribute(mft.AttributeTypeFileName, fileNameContent(parent, parentSeq, 0x01d5d764cc34a000, name))
	terminator := []byte{0xFF, 0xFF, 0xFF, 0xFF}

	attrs := append(append(append([]byte{}, si...), fn...), terminator...)
	usedSize := firstAttrOffset + len(attrs)
	require.LessOrEqual(t, usedSize, recordSize)

	buf := make([]byte, recordSize)
	copy(buf[0:4], []byte("FILE"))
	binary.LittleEndian.PutUint16(buf[0x04:], fixupOffset)
	binary.LittleEndian.PutUint16(buf[0x06:], fixupCount)
	binary.LittleEndian.PutUint64(buf[0x08:], 0x1234)
	binary.LittleEndian.PutUint16(buf[0x10:], seq)
	binary.LittleEndian.PutUint16(buf[0x12:], 1)
	binary.LittleEndian.PutUint16(buf[0x14:], firstAttrOffset)
	binary.LittleEndian.PutUint16(buf[0x16:], flags)
	binary.LittleEndian.PutUint32(buf[0x18:], uint32(usedSize))
	binary.LittleEndian.PutUint32(buf[0x1C:], uint32(recordSize))
	binary.LittleEndian.PutUint32(buf[0x28:], 1) // next attribute id, padded
	binary.LittleEndian.PutUint32(buf[0x2C:], uint32(recordNumber))
	copy(buf[firstAttrOffset:], attrs)

	const usn = 0xBEEF
	binary.LittleEndian.PutUint16(buf[fixupOffset:], usn)
	for i := 1; i <= 2; i++ {
		original := buf[i*sectorSize-2 : i*sectorSize]
		binary.LittleEndian.PutUint16(buf[fixupOffset+i*2:], binary.LittleEndian.Uint16(original))
		binary.LittleEndian.PutUint16(buf[i*sectorSize-2:], usn)
	}

	return buf
}

func TestAssembleActiveFile(t *testing.T) {
	buf := buildRecord(t, 42, 3, 1, 5, 5, "secret.txt")

	rec, err := record.Assemble(buf, record.Options{})
	require.NoError(t, err)
	assert.Empty(t, rec.Errors)
	assert.Equal(t, uint64(42), rec.Number)
	assert.True(t, rec.Active())
	assert.False(t, rec.IsDirectory())
	assert.True(t, rec.HasFileName)
	assert.Equal(t, "secret.txt", rec.PreferredFileName.Name)
	assert.Equal(t, record.StageAssembled, rec.Stage)
}

func TestAssembleDeletedFile(t *testing.T) {
	buf := buildRecord(t, 42, 3, 0, 5, 5, "secret.txt")

	rec, err := record.Assemble(buf, record.Options{})
	require.NoError(t, err)
	assert.False(t, rec.Active())
	assert.True(t, rec.Deleted())
}

func TestAssembleDirectoryFlag(t *testing.T) {
	buf := buildRecord(t, 5, 5, 3, 5, 5, "root-ish")

	rec, err := record.Assemble(buf, record.Options{})
	require.NoError(t, err)
	assert.True(t, rec.IsDirectory())
}

func TestAssembleFixupMismatch(t *testing.T) {
	buf := buildRecord(t, 7, 1, 1, 5, 5, "x.txt")
	buf[sectorSize-2] = 0xDE
	buf[sectorSize-1] = 0xAD

	rec, err := record.Assemble(buf, record.Options{})
	require.NoError(t, err)
	require.NotEmpty(t, rec.Errors)
	found := false
	for _, e := range rec.Errors {
		if e.Kind.String() == "FixupMismatch" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAssembleBadSignatureFatal(t *testing.T) {
	buf := buildRecord(t, 1, 1, 1, 5, 5, "x")
	copy(buf[0:4], []byte("ZZZZ"))

	_, err := record.Assemble(buf, record.Options{})
	assert.Error(t, err)
}

func TestAssembleBaadSignatureStillDecoded(t *testing.T) {
	buf := buildRecord(t, 1, 1, 1, 5, 5, "x")
	copy(buf[0:4], []byte("BAAD"))

	rec, err := record.Assemble(buf, record.Options{})
	require.NoError(t, err)
	require.NotEmpty(t, rec.Errors)
}

func TestAssembleTruncatedUsedSizeFlagged(t *testing.T) {
	buf := buildRecord(t, 9, 1, 1, 5, 5, "short.txt")
	// Claim more used space than the physical record buffer actually holds.
	binary.LittleEndian.PutUint32(buf[0x18:], uint32(len(buf)+100))

	rec, err := record.Assemble(buf, record.Options{})
	require.NoError(t, err)
	require.NotEmpty(t, rec.Errors)
	found := false
	for _, e := range rec.Errors {
		if e.Kind.String() == "Truncated" {
			found = true
		}
	}
	assert.True(t, found)
	// The attribute chain itself was still fully available within the buffer, so decoding succeeds.
	assert.True(t, rec.HasFileName)
}

func TestAssembleTooShort(t *testing.T) {
	_, err := record.Assemble(make([]byte, 10), record.Options{})
	assert.Error(t, err)
}

func TestResolveExtensionsFoldsAttributes(t *testing.T) {
	base := buildRecord(t, 100, 1, 1, 5, 5, "big.bin")
	baseRec, err := record.Assemble(base, record.Options{})
	require.NoError(t, err)

	ext := buildRecord(t, 101, 1, 5, 5, 5, "big.bin") // in-extend flag set
	extRec, err := record.Assemble(ext, record.Options{})
	require.NoError(t, err)
	extRec.BaseRecordReference = mft.FileReference{RecordNumber: 100, SequenceNumber: 1}

	baseRec.PendingExtensions = []mft.FileReference{{RecordNumber: 101, SequenceNumber: 1}}

	primaries := map[uint64]*record.Record{100: baseRec}
	extensions := map[uint64]*record.Record{101: extRec}
	record.ResolveExtensions(primaries, extensions, record.Options{})

	assert.False(t, baseRec.Incomplete)
	assert.Len(t, baseRec.Attributes[mft.AttributeTypeStandardInformation], 2)
}

func TestResolveExtensionsMissingFlagsIncomplete(t *testing.T) {
	base := buildRecord(t, 200, 1, 1, 5, 5, "big.bin")
	baseRec, err := record.Assemble(base, record.Options{})
	require.NoError(t, err)
	baseRec.PendingExtensions = []mft.FileReference{{RecordNumber: 201, SequenceNumber: 1}}

	primaries := map[uint64]*record.Record{200: baseRec}
	record.ResolveExtensions(primaries, map[uint64]*record.Record{}, record.Options{})

	assert.True(t, baseRec.Incomplete)
}
