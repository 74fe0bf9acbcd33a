package driver_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfir-toolkit/ntfsmft/internal/driver"
)

const sectorSize = 512

// buildMinimalRecord builds a single fixup-correct record of the given size containing just a
// terminator attribute, which is all the driver itself needs to exercise its own bookkeeping.
func buildMinimalRecord(t *testing.T, recordNumber uint64, seq uint16, flags uint16, recordSize int) []byte {
	t.Helper()

	buf := make([]byte, recordSize)
	copy(buf[0:4], []byte("FILE"))
	binary.LittleEndian.PutUint16(buf[0x04:], 0x30)
	sectorCount := recordSize / sectorSize
	fixupArrayBytes := (sectorCount + 1) * 2
	firstAttrOffset := 0x30 + fixupArrayBytes
	if firstAttrOffset%8 != 0 {
		firstAttrOffset += 8 - firstAttrOffset%8
	}
	binary.LittleEndian.PutUint16(buf[0x06:], uint16(sectorCount+1))
	binary.LittleEndian.PutUint16(buf[0x10:], seq)
	binary.LittleEndian.PutUint16(buf[0x14:], uint16(firstAttrOffset))
	binary.LittleEndian.PutUint16(buf[0x16:], flags)
	binary.LittleEndian.PutUint32(buf[0x18:], uint32(firstAttrOffset+4))
	binary.LittleEndian.PutUint32(buf[0x1C:], uint32(recordSize))
	binary.LittleEndian.PutUint32(buf[0x2C:], uint32(recordNumber))
	copy(buf[firstAttrOffset:], []byte{0xFF, 0xFF, 0xFF, 0xFF})

	const usn = 0xBEEF
	binary.LittleEndian.PutUint16(buf[0x30:], usn)
	for i := 1; i <= sectorCount; i++ {
		original := buf[i*sectorSize-2 : i*sectorSize]
		binary.LittleEndian.PutUint16(buf[0x30+i*2:], binary.LittleEndian.Uint16(original))
		binary.LittleEndian.PutUint16(buf[i*sectorSize-2:], usn)
	}

	return buf
}

func TestRunProcessesSequentialRecords(t *testing.T) {
	var image bytes.Buffer
	image.Write(buildMinimalRecord(t, 0, 1, 1, 1024))
	image.Write(buildMinimalRecord(t, 1, 1, 1, 1024))
	image.Write(buildMinimalRecord(t, 2, 1, 0, 1024))

	result, err := driver.Run(context.Background(), &image, driver.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1024, result.RecordSize)
	assert.Equal(t, 3, result.Totals.Processed)
	assert.Equal(t, 2, result.Totals.Active)
	assert.Len(t, result.Records, 3)
	assert.Equal(t, uint64(0), result.Records[0].Number)
	assert.Equal(t, uint64(2), result.Records[2].Number)
}

func TestRunInfers4096ByteRecords(t *testing.T) {
	var image bytes.Buffer
	image.Write(buildMinimalRecord(t, 0, 1, 1, 4096))
	image.Write(buildMinimalRecord(t, 1, 1, 1, 4096))

	result, err := driver.Run(context.Background(), &image, driver.Options{})
	require.NoError(t, err)
	assert.Equal(t, 4096, result.RecordSize)
	assert.Equal(t, 2, result.Totals.Processed)
}

func TestRunFatalOnBadFirstSignature(t *testing.T) {
	buf := buildMinimalRecord(t, 0, 1, 1, 1024)
	copy(buf[0:4], []byte("ZZZZ"))

	_, err := driver.Run(context.Background(), bytes.NewReader(buf), driver.Options{})
	assert.Error(t, err)
}

func TestRunToleratesSmallTruncationAtEOF(t *testing.T) {
	full := buildMinimalRecord(t, 0, 1, 1, 1024)
	// Drop fewer than 1% of one record's bytes (1024 * 0.01 = 10.24) from the very end.
	short := full[:len(full)-5]

	result, err := driver.Run(context.Background(), bytes.NewReader(short), driver.Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Totals.Processed)
	assert.Empty(t, result.Errors)
}

func TestRunFlagsLargeTruncationAtEOF(t *testing.T) {
	first := buildMinimalRecord(t, 0, 1, 1, 1024)
	second := buildMinimalRecord(t, 1, 1, 1, 1024)
	short := append(first, second[:500]...)

	result, err := driver.Run(context.Background(), bytes.NewReader(short), driver.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Totals.Processed)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "Truncated", result.Errors[0].Kind.String())
}

func TestRunHonorsCancellation(t *testing.T) {
	var image bytes.Buffer
	for i := uint64(0); i < 5; i++ {
		image.Write(buildMinimalRecord(t, i, 1, 1, 1024))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := driver.Run(ctx, &image, driver.Options{})
	require.NoError(t, err)
	assert.True(t, result.Cancelled)
}
