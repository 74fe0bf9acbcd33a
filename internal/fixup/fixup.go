// Package fixup implements NTFS multi-sector transfer fixup: verifying and patching the last two bytes
// of every sector in a record against the record's stored update-sequence array.
package fixup

import (
	"bytes"
	"fmt"

	"github.com/dfir-toolkit/ntfsmft/internal/binutil"
)

const sectorSize = 512

// Result describes the outcome of applying fixup to a record buffer.
type Result struct {
	// Data is the patched buffer. When Mismatched is non-empty, Data still has every sector whose
	// signature matched patched; mismatching sectors are left as-is, per spec §4.C's "still emitted
	// with best-effort header fields" requirement.
	Data []byte
	// Mismatched lists the 1-based sector indices whose trailing two bytes didn't match the expected
	// update-sequence number before patching.
	Mismatched []int
}

// OK reports whether every sector's signature matched (so Data is fully trustworthy).
func (r Result) OK() bool { return len(r.Mismatched) == 0 }

// Apply reads the fixup array at fixupArrayOffset (fixupArrayCount entries, the first being the
// expected update-sequence number and the rest the original per-sector bytes), verifies each sector's
// trailing two bytes against it, and patches the sectors that match. data is modified in place and
// also returned as Result.Data.
//
// fixupArrayCount must equal (len(data)/sectorSize)+1 per spec; a mismatch here is reported as an
// error rather than folded into Result, since it means the record header itself is untrustworthy, not
// just a content sector.
func Apply(data []byte, fixupArrayOffset, fixupArrayCount int) (Result, error) {
	sectorCount := len(data) / sectorSize
	if sectorCount == 0 {
		return Result{}, fmt.Errorf("fixup: record shorter than one sector (%d bytes)", len(data))
	}
	if fixupArrayCount != sectorCount+1 {
		return Result{}, fmt.Errorf("fixup: expected fixup array count %d (sectors+1) but got %d", sectorCount+1, fixupArrayCount)
	}

	r := binutil.NewLittleEndianReader(data)
	arrayBytes, err := r.Read(fixupArrayOffset, fixupArrayCount*2)
	if err != nil {
		return Result{}, fmt.Errorf("fixup: unable to read update sequence array: %w", err)
	}
	expected := arrayBytes[:2]
	originals := arrayBytes[2:]

	var mismatched []int
	for i := 1; i <= sectorCount; i++ {
		pos := sectorSize*i - 2
		if !bytes.Equal(expected, data[pos:pos+2]) {
			mismatched = append(mismatched, i)
			continue
		}
		copy(data[pos:pos+2], originals[(i-1)*2:(i-1)*2+2])
	}

	return Result{Data: data, Mismatched: mismatched}, nil
}
