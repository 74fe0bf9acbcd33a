package mft

import (
	"fmt"

	"github.com/dfir-toolkit/ntfsmft/internal/binutil"
	"github.com/dfir-toolkit/ntfsmft/internal/fragment"
)

// DataRun is one entry of a non-resident attribute's compressed VCN->LCN mapping. OffsetCluster is
// the *cumulative*, absolute LCN this run starts at (already resolved relative to the previous run -
// see ParseDataRuns); Sparse reports whether this run has no backing LCN at all (a hole).
type DataRun struct {
	OffsetCluster    int64
	LengthInClusters uint64
	Sparse           bool
}

// ParseDataRuns decodes a data-run list. Each run begins with a header byte whose low nibble is the
// byte width of the length field and whose high nibble is the byte width of the (signed,
// two's-complement) offset field; a header byte of 0x00 ends the list. The offset field is a delta
// from the previous run's LCN (the first run's is absolute, i.e. relative to LCN 0); a run with a
// zero-width offset field is sparse.
func ParseDataRuns(b []byte) ([]DataRun, error) {
	var runs []DataRun
	var currentLCN int64

	for len(b) > 0 {
		r := binutil.NewLittleEndianReader(b)
		header, err := r.Byte(0)
		if err != nil {
			return runs, err
		}
		if header == 0 {
			break
		}

		lengthWidth := int(header & 0x0F)
		offsetWidth := int(header >> 4)
		total := 1 + lengthWidth + offsetWidth
		if total > len(b) {
			return runs, fmt.Errorf("mft: data-run header declares %d bytes but only %d remain", total, len(b))
		}

		lengthBytes, err := r.Read(1, lengthWidth)
		if err != nil {
			return runs, err
		}
		length := bytesToUint64(lengthBytes)

		sparse := offsetWidth == 0
		if !sparse {
			offsetBytes, err := r.Read(1+lengthWidth, offsetWidth)
			if err != nil {
				return runs, err
			}
			padded := binutil.PadTo(offsetBytes, 8)
			delta := int64(bytesToUint64(padded))
			currentLCN += delta
		}

		runs = append(runs, DataRun{OffsetCluster: currentLCN, LengthInClusters: length, Sparse: sparse})

		next, err := r.ReadFrom(total)
		if err != nil {
			break
		}
		b = next
	}
	return runs, nil
}

func bytesToUint64(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// SumLengthClusters returns the total number of clusters covered by runs, used to validate against an
// attribute's allocated size (spec §4.F invariant).
func SumLengthClusters(runs []DataRun) uint64 {
	var total uint64
	for _, r := range runs {
		total += r.LengthInClusters
	}
	return total
}

// DataRunsToFragments converts a decoded run list (relative to cluster 0, in clusters) into absolute,
// byte-addressed fragment.Fragment values suitable for a fragment.Reader. Sparse runs are omitted
// since they have no backing bytes to read.
func DataRunsToFragments(runs []DataRun, bytesPerCluster int) []fragment.Fragment {
	frags := make([]fragment.Fragment, 0, len(runs))
	for _, run := range runs {
		if run.Sparse {
			continue
		}
		frags = append(frags, fragment.Fragment{
			Offset: run.OffsetCluster * int64(bytesPerCluster),
			Length: int64(run.LengthInClusters) * int64(bytesPerCluster),
		})
	}
	return frags
}
