// Package anomaly implements the cross-attribute forensic checks of spec §4.K: a handful of
// predicates that flag suspicious combinations of already-decoded record fields (a shifted
// timestamp, an inconsistent flag pair, a size mismatch) without deciding anything about the
// record's validity themselves — each check only ever appends a note.
package anomaly

import (
	"fmt"

	"github.com/dfir-toolkit/ntfsmft/internal/record"
)

// clusterSize is the size-mismatch check's tolerance unit. The core doesn't track the volume's
// actual cluster size past data-run decoding, so this uses the common default; a size discrepancy
// smaller than one cluster is ordinary slack between $FILE_NAME's cached real-size and $DATA's own,
// not an anomaly.
const clusterSize = 4096

// Check names, used verbatim in a record's notes.
const (
	StdFnShift          = "std-fn-shift"
	UsecZero            = "usec-zero"
	FlagsInconsistent   = "flags-inconsistent"
	SizeMismatch        = "size-mismatch"
	TruncatedAttributes = "truncated-attributes"
)

// Run applies every check in spec §4.K to rec, appending a note for each one that fires.
// activeDirectories reports whether a given record number is both active and a directory, needed by
// the flags-inconsistent check's cross-record half; pass a nil func (or one that always returns
// false) when that context isn't available yet (the check's record-local half still runs).
func Run(rec *record.Record, activeDirectories func(recordNumber uint64) bool) {
	checkStdFnShift(rec)
	checkUsecZero(rec)
	checkFlagsInconsistent(rec, activeDirectories)
	checkSizeMismatch(rec)
	checkTruncatedAttributes(rec)
}

func checkStdFnShift(rec *record.Record) {
	if rec.StandardInformation == nil || !rec.HasFileName {
		return
	}
	std := rec.StandardInformation.Creation
	fn := rec.PreferredFileName.Creation
	if std.Zero || std.Corrupt || fn.Zero || fn.Corrupt {
		return
	}
	if fn.Time.After(std.Time) {
		rec.Notes = append(rec.Notes, StdFnShift)
	}
}

func checkUsecZero(rec *record.Record) {
	if rec.StandardInformation == nil {
		return
	}
	if rec.StandardInformation.Creation.MicrosecondIsZero() {
		rec.Notes = append(rec.Notes, UsecZero)
	}
}

func checkFlagsInconsistent(rec *record.Record, activeDirectories func(recordNumber uint64) bool) {
	if !rec.Active() && rec.HasFileName && activeDirectories != nil {
		if activeDirectories(rec.PreferredFileName.ParentFileReference.RecordNumber) {
			rec.Notes = append(rec.Notes, FlagsInconsistent)
			return
		}
	}
	if rec.IsDirectory() && rec.IndexRoot == nil {
		rec.Notes = append(rec.Notes, FlagsInconsistent)
	}
}

func checkSizeMismatch(rec *record.Record) {
	if !rec.HasFileName {
		return
	}
	var dataRealSize uint64
	var haveData bool
	if rec.UnnamedDataResident {
		dataRealSize = rec.UnnamedDataRealSize
		haveData = true
	} else if len(rec.UnnamedDataRuns) > 0 {
		dataRealSize = rec.UnnamedDataRealSize
		haveData = true
	}
	if !haveData {
		return
	}
	diff := int64(rec.PreferredFileName.RealSize) - int64(dataRealSize)
	if diff < 0 {
		diff = -diff
	}
	if diff > clusterSize {
		rec.Notes = append(rec.Notes, fmt.Sprintf("%s (fn=%d data=%d)", SizeMismatch, rec.PreferredFileName.RealSize, dataRealSize))
	}
}

func checkTruncatedAttributes(rec *record.Record) {
	for _, e := range rec.Errors {
		if e.Kind.String() == "Truncated" {
			rec.Notes = append(rec.Notes, TruncatedAttributes)
			return
		}
	}
}
