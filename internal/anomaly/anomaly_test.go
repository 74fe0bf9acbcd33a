package anomaly_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dfir-toolkit/ntfsmft/internal/anomaly"
	"github.com/dfir-toolkit/ntfsmft/internal/errkind"
	"github.com/dfir-toolkit/ntfsmft/internal/fstime"
	"github.com/dfir-toolkit/ntfsmft/internal/mft"
	"github.com/dfir-toolkit/ntfsmft/internal/record"
)

func newValue(t time.Time) fstime.Value {
	return fstime.Value{Time: t}
}

func TestStdFnShiftAndUsecZero(t *testing.T) {
	rec := &record.Record{
		StandardInformation: &mft.StandardInformation{
			Creation: newValue(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)),
		},
		HasFileName: true,
		PreferredFileName: mft.FileName{
			Creation: newValue(time.Date(2023, 6, 15, 12, 34, 56, 123456000, time.UTC)),
		},
	}

	anomaly.Run(rec, nil)
	assert.Contains(t, rec.Notes, anomaly.StdFnShift)
	assert.Contains(t, rec.Notes, anomaly.UsecZero)
}

func TestNoShiftWhenFnOlder(t *testing.T) {
	rec := &record.Record{
		StandardInformation: &mft.StandardInformation{
			Creation: newValue(time.Date(2023, 1, 1, 0, 0, 0, 1000, time.UTC)),
		},
		HasFileName: true,
		PreferredFileName: mft.FileName{
			Creation: newValue(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)),
		},
	}

	anomaly.Run(rec, nil)
	assert.NotContains(t, rec.Notes, anomaly.StdFnShift)
	assert.NotContains(t, rec.Notes, anomaly.UsecZero)
}

func TestFlagsInconsistentDirectoryWithoutIndexRoot(t *testing.T) {
	rec := &record.Record{
		Flags: mft.RecordFlagInUse | mft.RecordFlagIsDirectory,
	}

	anomaly.Run(rec, nil)
	assert.Contains(t, rec.Notes, anomaly.FlagsInconsistent)
}

func TestFlagsInconsistentDeletedButParentActive(t *testing.T) {
	rec := &record.Record{
		Flags:       0,
		HasFileName: true,
		PreferredFileName: mft.FileName{
			ParentFileReference: mft.FileReference{RecordNumber: 5, SequenceNumber: 5},
		},
	}

	anomaly.Run(rec, func(n uint64) bool { return n == 5 })
	assert.Contains(t, rec.Notes, anomaly.FlagsInconsistent)
}

func TestSizeMismatchFlagged(t *testing.T) {
	rec := &record.Record{
		HasFileName: true,
		PreferredFileName: mft.FileName{
			RealSize: 20000,
		},
		UnnamedDataResident: true,
		UnnamedDataRealSize: 10,
	}

	anomaly.Run(rec, nil)
	found := false
	for _, n := range rec.Notes {
		if n == anomaly.SizeMismatch || len(n) > len(anomaly.SizeMismatch) && n[:len(anomaly.SizeMismatch)] == anomaly.SizeMismatch {
			found = true
		}
	}
	assert.True(t, found)
}

func TestTruncatedAttributesFlagged(t *testing.T) {
	rec := &record.Record{
		Errors: []errkind.RecordError{errkind.New(errkind.Truncated, "used size exceeds buffer")},
	}

	anomaly.Run(rec, nil)
	assert.Contains(t, rec.Notes, anomaly.TruncatedAttributes)
}
