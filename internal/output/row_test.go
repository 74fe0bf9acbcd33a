package output_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dfir-toolkit/ntfsmft/internal/mft"
	"github.com/dfir-toolkit/ntfsmft/internal/output"
	"github.com/dfir-toolkit/ntfsmft/internal/record"
)

func TestFromRecordProjectsIdentityAndFileName(t *testing.T) {
	rec := &record.Record{
		Number:         7,
		SequenceNumber: 2,
		Flags:          mft.RecordFlagInUse,
		HasFileName:    true,
		PreferredFileName: mft.FileName{
			Name:                "report.docx",
			ParentFileReference: mft.FileReference{RecordNumber: 5, SequenceNumber: 5},
		},
		FullPath: `\report.docx`,
		Notes:    []string{"usec-zero", "size-mismatch"},
	}

	row := output.FromRecord(rec)
	assert.Equal(t, uint64(7), row.RecordNumber)
	assert.True(t, row.Active)
	assert.Equal(t, "report.docx", row.FileName)
	assert.Equal(t, uint64(5), row.ParentNumber)
	assert.Equal(t, `\report.docx`, row.FullPath)
	assert.Equal(t, "usec-zero;size-mismatch", row.Notes)
}

func TestFromRecordProjectsHashesAndObjectId(t *testing.T) {
	rec := &record.Record{
		Number: 8,
		Hashes: record.Hashes{MD5: "abc", SHA256: "def", Computed: true},
	}

	row := output.FromRecord(rec)
	assert.Equal(t, "abc", row.MD5)
	assert.Equal(t, "def", row.SHA256)
	assert.Empty(t, row.ObjectId)
}
