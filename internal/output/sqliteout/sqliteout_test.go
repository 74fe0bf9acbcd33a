package sqliteout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfir-toolkit/ntfsmft/internal/mft"
	"github.com/dfir-toolkit/ntfsmft/internal/output"
	"github.com/dfir-toolkit/ntfsmft/internal/output/sqliteout"
	"github.com/dfir-toolkit/ntfsmft/internal/record"
)

func TestOpenCreatesTablesAndViews(t *testing.T) {
	db, err := sqliteout.Open(":memory:")
	require.NoError(t, err)

	for _, tbl := range []string{"mft_records", "mft_attributes", "alternate_data_streams", "security_descriptors"} {
		assert.True(t, db.Migrator().HasTable(tbl), "expected table %s", tbl)
	}

	var count int64
	err = db.Raw("SELECT count(*) FROM sqlite_master WHERE type='view' AND name='timeline'").Scan(&count).Error
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestWriteRecordInsertsRowAndCompanionTables(t *testing.T) {
	db, err := sqliteout.Open(":memory:")
	require.NoError(t, err)

	rec := &record.Record{
		Number: 9, Flags: mft.RecordFlagInUse,
		Attributes: map[mft.AttributeType][]mft.Attribute{
			mft.AttributeTypeData: {{Type: mft.AttributeTypeData, Name: "stream1", Resident: true, ActualSize: 12}},
		},
		SecurityDescriptor: &mft.SecurityDescriptor{OwnerSID: "S-1-5-21"},
	}
	row := output.FromRecord(rec)

	require.NoError(t, sqliteout.WriteRecord(db, rec, row))

	var got sqliteout.MftRecord
	require.NoError(t, db.First(&got, "record_number = ?", 9).Error)
	assert.True(t, got.Active)

	var adsCount int64
	db.Model(&sqliteout.AlternateDataStream{}).Where("record_number = ?", 9).Count(&adsCount)
	assert.Equal(t, int64(1), adsCount)

	var sd sqliteout.SecurityDescriptorRow
	require.NoError(t, db.First(&sd, "record_number = ?", 9).Error)
	assert.Equal(t, "S-1-5-21", sd.OwnerSID)
}
