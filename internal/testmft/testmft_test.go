package testmft_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfir-toolkit/ntfsmft/internal/mft"
	"github.com/dfir-toolkit/ntfsmft/internal/record"
	"github.com/dfir-toolkit/ntfsmft/internal/testmft"
)

func TestBuildActiveFileWithName(t *testing.T) {
	buf := testmft.Builder{
		Number:              10,
		Sequence:            2,
		Flags:               1, // in-use
		StandardInformation: true,
		FileNames: []testmft.FileNameEntry{
			{Parent: 5, ParentSequence: 5, Name: "note.txt", Namespace: mft.FileNameNamespaceWin32},
		},
	}.Build()

	rec, err := record.Assemble(buf, record.Options{})
	require.NoError(t, err)
	assert.Empty(t, rec.Errors)
	assert.Equal(t, uint64(10), rec.Number)
	assert.True(t, rec.Active())
	assert.Equal(t, "note.txt", rec.PreferredFileName.Name)
}

func TestBuildResidentData(t *testing.T) {
	buf := testmft.Builder{
		Number:       11,
		Sequence:     1,
		Flags:        1,
		ResidentData: []byte("hello world"),
	}.Build()

	rec, err := record.Assemble(buf, record.Options{ResidentDataCap: 64})
	require.NoError(t, err)
	assert.True(t, rec.UnnamedDataResident)
	assert.Equal(t, []byte("hello world"), rec.UnnamedDataResidentContent)
}

func TestBuildNonResidentDataRuns(t *testing.T) {
	buf := testmft.Builder{
		Number:   12,
		Sequence: 1,
		Flags:    1,
		DataRuns: []mft.DataRun{
			{OffsetCluster: 100, LengthInClusters: 4},
			{OffsetCluster: 150, LengthInClusters: 2},
		},
		DataRealSize: 24576,
	}.Build()

	rec, err := record.Assemble(buf, record.Options{})
	require.NoError(t, err)
	assert.Empty(t, rec.Errors)
	require.Len(t, rec.UnnamedDataRuns, 2)
	assert.Equal(t, int64(100), rec.UnnamedDataRuns[0].OffsetCluster)
	assert.Equal(t, int64(150), rec.UnnamedDataRuns[1].OffsetCluster)
}

func TestBuildBadSignature(t *testing.T) {
	buf := testmft.Builder{Number: 13, Sequence: 1}.WithBadSignature().Build()

	rec, err := record.Assemble(buf, record.Options{})
	require.NoError(t, err)
	require.NotEmpty(t, rec.Errors)
}

func TestChainProducesConcatenatedRecords(t *testing.T) {
	image := testmft.Chain(
		testmft.Builder{Number: 0, Sequence: 1, Flags: 1},
		testmft.Builder{Number: 1, Sequence: 1, Flags: 1},
	)
	assert.Len(t, image, 2*testmft.RecordSize)
}
