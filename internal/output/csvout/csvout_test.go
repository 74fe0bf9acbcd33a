package csvout_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfir-toolkit/ntfsmft/internal/output"
	"github.com/dfir-toolkit/ntfsmft/internal/output/csvout"
)

func TestWriteEmitsHeaderAndRow(t *testing.T) {
	rows := []output.Row{{RecordNumber: 5, FileName: "a.txt", STDCreation: "2020-01-01T00:00:00.000000Z00:00"}}

	var buf bytes.Buffer
	require.NoError(t, csvout.Write(&buf, rows, csvout.Options{}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "record_number")
	assert.Contains(t, lines[1], "a.txt")
	assert.Contains(t, lines[1], "2020-01-01T00:00:00.000000Z00:00")
}

func TestWriteExcelDatesReformatsTimestamp(t *testing.T) {
	rows := []output.Row{{RecordNumber: 1, STDCreation: "2020-01-01T12:30:45.123456Z00:00"}}

	var buf bytes.Buffer
	require.NoError(t, csvout.Write(&buf, rows, csvout.Options{ExcelDates: true}))

	assert.Contains(t, buf.String(), "2020-01-01 12:30:45")
	assert.NotContains(t, buf.String(), "2020-01-01T")
}

func TestWriteQuotesFieldsWithCommas(t *testing.T) {
	rows := []output.Row{{RecordNumber: 1, FullPath: `\dir, with comma\file.txt`}}

	var buf bytes.Buffer
	require.NoError(t, csvout.Write(&buf, rows, csvout.Options{}))
	assert.Contains(t, buf.String(), `"\dir, with comma\file.txt"`)
}
