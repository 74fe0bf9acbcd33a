package xmlout_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfir-toolkit/ntfsmft/internal/output"
	"github.com/dfir-toolkit/ntfsmft/internal/output/xmlout"
)

func TestWriteEmitsMftRecordTree(t *testing.T) {
	rows := []output.Row{{RecordNumber: 5, FileName: "a.txt"}}

	var buf bytes.Buffer
	require.NoError(t, xmlout.Write(&buf, rows))

	out := buf.String()
	assert.Contains(t, out, "<mft>")
	assert.Contains(t, out, "<record>")
	assert.Contains(t, out, "<record_number>5</record_number>")
	assert.Contains(t, out, "<filename>a.txt</filename>")
}

func TestWriteOmitsEmptyOptionalFields(t *testing.T) {
	rows := []output.Row{{RecordNumber: 1}}

	var buf bytes.Buffer
	require.NoError(t, xmlout.Write(&buf, rows))
	assert.NotContains(t, buf.String(), "<md5>")
}
