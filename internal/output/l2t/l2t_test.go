package l2t_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfir-toolkit/ntfsmft/internal/output"
	"github.com/dfir-toolkit/ntfsmft/internal/output/l2t"
)

func TestWriteEmitsHeaderAndOneRowPerMacbLetter(t *testing.T) {
	rows := []output.Row{{
		RecordNumber: 4, FileName: "a.txt", FullPath: `\a.txt`,
		STDModificationUnix: 1577836800, // 2020-01-01T00:00:00Z
		STDAccessUnix:        1577836800,
	}}

	var buf bytes.Buffer
	require.NoError(t, l2t.Write(&buf, rows))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3) // header + M + A
	assert.Equal(t, "date,time,timezone,MACB,source,sourcetype,type,user,host,short,desc,version,filename,inode,notes,format,extra", lines[0])
	assert.Contains(t, lines[1], "01/01/2020")
	assert.Contains(t, lines[1], ",M,")
	assert.Contains(t, lines[2], ",A,")
}

func TestWriteSkipsZeroTimestamps(t *testing.T) {
	rows := []output.Row{{RecordNumber: 1}}

	var buf bytes.Buffer
	require.NoError(t, l2t.Write(&buf, rows))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 1)
}
