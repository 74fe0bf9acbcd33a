package tsk_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfir-toolkit/ntfsmft/internal/output"
	"github.com/dfir-toolkit/ntfsmft/internal/output/tsk"
)

func TestWriteEmitsOneLinePerPopulatedTimestamp(t *testing.T) {
	rows := []output.Row{{
		RecordNumber: 3, FullPath: `\a.txt`,
		STDCreationUnix: 100, STDAccessUnix: 200,
	}}

	var buf bytes.Buffer
	require.NoError(t, tsk.Write(&buf, rows))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "STD_CREATION")
	assert.Contains(t, lines[0], "100|STD_CREATION|3-0|0|\\a.txt")
	assert.Contains(t, lines[1], "STD_ACCESS")
}

func TestWriteSkipsZeroTimestamps(t *testing.T) {
	rows := []output.Row{{RecordNumber: 1}}

	var buf bytes.Buffer
	require.NoError(t, tsk.Write(&buf, rows))
	assert.Empty(t, buf.String())
}
