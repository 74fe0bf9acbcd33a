// Package tsk renders output.Rows in a 5-column timeline format resembling The Sleuth Kit's
// fls/tsk_gettimes output, per spec §4.J: one line per (record, timestamp) for up to eight timestamps
// (STD creation/modification/mft-change/access, then the FN equivalents). Plain text, same reasoning as
// bodyfile: no library in the corpus formats a timeline this shallow.
package tsk

import (
	"fmt"
	"io"

	"github.com/dfir-toolkit/ntfsmft/internal/output"
)

// entry pairs a Unix timestamp with the fixed event-type string spec §4.J calls for.
type entry struct {
	unix      int64
	eventType string
}

// Write emits "time|type|record-sequence|size|name" for every populated timestamp across all rows, in
// the column order time, type, inode, size, name.
func Write(w io.Writer, rows []output.Row) error {
	for _, row := range rows {
		entries := []entry{
			{row.STDCreationUnix, "STD_CREATION"},
			{row.STDModificationUnix, "STD_MODIFICATION"},
			{row.STDMftChangeUnix, "STD_MFT_CHANGE"},
			{row.STDAccessUnix, "STD_ACCESS"},
			{row.FNCreationUnix, "FN_CREATION"},
			{row.FNModificationUnix, "FN_MODIFICATION"},
			{row.FNMftChangeUnix, "FN_MFT_CHANGE"},
			{row.FNAccessUnix, "FN_ACCESS"},
		}
		for _, e := range entries {
			if e.unix == 0 {
				continue
			}
			_, err := fmt.Fprintf(w, "%d|%s|%s|%d|%s\n",
				e.unix, e.eventType, row.InodeString(), row.RealSize, row.FullPath)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
