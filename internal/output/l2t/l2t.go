// Package l2t renders output.Rows as the 17-column log2timeline CSV schema, per spec §4.J: one line per
// (record, timestamp), MACB-coded, restricted to the columns
// date,time,timezone,MACB,source,sourcetype,type,user,host,short,desc,version,filename,inode,notes,format,extra.
package l2t

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/dfir-toolkit/ntfsmft/internal/output"
)

var header = []string{
	"date", "time", "timezone", "MACB", "source", "sourcetype", "type", "user", "host",
	"short", "desc", "version", "filename", "inode", "notes", "format", "extra",
}

// macbEntry associates one of the four STD timestamps with its MACB letter and descriptive type, per
// log2timeline's convention: M=modified, A=accessed, C=mft-changed, B=born (created).
type macbEntry struct {
	unix   int64
	letter string
	typ    string
}

// Write emits one l2t CSV row per populated STD timestamp per input row (FN timestamps are carried by
// the TSK timeline exporter instead; l2t's MACB model is one-event-per-letter and STD is the timestamp
// set mactime-derived tooling keys its views on).
func Write(w io.Writer, rows []output.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		entries := []macbEntry{
			{row.STDModificationUnix, "M", "content modification time"},
			{row.STDAccessUnix, "A", "last access time"},
			{row.STDMftChangeUnix, "C", "mft entry modification time"},
			{row.STDCreationUnix, "B", "file created"},
		}
		for _, e := range entries {
			if e.unix == 0 {
				continue
			}
			t := time.Unix(e.unix, 0).UTC()
			record := []string{
				t.Format("01/02/2006"),
				t.Format("15:04:05"),
				"UTC",
				e.letter,
				"NTFS",
				"MFT",
				e.typ,
				"-",
				"-",
				row.FileName,
				row.FullPath + " " + e.typ,
				"2",
				row.FullPath,
				row.InodeString(),
				row.Notes,
				"ntfsmft",
				"-",
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
