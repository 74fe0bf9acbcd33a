// Package bodyfile renders output.Rows in the pipe-delimited "body file" format consumed by mactime(1)
// and TSK's fls/tsk_gettimes tooling, per spec §4.J. Plain text, so this is a direct io.Writer loop in
// the teacher's style rather than a library-backed encoder.
package bodyfile

import (
	"fmt"
	"io"

	"github.com/dfir-toolkit/ntfsmft/internal/output"
)

// Write renders one body-file line per row:
//
//	MD5|name|inode|mode_as_string|uid|gid|size|atime|mtime|ctime|crtime
//
// uid/gid are always 0: the MFT carries no POSIX ownership, only an NTFS security descriptor reference.
// The four timestamp columns are read from STD (the field mactime tooling actually keys its views on);
// FN timestamps are left to the TSK timeline exporter, which carries both sets explicitly.
func Write(w io.Writer, rows []output.Row) error {
	for _, row := range rows {
		md5 := row.MD5
		if md5 == "" {
			md5 = "0"
		}
		_, err := fmt.Fprintf(w, "%s|%s|%s|%s|0|0|%d|%d|%d|%d|%d\n",
			md5,
			row.FullPath,
			row.InodeString(),
			row.ModeString(),
			row.RealSize,
			row.STDAccessUnix,
			row.STDModificationUnix,
			row.STDMftChangeUnix,
			row.STDCreationUnix,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
