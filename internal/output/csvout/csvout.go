// Package csvout serializes output.Rows as RFC-4180 CSV via encoding/csv, per spec §4.J/§6 (the
// default output format, and the "excel" variant is this same writer with dates reformatted). No
// corpus repo reaches for a third-party CSV writer for a column set this shallow, so this stays on the
// standard library (see DESIGN.md).
package csvout

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/dfir-toolkit/ntfsmft/internal/output"
)

// Options configures Write.
type Options struct {
	// ExcelDates reformats every ISO-8601 timestamp column as "YYYY-MM-DD HH:MM:SS" (dropping the
	// fractional seconds and UTC offset Excel's date parser chokes on), resolving spec §9's "excel"
	// export as a CSV variant rather than a distinct format.
	ExcelDates bool
}

var header = []string{
	"record_number", "sequence_number", "active", "directory", "deleted", "has_ads",
	"parent_number", "parent_sequence", "full_path", "filename",
	"std_creation", "std_modification", "std_mft_change", "std_access",
	"fn_creation", "fn_modification", "fn_mft_change", "fn_access",
	"allocated_size", "real_size",
	"object_id", "birth_volume_id", "birth_object_id", "birth_domain_id",
	"md5", "sha256", "sha512", "crc32",
	"notes",
}

// Write renders rows as CSV to w, with the §4.J header row first.
func Write(w io.Writer, rows []output.Row, opts Options) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(record(row, opts)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func record(row output.Row, opts Options) []string {
	date := func(iso string) string { return iso }
	if opts.ExcelDates {
		date = excelDate
	}
	return []string{
		strconv.FormatUint(row.RecordNumber, 10),
		strconv.FormatUint(uint64(row.SequenceNumber), 10),
		strconv.FormatBool(row.Active),
		strconv.FormatBool(row.Directory),
		strconv.FormatBool(row.Deleted),
		strconv.FormatBool(row.HasADS),
		strconv.FormatUint(row.ParentNumber, 10),
		strconv.FormatUint(uint64(row.ParentSequence), 10),
		row.FullPath,
		row.FileName,
		date(row.STDCreation),
		date(row.STDModification),
		date(row.STDMftChange),
		date(row.STDAccess),
		date(row.FNCreation),
		date(row.FNModification),
		date(row.FNMftChange),
		date(row.FNAccess),
		strconv.FormatUint(row.AllocatedSize, 10),
		strconv.FormatUint(row.RealSize, 10),
		row.ObjectId,
		row.BirthVolumeId,
		row.BirthObjectId,
		row.BirthDomainId,
		row.MD5,
		row.SHA256,
		row.SHA512,
		row.CRC32,
		row.Notes,
	}
}

// excelDate reformats an ISO-8601 timestamp ("2006-01-02T15:04:05.000000Z07:00") into the
// space-separated, fraction-free form Excel's date parser accepts. An empty or malformed input passes
// through unchanged.
func excelDate(iso string) string {
	if len(iso) < 19 {
		return iso
	}
	return iso[:10] + " " + iso[11:19]
}
