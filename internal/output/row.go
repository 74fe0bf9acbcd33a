// Package output defines the denormalized row schema shared by every serializer (spec §4.J): CSV,
// JSON, XML, body-file, TSK timeline, L2T CSV, and SQLite each project a Row into their own shape, but
// every one of them is built from the same Row derived from a fully assembled, path-resolved, optionally
// hashed internal/record.Record.
package output

import (
	"strconv"
	"strings"

	"github.com/dfir-toolkit/ntfsmft/internal/record"
)

// Row is the flat, serializer-agnostic projection of one Record, per spec §4.J's column table.
type Row struct {
	RecordNumber   uint64
	SequenceNumber uint16

	Active    bool
	Directory bool
	Deleted   bool
	HasADS    bool

	ParentNumber   uint64
	ParentSequence uint16

	FullPath string
	FileName string

	STDCreation     string
	STDModification string
	STDMftChange    string
	STDAccess       string

	FNCreation     string
	FNModification string
	FNMftChange    string
	FNAccess       string

	STDCreationUnix     int64
	STDModificationUnix int64
	STDMftChangeUnix    int64
	STDAccessUnix       int64

	FNCreationUnix     int64
	FNModificationUnix int64
	FNMftChangeUnix    int64
	FNAccessUnix       int64

	AllocatedSize uint64
	RealSize      uint64

	ObjectId      string
	BirthVolumeId string
	BirthObjectId string
	BirthDomainId string

	MD5    string
	SHA256 string
	SHA512 string
	CRC32  string

	Notes string
}

// ModeString renders a unix-style mode_as_string for the body-file format, since MFT records have no
// real Unix permission bits to report: only the directory bit and in-use state are meaningful here.
func (r Row) ModeString() string {
	kind := byte('-')
	if r.Directory {
		kind = 'd'
	}
	if r.Deleted {
		return string(kind) + "/---------"
	}
	return string(kind) + "/rwxrwxrwx"
}

// InodeString renders "record#-sequence#", the closest analogue to an inode number that mactime-style
// tooling expects.
func (r Row) InodeString() string {
	return strconv.FormatUint(r.RecordNumber, 10) + "-" + strconv.FormatUint(uint64(r.SequenceNumber), 10)
}

// FromRecord projects rec into a Row. rec is expected to have already passed through record.Assemble,
// pathresolve.Resolve, and (optionally) hashpipeline.Run and anomaly.Run, so FullPath/Hashes/Notes are
// already populated.
func FromRecord(rec *record.Record) Row {
	row := Row{
		RecordNumber:   rec.Number,
		SequenceNumber: rec.SequenceNumber,
		Active:         rec.Active(),
		Directory:      rec.IsDirectory(),
		Deleted:        rec.Deleted(),
		HasADS:         rec.HasAlternateDataStream,
		FullPath:       rec.FullPath,
		AllocatedSize:  uint64(rec.AllocatedSize),
		RealSize:       rec.UnnamedDataRealSize,
		MD5:            rec.Hashes.MD5,
		SHA256:         rec.Hashes.SHA256,
		SHA512:         rec.Hashes.SHA512,
		CRC32:          rec.Hashes.CRC32,
		Notes:          strings.Join(rec.Notes, ";"),
	}

	if rec.HasFileName {
		row.FileName = rec.PreferredFileName.Name
		row.ParentNumber = rec.PreferredFileName.ParentFileReference.RecordNumber
		row.ParentSequence = rec.PreferredFileName.ParentFileReference.SequenceNumber

		row.FNCreation = rec.PreferredFileName.Creation.ISO8601()
		row.FNModification = rec.PreferredFileName.FileLastModified.ISO8601()
		row.FNMftChange = rec.PreferredFileName.MftLastModified.ISO8601()
		row.FNAccess = rec.PreferredFileName.LastAccess.ISO8601()

		row.FNCreationUnix = rec.PreferredFileName.Creation.Unix()
		row.FNModificationUnix = rec.PreferredFileName.FileLastModified.Unix()
		row.FNMftChangeUnix = rec.PreferredFileName.MftLastModified.Unix()
		row.FNAccessUnix = rec.PreferredFileName.LastAccess.Unix()

		if row.RealSize == 0 {
			row.RealSize = rec.PreferredFileName.RealSize
		}
	}

	if rec.StandardInformation != nil {
		si := rec.StandardInformation
		row.STDCreation = si.Creation.ISO8601()
		row.STDModification = si.FileLastModified.ISO8601()
		row.STDMftChange = si.MftLastModified.ISO8601()
		row.STDAccess = si.LastAccess.ISO8601()

		row.STDCreationUnix = si.Creation.Unix()
		row.STDModificationUnix = si.FileLastModified.Unix()
		row.STDMftChangeUnix = si.MftLastModified.Unix()
		row.STDAccessUnix = si.LastAccess.Unix()
	}

	if rec.ObjectId != nil {
		row.ObjectId = rec.ObjectId.ObjectId.String()
		if rec.ObjectId.HasBirthVolume {
			row.BirthVolumeId = rec.ObjectId.BirthVolumeId.String()
		}
		if rec.ObjectId.HasBirthObject {
			row.BirthObjectId = rec.ObjectId.BirthObjectId.String()
		}
		if rec.ObjectId.HasBirthDomain {
			row.BirthDomainId = rec.ObjectId.BirthDomainId.String()
		}
	}

	return row
}
