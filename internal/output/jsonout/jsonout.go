// Package jsonout serializes output.Rows as a JSON array of objects with snake_case keys matching
// spec §4.J's column names, via encoding/json. No corpus repo reaches for a faster JSON encoder for a
// batch forensic report writer, so this stays on the standard library (see DESIGN.md).
package jsonout

import (
	"encoding/json"
	"io"

	"github.com/dfir-toolkit/ntfsmft/internal/output"
)

// document is the snake_case wire shape for one Row; encoding/json's struct tags do the projection so
// the field ordering here doubles as the column ordering in the emitted array.
type document struct {
	RecordNumber   uint64 `json:"record_number"`
	SequenceNumber uint16 `json:"sequence_number"`
	Active         bool   `json:"active"`
	Directory      bool   `json:"directory"`
	Deleted        bool   `json:"deleted"`
	HasADS         bool   `json:"has_ads"`

	ParentNumber   uint64 `json:"parent_number"`
	ParentSequence uint16 `json:"parent_sequence"`

	FullPath string `json:"full_path"`
	FileName string `json:"filename"`

	StdCreation     string `json:"std_creation"`
	StdModification string `json:"std_modification"`
	StdMftChange    string `json:"std_mft_change"`
	StdAccess       string `json:"std_access"`

	FnCreation     string `json:"fn_creation"`
	FnModification string `json:"fn_modification"`
	FnMftChange    string `json:"fn_mft_change"`
	FnAccess       string `json:"fn_access"`

	AllocatedSize uint64 `json:"allocated_size"`
	RealSize      uint64 `json:"real_size"`

	ObjectId      string `json:"object_id"`
	BirthVolumeId string `json:"birth_volume_id"`
	BirthObjectId string `json:"birth_object_id"`
	BirthDomainId string `json:"birth_domain_id"`

	MD5    string `json:"md5"`
	SHA256 string `json:"sha256"`
	SHA512 string `json:"sha512"`
	CRC32  string `json:"crc32"`

	Notes string `json:"notes"`
}

func toDocument(r output.Row) document {
	return document{
		RecordNumber: r.RecordNumber, SequenceNumber: r.SequenceNumber,
		Active: r.Active, Directory: r.Directory, Deleted: r.Deleted, HasADS: r.HasADS,
		ParentNumber: r.ParentNumber, ParentSequence: r.ParentSequence,
		FullPath: r.FullPath, FileName: r.FileName,
		StdCreation: r.STDCreation, StdModification: r.STDModification,
		StdMftChange: r.STDMftChange, StdAccess: r.STDAccess,
		FnCreation: r.FNCreation, FnModification: r.FNModification,
		FnMftChange: r.FNMftChange, FnAccess: r.FNAccess,
		AllocatedSize: r.AllocatedSize, RealSize: r.RealSize,
		ObjectId: r.ObjectId, BirthVolumeId: r.BirthVolumeId,
		BirthObjectId: r.BirthObjectId, BirthDomainId: r.BirthDomainId,
		MD5: r.MD5, SHA256: r.SHA256, SHA512: r.SHA512, CRC32: r.CRC32,
		Notes: r.Notes,
	}
}

// Write renders rows as a single JSON array to w, indented two spaces for operator readability.
func Write(w io.Writer, rows []output.Row) error {
	docs := make([]document, len(rows))
	for i, r := range rows {
		docs[i] = toDocument(r)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(docs)
}
