// Package xmlout serializes output.Rows as a <mft><record>...</record></mft> document via encoding/xml,
// per spec §4.J. Standard library only: no corpus repo pulls in a third-party XML encoder for output this
// shallow (see DESIGN.md).
package xmlout

import (
	"encoding/xml"
	"io"

	"github.com/dfir-toolkit/ntfsmft/internal/output"
)

type document struct {
	XMLName xml.Name `xml:"mft"`
	Records []record `xml:"record"`
}

type record struct {
	RecordNumber   uint64 `xml:"record_number"`
	SequenceNumber uint16 `xml:"sequence_number"`
	Active         bool   `xml:"active"`
	Directory      bool   `xml:"directory"`
	Deleted        bool   `xml:"deleted"`
	HasADS         bool   `xml:"has_ads"`

	ParentNumber   uint64 `xml:"parent_number"`
	ParentSequence uint16 `xml:"parent_sequence"`

	FullPath string `xml:"full_path"`
	FileName string `xml:"filename"`

	StdCreation     string `xml:"std_creation"`
	StdModification string `xml:"std_modification"`
	StdMftChange    string `xml:"std_mft_change"`
	StdAccess       string `xml:"std_access"`

	FnCreation     string `xml:"fn_creation"`
	FnModification string `xml:"fn_modification"`
	FnMftChange    string `xml:"fn_mft_change"`
	FnAccess       string `xml:"fn_access"`

	AllocatedSize uint64 `xml:"allocated_size"`
	RealSize      uint64 `xml:"real_size"`

	ObjectId      string `xml:"object_id,omitempty"`
	BirthVolumeId string `xml:"birth_volume_id,omitempty"`
	BirthObjectId string `xml:"birth_object_id,omitempty"`
	BirthDomainId string `xml:"birth_domain_id,omitempty"`

	MD5    string `xml:"md5,omitempty"`
	SHA256 string `xml:"sha256,omitempty"`
	SHA512 string `xml:"sha512,omitempty"`
	CRC32  string `xml:"crc32,omitempty"`

	Notes string `xml:"notes,omitempty"`
}

func toRecord(r output.Row) record {
	return record{
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

// Write renders rows as a single <mft> document to w, preceded by the standard XML declaration.
func Write(w io.Writer, rows []output.Row) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	doc := document{Records: make([]record, len(rows))}
	for i, r := range rows {
		doc.Records[i] = toRecord(r)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
