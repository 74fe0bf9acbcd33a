// Package record assembles the attribute decodings produced by internal/mft into a single
// denormalized logical record per spec, folds extension records into their base, and tracks each
// record's progress through the decode lifecycle.
package record

import (
	"fmt"

	"github.com/dfir-toolkit/ntfsmft/internal/errkind"
	"github.com/dfir-toolkit/ntfsmft/internal/fixup"
	"github.com/dfir-toolkit/ntfsmft/internal/mft"
)

// Stage is a record's position in the RAW -> ... -> EMITTED lifecycle.
type Stage int

const (
	StageRaw Stage = iota
	StageFixupOK
	StageHeaderOK
	StageAttrsOK
	StageAssembled
	StagePathResolved
	StageHashed
	StageEmitted
)

func (s Stage) String() string {
	switch s {
	case StageRaw:
		return "RAW"
	case StageFixupOK:
		return "FIXUP_OK"
	case StageHeaderOK:
		return "HEADER_OK"
	case StageAttrsOK:
		return "ATTRS_OK"
	case StageAssembled:
		return "ASSEMBLED"
	case StagePathResolved:
		return "PATH_RESOLVED"
	case StageHashed:
		return "HASHED"
	case StageEmitted:
		return "EMITTED"
	}
	return "UNKNOWN"
}

// Hashes holds the optional digests the hash pipeline computes over a record's unnamed, resident
// $DATA content.
type Hashes struct {
	MD5      string
	SHA256   string
	SHA512   string
	CRC32    string
	Computed bool
}

// Record is the denormalized logical MFT entry described by spec §3: a record's common header
// fields, its decoded attributes bucketed by type, and the values derived from them in later
// pipeline stages (path, hashes, anomalies).
type Record struct {
	Number                uint64
	SequenceNumber        uint16
	UsedSize              uint32
	AllocatedSize         uint32
	Flags                 mft.RecordFlag
	BaseRecordReference   mft.FileReference
	NextAttributeId       int
	LogFileSequenceNumber uint64

	Attributes map[mft.AttributeType][]mft.Attribute

	StandardInformation  *mft.StandardInformation
	FileNames            []mft.FileName
	PreferredFileName    mft.FileName
	HasFileName          bool
	ObjectId             *mft.ObjectId
	SecurityDescriptor   *mft.SecurityDescriptor
	VolumeName           *mft.VolumeName
	VolumeInformation    *mft.VolumeInformation
	IndexRoot            *mft.IndexRoot
	ReparsePoint         *mft.ReparsePoint
	AttributeListEntries []mft.AttributeListEntry

	UnnamedDataResident        bool
	UnnamedDataResidentContent []byte
	UnnamedDataRuns            []mft.DataRun
	UnnamedDataRealSize        uint64
	HasAlternateDataStream     bool

	// PendingExtensions holds the base-record references named by AttributeListEntries that point
	// somewhere other than this record itself; ResolveExtensions uses these to fold in extension
	// records during the second assembly pass.
	PendingExtensions []mft.FileReference
	Incomplete        bool

	FullPath string
	Hashes   Hashes
	Notes    []string

	Stage  Stage
	Errors []errkind.RecordError
}

// Active reports whether the record's in-use bit is set.
func (r *Record) Active() bool { return r.Flags.Is(mft.RecordFlagInUse) }

// Deleted is the complement of Active: every record is decoded whether or not it is in use.
func (r *Record) Deleted() bool { return !r.Active() }

// IsDirectory reports whether this record represents a directory: either the header's directory bit
// is set, or an $INDEX_ROOT attribute is present (spec §4.E classification rule).
func (r *Record) IsDirectory() bool {
	return r.Flags.Is(mft.RecordFlagIsDirectory) || r.IndexRoot != nil
}

// IsExtension reports whether this record extends another (spec §3: nonzero base-record reference).
func (r *Record) IsExtension() bool {
	return r.BaseRecordReference.RecordNumber != 0
}

func (r *Record) addError(kind errkind.Kind, format string, args ...interface{}) {
	r.Errors = append(r.Errors, errkind.New(kind, format, args...))
}

// addAttribute buckets a successfully-parsed attribute header by type; per-type payload decoding
// happens separately in dispatch.
func (r *Record) addAttribute(a mft.Attribute) {
	if r.Attributes == nil {
		r.Attributes = make(map[mft.AttributeType][]mft.Attribute)
	}
	r.Attributes[a.Type] = append(r.Attributes[a.Type], a)
}

// Options configures Assemble.
type Options struct {
	// ResidentDataCap bounds how much of an unnamed, resident $DATA attribute's content is retained
	// in memory for the hash pipeline. Zero means no content is retained (hashing is then impossible,
	// which is fine when hashing is disabled).
	ResidentDataCap int
}

// Assemble decodes a single fixed-size MFT record buffer into a Record, per spec §4.E. It applies
// fixup, parses the common header, runs the attribute decoder, and dispatches each attribute to its
// typed payload decoder. Extension folding (step 4 of §4.E) happens later via ResolveExtensions once
// every record in the table has been assembled once.
//
// Assemble returns a non-nil error only when the buffer is too short to hold a record header or its
// signature is neither "FILE" nor "BAAD" — a record this damaged cannot be decoded at all. Every other failure is captured on the returned
// Record's Errors and the record is still returned, per spec §7's "survivable anomaly" policy.
func Assemble(raw []byte, opts Options) (*Record, error) {
	rec := &Record{Stage: StageRaw}

	if len(raw) < mft.MinRecordHeaderLength {
		return nil, fmt.Errorf("record: buffer too short for a header: %d bytes", len(raw))
	}

	header, err := mft.ParseRecordHeader(raw)
	if err != nil {
		return nil, fmt.Errorf("record: unable to parse header: %w", err)
	}

	switch {
	case mft.IsFileSignature(header.Signature):
		// normal record
	case mft.IsBadSignature(header.Signature):
		rec.addError(errkind.BadSignature, "record carries BAAD signature")
	default:
		return nil, fmt.Errorf("record: unrecognized signature %q", header.Signature)
	}

	rec.Number = header.RecordNumber
	rec.SequenceNumber = header.SequenceNumber
	rec.UsedSize = header.ActualSize
	rec.AllocatedSize = header.AllocatedSize
	rec.Flags = header.Flags
	rec.BaseRecordReference = header.BaseRecordReference
	rec.NextAttributeId = header.NextAttributeId
	rec.LogFileSequenceNumber = header.LogFileSequenceNumber
	rec.Stage = StageHeaderOK

	fixedUp := raw
	result, err := fixup.Apply(raw, header.FixupArrayOffset, header.FixupArrayCount)
	if err != nil {
		rec.addError(errkind.FixupMismatch, "%v", err)
	} else {
		fixedUp = result.Data
		if !result.OK() {
			rec.addError(errkind.FixupMismatch, "mismatched sectors: %v", result.Mismatched)
		}
	}
	rec.Stage = StageFixupOK

	usedSize := int(header.ActualSize)
	switch {
	case usedSize > len(fixedUp):
		checkTruncation(rec, usedSize, len(fixedUp))
		usedSize = len(fixedUp)
	case usedSize < 0:
		rec.addError(errkind.AttributeOverflow, "used size %d is negative", usedSize)
		usedSize = len(fixedUp)
	}
	attrOffset := header.FirstAttributeOffset
	if attrOffset < 0 || attrOffset > usedSize {
		rec.addError(errkind.AttributeOverflow, "attribute offset %d exceeds used size %d", attrOffset, usedSize)
		rec.Stage = StageAssembled
		return rec, nil
	}

	attrBytes := fixedUp[attrOffset:usedSize]
	attrs, attrErrs := mft.ParseAttributes(attrBytes)
	for _, e := range attrErrs {
		rec.addError(errkind.AttributeOverflow, "%v", e)
	}
	rec.Stage = StageAttrsOK

	for _, a := range attrs {
		rec.addAttribute(a)
		dispatch(rec, a, opts)
	}

	if name, ok := mft.PreferredFileName(rec.FileNames); ok {
		rec.PreferredFileName = name
		rec.HasFileName = true
	}

	for _, entry := range rec.AttributeListEntries {
		if entry.BaseRecordReference.RecordNumber != rec.Number {
			rec.PendingExtensions = append(rec.PendingExtensions, entry.BaseRecordReference)
		}
	}

	rec.Stage = StageAssembled
	return rec, nil
}

// checkTruncation flags the truncated-attributes anomaly in spec §4.K: the header's declared
// used-size claims more data than the physical record buffer actually holds, meaning the attribute
// chain was cut short before its last attribute could have been fully read. This must run against the
// declared size before it gets clamped down to the buffer length — after clamping, "used-size exceeds
// buffer" can never be true again.
func checkTruncation(rec *Record, declaredUsedSize, available int) {
	rec.addError(errkind.Truncated, "used size %d exceeds available record data %d", declaredUsedSize, available)
}

// dispatch decodes an attribute's payload per spec §4.D's per-type table and stores the result on
// rec. A payload decode failure is recorded as an attribute-level error but never aborts the record.
func dispatch(rec *Record, a mft.Attribute, opts Options) {
	switch a.Type {
	case mft.AttributeTypeStandardInformation:
		si, err := mft.ParseStandardInformation(a.Data)
		if err != nil {
			rec.addError(errkind.MalformedTimestamp, "$STANDARD_INFORMATION: %v", err)
			return
		}
		rec.StandardInformation = &si

	case mft.AttributeTypeAttributeList:
		entries, err := mft.ParseAttributeList(a.Data)
		if err != nil {
			rec.addError(errkind.AttributeOverflow, "$ATTRIBUTE_LIST: %v", err)
			return
		}
		rec.AttributeListEntries = append(rec.AttributeListEntries, entries...)

	case mft.AttributeTypeFileName:
		fn, err := mft.ParseFileName(a.Data)
		if err != nil {
			rec.addError(errkind.MalformedTimestamp, "$FILE_NAME: %v", err)
			return
		}
		rec.FileNames = append(rec.FileNames, fn)

	case mft.AttributeTypeObjectId:
		oid, err := mft.ParseObjectId(a.Data)
		if err != nil {
			rec.addError(errkind.AttributeOverflow, "$OBJECT_ID: %v", err)
			return
		}
		rec.ObjectId = &oid

	case mft.AttributeTypeSecurityDescriptor:
		sd := mft.ParseSecurityDescriptor(a.Data)
		rec.SecurityDescriptor = &sd
		if sd.Malformed {
			rec.addError(errkind.AttributeOverflow, "$SECURITY_DESCRIPTOR malformed")
		}

	case mft.AttributeTypeVolumeName:
		vn, err := mft.ParseVolumeName(a.Data)
		if err != nil {
			rec.addError(errkind.AttributeOverflow, "$VOLUME_NAME: %v", err)
			return
		}
		rec.VolumeName = &vn

	case mft.AttributeTypeVolumeInformation:
		vi, err := mft.ParseVolumeInformation(a.Data)
		if err != nil {
			rec.addError(errkind.AttributeOverflow, "$VOLUME_INFORMATION: %v", err)
			return
		}
		rec.VolumeInformation = &vi

	case mft.AttributeTypeData:
		dispatchData(rec, a, opts)

	case mft.AttributeTypeIndexRoot:
		ir, err := mft.ParseIndexRoot(a.Data)
		if err != nil {
			rec.addError(errkind.AttributeOverflow, "$INDEX_ROOT: %v", err)
			return
		}
		rec.IndexRoot = &ir

	case mft.AttributeTypeIndexAllocation, mft.AttributeTypeBitmap:
		// Only the type codes matter to the core (directory classification support); no payload
		// decode is needed beyond what ParseAttributes already captured.

	case mft.AttributeTypeReparsePoint:
		rp, err := mft.ParseReparsePoint(a.Data)
		if err != nil {
			rec.addError(errkind.AttributeOverflow, "$REPARSE_POINT: %v", err)
			return
		}
		rec.ReparsePoint = &rp

	default:
		rec.addError(errkind.UnknownAttributeType, "attribute type %#x (%s)", uint32(a.Type), a.Type.Name())
	}
}

func dispatchData(rec *Record, a mft.Attribute, opts Options) {
	if a.Name != "" {
		rec.HasAlternateDataStream = true
		return
	}
	// The unnamed instance is the primary stream.
	if a.Resident {
		rec.UnnamedDataResident = true
		rec.UnnamedDataRealSize = a.ActualSize
		if opts.ResidentDataCap > 0 {
			content := a.Data
			if len(content) > opts.ResidentDataCap {
				content = content[:opts.ResidentDataCap]
			}
			rec.UnnamedDataResidentContent = content
		}
		return
	}
	rec.UnnamedDataRealSize = a.ActualSize
	runs, err := mft.ParseDataRuns(a.Data)
	if err != nil {
		rec.addError(errkind.MalformedDataRun, "$DATA data-runs: %v", err)
		return
	}
	rec.UnnamedDataRuns = runs
}
