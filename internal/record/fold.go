package record

import (
	"github.com/dfir-toolkit/ntfsmft/internal/errkind"
	"github.com/dfir-toolkit/ntfsmft/internal/mft"
)

// FoldExtension merges an extension record's attributes into its base record, under the same
// attribute-type buckets (spec §4.E "Extension folding"). It re-runs the same per-type dispatch the
// extension record itself already went through during Assemble, this time targeting base's fields, so
// that (for example) an attribute-list-fragmented $DATA attribute ends up attached to the record a
// caller actually looks up by record number.
func FoldExtension(base, ext *Record, opts Options) {
	if ext.BaseRecordReference.SequenceNumber != base.SequenceNumber {
		base.addError(errkind.MissingExtension,
			"extension record %d references base sequence %d but base is at sequence %d",
			ext.Number, ext.BaseRecordReference.SequenceNumber, base.SequenceNumber)
	}

	for _, attrs := range ext.Attributes {
		for _, a := range attrs {
			base.addAttribute(a)
			dispatch(base, a, opts)
		}
	}

	if name, ok := mft.PreferredFileName(base.FileNames); ok {
		base.PreferredFileName = name
		base.HasFileName = true
	}
}

// ResolveExtensions performs the second pass named in spec §4.E: every primary record decoded by
// Assemble records which extension-record numbers its $ATTRIBUTE_LIST entries pointed at
// (PendingExtensions); this walks those references, folds in whichever extensions were actually
// found among extensionsByNumber, and flags the rest as MissingExtension without aborting the base.
func ResolveExtensions(primaries map[uint64]*Record, extensionsByNumber map[uint64]*Record, opts Options) {
	for _, base := range primaries {
		seen := make(map[uint64]bool)
		for _, ref := range base.PendingExtensions {
			if ref.RecordNumber == base.Number || seen[ref.RecordNumber] {
				continue
			}
			seen[ref.RecordNumber] = true

			ext, ok := extensionsByNumber[ref.RecordNumber]
			if !ok {
				base.Incomplete = true
				base.addError(errkind.MissingExtension, "extension record %d not found", ref.RecordNumber)
				continue
			}
			FoldExtension(base, ext, opts)
		}
	}
}
