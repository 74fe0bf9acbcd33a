// Package pathresolve reconstructs each record's full path by walking its preferred $FILE_NAME's
// parent chain up to the NTFS root (record #5), memoizing resolved paths so no ancestor chain is
// walked more than once across the whole table.
package pathresolve

import (
	"github.com/sirupsen/logrus"

	"github.com/dfir-toolkit/ntfsmft/internal/errkind"
	"github.com/dfir-toolkit/ntfsmft/internal/record"
)

// rootRecordNumber is the fixed MFT record number of the NTFS volume root directory.
const rootRecordNumber = 5

// defaultDepthCap is the default maximum parent-chain length before a record is flagged "deep" and
// resolution stops (spec §4.H).
const defaultDepthCap = 255

// Options configures Resolve.
type Options struct {
	// Separator is the path separator used when joining path components; spec §4.H calls this out as
	// a configuration input rather than a platform-dependent constant. Defaults to `\`.
	Separator string
	// DepthCap bounds how many parent hops a single resolution will follow before giving up. Zero
	// means defaultDepthCap.
	DepthCap int
	Log      logrus.FieldLogger
}

func (o Options) separator() string {
	if o.Separator == "" {
		return `\`
	}
	return o.Separator
}

func (o Options) depthCap() int {
	if o.DepthCap <= 0 {
		return defaultDepthCap
	}
	return o.DepthCap
}

// resolver carries the state shared across one Resolve call: the record table, the path cache, and
// the active recursion stack used for cycle detection.
type resolver struct {
	records  map[uint64]*record.Record
	cache    map[uint64]string
	visiting map[uint64]int // record number -> its index in stack, for records on the active call chain
	stack    []uint64
	opts     Options
}

// Resolve computes FullPath for every record in records (keyed by record number), per spec §4.H: stop
// at the root, detect cycles along the active recursion stack, flag orphans (missing or
// sequence-mismatched parent, or a deleted record whose parent is also deleted), cap depth, and cache each record's resolved path so a shared ancestor
// prefix is computed once no matter how many descendants reference it.
func Resolve(records map[uint64]*record.Record, opts Options) {
	r := &resolver{
		records:  records,
		cache:    make(map[uint64]string, len(records)),
		visiting: make(map[uint64]int),
		opts:     opts,
	}
	for number, rec := range records {
		rec.FullPath = r.resolve(number)
		rec.Stage = record.StagePathResolved
	}
}

func (r *resolver) resolve(number uint64) string {
	if p, ok := r.cache[number]; ok {
		return p
	}

	sep := r.opts.separator()

	rec, ok := r.records[number]
	if !ok {
		return sep + "<orphan>"
	}

	if number == rootRecordNumber {
		r.cache[number] = sep
		return sep
	}

	if !rec.HasFileName {
		p := sep + "<orphan>"
		rec.Notes = append(rec.Notes, "OrphanRecord")
		rec.Errors = append(rec.Errors, errkind.New(errkind.OrphanRecord, "no $FILE_NAME attribute to resolve a parent from"))
		r.cache[number] = p
		return p
	}

	if idx, inProgress := r.visiting[number]; inProgress {
		for _, member := range r.stack[idx:] {
			memberRec := r.records[member]
			memberRec.Notes = append(memberRec.Notes, "CycleInPath")
			memberRec.Errors = append(memberRec.Errors, errkind.New(errkind.CycleInPath, "cycle detected in parent chain"))
		}
		p := sep + "<cycle>" + sep + rec.PreferredFileName.Name
		r.cache[number] = p
		return p
	}

	parent := rec.PreferredFileName.ParentFileReference
	parentRec, ok := r.records[parent.RecordNumber]
	if !ok || parentRec.SequenceNumber != parent.SequenceNumber || (rec.Deleted() && parentRec.Deleted()) {
		p := sep + "<orphan>" + sep + rec.PreferredFileName.Name
		rec.Notes = append(rec.Notes, "OrphanRecord")
		rec.Errors = append(rec.Errors, errkind.New(errkind.OrphanRecord, "parent record %d missing, sequence mismatch, or no longer in use", parent.RecordNumber))
		r.cache[number] = p
		return p
	}

	r.visiting[number] = len(r.stack)
	r.stack = append(r.stack, number)
	defer func() {
		delete(r.visiting, number)
		r.stack = r.stack[:len(r.stack)-1]
	}()

	if len(r.stack) > r.opts.depthCap() {
		p := sep + rec.PreferredFileName.Name
		rec.Notes = append(rec.Notes, "deep-path")
		r.cache[number] = p
		return p
	}

	parentPath := r.resolve(parent.RecordNumber)
	var path string
	if parentPath == sep {
		path = sep + rec.PreferredFileName.Name
	} else {
		path = parentPath + sep + rec.PreferredFileName.Name
	}

	r.cache[number] = path
	return path
}
