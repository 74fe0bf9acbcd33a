// Package driver implements the streaming MFT read loop (spec §4.G): it infers the record size from
// the first record, reads the image one record-sized slice (or chunk of them) at a time, hands each
// slice to internal/record for assembly, and keeps running totals while tolerating per-record errors
// without aborting the run. Everything here is synchronous and driven by a context.Context checked
// between records, per spec §9's explicit rejection of the original's async I/O.
package driver

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/dfir-toolkit/ntfsmft/internal/errkind"
	"github.com/dfir-toolkit/ntfsmft/internal/mft"
	"github.com/dfir-toolkit/ntfsmft/internal/record"
)

// defaultRecordSize is used when the first record's allocated-size field can't be trusted (zero or
// absurd); 1024 bytes is by far the most common NTFS MFT record size.
const defaultRecordSize = 1024

// alternateRecordSize is the other record size real-world NTFS volumes use (large sector/cluster
// volumes format with 4096-byte records); spec §4.G asks the driver to tolerate it.
const alternateRecordSize = 4096

// truncationTolerance is the fraction of one record's size that a short final read is allowed to be
// missing before it's flagged as truncation rather than silently ignored (spec §4.G: "<1% of record
// size").
const truncationTolerance = 0.01

// Totals accumulates the running counters spec §7's summary reports.
type Totals struct {
	Processed  int
	Active     int
	Directory  int
	WithErrors int
}

// RecordError is the {record#, kind, message} triple spec §4.G asks the driver to capture per failed
// record, alongside the Totals.WithErrors counter.
type RecordError struct {
	RecordNumber uint64
	Kind         errkind.Kind
	Message      string
}

// Options configures Run.
type Options struct {
	// ChunkSize is how many records are read into memory per batch. Spec §6 exposes this as
	// --chunk-size; zero means 1 (read and process one record at a time).
	ChunkSize int
	// RecordSize overrides size inference when nonzero; tests and callers that already know the
	// geometry (e.g. from a boot sector) can skip inference entirely.
	RecordSize int
	// ResidentDataCap is forwarded to record.Assemble; see record.Options.
	ResidentDataCap int
	Log             logrus.FieldLogger
}

func (o Options) chunkSize() int {
	if o.ChunkSize <= 0 {
		return 1
	}
	return o.ChunkSize
}

func (o Options) log() logrus.FieldLogger {
	if o.Log == nil {
		return logrus.StandardLogger()
	}
	return o.Log
}

// Result is everything Run produces: every assembled record keyed by number (so pathresolve and
// hashpipeline can random-access them), in MFT order, plus the running totals and per-record error
// log, and whether the run ended because ctx was cancelled.
type Result struct {
	Records    []*record.Record
	ByNumber   map[uint64]*record.Record
	Totals     Totals
	Errors     []RecordError
	RecordSize int
	Cancelled  bool
}

// Run streams records out of r (normally an *os.File positioned at the start of the MFT) until EOF or
// cancellation. Record size is inferred by peeking at the first record's header (its allocated-size
// field) before deciding how large every subsequent read should be, unless opts.RecordSize is already
// set.
//
// Run returns a non-nil error only for the two fatal conditions spec §7 names: r can't be read at all,
// or the very first record fails the signature check outright (record.Assemble's own error return).
// Every other per-record failure is captured in Result.Errors and the record is still kept.
func Run(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	log := opts.log()
	result := &Result{ByNumber: make(map[uint64]*record.Record)}

	recordSize, first, err := determineRecordSize(r, opts.RecordSize)
	if err != nil {
		return nil, err
	}
	result.RecordSize = recordSize
	log.WithField("record_size", recordSize).Info("driver: determined MFT record size")

	recordNumber := uint64(0)
	pending := first

	for {
		select {
		case <-ctx.Done():
			result.Cancelled = true
			log.Info("driver: cancellation observed, stopping after last completed record")
			return result, nil
		default:
		}

		if len(pending) < recordSize {
			more := make([]byte, recordSize*opts.chunkSize())
			n, readErr := io.ReadFull(r, more)
			if readErr != nil && readErr != io.ErrUnexpectedEOF && readErr != io.EOF {
				return nil, fmt.Errorf("driver: read error after record %d: %w", recordNumber, readErr)
			}
			pending = append(pending, more[:n]...)

			if len(pending) < recordSize {
				if len(pending) > 0 {
					shortBy := recordSize - len(pending)
					if float64(shortBy)/float64(recordSize) > truncationTolerance {
						result.Errors = append(result.Errors, RecordError{
							RecordNumber: recordNumber,
							Kind:         errkind.Truncated,
							Message:      fmt.Sprintf("final read short by %d of %d bytes", shortBy, recordSize),
						})
						result.Totals.WithErrors++
					}
				}
				break
			}
		}

		raw := pending[:recordSize]
		pending = pending[recordSize:]

		if err := processRecord(result, raw, recordNumber, opts, log); err != nil {
			return nil, err
		}
		recordNumber++

		if len(pending) == 0 {
			// Try one more read to see whether the image actually continues; avoids stopping one
			// record early just because the last chunk happened to end exactly on a boundary.
			probe := make([]byte, recordSize)
			n, readErr := io.ReadFull(r, probe)
			if n == 0 {
				break
			}
			if readErr != nil && readErr != io.ErrUnexpectedEOF && readErr != io.EOF {
				return nil, fmt.Errorf("driver: read error after record %d: %w", recordNumber, readErr)
			}
			pending = probe[:n]
		}
	}

	return result, nil
}

// determineRecordSize peeks at the first record's header (which never crosses a fixup sector
// boundary, so it can be read before the record size itself is known) to learn its declared
// allocated-size, then maps that to one of the two sizes the driver tolerates. It returns the bytes
// already consumed from r so the caller doesn't re-read them.
func determineRecordSize(r io.Reader, override int) (int, []byte, error) {
	if override > 0 {
		return override, nil, nil
	}

	headerBuf := make([]byte, mft.MinRecordHeaderLength)
	if _, err := io.ReadFull(r, headerBuf); err != nil {
		return 0, nil, fmt.Errorf("driver: unable to read first record header: %w", err)
	}

	header, err := mft.ParseRecordHeader(headerBuf)
	if err != nil {
		return 0, nil, fmt.Errorf("driver: unable to parse first record header: %w", err)
	}

	size := inferRecordSize(header.AllocatedSize)
	return size, headerBuf, nil
}

// inferRecordSize maps a record's declared allocated-size to one of the two sizes the driver
// tolerates, falling back to the common default when the field itself looks implausible.
func inferRecordSize(allocatedSize uint32) int {
	if allocatedSize == alternateRecordSize {
		return alternateRecordSize
	}
	return defaultRecordSize
}

// processRecord assembles one record and folds it into result. It returns a non-nil error only when
// record #0 itself fails the signature check, per spec §7's "not an MFT at all" fatal condition; every
// later record's Assemble failure is captured as a RecordError instead.
func processRecord(result *Result, raw []byte, recordNumber uint64, opts Options, log logrus.FieldLogger) error {
	rec, err := record.Assemble(raw, record.Options{ResidentDataCap: opts.ResidentDataCap})
	if err != nil {
		if recordNumber == 0 {
			return fmt.Errorf("driver: first record failed signature check: %w", err)
		}
		result.Errors = append(result.Errors, RecordError{
			RecordNumber: recordNumber,
			Kind:         errkind.BadSignature,
			Message:      err.Error(),
		})
		// Not counted into Totals.Processed: the record never became a Record at all, so there is
		// nothing to fold into the records slice. summary.Deleted (Processed - Active) therefore
		// excludes these the same way it excludes records that were never read.
		result.Totals.WithErrors++
		return nil
	}

	result.Totals.Processed++
	if rec.Active() {
		result.Totals.Active++
	}
	if rec.IsDirectory() {
		result.Totals.Directory++
	}
	if len(rec.Errors) > 0 {
		result.Totals.WithErrors++
		for _, e := range rec.Errors {
			result.Errors = append(result.Errors, RecordError{
				RecordNumber: rec.Number,
				Kind:         e.Kind,
				Message:      e.Message,
			})
		}
	}

	result.Records = append(result.Records, rec)
	result.ByNumber[rec.Number] = rec

	if result.Totals.Processed%1000 == 0 {
		log.WithField("processed", result.Totals.Processed).Info("driver: progress")
	}
	return nil
}
