// Package hashpipeline computes MD5/SHA-256/SHA-512/CRC-32 digests over the resident $DATA content of
// assembled records (spec §4.I). Non-resident content is never hashed, since its bytes were never read
// into memory during assembly. Hashing can run on a bounded worker pool or sequentially; either way
// results are attached back to the same Record pointers the caller already holds, so the driver's
// ascending record-number ordering is preserved regardless of how many workers ran concurrently.
package hashpipeline

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash/crc32"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/dfir-toolkit/ntfsmft/internal/record"
)

// Options configures Run.
type Options struct {
	// Workers is the worker-pool size. Zero means runtime.GOMAXPROCS(0), with a fallback of 1 if that
	// ever reports a non-positive value (spec §4.I's "safe fallback of 1 when detection fails").
	Workers int
	// Sequential disables the worker pool entirely (spec §4.I / §6's --no-multiprocessing-hashes).
	Sequential bool
}

func (o Options) workers() int {
	if o.Sequential {
		return 1
	}
	if o.Workers > 0 {
		return o.Workers
	}
	if n := runtime.GOMAXPROCS(0); n > 0 {
		return n
	}
	return 1
}

// Run hashes every record in records whose unnamed $DATA is resident, distributing work across
// Options.workers() goroutines via an errgroup.Group bounded with SetLimit. Each record's Hashes field
// is populated in place; Run itself returns only once every record has either been hashed or skipped
// (records with no resident content, or with hashing already computed, are left untouched).
//
// ctx is checked between dispatches so a cancelled run stops enqueuing new work; any already-running
// hash computations still finish, matching the no-partial-output cancellation invariant the driver
// itself upholds.
func Run(ctx context.Context, records []*record.Record, opts Options) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())

	for _, rec := range records {
		rec := rec
		if !rec.UnnamedDataResident || rec.Hashes.Computed {
			continue
		}

		select {
		case <-gctx.Done():
		default:
			g.Go(func() error {
				hashRecord(rec)
				return nil
			})
		}
	}

	return g.Wait()
}

// hashRecord computes all four digests over rec's already-captured resident content and stores them.
// It never returns an error: hashing a byte slice cannot fail, so the only "failure" mode here is
// having nothing to hash, which callers already filter out before calling this.
func hashRecord(rec *record.Record) {
	content := rec.UnnamedDataResidentContent

	md5Sum := md5.Sum(content)
	sha256Sum := sha256.Sum256(content)
	sha512Sum := sha512.Sum512(content)
	crc := crc32.ChecksumIEEE(content)

	rec.Hashes = record.Hashes{
		MD5:      hex.EncodeToString(md5Sum[:]),
		SHA256:   hex.EncodeToString(sha256Sum[:]),
		SHA512:   hex.EncodeToString(sha512Sum[:]),
		CRC32:    hex.EncodeToString([]byte{byte(crc >> 24), byte(crc >> 16), byte(crc >> 8), byte(crc)}),
		Computed: true,
	}
	rec.Stage = record.StageHashed
}
