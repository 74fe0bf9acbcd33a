// Package fragment reads byte ranges ("fragments") that may be scattered around a volume image, in
// order, presenting them as a single contiguous io.Reader. It exists for the extract subcommand, which
// uses it to pull the $MFT's own $DATA out of a volume image once its data-runs have been decoded by
// mft.ParseDataRuns and converted with mft.DataRunsToFragments.
package fragment

import (
	"fmt"
	"io"
)

// Fragment is an absolute byte Offset and Length within a volume image.
type Fragment struct {
	Offset int64
	Length int64
}

// Reader reads Fragments in order, seeking to each one's Offset as the previous is exhausted. When the
// last fragment is exhausted, subsequent reads return io.EOF.
type Reader struct {
	src       io.ReadSeeker
	fragments []Fragment
	idx       int
	remaining int64
}

// NewReader creates a Reader over src using fragments, which need not be sequential (src must support
// seeking backwards).
func NewReader(src io.ReadSeeker, fragments []Fragment) *Reader {
	return &Reader{src: src, fragments: fragments, idx: -1}
}

func (r *Reader) Read(p []byte) (int, error) {
	if r.idx >= len(r.fragments) {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	if r.remaining == 0 {
		r.idx++
		if r.idx >= len(r.fragments) {
			return 0, io.EOF
		}
		next := r.fragments[r.idx]
		r.remaining = next.Length
		seeked, err := r.src.Seek(next.Offset, io.SeekStart)
		if err != nil {
			return 0, fmt.Errorf("fragment: unable to seek to %d: %w", next.Offset, err)
		}
		if seeked != next.Offset {
			return 0, fmt.Errorf("fragment: wanted to seek to %d but reached %d", next.Offset, seeked)
		}
	}

	target := p
	if int64(len(p)) > r.remaining {
		target = p[:r.remaining]
	}
	n, err := io.ReadFull(r.src, target)
	r.remaining -= int64(n)
	return n, err
}
