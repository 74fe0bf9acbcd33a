// Package fstime converts NTFS "Windows file-time" values (100-ns intervals since 1601-01-01 UTC) to
// time.Time, with sentinels for zero and out-of-range values as required by the timestamp-decoder
// component of the MFT format.
package fstime

import "time"

// epoch is the NTFS/Windows file-time epoch: 1601-01-01 00:00:00 UTC.
var epoch = time.Date(1601, time.January, 1, 0, 0, 0, 0, time.UTC)

// maxValidYear bounds what this package considers a plausible decoded timestamp. Ticks that decode
// past this year are treated as corrupt rather than propagated as a wildly out-of-range time.Time.
const maxValidYear = 9999

// Value is a decoded NTFS timestamp. Zero and Corrupt are mutually exclusive sentinels layered on top
// of a normal time.Time; callers must check them before using Time.
type Value struct {
	Time    time.Time
	Zero    bool // the raw 64-bit value was exactly 0
	Corrupt bool // the raw 64-bit value decoded to a time beyond maxValidYear (or overflowed)
}

// Decode converts a raw 64-bit count of 100-ns intervals since 1601-01-01 UTC into a Value. The
// result is always expressed in UTC; callers that need local time should convert at serialization
// time (see ToLocal), not here, so that the in-memory representation stays canonical.
func Decode(ticks uint64) Value {
	if ticks == 0 {
		return Value{Zero: true}
	}

	// A tick count near the top of the uint64 range would overflow time.Duration (which is a signed
	// 64-bit nanosecond count) well before it overflows the tick field itself; treat that as corrupt
	// rather than let it wrap around to a nonsensical date.
	const maxTicks = uint64(1<<63-1) / 100
	if ticks > maxTicks {
		return Value{Corrupt: true}
	}

	dur := time.Duration(ticks) * 100
	t := epoch.Add(dur)
	if t.Year() > maxValidYear {
		return Value{Corrupt: true}
	}
	return Value{Time: t}
}

// ISO8601 renders the Value as an ISO-8601 timestamp with an explicit UTC offset, or an empty string
// for the Zero and Corrupt sentinels (per spec: corrupt/zero timestamps serialize as empty, with the
// anomaly noted separately by the caller).
func (v Value) ISO8601() string {
	if v.Zero || v.Corrupt {
		return ""
	}
	return v.Time.Format("2006-01-02T15:04:05.000000Z07:00")
}

// ToLocal converts Time into loc, leaving the Zero/Corrupt sentinels untouched. This is the only
// place local-timezone conversion happens, so the in-memory form stays UTC throughout decoding.
func (v Value) ToLocal(loc *time.Location) Value {
	if v.Zero || v.Corrupt {
		return v
	}
	return Value{Time: v.Time.In(loc)}
}

// Unix returns the value as a Unix epoch-second count, used by the body-file and TSK timeline output
// formats. Zero and Corrupt sentinels return 0.
func (v Value) Unix() int64 {
	if v.Zero || v.Corrupt {
		return 0
	}
	return v.Time.Unix()
}

// MicrosecondIsZero reports whether the decoded time's microsecond component is exactly zero, used by
// the usec-zero anomaly check. Zero/Corrupt values report false since there's no real timestamp to
// inspect.
func (v Value) MicrosecondIsZero() bool {
	if v.Zero || v.Corrupt {
		return false
	}
	return v.Time.Nanosecond()/1000 == 0
}
