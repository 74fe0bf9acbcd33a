package mft

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dfir-toolkit/ntfsmft/internal/binutil"
)

// ObjectId is the decoded $OBJECT_ID (0x40) payload. Only ObjectId itself is always present; the
// three "birth" fields only appear when the attribute's content is long enough, per spec §4.D.
type ObjectId struct {
	ObjectId       uuid.UUID
	HasBirthVolume bool
	BirthVolumeId  uuid.UUID
	HasBirthObject bool
	BirthObjectId  uuid.UUID
	HasBirthDomain bool
	BirthDomainId  uuid.UUID
}

const guidLength = 16

// ParseObjectId decodes a $OBJECT_ID attribute's content.
func ParseObjectId(b []byte) (ObjectId, error) {
	if len(b) < guidLength {
		return ObjectId{}, fmt.Errorf("mft: $OBJECT_ID needs at least %d bytes, got %d", guidLength, len(b))
	}
	r := binutil.NewLittleEndianReader(b)

	objIdBytes, err := r.Read(0, guidLength)
	if err != nil {
		return ObjectId{}, err
	}
	out := ObjectId{ObjectId: parseGUID(objIdBytes)}

	if len(b) >= guidLength*2 {
		v, err := r.Read(guidLength, guidLength)
		if err == nil {
			out.BirthVolumeId = parseGUID(v)
			out.HasBirthVolume = true
		}
	}
	if len(b) >= guidLength*3 {
		v, err := r.Read(guidLength*2, guidLength)
		if err == nil {
			out.BirthObjectId = parseGUID(v)
			out.HasBirthObject = true
		}
	}
	if len(b) >= guidLength*4 {
		v, err := r.Read(guidLength*3, guidLength)
		if err == nil {
			out.BirthDomainId = parseGUID(v)
			out.HasBirthDomain = true
		}
	}
	return out, nil
}

// parseGUID interprets 16 raw bytes as a standard Microsoft-style GUID: the first three fields
// (Data1 uint32, Data2 uint16, Data3 uint16) are little-endian, the last two fields (an 8-byte
// big-endian run covering Data4) are left byte-for-byte, matching the conventional GUID string
// rendering (spec §4.D: "little-endian in its first three fields and big-endian in the last two").
func parseGUID(b []byte) uuid.UUID {
	var out uuid.UUID
	out[0], out[1], out[2], out[3] = b[3], b[2], b[1], b[0]
	out[4], out[5] = b[5], b[4]
	out[6], out[7] = b[7], b[6]
	copy(out[8:], b[8:16])
	return out
}
