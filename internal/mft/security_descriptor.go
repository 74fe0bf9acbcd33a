package mft

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dfir-toolkit/ntfsmft/internal/binutil"
)

// SecurityDescriptor is a best-effort decode of a $SECURITY_DESCRIPTOR (0x50) attribute: the owner
// and group SIDs as canonical strings, and a short summary of the DACL/SACL rather than a full ACE
// list. A malformed descriptor sets Malformed; each part that fails to decode is left empty, while
// the parts that did decode are kept (spec §4.D).
type SecurityDescriptor struct {
	OwnerSID  string
	GroupSID  string
	DACL      string
	SACL      string
	Malformed bool
}

const minSecurityDescriptorLength = 0x14

// ParseSecurityDescriptor decodes a self-relative security descriptor header and its owner/group SIDs
// and a one-line ACL summary.
func ParseSecurityDescriptor(b []byte) SecurityDescriptor {
	if len(b) < minSecurityDescriptorLength {
		return SecurityDescriptor{Malformed: true}
	}
	r := binutil.NewLittleEndianReader(b)

	ownerOffset, err1 := r.Uint32(0x04)
	groupOffset, err2 := r.Uint32(0x08)
	saclOffset, err3 := r.Uint32(0x0C)
	daclOffset, err4 := r.Uint32(0x10)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return SecurityDescriptor{Malformed: true}
	}

	var out SecurityDescriptor
	malformed := false

	if ownerOffset != 0 {
		if sid, ok := parseSID(b, int(ownerOffset)); ok {
			out.OwnerSID = sid
		} else {
			malformed = true
		}
	}
	if groupOffset != 0 {
		if sid, ok := parseSID(b, int(groupOffset)); ok {
			out.GroupSID = sid
		} else {
			malformed = true
		}
	}
	if daclOffset != 0 {
		if summary, ok := summarizeACL(b, int(daclOffset)); ok {
			out.DACL = summary
		} else {
			malformed = true
		}
	}
	if saclOffset != 0 {
		if summary, ok := summarizeACL(b, int(saclOffset)); ok {
			out.SACL = summary
		} else {
			malformed = true
		}
	}

	out.Malformed = malformed
	return out
}

// parseSID decodes a SID structure at offset within b into its canonical "S-R-A-S1-S2-..." string
// form.
func parseSID(b []byte, offset int) (string, bool) {
	if offset < 0 || offset+8 > len(b) {
		return "", false
	}
	revision := b[offset]
	subAuthorityCount := int(b[offset+1])

	// The 6-byte identifier authority is big-endian.
	var authority uint64
	for i := 0; i < 6; i++ {
		authority = authority<<8 | uint64(b[offset+2+i])
	}

	end := offset + 8 + subAuthorityCount*4
	if end > len(b) {
		return "", false
	}
	r := binutil.NewLittleEndianReader(b)
	var parts []string
	parts = append(parts, "S", strconv.Itoa(int(revision)), strconv.FormatUint(authority, 10))
	for i := 0; i < subAuthorityCount; i++ {
		v, err := r.Uint32(offset + 8 + i*4)
		if err != nil {
			return "", false
		}
		parts = append(parts, strconv.FormatUint(uint64(v), 10))
	}
	return strings.Join(parts, "-"), true
}

// summarizeACL returns a short "<n> ACE(s)" summary for the ACL at offset within b, without decoding
// individual access-control entries (spec only asks for "a stringified DACL/SACL", not a full
// permissions model).
func summarizeACL(b []byte, offset int) (string, bool) {
	if offset < 0 || offset+8 > len(b) {
		return "", false
	}
	r := binutil.NewLittleEndianReader(b)
	aclSize, err := r.Uint16(offset + 2)
	if err != nil {
		return "", false
	}
	aceCount, err := r.Uint16(offset + 4)
	if err != nil {
		return "", false
	}
	if int(aclSize) < 8 || offset+int(aclSize) > len(b) {
		return "", false
	}
	return fmt.Sprintf("%d ACE(s)", aceCount), true
}
