package mft

import (
	"fmt"

	"github.com/dfir-toolkit/ntfsmft/internal/binutil"
	"github.com/dfir-toolkit/ntfsmft/internal/fstime"
)

// FileNameNamespace is the namespace a $FILE_NAME entry was recorded under. When a file has multiple
// names (a long Win32 name plus a generated 8.3 DOS name), preference for display purposes is
// Win32AndDos > Win32 > Posix > Dos (see PreferredFileName).
type FileNameNamespace byte

const (
	FileNameNamespacePosix      FileNameNamespace = 0
	FileNameNamespaceWin32      FileNameNamespace = 1
	FileNameNamespaceDos        FileNameNamespace = 2
	FileNameNamespaceWin32AndDos FileNameNamespace = 3
)

// namespacePriority ranks namespaces for display-name selection, higher wins.
func (ns FileNameNamespace) namespacePriority() int {
	switch ns {
	case FileNameNamespaceWin32AndDos:
		return 3
	case FileNameNamespaceWin32:
		return 2
	case FileNameNamespacePosix:
		return 1
	case FileNameNamespaceDos:
		return 0
	}
	return -1
}

// FileName is the decoded $FILE_NAME (0x30) payload.
type FileName struct {
	ParentFileReference FileReference
	Creation            fstime.Value
	FileLastModified    fstime.Value
	MftLastModified     fstime.Value
	LastAccess          fstime.Value
	AllocatedSize       uint64
	RealSize            uint64
	Flags               FileAttribute
	ExtendedData        uint32
	Namespace           FileNameNamespace
	Name                string
}

// minFileNameLength is the fixed part of $FILE_NAME before the variable-length name itself.
const minFileNameLength = 0x42

// ParseFileName decodes a $FILE_NAME attribute's content.
func ParseFileName(b []byte) (FileName, error) {
	if len(b) < minFileNameLength {
		return FileName{}, fmt.Errorf("mft: $FILE_NAME needs at least %d bytes, got %d", minFileNameLength, len(b))
	}
	r := binutil.NewLittleEndianReader(b)

	parentRefBytes, err := r.Read(0x00, 8)
	if err != nil {
		return FileName{}, err
	}
	parentRef, err := ParseFileReference(parentRefBytes)
	if err != nil {
		return FileName{}, fmt.Errorf("mft: unable to parse parent file reference: %w", err)
	}

	nameLengthChars, err := r.Byte(0x40)
	if err != nil {
		return FileName{}, err
	}
	nameLengthBytes := int(nameLengthChars) * 2
	if len(b) < minFileNameLength+nameLengthBytes {
		return FileName{}, fmt.Errorf("mft: $FILE_NAME declares name length %d but only %d bytes available", nameLengthBytes, len(b)-minFileNameLength)
	}

	creation, _ := r.Uint64(0x08)
	modified, _ := r.Uint64(0x10)
	mftModified, _ := r.Uint64(0x18)
	accessed, _ := r.Uint64(0x20)
	allocSize, _ := r.Uint64(0x28)
	realSize, _ := r.Uint64(0x30)
	flags, _ := r.Uint32(0x38)
	extended, _ := r.Uint32(0x3C)
	namespace, err := r.Byte(0x41)
	if err != nil {
		return FileName{}, err
	}

	nameBytes, err := r.Read(0x42, nameLengthBytes)
	if err != nil {
		return FileName{}, err
	}
	name, err := decodeUTF16(nameBytes)
	if err != nil {
		return FileName{}, fmt.Errorf("mft: unable to decode file name: %w", err)
	}

	return FileName{
		ParentFileReference: parentRef,
		Creation:            fstime.Decode(creation),
		FileLastModified:    fstime.Decode(modified),
		MftLastModified:     fstime.Decode(mftModified),
		LastAccess:          fstime.Decode(accessed),
		AllocatedSize:       allocSize,
		RealSize:            realSize,
		Flags:               FileAttribute(flags),
		ExtendedData:        extended,
		Namespace:           FileNameNamespace(namespace),
		Name:                name,
	}, nil
}

// PreferredFileName picks the display name among several $FILE_NAME attributes on one record,
// following the namespace priority Win32+DOS > Win32 > POSIX > DOS (spec §4.D). Returns false if names
// is empty.
func PreferredFileName(names []FileName) (FileName, bool) {
	if len(names) == 0 {
		return FileName{}, false
	}
	best := names[0]
	for _, n := range names[1:] {
		if n.Namespace.namespacePriority() > best.Namespace.namespacePriority() {
			best = n
		}
	}
	return best, true
}
