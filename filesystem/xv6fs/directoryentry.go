package xv6fs

import (
	"bytes"
	"encoding/binary"
)

// directoryEntry is a single 16-byte xv6 dirent: an inode number and a
// NUL-padded name. An entry with inum 0 is an empty slot.
type directoryEntry struct {
	inum uint16
	name string
}

func direntFromBytes(b []byte) *directoryEntry {
	name := b[2:direntSize]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return &directoryEntry{
		inum: binary.LittleEndian.Uint16(b[0:2]),
		name: string(name),
	}
}

// parseDirEntries reinterprets a directory data block as its dirent array,
// empty slots included so callers see on-disk slot positions.
func parseDirEntries(b []byte) []*directoryEntry {
	entries := make([]*directoryEntry, 0, len(b)/direntSize)
	for i := 0; i+direntSize <= len(b); i += direntSize {
		entries = append(entries, direntFromBytes(b[i:i+direntSize]))
	}
	return entries
}
