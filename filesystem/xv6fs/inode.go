package xv6fs

import (
	"encoding/binary"
	"fmt"
)

type inodeType int16

const (
	typeUnused inodeType = 0
	typeDir    inodeType = 1
	typeFile   inodeType = 2
	typeDevice inodeType = 3
)

func (t inodeType) String() string {
	switch t {
	case typeUnused:
		return "unused"
	case typeDir:
		return "dir"
	case typeFile:
		return "file"
	case typeDevice:
		return "device"
	}
	return fmt.Sprintf("invalid(%d)", int16(t))
}

// dinode is a decoded on-disk inode: a 64-byte record holding the file type,
// device numbers, link count, byte size, NDirect direct block addresses and
// one indirect block address.
type dinode struct {
	itype inodeType
	major int16
	minor int16
	nlink int16
	size  uint32
	addrs [NDirect + 1]uint32
}

// inodeFromBytes decodes a single inode record.
func inodeFromBytes(b []byte) (*dinode, error) {
	if len(b) != inodeSize {
		return nil, fmt.Errorf("inode must be %d bytes, got %d", inodeSize, len(b))
	}
	in := dinode{
		itype: inodeType(binary.LittleEndian.Uint16(b[0:2])),
		major: int16(binary.LittleEndian.Uint16(b[2:4])),
		minor: int16(binary.LittleEndian.Uint16(b[4:6])),
		nlink: int16(binary.LittleEndian.Uint16(b[6:8])),
		size:  binary.LittleEndian.Uint32(b[8:12]),
	}
	for i := range in.addrs {
		in.addrs[i] = binary.LittleEndian.Uint32(b[12+i*4 : 16+i*4])
	}
	return &in, nil
}

// addrsFromBytes reinterprets a data block as an array of block addresses,
// as stored in an indirect block.
func addrsFromBytes(b []byte) []uint32 {
	addrs := make([]uint32, len(b)/4)
	for i := range addrs {
		addrs[i] = binary.LittleEndian.Uint32(b[i*4 : i*4+4])
	}
	return addrs
}

// String renders the inode for debug listings.
func (in *dinode) String() string {
	if in.itype == typeUnused {
		return "type unused"
	}
	return fmt.Sprintf("type %s nlink %d size %d", in.itype, in.nlink, in.size)
}
