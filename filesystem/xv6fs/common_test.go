package xv6fs

import (
	"encoding/binary"
	"testing"

	"github.com/plipka7/FileChecker/backend"
	"github.com/plipka7/FileChecker/util/bitmap"
)

// test image geometry: 64 blocks, 32 inodes.
// inode table occupies blocks 2..5, the single bitmap block is block 7,
// so data blocks are 8..63.
const (
	testImageBlocks uint32 = 64
	testImageInodes uint32 = 32
	testDataStart   uint32 = 8
	testDataEnd     uint32 = 63
)

// imageBuilder assembles a raw xv6 image in memory. The zero image holds a
// valid superblock and a root directory with its "." and ".." entries, and
// nothing else.
type imageBuilder struct {
	t            *testing.T
	buf          []byte
	nextRootSlot int
}

func newImageBuilder(t *testing.T) *imageBuilder {
	t.Helper()
	buf := make([]byte, int(testImageBlocks)*BlockSize)
	binary.LittleEndian.PutUint32(buf[superblockBlock*BlockSize:], testImageBlocks)
	binary.LittleEndian.PutUint32(buf[superblockBlock*BlockSize+4:], testImageBlocks-testDataStart)
	binary.LittleEndian.PutUint32(buf[superblockBlock*BlockSize+8:], testImageInodes)

	ib := &imageBuilder{t: t, buf: buf, nextRootSlot: 2}
	ib.setInode(RootInode, dinode{itype: typeDir, nlink: 1, size: 2 * direntSize, addrs: testAddrs(testDataStart)})
	ib.setDirent(testDataStart, 0, uint16(RootInode), ".")
	ib.setDirent(testDataStart, 1, uint16(RootInode), "..")
	ib.allocBlock(testDataStart)
	return ib
}

// testAddrs builds an inode address array from the leading direct addresses.
func testAddrs(direct ...uint32) [NDirect + 1]uint32 {
	var addrs [NDirect + 1]uint32
	copy(addrs[:], direct)
	return addrs
}

func (ib *imageBuilder) setInode(inum uint32, in dinode) {
	ib.t.Helper()
	off := inodeStartBlock*BlockSize + int(inum)*inodeSize
	binary.LittleEndian.PutUint16(ib.buf[off:], uint16(in.itype))
	binary.LittleEndian.PutUint16(ib.buf[off+2:], uint16(in.major))
	binary.LittleEndian.PutUint16(ib.buf[off+4:], uint16(in.minor))
	binary.LittleEndian.PutUint16(ib.buf[off+6:], uint16(in.nlink))
	binary.LittleEndian.PutUint32(ib.buf[off+8:], in.size)
	for i, a := range in.addrs {
		binary.LittleEndian.PutUint32(ib.buf[off+12+i*4:], a)
	}
}

func (ib *imageBuilder) setDirent(block uint32, slot int, inum uint16, name string) {
	ib.t.Helper()
	if len(name) > DirNameLen {
		ib.t.Fatalf("dirent name %q longer than %d", name, DirNameLen)
	}
	off := int(block)*BlockSize + slot*direntSize
	binary.LittleEndian.PutUint16(ib.buf[off:], inum)
	nameBytes := make([]byte, DirNameLen)
	copy(nameBytes, name)
	copy(ib.buf[off+2:], nameBytes)
}

// addRootEntry appends a directory entry to the root directory's first block.
func (ib *imageBuilder) addRootEntry(name string, inum uint16) {
	ib.t.Helper()
	if ib.nextRootSlot >= direntsPerBlock {
		ib.t.Fatalf("root directory block full")
	}
	ib.setDirent(testDataStart, ib.nextRootSlot, inum, name)
	ib.nextRootSlot++
	rootSize := uint32(ib.nextRootSlot * direntSize)
	binary.LittleEndian.PutUint32(ib.buf[inodeStartBlock*BlockSize+int(RootInode)*inodeSize+8:], rootSize)
}

// setIndirectEntry writes one address slot of an indirect block.
func (ib *imageBuilder) setIndirectEntry(block uint32, slot int, addr uint32) {
	ib.t.Helper()
	off := int(block)*BlockSize + slot*4
	binary.LittleEndian.PutUint32(ib.buf[off:], addr)
}

func (ib *imageBuilder) bitmapRange(block uint32) (start, end int) {
	bmBlock := block/bitsPerBlock + testImageInodes/inodesPerBlock + 3
	return int(bmBlock) * BlockSize, int(bmBlock+1) * BlockSize
}

// allocBlock sets the allocation-bitmap bit for a block.
func (ib *imageBuilder) allocBlock(block uint32) {
	ib.t.Helper()
	start, end := ib.bitmapRange(block)
	bm := bitmap.FromBytes(ib.buf[start:end])
	if err := bm.Set(int(block % bitsPerBlock)); err != nil {
		ib.t.Fatal(err)
	}
	copy(ib.buf[start:end], bm.ToBytes())
}

// freeBlock clears the allocation-bitmap bit for a block.
func (ib *imageBuilder) freeBlock(block uint32) {
	ib.t.Helper()
	start, end := ib.bitmapRange(block)
	bm := bitmap.FromBytes(ib.buf[start:end])
	if err := bm.Clear(int(block % bitsPerBlock)); err != nil {
		ib.t.Fatal(err)
	}
	copy(ib.buf[start:end], bm.ToBytes())
}

// addFile creates a regular-file inode with the given data blocks, links it
// from the root directory, and marks its blocks allocated.
func (ib *imageBuilder) addFile(inum uint16, name string, blocks ...uint32) {
	ib.t.Helper()
	in := dinode{itype: typeFile, nlink: 1, size: uint32(len(blocks) * BlockSize)}
	copy(in.addrs[:], blocks)
	ib.setInode(uint32(inum), in)
	ib.addRootEntry(name, inum)
	for _, b := range blocks {
		ib.allocBlock(b)
	}
}

// addDir creates an empty subdirectory with its "./.." entries in the given
// block and links it from the root directory.
func (ib *imageBuilder) addDir(inum uint16, name string, block uint32) {
	ib.t.Helper()
	ib.setInode(uint32(inum), dinode{itype: typeDir, nlink: 1, size: 2 * direntSize, addrs: testAddrs(block)})
	ib.setDirent(block, 0, inum, ".")
	ib.setDirent(block, 1, uint16(RootInode), "..")
	ib.allocBlock(block)
	ib.addRootEntry(name, inum)
}

// fs decodes the assembled image.
func (ib *imageBuilder) fs() *FileSystem {
	ib.t.Helper()
	fs, err := Read(backend.FromBytes("test.img", ib.buf), int64(len(ib.buf)), 0)
	if err != nil {
		ib.t.Fatalf("could not read test image: %v", err)
	}
	return fs
}

// bytes returns the raw image.
func (ib *imageBuilder) bytes() []byte {
	return ib.buf
}
