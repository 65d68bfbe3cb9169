package xv6fs

import (
	"encoding/binary"
	"fmt"
)

// superblock is the decoded xv6 superblock from block 1 of the image.
// It carries the total block count, the data-block count and the inode
// count; every region extent is derived from those three.
type superblock struct {
	size    uint32 // total blocks in the image
	nblocks uint32 // data blocks
	ninodes uint32 // inode slots
}

// Superblock is the public view of the decoded geometry.
type Superblock struct {
	Size      uint32
	NBlocks   uint32
	NInodes   uint32
	DataStart uint32
	DataEnd   uint32
}

// superblockFromBytes decodes the superblock from a raw block.
func superblockFromBytes(b []byte) (*superblock, error) {
	if len(b) != BlockSize {
		return nil, fmt.Errorf("superblock must be %d bytes, got %d", BlockSize, len(b))
	}
	sb := superblock{
		size:    binary.LittleEndian.Uint32(b[0:4]),
		nblocks: binary.LittleEndian.Uint32(b[4:8]),
		ninodes: binary.LittleEndian.Uint32(b[8:12]),
	}
	return &sb, nil
}

// inodeBlocks is the number of blocks the inode table occupies.
func (sb *superblock) inodeBlocks() uint32 {
	return (sb.ninodes + inodesPerBlock - 1) / inodesPerBlock
}

// bitmapBlock maps a block number to the block holding its allocation bit.
func (sb *superblock) bitmapBlock(b uint32) uint32 {
	return b/bitsPerBlock + sb.ninodes/inodesPerBlock + 3
}

// dataStart is the first data-block number: one block past the bitmap block
// that bitmapBlock maps block number size (one past the last block) to.
func (sb *superblock) dataStart() uint32 {
	return sb.bitmapBlock(sb.size) + 1
}

// dataEnd is the last valid data-block number.
func (sb *superblock) dataEnd() uint32 {
	return sb.size - 1
}

// validAddr reports whether a is a usable data-block address. Zero means
// "absent" and is handled by callers before this check.
func (sb *superblock) validAddr(a uint32) bool {
	return a >= sb.dataStart() && a <= sb.dataEnd()
}

func (sb *superblock) equal(a *superblock) bool {
	if (sb == nil && a != nil) || (a == nil && sb != nil) {
		return false
	}
	if sb == nil && a == nil {
		return true
	}
	return *sb == *a
}
