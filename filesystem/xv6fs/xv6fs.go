// Package xv6fs reads and validates xv6 filesystem images.
//
// The xv6 on-disk layout is, in block order: a boot block, the superblock,
// the inode table, the block-allocation bitmap, and the data blocks. All
// multi-byte fields are little-endian. This package decodes that layout
// read-only; the interesting entry point is (*FileSystem).Check, which
// cross-references inodes, directory entries, data-block addresses and the
// allocation bitmap, and reports the first inconsistency found.
package xv6fs

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/plipka7/FileChecker/backend"
	"github.com/plipka7/FileChecker/filesystem"
)

const (
	// BlockSize is the fixed xv6 block size in bytes
	BlockSize = 512
	// RootInode is the inode number of the root directory
	RootInode uint32 = 1
	// NDirect is the number of direct block addresses in an inode
	NDirect = 12
	// DirNameLen is the maximum length of a directory entry name
	DirNameLen = 14

	// the superblock lives in block 1, the inode table starts at block 2
	superblockBlock = 1
	inodeStartBlock = 2

	inodeSize  = 64
	direntSize = 16

	inodesPerBlock  = BlockSize / inodeSize  // 8
	addrsPerBlock   = BlockSize / 4          // 128
	direntsPerBlock = BlockSize / direntSize // 32
	bitsPerBlock    = BlockSize * 8          // 4096
)

// FileSystem implements the filesystem.FileSystem interface for xv6 images
type FileSystem struct {
	superblock *superblock
	backend    backend.Storage
	size       int64
	start      int64
}

// Read reads a filesystem from a given image.
//
// requires the backend.Storage from which to read the filesystem, size is the
// size of the filesystem in bytes, and start is how far in bytes from the
// beginning of the backend.Storage the filesystem is expected to begin.
// For a bare image file, pass the image length and start 0.
//
// Read validates the geometry only; use (*FileSystem).Check for the full
// consistency check.
func Read(b backend.Storage, size, start int64) (*FileSystem, error) {
	if size < (superblockBlock+1)*BlockSize {
		return nil, fmt.Errorf("image of size %d too small to hold a superblock", size)
	}

	fsBackend := backend.Sub(b, start, size)

	// read the superblock
	superblockBytes := make([]byte, BlockSize)
	n, err := fsBackend.ReadAt(superblockBytes, superblockBlock*BlockSize)
	if err != nil {
		return nil, fmt.Errorf("could not read superblock bytes from image: %v", err)
	}
	if n < BlockSize {
		return nil, fmt.Errorf("only could read %d superblock bytes from image", n)
	}

	sb, err := superblockFromBytes(superblockBytes)
	if err != nil {
		return nil, fmt.Errorf("could not interpret superblock data: %v", err)
	}

	if sb.size < inodeStartBlock {
		return nil, fmt.Errorf("superblock claims only %d blocks", sb.size)
	}
	// every block the superblock claims must be addressable in the image,
	// so each in-range block address decoded later is safe to read
	if int64(sb.size)*BlockSize > size {
		return nil, fmt.Errorf("superblock claims %d blocks but image holds only %d bytes", sb.size, size)
	}
	if sb.dataStart() > sb.dataEnd() {
		return nil, fmt.Errorf("superblock geometry leaves no data region: first data block %d, last %d", sb.dataStart(), sb.dataEnd())
	}

	return &FileSystem{
		superblock: sb,
		backend:    fsBackend,
		size:       size,
		start:      start,
	}, nil
}

// Type returns the type code for the filesystem. Always returns filesystem.TypeXv6
func (fs *FileSystem) Type() filesystem.Type {
	return filesystem.TypeXv6
}

// Label returns the label, if any. xv6 filesystems have no label.
func (fs *FileSystem) Label() string {
	return ""
}

// Superblock returns the decoded superblock geometry.
func (fs *FileSystem) Superblock() Superblock {
	return Superblock{
		Size:      fs.superblock.size,
		NBlocks:   fs.superblock.nblocks,
		NInodes:   fs.superblock.ninodes,
		DataStart: fs.superblock.dataStart(),
		DataEnd:   fs.superblock.dataEnd(),
	}
}

// Check cross-references the inode table, directory tree, data-block
// addresses and allocation bitmap. It returns nil for a consistent image, a
// *ConsistencyError for the first violation found, or another error when the
// image cannot be read.
func (fs *FileSystem) Check() error {
	return newChecker(fs).run()
}

// Close releases the underlying image storage.
func (fs *FileSystem) Close() error {
	return fs.backend.Close()
}

// readBlock returns the contents of block n. The block number is checked
// against the superblock geometry before touching the backend.
func (fs *FileSystem) readBlock(n uint32) ([]byte, error) {
	if n >= fs.superblock.size {
		return nil, fmt.Errorf("block %d out of range for filesystem of %d blocks", n, fs.superblock.size)
	}
	b := make([]byte, BlockSize)
	read, err := fs.backend.ReadAt(b, int64(n)*BlockSize)
	if err != nil {
		return nil, fmt.Errorf("could not read block %d: %v", n, err)
	}
	if read < BlockSize {
		return nil, fmt.Errorf("only could read %d bytes of block %d", read, n)
	}
	return b, nil
}

// readInode returns the decoded inode for the given inode number.
func (fs *FileSystem) readInode(inum uint32) (*dinode, error) {
	if inum >= fs.superblock.ninodes {
		return nil, fmt.Errorf("inode %d out of range for filesystem of %d inodes", inum, fs.superblock.ninodes)
	}
	b := make([]byte, inodeSize)
	offset := int64(inodeStartBlock)*BlockSize + int64(inum)*inodeSize
	read, err := fs.backend.ReadAt(b, offset)
	if err != nil {
		return nil, fmt.Errorf("could not read inode %d: %v", inum, err)
	}
	if read < inodeSize {
		return nil, fmt.Errorf("only could read %d bytes of inode %d", read, inum)
	}
	return inodeFromBytes(b)
}

// dataBlocks returns every block the inode owns, direct blocks first, then
// the entries of the indirect block. The indirect block itself holds
// addresses, not content, so it is not part of the returned list.
func (fs *FileSystem) dataBlocks(in *dinode) ([]uint32, error) {
	var blocks []uint32
	for i := 0; i < NDirect; i++ {
		a := in.addrs[i]
		if a == 0 {
			continue
		}
		if !fs.superblock.validAddr(a) {
			return nil, ErrBadDirectAddress
		}
		blocks = append(blocks, a)
	}
	indirect := in.addrs[NDirect]
	if indirect == 0 {
		return blocks, nil
	}
	if !fs.superblock.validAddr(indirect) {
		return nil, ErrBadIndirectAddress
	}
	entries, err := fs.readIndirect(indirect)
	if err != nil {
		return nil, err
	}
	for _, a := range entries {
		if a == 0 {
			continue
		}
		if !fs.superblock.validAddr(a) {
			return nil, ErrBadIndirectAddress
		}
		blocks = append(blocks, a)
	}
	return blocks, nil
}

// readIndirect reinterprets a data block as an array of block addresses.
func (fs *FileSystem) readIndirect(block uint32) ([]uint32, error) {
	b, err := fs.readBlock(block)
	if err != nil {
		return nil, err
	}
	return addrsFromBytes(b), nil
}

// readDirEntries returns the non-empty directory entries of a directory
// inode, in block order.
func (fs *FileSystem) readDirEntries(in *dinode) ([]*directoryEntry, error) {
	blocks, err := fs.dataBlocks(in)
	if err != nil {
		return nil, err
	}
	var entries []*directoryEntry
	for _, block := range blocks {
		b, err := fs.readBlock(block)
		if err != nil {
			return nil, err
		}
		for _, e := range parseDirEntries(b) {
			if e.inum == 0 {
				continue
			}
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// walkPath resolves a path, starting at the root directory, to an inode
// number and its decoded inode.
func (fs *FileSystem) walkPath(pathname string) (uint32, *dinode, error) {
	inum := RootInode
	in, err := fs.readInode(inum)
	if err != nil {
		return 0, nil, err
	}
	cleaned := path.Clean(strings.TrimPrefix(pathname, "/"))
	if cleaned == "." || cleaned == "" {
		return inum, in, nil
	}
	for _, part := range strings.Split(cleaned, "/") {
		if in.itype != typeDir {
			return 0, nil, fmt.Errorf("%s: not a directory", part)
		}
		entries, err := fs.readDirEntries(in)
		if err != nil {
			return 0, nil, err
		}
		var found *directoryEntry
		for _, e := range entries {
			if e.name == part {
				found = e
				break
			}
		}
		if found == nil {
			return 0, nil, fmt.Errorf("%s: %w", pathname, os.ErrNotExist)
		}
		inum = uint32(found.inum)
		in, err = fs.readInode(inum)
		if err != nil {
			return 0, nil, err
		}
	}
	return inum, in, nil
}

// ReadDir read the contents of a directory on the image. The "." and ".."
// entries are included, matching what is actually on disk.
func (fs *FileSystem) ReadDir(pathname string) ([]os.FileInfo, error) {
	_, in, err := fs.walkPath(pathname)
	if err != nil {
		return nil, err
	}
	if in.itype != typeDir {
		return nil, fmt.Errorf("%s: not a directory", pathname)
	}
	entries, err := fs.readDirEntries(in)
	if err != nil {
		return nil, err
	}
	infos := make([]os.FileInfo, 0, len(entries))
	for _, e := range entries {
		child, err := fs.readInode(uint32(e.inum))
		if err != nil {
			return nil, err
		}
		infos = append(infos, &fileInfo{name: e.name, inode: child})
	}
	return infos, nil
}

// OpenFile open a handle to read a file on the image. Any write flag is
// rejected with filesystem.ErrReadonlyFilesystem.
func (fs *FileSystem) OpenFile(pathname string, flag int) (filesystem.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_APPEND|os.O_CREATE|os.O_TRUNC) != 0 {
		return nil, filesystem.ErrReadonlyFilesystem
	}
	_, in, err := fs.walkPath(pathname)
	if err != nil {
		return nil, err
	}
	if in.itype == typeDir {
		return nil, fmt.Errorf("%s: is a directory", pathname)
	}
	if in.itype != typeFile {
		return nil, fmt.Errorf("%s: not a regular file", pathname)
	}
	blocks, err := fs.dataBlocks(in)
	if err != nil {
		return nil, err
	}
	return &File{
		inode:      in,
		blocks:     blocks,
		filesystem: fs,
	}, nil
}

// fileInfo implements os.FileInfo over a directory entry and its inode.
type fileInfo struct {
	name  string
	inode *dinode
}

func (fi *fileInfo) Name() string { return fi.name }
func (fi *fileInfo) Size() int64  { return int64(fi.inode.size) }
func (fi *fileInfo) Mode() os.FileMode {
	if fi.inode.itype == typeDir {
		return os.ModeDir | 0o755
	}
	if fi.inode.itype == typeDevice {
		return os.ModeDevice | 0o644
	}
	return 0o644
}

// ModTime xv6 inodes carry no timestamps
func (fi *fileInfo) ModTime() time.Time { return time.Time{} }
func (fi *fileInfo) IsDir() bool        { return fi.inode.itype == typeDir }
func (fi *fileInfo) Sys() any           { return fi.inode }

// interface guard
var _ filesystem.FileSystem = (*FileSystem)(nil)
