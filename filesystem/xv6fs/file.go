package xv6fs

import (
	"fmt"
	"io"
)

// File represents a single file in an xv6 filesystem
type File struct {
	inode      *dinode
	blocks     []uint32
	offset     int64
	filesystem *FileSystem
}

// Read reads up to len(b) bytes from the File.
// It returns the number of bytes read and any error encountered.
// At end of file, Read returns 0, io.EOF
// reads from the last known offset in the file from last read
// use Seek() to set at a particular point
func (fl *File) Read(b []byte) (int, error) {
	fileSize := int64(fl.inode.size)
	if fl.offset >= fileSize {
		return 0, io.EOF
	}

	bytesToRead := int64(len(b))
	if fl.offset+bytesToRead > fileSize {
		bytesToRead = fileSize - fl.offset
	}
	b = b[:bytesToRead]

	readBytes := int64(0)
	for readBytes < bytesToRead {
		pos := fl.offset
		blockIndex := pos / BlockSize
		if blockIndex >= int64(len(fl.blocks)) {
			return int(readBytes), fmt.Errorf("file claims %d bytes but owns only %d blocks", fileSize, len(fl.blocks))
		}
		startInBlock := pos % BlockSize
		toRead := BlockSize - startInBlock
		if toRead > bytesToRead-readBytes {
			toRead = bytesToRead - readBytes
		}
		blk, err := fl.filesystem.readBlock(fl.blocks[blockIndex])
		if err != nil {
			return int(readBytes), fmt.Errorf("failed to read bytes: %v", err)
		}
		copy(b[readBytes:], blk[startInBlock:startInBlock+toRead])
		readBytes += toRead
		fl.offset += toRead
	}

	var err error
	if fl.offset >= fileSize {
		err = io.EOF
	}
	return int(readBytes), err
}

// Seek set the offset to a particular point in the file
func (fl *File) Seek(offset int64, whence int) (int64, error) {
	newOffset := int64(0)
	switch whence {
	case io.SeekStart:
		newOffset = offset
	case io.SeekEnd:
		newOffset = int64(fl.inode.size) + offset
	case io.SeekCurrent:
		newOffset = fl.offset + offset
	}
	if newOffset < 0 {
		return fl.offset, fmt.Errorf("cannot set offset %d before start of file", offset)
	}
	fl.offset = newOffset
	return fl.offset, nil
}
