package testhelper

import (
	"fmt"
	"os"
)

type reader func(b []byte, offset int64) (int, error)

// FileImpl implements github.com/plipka7/FileChecker/backend.Storage
// used for testing to enable stubbing out image files
type FileImpl struct {
	Reader   reader
	FileSize int64
}

func (f *FileImpl) Stat() (os.FileInfo, error) {
	return nil, nil
}

func (f *FileImpl) Read(b []byte) (int, error) {
	return f.Reader(b, 0)
}

func (f *FileImpl) Close() error {
	return nil
}

// ReadAt read at a particular offset
func (f *FileImpl) ReadAt(b []byte, offset int64) (int, error) {
	return f.Reader(b, offset)
}

// Seek seek a particular offset - does not actually work
//
//nolint:unused,revive // to implement the interface
func (f *FileImpl) Seek(offset int64, whence int) (int64, error) {
	return 0, fmt.Errorf("FileImpl does not implement Seek()")
}

// Size the declared image size
func (f *FileImpl) Size() (int64, error) {
	return f.FileSize, nil
}
