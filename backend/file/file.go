package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/plipka7/FileChecker/backend"
)

type rawBackend struct {
	storage fs.File
}

// New create a backend.Storage from a provided fs.File
func New(f fs.File) backend.Storage {
	return rawBackend{storage: f}
}

// OpenFromPath opens a filesystem image read-only from a path.
// Should pass a path to an image file, e.g. /tmp/fs.img, or to a block device.
// On platforms that support it the image is memory-mapped; otherwise reads go
// through the file handle.
func OpenFromPath(pathName string) (backend.Storage, error) {
	if pathName == "" {
		return nil, errors.New("must pass an image file name")
	}

	fi, err := os.Stat(pathName)
	if err != nil {
		return nil, fmt.Errorf("could not stat image %s: %w", pathName, err)
	}

	f, err := os.OpenFile(pathName, os.O_RDONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("could not open image %s: %w", pathName, err)
	}

	if fi.Mode().IsRegular() && fi.Size() > 0 {
		if data, err := mapImage(f, fi.Size()); err == nil {
			return newMapped(f, data), nil
		}
		// fall through to plain file reads
	}

	return rawBackend{storage: f}, nil
}

// backend.Storage interface guard
var _ backend.Storage = (*rawBackend)(nil)

func (f rawBackend) Stat() (fs.FileInfo, error) {
	return f.storage.Stat()
}

func (f rawBackend) Read(b []byte) (int, error) {
	return f.storage.Read(b)
}

func (f rawBackend) Close() error {
	return f.storage.Close()
}

// ReadAt read at a particular offset
func (f rawBackend) ReadAt(p []byte, offset int64) (n int, err error) {
	if readAt, ok := f.storage.(interface {
		ReadAt(p []byte, off int64) (int, error)
	}); ok {
		return readAt.ReadAt(p, offset)
	}
	return -1, backend.ErrNotSuitable
}

func (f rawBackend) Seek(offset int64, whence int) (int64, error) {
	if seek, ok := f.storage.(interface {
		Seek(offset int64, whence int) (int64, error)
	}); ok {
		return seek.Seek(offset, whence)
	}
	return -1, backend.ErrNotSuitable
}

// Size reports the length of the backing file.
func (f rawBackend) Size() (int64, error) {
	fi, err := f.storage.Stat()
	if err != nil {
		return -1, err
	}
	return fi.Size(), nil
}
