package file

import (
	"bytes"
	"io/fs"
	"os"

	"github.com/plipka7/FileChecker/backend"
)

// mappedBackend serves reads out of a read-only memory mapping of the image.
type mappedBackend struct {
	f      *os.File
	data   []byte
	reader *bytes.Reader
}

func newMapped(f *os.File, data []byte) backend.Storage {
	return &mappedBackend{
		f:      f,
		data:   data,
		reader: bytes.NewReader(data),
	}
}

func (m *mappedBackend) Stat() (fs.FileInfo, error) {
	return m.f.Stat()
}

func (m *mappedBackend) Read(b []byte) (int, error) {
	return m.reader.Read(b)
}

func (m *mappedBackend) ReadAt(b []byte, offset int64) (int, error) {
	return m.reader.ReadAt(b, offset)
}

func (m *mappedBackend) Seek(offset int64, whence int) (int64, error) {
	return m.reader.Seek(offset, whence)
}

func (m *mappedBackend) Size() (int64, error) {
	return m.reader.Size(), nil
}

// Close releases the mapping before closing the file handle.
func (m *mappedBackend) Close() error {
	unmapErr := unmapImage(m.data)
	m.data = nil
	m.reader = bytes.NewReader(nil)
	closeErr := m.f.Close()
	if unmapErr != nil {
		return unmapErr
	}
	return closeErr
}

var _ backend.Storage = (*mappedBackend)(nil)
