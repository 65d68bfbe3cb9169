package backend

import (
	"bytes"
	"io/fs"
	"time"
)

type memBackend struct {
	name   string
	reader *bytes.Reader
}

// FromBytes wraps an in-memory image, for example one that was decompressed
// before checking, in a Storage.
func FromBytes(name string, b []byte) Storage {
	return &memBackend{
		name:   name,
		reader: bytes.NewReader(b),
	}
}

func (m *memBackend) Stat() (fs.FileInfo, error) {
	return memFileInfo{name: m.name, size: m.reader.Size()}, nil
}

func (m *memBackend) Read(b []byte) (int, error) {
	return m.reader.Read(b)
}

// ReadAt read at a particular offset
func (m *memBackend) ReadAt(b []byte, offset int64) (int, error) {
	return m.reader.ReadAt(b, offset)
}

func (m *memBackend) Seek(offset int64, whence int) (int64, error) {
	return m.reader.Seek(offset, whence)
}

func (m *memBackend) Close() error {
	return nil
}

func (m *memBackend) Size() (int64, error) {
	return m.reader.Size(), nil
}

// Storage interface guard
var _ Storage = (*memBackend)(nil)

type memFileInfo struct {
	name string
	size int64
}

func (fi memFileInfo) Name() string       { return fi.name }
func (fi memFileInfo) Size() int64        { return fi.size }
func (fi memFileInfo) Mode() fs.FileMode  { return 0o444 }
func (fi memFileInfo) ModTime() time.Time { return time.Time{} }
func (fi memFileInfo) IsDir() bool        { return false }
func (fi memFileInfo) Sys() any           { return nil }
