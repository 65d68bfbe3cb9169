// Package filechecker opens xv6 filesystem images for consistency checking.
//
// It glues the image loading together: a path is opened read-only, sniffed
// for a known compression format, and handed to the xv6fs decoder either as
// a memory-mapped file or, for compressed images, as a decompressed
// in-memory buffer. The checking itself lives in
// github.com/plipka7/FileChecker/filesystem/xv6fs.
//
//	fs, err := filechecker.Open("fs.img")
//	if err != nil { ... }
//	defer fs.Close()
//	err = fs.Check()
package filechecker

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"

	"github.com/plipka7/FileChecker/backend"
	"github.com/plipka7/FileChecker/backend/file"
	"github.com/plipka7/FileChecker/filesystem/xv6fs"
)

// compression magic numbers, longest first
var (
	magicXz   = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
	magicZstd = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicLz4  = []byte{0x04, 0x22, 0x4d, 0x18}
	magicGzip = []byte{0x1f, 0x8b}
)

// Open opens the filesystem image at the given path. Compressed images
// (gzip, zstd, xz or lz4) are decompressed into memory transparently;
// uncompressed images are read in place.
func Open(pathname string) (*xv6fs.FileSystem, error) {
	f, err := os.Open(pathname)
	if err != nil {
		return nil, fmt.Errorf("could not open image %s: %w", pathname, err)
	}

	head := make([]byte, len(magicXz))
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		_ = f.Close()
		return nil, fmt.Errorf("could not read image %s: %w", pathname, err)
	}
	head = head[:n]

	decompress := decompressorFor(head)
	if decompress == nil {
		// plain image, reopen through the regular backend so it can be mapped
		if err := f.Close(); err != nil {
			return nil, err
		}
		b, err := file.OpenFromPath(pathname)
		if err != nil {
			return nil, err
		}
		return openBackend(b)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, err
	}
	data, err := decompress(f)
	closeErr := f.Close()
	if err != nil {
		return nil, fmt.Errorf("could not decompress image %s: %w", pathname, err)
	}
	if closeErr != nil {
		return nil, closeErr
	}
	return openBackend(backend.FromBytes(pathname, data))
}

// OpenBackend reads a filesystem from an already-loaded image.
func OpenBackend(b backend.Storage) (*xv6fs.FileSystem, error) {
	return openBackend(b)
}

func openBackend(b backend.Storage) (*xv6fs.FileSystem, error) {
	size, err := b.Size()
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("could not size image: %w", err)
	}
	fs, err := xv6fs.Read(b, size, 0)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	return fs, nil
}

// decompressorFor matches the sniffed head bytes against the known codec
// magics. A nil return means the image is not compressed.
func decompressorFor(head []byte) func(io.Reader) ([]byte, error) {
	switch {
	case bytes.HasPrefix(head, magicGzip):
		return func(r io.Reader) ([]byte, error) {
			gz, err := gzip.NewReader(r)
			if err != nil {
				return nil, err
			}
			defer gz.Close()
			return io.ReadAll(gz)
		}
	case bytes.HasPrefix(head, magicZstd):
		return func(r io.Reader) ([]byte, error) {
			zr, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			defer zr.Close()
			return io.ReadAll(zr.IOReadCloser())
		}
	case bytes.HasPrefix(head, magicXz):
		return func(r io.Reader) ([]byte, error) {
			xr, err := xz.NewReader(r)
			if err != nil {
				return nil, err
			}
			return io.ReadAll(xr)
		}
	case bytes.HasPrefix(head, magicLz4):
		return func(r io.Reader) ([]byte, error) {
			return io.ReadAll(lz4.NewReader(r))
		}
	}
	return nil
}
