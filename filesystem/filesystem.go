// Package filesystem provides interfaces and constants required for filesystem implementations.
// All interesting implementations are in subpackages, e.g. github.com/plipka7/FileChecker/filesystem/xv6fs
package filesystem

import (
	"errors"
	"os"
)

var (
	ErrNotSupported       = errors.New("method not supported by this filesystem")
	ErrReadonlyFilesystem = errors.New("read-only filesystem")
)

// FileSystem is a reference to a single filesystem on a disk image.
// Implementations in this module are read-only: they decode and validate
// images, they never modify them.
type FileSystem interface {
	// Type return the type of filesystem
	Type() Type
	// Check validates the internal consistency of the filesystem. A nil
	// return means the image is consistent.
	Check() error
	// ReadDir read the contents of a directory
	ReadDir(pathname string) ([]os.FileInfo, error)
	// OpenFile open a handle to read a file. Write flags are rejected.
	OpenFile(pathname string, flag int) (File, error)
	// Label get the label for the filesystem, or "" if none. Be careful to trim it, as it may contain
	// leading or following whitespace. The label is passed as-is and not cleaned up at all.
	Label() string
}

// Type represents the type of filesystem this is
type Type int

const (
	// TypeXv6 is an xv6 filesystem
	TypeXv6 Type = iota
)
