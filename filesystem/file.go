package filesystem

import (
	"io"
)

// File a reference to a single file on a filesystem image
type File interface {
	io.Reader
	io.Seeker
}
