//go:build linux || darwin

package file

import (
	"os"

	"golang.org/x/sys/unix"
)

func mapImage(f *os.File, size int64) ([]byte, error) {
	return unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
}

func unmapImage(data []byte) error {
	return unix.Munmap(data)
}
