package xv6fs

import (
	"fmt"
	"io"
)

// ListInodes writes a debug listing of every in-use inode slot to w, in
// inode-number order. Unused slots are skipped.
func (fs *FileSystem) ListInodes(w io.Writer) error {
	for inum := uint32(0); inum < fs.superblock.ninodes; inum++ {
		in, err := fs.readInode(inum)
		if err != nil {
			return err
		}
		if in.itype == typeUnused {
			continue
		}
		if _, err := fmt.Fprintf(w, "inum %d: %s\n", inum, in); err != nil {
			return err
		}
	}
	return nil
}
