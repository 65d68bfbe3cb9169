package xv6fs

import (
	"github.com/plipka7/FileChecker/util/bitmap"
)

// inodeState is one slot of a shadow inode table. The checker keeps two of
// these tables: one filled from the inode table itself, one accumulated from
// directory entries. A consistent image yields identical entries in every
// slot from 2 up; slots 0 and 1 are not compared (the root is recorded in
// the stored table only).
type inodeState struct {
	inUse bool
	itype inodeType
	refs  int
}

type blockState uint8

const (
	blockFree blockState = iota
	blockUsed
)

// checker holds the scan state for one Check run. The shadow tables are
// sized by the superblock, written monotonically during the scan, and read
// once by the cross-check passes.
type checker struct {
	fs     *FileSystem
	stored []inodeState // indexed by inode number, from the on-disk inodes
	seen   []inodeState // indexed by inode number, from directory entries
	blocks []blockState // indexed by block number; only data blocks are marked
}

func newChecker(fs *FileSystem) *checker {
	sb := fs.superblock
	return &checker{
		fs:     fs,
		stored: make([]inodeState, sb.ninodes),
		seen:   make([]inodeState, sb.ninodes),
		blocks: make([]blockState, sb.size),
	}
}

// run performs the full consistency check: a single ascending pass over the
// inode table that walks every claimed block and directory entry, then the
// three cross-check passes over the shadow tables. Errors surface in
// detection order, which is deterministic for a given image.
func (c *checker) run() error {
	if err := c.scanInodes(); err != nil {
		return err
	}
	return c.crossCheck()
}

// scanInodes visits inode slots 0..ninodes in order and dispatches per type.
func (c *checker) scanInodes() error {
	sb := c.fs.superblock
	if sb.ninodes <= RootInode {
		return ErrRootMissing
	}
	for inum := uint32(0); inum < sb.ninodes; inum++ {
		in, err := c.fs.readInode(inum)
		if err != nil {
			return err
		}
		if inum == RootInode && in.itype != typeDir {
			return ErrRootMissing
		}
		switch in.itype {
		case typeUnused:
		case typeDir:
			// directories must not be hard-linked; root is the exception
			if inum != RootInode && in.nlink > 1 {
				return ErrDirectoryReferencedTwice
			}
			if in.nlink < 1 {
				return ErrUnreferencedInode
			}
			c.stored[inum] = inodeState{inUse: true, itype: typeDir, refs: int(in.nlink)}
			if err := c.walkDirectory(in, inum); err != nil {
				return err
			}
		case typeFile:
			if in.nlink < 1 {
				return ErrUnreferencedInode
			}
			c.stored[inum] = inodeState{inUse: true, itype: typeFile, refs: int(in.nlink)}
			if err := c.walkBlocks(in); err != nil {
				return err
			}
		case typeDevice:
			// devices get the block walk only: no link-count rule, no
			// shadow-table entry
			if err := c.walkBlocks(in); err != nil {
				return err
			}
		default:
			return ErrBadInode
		}
	}
	return nil
}

// claim validates a data-block address and marks it used. A second claim of
// the same block is a double reference.
func (c *checker) claim(a uint32, badAddr, reused *ConsistencyError) error {
	if !c.fs.superblock.validAddr(a) {
		return badAddr
	}
	if c.blocks[a] == blockUsed {
		return reused
	}
	c.blocks[a] = blockUsed
	return nil
}

// walkBlocks visits every block a regular-file or device inode claims:
// direct addresses in index order, then the indirect block and its entries.
func (c *checker) walkBlocks(in *dinode) error {
	for i := 0; i < NDirect; i++ {
		a := in.addrs[i]
		if a == 0 {
			continue
		}
		if err := c.claim(a, ErrBadDirectAddress, ErrDirectAddressReused); err != nil {
			return err
		}
	}
	return c.walkIndirect(in, nil)
}

// walkIndirect validates and claims the indirect block itself, then each
// nonzero address stored inside it. When visit is non-nil it is invoked for
// every claimed entry, in slot order, before the next entry is claimed.
func (c *checker) walkIndirect(in *dinode, visit func(block uint32) error) error {
	indirect := in.addrs[NDirect]
	if indirect == 0 {
		return nil
	}
	if err := c.claim(indirect, ErrBadIndirectAddress, ErrIndirectAddressReused); err != nil {
		return err
	}
	b, err := c.fs.readBlock(indirect)
	if err != nil {
		return err
	}
	for _, a := range addrsFromBytes(b) {
		if a == 0 {
			continue
		}
		if err := c.claim(a, ErrBadIndirectAddress, ErrIndirectAddressReused); err != nil {
			return err
		}
		if visit != nil {
			if err := visit(a); err != nil {
				return err
			}
		}
	}
	return nil
}

// walkDirectory performs the same block walk as walkBlocks and additionally
// parses each reached block as a dirent array. Each block is validated,
// claimed and parsed before the next one is touched. The first data block
// the directory actually has must begin with the "." and ".." entries;
// absent (zero) addresses are skipped before that rule is applied.
func (c *checker) walkDirectory(in *dinode, inum uint32) error {
	first := true
	for i := 0; i < NDirect; i++ {
		a := in.addrs[i]
		if a == 0 {
			continue
		}
		if err := c.claim(a, ErrBadDirectAddress, ErrDirectAddressReused); err != nil {
			return err
		}
		if err := c.scanDirentBlock(a, inum, first); err != nil {
			return err
		}
		first = false
	}
	return c.walkIndirect(in, func(block uint32) error {
		err := c.scanDirentBlock(block, inum, first)
		first = false
		return err
	})
}

// scanDirentBlock records every inode reference in one directory block.
// On the directory's first data block the leading two slots are the "./.."
// entries; they are format-checked and excluded from the reference counts.
func (c *checker) scanDirentBlock(block, dirInum uint32, first bool) error {
	b, err := c.fs.readBlock(block)
	if err != nil {
		return err
	}
	entries := parseDirEntries(b)
	start := 0
	if first {
		if err := c.checkDotEntries(entries, dirInum); err != nil {
			return err
		}
		start = 2
	}
	for _, e := range entries[start:] {
		if e.inum == 0 {
			continue
		}
		if err := c.noteDirent(e); err != nil {
			return err
		}
	}
	return nil
}

// checkDotEntries enforces the directory format rule: slot 0 is "." naming
// the directory itself, slot 1 is "..". For the root directory ".." must
// point back at the root.
func (c *checker) checkDotEntries(entries []*directoryEntry, dirInum uint32) error {
	dot, dotdot := entries[0], entries[1]
	if dot.name != "." || uint32(dot.inum) != dirInum {
		return ErrMalformedDirectory
	}
	if dirInum == RootInode {
		if dotdot.name != ".." || uint32(dotdot.inum) != RootInode {
			return ErrRootMissing
		}
		return nil
	}
	if dotdot.name != ".." {
		return ErrMalformedDirectory
	}
	return nil
}

// noteDirent records one non-empty directory entry in the seen table.
func (c *checker) noteDirent(e *directoryEntry) error {
	inum := uint32(e.inum)
	if inum >= c.fs.superblock.ninodes {
		// a slot past the end of the inode table is necessarily free
		return ErrDirectoryReferencesFreeInode
	}
	in, err := c.fs.readInode(inum)
	if err != nil {
		return err
	}
	switch in.itype {
	case typeDir:
		if inum != RootInode && c.seen[inum].inUse {
			return ErrDirectoryReferencedTwice
		}
		c.seen[inum].inUse = true
		c.seen[inum].itype = typeDir
		c.seen[inum].refs++
	case typeFile:
		c.seen[inum].inUse = true
		c.seen[inum].itype = typeFile
		c.seen[inum].refs++
	case typeUnused:
		return ErrDirectoryReferencesFreeInode
	}
	// device references are tolerated
	return nil
}

// crossCheck reconciles the shadow tables after the scan: presence first,
// then link counts, then the allocation bitmap, each in ascending order.
// Inode slots 0 and 1 are skipped; slot 0 is reserved and the root is
// handled structurally by the scan.
func (c *checker) crossCheck() error {
	sb := c.fs.superblock

	for inum := RootInode + 1; inum < sb.ninodes; inum++ {
		stored, seen := c.stored[inum].inUse, c.seen[inum].inUse
		if stored && !seen {
			return ErrUnreferencedInode
		}
		if !stored && seen {
			// the directory walk reports this first; kept as a backstop
			return ErrDirectoryReferencesFreeInode
		}
	}

	for inum := RootInode + 1; inum < sb.ninodes; inum++ {
		if c.stored[inum].refs != c.seen[inum].refs {
			return ErrBadReferenceCount
		}
	}

	return c.checkBitmap()
}

// checkBitmap compares the allocation bitmap against the blocks the scan
// reached, over the whole data region.
func (c *checker) checkBitmap() error {
	sb := c.fs.superblock
	var (
		bm        *bitmap.Bitmap
		bmBlock   uint32
		haveBlock bool
	)
	for b := sb.dataStart(); b <= sb.dataEnd(); b++ {
		blockNum := sb.bitmapBlock(b)
		if !haveBlock || blockNum != bmBlock {
			raw, err := c.fs.readBlock(blockNum)
			if err != nil {
				return err
			}
			bm = bitmap.FromBytes(raw)
			bmBlock = blockNum
			haveBlock = true
		}
		set, err := bm.IsSet(int(b % bitsPerBlock))
		if err != nil {
			return err
		}
		used := c.blocks[b] == blockUsed
		if set && !used {
			return ErrBitmapMarksFreeBlockInUse
		}
		if !set && used {
			return ErrInodeUsesFreeBlock
		}
	}
	return nil
}
