package xv6fs

// ConsistencyError is a violation of one of the filesystem invariants.
// Check surfaces the first one detected; the message is the canonical
// description of the violation.
type ConsistencyError struct {
	msg string
}

func (e *ConsistencyError) Error() string {
	return e.msg
}

var (
	// ErrRootMissing inode 1 is not a directory, or the root ".." does not
	// point back at the root
	ErrRootMissing = &ConsistencyError{"root directory does not exist."}
	// ErrDirectoryReferencedTwice a directory is hard-linked, or appears in
	// more than one directory entry
	ErrDirectoryReferencedTwice = &ConsistencyError{"directory appears more than once in file system."}
	// ErrUnreferencedInode an in-use inode is not reachable from any directory
	ErrUnreferencedInode = &ConsistencyError{"inode marked use but not found in a directory."}
	// ErrBadInode an inode has a type outside the known set
	ErrBadInode = &ConsistencyError{"bad inode."}
	// ErrBadDirectAddress a direct block address is outside the data region
	ErrBadDirectAddress = &ConsistencyError{"bad direct address in inode."}
	// ErrBadIndirectAddress an indirect block address, or an address stored
	// inside an indirect block, is outside the data region
	ErrBadIndirectAddress = &ConsistencyError{"bad indirect address in inode."}
	// ErrDirectAddressReused a direct block is claimed more than once
	ErrDirectAddressReused = &ConsistencyError{"direct address used more than once."}
	// ErrIndirectAddressReused an indirect block, or a block it addresses, is
	// claimed more than once
	ErrIndirectAddressReused = &ConsistencyError{"indirect address used more than once."}
	// ErrMalformedDirectory the first directory block does not begin with the
	// "." and ".." entries
	ErrMalformedDirectory = &ConsistencyError{"directory not properly formatted."}
	// ErrDirectoryReferencesFreeInode a directory entry targets an unused
	// inode slot
	ErrDirectoryReferencesFreeInode = &ConsistencyError{"inode referred to in directory but marked free."}
	// ErrBadReferenceCount an inode link count disagrees with the number of
	// directory entries referencing it
	ErrBadReferenceCount = &ConsistencyError{"bad reference count for file."}
	// ErrBitmapMarksFreeBlockInUse the bitmap marks a block used that no
	// inode reaches
	ErrBitmapMarksFreeBlockInUse = &ConsistencyError{"bitmap marks block in use but it is not in use."}
	// ErrInodeUsesFreeBlock an inode reaches a block the bitmap marks free
	ErrInodeUsesFreeBlock = &ConsistencyError{"address used by inode but marked free in bitmap."}
)
