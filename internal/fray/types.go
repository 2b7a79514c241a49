package fray

import (
	"fmt"
	"os"
	"time"
)

var (
	// MinVersion supported by the package. Earlier versions may work but are
	// untested.
	MinVersion = Version{Major: 7, Minor: 31}

	// RootNode represents the filesystem root. It always has inode ID 1.
	RootNode Node = Node(1)
)

// Version of the protocol.
type Version struct{ Major, Minor uint32 }

// String implements fmt.Stringer.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// ID types. FUSE uses a collection of handles that live for the duration of
// a session.
type (
	// Node is an ID representing a file. 0 is never a valid reference. 1
	// always refers to the root of the filesystem and is assumed to exist by
	// both peers.
	Node uint64

	// Handle is a specific open handle for a Node. Handle IDs may be reused
	// after the handle is released.
	Handle uint64

	// LockOwner is an opaque ID referencing the owner of a file lock.
	LockOwner uint64
)

// Common data types, communicated over the protocol as parts of messages.
type (
	// RequestHeader is present in every request. It is the portable view of
	// the fixed header record prefixing every inbound message.
	RequestHeader struct {
		Op     Op     // Op encoded by the request.
		Unique uint64 // Correlation ID; the response must carry this value.
		Node   Node   // Node the request is for.
		UID    uint32 // UID of the requesting user.
		GID    uint32 // GID of the requesting user.
		PID    uint32 // PID of the requesting process.
	}

	// ResponseHeader is present in every response.
	ResponseHeader struct {
		Op     Op     // Op of the originating request.
		Unique uint64 // Request this response applies to.
		Error  Error
	}

	// Entry is a description of a file.
	Entry struct {
		Node       Node          // Node ID.
		Generation uint64        // Generation of Node; increases when the ID wraps.
		EntryTTL   time.Duration // Cache validity of this Node.
		AttribTTL  time.Duration // Cache validity of this Node's attributes.
		Attrib     Attrib        // Attributes for the Node.
	}

	// Attrib are the set of attributes for a Node.
	Attrib struct {
		Inode      uint64      // Real inode number.
		Size       uint64      // Size in bytes.
		Blocks     uint64      // Size in blocks (512-byte units).
		LastAccess time.Time   // Last time the file was accessed.
		LastModify time.Time   // Last time contents were modified.
		LastChange time.Time   // Last time the inode was updated.
		Mode       os.FileMode // File permissions.
		HardLinks  uint32      // Number of hard links (usually 1).
		UID        uint32      // Owner UID.
		GID        uint32      // Owner GID.
		DeviceID   uint32      // Device ID (if special file).
		BlockSize  uint32      // Block size for filesystem I/O.
	}

	// DirEntry is a directory entry returned during Readdir.
	DirEntry struct {
		Inode uint64
		Type  EntryType
		Name  string
	}

	// BatchForgetItem is one entry of a batched forget.
	BatchForgetItem struct {
		Node       Node
		NumLookups uint64
	}
)

// EntryType specifies the type of a file in a directory.
type EntryType uint32

const (
	EntryUnknown    EntryType = 0x0 // Entry type isn't known
	EntryPipe       EntryType = 0x1 // Entry is a named FIFO pipe
	EntryCharacter  EntryType = 0x2 // Entry is a character device
	EntryDirectory  EntryType = 0x4 // Entry is another directory
	EntryBlock      EntryType = 0x6 // Entry is a block device
	EntryRegular    EntryType = 0x8 // Entry is a regular file
	EntryLink       EntryType = 0xa // Entry is a symbolic link
	EntryUnixSocket EntryType = 0xc // Entry is a UNIX domain socket
)

// Flag types. Every flag type here is a bitmask of options.
type (
	// GetAttribFlags is a bitmask of flags for GetattrRequest.
	GetAttribFlags uint32
	// AttribMask marks which fields of a Setattr request may be used.
	AttribMask uint32
	// FileFlags are used when interacting with a node.
	FileFlags uint32
	// OpenedFlags are returned for an opened file.
	OpenedFlags uint32
	// ReadFlags customize a ReadRequest.
	ReadFlags uint32
	// WriteFlags customize a WriteRequest.
	WriteFlags uint32
	// ReleaseFlags customize a handle release.
	ReleaseFlags uint32
	// SyncFlags control a file sync.
	SyncFlags uint32
	// InitFlags are exchanged during the handshake.
	InitFlags uint32
)

const (
	// GetAttribFlagHandle requests attributes for a handle instead of the node.
	GetAttribFlagHandle GetAttribFlags = 1 << 0

	AttribMaskMode          AttribMask = 1 << 0  // The Mode field can be used
	AttribMaskUID           AttribMask = 1 << 1  // The UID field can be used
	AttribMaskGID           AttribMask = 1 << 2  // The GID field can be used
	AttribMaskSize          AttribMask = 1 << 3  // The Size field can be used
	AttribMaskLastAccess    AttribMask = 1 << 4  // The LastAccess field can be used
	AttribMaskLastModify    AttribMask = 1 << 5  // The LastModify field can be used
	AttribMaskFileHandle    AttribMask = 1 << 6  // The Handle field can be used
	AttribMaskLastAccessNow AttribMask = 1 << 7  // Update LastAccess to the current time
	AttribMaskLastModifyNow AttribMask = 1 << 8  // Update LastModify to the current time
	AttribMaskLockOwner     AttribMask = 1 << 9  // The LockOwner field can be used
	AttribMaskLastChange    AttribMask = 1 << 10 // The LastChange field can be used

	OpenReadOnly  FileFlags = 0x0 // Open the file for reading.
	OpenWriteOnly FileFlags = 0x1 // Open the file for writing.
	OpenReadWrite FileFlags = 0x2 // Open the file for reading and writing.

	OpenCreate    FileFlags = 0x40     // Create the file if it doesn't exist.
	OpenExclusive FileFlags = 0x80     // Open the file with an exclusive lock.
	OpenTruncate  FileFlags = 0x200    // Truncate contents before opening for writing.
	OpenAppend    FileFlags = 0x400    // Open with the file seeked to the end.
	OpenNonblock  FileFlags = 0x800    // Enable non-blocking IO against the open file.
	OpenDirectory FileFlags = 0x10000  // Open the file as a directory.
	OpenSync      FileFlags = 0x101000 // Enable synchronous writes.

	OpenedDirectIO    OpenedFlags = 1 << 0 // Bypass the page cache when writing
	OpenedKeepCache   OpenedFlags = 1 << 1 // Keep existing page cache intact
	OpenedNonSeekable OpenedFlags = 1 << 2 // File does not support seeking
	OpenedCacheDir    OpenedFlags = 1 << 3 // Allow caching directory
	OpenedStream      OpenedFlags = 1 << 4 // The file is stream-like (it has no position)

	ReadLockOwner ReadFlags = 1 << 1 // Use LockOwner to check exclusive lock

	WriteCache     WriteFlags = 1 << 0 // Delayed write from cache
	WriteLockOwner WriteFlags = 1 << 1 // LockOwner field may be used for validating lock
	WriteKillPriv  WriteFlags = 1 << 2 // Kill suid and gid bits

	ReleaseFlush  ReleaseFlags = 1 << 0 // Flush the file after releasing
	ReleaseUnlock ReleaseFlags = 1 << 1 // Remove the lock after releasing

	SyncDataOnly SyncFlags = 1 << 0 // Only sync data, not file metadata

	InitAsyncRead           InitFlags = 1 << 0  // Use asynchronous read requests
	InitPOSIXLocks          InitFlags = 1 << 1  // Use POSIX file locks
	InitAtomicTruncate      InitFlags = 1 << 3  // OpenTruncate is handled in the filesystem
	InitExportSupport       InitFlags = 1 << 4  // Filesystem can handle "." and ".."
	InitBigWrites           InitFlags = 1 << 5  // Filesystem can handle writes larger than 4K
	InitNoUmask             InitFlags = 1 << 6  // Don't apply umask to modes on create
	InitSpliceWrite         InitFlags = 1 << 7  // Kernel supports splice write on the device
	InitSpliceMove          InitFlags = 1 << 8  // Kernel supports splice move on the device
	InitSpliceRead          InitFlags = 1 << 9  // Kernel supports splice read on the device
	InitDirIoctl            InitFlags = 1 << 11 // Kernel supports ioctl on directories
	InitAutoInvalidateCache InitFlags = 1 << 12 // Automatically invalidate cached pages
	InitUseReadDirPlus      InitFlags = 1 << 13 // Use ReadDirPlus instead of ReadDir
	InitAsyncDIO            InitFlags = 1 << 15 // Asynchronous direct I/O submission
	InitWritebackCache      InitFlags = 1 << 16 // Use writeback cache for buffered writes
	InitZeroOpenSupport     InitFlags = 1 << 17 // Kernel supports zero-message opens
	InitParallelDirOps      InitFlags = 1 << 18 // Allow parallel operations on directories
	InitHandleKillpriv      InitFlags = 1 << 19 // Filesystem kills suid/sgid/cap on write/chown/trunc
	InitACLSupportPOSIX     InitFlags = 1 << 20 // Filesystem supports POSIX ACLs
	InitAbortError          InitFlags = 1 << 21 // Reading the device after abort returns ErrorAborted
	InitMaxPages            InitFlags = 1 << 22 // Set max pages in the init response
	InitCacheSymlinks       InitFlags = 1 << 23 // Cache responses for symbolic links
)
