package fray

import (
	"os"
	"time"
)

// Protocol messages. Each type here is the typed body of a specific request
// or response. Ops without a body (readlink, destroy, releasedir requests,
// empty-ok responses) have no type and are represented by nil.
type (
	LookupRequest struct {
		Name string
	}
	EntryResponse struct {
		Entry Entry
	}

	ForgetRequest struct {
		NumLookups uint64
	}

	GetattrRequest struct {
		Flags  GetAttribFlags
		Handle Handle
	}
	SetattrRequest struct {
		UpdateMask AttribMask  // Mask indicating which fields to apply.
		Handle     Handle      // Handle to set attributes for.
		Size       uint64      // File size.
		LockOwner  LockOwner   // Owner of a lock.
		LastAccess time.Time   // Last time the file was accessed.
		LastModify time.Time   // Last time the file was modified.
		LastChange time.Time   // Last time the inode was updated.
		Mode       os.FileMode // File permissions.
		UID        uint32      // Owner UID.
		GID        uint32      // Owner GID.
	}
	AttrResponse struct {
		TTL    time.Duration // Cache validity of the attributes.
		Attrib Attrib        // Attribute data.
	}

	ReadlinkResponse struct {
		Contents []byte // Contents of the link, up to the page size.
	}

	SymlinkRequest struct {
		Source   string // File being created.
		LinkName string // File being linked to.
	}

	MknodRequest struct {
		Mode     os.FileMode // Permissions for the file.
		DeviceID uint32      // Device ID for the special file.
		Umask    os.FileMode // Umask of the request.
		Name     string      // Name of the file.
	}

	MkdirRequest struct {
		Mode  os.FileMode
		Umask os.FileMode
		Name  string
	}

	UnlinkRequest struct {
		Name string
	}

	RmdirRequest struct {
		Name string
	}

	RenameRequest struct {
		NewDir           Node
		OldName, NewName string
	}

	LinkRequest struct {
		OldNode Node
		NewName string
	}

	OpenRequest struct {
		Flags FileFlags
	}
	OpenedResponse struct {
		Handle      Handle
		OpenedFlags OpenedFlags
	}

	ReadRequest struct {
		Handle    Handle
		Offset    uint64
		Size      uint32
		Flags     ReadFlags
		LockOwner LockOwner
		FileFlags FileFlags
	}
	ReadResponse struct {
		Data []byte
	}

	WriteRequest struct {
		Handle    Handle     // Handle to write to.
		Offset    uint64     // Offset in the handle to write at.
		Data      []byte     // Data to write.
		Flags     WriteFlags // Flags for writing.
		LockOwner LockOwner  // Owner of the write lock, if one exists.
		FileFlags FileFlags  // Flags the file was opened with.
	}
	WriteResponse struct {
		Written uint32 // Written bytes.
	}

	ReleaseRequest struct {
		Handle    Handle
		Flags     ReleaseFlags
		FileFlags FileFlags
		LockOwner LockOwner
	}

	FsyncRequest struct {
		Handle Handle
		Flags  SyncFlags
	}

	FlushRequest struct {
		Handle    Handle
		LockOwner LockOwner
	}

	InitRequest struct {
		LatestVersion Version   // Latest version supported by the kernel.
		MaxReadahead  uint32    // Length of data that can be prefetched.
		Flags         InitFlags // Flags for the init.
	}
	InitResponse struct {
		EarliestVersion     Version   // Earliest version supported by the filesystem.
		MaxReadahead        uint32    // Length of data that can be prefetched.
		Flags               InitFlags // Negotiated init flags.
		MaxBackground       uint16
		CongestionThreshold uint16
		MaxWrite            uint32
		TimeGran            uint32
		MaxPages            uint16
		MapAlignment        uint16
	}

	ReaddirResponse struct {
		Entries []DirEntry
	}

	AccessRequest struct {
		Mask os.FileMode // Validate access for mask.
	}

	CreateRequest struct {
		Flags FileFlags   // Flags for creation.
		Mode  os.FileMode // File mode.
		Umask os.FileMode // Umask for the file.
		Name  string      // Name of the file to create.
	}
	CreateResponse struct {
		Handle      Handle      // Handle to the newly created node.
		OpenedFlags OpenedFlags // Flags used for the create.
		Entry       Entry       // Created node entry.
	}

	// InterruptRequest interrupts an in-flight request. The interrupted
	// request should return with ErrorInterrupted.
	InterruptRequest struct {
		Unique uint64 // Correlation ID of the request to interrupt.
	}

	BatchForgetRequest struct {
		Items []BatchForgetItem
	}

	LseekRequest struct {
		Handle Handle // Handle to seek in.
		Offset uint64 // Offset to seek to, relative to whence.
		Whence uint32 // Seek relative to beginning, current position, or end.
	}
	LseekResponse struct {
		Offset uint64 // New offset in the file.
	}
)

//
// Request / Response marker implementations
//

func (*LookupRequest) frayRequest()      {}
func (*EntryResponse) frayResponse()     {}
func (*ForgetRequest) frayRequest()      {}
func (*GetattrRequest) frayRequest()     {}
func (*SetattrRequest) frayRequest()     {}
func (*AttrResponse) frayResponse()      {}
func (*ReadlinkResponse) frayResponse()  {}
func (*SymlinkRequest) frayRequest()     {}
func (*MknodRequest) frayRequest()       {}
func (*MkdirRequest) frayRequest()       {}
func (*UnlinkRequest) frayRequest()      {}
func (*RmdirRequest) frayRequest()       {}
func (*RenameRequest) frayRequest()      {}
func (*LinkRequest) frayRequest()        {}
func (*OpenRequest) frayRequest()        {}
func (*OpenedResponse) frayResponse()    {}
func (*ReadRequest) frayRequest()        {}
func (*ReadResponse) frayResponse()      {}
func (*WriteRequest) frayRequest()       {}
func (*WriteResponse) frayResponse()     {}
func (*ReleaseRequest) frayRequest()     {}
func (*FsyncRequest) frayRequest()       {}
func (*FlushRequest) frayRequest()       {}
func (*InitRequest) frayRequest()        {}
func (*InitResponse) frayResponse()      {}
func (*ReaddirResponse) frayResponse()   {}
func (*AccessRequest) frayRequest()      {}
func (*CreateRequest) frayRequest()      {}
func (*CreateResponse) frayResponse()    {}
func (*InterruptRequest) frayRequest()   {}
func (*BatchForgetRequest) frayRequest() {}
func (*LseekRequest) frayRequest()       {}
func (*LseekResponse) frayResponse()     {}
