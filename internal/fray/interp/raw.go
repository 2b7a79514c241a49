package interp

// Raw FUSE argument records from Linux. These must match the kernel's
// definitions verbatim, including padding fields, as their values are
// (unsafely) populated directly from message bytes.
//
// `_` fields are padding; the kernel 64-bit aligns its records.

type rawAttr struct {
	Inode     uint64
	Size      uint64
	Blocks    uint64
	Atime     uint64
	Mtime     uint64
	Ctime     uint64
	ATimeNsec uint32
	MTimeNsec uint32
	CTimeNsec uint32
	Mode      uint32
	Nlink     uint32
	UID       uint32
	GID       uint32
	RDev      uint32
	BlockSize uint32
	_         uint32
}

type rawEntryOut struct {
	NodeID         uint64
	Generation     uint64
	EntryValid     uint64
	AttrValid      uint64
	EntryValidNsec uint32
	AttrValidNsec  uint32
	Attr           rawAttr
}

type rawForgetIn struct {
	NLookup uint64
}

type rawForgetOne struct {
	NodeID  uint64
	Nlookup uint64
}

type rawBatchForgetIn struct {
	Count uint32
	_     uint32
}

type rawGetattrIn struct {
	GetattrFlags uint32
	_            uint32
	Fh           uint64
}

type rawAttrOut struct {
	AttrValid     uint64
	AttrValidNsec uint32
	_             uint32
	Attr          rawAttr
}

type rawMknodIn struct {
	Mode  uint32
	Rdev  uint32
	Umask uint32
	_     uint32
}

type rawMkdirIn struct {
	Mode  uint32
	Umask uint32
}

type rawRenameIn struct {
	Newdir uint64
}

type rawLinkIn struct {
	OldNodeID uint64
}

type rawSetattrIn struct {
	Valid     uint32
	_         uint32
	Fh        uint64
	Size      uint64
	LockOwner uint64
	Atime     uint64
	Mtime     uint64
	Ctime     uint64
	AtimeNsec uint32
	MtimeNsec uint32
	CtimeNsec uint32
	Mode      uint32
	_         uint32
	UID       uint32
	GID       uint32
	_         uint32
}

type rawOpenIn struct {
	Flags uint32
	_     uint32
}

type rawCreateIn struct {
	Flags uint32
	Mode  uint32
	Umask uint32
	_     uint32
}

type rawOpenOut struct {
	Fh        uint64
	OpenFlags uint32
	_         uint32
}

type rawReleaseIn struct {
	Fh           uint64
	Flags        uint32
	ReleaseFlags uint32
	LockOwner    uint64
}

type rawFlushIn struct {
	Fh        uint64
	_         uint32
	_         uint32
	LockOwner uint64
}

type rawReadIn struct {
	Fh        uint64
	Offset    uint64
	Size      uint32
	ReadFlags uint32
	LockOwner uint64
	Flags     uint32
	_         uint32
}

type rawWriteIn struct {
	Fh         uint64
	Offset     uint64
	Size       uint32
	WriteFlags uint32
	LockOwner  uint64
	Flags      uint32
	_          uint32
}

type rawWriteOut struct {
	Size uint32
	_    uint32
}

type rawFsyncIn struct {
	Fh         uint64
	FsyncFlags uint32
	_          uint32
}

type rawAccessIn struct {
	Mask uint32
	_    uint32
}

type rawInitIn struct {
	Major        uint32
	Minor        uint32
	MaxReadahead uint32
	Flags        uint32
}

type rawInitOut struct {
	Major               uint32
	Minor               uint32
	MaxReadahead        uint32
	Flags               uint32
	MaxBackground       uint16
	CongestionThreshold uint16
	MaxWrite            uint32
	TimeGran            uint32
	MaxPages            uint16
	MapAlignment        uint16
	_                   [8]uint32
}

type rawInterruptIn struct {
	Unique uint64
}

type rawDirent struct {
	Ino     uint64
	Offset  uint64 // Byte offset of this entry within the listing.
	NameLen uint32
	Type    uint32

	// Linux declares `char name[]` here; the name bytes are appended
	// separately, padded to 64-bit alignment.
}

type rawLseekIn struct {
	Fh     uint64
	Offset uint64
	Whence uint32
	_      uint32
}

type rawLseekOut struct {
	Offset uint64
}
