package fray

import "fmt"

// Op is a FUSE operation code. The numeric values are fixed by the kernel
// ABI and must never be renumbered independently of it.
//
// The set of named ops below is closed. Codes outside of it still decode;
// they simply have no name and report Known() == false. Rejecting them (if
// desired) is left to whoever interprets the request.
type Op uint32

const (
	OpLookup        Op = 1
	OpForget        Op = 2
	OpGetattr       Op = 3
	OpSetattr       Op = 4
	OpReadlink      Op = 5
	OpSymlink       Op = 6
	OpMknod         Op = 8
	OpMkdir         Op = 9
	OpUnlink        Op = 10
	OpRmdir         Op = 11
	OpRename        Op = 12
	OpLink          Op = 13
	OpOpen          Op = 14
	OpRead          Op = 15
	OpWrite         Op = 16
	OpStatfs        Op = 17
	OpRelease       Op = 18
	OpFsync         Op = 20
	OpSetxattr      Op = 21
	OpGetxattr      Op = 22
	OpListxattr     Op = 23
	OpRemovexattr   Op = 24
	OpFlush         Op = 25
	OpInit          Op = 26
	OpOpendir       Op = 27
	OpReaddir       Op = 28
	OpReleasedir    Op = 29
	OpFsyncDir      Op = 30
	OpGetLock       Op = 31
	OpSetLock       Op = 32
	OpSetLockWait   Op = 33
	OpAccess        Op = 34
	OpCreate        Op = 35
	OpInterrupt     Op = 36
	OpBmap          Op = 37
	OpDestroy       Op = 38
	OpIoctl         Op = 39
	OpPoll          Op = 40
	OpNotifyReply   Op = 41
	OpBatchForget   Op = 42
	OpFallocate     Op = 43
	OpReaddirplus   Op = 44
	OpRename2       Op = 45
	OpLseek         Op = 46
	OpCopyFileRange Op = 47
	OpSetupMapping  Op = 48
	OpRemoveMapping Op = 49
	OpCUSEInit      Op = 4096
)

var opNames = map[Op]string{
	OpLookup:        "lookup",
	OpForget:        "forget",
	OpGetattr:       "getattr",
	OpSetattr:       "setattr",
	OpReadlink:      "readlink",
	OpSymlink:       "symlink",
	OpMknod:         "mknod",
	OpMkdir:         "mkdir",
	OpUnlink:        "unlink",
	OpRmdir:         "rmdir",
	OpRename:        "rename",
	OpLink:          "link",
	OpOpen:          "open",
	OpRead:          "read",
	OpWrite:         "write",
	OpStatfs:        "statfs",
	OpRelease:       "release",
	OpFsync:         "fsync",
	OpSetxattr:      "setxattr",
	OpGetxattr:      "getxattr",
	OpListxattr:     "listxattr",
	OpRemovexattr:   "removexattr",
	OpFlush:         "flush",
	OpInit:          "init",
	OpOpendir:       "opendir",
	OpReaddir:       "readdir",
	OpReleasedir:    "releasedir",
	OpFsyncDir:      "fsyncdir",
	OpGetLock:       "getlk",
	OpSetLock:       "setlk",
	OpSetLockWait:   "setlkw",
	OpAccess:        "access",
	OpCreate:        "create",
	OpInterrupt:     "interrupt",
	OpBmap:          "bmap",
	OpDestroy:       "destroy",
	OpIoctl:         "ioctl",
	OpPoll:          "poll",
	OpNotifyReply:   "notify_reply",
	OpBatchForget:   "batch_forget",
	OpFallocate:     "fallocate",
	OpReaddirplus:   "readdirplus",
	OpRename2:       "rename2",
	OpLseek:         "lseek",
	OpCopyFileRange: "copy_file_range",
	OpSetupMapping:  "setupmapping",
	OpRemoveMapping: "removemapping",
	OpCUSEInit:      "cuse_init",
}

// Known reports whether o is part of the named operation set.
func (o Op) Known() bool {
	_, ok := opNames[o]
	return ok
}

// String implements fmt.Stringer.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("unrecognized op %d", uint32(o))
}
