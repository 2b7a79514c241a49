package interp

import (
	"os"
	"syscall"
	"time"

	"github.com/frayfs/fray/internal/fray"
)

// Conversions between native Go representations and the raw units the
// kernel speaks (split unix seconds/nanoseconds, S_IF* mode bits).

func toSecondFrag(d time.Duration) uint64 {
	return uint64(d / time.Second)
}

func toNanosecondFrag(d time.Duration) uint32 {
	rem := d - d.Truncate(time.Second)
	return uint32(rem.Nanoseconds())
}

func toUnix(t time.Time) uint64 {
	if t.IsZero() {
		return 0
	}
	return uint64(t.Unix())
}

func toUnixNsOffset(t time.Time) uint32 {
	if t.IsZero() {
		return 0
	}
	return uint32(t.Nanosecond())
}

func toRawEntryOut(in fray.Entry) rawEntryOut {
	return rawEntryOut{
		NodeID:         uint64(in.Node),
		Generation:     in.Generation,
		EntryValid:     toSecondFrag(in.EntryTTL),
		AttrValid:      toSecondFrag(in.AttribTTL),
		EntryValidNsec: toNanosecondFrag(in.EntryTTL),
		AttrValidNsec:  toNanosecondFrag(in.AttribTTL),
		Attr:           toRawAttr(in.Attrib),
	}
}

func toRawAttr(in fray.Attrib) rawAttr {
	return rawAttr{
		Inode:     in.Inode,
		Size:      in.Size,
		Blocks:    in.Blocks,
		Atime:     toUnix(in.LastAccess),
		Mtime:     toUnix(in.LastModify),
		Ctime:     toUnix(in.LastChange),
		ATimeNsec: toUnixNsOffset(in.LastAccess),
		MTimeNsec: toUnixNsOffset(in.LastModify),
		CTimeNsec: toUnixNsOffset(in.LastChange),
		Mode:      toLinuxMode(in.Mode),
		Nlink:     in.HardLinks,
		UID:       in.UID,
		GID:       in.GID,
		RDev:      in.DeviceID,
		BlockSize: in.BlockSize,
	}
}

func toLinuxMode(in os.FileMode) uint32 {
	var out uint32
	out = uint32(in) & 0o777
	switch {
	case in&os.ModeType == 0:
		out |= syscall.S_IFREG
	case in&os.ModeDir != 0:
		out |= syscall.S_IFDIR
	case in&os.ModeDevice != 0 && in&os.ModeCharDevice != 0:
		out |= syscall.S_IFCHR
	case in&os.ModeDevice != 0:
		out |= syscall.S_IFBLK
	case in&os.ModeNamedPipe != 0:
		out |= syscall.S_IFIFO
	case in&os.ModeSymlink != 0:
		out |= syscall.S_IFLNK
	case in&os.ModeSocket != 0:
		out |= syscall.S_IFSOCK
	}
	if in&os.ModeSetuid != 0 {
		out |= syscall.S_ISUID
	}
	if in&os.ModeSetgid != 0 {
		out |= syscall.S_ISGID
	}
	if in&os.ModeSticky != 0 {
		out |= syscall.S_ISVTX
	}
	return out
}

func toNativeMode(in uint32) os.FileMode {
	out := os.FileMode(in & 0o777)
	switch in & syscall.S_IFMT {
	case syscall.S_IFBLK:
		out |= os.ModeDevice
	case syscall.S_IFCHR:
		out |= os.ModeDevice | os.ModeCharDevice
	case syscall.S_IFDIR:
		out |= os.ModeDir
	case syscall.S_IFIFO:
		out |= os.ModeNamedPipe
	case syscall.S_IFLNK:
		out |= os.ModeSymlink
	case syscall.S_IFREG:
		// nothing to do
	case syscall.S_IFSOCK:
		out |= os.ModeSocket
	case 0:
		out |= os.ModeIrregular
	}
	if in&syscall.S_ISGID != 0 {
		out |= os.ModeSetgid
	}
	if in&syscall.S_ISUID != 0 {
		out |= os.ModeSetuid
	}
	if in&syscall.S_ISVTX != 0 {
		out |= os.ModeSticky
	}
	return out
}
