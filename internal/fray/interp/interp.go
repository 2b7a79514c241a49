// Package interp interprets framed FUSE messages: Parse turns a decoded
// request's argument bytes into the typed operation messages of the fray
// package, and Chunks marshals typed responses into the payload chunks the
// wire encoder transmits.
//
// Nothing here validates filesystem semantics; malformed argument sections
// surface as errors and unrecognized operations decode to an empty body for
// the caller to reject.
package interp

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"github.com/frayfs/fray/internal/fray"
	"github.com/frayfs/fray/internal/fray/wire"
)

var errIncomplete = fmt.Errorf("interp: incomplete message")

// Parse interprets one decoded request. trailer carries the data payload
// that follows the fixed argument prefix of write-style messages (write,
// notify-reply) and must be empty for every other op.
//
// Ops without a typed body (and ops outside the interpreted set) return a
// nil fray.Request; responding to those with fray.ErrorUnimplemented is the
// caller's decision.
func Parse(req *wire.Request, trailer []byte) (hdr fray.RequestHeader, body fray.Request, err error) {
	// The argument reader panics with errIncomplete when a message is too
	// small for the arguments its opcode implies. Catch it here and return
	// an error instead.
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if rerr, ok := r.(error); ok && errors.Is(rerr, errIncomplete) {
			err = rerr
			return
		}
		// Not from the argument reader, throw it back.
		panic(r)
	}()

	hdr = fray.RequestHeader{
		Op:     req.Header().Op(),
		Unique: req.Header().Unique(),
		Node:   req.Header().Node(),
		UID:    req.Header().UID(),
		GID:    req.Header().GID(),
		PID:    req.Header().PID(),
	}

	ar := argReader{data: req.Arg()}

	// Arguments are listed in the same order FUSE sends them; do not
	// re-order them. Each case declares a variable group describing the
	// arguments that follow the header. Reading an argument panics when the
	// available data is too small; the panic is caught above.
	switch hdr.Op {
	default:
		// Ops we deliberately don't interpret, plus anything unrecognized.
		// The caller must answer fray.ErrorUnimplemented or the kernel may
		// hang waiting on the request.
		return hdr, nil, nil

	case fray.OpLookup:
		var (
			name = ar.String()
		)
		return hdr, &fray.LookupRequest{Name: name}, nil

	case fray.OpForget:
		var (
			in = *(*rawForgetIn)(ar.Pointer(unsafe.Sizeof(rawForgetIn{})))
		)
		return hdr, &fray.ForgetRequest{NumLookups: in.NLookup}, nil

	case fray.OpGetattr:
		var (
			in = *(*rawGetattrIn)(ar.Pointer(unsafe.Sizeof(rawGetattrIn{})))
		)
		return hdr, &fray.GetattrRequest{
			Flags:  fray.GetAttribFlags(in.GetattrFlags),
			Handle: fray.Handle(in.Fh),
		}, nil

	case fray.OpSetattr:
		var (
			in = *(*rawSetattrIn)(ar.Pointer(unsafe.Sizeof(rawSetattrIn{})))
		)
		return hdr, &fray.SetattrRequest{
			UpdateMask: fray.AttribMask(in.Valid),
			Handle:     fray.Handle(in.Fh),
			Size:       in.Size,
			LockOwner:  fray.LockOwner(in.LockOwner),
			LastAccess: time.Unix(int64(in.Atime), int64(in.AtimeNsec)),
			LastModify: time.Unix(int64(in.Mtime), int64(in.MtimeNsec)),
			LastChange: time.Unix(int64(in.Ctime), int64(in.CtimeNsec)),
			Mode:       toNativeMode(in.Mode),
			UID:        in.UID,
			GID:        in.GID,
		}, nil

	case fray.OpReadlink:
		return hdr, nil, nil

	case fray.OpSymlink:
		var (
			source   = ar.String()
			linkname = ar.String()
		)
		return hdr, &fray.SymlinkRequest{Source: source, LinkName: linkname}, nil

	case fray.OpMknod:
		var (
			in   = *(*rawMknodIn)(ar.Pointer(unsafe.Sizeof(rawMknodIn{})))
			name = ar.String()
		)
		return hdr, &fray.MknodRequest{
			Mode:     toNativeMode(in.Mode),
			DeviceID: in.Rdev,
			Umask:    toNativeMode(in.Umask),
			Name:     name,
		}, nil

	case fray.OpMkdir:
		var (
			in   = *(*rawMkdirIn)(ar.Pointer(unsafe.Sizeof(rawMkdirIn{})))
			name = ar.String()
		)
		return hdr, &fray.MkdirRequest{
			Mode:  toNativeMode(in.Mode),
			Umask: toNativeMode(in.Umask),
			Name:  name,
		}, nil

	case fray.OpUnlink:
		var (
			name = ar.String()
		)
		return hdr, &fray.UnlinkRequest{Name: name}, nil

	case fray.OpRmdir:
		var (
			name = ar.String()
		)
		return hdr, &fray.RmdirRequest{Name: name}, nil

	case fray.OpRename:
		var (
			in      = *(*rawRenameIn)(ar.Pointer(unsafe.Sizeof(rawRenameIn{})))
			oldName = ar.String()
			newName = ar.String()
		)
		return hdr, &fray.RenameRequest{
			NewDir:  fray.Node(in.Newdir),
			OldName: oldName,
			NewName: newName,
		}, nil

	case fray.OpLink:
		var (
			in      = *(*rawLinkIn)(ar.Pointer(unsafe.Sizeof(rawLinkIn{})))
			newName = ar.String()
		)
		return hdr, &fray.LinkRequest{
			OldNode: fray.Node(in.OldNodeID),
			NewName: newName,
		}, nil

	case fray.OpOpen, fray.OpOpendir:
		var (
			in = *(*rawOpenIn)(ar.Pointer(unsafe.Sizeof(rawOpenIn{})))
		)
		return hdr, &fray.OpenRequest{
			Flags: fray.FileFlags(in.Flags),
		}, nil

	case fray.OpRead, fray.OpReaddir:
		var (
			in = *(*rawReadIn)(ar.Pointer(unsafe.Sizeof(rawReadIn{})))
		)
		return hdr, &fray.ReadRequest{
			Handle:    fray.Handle(in.Fh),
			Offset:    in.Offset,
			Size:      in.Size,
			Flags:     fray.ReadFlags(in.ReadFlags),
			LockOwner: fray.LockOwner(in.LockOwner),
			FileFlags: fray.FileFlags(in.Flags),
		}, nil

	case fray.OpWrite:
		var (
			in   = *(*rawWriteIn)(ar.Pointer(unsafe.Sizeof(rawWriteIn{})))
			data = takeTrailer(trailer, int(in.Size))
		)
		return hdr, &fray.WriteRequest{
			Handle:    fray.Handle(in.Fh),
			Offset:    in.Offset,
			Flags:     fray.WriteFlags(in.WriteFlags),
			LockOwner: fray.LockOwner(in.LockOwner),
			FileFlags: fray.FileFlags(in.Flags),
			Data:      data,
		}, nil

	case fray.OpRelease, fray.OpReleasedir:
		var (
			in = *(*rawReleaseIn)(ar.Pointer(unsafe.Sizeof(rawReleaseIn{})))
		)
		return hdr, &fray.ReleaseRequest{
			Handle:    fray.Handle(in.Fh),
			Flags:     fray.ReleaseFlags(in.ReleaseFlags),
			FileFlags: fray.FileFlags(in.Flags),
			LockOwner: fray.LockOwner(in.LockOwner),
		}, nil

	case fray.OpFsync, fray.OpFsyncDir:
		var (
			in = *(*rawFsyncIn)(ar.Pointer(unsafe.Sizeof(rawFsyncIn{})))
		)
		return hdr, &fray.FsyncRequest{
			Handle: fray.Handle(in.Fh),
			Flags:  fray.SyncFlags(in.FsyncFlags),
		}, nil

	case fray.OpFlush:
		var (
			in = *(*rawFlushIn)(ar.Pointer(unsafe.Sizeof(rawFlushIn{})))
		)
		return hdr, &fray.FlushRequest{
			Handle:    fray.Handle(in.Fh),
			LockOwner: fray.LockOwner(in.LockOwner),
		}, nil

	case fray.OpInit:
		var (
			in = *(*rawInitIn)(ar.Pointer(unsafe.Sizeof(rawInitIn{})))
		)
		return hdr, &fray.InitRequest{
			LatestVersion: fray.Version{Major: in.Major, Minor: in.Minor},
			MaxReadahead:  in.MaxReadahead,
			Flags:         fray.InitFlags(in.Flags),
		}, nil

	case fray.OpAccess:
		var (
			in = *(*rawAccessIn)(ar.Pointer(unsafe.Sizeof(rawAccessIn{})))
		)
		return hdr, &fray.AccessRequest{
			Mask: toNativeMode(in.Mask),
		}, nil

	case fray.OpCreate:
		var (
			in   = *(*rawCreateIn)(ar.Pointer(unsafe.Sizeof(rawCreateIn{})))
			name = ar.String()
		)
		return hdr, &fray.CreateRequest{
			Flags: fray.FileFlags(in.Flags),
			Mode:  toNativeMode(in.Mode),
			Umask: toNativeMode(in.Umask),
			Name:  name,
		}, nil

	case fray.OpInterrupt:
		var (
			in = *(*rawInterruptIn)(ar.Pointer(unsafe.Sizeof(rawInterruptIn{})))
		)
		return hdr, &fray.InterruptRequest{Unique: in.Unique}, nil

	case fray.OpDestroy:
		return hdr, nil, nil

	case fray.OpBatchForget:
		// BatchForget sends a counted array of arguments.
		var (
			in    = *(*rawBatchForgetIn)(ar.Pointer(unsafe.Sizeof(rawBatchForgetIn{})))
			items []fray.BatchForgetItem
		)
		for i := 0; i < int(in.Count); i++ {
			item := *(*rawForgetOne)(ar.Pointer(unsafe.Sizeof(rawForgetOne{})))
			items = append(items, fray.BatchForgetItem{
				Node:       fray.Node(item.NodeID),
				NumLookups: item.Nlookup,
			})
		}
		return hdr, &fray.BatchForgetRequest{Items: items}, nil

	case fray.OpLseek:
		var (
			in = *(*rawLseekIn)(ar.Pointer(unsafe.Sizeof(rawLseekIn{})))
		)
		return hdr, &fray.LseekRequest{
			Handle: fray.Handle(in.Fh),
			Offset: in.Offset,
			Whence: in.Whence,
		}, nil
	}
}

// takeTrailer copies n bytes of write payload out of the transport-owned
// trailer, which is only valid until the next receive.
func takeTrailer(trailer []byte, n int) []byte {
	if len(trailer) < n {
		panic(errIncomplete)
	}
	return append([]byte(nil), trailer[:n]...)
}
