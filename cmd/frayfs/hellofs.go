//go:build linux

package main

import (
	"context"
	"os"
	"time"

	"github.com/go-kit/log"

	"github.com/frayfs/fray/internal/fray"
	"github.com/frayfs/fray/internal/fray/session"
)

const helloName = "hello.txt"

var helloContents = []byte("hello from frayfs\n")

var (
	helloRootNode = fray.RootNode
	helloFileNode = fray.Node(2)
)

// helloFS is a read-only filesystem with a single file at its root. It
// exists to exercise the protocol stack end to end.
type helloFS struct {
	session.Unimplemented

	log   log.Logger
	start time.Time
}

func newHelloFS(l log.Logger) *helloFS {
	if l == nil {
		l = log.NewNopLogger()
	}
	return &helloFS{log: l, start: time.Now()}
}

func (fs *helloFS) rootAttrib() fray.Attrib {
	return fray.Attrib{
		Inode:      uint64(helloRootNode),
		Mode:       os.ModeDir | 0o555,
		HardLinks:  2,
		LastAccess: fs.start,
		LastModify: fs.start,
		LastChange: fs.start,
		BlockSize:  4096,
	}
}

func (fs *helloFS) fileAttrib() fray.Attrib {
	return fray.Attrib{
		Inode:      uint64(helloFileNode),
		Size:       uint64(len(helloContents)),
		Mode:       0o444,
		HardLinks:  1,
		LastAccess: fs.start,
		LastModify: fs.start,
		LastChange: fs.start,
		BlockSize:  4096,
	}
}

func (fs *helloFS) Lookup(_ context.Context, hdr *fray.RequestHeader, req *fray.LookupRequest) (*fray.EntryResponse, error) {
	if hdr.Node != helloRootNode || req.Name != helloName {
		return nil, fray.ErrorNotExist
	}
	return &fray.EntryResponse{
		Entry: fray.Entry{
			Node:      helloFileNode,
			EntryTTL:  time.Minute,
			AttribTTL: time.Minute,
			Attrib:    fs.fileAttrib(),
		},
	}, nil
}

func (fs *helloFS) Getattr(_ context.Context, hdr *fray.RequestHeader, _ *fray.GetattrRequest) (*fray.AttrResponse, error) {
	switch hdr.Node {
	case helloRootNode:
		return &fray.AttrResponse{TTL: time.Minute, Attrib: fs.rootAttrib()}, nil
	case helloFileNode:
		return &fray.AttrResponse{TTL: time.Minute, Attrib: fs.fileAttrib()}, nil
	default:
		return nil, fray.ErrorNotExist
	}
}

func (fs *helloFS) Open(_ context.Context, hdr *fray.RequestHeader, req *fray.OpenRequest) (*fray.OpenedResponse, error) {
	if hdr.Node != helloFileNode {
		return nil, fray.ErrorNotExist
	}
	if req.Flags&(fray.OpenWriteOnly|fray.OpenReadWrite) != 0 {
		return nil, fray.ErrorUnauthorized
	}
	return &fray.OpenedResponse{
		Handle:      fray.Handle(hdr.Node),
		OpenedFlags: fray.OpenedKeepCache,
	}, nil
}

func (fs *helloFS) Read(_ context.Context, hdr *fray.RequestHeader, req *fray.ReadRequest) (*fray.ReadResponse, error) {
	if hdr.Node != helloFileNode {
		return nil, fray.ErrorNotExist
	}
	if req.Offset >= uint64(len(helloContents)) {
		return &fray.ReadResponse{}, nil
	}

	data := helloContents[req.Offset:]
	if uint64(len(data)) > uint64(req.Size) {
		data = data[:req.Size]
	}
	return &fray.ReadResponse{Data: data}, nil
}

func (fs *helloFS) Release(context.Context, *fray.RequestHeader, *fray.ReleaseRequest) error {
	return nil
}

func (fs *helloFS) Flush(context.Context, *fray.RequestHeader, *fray.FlushRequest) error {
	return nil
}

func (fs *helloFS) Opendir(_ context.Context, hdr *fray.RequestHeader, _ *fray.OpenRequest) (*fray.OpenedResponse, error) {
	if hdr.Node != helloRootNode {
		return nil, fray.ErrorNotDirectory
	}
	return &fray.OpenedResponse{Handle: fray.Handle(hdr.Node)}, nil
}

func (fs *helloFS) Readdir(_ context.Context, hdr *fray.RequestHeader, req *fray.ReadRequest) (*fray.ReaddirResponse, error) {
	if hdr.Node != helloRootNode {
		return nil, fray.ErrorNotDirectory
	}

	// The listing fits in one response; a non-zero offset means the kernel
	// already consumed it.
	if req.Offset != 0 {
		return &fray.ReaddirResponse{}, nil
	}
	return &fray.ReaddirResponse{
		Entries: []fray.DirEntry{
			{Inode: uint64(helloRootNode), Type: fray.EntryDirectory, Name: "."},
			{Inode: uint64(helloRootNode), Type: fray.EntryDirectory, Name: ".."},
			{Inode: uint64(helloFileNode), Type: fray.EntryRegular, Name: helloName},
		},
	}, nil
}

func (fs *helloFS) Releasedir(context.Context, *fray.RequestHeader, *fray.ReleaseRequest) error {
	return nil
}

func (fs *helloFS) Access(_ context.Context, _ *fray.RequestHeader, req *fray.AccessRequest) error {
	if req.Mask&0o2 != 0 {
		return fray.ErrorUnauthorized
	}
	return nil
}

func (fs *helloFS) Forget(context.Context, *fray.RequestHeader, *fray.ForgetRequest) {
	// Nothing is allocated per node.
}
