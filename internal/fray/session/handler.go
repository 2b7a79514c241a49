package session

import (
	"context"

	"github.com/frayfs/fray/internal/fray"
)

// Handler processes messages from a channel. Handler is passed to New, and
// the Session invokes methods as requests come in.
type Handler interface {
	// Init is called once the protocol handshake completes.
	Init(context.Context) error

	// Close is called when closing a handler.
	Close() error

	Lookup(context.Context, *fray.RequestHeader, *fray.LookupRequest) (*fray.EntryResponse, error)
	Forget(context.Context, *fray.RequestHeader, *fray.ForgetRequest)
	Getattr(context.Context, *fray.RequestHeader, *fray.GetattrRequest) (*fray.AttrResponse, error)
	Setattr(context.Context, *fray.RequestHeader, *fray.SetattrRequest) (*fray.AttrResponse, error)
	Readlink(context.Context, *fray.RequestHeader) (*fray.ReadlinkResponse, error)
	Symlink(context.Context, *fray.RequestHeader, *fray.SymlinkRequest) (*fray.EntryResponse, error)
	Mknod(context.Context, *fray.RequestHeader, *fray.MknodRequest) (*fray.EntryResponse, error)
	Mkdir(context.Context, *fray.RequestHeader, *fray.MkdirRequest) (*fray.EntryResponse, error)
	Unlink(context.Context, *fray.RequestHeader, *fray.UnlinkRequest) error
	Rmdir(context.Context, *fray.RequestHeader, *fray.RmdirRequest) error
	Rename(context.Context, *fray.RequestHeader, *fray.RenameRequest) error
	Link(context.Context, *fray.RequestHeader, *fray.LinkRequest) (*fray.EntryResponse, error)
	Open(context.Context, *fray.RequestHeader, *fray.OpenRequest) (*fray.OpenedResponse, error)
	Read(context.Context, *fray.RequestHeader, *fray.ReadRequest) (*fray.ReadResponse, error)
	Write(context.Context, *fray.RequestHeader, *fray.WriteRequest) (*fray.WriteResponse, error)
	Release(context.Context, *fray.RequestHeader, *fray.ReleaseRequest) error
	Fsync(context.Context, *fray.RequestHeader, *fray.FsyncRequest) error
	Flush(context.Context, *fray.RequestHeader, *fray.FlushRequest) error
	Opendir(context.Context, *fray.RequestHeader, *fray.OpenRequest) (*fray.OpenedResponse, error)
	Readdir(context.Context, *fray.RequestHeader, *fray.ReadRequest) (*fray.ReaddirResponse, error)
	Releasedir(context.Context, *fray.RequestHeader, *fray.ReleaseRequest) error
	Fsyncdir(context.Context, *fray.RequestHeader, *fray.FsyncRequest) error
	Access(context.Context, *fray.RequestHeader, *fray.AccessRequest) error
	Create(context.Context, *fray.RequestHeader, *fray.CreateRequest) (*fray.CreateResponse, error)
	BatchForget(context.Context, *fray.RequestHeader, *fray.BatchForgetRequest) error
	Lseek(context.Context, *fray.RequestHeader, *fray.LseekRequest) (*fray.LseekResponse, error)
}

// Unimplemented implements Handler and returns ErrorUnimplemented for all
// requests. Embed it to only implement a subset of operations.
type Unimplemented struct{}

// Static type check test
var _ Handler = Unimplemented{}

func (Unimplemented) Init(context.Context) error {
	return nil
}

func (Unimplemented) Close() error {
	return nil
}

func (Unimplemented) Lookup(context.Context, *fray.RequestHeader, *fray.LookupRequest) (*fray.EntryResponse, error) {
	return nil, fray.ErrorUnimplemented
}

func (Unimplemented) Forget(context.Context, *fray.RequestHeader, *fray.ForgetRequest) {
	// no-op
}

func (Unimplemented) Getattr(context.Context, *fray.RequestHeader, *fray.GetattrRequest) (*fray.AttrResponse, error) {
	return nil, fray.ErrorUnimplemented
}

func (Unimplemented) Setattr(context.Context, *fray.RequestHeader, *fray.SetattrRequest) (*fray.AttrResponse, error) {
	return nil, fray.ErrorUnimplemented
}

func (Unimplemented) Readlink(context.Context, *fray.RequestHeader) (*fray.ReadlinkResponse, error) {
	return nil, fray.ErrorUnimplemented
}

func (Unimplemented) Symlink(context.Context, *fray.RequestHeader, *fray.SymlinkRequest) (*fray.EntryResponse, error) {
	return nil, fray.ErrorUnimplemented
}

func (Unimplemented) Mknod(context.Context, *fray.RequestHeader, *fray.MknodRequest) (*fray.EntryResponse, error) {
	return nil, fray.ErrorUnimplemented
}

func (Unimplemented) Mkdir(context.Context, *fray.RequestHeader, *fray.MkdirRequest) (*fray.EntryResponse, error) {
	return nil, fray.ErrorUnimplemented
}

func (Unimplemented) Unlink(context.Context, *fray.RequestHeader, *fray.UnlinkRequest) error {
	return fray.ErrorUnimplemented
}

func (Unimplemented) Rmdir(context.Context, *fray.RequestHeader, *fray.RmdirRequest) error {
	return fray.ErrorUnimplemented
}

func (Unimplemented) Rename(context.Context, *fray.RequestHeader, *fray.RenameRequest) error {
	return fray.ErrorUnimplemented
}

func (Unimplemented) Link(context.Context, *fray.RequestHeader, *fray.LinkRequest) (*fray.EntryResponse, error) {
	return nil, fray.ErrorUnimplemented
}

func (Unimplemented) Open(context.Context, *fray.RequestHeader, *fray.OpenRequest) (*fray.OpenedResponse, error) {
	return nil, fray.ErrorUnimplemented
}

func (Unimplemented) Read(context.Context, *fray.RequestHeader, *fray.ReadRequest) (*fray.ReadResponse, error) {
	return nil, fray.ErrorUnimplemented
}

func (Unimplemented) Write(context.Context, *fray.RequestHeader, *fray.WriteRequest) (*fray.WriteResponse, error) {
	return nil, fray.ErrorUnimplemented
}

func (Unimplemented) Release(context.Context, *fray.RequestHeader, *fray.ReleaseRequest) error {
	return fray.ErrorUnimplemented
}

func (Unimplemented) Fsync(context.Context, *fray.RequestHeader, *fray.FsyncRequest) error {
	return fray.ErrorUnimplemented
}

func (Unimplemented) Flush(context.Context, *fray.RequestHeader, *fray.FlushRequest) error {
	return fray.ErrorUnimplemented
}

func (Unimplemented) Opendir(context.Context, *fray.RequestHeader, *fray.OpenRequest) (*fray.OpenedResponse, error) {
	return nil, fray.ErrorUnimplemented
}

func (Unimplemented) Readdir(context.Context, *fray.RequestHeader, *fray.ReadRequest) (*fray.ReaddirResponse, error) {
	return nil, fray.ErrorUnimplemented
}

func (Unimplemented) Releasedir(context.Context, *fray.RequestHeader, *fray.ReleaseRequest) error {
	return fray.ErrorUnimplemented
}

func (Unimplemented) Fsyncdir(context.Context, *fray.RequestHeader, *fray.FsyncRequest) error {
	return fray.ErrorUnimplemented
}

func (Unimplemented) Access(context.Context, *fray.RequestHeader, *fray.AccessRequest) error {
	return fray.ErrorUnimplemented
}

func (Unimplemented) Create(context.Context, *fray.RequestHeader, *fray.CreateRequest) (*fray.CreateResponse, error) {
	return nil, fray.ErrorUnimplemented
}

func (Unimplemented) BatchForget(context.Context, *fray.RequestHeader, *fray.BatchForgetRequest) error {
	return fray.ErrorUnimplemented
}

func (Unimplemented) Lseek(context.Context, *fray.RequestHeader, *fray.LseekRequest) (*fray.LseekResponse, error) {
	return nil, fray.ErrorUnimplemented
}
