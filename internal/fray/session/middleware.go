package session

import (
	"context"
	"fmt"

	"github.com/frayfs/fray/internal/fray"
)

// Middleware hooks into requests.
type Middleware interface {
	// HandleRequest handles an individual request.
	HandleRequest(ctx context.Context, hdr *fray.RequestHeader, req fray.Request, invoker Invoker) (fray.Response, error)
}

// Invoker is called by Middleware to complete requests.
type Invoker func(ctx context.Context, hdr *fray.RequestHeader, req fray.Request) (fray.Response, error)

// FuncMiddleware is a function that implements Middleware.
type FuncMiddleware func(ctx context.Context, hdr *fray.RequestHeader, req fray.Request, i Invoker) (fray.Response, error)

func (f FuncMiddleware) HandleRequest(ctx context.Context, h *fray.RequestHeader, req fray.Request, i Invoker) (fray.Response, error) {
	return f(ctx, h, req, i)
}

// handlerInvoker converts h into an Invoker.
func handlerInvoker(h Handler) Invoker {
	return func(ctx context.Context, header *fray.RequestHeader, req fray.Request) (resp fray.Response, err error) {
		switch header.Op {
		case fray.OpLookup:
			req, _ := req.(*fray.LookupRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			resp, err = h.Lookup(ctx, header, req)

		case fray.OpForget:
			// Unlike other requests, Forget has no response so we return
			// immediately once it's done.
			req, _ := req.(*fray.ForgetRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			h.Forget(ctx, header, req)

		case fray.OpGetattr:
			req, _ := req.(*fray.GetattrRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			resp, err = h.Getattr(ctx, header, req)

		case fray.OpSetattr:
			req, _ := req.(*fray.SetattrRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			resp, err = h.Setattr(ctx, header, req)

		case fray.OpReadlink:
			// Readlink has no request
			resp, err = h.Readlink(ctx, header)

		case fray.OpSymlink:
			req, _ := req.(*fray.SymlinkRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			resp, err = h.Symlink(ctx, header, req)

		case fray.OpMknod:
			req, _ := req.(*fray.MknodRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			resp, err = h.Mknod(ctx, header, req)

		case fray.OpMkdir:
			req, _ := req.(*fray.MkdirRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			resp, err = h.Mkdir(ctx, header, req)

		case fray.OpUnlink:
			req, _ := req.(*fray.UnlinkRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			err = h.Unlink(ctx, header, req)

		case fray.OpRmdir:
			req, _ := req.(*fray.RmdirRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			err = h.Rmdir(ctx, header, req)

		case fray.OpRename:
			req, _ := req.(*fray.RenameRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			err = h.Rename(ctx, header, req)

		case fray.OpLink:
			req, _ := req.(*fray.LinkRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			resp, err = h.Link(ctx, header, req)

		case fray.OpOpen:
			req, _ := req.(*fray.OpenRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			resp, err = h.Open(ctx, header, req)

		case fray.OpRead:
			req, _ := req.(*fray.ReadRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			resp, err = h.Read(ctx, header, req)

		case fray.OpWrite:
			req, _ := req.(*fray.WriteRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			resp, err = h.Write(ctx, header, req)

		case fray.OpRelease:
			req, _ := req.(*fray.ReleaseRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			err = h.Release(ctx, header, req)

		case fray.OpFsync:
			req, _ := req.(*fray.FsyncRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			err = h.Fsync(ctx, header, req)

		case fray.OpFlush:
			req, _ := req.(*fray.FlushRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			err = h.Flush(ctx, header, req)

		case fray.OpOpendir:
			req, _ := req.(*fray.OpenRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			resp, err = h.Opendir(ctx, header, req)

		case fray.OpReaddir:
			req, _ := req.(*fray.ReadRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			resp, err = h.Readdir(ctx, header, req)

		case fray.OpReleasedir:
			req, _ := req.(*fray.ReleaseRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			err = h.Releasedir(ctx, header, req)

		case fray.OpFsyncDir:
			req, _ := req.(*fray.FsyncRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			err = h.Fsyncdir(ctx, header, req)

		case fray.OpAccess:
			req, _ := req.(*fray.AccessRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			err = h.Access(ctx, header, req)

		case fray.OpCreate:
			req, _ := req.(*fray.CreateRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			resp, err = h.Create(ctx, header, req)

		case fray.OpBatchForget:
			req, _ := req.(*fray.BatchForgetRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			err = h.BatchForget(ctx, header, req)

		case fray.OpLseek:
			req, _ := req.(*fray.LseekRequest)
			if req == nil {
				err = fmt.Errorf("missing request body for %s: %w", header.Op, fray.ErrorInvalid)
				break
			}
			resp, err = h.Lseek(ctx, header, req)

		default:
			err = fmt.Errorf("unexpected opcode %q: %w", header.Op, fray.ErrorUnimplemented)
		}

		return resp, err
	}
}

type chainMiddleware []Middleware

func (c chainMiddleware) HandleRequest(ctx context.Context, h *fray.RequestHeader, req fray.Request, invoker Invoker) (fray.Response, error) {
	if len(c) == 0 {
		return invoker(ctx, h, req)
	}

	var (
		index        int
		chainInvoker Invoker
	)

	chainInvoker = func(ctx context.Context, h *fray.RequestHeader, req fray.Request) (fray.Response, error) {
		mw := c[index]
		index++

		var next Invoker
		if index == len(c) {
			next = invoker
		} else {
			next = chainInvoker
		}

		return mw.HandleRequest(ctx, h, req, next)
	}
	return chainInvoker(ctx, h, req)
}
