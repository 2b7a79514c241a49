// Package session runs the userspace side of a FUSE session: it decodes
// framed messages off a channel, interprets them into typed requests,
// dispatches those to a Handler through a middleware chain, and encodes the
// responses back to the kernel.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hashicorp/go-multierror"
	uuid "github.com/satori/go.uuid"

	"github.com/frayfs/fray/internal/fray"
	"github.com/frayfs/fray/internal/fray/fuse"
	"github.com/frayfs/fray/internal/fray/interp"
	"github.com/frayfs/fray/internal/fray/record"
	"github.com/frayfs/fray/internal/fray/wire"
)

// Channel is the raw message channel a Session serves. fuse.Channel
// implements it; tests substitute in-memory channels.
type Channel interface {
	wire.Receiver
	wire.Sender

	// WaitReady blocks until a receive can make progress, ctx is done, or
	// the channel is dead.
	WaitReady(ctx context.Context) error

	// Drain returns the unconsumed remainder of the current message. The
	// result is only valid until the next receive.
	Drain() []byte

	Close() error
}

type Options struct {
	// ConcurrencyLimit is the maximum number of concurrent requests a
	// Session can run. If ConcurrencyLimit is <= 0, it will obtain its
	// default from DefaultOptions.
	ConcurrencyLimit int

	// RequestTimeout will force a request to abort after a given amount of
	// time. 0 means to never time out.
	RequestTimeout time.Duration

	// Channel is used to read and write messages. Session takes ownership
	// of the Channel after passing to New; do not close directly.
	Channel Channel

	// Handler is used for handling individual requests.
	Handler Handler

	// Optional middleware to preprocess requests with.
	Middleware []Middleware

	// Optional Recorder to persist message activity to.
	Recorder record.Recorder
}

// DefaultOptions provides defaults for Session.
var DefaultOptions = Options{
	ConcurrencyLimit: 64,
}

// Session asynchronously handles requests from a channel by passing them to
// a Handler.
type Session struct {
	log log.Logger
	o   Options
	id  string

	enc *wire.Encoder

	// The middleware to execute before the handler
	mw      Middleware
	handler Invoker

	closeOnce sync.Once
	closeErr  error
}

// New creates a new Session. Read messages will be passed to Handler for
// handling.
//
// Call Serve to start the Session.
func New(l log.Logger, o Options) (*Session, error) {
	if o.Channel == nil {
		return nil, fmt.Errorf("Channel must be set")
	}
	if o.Handler == nil {
		return nil, fmt.Errorf("Handler must be set")
	}
	if o.ConcurrencyLimit <= 0 {
		o.ConcurrencyLimit = DefaultOptions.ConcurrencyLimit
	}

	if l == nil {
		l = log.NewNopLogger()
	}
	id := uuid.NewV4().String()
	l = log.With(l, "session", id)

	return &Session{
		log:     l,
		o:       o,
		id:      id,
		enc:     wire.NewEncoder(l, o.Channel),
		mw:      chainMiddleware(o.Middleware),
		handler: handlerInvoker(o.Handler),
	}, nil
}

// ID returns the unique ID assigned to this session.
func (s *Session) ID() string { return s.id }

// Serve starts the session. Serve only returns if there was an error while
// serving or if ctx is canceled.
//
// Serve should not be called again after it has exited.
func (s *Session) Serve(ctx context.Context) error {
	// We want to close the channel and handler after we're done serving.
	// Serving may be blocked waiting on the channel, so we launch a
	// dedicated goroutine just for waiting for context to cancel, and never
	// return until it exits.
	exited := make(chan struct{})
	defer func() { <-exited }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		defer close(exited)
		<-ctx.Done()

		level.Info(s.log).Log("msg", "session exiting")
		defer level.Debug(s.log).Log("msg", "session exited")

		if err := s.Close(); err != nil {
			level.Error(s.log).Log("msg", "error while closing session", "err", err)
		}
	}()

	type payload struct {
		ctx    context.Context
		cancel context.CancelFunc

		header fray.RequestHeader
		req    fray.Request
	}

	var (
		runningWorkers sync.WaitGroup

		tasks  sync.Map
		taskCh = make(chan payload, s.o.ConcurrencyLimit)
	)

	for i := 0; i < s.o.ConcurrencyLimit; i++ {
		runningWorkers.Add(1)
		go func() {
			defer runningWorkers.Done()

			for {
				select {
				case <-ctx.Done():
					return
				case task := <-taskCh:
					handleRequest(task.ctx, s, task.header, task.req, func() {
						task.cancel()
						tasks.Delete(task.header.Unique)
					})
				}
			}
		}()
	}

	scheduleTask := func(header fray.RequestHeader, req fray.Request) {
		ctx, cancel := context.WithCancel(ctx)
		task := payload{
			ctx:    ctx,
			cancel: cancel,
			header: header,
			req:    req,
		}
		tasks.Store(header.Unique, task)
		select {
		case taskCh <- task:
		case <-ctx.Done():
			// Shutting down; the workers may already be gone, so the task
			// is dropped rather than queued.
			task.cancel()
			tasks.Delete(header.Unique)
		}
	}
	stopTask := func(unique uint64) bool {
		v, ok := tasks.Load(unique)
		if !ok {
			return false
		}
		v.(payload).cancel()
		return true
	}
	defer func() {
		// Stop all of our workers.
		cancel()
		runningWorkers.Wait()
	}()

	// The first protocol message should always be an Init. Inits may be
	// sent multiple times while the peers are agreeing on a protocol
	// version to use. Until the handshake completes, no other request will
	// be processed.
	var didHandshake bool

	for {
		// Do an early return if our context has been canceled.
		if ctx.Err() != nil {
			level.Debug(s.log).Log("msg", "context canceled, breaking out of session read loop")
			return nil
		}

		wreq, trailer, err := s.recv(ctx)
		if errors.Is(err, io.EOF) {
			level.Debug(s.log).Log("msg", "got EOF from channel; exiting")
			return nil
		} else if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		} else if err != nil {
			level.Error(s.log).Log("msg", "got error from channel; exiting", "err", err)
			return err
		}

		header, req, err := interp.Parse(wreq, trailer)
		if err != nil {
			// A message we can't interpret is rejected, not fatal: the
			// kernel is still waiting on an answer for its unique.
			level.Warn(s.log).Log("msg", "failed to interpret message", "op", header.Op, "err", err)
			s.sendResponse(fray.ResponseHeader{
				Op:     header.Op,
				Unique: header.Unique,
				Error:  fray.ErrorInvalid,
			}, nil)
			continue
		}
		s.record(record.DirRecv, header, 0, wreq.Header().Len())

		switch header.Op {
		default:
			if !didHandshake {
				level.Warn(s.log).Log("msg", "ignoring unexpected message sent before handshake completed", "op", header.Op, "op_val", int(header.Op))
				continue
			}
			scheduleTask(header, req)

		case fray.OpInit:
			req, _ := req.(*fray.InitRequest)
			if req == nil {
				level.Error(s.log).Log("msg", "protocol error: got init request without request payload")
				return fmt.Errorf("missing init message payload from peer")
			}
			level.Debug(s.log).Log("msg", "got handshake request")

			if didHandshake {
				level.Warn(s.log).Log("msg", "ignoring unexpected post-handshake init message")
				continue
			}
			var err error
			didHandshake, err = s.processHandshake(header, req)
			if err == nil && didHandshake {
				err = s.o.Handler.Init(ctx)
			}
			if err != nil {
				return err
			}

		case fray.OpDestroy:
			level.Debug(s.log).Log("msg", "received shutdown request from peer")
			s.sendResponse(responseHeader(header, nil), nil)
			return nil

		case fray.OpInterrupt:
			req, _ := req.(*fray.InterruptRequest)
			if req == nil {
				level.Error(s.log).Log("msg", "protocol error: got interrupt request without request payload")
				return fmt.Errorf("missing interrupt message payload from peer")
			}
			level.Debug(s.log).Log("msg", "received interrupt request from peer", "unique", req.Unique)
			respHeader := responseHeader(header, nil)
			if !stopTask(req.Unique) {
				respHeader.Error = fray.ErrorInvalid
			}
			s.sendResponse(respHeader, nil)
		}
	}
}

// recv decodes one message off the channel, suspending on WaitReady
// whenever the channel has nothing to deliver. The returned trailer holds
// the data payload following the fixed argument prefix of write-style
// messages and is only valid until the next receive.
func (s *Session) recv(ctx context.Context) (*wire.Request, []byte, error) {
	dec := wire.NewDecoder(s.o.Channel)

	var req *wire.Request
	for {
		var err error
		req, err = dec.Poll()
		if errors.Is(err, wire.ErrNotReady) {
			if werr := s.o.Channel.WaitReady(ctx); werr != nil {
				return nil, nil, werr
			}
			continue
		} else if err != nil {
			return nil, nil, err
		}
		break
	}

	var trailer []byte
	switch req.Header().Op() {
	case fray.OpWrite, fray.OpNotifyReply:
		trailer = s.o.Channel.Drain()
	}
	return req, trailer, nil
}

func handleRequest(ctx context.Context, s *Session, header fray.RequestHeader, req fray.Request, done func()) {
	defer done()

	if s.o.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.o.RequestTimeout)
		defer cancel()
	}

	resp, err := s.mw.HandleRequest(ctx, &header, req, s.handler)
	if header.Op == fray.OpForget || header.Op == fray.OpBatchForget {
		// Forgets don't generate responses.
		return
	}
	s.sendResponse(responseHeader(header, err), resp)
}

func (s *Session) sendResponse(h fray.ResponseHeader, resp fray.Response) {
	// Error responses carry no payload.
	if h.Error != 0 {
		resp = nil
	}

	chunks, err := interp.Chunks(resp)
	if err != nil {
		level.Error(s.log).Log("msg", "failed to marshal response", "op", h.Op, "err", err)
		h.Error = fray.ErrorIO
		chunks = nil
	}

	if err := s.enc.Send(h.Unique, int32(h.Error), chunks...); err != nil {
		level.Error(s.log).Log("msg", "failed to write response to channel", "err", err)
		return
	}

	var payload uint32
	for _, c := range chunks {
		payload += uint32(len(c))
	}
	s.record(record.DirSend, fray.RequestHeader{Op: h.Op, Unique: h.Unique}, int32(h.Error), wire.OutHeaderSize+payload)
}

func (s *Session) record(dir record.Direction, hdr fray.RequestHeader, errno int32, msgLen uint32) {
	if s.o.Recorder == nil {
		return
	}
	err := s.o.Recorder.Record(record.Entry{
		Session: s.id,
		Dir:     dir,
		Op:      uint32(hdr.Op),
		Unique:  hdr.Unique,
		Errno:   errno,
		Len:     msgLen,
		Time:    time.Now(),
	})
	if err != nil {
		level.Warn(s.log).Log("msg", "failed to record message", "err", err)
	}
}

// Close releases the session's channel, handler, and recorder. It is
// called automatically when Serve exits.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs *multierror.Error
		if err := s.o.Channel.Close(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("closing channel: %w", err))
		}
		if err := s.o.Handler.Close(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("closing handler: %w", err))
		}
		if s.o.Recorder != nil {
			if err := s.o.Recorder.Close(); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("closing recorder: %w", err))
			}
		}
		s.closeErr = errs.ErrorOrNil()
	})
	return s.closeErr
}

func responseHeader(req fray.RequestHeader, err error) fray.ResponseHeader {
	return fray.ResponseHeader{
		Op:     req.Op,
		Unique: req.Unique,
		Error:  errorForResponse(err),
	}
}

func errorForResponse(err error) fray.Error {
	if err == nil {
		return 0
	}

	// Check for common system-level errors.
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fray.ErrorAborted
	case errors.Is(err, context.Canceled):
		return fray.ErrorInterrupted
	case os.IsNotExist(err):
		return fray.ErrorNotExist
	case os.IsPermission(err):
		return fray.ErrorNotPermitted
	case errors.Is(err, os.ErrNotExist):
		return fray.ErrorNotExist
	case errors.Is(err, io.EOF):
		return 0
	}

	var fe fray.Error
	if errors.As(err, &fe) {
		return fe
	}
	return fray.ErrorIO
}

// processHandshake processes the handshake sent by the peer. If complete is
// false, the handshake is expected to be sent again.
func (s *Session) processHandshake(header fray.RequestHeader, init *fray.InitRequest) (complete bool, err error) {
	supported := fray.InitAsyncRead |
		fray.InitBigWrites |
		fray.InitNoUmask |
		fray.InitAutoInvalidateCache |
		fray.InitAsyncDIO |
		fray.InitWritebackCache |
		fray.InitParallelDirOps |
		fray.InitAbortError |
		fray.InitMaxPages |
		fray.InitCacheSymlinks

	pagesize := syscall.Getpagesize()
	resp := &fray.InitResponse{
		EarliestVersion:     fray.MinVersion,
		MaxReadahead:        init.MaxReadahead,
		MaxWrite:            fuse.MaxWrite,
		MaxBackground:       uint16(s.o.ConcurrencyLimit),
		CongestionThreshold: uint16(s.o.ConcurrencyLimit * 3 / 4),
		MaxPages:            uint16((int(fuse.MaxWrite) + pagesize - 1) / pagesize),
		Flags:               init.Flags & supported,
	}

	if init.LatestVersion.Major > fray.MinVersion.Major {
		// Kernel is too new. Let's tell it which version we support.
		s.sendResponse(responseHeader(header, nil), resp)
		return false, nil
	}
	if init.LatestVersion.Major < fray.MinVersion.Major {
		return false, fmt.Errorf("peer version %s too old for local version %s", init.LatestVersion, fray.MinVersion)
	}
	if init.LatestVersion.Minor < fray.MinVersion.Minor {
		level.Warn(s.log).Log(
			"msg", "peer version doesn't match local version. things may subtly break",
			"peer", init.LatestVersion, "local", fray.MinVersion,
		)
	}

	s.sendResponse(responseHeader(header, nil), resp)
	return true, nil
}
