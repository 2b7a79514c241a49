package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/frayfs/fray/internal/fray"
	"github.com/frayfs/fray/internal/fray/wire"
)

func TestErrorForResponse(t *testing.T) {
	tt := []struct {
		name   string
		err    error
		expect fray.Error
	}{
		{name: "nil", err: nil, expect: 0},
		{name: "deadline", err: context.DeadlineExceeded, expect: fray.ErrorAborted},
		{name: "canceled", err: context.Canceled, expect: fray.ErrorInterrupted},
		{name: "not exist", err: os.ErrNotExist, expect: fray.ErrorNotExist},
		{name: "permission", err: os.ErrPermission, expect: fray.ErrorNotPermitted},
		{name: "eof", err: io.EOF, expect: 0},
		{name: "protocol error", err: fray.ErrorStale, expect: fray.ErrorStale},
		{name: "wrapped protocol error", err: fmt.Errorf("outer: %w", fray.ErrorUnimplemented), expect: fray.ErrorUnimplemented},
		{name: "unknown", err: fmt.Errorf("something broke"), expect: fray.ErrorIO},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, errorForResponse(tc.err))
		})
	}
}

// Raw records for building kernel messages in host byte order.
type (
	testInHeader struct {
		Len    uint32
		Opcode uint32
		Unique uint64
		NodeID uint64
		UID    uint32
		GID    uint32
		PID    uint32
		_      uint32
	}

	testInitIn struct {
		Major        uint32
		Minor        uint32
		MaxReadahead uint32
		Flags        uint32
	}

	testInterruptIn struct {
		Unique uint64
	}

	testOutHeader struct {
		Len    uint32
		Error  int32
		Unique uint64
	}
)

func rawMessage(op fray.Op, unique uint64, arg []byte) []byte {
	hdr := testInHeader{
		Len:    uint32(wire.InHeaderSize + len(arg)),
		Opcode: uint32(op),
		Unique: unique,
		NodeID: 1,
	}
	msg := append([]byte(nil), unsafe.Slice((*byte)(unsafe.Pointer(&hdr)), unsafe.Sizeof(hdr))...)
	return append(msg, arg...)
}

type sentMsg struct {
	header  testOutHeader
	payload []byte
}

// fakeChannel is an in-memory Channel delivering scripted messages one at a
// time, the way the kernel device does.
type fakeChannel struct {
	mut     sync.Mutex
	inbox   [][]byte
	pending []byte
	closed  bool

	sent chan sentMsg
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{sent: make(chan sentMsg, 16)}
}

func (fc *fakeChannel) push(msg []byte) {
	fc.mut.Lock()
	defer fc.mut.Unlock()
	fc.inbox = append(fc.inbox, msg)
}

func (fc *fakeChannel) RecvMsg(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	fc.mut.Lock()
	defer fc.mut.Unlock()

	if len(fc.pending) == 0 {
		if fc.closed {
			return 0, io.EOF
		}
		if len(fc.inbox) == 0 {
			return 0, wire.ErrNotReady
		}
		fc.pending = fc.inbox[0]
		fc.inbox = fc.inbox[1:]
	}

	n := copy(p, fc.pending)
	fc.pending = fc.pending[n:]
	return n, nil
}

func (fc *fakeChannel) Drain() []byte {
	fc.mut.Lock()
	defer fc.mut.Unlock()

	rest := fc.pending
	fc.pending = nil
	return rest
}

func (fc *fakeChannel) WaitReady(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fc.mut.Lock()
		ready := len(fc.pending) > 0 || len(fc.inbox) > 0
		closed := fc.closed
		fc.mut.Unlock()

		if closed {
			return io.EOF
		}
		if ready {
			return nil
		}
		time.Sleep(time.Millisecond)
	}
}

func (fc *fakeChannel) SendMsg(header *wire.OutHeader, chunks ...[]byte) error {
	var msg sentMsg
	msg.header = *(*testOutHeader)(unsafe.Pointer(&header.Bytes()[0]))
	for _, c := range chunks {
		msg.payload = append(msg.payload, c...)
	}
	fc.sent <- msg
	return nil
}

func (fc *fakeChannel) Close() error {
	fc.mut.Lock()
	defer fc.mut.Unlock()
	fc.closed = true
	return nil
}

func (fc *fakeChannel) waitSent(t *testing.T) sentMsg {
	t.Helper()
	select {
	case msg := <-fc.sent:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a response")
		return sentMsg{}
	}
}

type lookupHandler struct {
	Unimplemented
}

func (lookupHandler) Lookup(_ context.Context, _ *fray.RequestHeader, req *fray.LookupRequest) (*fray.EntryResponse, error) {
	if req.Name != "hello.txt" {
		return nil, fray.ErrorNotExist
	}
	return &fray.EntryResponse{
		Entry: fray.Entry{Node: fray.Node(2), Attrib: fray.Attrib{Inode: 2, Mode: 0o644}},
	}, nil
}

func initMessage(unique uint64) []byte {
	in := testInitIn{Major: fray.MinVersion.Major, Minor: fray.MinVersion.Minor, MaxReadahead: 4096}
	return rawMessage(fray.OpInit, unique, unsafe.Slice((*byte)(unsafe.Pointer(&in)), unsafe.Sizeof(in)))
}

func TestSession(t *testing.T) {
	fc := newFakeChannel()
	fc.push(initMessage(1))

	sess, err := New(nil, Options{
		Channel: fc,
		Handler: lookupHandler{},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveDone := make(chan error, 1)
	go func() { serveDone <- sess.Serve(ctx) }()

	// Handshake.
	got := fc.waitSent(t)
	require.Equal(t, uint64(1), got.header.Unique)
	require.Zero(t, got.header.Error)
	require.NotEmpty(t, got.payload)

	// A request the handler implements.
	fc.push(rawMessage(fray.OpLookup, 2, []byte("hello.txt\x00")))
	got = fc.waitSent(t)
	require.Equal(t, uint64(2), got.header.Unique)
	require.Zero(t, got.header.Error)
	require.NotEmpty(t, got.payload)
	require.Equal(t, uint32(wire.OutHeaderSize+len(got.payload)), got.header.Len)

	// A request the handler rejects.
	fc.push(rawMessage(fray.OpLookup, 3, []byte("missing\x00")))
	got = fc.waitSent(t)
	require.Equal(t, uint64(3), got.header.Unique)
	require.Equal(t, int32(fray.ErrorNotExist), got.header.Error)
	require.Empty(t, got.payload)

	// A request the handler doesn't implement.
	fc.push(rawMessage(fray.OpReadlink, 4, nil))
	got = fc.waitSent(t)
	require.Equal(t, uint64(4), got.header.Unique)
	require.Equal(t, int32(fray.ErrorUnimplemented), got.header.Error)

	// Interrupting a request that isn't running fails.
	in := testInterruptIn{Unique: 9999}
	fc.push(rawMessage(fray.OpInterrupt, 5, unsafe.Slice((*byte)(unsafe.Pointer(&in)), unsafe.Sizeof(in))))
	got = fc.waitSent(t)
	require.Equal(t, uint64(5), got.header.Unique)
	require.Equal(t, int32(fray.ErrorInvalid), got.header.Error)

	// Destroy ends the session.
	fc.push(rawMessage(fray.OpDestroy, 6, nil))
	got = fc.waitSent(t)
	require.Equal(t, uint64(6), got.header.Unique)

	cancel()
	select {
	case err := <-serveDone:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for Serve to exit")
	}
}

type blockingHandler struct {
	Unimplemented

	started chan struct{}
}

func (h *blockingHandler) Lookup(ctx context.Context, _ *fray.RequestHeader, _ *fray.LookupRequest) (*fray.EntryResponse, error) {
	select {
	case h.started <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestSession_CancelWithSaturatedWorkers(t *testing.T) {
	fc := newFakeChannel()
	fc.push(initMessage(1))

	handler := &blockingHandler{started: make(chan struct{}, 1)}
	sess, err := New(nil, Options{
		ConcurrencyLimit: 1,
		Channel:          fc,
		Handler:          handler,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveDone := make(chan error, 1)
	go func() { serveDone <- sess.Serve(ctx) }()

	got := fc.waitSent(t)
	require.Equal(t, uint64(1), got.header.Unique)

	// With one worker stuck in the handler, further requests pile up until
	// the task buffer is full and the read loop is waiting to queue more.
	// Cancelling now must still shut the session down.
	fc.push(rawMessage(fray.OpLookup, 2, []byte("a\x00")))
	fc.push(rawMessage(fray.OpLookup, 3, []byte("b\x00")))
	fc.push(rawMessage(fray.OpLookup, 4, []byte("c\x00")))

	select {
	case <-handler.started:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the handler to start")
	}
	time.Sleep(50 * time.Millisecond)

	cancel()
	select {
	case err := <-serveDone:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for Serve to exit")
	}
}

func TestSession_RejectsBeforeHandshake(t *testing.T) {
	fc := newFakeChannel()
	fc.push(rawMessage(fray.OpLookup, 1, []byte("early\x00")))
	fc.push(initMessage(2))

	sess, err := New(nil, Options{
		Channel: fc,
		Handler: lookupHandler{},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveDone := make(chan error, 1)
	go func() { serveDone <- sess.Serve(ctx) }()

	// The pre-handshake lookup is dropped; the first response must be the
	// handshake reply.
	got := fc.waitSent(t)
	require.Equal(t, uint64(2), got.header.Unique)

	cancel()
	select {
	case err := <-serveDone:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for Serve to exit")
	}
}
