package interp

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/frayfs/fray/internal/fray"
	"github.com/frayfs/fray/internal/fray/wire"
)

// testInHeader mirrors the kernel's request header record so tests can
// produce message bytes in host byte order.
type testInHeader struct {
	Len    uint32
	Opcode uint32
	Unique uint64
	NodeID uint64
	UID    uint32
	GID    uint32
	PID    uint32
	_      uint32
}

func rawBytes(p unsafe.Pointer, sz uintptr) []byte {
	return append([]byte(nil), unsafe.Slice((*byte)(p), sz)...)
}

// decodeRequest frames arg behind a header for op and runs it through the
// wire decoder, producing the Request that Parse consumes in production.
func decodeRequest(t *testing.T, op fray.Op, arg []byte) *wire.Request {
	t.Helper()

	hdr := testInHeader{
		Len:    uint32(wire.InHeaderSize + len(arg)),
		Opcode: uint32(op),
		Unique: 5,
		NodeID: 2,
		UID:    1000,
		GID:    1000,
		PID:    4242,
	}

	reads := [][]byte{rawBytes(unsafe.Pointer(&hdr), unsafe.Sizeof(hdr)), arg}
	var call int
	dec := wire.NewDecoder(wire.ReceiverFunc(func(p []byte) (int, error) {
		require.Less(t, call, len(reads), "decoder issued too many receives")
		n := copy(p, reads[call])
		call++
		return n, nil
	}))

	req, err := dec.Poll()
	require.NoError(t, err)
	return req
}

func TestParse_Lookup(t *testing.T) {
	req := decodeRequest(t, fray.OpLookup, []byte("hello.txt\x00"))

	hdr, body, err := Parse(req, nil)
	require.NoError(t, err)

	require.Equal(t, fray.RequestHeader{
		Op:     fray.OpLookup,
		Unique: 5,
		Node:   fray.Node(2),
		UID:    1000,
		GID:    1000,
		PID:    4242,
	}, hdr)
	require.Equal(t, &fray.LookupRequest{Name: "hello.txt"}, body)
}

func TestParse_LookupMissingTerminator(t *testing.T) {
	req := decodeRequest(t, fray.OpLookup, []byte("hello.txt"))

	_, _, err := Parse(req, nil)
	require.Error(t, err)
}

func TestParse_Rename(t *testing.T) {
	in := rawRenameIn{Newdir: 7}

	arg := rawBytes(unsafe.Pointer(&in), unsafe.Sizeof(in))
	arg = append(arg, "old\x00new\x00"...)

	req := decodeRequest(t, fray.OpRename, arg)

	_, body, err := Parse(req, nil)
	require.NoError(t, err)
	require.Equal(t, &fray.RenameRequest{
		NewDir:  fray.Node(7),
		OldName: "old",
		NewName: "new",
	}, body)
}

func TestParse_ShortArg(t *testing.T) {
	// A getattr argument section is 16 bytes; truncating it must surface as
	// an error, not a panic.
	req := decodeRequest(t, fray.OpGetattr, make([]byte, 8))

	_, _, err := Parse(req, nil)
	require.Error(t, err)
}

func TestParse_Write(t *testing.T) {
	in := rawWriteIn{
		Fh:     3,
		Offset: 4096,
		Size:   5,
	}

	trailer := []byte("hello, world")
	req := decodeRequest(t, fray.OpWrite, rawBytes(unsafe.Pointer(&in), unsafe.Sizeof(in)))

	_, body, err := Parse(req, trailer)
	require.NoError(t, err)

	wr, ok := body.(*fray.WriteRequest)
	require.True(t, ok)
	require.Equal(t, fray.Handle(3), wr.Handle)
	require.Equal(t, uint64(4096), wr.Offset)
	require.Equal(t, []byte("hello"), wr.Data)

	// The trailer is transport-owned; the parsed data must not alias it.
	trailer[0] = 'X'
	require.Equal(t, []byte("hello"), wr.Data)
}

func TestParse_WriteShortTrailer(t *testing.T) {
	in := rawWriteIn{Fh: 3, Size: 100}

	req := decodeRequest(t, fray.OpWrite, rawBytes(unsafe.Pointer(&in), unsafe.Sizeof(in)))

	_, _, err := Parse(req, []byte("too short"))
	require.Error(t, err)
}

func TestParse_BatchForget(t *testing.T) {
	in := rawBatchForgetIn{Count: 2}
	one := rawForgetOne{NodeID: 10, Nlookup: 1}
	two := rawForgetOne{NodeID: 11, Nlookup: 3}

	arg := rawBytes(unsafe.Pointer(&in), unsafe.Sizeof(in))
	arg = append(arg, rawBytes(unsafe.Pointer(&one), unsafe.Sizeof(one))...)
	arg = append(arg, rawBytes(unsafe.Pointer(&two), unsafe.Sizeof(two))...)

	req := decodeRequest(t, fray.OpBatchForget, arg)

	_, body, err := Parse(req, nil)
	require.NoError(t, err)
	require.Equal(t, &fray.BatchForgetRequest{
		Items: []fray.BatchForgetItem{
			{Node: fray.Node(10), NumLookups: 1},
			{Node: fray.Node(11), NumLookups: 3},
		},
	}, body)
}

func TestParse_Interrupt(t *testing.T) {
	in := rawInterruptIn{Unique: 77}

	req := decodeRequest(t, fray.OpInterrupt, rawBytes(unsafe.Pointer(&in), unsafe.Sizeof(in)))

	_, body, err := Parse(req, nil)
	require.NoError(t, err)
	require.Equal(t, &fray.InterruptRequest{Unique: 77}, body)
}

func TestParse_UnrecognizedOp(t *testing.T) {
	// Unrecognized ops still parse; the empty body tells the caller to
	// reject the request itself.
	req := decodeRequest(t, fray.Op(9000), nil)

	hdr, body, err := Parse(req, nil)
	require.NoError(t, err)
	require.Equal(t, fray.Op(9000), hdr.Op)
	require.Nil(t, body)
}
