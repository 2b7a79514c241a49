package wire

import (
	"testing"

	"github.com/frayfs/fray/internal/fray"
	"github.com/stretchr/testify/require"
)

// fillInHeader populates the raw record the way the kernel would.
func fillInHeader(h *InHeader, totalLen uint32, op fray.Op, unique uint64, node uint64, uid, gid, pid uint32) {
	b := h.Bytes()
	hostEndian.PutUint32(b[0:4], totalLen)
	hostEndian.PutUint32(b[4:8], uint32(op))
	hostEndian.PutUint64(b[8:16], unique)
	hostEndian.PutUint64(b[16:24], node)
	hostEndian.PutUint32(b[24:28], uid)
	hostEndian.PutUint32(b[28:32], gid)
	hostEndian.PutUint32(b[32:36], pid)
}

func TestInHeader_Accessors(t *testing.T) {
	var h InHeader
	fillInHeader(&h, 61, fray.OpLookup, 42, 1, 1000, 1001, 4321)

	require.Equal(t, uint32(61), h.Len())
	require.Equal(t, fray.OpLookup, h.Op())
	require.Equal(t, uint32(fray.OpLookup), h.RawOp())
	require.Equal(t, uint64(42), h.Unique())
	require.Equal(t, fray.Node(1), h.Node())
	require.Equal(t, uint32(1000), h.UID())
	require.Equal(t, uint32(1001), h.GID())
	require.Equal(t, uint32(4321), h.PID())
}

func TestInHeader_ZeroValue(t *testing.T) {
	// A record that was never filled must read as all-zero fields, never as
	// indeterminate memory.
	var h InHeader
	require.Equal(t, uint32(0), h.Len())
	require.Equal(t, fray.Op(0), h.Op())
	require.Equal(t, uint64(0), h.Unique())
	require.Len(t, h.Bytes(), InHeaderSize)
}

func TestInHeader_UnrecognizedOp(t *testing.T) {
	var h InHeader
	fillInHeader(&h, InHeaderSize, fray.Op(9999), 7, 1, 0, 0, 0)

	// Decoding never fails; the code simply isn't part of the named set.
	require.False(t, h.Op().Known())
	require.Equal(t, uint32(9999), h.RawOp())
}

func TestInHeader_ArgLen(t *testing.T) {
	tt := []struct {
		name     string
		op       fray.Op
		totalLen uint32
		expect   int
	}{
		{"empty argument", fray.OpReadlink, InHeaderSize, 0},
		{"plain argument", fray.OpLookup, InHeaderSize + 6, 6},
		{"unrecognized op", fray.Op(9999), InHeaderSize + 100, 100},
		{"write uses the fixed prefix", fray.OpWrite, InHeaderSize + writePrefixSize + 4096, writePrefixSize},
		{"notify reply uses the fixed prefix", fray.OpNotifyReply, InHeaderSize + writePrefixSize + 512, writePrefixSize},
		{"undersized length clamps to zero", fray.OpLookup, 10, 0},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			var h InHeader
			fillInHeader(&h, tc.totalLen, tc.op, 1, 1, 0, 0, 0)
			require.Equal(t, tc.expect, h.ArgLen())
		})
	}
}

func TestOutHeader(t *testing.T) {
	h := NewOutHeader(42, -2, 21)

	require.Equal(t, uint64(42), h.Unique())
	require.Equal(t, int32(-2), h.Error())
	require.Equal(t, uint32(21), h.Len())
	require.Len(t, h.Bytes(), OutHeaderSize)
}
