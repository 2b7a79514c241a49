package wire

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// collectSender records everything transmitted into one flat buffer.
type collectSender struct {
	buf []byte
}

func (c *collectSender) SendMsg(header *OutHeader, chunks ...[]byte) error {
	c.buf = append(c.buf, header.Bytes()...)
	for _, chunk := range chunks {
		c.buf = append(c.buf, chunk...)
	}
	return nil
}

func outHeaderBytes(unique uint64, errno int32, length uint32) []byte {
	b := make([]byte, OutHeaderSize)
	hostEndian.PutUint32(b[0:4], length)
	hostEndian.PutUint32(b[4:8], uint32(errno))
	hostEndian.PutUint64(b[8:16], unique)
	return b
}

func TestEncoder_SendEmpty(t *testing.T) {
	var sender collectSender
	enc := NewEncoder(nil, &sender)

	require.NoError(t, enc.Send(42, 4))
	require.Equal(t, outHeaderBytes(42, 4, 16), sender.buf)
}

func TestEncoder_SendSingleChunk(t *testing.T) {
	var sender collectSender
	enc := NewEncoder(nil, &sender)

	require.NoError(t, enc.Send(42, 0, []byte("hello")))
	require.Equal(t, outHeaderBytes(42, 0, 21), sender.buf[:OutHeaderSize])
	require.Equal(t, []byte("hello"), sender.buf[OutHeaderSize:])
}

func TestEncoder_SendChunkedData(t *testing.T) {
	var sender collectSender
	enc := NewEncoder(nil, &sender)

	err := enc.Send(26, 0,
		[]byte("hello, "),
		[]byte("this "),
		[]byte("is a "),
		[]byte("message."),
	)
	require.NoError(t, err)

	require.Equal(t, outHeaderBytes(26, 0, 41), sender.buf[:OutHeaderSize])
	require.Equal(t, []byte("hello, this is a message."), sender.buf[OutHeaderSize:])
}

func TestEncoder_SenderError(t *testing.T) {
	sendErr := errors.New("device closed")
	enc := NewEncoder(nil, SenderFunc(func(*OutHeader, ...[]byte) error {
		return sendErr
	}))

	require.ErrorIs(t, enc.Send(1, 0, []byte("x")), sendErr)
}

func TestEncoder_HeaderMatchesChunkSum(t *testing.T) {
	var got *OutHeader
	enc := NewEncoder(nil, SenderFunc(func(h *OutHeader, chunks ...[]byte) error {
		got = h
		return nil
	}))

	require.NoError(t, enc.Send(99, -5, []byte("abc"), nil, []byte("defgh")))
	require.Equal(t, uint32(OutHeaderSize+8), got.Len())
	require.Equal(t, int32(-5), got.Error())
	require.Equal(t, uint64(99), got.Unique())
}
