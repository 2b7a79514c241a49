// Package wire implements the framing of FUSE messages: the byte-exact
// header records prefixing every message, the resumable decoder that turns
// inbound channel bytes into requests, and the encoder that frames outbound
// responses.
//
// The package is deliberately agnostic about what the bytes mean. Turning
// argument bytes into typed operations is the job of the interp package, and
// transports (see the fuse package) only need to satisfy the small Receiver
// and Sender capabilities defined here.
//
// Everything in this package is poll-driven: a Receiver or Sender that has
// no progress to offer reports ErrNotReady and the caller re-polls once the
// underlying channel is ready again. No goroutines are started and no state
// is shared between concurrently active decodes.
package wire

import "errors"

// ErrNotReady is reported by a Receiver or Sender when the underlying
// channel cannot make progress yet. The caller should retry once the
// channel becomes ready; all other errors are final.
var ErrNotReady = errors.New("wire: channel not ready")

// A Receiver is a non-blocking source of inbound message bytes. RecvMsg
// attempts to fill p from the channel and reports the number of bytes
// copied. It returns ErrNotReady when no bytes are available yet, leaving p
// untouched, and surfaces transport errors unchanged.
//
// An empty p must succeed immediately without consuming channel data.
type Receiver interface {
	RecvMsg(p []byte) (int, error)
}

// ReceiverFunc adapts a function to the Receiver interface.
type ReceiverFunc func(p []byte) (int, error)

// RecvMsg implements Receiver.
func (f ReceiverFunc) RecvMsg(p []byte) (int, error) { return f(p) }

// A Sender transmits one framed outbound message: the header followed by
// the payload chunks in order, as a single logical unit. A failed send has
// no defined partial-write recovery; the framing layer never retries.
type Sender interface {
	SendMsg(header *OutHeader, chunks ...[]byte) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(header *OutHeader, chunks ...[]byte) error

// SendMsg implements Sender.
func (f SenderFunc) SendMsg(header *OutHeader, chunks ...[]byte) error {
	return f(header, chunks...)
}
