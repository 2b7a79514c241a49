package wire

import (
	"fmt"
)

// ShortReadError reports that a receive transferred fewer bytes than the
// protocol requires at the given stage. It aborts the decode; no partial
// Request is ever produced.
type ShortReadError struct {
	Stage string // "header" or "argument"
	Got   int
	Want  int
}

// Error implements error.
func (e *ShortReadError) Error() string {
	return fmt.Sprintf("wire: short %s read: got %d bytes, want %d", e.Stage, e.Got, e.Want)
}

// Request is one fully decoded inbound message: the fixed header record
// plus the owned argument section. A Request is constructed exactly once
// per decode and has no mutators.
type Request struct {
	header *InHeader
	arg    []byte
}

// Header returns the fixed header record of the request.
func (r *Request) Header() *InHeader { return r.header }

// Arg returns the argument section. Its length always equals
// Header().ArgLen().
func (r *Request) Arg() []byte { return r.arg }

type decodeState int

const (
	stateInit decodeState = iota
	stateReadingHeader
	stateReadingArg
	stateDone
)

// Decoder is a resumable state machine producing one Request from a
// Receiver. Poll drives it; when the Receiver reports ErrNotReady the
// Decoder suspends with its progress intact and Poll can simply be called
// again later. Abandoning a Decoder at any point is safe: the header record
// and argument buffer are owned by the Decoder and are released normally.
//
// A Decoder decodes exactly one message. After Poll returns a Request,
// calling Poll again is a contract violation and panics. After Poll returns
// an error other than ErrNotReady the decode has aborted and the Decoder
// must be discarded.
type Decoder struct {
	recv   Receiver
	state  decodeState
	header *InHeader
	arg    []byte
}

// NewDecoder returns a Decoder reading one message from r.
func NewDecoder(r Receiver) *Decoder {
	return &Decoder{recv: r}
}

// Poll advances the decode as far as the Receiver allows. It returns
// (nil, ErrNotReady) to suspend, (nil, err) when the decode aborted, or the
// completed Request.
func (d *Decoder) Poll() (*Request, error) {
	for {
		switch d.state {
		case stateInit:
			// Allocation zeroes the record, so an under-filled receive can
			// never leave indeterminate bytes behind.
			d.header = new(InHeader)
			d.state = stateReadingHeader

		case stateReadingHeader:
			n, err := d.recv.RecvMsg(d.header.Bytes())
			if err != nil {
				// ErrNotReady suspends with the state unchanged; everything
				// else aborts the decode.
				return nil, err
			}
			if n < InHeaderSize {
				return nil, &ShortReadError{Stage: "header", Got: n, Want: InHeaderSize}
			}
			d.arg = make([]byte, 0, d.header.ArgLen())
			d.state = stateReadingArg

		case stateReadingArg:
			// Expose the buffer's full capacity as the fill target while the
			// observable length stays zero. Only an exact full fill disarms
			// the guard; every other exit leaves the length at zero.
			buf := d.arg[:cap(d.arg)]
			n, err := d.recv.RecvMsg(buf)
			if err != nil {
				return nil, err
			}
			if n < len(buf) {
				return nil, &ShortReadError{Stage: "argument", Got: n, Want: len(buf)}
			}
			d.arg = buf[:n]
			d.state = stateDone
			return &Request{header: d.header, arg: d.arg}, nil

		case stateDone:
			panic("wire: Poll called on a completed Decoder")
		}
	}
}
