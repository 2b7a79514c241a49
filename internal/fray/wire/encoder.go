package wire

import (
	"math"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Encoder frames outbound response and notification messages onto a
// Sender. Each Send is a one-shot operation with no partial-message state:
// suspension, if any, happens inside the Sender.
type Encoder struct {
	log  log.Logger
	send Sender
}

// NewEncoder returns an Encoder transmitting on s.
func NewEncoder(l log.Logger, s Sender) *Encoder {
	if l == nil {
		l = log.NewNopLogger()
	}
	return &Encoder{log: l, send: s}
}

// Send frames and transmits one message: a header built from unique, errno
// and the computed total length, followed by the payload chunks in order.
//
// The total length must fit the header's 32-bit length field. Protocol
// limits keep real messages far below that bound, so an overflow is a
// programming error and panics rather than returning.
func (e *Encoder) Send(unique uint64, errno int32, chunks ...[]byte) error {
	var payload uint64
	for _, c := range chunks {
		payload += uint64(len(c))
	}
	length := uint64(OutHeaderSize) + payload
	if length > math.MaxUint32 {
		panic("wire: response length overflows the header length field")
	}

	header := NewOutHeader(unique, errno, uint32(length))
	if err := e.send.SendMsg(&header, chunks...); err != nil {
		return err
	}
	level.Debug(e.log).Log("msg", "sent message", "unique", unique, "errno", errno)
	return nil
}
