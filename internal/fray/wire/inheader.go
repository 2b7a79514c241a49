package wire

import (
	"github.com/frayfs/fray/internal/fray"
)

// InHeaderSize is the size of the fixed header record prefixing every
// request message. It matches Linux's fuse_in_header, including the
// trailing padding.
const InHeaderSize = 40

// writePrefixSize is the fixed argument prefix carried by write and
// notify-reply messages (fuse_write_in and fuse_notify_retrieve_in have the
// same size). The true data payload follows the prefix and its length is
// only knowable from the prefix itself, not from the outer header.
const writePrefixSize = 40

// InHeader is the fixed header record of a request message. It is
// byte-for-byte compatible with the kernel's fuse_in_header record in host
// byte order, so it can be populated directly from transport bytes.
//
// The zero value is valid: a record that was never (or only partially)
// filled reads as all-zero fields rather than indeterminate memory.
type InHeader struct {
	raw [InHeaderSize]byte
}

// Bytes returns the mutable byte view of the record for the receive path.
func (h *InHeader) Bytes() []byte { return h.raw[:] }

// Len returns the total message size recorded in the header, including the
// header itself.
func (h *InHeader) Len() uint32 { return hostEndian.Uint32(h.raw[0:4]) }

// RawOp returns the undecoded operation code.
func (h *InHeader) RawOp() uint32 { return hostEndian.Uint32(h.raw[4:8]) }

// Op returns the operation code. Codes outside the named set still decode;
// they report Known() == false and are left for upstream interpretation to
// reject. Decoding an opcode never fails.
func (h *InHeader) Op() fray.Op { return fray.Op(h.RawOp()) }

// Unique returns the correlation ID linking this request to its response.
func (h *InHeader) Unique() uint64 { return hostEndian.Uint64(h.raw[8:16]) }

// Node returns the node the request operates on.
func (h *InHeader) Node() fray.Node { return fray.Node(hostEndian.Uint64(h.raw[16:24])) }

// UID returns the UID of the requesting user.
func (h *InHeader) UID() uint32 { return hostEndian.Uint32(h.raw[24:28]) }

// GID returns the GID of the requesting user.
func (h *InHeader) GID() uint32 { return hostEndian.Uint32(h.raw[28:32]) }

// PID returns the PID of the requesting process.
func (h *InHeader) PID() uint32 { return hostEndian.Uint32(h.raw[32:36]) }

// ArgLen returns the length of the argument section for this header.
//
// Write and notify-reply messages report only their fixed prefix: the data
// payload after the prefix is not generically sized by the outer header and
// must be collected by the transport (see fuse.Channel.Drain). Every other
// op carries Len minus the header record, which may be zero.
func (h *InHeader) ArgLen() int {
	switch h.Op() {
	case fray.OpWrite, fray.OpNotifyReply:
		return writePrefixSize
	default:
		if n := int(h.Len()); n > InHeaderSize {
			return n - InHeaderSize
		}
		return 0
	}
}
