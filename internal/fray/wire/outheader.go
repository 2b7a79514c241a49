package wire

// OutHeaderSize is the size of the fixed header record prefixing every
// response or notification message. It matches Linux's fuse_out_header.
const OutHeaderSize = 16

// OutHeader is the fixed header record of a response message, byte-for-byte
// compatible with the kernel's fuse_out_header in host byte order. It is
// constructed fresh for every outgoing message and never mutated afterward.
type OutHeader struct {
	raw [OutHeaderSize]byte
}

// NewOutHeader builds a header for one outbound message. length must
// already include the header record itself.
func NewOutHeader(unique uint64, errno int32, length uint32) OutHeader {
	var h OutHeader
	hostEndian.PutUint32(h.raw[0:4], length)
	hostEndian.PutUint32(h.raw[4:8], uint32(errno))
	hostEndian.PutUint64(h.raw[8:16], unique)
	return h
}

// Bytes returns the byte view of the record for transmission.
func (h *OutHeader) Bytes() []byte { return h.raw[:] }

// Len returns the total message size, header record included.
func (h *OutHeader) Len() uint32 { return hostEndian.Uint32(h.raw[0:4]) }

// Error returns the error number of the response. Zero means success;
// negative values are inverted POSIX error codes.
func (h *OutHeader) Error() int32 { return int32(hostEndian.Uint32(h.raw[4:8])) }

// Unique returns the correlation ID copied from the originating request.
func (h *OutHeader) Unique() uint64 { return hostEndian.Uint64(h.raw[8:16]) }
