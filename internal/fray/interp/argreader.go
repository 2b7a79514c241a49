package interp

import (
	"bytes"
	"unsafe"
)

// argReader pops individual FUSE arguments off of the argument section.
// Any method that runs out of data panics with errIncomplete, which Parse
// recovers into an error.
type argReader struct {
	data []byte
	off  int
}

// String pops a NUL-terminated string.
func (ar *argReader) String() string {
	buf := ar.data[ar.off:]
	nul := bytes.IndexByte(buf, 0)
	if len(buf) == 0 || nul == -1 {
		panic(errIncomplete)
	}

	res := buf[:nul]
	ar.off += len(res) + 1 // consume the NUL byte too
	return string(res)
}

// Bytes pops n bytes, copied out of the argument section.
func (ar *argReader) Bytes(n int) []byte {
	buf := ar.data[ar.off:]
	res := make([]byte, n)
	copied := copy(res, buf)
	if copied != n {
		panic(errIncomplete)
	}
	ar.off += copied
	return res
}

// Pointer pops sz bytes and returns a pointer to them. The pointed-at data
// must be dereferenced immediately and not retained.
func (ar *argReader) Pointer(sz uintptr) unsafe.Pointer {
	buf := ar.data[ar.off:]
	if len(buf) < int(sz) {
		panic(errIncomplete)
	}
	ar.off += int(sz)
	return unsafe.Pointer(&buf[0])
}
