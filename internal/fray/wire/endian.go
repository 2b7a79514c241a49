package wire

import (
	"encoding/binary"
	"unsafe"
)

// The kernel writes header records in the byte order of the host, so all
// field access goes through the host order rather than a fixed one.
var hostEndian = func() binary.ByteOrder {
	x := uint16(1)
	if *(*byte)(unsafe.Pointer(&x)) == 1 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}()
