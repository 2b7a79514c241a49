// Package fray implements the userspace side of the FUSE message protocol.
// The package is split in two halves: this package holds the portable
// protocol surface (opcodes, error numbers, typed operation messages), while
// the wire subpackage owns the byte-exact framing of messages exchanged with
// the kernel.
//
// fray speaks FUSE 7.31. Argument layouts for newer protocol revisions are
// not understood and decode to empty request bodies.
package fray

// Request is implemented by protocol request message types, which are sent
// by the kernel to the filesystem driver.
type Request interface {
	frayRequest()
}

// Response is implemented by protocol response message types, which are sent
// from the filesystem driver after processing a request.
type Response interface {
	frayResponse()
}
