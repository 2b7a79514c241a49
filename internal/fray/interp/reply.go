package interp

import (
	"fmt"
	"unsafe"

	"github.com/frayfs/fray/internal/fray"
)

// Chunks marshals a typed response into the ordered payload chunks for the
// wire encoder. A nil response produces no payload. Bulk data (read
// results, link contents) is passed through as its own chunk without
// copying.
func Chunks(resp fray.Response) ([][]byte, error) {
	switch resp := resp.(type) {
	case nil:
		return nil, nil

	case *fray.EntryResponse:
		var (
			pw  payload
			out = toRawEntryOut(resp.Entry)
		)
		*(*rawEntryOut)(pw.allocp(unsafe.Sizeof(out))) = out
		return [][]byte{pw}, nil

	case *fray.AttrResponse:
		var (
			pw  payload
			out = rawAttrOut{
				AttrValid:     toSecondFrag(resp.TTL),
				AttrValidNsec: toNanosecondFrag(resp.TTL),
				Attr:          toRawAttr(resp.Attrib),
			}
		)
		*(*rawAttrOut)(pw.allocp(unsafe.Sizeof(out))) = out
		return [][]byte{pw}, nil

	case *fray.ReadlinkResponse:
		return [][]byte{resp.Contents}, nil

	case *fray.OpenedResponse:
		var (
			pw  payload
			out = rawOpenOut{
				Fh:        uint64(resp.Handle),
				OpenFlags: uint32(resp.OpenedFlags),
			}
		)
		*(*rawOpenOut)(pw.allocp(unsafe.Sizeof(out))) = out
		return [][]byte{pw}, nil

	case *fray.ReadResponse:
		return [][]byte{resp.Data}, nil

	case *fray.WriteResponse:
		var (
			pw  payload
			out = rawWriteOut{Size: resp.Written}
		)
		*(*rawWriteOut)(pw.allocp(unsafe.Sizeof(out))) = out
		return [][]byte{pw}, nil

	case *fray.InitResponse:
		var (
			pw  payload
			out = rawInitOut{
				Major:               resp.EarliestVersion.Major,
				Minor:               resp.EarliestVersion.Minor,
				MaxReadahead:        resp.MaxReadahead,
				Flags:               uint32(resp.Flags),
				MaxBackground:       resp.MaxBackground,
				CongestionThreshold: resp.CongestionThreshold,
				MaxWrite:            resp.MaxWrite,
				TimeGran:            resp.TimeGran,
				MaxPages:            resp.MaxPages,
				MapAlignment:        resp.MapAlignment,
			}
		)
		*(*rawInitOut)(pw.allocp(unsafe.Sizeof(out))) = out
		return [][]byte{pw}, nil

	case *fray.ReaddirResponse:
		return [][]byte{marshalDirents(resp.Entries)}, nil

	case *fray.CreateResponse:
		var (
			pw  payload
			ent = toRawEntryOut(resp.Entry)
			out = rawOpenOut{
				Fh:        uint64(resp.Handle),
				OpenFlags: uint32(resp.OpenedFlags),
			}
		)
		*(*rawEntryOut)(pw.allocp(unsafe.Sizeof(ent))) = ent
		*(*rawOpenOut)(pw.allocp(unsafe.Sizeof(out))) = out
		return [][]byte{pw}, nil

	case *fray.LseekResponse:
		var (
			pw  payload
			out = rawLseekOut{Offset: resp.Offset}
		)
		*(*rawLseekOut)(pw.allocp(unsafe.Sizeof(out))) = out
		return [][]byte{pw}, nil

	default:
		return nil, fmt.Errorf("interp: unknown response type %T", resp)
	}
}

// marshalDirents lays out a directory listing as the kernel expects: a
// (rawDirent, name) tuple per entry, each tuple padded so the next one
// starts 64-bit aligned. Offsets are relative to the start of the listing.
func marshalDirents(ents []fray.DirEntry) []byte {
	var pw payload

	var offset uint64
	for _, ent := range ents {
		// Directory entry names carry no NUL terminator.
		nameBytes := []byte(ent.Name)

		rawEnt := rawDirent{
			Ino:     ent.Inode,
			Offset:  offset,
			NameLen: uint32(len(nameBytes)),
			Type:    uint32(ent.Type),
		}

		*(*rawDirent)(pw.allocp(unsafe.Sizeof(rawEnt))) = rawEnt
		pw.bytes(nameBytes)

		rawSize := uint64(unsafe.Sizeof(rawEnt)) + uint64(len(nameBytes))
		written := rawSize
		if aligned := align64(rawSize); aligned > rawSize {
			padding := aligned - rawSize
			pw.bytes(make([]byte, padding))
			written += padding
		}

		offset += written
	}

	return pw
}

// align64 rounds numBytes up to the next multiple of 8 bytes. Values that
// are already aligned stay unchanged.
func align64(numBytes uint64) uint64 {
	const size64 = uint64(unsafe.Sizeof(uint64(0)))
	return (numBytes + size64 - 1) & ^(size64 - 1)
}

// payload accumulates marshalled response bytes.
type payload []byte

// alloc grows the payload by n bytes and returns the new region. The
// region is exactly n bytes long; do not append to it.
func (b *payload) alloc(n int) []byte {
	if len(*b)+n > cap(*b) {
		old := *b
		*b = make([]byte, len(*b), 2*cap(*b)+n)
		copy(*b, old)
	}
	off := len(*b)
	*b = (*b)[:off+n]
	return (*b)[off:]
}

// allocp grows the payload by n bytes and returns a pointer to the region.
// The pointer must be written through immediately and not retained; later
// allocations may move the buffer.
func (b *payload) allocp(n uintptr) unsafe.Pointer {
	slice := b.alloc(int(n))
	return unsafe.Pointer(&slice[0])
}

// bytes appends p to the payload.
func (b *payload) bytes(p []byte) {
	copy(b.alloc(len(p)), p)
}
