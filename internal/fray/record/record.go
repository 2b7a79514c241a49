// Package record persists the message activity of a session as a stream of
// msgpack-encoded entries, one per message, for offline inspection of what
// the kernel asked and how the filesystem answered.
package record

import (
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Direction of a recorded message.
type Direction string

const (
	DirRecv Direction = "recv" // Message received from the kernel.
	DirSend Direction = "send" // Message sent to the kernel.
)

// Entry describes one message.
type Entry struct {
	Session string    `msgpack:"session"`
	Dir     Direction `msgpack:"dir"`
	Op      uint32    `msgpack:"op"`
	Unique  uint64    `msgpack:"unique"`
	Errno   int32     `msgpack:"errno,omitempty"`
	Len     uint32    `msgpack:"len"`
	Time    time.Time `msgpack:"time"`
}

// Recorder accepts entries. Implementations must be safe for concurrent
// use.
type Recorder interface {
	Record(Entry) error
	Close() error
}

// NewFile returns a Recorder appending to the file at path, creating it if
// needed.
func NewFile(path string) (Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &recorder{enc: msgpack.NewEncoder(f), c: f}, nil
}

// NewWriter returns a Recorder writing entries to w. Close does not close
// w.
func NewWriter(w io.Writer) Recorder {
	return &recorder{enc: msgpack.NewEncoder(w)}
}

type recorder struct {
	mut sync.Mutex
	enc *msgpack.Encoder
	c   io.Closer
}

func (r *recorder) Record(e Entry) error {
	r.mut.Lock()
	defer r.mut.Unlock()
	return r.enc.Encode(e)
}

func (r *recorder) Close() error {
	if r.c == nil {
		return nil
	}
	return r.c.Close()
}

// Read decodes every entry from r.
func Read(r io.Reader) ([]Entry, error) {
	var (
		dec = msgpack.NewDecoder(r)
		res []Entry
	)
	for {
		var e Entry
		err := dec.Decode(&e)
		if errors.Is(err, io.EOF) {
			return res, nil
		} else if err != nil {
			return res, err
		}
		res = append(res, e)
	}
}
