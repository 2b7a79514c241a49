// Package fuse connects the message framing layer to a real `/dev/fuse`
// device file: mounting a filesystem, exchanging raw messages with the
// kernel, and unmounting on close.
package fuse

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"go.uber.org/atomic"
	"golang.org/x/sys/unix"

	"github.com/frayfs/fray/internal/fray/wire"
)

// MaxWrite size supported. Linux 4.2.0 caps this value at 128kB.
var MaxWrite uint32 = 128 * 1024

var maxRequestSize = syscall.Getpagesize()
var bufSize = maxRequestSize + int(MaxWrite)

// Channel is a raw message channel to the kernel over a `/dev/fuse` device
// file. The kernel delivers exactly one message per read, so Channel
// buffers each delivery and serves receives out of the buffered message
// until it is exhausted; Drain hands back whatever the receiver did not
// consume (the data payload of write messages).
//
// The device file is switched to non-blocking mode when mounted: receives
// with no message pending report wire.ErrNotReady, and WaitReady blocks
// until the kernel has something to deliver.
type Channel struct {
	log log.Logger

	f *os.File

	closed  atomic.Bool
	onClose func()

	rmut    sync.Mutex
	buf     []byte
	pending []byte

	wmut sync.Mutex
}

// NewChannel returns a Channel around an open `/dev/fuse` file. onClose, if
// set, runs after the file is closed.
func NewChannel(l log.Logger, f *os.File, onClose func()) *Channel {
	if l == nil {
		l = log.NewNopLogger()
	}
	return &Channel{
		log:     l,
		f:       f,
		onClose: onClose,
		buf:     make([]byte, bufSize),
	}
}

// RecvMsg copies up to len(p) bytes of the current kernel message into p.
// When the current message is exhausted a new one is read from the device;
// wire.ErrNotReady is returned when no message is pending. An empty p
// succeeds immediately without consuming anything.
func (kc *Channel) RecvMsg(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	kc.rmut.Lock()
	defer kc.rmut.Unlock()

	if len(kc.pending) == 0 {
		if err := kc.fill(); err != nil {
			return 0, err
		}
	}

	n := copy(p, kc.pending)
	kc.pending = kc.pending[n:]
	return n, nil
}

// fill reads one whole message from the device into the channel buffer.
// Must be called with rmut held.
func (kc *Channel) fill() error {
	n, err := syscall.Read(int(kc.f.Fd()), kc.buf)
	switch {
	case err == syscall.EAGAIN:
		return wire.ErrNotReady
	case err == syscall.ENODEV:
		// The filesystem was unmounted out from under us.
		level.Debug(kc.log).Log("msg", "device detached", "err", err)
		return io.EOF
	case err != nil:
		level.Error(kc.log).Log("msg", "failed to read from driver", "err", err)
		return err
	case n <= 0:
		level.Debug(kc.log).Log("msg", "read no data from driver")
		return io.EOF
	}

	kc.pending = kc.buf[:n]
	return nil
}

// Drain returns whatever remains of the current message and marks it
// consumed. The returned bytes alias the channel buffer and are only valid
// until the next receive.
func (kc *Channel) Drain() []byte {
	kc.rmut.Lock()
	defer kc.rmut.Unlock()

	rest := kc.pending
	kc.pending = nil
	return rest
}

// WaitReady blocks until the device has a message to deliver, ctx is done,
// or the channel is closed.
func (kc *Channel) WaitReady(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if kc.closed.Load() {
			return io.EOF
		}

		// Poll with a short timeout so ctx cancellation and Close are
		// noticed without an extra wakeup mechanism.
		fds := []unix.PollFd{{Fd: int32(kc.f.Fd()), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, 100)
		if err == syscall.EINTR {
			continue
		} else if err != nil {
			return err
		}

		if n > 0 {
			if fds[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
				return io.EOF
			}
			return nil
		}
	}
}

// SendMsg writes one response message: the fixed header record followed by
// the payload chunks, as a single atomic write. Chunks are gathered by the
// kernel directly; they are never copied into a contiguous buffer first.
func (kc *Channel) SendMsg(header *wire.OutHeader, chunks ...[]byte) error {
	iovs := make([][]byte, 0, len(chunks)+1)
	iovs = append(iovs, header.Bytes())
	for _, chunk := range chunks {
		if len(chunk) == 0 {
			continue
		}
		iovs = append(iovs, chunk)
	}

	kc.wmut.Lock()
	n, err := unix.Writev(int(kc.f.Fd()), iovs)
	kc.wmut.Unlock()
	if err != nil {
		level.Error(kc.log).Log("msg", "failed to write to driver", "len", header.Len(), "err", err)
		return err
	}
	if n != int(header.Len()) {
		level.Error(kc.log).Log("msg", "partial write to driver", "len", n, "expect_len", header.Len())
		return fmt.Errorf("fuse: unexpected partial write")
	}
	return nil
}

// Close closes the connection to the kernel. No more reads or writes can
// occur.
func (kc *Channel) Close() (err error) {
	if kc.closed.CAS(false, true) {
		err = kc.f.Close()
		if kc.onClose != nil {
			kc.onClose()
		}
		level.Debug(kc.log).Log("msg", "closed channel", "err", err)
	}
	return err
}
