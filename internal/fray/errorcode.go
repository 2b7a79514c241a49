package fray

import (
	"strconv"
)

// Error is a FUSE error code. FUSE accepts POSIX error codes that are
// inverted to be negative (i.e., -syscall.ENOTSUP).
//
// The most common codes are re-defined here for cross-platform
// compatibility.
type Error int32

// Common error codes. Custom error codes may be used as long as their value
// is negative and represents a standard POSIX error understood by Linux.
const (
	ErrorNotPermitted     = Error(-0x01) // EPERM
	ErrorNotExist         = Error(-0x02) // ENOENT
	ErrorInterrupted      = Error(-0x04) // EINTR
	ErrorIO               = Error(-0x05) // EIO
	ErrorTooManyArguments = Error(-0x07) // E2BIG
	ErrorUnavailable      = Error(-0x0b) // EAGAIN
	ErrorNoMemory         = Error(-0x0c) // ENOMEM
	ErrorUnauthorized     = Error(-0x0d) // EACCES
	ErrorExists           = Error(-0x11) // EEXIST
	ErrorNotDirectory     = Error(-0x14) // ENOTDIR
	ErrorIsDirectory      = Error(-0x15) // EISDIR
	ErrorInvalid          = Error(-0x16) // EINVAL
	ErrorNoLock           = Error(-0x25) // ENOLCK
	ErrorUnimplemented    = Error(-0x26) // ENOSYS
	ErrorAborted          = Error(-0x67) // ECONNABORTED
	ErrorStale            = Error(-0x74) // ESTALE
)

var errorDescriptions = map[Error]string{
	ErrorNotPermitted:     "operation not permitted",
	ErrorNotExist:         "no such file or directory",
	ErrorInterrupted:      "interrupted system call",
	ErrorIO:               "input/output error",
	ErrorTooManyArguments: "argument list too long",
	ErrorUnavailable:      "resource temporarily unavailable",
	ErrorNoMemory:         "cannot allocate memory",
	ErrorUnauthorized:     "permission denied",
	ErrorExists:           "file exists",
	ErrorNotDirectory:     "not a directory",
	ErrorIsDirectory:      "is a directory",
	ErrorInvalid:          "invalid argument",
	ErrorNoLock:           "no locks available",
	ErrorUnimplemented:    "function not implemented",
	ErrorAborted:          "software caused connection abort",
	ErrorStale:            "stale file handle",
}

// Error prints the description of the error.
func (e Error) Error() string {
	desc := errorDescriptions[e]
	if desc != "" {
		return desc
	}
	return "FUSE errno " + strconv.Itoa(int(e))
}
