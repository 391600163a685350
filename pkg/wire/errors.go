package wire

import (
	"errors"
	"fmt"
)

var (
	// ErrBadStart indicates the buffer doesn't begin with a start marker.
	ErrBadStart = errors.New("bad start marker")
	// ErrBadVersion indicates an unsupported protocol version.
	ErrBadVersion = errors.New("bad version")
	// ErrInvalidCount indicates the record count is out of range.
	ErrInvalidCount = errors.New("invalid record count")
	// ErrTruncated indicates the buffer ends before the frame does.
	ErrTruncated = errors.New("truncated frame")
	// ErrBadTerminator indicates the byte after the check bytes isn't an end marker.
	ErrBadTerminator = errors.New("bad end marker")
	// ErrChecksum indicates the check bytes don't match the payload.
	ErrChecksum = errors.New("checksum mismatch")
)

// FrameError reports where in a buffer decoding failed.
type FrameError struct {
	Err    error
	Offset int
}

// Error implements error.
func (e *FrameError) Error() string {
	return fmt.Sprintf("%v at offset %d", e.Err, e.Offset)
}

// Unwrap returns the underlying sentinel error.
func (e *FrameError) Unwrap() error {
	return e.Err
}

// Counted reports whether err is a rejection a receiver counts as a link
// error. Truncation and a missing start marker are not: the first means
// more bytes are needed, the second means no frame was seen at all.
func Counted(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrTruncated), errors.Is(err, ErrBadStart):
		return false
	}
	return true
}
