package frame

import (
	"errors"
	"fmt"
)

// ErrIncomplete signals that the buffer does not yet hold a full frame.
// It is never user-visible: the connection's read loop catches it, grows
// its buffer, and retries.
var ErrIncomplete = errors.New("frame: incomplete")

// ProtocolError reports a malformed frame: a bad tag byte, a bad length,
// invalid UTF-8 in a Simple/Error line, or any other violation of the
// grammar in §4.1. A ProtocolError from Check/Parse always terminates the
// connection that produced it — unlike argument-level errors raised while
// interpreting a command, which are reported to the peer without closing
// the connection.
type ProtocolError struct {
	Msg string
}

func (e *ProtocolError) Error() string { return e.Msg }

func protoErr(format string, args ...any) error {
	return &ProtocolError{Msg: fmt.Sprintf(format, args...)}
}
