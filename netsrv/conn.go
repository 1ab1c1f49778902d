// Package netsrv implements the connection lifecycle and graceful
// shutdown fabric: the buffered framed duplex over one socket, the
// per-connection command loop, and the accept loop that admits and
// bounds connections.
package netsrv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/kvcached/cached/frame"
)

const initialReadBufCap = 4096

// ErrEndOfPeer is returned by ReadFrame when the peer closed the
// connection cleanly between frames (no partial frame pending).
var ErrEndOfPeer = errors.New("netsrv: connection closed by peer")

// Conn is a frame-granular duplex over one TCP socket: a growable read
// buffer tested with frame.Check before any payload is parsed, and a
// buffered writer flushed after every frame.
type Conn struct {
	nc  net.Conn
	buf []byte
	w   *bufio.Writer
}

// NewConn wraps an accepted socket.
func NewConn(nc net.Conn) *Conn {
	return &Conn{
		nc:  nc,
		buf: make([]byte, 0, initialReadBufCap),
		w:   bufio.NewWriter(nc),
	}
}

// RemoteAddr returns the peer address, used for logging.
func (c *Conn) RemoteAddr() net.Addr { return c.nc.RemoteAddr() }

// Close closes the underlying socket, unblocking any in-progress Read.
func (c *Conn) Close() error { return c.nc.Close() }

// ReadFrame reads until one complete frame is decodable and returns it.
// It returns ErrEndOfPeer if the peer closes cleanly between frames, and
// returns any I/O or protocol error otherwise.
func (c *Conn) ReadFrame() (frame.Value, error) {
	for {
		if n, err := frame.Check(c.buf); err == nil {
			v, _, perr := frame.Parse(c.buf[:n])
			if perr != nil {
				return frame.Value{}, perr
			}
			remaining := copy(c.buf, c.buf[n:])
			c.buf = c.buf[:remaining]
			return v, nil
		} else if !errors.Is(err, frame.ErrIncomplete) {
			return frame.Value{}, err
		}

		if len(c.buf) == cap(c.buf) {
			grown := make([]byte, len(c.buf), cap(c.buf)*2)
			copy(grown, c.buf)
			c.buf = grown
		}

		n, err := c.nc.Read(c.buf[len(c.buf):cap(c.buf)])
		if n > 0 {
			c.buf = c.buf[:len(c.buf)+n]
		}
		if err != nil {
			if n > 0 {
				// Got some bytes along with the error (e.g. EOF after a
				// final partial read); loop once more to try parsing
				// what we have before surfacing the error.
				continue
			}
			if !errors.Is(err, io.EOF) {
				return frame.Value{}, err
			}
			if len(c.buf) == 0 {
				return frame.Value{}, ErrEndOfPeer
			}
			return frame.Value{}, fmt.Errorf("connection reset by peer: %w", err)
		}
	}
}

// WriteFrame encodes and writes v, then flushes.
func (c *Conn) WriteFrame(v frame.Value) error {
	if _, err := c.w.Write(frame.Encode(v)); err != nil {
		return err
	}
	return c.w.Flush()
}
