// Package cachetop implements a terminal monitor for a running cached
// server: it dials the server, issues MONITOR, and renders the live
// command feed as a scrolling, filterable list.
package cachetop

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/kvcached/cached/frame"
)

// Event is one applied command as received over the MONITOR stream.
type Event struct {
	Time    time.Time
	Command string
	Args    []string
}

const initialReadBufCap = 4096

// Client is a MONITOR subscriber: a plain TCP connection speaking the
// same frame codec as the server, reused client-side rather than through
// netsrv (which is server-only and knows nothing about dialing out).
type Client struct {
	conn net.Conn
	buf  []byte
}

// Dial connects to addr and issues MONITOR.
func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("cachetop: dial %s: %w", addr, err)
	}
	c := &Client{conn: conn, buf: make([]byte, 0, initialReadBufCap)}
	if _, err := conn.Write(frame.Encode(frame.Array(frame.Simple("MONITOR")))); err != nil {
		conn.Close()
		return nil, fmt.Errorf("cachetop: send MONITOR: %w", err)
	}
	return c, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

// ReadEvent blocks until the next MONITOR frame arrives and decodes it.
func (c *Client) ReadEvent() (Event, error) {
	for {
		if n, err := frame.Check(c.buf); err == nil {
			v, _, perr := frame.Parse(c.buf[:n])
			if perr != nil {
				return Event{}, perr
			}
			remaining := copy(c.buf, c.buf[n:])
			c.buf = c.buf[:remaining]
			return decodeEvent(v)
		} else if !errors.Is(err, frame.ErrIncomplete) {
			return Event{}, err
		}

		if len(c.buf) == cap(c.buf) {
			grown := make([]byte, len(c.buf), cap(c.buf)*2)
			copy(grown, c.buf)
			c.buf = grown
		}
		n, err := c.conn.Read(c.buf[len(c.buf):cap(c.buf)])
		if n > 0 {
			c.buf = c.buf[:len(c.buf)+n]
		}
		if err != nil {
			if n > 0 {
				continue
			}
			return Event{}, err
		}
	}
}

func decodeEvent(v frame.Value) (Event, error) {
	items, ok := v.Items()
	if !ok || len(items) < 2 {
		return Event{}, errors.New("cachetop: malformed monitor frame")
	}
	ms, _ := items[0].Int()
	cmd, _ := items[1].AsText()
	args := make([]string, 0, len(items)-2)
	for _, it := range items[2:] {
		s, _ := it.AsText()
		args = append(args, s)
	}
	return Event{Time: time.UnixMilli(ms), Command: cmd, Args: args}, nil
}
