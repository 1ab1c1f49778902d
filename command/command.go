package command

import (
	"strings"

	"github.com/kvcached/cached/frame"
)

// Command is the closed set of request variants a connection can send.
// Dispatch in Apply is a type switch on the concrete variant, never open
// inheritance.
type Command interface {
	// Name returns the command's canonical lowercase name (an Unknown
	// returns the name as the peer sent it), used for logging and for the
	// MONITOR feed.
	Name() string
}

// Applier is implemented by every command whose apply step is a single
// request/response exchange against the storage engine. SUBSCRIBE,
// UNSUBSCRIBE, and MONITOR are not Appliers: they take over the
// connection's read loop and are handled directly by the handler package.
type Applier interface {
	Command
	Apply(e Engine) frame.Value
}

// FromFrame reads v's first child as the command name (case-insensitive)
// and parses the remaining children into the matching Command variant. A
// name outside the known set yields an *Unknown, never an error. Errors,
// always *ArgError, come only from a frame that is not an array with a
// text name first, or from argument parsing within a command.
func FromFrame(v frame.Value) (Command, error) {
	p, err := NewParser(v)
	if err != nil {
		return nil, err
	}
	name, err := p.NextText()
	if err != nil {
		return nil, err
	}
	lname := strings.ToLower(name)

	switch lname {
	case "get":
		return parseGet(p)
	case "set":
		return parseSet(p)
	case "del":
		return parseDel(p)
	case "ping":
		return parsePing(p)
	case "publish":
		return parsePublish(p)
	case "subscribe":
		return parseSubscribe(p)
	case "unsubscribe":
		return parseUnsubscribe(p)
	case "monitor":
		return parseMonitor(p)
	default:
		return &Unknown{name: name}, nil
	}
}
