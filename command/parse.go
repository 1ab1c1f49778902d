// Package command implements the per-verb request objects dispatched from
// a decoded frame: parsing a command's arguments out of an array frame and
// applying it against the storage engine.
package command

import (
	"fmt"
	"unicode/utf8"

	"github.com/kvcached/cached/frame"
)

// ArgError is a command-argument-level failure: wrong arity, wrong type,
// an unrecognized option. Unlike a frame.ProtocolError, an ArgError is
// reported to the peer as an Error() frame and the connection stays open.
type ArgError struct {
	Msg string
}

func (e *ArgError) Error() string { return e.Msg }

func argErr(format string, args ...any) error {
	return &ArgError{Msg: fmt.Sprintf(format, args...)}
}

// Parser is a single-pass cursor over the children of a parsed array
// frame, used by each command's parse function (parseGet, parseSet, ...)
// to impose a typed argument schema without repeating bounds/type checks
// at every call site.
type Parser struct {
	items []frame.Value
	pos   int
}

// NewParser builds a Parser over an already-decoded frame. A frame that
// is not an Array yields an *ArgError, which the handler reports to the
// peer.
func NewParser(v frame.Value) (*Parser, error) {
	items, ok := v.Items()
	if !ok {
		return nil, argErr("ERR command frame must be an array")
	}
	return &Parser{items: items}, nil
}

// Next returns the next child Value, or ok=false if the cursor is
// exhausted.
func (p *Parser) Next() (frame.Value, bool) {
	if p.pos >= len(p.items) {
		return frame.Value{}, false
	}
	v := p.items[p.pos]
	p.pos++
	return v, true
}

// NextText requires a Simple or Bulk (UTF-8) child and returns it decoded
// as text.
func (p *Parser) NextText() (string, error) {
	v, ok := p.Next()
	if !ok {
		return "", argErr("ERR wrong number of arguments")
	}
	if k := v.Kind(); k != frame.KindSimple && k != frame.KindBulk {
		return "", argErr("ERR argument is not a string")
	}
	s, _ := v.AsText()
	if !utf8.ValidString(s) {
		return "", argErr("ERR argument is not a string")
	}
	return s, nil
}

// NextBytes requires a Simple or Bulk child and returns its raw bytes.
func (p *Parser) NextBytes() ([]byte, error) {
	v, ok := p.Next()
	if !ok {
		return nil, argErr("ERR wrong number of arguments")
	}
	if k := v.Kind(); k != frame.KindSimple && k != frame.KindBulk {
		return nil, argErr("ERR argument is not a string")
	}
	b, _ := v.AsBytes()
	return b, nil
}

// NextValue requires any child and returns it verbatim, used where a
// command stores the argument's Value as-is (e.g. SET's value, PUBLISH's
// payload) rather than coercing it to text.
func (p *Parser) NextValue() (frame.Value, error) {
	v, ok := p.Next()
	if !ok {
		return frame.Value{}, argErr("ERR wrong number of arguments")
	}
	return v, nil
}

// NextInt requires an Integer child.
func (p *Parser) NextInt() (int64, error) {
	v, ok := p.Next()
	if !ok {
		return 0, argErr("ERR wrong number of arguments")
	}
	i, ok := v.Int()
	if !ok {
		return 0, argErr("ERR argument is not an integer")
	}
	return i, nil
}

// Remaining reports whether any children remain.
func (p *Parser) Remaining() bool { return p.pos < len(p.items) }

// Finish reports an error if any child remains unconsumed.
func (p *Parser) Finish() error {
	if p.Remaining() {
		return argErr("ERR wrong number of arguments")
	}
	return nil
}
