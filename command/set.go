package command

import (
	"time"

	"github.com/kvcached/cached/frame"
)

// Set stores Value under Key, replacing any prior entry. HasTTL reports
// whether an EX/PX option was given; TTL holds its duration when it was.
type Set struct {
	Key    string
	Value  frame.Value
	HasTTL bool
	TTL    time.Duration
}

func parseSet(p *Parser) (Command, error) {
	key, err := p.NextText()
	if err != nil {
		return nil, err
	}
	val, err := p.NextValue()
	if err != nil {
		return nil, err
	}

	s := &Set{Key: key, Value: val}
	if p.Remaining() {
		opt, err := p.NextText()
		if err != nil {
			return nil, err
		}
		switch opt {
		case "EX":
			secs, err := p.NextInt()
			if err != nil {
				return nil, err
			}
			s.HasTTL = true
			s.TTL = time.Duration(secs) * time.Second
		case "PX":
			millis, err := p.NextInt()
			if err != nil {
				return nil, err
			}
			s.HasTTL = true
			s.TTL = time.Duration(millis) * time.Millisecond
		default:
			return nil, argErr("ERR SET only supports the expiration option")
		}
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *Set) Name() string { return "set" }

func (c *Set) Apply(e Engine) frame.Value {
	e.Set(c.Key, c.Value, c.TTL, c.HasTTL)
	return frame.Simple("OK")
}
