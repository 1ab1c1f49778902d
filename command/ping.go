package command

import "github.com/kvcached/cached/frame"

// Ping replies PONG, or echoes Msg back as a Bulk if one was given.
type Ping struct {
	Msg    []byte
	HasMsg bool
}

func parsePing(p *Parser) (Command, error) {
	c := &Ping{}
	if p.Remaining() {
		msg, err := p.NextBytes()
		if err != nil {
			return nil, err
		}
		c.Msg, c.HasMsg = msg, true
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Ping) Name() string { return "ping" }

func (c *Ping) Apply(e Engine) frame.Value {
	if c.HasMsg {
		return frame.Bulk(c.Msg)
	}
	return frame.Simple("PONG")
}
