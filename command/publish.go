package command

import "github.com/kvcached/cached/frame"

// Publish broadcasts Value to every current subscriber of Channel and
// reports how many received it.
type Publish struct {
	Channel string
	Value   frame.Value
}

func parsePublish(p *Parser) (Command, error) {
	channel, err := p.NextText()
	if err != nil {
		return nil, err
	}
	val, err := p.NextValue()
	if err != nil {
		return nil, err
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return &Publish{Channel: channel, Value: val}, nil
}

func (c *Publish) Name() string { return "publish" }

func (c *Publish) Apply(e Engine) frame.Value {
	n := e.Publish(c.Channel, c.Value)
	return frame.Integer(int64(n))
}
