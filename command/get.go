package command

import "github.com/kvcached/cached/frame"

// Get fetches the Value stored under Key, or Null if absent or expired.
type Get struct {
	Key string
}

func parseGet(p *Parser) (Command, error) {
	key, err := p.NextText()
	if err != nil {
		return nil, err
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return &Get{Key: key}, nil
}

func (c *Get) Name() string { return "get" }

func (c *Get) Apply(e Engine) frame.Value {
	v, ok := e.Get(c.Key)
	if !ok {
		return frame.Null()
	}
	return v
}
