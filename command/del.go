package command

import "github.com/kvcached/cached/frame"

// Del removes Key. Always succeeds, whether or not the key existed.
type Del struct {
	Key string
}

func parseDel(p *Parser) (Command, error) {
	key, err := p.NextText()
	if err != nil {
		return nil, err
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return &Del{Key: key}, nil
}

func (c *Del) Name() string { return "del" }

func (c *Del) Apply(e Engine) frame.Value {
	e.Del(c.Key)
	return frame.Simple("OK")
}
