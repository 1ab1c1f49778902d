package command

import "github.com/kvcached/cached/frame"

// Unknown represents any command name the dispatcher does not recognize.
type Unknown struct {
	name string
}

func (c *Unknown) Name() string { return c.name }

func (c *Unknown) Apply(e Engine) frame.Value {
	return frame.Errf("ERR unknown command '%s'", c.name)
}
