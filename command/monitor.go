package command

// Monitor requests the live command/pub-sub event feed. Like Subscribe it
// is not an Applier: issuing MONITOR hands the connection's read loop to
// a streaming loop (see netsrv) that forwards every command applied
// anywhere on the server until the connection closes or the server
// shuts down. It takes no arguments.
type Monitor struct{}

func parseMonitor(p *Parser) (Command, error) {
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return &Monitor{}, nil
}

func (c *Monitor) Name() string { return "monitor" }
