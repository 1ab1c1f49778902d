package command

// Subscribe requests one or more channel subscriptions. It is not an
// Applier: once a connection issues SUBSCRIBE, the handler hands the
// connection's read loop entirely to the subscribe loop (see the netsrv
// package), which interprets further Subscribe/Unsubscribe commands
// itself rather than returning here.
type Subscribe struct {
	Channels []string
}

func parseSubscribe(p *Parser) (Command, error) {
	var channels []string
	for p.Remaining() {
		ch, err := p.NextText()
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	if len(channels) == 0 {
		return nil, argErr("ERR wrong number of arguments for 'subscribe' command")
	}
	return &Subscribe{Channels: channels}, nil
}

func (c *Subscribe) Name() string { return "subscribe" }

// Unsubscribe requests removal from zero or more channel subscriptions;
// an empty Channels means "all currently subscribed channels". Like
// Subscribe, it is only ever handled from within the subscribe loop —
// the dispatcher accepts it here only so the subscribe loop can reuse
// FromFrame for the commands it continues to interpret.
type Unsubscribe struct {
	Channels []string
}

func parseUnsubscribe(p *Parser) (Command, error) {
	var channels []string
	for p.Remaining() {
		ch, err := p.NextText()
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return &Unsubscribe{Channels: channels}, nil
}

func (c *Unsubscribe) Name() string { return "unsubscribe" }
