package netsrv

import (
	"fmt"

	"github.com/kvcached/cached/command"
)

// commandArgs renders a command's arguments for the MONITOR feed. It is
// a small, closed type switch rather than an interface method on
// command.Command because only the monitor feed needs this view; the
// command package itself never needs to stringify its own arguments.
func commandArgs(cmd command.Command) []string {
	switch c := cmd.(type) {
	case *command.Get:
		return []string{c.Key}
	case *command.Set:
		args := []string{c.Key}
		if c.HasTTL {
			args = append(args, fmt.Sprintf("ttl=%s", c.TTL))
		}
		if s, ok := c.Value.AsText(); ok {
			args = append(args, s)
		}
		return args
	case *command.Del:
		return []string{c.Key}
	case *command.Ping:
		if c.HasMsg {
			return []string{string(c.Msg)}
		}
		return nil
	case *command.Publish:
		args := []string{c.Channel}
		if s, ok := c.Value.AsText(); ok {
			args = append(args, s)
		}
		return args
	default:
		return nil
	}
}
