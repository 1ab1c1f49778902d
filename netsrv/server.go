package netsrv

import (
	"context"
	"net"

	"github.com/kvcached/cached/shutdown"
	"github.com/kvcached/cached/store"
)

// Run serves ln until ctx is cancelled, then performs the graceful
// shutdown sequence from §4.6: stop accepting, signal every handler,
// wait for all in-flight requests to finish, then stop the storage
// engine's purger (I3: no background work survives an observed
// shutdown).
func Run(ctx context.Context, ln net.Listener, engine *store.Engine, maxConns int64) error {
	notifier := shutdown.New()
	l := NewListener(ln, engine, notifier, maxConns)

	done := make(chan error, 1)
	go func() { done <- l.Serve() }()

	var err error
	select {
	case <-ctx.Done():
		l.Shutdown()
		err = <-done
	case err = <-done:
	}
	engine.Shutdown()
	return err
}
