package netsrv

import (
	"context"
	"errors"
	"log"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/kvcached/cached/shutdown"
	"github.com/kvcached/cached/store"
)

const (
	minAcceptBackoff = time.Second
	maxAcceptBackoff = 64 * time.Second
)

// Listener is the accept loop described in §4.7: bounded connection
// admission via a weighted semaphore, exponential backoff on transient
// accept errors, and one handler goroutine per accepted connection.
type Listener struct {
	ln       net.Listener
	engine   *store.Engine
	notifier *shutdown.Notifier
	sem      *semaphore.Weighted
	wg       sync.WaitGroup
}

// NewListener wires a bound listener to an engine and shutdown notifier.
// maxConns is MAX_CONNECTIONS (§4.7; default 256, see cmd/cached's
// -max-conns flag).
func NewListener(ln net.Listener, engine *store.Engine, notifier *shutdown.Notifier, maxConns int64) *Listener {
	return &Listener{
		ln:       ln,
		engine:   engine,
		notifier: notifier,
		sem:      semaphore.NewWeighted(maxConns),
	}
}

// Serve runs the accept loop until the listener is closed (by Shutdown)
// or a non-transient accept error occurs. It returns nil on a clean,
// shutdown-triggered close.
func (l *Listener) Serve() error {
	backoff := minAcceptBackoff
	for {
		if err := l.sem.Acquire(context.Background(), 1); err != nil {
			return err
		}

		conn, err := l.ln.Accept()
		if err != nil {
			l.sem.Release(1)
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Temporary() { //nolint:staticcheck // Temporary is deprecated but still the accepted idiom for retryable accept errors
				if backoff > maxAcceptBackoff {
					log.Printf("netsrv: accept: %v; giving up after backoff exceeded %s", err, maxAcceptBackoff)
					return err
				}
				log.Printf("netsrv: accept: %v; retrying in %s", err, backoff)
				time.Sleep(backoff)
				backoff *= 2
				continue
			}
			return err
		}
		backoff = minAcceptBackoff

		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			defer l.sem.Release(1)
			l.handleConn(conn)
		}()
	}
}

func (l *Listener) handleConn(conn net.Conn) {
	defer conn.Close()
	id := uuid.NewString()
	h := newHandler(id, NewConn(conn), l.engine, l.notifier.Guard())
	h.run()
}

// Shutdown closes the listener, unblocking Accept, and waits for every
// in-flight handler to finish its current request and return — the
// "drain barrier" of §4.6, implemented with a WaitGroup rather than the
// reference implementation's completion channel: one Add per accepted
// connection, one Done per finished handler, Wait blocks exactly until
// every handler goroutine has returned.
func (l *Listener) Shutdown() {
	l.notifier.Shutdown()
	l.ln.Close()
	l.wg.Wait()
}
