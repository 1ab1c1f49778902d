package netsrv

import (
	"errors"
	"log"
	"reflect"
	"time"

	"github.com/kvcached/cached/command"
	"github.com/kvcached/cached/frame"
	"github.com/kvcached/cached/shutdown"
	"github.com/kvcached/cached/store"
)

// frameResult is one outcome of the connection's background reader:
// either a decoded frame or the error that ended the read loop.
type frameResult struct {
	v   frame.Value
	err error
}

// handler runs one connection's command loop: ordinary request/response
// dispatch, with SUBSCRIBE and MONITOR each taking over the loop
// entirely until the connection ends.
type handler struct {
	id     string
	conn   *Conn
	engine *store.Engine
	guard  *shutdown.Guard
	frames chan frameResult
}

func newHandler(id string, conn *Conn, engine *store.Engine, guard *shutdown.Guard) *handler {
	return &handler{id: id, conn: conn, engine: engine, guard: guard, frames: make(chan frameResult)}
}

// run is the per-connection task spawned by the listener. It races a
// background reader against the shutdown signal, exactly as §4.7
// describes, via a watcher goroutine that closes the socket the moment
// shutdown fires — the idiomatic Go substitute for cancelling a blocked
// socket read directly.
func (h *handler) run() {
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		select {
		case <-h.guard.Done():
			h.conn.Close()
		case <-stop:
		}
	}()

	go h.readLoop(stop)

	for {
		select {
		case <-h.guard.Done():
			return
		case res := <-h.frames:
			if !h.handleFrameResult(res) {
				return
			}
		}
	}
}

func (h *handler) readLoop(stop <-chan struct{}) {
	for {
		v, err := h.conn.ReadFrame()
		select {
		case h.frames <- frameResult{v: v, err: err}:
		case <-stop:
			return
		}
		if err != nil {
			return
		}
	}
}

// handleFrameResult dispatches one read result in normal (non-subscribe,
// non-monitor) mode. It returns false when the connection should close.
func (h *handler) handleFrameResult(res frameResult) bool {
	if res.err != nil {
		h.logClose(res.err)
		return false
	}

	cmd, err := command.FromFrame(res.v)
	if err != nil {
		h.writeErr(err)
		return true
	}

	switch c := cmd.(type) {
	case *command.Subscribe:
		return h.runSubscribeLoop(c)
	case *command.Unsubscribe:
		h.writeErr(errors.New("ERR UNSUBSCRIBE only valid inside SUBSCRIBE context"))
		return true
	case *command.Monitor:
		return h.runMonitorLoop()
	case command.Applier:
		resp := c.Apply(h.engine)
		h.engine.RecordCommand(cmd.Name(), commandArgs(cmd))
		if err := h.conn.WriteFrame(resp); err != nil {
			h.logClose(err)
			return false
		}
		return true
	default:
		h.writeErr(errors.New("ERR unhandled command"))
		return true
	}
}

func (h *handler) writeErr(err error) {
	if werr := h.conn.WriteFrame(frame.Err(err.Error())); werr != nil {
		h.logClose(werr)
	}
}

func (h *handler) logClose(err error) {
	if errors.Is(err, ErrEndOfPeer) {
		return
	}
	log.Printf("netsrv: connection %s: %v", h.id, err)
}

// runSubscribeLoop implements §4.4/§9: once entered, this connection's
// command loop is entirely taken over by subscribe semantics. Further
// SUBSCRIBE/UNSUBSCRIBE commands are handled here; any other command is
// rejected without leaving the loop; the loop only ends on disconnect,
// I/O error, or shutdown.
func (h *handler) runSubscribeLoop(initial *command.Subscribe) bool {
	subs := make(map[string]*store.Subscription)
	order := make([]string, 0, 4)
	defer func() {
		for _, s := range subs {
			s.Close()
		}
	}()

	addChannel := func(ch string) {
		if _, ok := subs[ch]; ok {
			return
		}
		subs[ch] = h.engine.Subscribe(ch)
		order = append(order, ch)
	}
	removeChannel := func(ch string) {
		s, ok := subs[ch]
		if !ok {
			return
		}
		s.Close()
		delete(subs, ch)
		for i, c := range order {
			if c == ch {
				order = append(order[:i], order[i+1:]...)
				break
			}
		}
	}

	for _, ch := range initial.Channels {
		addChannel(ch)
		if err := h.conn.WriteFrame(subAck("subscribe", ch, len(subs))); err != nil {
			h.logClose(err)
			return false
		}
	}

	for {
		cases := make([]reflect.SelectCase, 0, len(order)+2)
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(h.guard.Done())})
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(h.frames)})
		for _, ch := range order {
			cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(subs[ch].C())})
		}

		chosen, recv, _ := reflect.Select(cases)
		switch chosen {
		case 0: // shutdown
			return false
		case 1: // next frame on the connection
			res := recv.Interface().(frameResult)
			if res.err != nil {
				h.logClose(res.err)
				return false
			}
			cmd, err := command.FromFrame(res.v)
			if err != nil {
				h.writeErr(err)
				continue
			}
			switch c := cmd.(type) {
			case *command.Subscribe:
				for _, ch := range c.Channels {
					addChannel(ch)
					if err := h.conn.WriteFrame(subAck("subscribe", ch, len(subs))); err != nil {
						h.logClose(err)
						return false
					}
				}
			case *command.Unsubscribe:
				targets := c.Channels
				if len(targets) == 0 {
					targets = append([]string{}, order...)
				}
				for _, ch := range targets {
					removeChannel(ch)
					if err := h.conn.WriteFrame(subAck("unsubscribe", ch, len(subs))); err != nil {
						h.logClose(err)
						return false
					}
				}
			default:
				h.writeErr(errors.New("ERR '" + cmd.Name() + "' not allowed while subscribed"))
			}
		default: // a publish arrived on one of our subscribed channels
			ch := order[chosen-2]
			val := recv.Interface().(frame.Value)
			msg := frame.Array(frame.BulkString("message"), frame.BulkString(ch), val)
			if err := h.conn.WriteFrame(msg); err != nil {
				h.logClose(err)
				return false
			}
		}
	}
}

func subAck(kind, channel string, count int) frame.Value {
	return frame.Array(frame.BulkString(kind), frame.BulkString(channel), frame.Integer(int64(count)))
}

// runMonitorLoop implements the additive MONITOR verb (SPEC_FULL §3):
// structurally identical to the subscribe loop but fed by every applied
// command rather than by PUBLISH, and not itself interpreting further
// commands from the connection.
func (h *handler) runMonitorLoop() bool {
	sub := h.engine.SubscribeMonitor()
	defer sub.Close()

	for {
		select {
		case <-h.guard.Done():
			return false
		case res := <-h.frames:
			if res.err != nil {
				h.logClose(res.err)
				return false
			}
			// MONITOR ignores further input other than disconnect.
		case ev := <-sub.C():
			args := make([]frame.Value, 0, len(ev.Args)+2)
			args = append(args, frame.Integer(time.Now().UnixMilli()), frame.Simple(ev.Command))
			for _, a := range ev.Args {
				args = append(args, frame.BulkString(a))
			}
			if err := h.conn.WriteFrame(frame.Array(args...)); err != nil {
				h.logClose(err)
				return false
			}
		}
	}
}
