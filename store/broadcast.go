package store

import (
	"sync"

	"github.com/kvcached/cached/frame"
)

// subscriber is one receiver of a channel's broadcast: a bounded buffer
// plus a mutex guarding the drop-oldest send policy against concurrent
// publishers (multiple connections may PUBLISH to the same channel at
// once; without this mutex two publishers racing the same full buffer
// could each drop a message the other was about to deliver).
type subscriber struct {
	mu sync.Mutex
	ch chan frame.Value
}

// send delivers val, dropping the oldest buffered message first if the
// buffer is full. It never blocks.
func (s *subscriber) send(val frame.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case s.ch <- val:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- val:
	default:
	}
}

// hub is the broadcast sender for one channel: the set of subscribers
// currently registered to receive publishes.
type hub struct {
	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[*subscriber]struct{})}
}

func (h *hub) add(s *subscriber) {
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
}

// remove unregisters s and reports whether the hub now has zero
// subscribers (the caller reaps the hub from the registry in that case;
// see §9's empty-channel-reaping open question).
func (h *hub) remove(s *subscriber) (empty bool) {
	h.mu.Lock()
	delete(h.subs, s)
	empty = len(h.subs) == 0
	h.mu.Unlock()
	return empty
}

func (h *hub) publish(val frame.Value) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		s.send(val)
	}
	return len(h.subs)
}

// Subscription is a live registration on one channel. Callers must call
// Close when done to release the subscriber slot and allow the channel's
// hub to be reaped once empty.
type Subscription struct {
	engine  *Engine
	channel string
	sub     *subscriber
}

// C returns the channel on which published values arrive.
func (s *Subscription) C() <-chan frame.Value { return s.sub.ch }

// Channel returns the subscribed channel name.
func (s *Subscription) Channel() string { return s.channel }

// Close unregisters the subscription. Reaping an emptied hub happens
// immediately, the simpler of the two sanctioned §9 policies: a channel
// with zero subscribers has no reason to keep its hub allocated until
// some future, possibly-never publish.
func (s *Subscription) Close() {
	e := s.engine
	e.mu.Lock()
	h, ok := e.channels[s.channel]
	e.mu.Unlock()
	if !ok {
		return
	}
	if h.remove(s.sub) {
		e.mu.Lock()
		if cur, ok := e.channels[s.channel]; ok && cur == h {
			delete(e.channels, s.channel)
		}
		e.mu.Unlock()
	}
}

// Subscribe registers a new subscription on channel, creating its hub if
// this is the first subscriber.
func (e *Engine) Subscribe(channel string) *Subscription {
	e.mu.Lock()
	h, ok := e.channels[channel]
	if !ok {
		h = newHub()
		e.channels[channel] = h
	}
	e.mu.Unlock()

	sub := &subscriber{ch: make(chan frame.Value, ChannelCapacity)}
	h.add(sub)
	return &Subscription{engine: e, channel: channel, sub: sub}
}

// Publish broadcasts val to channel's current subscribers and returns how
// many received it. A channel with no hub, or a hub with no live
// subscribers, both report 0.
func (e *Engine) Publish(channel string, val frame.Value) int {
	e.mu.Lock()
	h, ok := e.channels[channel]
	e.mu.Unlock()
	if !ok {
		return 0
	}
	return h.publish(val)
}
