// Package store implements the shared storage engine: a mutex-guarded
// entries map, an ordered expiration index driven by a single background
// purger, and a per-channel pub/sub broadcast registry.
package store

import (
	"sync"
	"time"

	"github.com/kvcached/cached/frame"
)

// ChannelCapacity is the bounded buffer size for every per-channel
// broadcast subscriber.
const ChannelCapacity = 1024

// entry is a stored value plus its optional expiration deadline.
type entry struct {
	data      frame.Value
	expiresAt time.Time
	hasExpiry bool
}

// Engine is the single shared-state region: entries, the expiration
// index, the pub/sub registry, and the shutdown flag all live behind one
// mutex, held only across the very short critical sections each
// operation below needs.
type Engine struct {
	mu       sync.Mutex
	entries  map[string]entry
	expiry   *expiryIndex
	channels map[string]*hub
	monitor  *monitorFeed

	shutdown bool
	wake     chan struct{} // buffered 1; coalescing purger wakeup

	now func() time.Time // overridable for tests
}

// New builds an Engine and starts its background purger. Callers must
// call Shutdown when done to stop the purger goroutine.
func New() *Engine {
	e := &Engine{
		entries:  make(map[string]entry),
		channels: make(map[string]*hub),
		expiry:   newExpiryIndex(),
		monitor:  newMonitorFeed(),
		wake:     make(chan struct{}, 1),
		now:      time.Now,
	}
	go e.purgeLoop()
	return e
}

// Get returns the value stored under key, or ok=false if absent or past
// its expiration deadline. An expired-but-not-yet-purged entry is
// reported as missing here; the purger reclaims its storage separately.
func (e *Engine) Get(key string) (frame.Value, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ent, ok := e.entries[key]
	if !ok {
		return frame.Value{}, false
	}
	if ent.hasExpiry && !ent.expiresAt.After(e.now()) {
		return frame.Value{}, false
	}
	return ent.data, true
}

// Set stores val under key, replacing any prior entry. If hasTTL, the
// entry expires after ttl from now.
func (e *Engine) Set(key string, val frame.Value, ttl time.Duration, hasTTL bool) {
	now := e.now()
	var newEnt entry
	newEnt.data = val
	if hasTTL {
		newEnt.hasExpiry = true
		newEnt.expiresAt = now.Add(ttl)
	}

	e.mu.Lock()
	prev, hadPrev := e.entries[key]
	shouldNotify := hasTTL && (e.expiry.Len() == 0 || newEnt.expiresAt.Before(e.expiry.nextDeadline()))

	e.entries[key] = newEnt
	if hadPrev && prev.hasExpiry {
		e.expiry.remove(prev.expiresAt, key)
	}
	if hasTTL {
		e.expiry.insert(newEnt.expiresAt, key)
	}
	e.mu.Unlock()

	if shouldNotify {
		e.wakePurger()
	}
}

// Del removes key unconditionally, reporting whether it had been
// present. Its stale expiration-index pair, if any, is left in place:
// the purger validates an entry's current expiry still matches the
// index pair before deleting, so a stale pair left by Del is silently
// skipped rather than acted on. See DESIGN.md for why this is cheaper
// than synchronous removal; until the purger pops it, the index may hold
// a pair whose key is no longer present.
func (e *Engine) Del(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.entries[key]
	delete(e.entries, key)
	return ok
}

// Shutdown flips the shutdown flag and wakes the purger so it observes
// the flag and exits. Per I3, no further background work occurs after
// this is observed.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	e.shutdown = true
	e.mu.Unlock()
	e.wakePurger()
}

func (e *Engine) wakePurger() {
	select {
	case e.wake <- struct{}{}:
	default:
		// A wake is already pending; the purger will re-check on its own.
	}
}

// RecordCommand appends an applied command to the monitor feed, if
// anyone is currently subscribed to it.
func (e *Engine) RecordCommand(name string, args []string) {
	e.monitor.record(name, args)
}
