package command

import (
	"time"

	"github.com/kvcached/cached/frame"
)

// Engine is the storage-engine surface Applier commands need. It is
// defined here, rather than imported from the store package directly, so
// that command stays a leaf package: store depends on frame only, command
// depends on frame and this interface, and netsrv wires a *store.Engine
// into both.
type Engine interface {
	Get(key string) (frame.Value, bool)
	Set(key string, val frame.Value, ttl time.Duration, hasTTL bool)
	Del(key string) bool
	Publish(channel string, val frame.Value) int
}
