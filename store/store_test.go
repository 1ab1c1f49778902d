package store

import (
	"testing"
	"time"

	"github.com/kvcached/cached/frame"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := New()
	t.Cleanup(e.Shutdown)
	return e
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	e := newTestEngine(t)
	if _, ok := e.Get("nope"); ok {
		t.Fatalf("Get(missing) ok=true, want false")
	}
}

func TestSetThenGet(t *testing.T) {
	e := newTestEngine(t)
	e.Set("key", frame.BulkString("value"), 0, false)
	v, ok := e.Get("key")
	if !ok {
		t.Fatalf("Get(key) ok=false after Set")
	}
	if s, _ := v.AsText(); s != "value" {
		t.Fatalf("Get(key) = %v, want value", v)
	}
}

func TestSetReplaces(t *testing.T) {
	e := newTestEngine(t)
	e.Set("key", frame.BulkString("first"), 0, false)
	e.Set("key", frame.BulkString("second"), 0, false)
	v, _ := e.Get("key")
	if s, _ := v.AsText(); s != "second" {
		t.Fatalf("Get(key) = %v, want second", v)
	}
}

func TestDelIdempotent(t *testing.T) {
	e := newTestEngine(t)
	e.Set("key", frame.BulkString("v"), 0, false)
	e.Del("key")
	e.Del("key")
	if _, ok := e.Get("key"); ok {
		t.Fatalf("Get(key) ok=true after Del")
	}
}

func TestExpiryLogical(t *testing.T) {
	e := newTestEngine(t)
	fixed := time.Now()
	e.mu.Lock()
	e.now = func() time.Time { return fixed }
	e.mu.Unlock()
	e.Set("hello", frame.BulkString("world"), time.Second, true)

	if v, ok := e.Get("hello"); !ok {
		t.Fatalf("Get before expiry: ok=false, want true, v=%v", v)
	}

	e.mu.Lock()
	e.now = func() time.Time { return fixed.Add(2 * time.Second) }
	e.mu.Unlock()

	if _, ok := e.Get("hello"); ok {
		t.Fatalf("Get after expiry: ok=true, want false")
	}
}

func TestPurgerReclaimsExpiredEntry(t *testing.T) {
	e := newTestEngine(t)
	e.Set("k", frame.BulkString("v"), 10*time.Millisecond, true)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		e.mu.Lock()
		_, present := e.entries["k"]
		e.mu.Unlock()
		if !present {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("purger did not reclaim expired entry within 2s")
}

func TestPublishNoSubscribers(t *testing.T) {
	e := newTestEngine(t)
	if n := e.Publish("hello", frame.BulkString("world")); n != 0 {
		t.Fatalf("Publish(no subs) = %d, want 0", n)
	}
}

func TestSubscribePublishDelivery(t *testing.T) {
	e := newTestEngine(t)
	sub := e.Subscribe("hello")
	defer sub.Close()

	if n := e.Publish("hello", frame.BulkString("world")); n != 1 {
		t.Fatalf("Publish = %d, want 1", n)
	}

	select {
	case v := <-sub.C():
		if s, _ := v.AsText(); s != "world" {
			t.Fatalf("received %v, want world", v)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for published message")
	}
}

func TestUnsubscribeReapsEmptyHub(t *testing.T) {
	e := newTestEngine(t)
	sub := e.Subscribe("chan")
	sub.Close()

	e.mu.Lock()
	_, exists := e.channels["chan"]
	e.mu.Unlock()
	if exists {
		t.Fatalf("hub still registered after last subscriber closed")
	}

	if n := e.Publish("chan", frame.BulkString("x")); n != 0 {
		t.Fatalf("Publish(reaped channel) = %d, want 0", n)
	}
}

func TestDelLeavesStaleExpiryPairTolerated(t *testing.T) {
	e := newTestEngine(t)
	fixed := time.Now()
	e.mu.Lock()
	e.now = func() time.Time { return fixed }
	e.mu.Unlock()
	e.Set("k", frame.BulkString("v"), time.Millisecond, true)
	e.Del("k")

	// The index still holds the (t, "k") pair; the purger must not panic
	// or resurrect the key when it eventually processes it.
	e.mu.Lock()
	e.now = func() time.Time { return fixed.Add(time.Second) }
	e.mu.Unlock()
	e.wakePurger()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		e.mu.Lock()
		n := e.expiry.Len()
		e.mu.Unlock()
		if n == 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if _, ok := e.Get("k"); ok {
		t.Fatalf("Get(k) ok=true, want false after Del")
	}
}
