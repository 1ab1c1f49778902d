package store

import (
	"time"

	"github.com/google/btree"
)

// expiryItem is one (deadline, key) pair held in the expiration index,
// ordered by deadline then key (§3 "ordered set of (Instant, Key) pairs,
// sorted by time then key").
type expiryItem struct {
	at  time.Time
	key string
}

func lessExpiryItem(a, b expiryItem) bool {
	if !a.at.Equal(b.at) {
		return a.at.Before(b.at)
	}
	return a.key < b.key
}

// expiryIndex is the ordered set backing the purger's deadline scan. It
// is implemented with a B-tree rather than container/heap because Set
// needs arbitrary O(log n) removal of the replaced entry's (deadline,
// key) pair, which a binary heap only supports via lazy tombstoning. Del
// does not remove its pair; the purger skips such stale pairs.
type expiryIndex struct {
	tree *btree.BTreeG[expiryItem]
}

func newExpiryIndex() *expiryIndex {
	return &expiryIndex{tree: btree.NewG(32, lessExpiryItem)}
}

func (x *expiryIndex) Len() int { return x.tree.Len() }

func (x *expiryIndex) insert(at time.Time, key string) {
	x.tree.ReplaceOrInsert(expiryItem{at: at, key: key})
}

func (x *expiryIndex) remove(at time.Time, key string) {
	x.tree.Delete(expiryItem{at: at, key: key})
}

// nextDeadline returns the earliest pending deadline. Callers must only
// call this when Len() > 0.
func (x *expiryIndex) nextDeadline() time.Time {
	min, _ := x.tree.Min()
	return min.at
}

// frontMin returns the earliest pair without removing it.
func (x *expiryIndex) frontMin() (expiryItem, bool) {
	return x.tree.Min()
}

// popFront removes and returns the earliest pair.
func (x *expiryIndex) popFront() (expiryItem, bool) {
	return x.tree.DeleteMin()
}

// purgeLoop is the background purger described in §4.5: scan the front
// of the expiration index, remove everything due, then sleep until the
// next deadline or an explicit wake, whichever comes first.
func (e *Engine) purgeLoop() {
	for {
		e.mu.Lock()
		if e.shutdown {
			e.mu.Unlock()
			return
		}

		now := e.now()
		for {
			item, ok := e.expiry.frontMin()
			if !ok || item.at.After(now) {
				break
			}
			e.expiry.popFront()
			// The entry may already be gone (Del) or may have been
			// replaced by a later Set with a different deadline; only
			// delete it here if its current expiry still matches the
			// pair we just popped, per I1.
			if ent, ok := e.entries[item.key]; ok && ent.hasExpiry && ent.expiresAt.Equal(item.at) {
				delete(e.entries, item.key)
			}
		}

		next, hasNext := e.expiry.frontMin()
		e.mu.Unlock()

		if !hasNext {
			<-e.wake
			continue
		}

		timer := time.NewTimer(time.Until(next.at))
		select {
		case <-timer.C:
		case <-e.wake:
			timer.Stop()
		}
	}
}
