package server

import (
	"fmt"
	"sync"
)

// lockTable tracks which user holds the exclusive edit lock for each
// instrument. Locks are in-memory; restarting the server releases them.
type lockTable struct {
	mu   sync.Mutex
	held map[string]string // instrument -> username
}

func newLockTable() *lockTable {
	return &lockTable{held: make(map[string]string)}
}

// Acquire grants the lock to user. Re-acquiring a lock the same user
// already holds succeeds.
func (t *lockTable) Acquire(instrument, user string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if holder, ok := t.held[instrument]; ok && holder != user {
		return fmt.Errorf("instrument %q is locked by %q", instrument, holder)
	}
	t.held[instrument] = user
	return nil
}

// Release drops the lock. Only the holder may release it.
func (t *lockTable) Release(instrument, user string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	holder, ok := t.held[instrument]
	if !ok {
		return fmt.Errorf("instrument %q is not locked", instrument)
	}
	if holder != user {
		return fmt.Errorf("instrument %q is locked by %q", instrument, holder)
	}
	delete(t.held, instrument)
	return nil
}

// Holder returns the user holding the lock for instrument, or "".
func (t *lockTable) Holder(instrument string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.held[instrument]
}
