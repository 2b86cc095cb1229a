package app

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// keyedSemaphore hands out one exclusive slot per key. Waiters on the same key
// are admitted in arrival order; different keys never contend.
type keyedSemaphore struct {
	mu      sync.Mutex
	entries map[string]*slotEntry
}

type slotEntry struct {
	sem  *semaphore.Weighted
	refs int
}

func newKeyedSemaphore() *keyedSemaphore {
	return &keyedSemaphore{entries: make(map[string]*slotEntry)}
}

// acquire blocks until the key's slot is free or ctx is done.
func (k *keyedSemaphore) acquire(ctx context.Context, key string) (release func(), err error) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &slotEntry{sem: semaphore.NewWeighted(1)}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	if err := e.sem.Acquire(ctx, 1); err != nil {
		k.unref(key, e)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			e.sem.Release(1)
			k.unref(key, e)
		})
	}, nil
}

func (k *keyedSemaphore) unref(key string, e *slotEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

// size returns the number of keys currently held or awaited.
func (k *keyedSemaphore) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
