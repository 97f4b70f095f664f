// Package keylock serializes critical sections per string key. The checkout
// engine and the admin stock operations share one KeyLock so check-then-write
// sequences for the same product never interleave within a single process.
// Multi-instance deployments sharing one spreadsheet still race; that needs an
// external lock or a conditional write the store does not offer.
package keylock

import (
	"sort"
	"sync"
)

// KeyLock is a set of named mutexes. Mutexes are created on first use and
// kept for the life of the process; the key space is the product catalog, so
// growth is bounded.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New() *KeyLock {
	return &KeyLock{locks: make(map[string]*sync.Mutex)}
}

func (k *KeyLock) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

// Lock acquires the mutex for one key.
func (k *KeyLock) Lock(key string) { k.get(key).Lock() }

// Unlock releases the mutex for one key.
func (k *KeyLock) Unlock(key string) { k.get(key).Unlock() }

// LockAll acquires every key's mutex in sorted order, deduplicated, so two
// callers locking overlapping key sets cannot deadlock. It returns the release
// function; callers defer it.
func (k *KeyLock) LockAll(keys []string) (release func()) {
	ordered := dedupSorted(keys)
	for _, key := range ordered {
		k.Lock(key)
	}
	return func() {
		// Release in reverse acquisition order.
		for i := len(ordered) - 1; i >= 0; i-- {
			k.Unlock(ordered[i])
		}
	}
}

func dedupSorted(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
