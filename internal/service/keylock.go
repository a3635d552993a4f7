package service

import "sync"

// keyLock serializes mutators of one (product, store) stock line without
// blocking unrelated lines. Locks are created lazily and never reclaimed;
// the key space is bounded by the catalog.
type keyLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyLock() *keyLock {
	return &keyLock{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the exclusive lock for the pair and returns its release
// function, to be deferred so every exit path unlocks.
func (k *keyLock) lock(productID, storeID string) func() {
	key := productID + "|" + storeID

	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
