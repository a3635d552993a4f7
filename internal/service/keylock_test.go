package service

import (
	"sync"
	"testing"
	"time"
)

func TestKeyLock_SerializesSameKey(t *testing.T) {
	locks := newKeyLock()

	const workers = 50
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("SKU001", "STORE001")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Errorf("counter = %d, want %d", counter, workers)
	}
}

func TestKeyLock_IndependentKeys(t *testing.T) {
	locks := newKeyLock()

	unlockA := locks.lock("SKU001", "STORE001")
	defer unlockA()

	// a different pair must not block behind SKU001|STORE001
	done := make(chan struct{})
	go func() {
		unlockB := locks.lock("SKU001", "STORE002")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("independent key blocked behind an unrelated lock")
	}
}

func TestKeyLock_ReleasedLockReacquirable(t *testing.T) {
	locks := newKeyLock()

	unlock := locks.lock("SKU001", "STORE001")
	unlock()

	done := make(chan struct{})
	go func() {
		unlock := locks.lock("SKU001", "STORE001")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("released lock could not be reacquired")
	}
}
