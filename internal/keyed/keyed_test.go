package keyed

import (
	"sync"
	"testing"
)

func TestLockSerializesSameKey(t *testing.T) {
	set := NewMutexSet()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				unlock := set.Lock("user-1")
				counter++
				unlock()
			}
		}()
	}
	wg.Wait()

	if counter != 1600 {
		t.Fatalf("counter = %d, want 1600", counter)
	}
}

func TestLockDistinctKeysIndependent(t *testing.T) {
	set := NewMutexSet()

	unlockA := set.Lock("a")
	defer unlockA()

	// Locking a different key must not block.
	done := make(chan struct{})
	go func() {
		unlockB := set.Lock("b")
		unlockB()
		close(done)
	}()
	<-done
}

func TestLockReusesMutexPerKey(t *testing.T) {
	set := NewMutexSet()

	unlock := set.Lock("a")
	unlock()
	unlock = set.Lock("a")
	unlock()

	set.mu.Lock()
	defer set.mu.Unlock()
	if len(set.locks) != 1 {
		t.Fatalf("expected 1 stored mutex, got %d", len(set.locks))
	}
}
