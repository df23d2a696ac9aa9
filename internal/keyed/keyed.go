// Package keyed provides a mutex set addressed by string key. The Service
// uses it to make lookup+mutate+persist sequences a critical section scoped
// to the identity being mutated, so concurrent resets or logins for the same
// user cannot lose updates. Locks are never reclaimed; the set grows with the
// number of distinct keys, which is bounded by the user population.
package keyed

import "sync"

// MutexSet hands out one mutex per key.
type MutexSet struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMutexSet returns an empty set.
func NewMutexSet() *MutexSet {
	return &MutexSet{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock function.
func (s *MutexSet) Lock(key string) func() {
	s.mu.Lock()
	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}
