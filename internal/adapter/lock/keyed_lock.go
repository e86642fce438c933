package lock

import (
	"sort"
	"sync"
)

// KeyedLock is a process-local registry of mutexes, one per resource key.
// Mutexes are created lazily on first use and are never removed: evicting
// a lock while another goroutine still holds a reference to it could hand
// out two mutexes for the same key. Memory grows with the number of
// distinct keys; that trade-off is accepted.
type KeyedLock struct {
	locks sync.Map // key string -> *sync.Mutex
}

func NewKeyedLock() *KeyedLock {
	return &KeyedLock{}
}

func (l *KeyedLock) WithLock(key string, fn func() error) error {
	mu := l.mutexFor(key)
	mu.Lock()
	defer mu.Unlock()
	return fn()
}

func (l *KeyedLock) WithLocks(keys []string, fn func() error) error {
	unique := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		unique[key] = struct{}{}
	}
	ordered := make([]string, 0, len(unique))
	for key := range unique {
		ordered = append(ordered, key)
	}
	sort.Strings(ordered)

	for _, key := range ordered {
		mu := l.mutexFor(key)
		mu.Lock()
		defer mu.Unlock()
	}
	return fn()
}

func (l *KeyedLock) mutexFor(key string) *sync.Mutex {
	actual, _ := l.locks.LoadOrStore(key, &sync.Mutex{})
	return actual.(*sync.Mutex)
}
