package keylock

import (
	"sync"
)

// KeyedRWMutex provides an independent read-write mutex per string key. It
// serializes writers on the same key while leaving different keys fully
// concurrent, which is exactly the isolation the ledger needs between rooms.
//
// Locks are created on first use and retained for the life of the process.
// Rooms are never deleted, so their locks are never reclaimed either.
type KeyedRWMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

// New creates an empty KeyedRWMutex
func New() *KeyedRWMutex {
	return &KeyedRWMutex{
		locks: make(map[string]*sync.RWMutex),
	}
}

// get returns the lock for key, creating it on first use
func (k *KeyedRWMutex) get(key string) *sync.RWMutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.RWMutex{}
		k.locks[key] = lock
	}

	return lock
}

// Lock acquires the write lock for key
func (k *KeyedRWMutex) Lock(key string) {
	k.get(key).Lock()
}

// Unlock releases the write lock for key
func (k *KeyedRWMutex) Unlock(key string) {
	k.get(key).Unlock()
}

// RLock acquires the read lock for key
func (k *KeyedRWMutex) RLock(key string) {
	k.get(key).RLock()
}

// RUnlock releases the read lock for key
func (k *KeyedRWMutex) RUnlock(key string) {
	k.get(key).RUnlock()
}
