package services

import "sync"

// keyedMutex serializes mutations per key (group id, or user+group pair for
// payments). Every read-then-write path in the engine grabs its key's lock so
// two concurrent joins cannot both observe the same member count and hand out
// duplicate positions. Locks are never evicted; the key space is small.
type keyedMutex struct {
	locks sync.Map // key string -> *sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	v, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
