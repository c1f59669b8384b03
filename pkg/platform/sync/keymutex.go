// Package sync provides locking helpers on top of the standard sync package.
package sync

import (
	"hash/fnv"
	"sync"
)

// DefaultShards is the shard count used by NewKeyMutex when n <= 0.
const DefaultShards = 32

// KeyMutex serializes work per string key. Keys are spread over a fixed set
// of shards, so unrelated keys may occasionally share a lock but one key
// always maps to the same one.
type KeyMutex struct {
	shards []sync.Mutex
}

func NewKeyMutex(n int) *KeyMutex {
	if n <= 0 {
		n = DefaultShards
	}
	return &KeyMutex{shards: make([]sync.Mutex, n)}
}

// Lock acquires the shard for key and returns the matching unlock.
func (m *KeyMutex) Lock(key string) (unlock func()) {
	mu := m.shard(key)
	mu.Lock()
	return mu.Unlock
}

// WithLock runs fn while holding the shard for key.
func (m *KeyMutex) WithLock(key string, fn func()) {
	unlock := m.Lock(key)
	defer unlock()
	fn()
}

func (m *KeyMutex) shard(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &m.shards[h.Sum32()%uint32(len(m.shards))]
}
