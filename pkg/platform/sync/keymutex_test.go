package sync

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyMutexSerializesSameKey(t *testing.T) {
	m := NewKeyMutex(4)
	counter := 0

	var wg sync.WaitGroup
	for range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.WithLock("person@example.com", func() {
				counter++
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 200, counter)
}

func TestKeyMutexDistinctKeysProceed(t *testing.T) {
	m := NewKeyMutex(0)
	assert.Len(t, m.shards, DefaultShards)

	unlock := m.Lock("a@example.com")
	defer unlock()

	done := make(chan struct{})
	go func() {
		// Shares the shard only on a hash collision; pick a key that does not.
		for i := 0; ; i++ {
			key := string(rune('b'+i%20)) + "@example.com"
			if m.shard(key) != m.shard("a@example.com") {
				m.WithLock(key, func() {})
				break
			}
		}
		close(done)
	}()
	<-done
}

func TestKeyMutexStableShard(t *testing.T) {
	m := NewKeyMutex(8)
	assert.Same(t, m.shard("person@example.com"), m.shard("person@example.com"))
	assert.Same(t, m.shard(""), m.shard(""))
}
