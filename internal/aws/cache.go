package aws

import (
	"sync"
	"time"
)

type cacheEntry[V any] struct {
	value    V
	expires  time.Time
	inserted time.Time
}

// ttlCache holds values for a fixed TTL and evicts the oldest inserted
// entry once capacity is reached. Group names are immutable in EC2, so
// the id-to-name index tolerates a long TTL.
type ttlCache[V any] struct {
	mu       sync.RWMutex
	ttl      time.Duration
	capacity int
	data     map[string]cacheEntry[V]
}

func newTTLCache[V any](ttl time.Duration, capacity int) *ttlCache[V] {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if capacity <= 0 {
		capacity = 1000
	}
	return &ttlCache[V]{
		ttl:      ttl,
		capacity: capacity,
		data:     make(map[string]cacheEntry[V]),
	}
}

func (c *ttlCache[V]) get(key string) (V, bool) {
	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		var zero V
		return zero, false
	}
	if time.Now().After(entry.expires) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	return entry.value, true
}

func (c *ttlCache[V]) set(key string, value V) {
	c.mu.Lock()
	if len(c.data) >= c.capacity {
		var oldestKey string
		var oldestTime time.Time
		first := true
		for k, v := range c.data {
			if first || v.inserted.Before(oldestTime) {
				oldestKey = k
				oldestTime = v.inserted
				first = false
			}
		}
		delete(c.data, oldestKey)
	}
	c.data[key] = cacheEntry[V]{
		value:    value,
		expires:  time.Now().Add(c.ttl),
		inserted: time.Now(),
	}
	c.mu.Unlock()
}
