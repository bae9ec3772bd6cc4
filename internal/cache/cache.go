package cache

import (
	"sync"
	"time"
)

// Cache is a small TTL map. Expired entries are dropped on Get and swept
// from the whole map at most once per ttl on writes.
type Cache[V any] struct {
	mu        sync.RWMutex
	ttl       time.Duration
	m         map[string]entry[V]
	gen       uint64
	nextSweep time.Time
	now       func() time.Time
}

type entry[V any] struct {
	val V
	exp time.Time
}

func New[V any](ttl time.Duration) *Cache[V] {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache[V]{
		ttl: ttl,
		m:   make(map[string]entry[V]),
		now: time.Now,
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	now := c.now()

	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}

	if now.After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()

		var zero V
		return zero, false
	}

	return e.val, true
}

func (c *Cache[V]) Set(key string, val V) {
	c.mu.Lock()
	c.setLocked(key, val)
	c.mu.Unlock()
}

// Generation changes on every Clear. Read it before loading a value and pass
// it to SetIfGeneration so a load that raced a Clear is not stored.
func (c *Cache[V]) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// SetIfGeneration stores val only if no Clear happened since gen was read.
func (c *Cache[V]) SetIfGeneration(key string, val V, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen {
		return false
	}

	c.setLocked(key, val)
	return true
}

func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.m = make(map[string]entry[V])
	c.gen++
	c.mu.Unlock()
}

func (c *Cache[V]) setLocked(key string, val V) {
	now := c.now()

	if !now.Before(c.nextSweep) {
		for k, e := range c.m {
			if now.After(e.exp) {
				delete(c.m, k)
			}
		}
		c.nextSweep = now.Add(c.ttl)
	}

	c.m[key] = entry[V]{val: val, exp: now.Add(c.ttl)}
}
