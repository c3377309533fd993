// Package cache backs the statistics snapshot with best-effort storage:
// Redis when configured, an in-process map otherwise.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is deliberately small: get/set/delete of an encoded payload with a
// fixed TTL. Implementations never surface errors; a miss is the worst case.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte)
	Delete(ctx context.Context, key string)
}

// Memory is the in-process fallback used when no Redis address is set.
type Memory struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Memory{ttl: ttl, entries: make(map[string]memoryEntry)}
}

func (c *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]

	if !ok {
		return nil, false
	}

	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}

	return e.payload, true
}

func (c *Memory) Set(_ context.Context, key string, val []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = memoryEntry{payload: val, expiresAt: time.Now().Add(c.ttl)}
}

func (c *Memory) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}
