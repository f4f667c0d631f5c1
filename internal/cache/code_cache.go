package cache

import (
	"context"
	"sync"
)

// CodeCache maps referral codes to customer ids. Codes are never reassigned,
// so entries only go stale when a customer is deleted.
type CodeCache interface {
	Get(ctx context.Context, code string) (string, bool)
	Set(ctx context.Context, code, customerID string)
	Delete(ctx context.Context, code string)
}

type MemoryCodeCache struct {
	mu    sync.RWMutex
	store map[string]string
}

func NewMemoryCodeCache() *MemoryCodeCache {
	return &MemoryCodeCache{
		store: make(map[string]string),
	}
}

func (c *MemoryCodeCache) Get(_ context.Context, code string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.store[code]
	return val, ok
}

func (c *MemoryCodeCache) Set(_ context.Context, code, customerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[code] = customerID
}

func (c *MemoryCodeCache) Delete(_ context.Context, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, code)
}
